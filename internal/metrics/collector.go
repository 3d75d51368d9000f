package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// LiveStats provides the metrics collector access to in-flight state.
type LiveStats interface {
	ActiveConversions() int
	ActiveCaptures() int
}

// Collector implements prometheus.Collector to read live gauges at scrape time.
type Collector struct {
	stats     LiveStats
	transcode func() bool

	activeConversions *prometheus.Desc
	activeCaptures    *prometheus.Desc
	transcoderUp      *prometheus.Desc
}

// NewCollector creates a collector that reads live state at scrape time.
// stats may be nil (gauges report 0). transcode reports whether the audio
// transcoder is available.
func NewCollector(stats LiveStats, transcode func() bool) *Collector {
	return &Collector{
		stats:     stats,
		transcode: transcode,
		activeConversions: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "active_conversions"),
			"Conversions currently in progress.",
			nil, nil,
		),
		activeCaptures: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "capture_sessions_active"),
			"Open live-capture WebSocket sessions.",
			nil, nil,
		),
		transcoderUp: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "transcoder_available"),
			"1 if ffmpeg is available for MP3 and non-PCM WAV input.",
			nil, nil,
		),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.activeConversions
	ch <- c.activeCaptures
	ch <- c.transcoderUp
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	var conversions, captures float64
	if c.stats != nil {
		conversions = float64(c.stats.ActiveConversions())
		captures = float64(c.stats.ActiveCaptures())
	}
	ch <- prometheus.MustNewConstMetric(c.activeConversions, prometheus.GaugeValue, conversions)
	ch <- prometheus.MustNewConstMetric(c.activeCaptures, prometheus.GaugeValue, captures)

	var up float64
	if c.transcode != nil && c.transcode() {
		up = 1
	}
	ch <- prometheus.MustNewConstMetric(c.transcoderUp, prometheus.GaugeValue, up)
}
