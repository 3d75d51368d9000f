package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/snarg/voxconvert/internal/convert"
)

const namespace = "voxconvert"

// HTTP metrics (counter/histogram — incremented by middleware).
var (
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total HTTP requests processed.",
	}, []string{"method", "path_pattern", "status_code"})

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path_pattern"})

	HTTPResponseSize = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_response_size_bytes",
		Help:      "HTTP response size in bytes.",
		Buckets:   prometheus.ExponentialBuckets(100, 10, 7), // 100B → 100MB
	}, []string{"method", "path_pattern"})
)

// Conversion metrics (fed by the convert.Service observers).
var (
	ConversionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "conversions_total",
		Help:      "Conversions by operation and outcome (success or failure kind).",
	}, []string{"operation", "outcome"})

	ConversionDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "conversion_duration_seconds",
		Help:      "End-to-end conversion duration in seconds.",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
	}, []string{"operation"})

	RemoteCallsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "remote_calls_total",
		Help:      "Calls to recognition, synthesis and translation providers.",
	}, []string{"kind", "provider", "outcome"})

	RemoteCallDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "remote_call_duration_seconds",
		Help:      "Provider call duration in seconds.",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	}, []string{"kind", "provider"})

	ArtifactsSavedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "artifacts_saved_total",
		Help:      "Artifacts written to the artifact store.",
	}, []string{"backend", "outcome"})
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		HTTPResponseSize,
		ConversionsTotal,
		ConversionDuration,
		RemoteCallsTotal,
		RemoteCallDuration,
		ArtifactsSavedTotal,
	)
}

// ObserveConversion records terminal conversion events. It satisfies
// convert.Observer.
func ObserveConversion(ev convert.Event) {
	var outcome string
	switch ev.State {
	case convert.StateSucceeded:
		outcome = "success"
	case convert.StateFailed:
		outcome = string(ev.Kind)
	default:
		return
	}
	ConversionsTotal.WithLabelValues(string(ev.Op), outcome).Inc()
	ConversionDuration.WithLabelValues(string(ev.Op)).Observe(ev.Elapsed.Seconds())
}

// ObserveRemote records one provider call. It satisfies convert.RemoteObserver.
func ObserveRemote(kind, provider string, err error, elapsed time.Duration) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	RemoteCallsTotal.WithLabelValues(kind, provider, outcome).Inc()
	RemoteCallDuration.WithLabelValues(kind, provider).Observe(elapsed.Seconds())
}

// InstrumentHandler returns middleware that records HTTP request metrics.
// It uses chi's route pattern as the path label to avoid cardinality explosion.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: 200}
		next.ServeHTTP(sw, r)

		pattern := "unknown"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			pattern = rc.RoutePattern()
		}
		method := r.Method
		status := strconv.Itoa(sw.status)
		duration := time.Since(start).Seconds()

		HTTPRequestsTotal.WithLabelValues(method, pattern, status).Inc()
		HTTPRequestDuration.WithLabelValues(method, pattern).Observe(duration)
		HTTPResponseSize.WithLabelValues(method, pattern).Observe(float64(sw.written))
	})
}

// statusWriter wraps http.ResponseWriter to capture status code and bytes written.
type statusWriter struct {
	http.ResponseWriter
	status  int
	written int64
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.written += int64(n)
	return n, err
}

// Unwrap supports http.ResponseController.
func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// Hijack lets the capture endpoint upgrade to a WebSocket through this wrapper.
func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	w.status = http.StatusSwitchingProtocols
	return h.Hijack()
}
