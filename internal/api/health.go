package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/snarg/voxconvert/internal/artifact"
)

// Providers names the configured backends.
type Providers struct {
	STT       string `json:"stt"`
	TTS       string `json:"tts"`
	Translate string `json:"translate,omitempty"`
}

type HealthResponse struct {
	Status        string            `json:"status"`
	Version       string            `json:"version"`
	UptimeSeconds int64             `json:"uptime_seconds"`
	Checks        map[string]string `json:"checks"`
	Providers     Providers         `json:"providers"`
}

type HealthHandler struct {
	store      artifact.Store
	providers  Providers
	transcoder func() bool
	version    string
	startTime  time.Time
}

// NewHealthHandler creates the health handler. transcoder reports whether
// ffmpeg is available; without it MP3 uploads cannot be decoded.
func NewHealthHandler(store artifact.Store, providers Providers, transcoder func() bool, version string, startTime time.Time) *HealthHandler {
	return &HealthHandler{
		store:      store,
		providers:  providers,
		transcoder: transcoder,
		version:    version,
		startTime:  startTime,
	}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string)
	status := "healthy"

	// Transcoder check
	if h.transcoder != nil && h.transcoder() {
		checks["ffmpeg"] = "ok"
	} else {
		checks["ffmpeg"] = "missing"
		status = "degraded"
	}

	// Artifact store check
	if h.store != nil {
		checks["artifact_store"] = h.store.Type()
	} else {
		checks["artifact_store"] = "not_configured"
	}

	// Translation check
	if h.providers.Translate != "" {
		checks["translation"] = "ok"
	} else {
		checks["translation"] = "disabled"
	}

	resp := HealthResponse{
		Status:        status,
		Version:       h.version,
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
		Checks:        checks,
		Providers:     h.providers,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}
