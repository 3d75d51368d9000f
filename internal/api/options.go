package api

import (
	"net/http"

	"github.com/snarg/voxconvert/internal/config"
	"github.com/snarg/voxconvert/internal/convert"
	"github.com/snarg/voxconvert/internal/lang"
)

type modeInfo struct {
	Mode  convert.Mode `json:"mode"`
	Label string       `json:"label"`
	Local bool         `json:"local"`
}

type captureOptions struct {
	DefaultSeconds int `json:"default_seconds"`
	MinSeconds     int `json:"min_seconds"`
	MaxSeconds     int `json:"max_seconds"`
	SampleRate     int `json:"sample_rate"`
	MinSampleRate  int `json:"min_sample_rate"`
	MaxSampleRate  int `json:"max_sample_rate"`
}

// OptionsResponse describes what the UI may offer.
type OptionsResponse struct {
	Languages          []lang.Language `json:"languages"`
	Modes              []modeInfo      `json:"modes"`
	Capture            captureOptions  `json:"capture"`
	TranslationEnabled bool            `json:"translation_enabled"`
	MaxUploadMB        int             `json:"max_upload_mb"`
	Providers          Providers       `json:"providers"`
}

// OptionsHandler handles GET /api/v1/options.
func OptionsHandler(cfg *config.Config, providers Providers) http.HandlerFunc {
	resp := OptionsResponse{
		Languages: lang.Supported(),
		Capture: captureOptions{
			DefaultSeconds: cfg.Capture.DefaultSeconds,
			MinSeconds:     cfg.Capture.MinSeconds,
			MaxSeconds:     cfg.Capture.MaxSeconds,
			SampleRate:     cfg.Capture.SampleRate,
			MinSampleRate:  minCaptureRate,
			MaxSampleRate:  maxCaptureRate,
		},
		TranslationEnabled: providers.Translate != "",
		MaxUploadMB:        cfg.MaxUploadMB,
		Providers:          providers,
	}
	for _, m := range convert.Modes {
		if m.Mode == convert.ModeTranslate && !resp.TranslationEnabled {
			continue
		}
		resp.Modes = append(resp.Modes, modeInfo{Mode: m.Mode, Label: m.Label, Local: m.Mode.IsLocal()})
	}

	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, resp)
	}
}
