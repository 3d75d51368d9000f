package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHealthHandler(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		rig := newTestRig(t)
		rec := rig.do(httptest.NewRequest("GET", "/api/v1/health", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		resp := decodeBody[HealthResponse](t, rec)
		if resp.Status != "healthy" {
			t.Errorf("status = %q, want healthy", resp.Status)
		}
		if resp.Version != "test" {
			t.Errorf("version = %q, want test", resp.Version)
		}
		if resp.Checks["ffmpeg"] != "ok" || resp.Checks["artifact_store"] != "local" || resp.Checks["translation"] != "ok" {
			t.Errorf("checks = %v", resp.Checks)
		}
		if resp.Providers.STT != "stub-stt" || resp.Providers.TTS != "stub-tts" {
			t.Errorf("providers = %+v", resp.Providers)
		}
	})

	t.Run("degraded_without_ffmpeg", func(t *testing.T) {
		rig := newTestRig(t, withoutFFmpeg(), withoutTranslator())
		rec := rig.do(httptest.NewRequest("GET", "/api/v1/health", nil))

		resp := decodeBody[HealthResponse](t, rec)
		if resp.Status != "degraded" {
			t.Errorf("status = %q, want degraded", resp.Status)
		}
		if resp.Checks["ffmpeg"] != "missing" || resp.Checks["translation"] != "disabled" {
			t.Errorf("checks = %v", resp.Checks)
		}
	})
}

func TestOptionsHandler(t *testing.T) {
	t.Run("translation_enabled", func(t *testing.T) {
		rig := newTestRig(t)
		resp := decodeBody[OptionsResponse](t, rig.do(httptest.NewRequest("GET", "/api/v1/options", nil)))

		if len(resp.Languages) != 2 || resp.Languages[0].Name != "English" || resp.Languages[1].Name != "Hindi" {
			t.Errorf("languages = %+v", resp.Languages)
		}
		if len(resp.Modes) != 5 {
			t.Fatalf("got %d modes, want 5", len(resp.Modes))
		}
		if last := resp.Modes[4]; last.Mode != "translate" || last.Local {
			t.Errorf("last mode = %+v, want remote translate", last)
		}
		if resp.Capture.MinSeconds != 3 || resp.Capture.MaxSeconds != 10 || resp.Capture.DefaultSeconds != 5 {
			t.Errorf("capture = %+v", resp.Capture)
		}
		if resp.Capture.MinSampleRate != 8000 || resp.Capture.MaxSampleRate != 48000 {
			t.Errorf("sample rate bounds = %d..%d", resp.Capture.MinSampleRate, resp.Capture.MaxSampleRate)
		}
		if !resp.TranslationEnabled || resp.MaxUploadMB != 1 {
			t.Errorf("translation_enabled=%v max_upload_mb=%d", resp.TranslationEnabled, resp.MaxUploadMB)
		}
	})

	t.Run("translate_hidden_when_disabled", func(t *testing.T) {
		rig := newTestRig(t, withoutTranslator())
		resp := decodeBody[OptionsResponse](t, rig.do(httptest.NewRequest("GET", "/api/v1/options", nil)))

		if resp.TranslationEnabled {
			t.Error("translation_enabled = true, want false")
		}
		for _, m := range resp.Modes {
			if m.Mode == "translate" {
				t.Error("translate mode listed while translation is disabled")
			}
		}
	})
}
