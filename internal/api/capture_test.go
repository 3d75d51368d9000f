package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dialCapture(t *testing.T, rig *testRig, query string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	ts := httptest.NewServer(rig.srv.Handler())
	t.Cleanup(ts.Close)
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/capture?" + query
	return websocket.DefaultDialer.Dial(url, nil)
}

func readMessage(t *testing.T, conn *websocket.Conn) CaptureMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg CaptureMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read message: %v", err)
	}
	return msg
}

func TestCaptureSpeechToText(t *testing.T) {
	rig := newTestRig(t)
	conn, _, err := dialCapture(t, rig, "op=stt&duration=3&rate=8000&language=hi")
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	ready := readMessage(t, conn)
	if ready.Type != "ready" || ready.Duration != 3 || ready.SampleRate != 8000 {
		t.Fatalf("ready = %+v", ready)
	}

	// Two 100ms frames, then stop early.
	for i := 0; i < 2; i++ {
		if err := conn.WriteMessage(websocket.BinaryMessage, tonePCM(3000, 800)); err != nil {
			t.Fatalf("write frame: %v", err)
		}
	}
	conn.WriteMessage(websocket.TextMessage, []byte("stop"))

	msg := readMessage(t, conn)
	if msg.Type != "result" {
		t.Fatalf("type = %q, want result (%+v)", msg.Type, msg)
	}
	if msg.Transcript == nil || msg.Transcript.Text != "hello world" {
		t.Fatalf("transcript = %+v", msg.Transcript)
	}
	if msg.Transcript.AudioSeconds != 0.2 {
		t.Errorf("audio_seconds = %v, want 0.2", msg.Transcript.AudioSeconds)
	}
	if _, locale := rig.rec.seen(); locale != "hi-IN" {
		t.Errorf("recognizer locale = %q, want hi-IN", locale)
	}
	if !strings.HasSuffix(msg.DownloadURL, "/converted_text.txt") {
		t.Errorf("download_url = %q", msg.DownloadURL)
	}
}

func TestCaptureSpeechToSpeech(t *testing.T) {
	rig := newTestRig(t)
	conn, _, err := dialCapture(t, rig, "op=sts&duration=3&rate=16000&language=en&output_language=hi")
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	readMessage(t, conn)
	conn.WriteMessage(websocket.BinaryMessage, tonePCM(3000, 1600))
	conn.WriteMessage(websocket.TextMessage, []byte("stop"))

	msg := readMessage(t, conn)
	if msg.Type != "result" || msg.Audio == nil {
		t.Fatalf("msg = %+v, want result with audio", msg)
	}
	if msg.Audio.Filename != "voice_output.mp3" {
		t.Errorf("filename = %q, want voice_output.mp3", msg.Audio.Filename)
	}
	if _, code := rig.synth.seen(); code != "hi" {
		t.Errorf("synthesizer code = %q, want hi", code)
	}
}

func TestCaptureSilence(t *testing.T) {
	rig := newTestRig(t)
	conn, _, err := dialCapture(t, rig, "duration=3&rate=8000")
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	readMessage(t, conn)
	conn.WriteMessage(websocket.BinaryMessage, tonePCM(0, 800))
	conn.WriteMessage(websocket.TextMessage, []byte("stop"))

	msg := readMessage(t, conn)
	if msg.Type != "error" || msg.Code != "Unintelligible" {
		t.Errorf("msg = %+v, want Unintelligible error", msg)
	}
	if calls, _ := rig.rec.seen(); calls != 0 {
		t.Errorf("recognizer called %d times, want 0", calls)
	}
}

func TestCaptureNoAudio(t *testing.T) {
	rig := newTestRig(t)
	conn, _, err := dialCapture(t, rig, "duration=3")
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	readMessage(t, conn)
	conn.WriteMessage(websocket.TextMessage, []byte("stop"))

	msg := readMessage(t, conn)
	if msg.Type != "error" || msg.Code != "EmptyInput" {
		t.Errorf("msg = %+v, want EmptyInput error", msg)
	}
}

func TestCaptureRejectsBadParams(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"duration_too_short", "duration=2"},
		{"duration_too_long", "duration=11"},
		{"duration_not_number", "duration=five"},
		{"rate_too_low", "rate=4000"},
		{"rate_too_high", "rate=96000"},
		{"unknown_op", "op=tts"},
		{"unknown_language", "language=xx-YY"},
	}
	rig := newTestRig(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, resp, err := dialCapture(t, rig, tt.query)
			if err == nil {
				t.Fatal("expected dial to fail")
			}
			if resp == nil || resp.StatusCode != http.StatusBadRequest {
				t.Errorf("expected 400 response, got %+v", resp)
			}
		})
	}
}

func TestCaptureParamDefaults(t *testing.T) {
	rig := newTestRig(t)
	req := httptest.NewRequest("GET", "/api/v1/capture", nil)
	p, err := rig.srv.capture.parseParams(req)
	if err != nil {
		t.Fatalf("parseParams: %v", err)
	}
	if p.op != "stt" || p.duration != 5 || p.rate != 16000 {
		t.Errorf("params = %+v, want stt/5s/16000", p)
	}
	if p.input.Recognition != "en-IN" || p.output.Synthesis != "en" {
		t.Errorf("languages = %+v -> %+v, want English", p.input, p.output)
	}
}
