package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/snarg/voxconvert/internal/artifact"
	"github.com/snarg/voxconvert/internal/audio"
	"github.com/snarg/voxconvert/internal/config"
	"github.com/snarg/voxconvert/internal/convert"
	"github.com/snarg/voxconvert/internal/lang"
)

const (
	minCaptureRate = 8000
	maxCaptureRate = 48000

	captureGrace = 10 * time.Second
	writeWait    = 5 * time.Second
)

// CaptureMessage is a JSON message sent to the capture client.
type CaptureMessage struct {
	Type        string              `json:"type"` // ready, result, error
	Op          string              `json:"op,omitempty"`
	Duration    int                 `json:"duration,omitempty"`
	SampleRate  int                 `json:"sample_rate,omitempty"`
	Transcript  *convert.Transcript `json:"transcript,omitempty"`
	Audio       *AudioResponse      `json:"audio,omitempty"`
	DownloadURL string              `json:"download_url,omitempty"`
	Error       string              `json:"error,omitempty"`
	Code        string              `json:"code,omitempty"`
}

// captureParams are the validated query parameters of a capture request.
type captureParams struct {
	op       string
	duration int
	rate     int
	input    lang.Language
	output   lang.Language
}

// CaptureHandler records microphone audio streamed over a WebSocket and runs
// speech-to-text or speech-to-speech on it.
//
// Protocol: the server sends {"type":"ready"}; the client streams binary
// frames of mono 16-bit little-endian PCM and may send the text message
// "stop" to end early; the server replies with one result or error message
// and closes.
type CaptureHandler struct {
	conv      Converter
	artifacts *artifactSaver
	bounds    config.CaptureConfig
	upgrader  websocket.Upgrader
	active    atomic.Int64
	log       zerolog.Logger
}

// NewCaptureHandler creates a capture handler. Browser origins are checked
// against the CORS allow-list.
func NewCaptureHandler(conv Converter, store artifact.Store, bounds config.CaptureConfig, origins []string, log zerolog.Logger) *CaptureHandler {
	log = log.With().Str("handler", "capture").Logger()
	return &CaptureHandler{
		conv:      conv,
		artifacts: &artifactSaver{store: store, log: log},
		bounds:    bounds,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return originAllowed(origins, r) },
		},
		log: log,
	}
}

// Active returns the number of open capture sessions.
func (h *CaptureHandler) Active() int {
	return int(h.active.Load())
}

// ServeHTTP handles GET /api/v1/capture.
func (h *CaptureHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p, err := h.parseParams(r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	h.active.Add(1)
	defer h.active.Add(-1)

	log := h.log.With().Str("op", p.op).Int("duration", p.duration).Int("rate", p.rate).Logger()
	log.Debug().Msg("capture started")

	conn.SetReadDeadline(time.Now().Add(time.Duration(p.duration)*time.Second + captureGrace))
	if err := h.send(conn, CaptureMessage{Type: "ready", Op: p.op, Duration: p.duration, SampleRate: p.rate}); err != nil {
		log.Debug().Err(err).Msg("failed to send ready")
		return
	}

	src := audio.NewCaptureSource(&wsFrames{conn: conn}, time.Duration(p.duration)*time.Second, p.rate)
	msg := h.run(r.Context(), p, src)
	if msg.Type == "error" {
		log.Debug().Str("code", msg.Code).Msg("capture conversion failed")
	}

	if err := h.send(conn, msg); err != nil {
		log.Debug().Err(err).Msg("failed to send result")
		return
	}
	conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
}

func (h *CaptureHandler) run(ctx context.Context, p captureParams, src audio.Source) CaptureMessage {
	if p.op == "sts" {
		res, err := h.conv.SpeechToSpeech(ctx, convert.VoiceRequest{
			Source:         src,
			InputLanguage:  p.input,
			OutputLanguage: p.output,
		})
		msg := CaptureMessage{Type: "result", Op: p.op}
		if res != nil {
			msg.Transcript = res.Transcript
			if res.Artifact != nil {
				msg.Audio = h.artifacts.audio(ctx, res.Artifact)
			}
		}
		if err != nil {
			errorMessage(&msg, err)
		}
		return msg
	}

	tr, err := h.conv.SpeechToText(ctx, convert.SpeechRequest{Source: src, Language: p.input})
	msg := CaptureMessage{Type: "result", Op: p.op}
	if err != nil {
		errorMessage(&msg, err)
		return msg
	}
	msg.Transcript = tr
	msg.DownloadURL = h.artifacts.save(ctx, convert.TextFilename, []byte(tr.Text))
	return msg
}

func errorMessage(msg *CaptureMessage, err error) {
	_, body := conversionError(err)
	msg.Type = "error"
	msg.Error = body.Error
	msg.Code = body.Code
}

func (h *CaptureHandler) send(conn *websocket.Conn, msg CaptureMessage) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(msg)
}

func (h *CaptureHandler) parseParams(r *http.Request) (captureParams, error) {
	q := r.URL.Query()
	p := captureParams{
		op:       q.Get("op"),
		duration: h.bounds.DefaultSeconds,
		rate:     h.bounds.SampleRate,
	}

	switch p.op {
	case "":
		p.op = "stt"
	case "stt", "sts":
	default:
		return p, fmt.Errorf("unknown capture op %q (want stt or sts)", p.op)
	}

	if v := q.Get("duration"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return p, fmt.Errorf("invalid duration %q", v)
		}
		p.duration = n
	}
	if p.duration < h.bounds.MinSeconds || p.duration > h.bounds.MaxSeconds {
		return p, fmt.Errorf("duration %d outside [%d, %d] seconds", p.duration, h.bounds.MinSeconds, h.bounds.MaxSeconds)
	}

	if v := q.Get("rate"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return p, fmt.Errorf("invalid rate %q", v)
		}
		p.rate = n
	}
	if p.rate < minCaptureRate || p.rate > maxCaptureRate {
		return p, fmt.Errorf("sample rate %d outside [%d, %d]", p.rate, minCaptureRate, maxCaptureRate)
	}

	var err error
	if p.input, err = lang.Parse(q.Get("language")); err != nil {
		return p, err
	}
	if p.output, err = lang.Parse(q.Get("output_language")); err != nil {
		return p, err
	}
	return p, nil
}

// wsFrames adapts a WebSocket connection to audio.FrameReader. Binary
// messages are PCM frames; a "stop" text message or a normal close ends the
// stream.
type wsFrames struct {
	conn *websocket.Conn
}

func (f *wsFrames) ReadFrame() ([]byte, error) {
	for {
		typ, data, err := f.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil, io.EOF
			}
			// Deadline hit: keep whatever audio arrived.
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				return nil, io.EOF
			}
			return nil, err
		}
		switch typ {
		case websocket.BinaryMessage:
			return data, nil
		case websocket.TextMessage:
			if string(data) == "stop" {
				return nil, io.EOF
			}
		}
	}
}
