package api

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/snarg/voxconvert/internal/artifact"
	"github.com/snarg/voxconvert/internal/audio"
	"github.com/snarg/voxconvert/internal/convert"
	"github.com/snarg/voxconvert/internal/lang"
	"github.com/snarg/voxconvert/internal/metrics"
)

// Converter runs conversions. *convert.Service implements it.
type Converter interface {
	SpeechToText(ctx context.Context, req convert.SpeechRequest) (*convert.Transcript, error)
	TextToSpeech(ctx context.Context, req convert.SynthesisRequest) (*convert.Artifact, error)
	SpeechToSpeech(ctx context.Context, req convert.VoiceRequest) (*convert.VoiceResult, error)
	TransformText(ctx context.Context, req convert.TransformRequest) (string, error)
}

var _ Converter = (*convert.Service)(nil)

// TranscriptResponse is the body of a successful speech-to-text conversion.
type TranscriptResponse struct {
	*convert.Transcript
	DownloadURL string `json:"download_url,omitempty"`
}

// AudioResponse carries synthesized audio inline for playback plus a
// download link.
type AudioResponse struct {
	AudioBase64 string `json:"audio_base64"`
	MIMEType    string `json:"mime_type"`
	Filename    string `json:"filename"`
	DownloadURL string `json:"download_url,omitempty"`
}

// VoiceResponse is the body of a speech-to-speech conversion. On a synthesis
// failure the transcript is still returned alongside the error.
type VoiceResponse struct {
	Transcript *convert.Transcript `json:"transcript,omitempty"`
	Audio      *AudioResponse      `json:"audio,omitempty"`
	Error      string              `json:"error,omitempty"`
	Code       string              `json:"code,omitempty"`
}

// TextResponse is the body of a text-to-text conversion.
type TextResponse struct {
	Text        string `json:"text"`
	Mode        string `json:"mode"`
	DownloadURL string `json:"download_url,omitempty"`
}

type synthesisBody struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

type transformBody struct {
	Text           string `json:"text"`
	Mode           string `json:"mode"`
	TargetLanguage string `json:"target_language"`
}

// ConvertHandler serves the four conversion endpoints.
type ConvertHandler struct {
	conv      Converter
	artifacts *artifactSaver
	maxUpload int64
	log       zerolog.Logger
}

// NewConvertHandler creates a conversion handler. store may be nil, in which
// case responses carry no download URL.
func NewConvertHandler(conv Converter, store artifact.Store, maxUpload int64, log zerolog.Logger) *ConvertHandler {
	log = log.With().Str("handler", "convert").Logger()
	return &ConvertHandler{
		conv:      conv,
		artifacts: &artifactSaver{store: store, log: log},
		maxUpload: maxUpload,
		log:       log,
	}
}

// Routes registers the conversion endpoints.
func (h *ConvertHandler) Routes(r chi.Router) {
	r.Post("/speech-to-text", h.SpeechToText)
	r.Post("/speech-to-speech", h.SpeechToSpeech)
	r.With(MaxBodySize(h.maxUpload)).Post("/text-to-speech", h.TextToSpeech)
	r.With(MaxBodySize(h.maxUpload)).Post("/text-to-text", h.TextToText)
}

// SpeechToText handles POST /api/v1/speech-to-text.
// Multipart fields: audio (WAV or MP3 file), language.
func (h *ConvertHandler) SpeechToText(w http.ResponseWriter, r *http.Request) {
	src, ok := h.readUpload(w, r)
	if !ok {
		return
	}
	defer r.MultipartForm.RemoveAll()

	language, err := lang.Parse(r.FormValue("language"))
	if err != nil {
		writeBadRequest(w, err)
		return
	}

	tr, err := h.conv.SpeechToText(r.Context(), convert.SpeechRequest{Source: src, Language: language})
	if err != nil {
		h.logFailure(r, convert.OpSpeechToText, err)
		WriteConversionError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, TranscriptResponse{
		Transcript:  tr,
		DownloadURL: h.artifacts.save(r.Context(), convert.TextFilename, []byte(tr.Text)),
	})
}

// TextToSpeech handles POST /api/v1/text-to-speech.
func (h *ConvertHandler) TextToSpeech(w http.ResponseWriter, r *http.Request) {
	var body synthesisBody
	if !h.decodeBody(w, r, &body) {
		return
	}
	language, err := lang.Parse(body.Language)
	if err != nil {
		writeBadRequest(w, err)
		return
	}

	art, err := h.conv.TextToSpeech(r.Context(), convert.SynthesisRequest{Text: body.Text, Language: language})
	if err != nil {
		h.logFailure(r, convert.OpTextToSpeech, err)
		WriteConversionError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, h.artifacts.audio(r.Context(), art))
}

// SpeechToSpeech handles POST /api/v1/speech-to-speech.
// Multipart fields: audio, input_language, output_language.
func (h *ConvertHandler) SpeechToSpeech(w http.ResponseWriter, r *http.Request) {
	src, ok := h.readUpload(w, r)
	if !ok {
		return
	}
	defer r.MultipartForm.RemoveAll()

	in, err := lang.Parse(r.FormValue("input_language"))
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	out, err := lang.Parse(r.FormValue("output_language"))
	if err != nil {
		writeBadRequest(w, err)
		return
	}

	res, err := h.conv.SpeechToSpeech(r.Context(), convert.VoiceRequest{
		Source:         src,
		InputLanguage:  in,
		OutputLanguage: out,
	})
	status, body := h.voiceResponse(r.Context(), res, err)
	if err != nil {
		h.logFailure(r, convert.OpSpeechToSpeech, err)
	}
	WriteJSON(w, status, body)
}

// TextToText handles POST /api/v1/text-to-text.
func (h *ConvertHandler) TextToText(w http.ResponseWriter, r *http.Request) {
	var body transformBody
	if !h.decodeBody(w, r, &body) {
		return
	}
	if strings.TrimSpace(body.Text) == "" {
		WriteConversionError(w, &convert.Error{Kind: convert.KindEmptyInput, Op: convert.OpTextToText})
		return
	}
	mode, err := convert.ParseMode(body.Mode)
	if err != nil {
		writeBadRequest(w, err)
		return
	}

	out, err := h.conv.TransformText(r.Context(), convert.TransformRequest{
		Text:   body.Text,
		Mode:   mode,
		Target: body.TargetLanguage,
	})
	if err != nil {
		h.logFailure(r, convert.OpTextToText, err)
		WriteConversionError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, TextResponse{
		Text:        out,
		Mode:        string(mode),
		DownloadURL: h.artifacts.save(r.Context(), convert.TextFilename, []byte(out)),
	})
}

// readUpload parses the multipart form and wraps the "audio" file. A missing
// file yields a nil source, which the conversion reports as EmptyInput.
func (h *ConvertHandler) readUpload(w http.ResponseWriter, r *http.Request) (audio.Source, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		if isTooLarge(err) {
			h.writeTooLarge(w)
			return nil, false
		}
		WriteErrorWithCode(w, http.StatusBadRequest, ErrInvalidBody, "invalid multipart form: "+err.Error())
		return nil, false
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		return nil, true
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		r.MultipartForm.RemoveAll()
		WriteError(w, http.StatusBadRequest, "failed to read audio file")
		return nil, false
	}
	return audio.NewUploadSource(header.Filename, data), true
}

// decodeBody decodes a JSON request body, writing 413 or 400 on failure.
func (h *ConvertHandler) decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := DecodeJSON(r, v); err != nil {
		if isTooLarge(err) {
			h.writeTooLarge(w)
			return false
		}
		WriteErrorWithCode(w, http.StatusBadRequest, ErrInvalidBody, "invalid JSON body")
		return false
	}
	return true
}

func (h *ConvertHandler) writeTooLarge(w http.ResponseWriter) {
	WriteErrorWithCode(w, http.StatusRequestEntityTooLarge, ErrTooLarge,
		fmt.Sprintf("request body exceeds %d MB", h.maxUpload>>20))
}

func isTooLarge(err error) bool {
	var tooLarge *http.MaxBytesError
	return errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large")
}

func (h *ConvertHandler) voiceResponse(ctx context.Context, res *convert.VoiceResult, err error) (int, VoiceResponse) {
	var body VoiceResponse
	if res != nil {
		body.Transcript = res.Transcript
		if res.Artifact != nil {
			body.Audio = h.artifacts.audio(ctx, res.Artifact)
		}
	}
	if err != nil {
		status, e := conversionError(err)
		body.Error = e.Error
		body.Code = e.Code
		return status, body
	}
	return http.StatusOK, body
}

func (h *ConvertHandler) logFailure(r *http.Request, op convert.Operation, err error) {
	ev := h.log.Warn()
	switch convert.KindOf(err) {
	case convert.KindEmptyInput, convert.KindInvalidRequest, convert.KindUnintelligible:
		ev = h.log.Debug()
	}
	ev.Err(err).
		Str("op", string(op)).
		Str("request_id", r.Header.Get("X-Request-ID")).
		Msg("conversion failed")
}

func writeBadRequest(w http.ResponseWriter, err error) {
	WriteJSON(w, http.StatusBadRequest, ErrorResponse{
		Error:  convert.KindInvalidRequest.Message(),
		Code:   ErrBadRequest,
		Detail: err.Error(),
	})
}

// artifactSaver stores produced output and returns its download URL. A
// failed save is logged and the URL omitted; the conversion result stands.
type artifactSaver struct {
	store artifact.Store
	log   zerolog.Logger
}

func (s *artifactSaver) save(ctx context.Context, filename string, data []byte) string {
	if s == nil || s.store == nil || len(data) == 0 {
		return ""
	}
	id := artifact.NewID()
	key, err := artifact.Key(id, filename)
	if err != nil {
		s.log.Error().Err(err).Msg("invalid artifact key")
		return ""
	}
	if err := s.store.Save(ctx, key, data, artifact.ContentType(filename)); err != nil {
		metrics.ArtifactsSavedTotal.WithLabelValues(s.store.Type(), "error").Inc()
		s.log.Error().Err(err).Str("key", key).Msg("failed to save artifact")
		return ""
	}
	metrics.ArtifactsSavedTotal.WithLabelValues(s.store.Type(), "success").Inc()
	return "/api/v1/artifacts/" + key
}

// audio saves a synthesized artifact and builds its response.
func (s *artifactSaver) audio(ctx context.Context, art *convert.Artifact) *AudioResponse {
	return &AudioResponse{
		AudioBase64: base64.StdEncoding.EncodeToString(art.Data),
		MIMEType:    art.MIMEType,
		Filename:    art.Filename,
		DownloadURL: s.save(ctx, art.Filename, art.Data),
	}
}
