// Package convert implements the four conversion operations and the rules that
// sequence and guard them. Remote work is delegated to a Recognizer, a
// Synthesizer and a Translator; audio arrives through an audio.Source.
package convert

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/snarg/voxconvert/internal/audio"
	"github.com/snarg/voxconvert/internal/lang"
)

// Operation names one user-triggered conversion.
type Operation string

const (
	OpSpeechToText   Operation = "speech_to_text"
	OpTextToSpeech   Operation = "text_to_speech"
	OpSpeechToSpeech Operation = "speech_to_speech"
	OpTextToText     Operation = "text_to_text"
)

const (
	MIMEAudioMP3  = "audio/mp3"
	MIMETextPlain = "text/plain"

	TextToSpeechFilename   = "converted_voice.mp3"
	SpeechToSpeechFilename = "voice_output.mp3"
	TextFilename           = "converted_text.txt"
)

// ErrTranslationDisabled is wrapped when translate mode is used without a
// configured translator.
var ErrTranslationDisabled = errors.New("translation is not configured")

// Recognizer turns a WAV file into text. It returns ErrNoSpeech when the audio
// holds nothing it can transcribe.
type Recognizer interface {
	Transcribe(ctx context.Context, wavPath string, locale lang.Locale) (string, error)
	Name() string
}

// Synthesizer turns text into MP3 audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, code lang.VoiceCode) ([]byte, error)
	Name() string
}

// Translator translates text into the target language.
type Translator interface {
	Translate(ctx context.Context, text string, target lang.VoiceCode) (string, error)
	Name() string
}

// Transcript is a successful recognition result.
type Transcript struct {
	Text         string      `json:"text"`
	Locale       lang.Locale `json:"locale"`
	Provider     string      `json:"provider"`
	AudioSeconds float64     `json:"audio_seconds"`
}

// Artifact is produced output ready for playback or download.
type Artifact struct {
	Data     []byte
	MIMEType string
	Filename string
}

// VoiceResult is the outcome of speech-to-speech. Transcript is set whenever
// recognition succeeded, even if synthesis then failed.
type VoiceResult struct {
	Transcript *Transcript
	Artifact   *Artifact
}

type SpeechRequest struct {
	Source   audio.Source
	Language lang.Language
}

type SynthesisRequest struct {
	Text     string
	Language lang.Language
}

type VoiceRequest struct {
	Source         audio.Source
	InputLanguage  lang.Language
	OutputLanguage lang.Language
}

type TransformRequest struct {
	Text   string
	Mode   Mode
	Target string // translation target, translate mode only
}

// RemoteObserver is told about every outbound provider call.
type RemoteObserver func(kind, provider string, err error, elapsed time.Duration)

// Options configures a Service.
type Options struct {
	Recognizer  Recognizer
	Synthesizer Synthesizer
	Translator  Translator // nil disables translate mode

	TempDir       string
	SilenceRMS    float64       // clips quieter than this are Unintelligible; 0 disables
	RemoteTimeout time.Duration // per remote call; 0 = no deadline

	Observer       Observer
	RemoteObserver RemoteObserver
	Log            zerolog.Logger
}

// Service is the orchestrator. It holds no per-conversion state; every
// method call is one independent conversion.
type Service struct {
	opts Options
	log  zerolog.Logger
}

// NewService creates a conversion service.
func NewService(opts Options) *Service {
	return &Service{
		opts: opts,
		log:  opts.Log.With().Str("component", "convert").Logger(),
	}
}

// SpeechToText transcribes the audio from req.Source.
func (s *Service) SpeechToText(ctx context.Context, req SpeechRequest) (tr *Transcript, err error) {
	done := s.begin(OpSpeechToText)
	defer func() { done(err) }()

	return s.recognize(ctx, OpSpeechToText, req.Source, req.Language.Recognition)
}

// TextToSpeech synthesizes req.Text. Blank text fails with EmptyInput before
// the synthesizer is called.
func (s *Service) TextToSpeech(ctx context.Context, req SynthesisRequest) (a *Artifact, err error) {
	done := s.begin(OpTextToSpeech)
	defer func() { done(err) }()

	return s.synthesize(ctx, OpTextToSpeech, req.Text, req.Language.Synthesis, TextToSpeechFilename)
}

// SpeechToSpeech recognizes speech in the input language and re-synthesizes
// the transcript in the output language. A recognition failure is returned
// as-is and synthesis is never attempted.
func (s *Service) SpeechToSpeech(ctx context.Context, req VoiceRequest) (res *VoiceResult, err error) {
	done := s.begin(OpSpeechToSpeech)
	defer func() { done(err) }()

	tr, err := s.recognize(ctx, OpSpeechToText, req.Source, req.InputLanguage.Recognition)
	if err != nil {
		return nil, err
	}

	art, err := s.synthesize(ctx, OpTextToSpeech, tr.Text, req.OutputLanguage.Synthesis, SpeechToSpeechFilename)
	if err != nil {
		return &VoiceResult{Transcript: tr}, err
	}
	return &VoiceResult{Transcript: tr, Artifact: art}, nil
}

// TransformText applies a local transform, or translates when req.Mode is
// ModeTranslate. Local transforms never fail.
func (s *Service) TransformText(ctx context.Context, req TransformRequest) (out string, err error) {
	done := s.begin(OpTextToText)
	defer func() { done(err) }()

	if req.Mode.IsLocal() {
		return Apply(req.Mode, req.Text), nil
	}
	if req.Mode != ModeTranslate {
		return "", fail(OpTextToText, KindInvalidRequest, fmt.Errorf("unknown transform mode %q", req.Mode))
	}

	target, err := lang.TranslationTarget(req.Target)
	if err != nil {
		return "", fail(OpTextToText, KindInvalidRequest, err)
	}
	if s.opts.Translator == nil {
		return "", fail(OpTextToText, KindTranslationServiceError, ErrTranslationDisabled)
	}
	if strings.TrimSpace(req.Text) == "" {
		return req.Text, nil
	}

	rctx, cancel := s.remoteContext(ctx)
	defer cancel()

	start := time.Now()
	translated, err := s.opts.Translator.Translate(rctx, req.Text, target)
	s.observeRemote("translate", s.opts.Translator.Name(), err, time.Since(start))
	if err != nil {
		return "", fail(OpTextToText, KindTranslationServiceError, err)
	}
	if strings.TrimSpace(translated) == "" {
		return "", fail(OpTextToText, KindTranslationServiceError, errors.New("empty translation"))
	}
	return translated, nil
}

func (s *Service) recognize(ctx context.Context, op Operation, src audio.Source, locale lang.Locale) (*Transcript, error) {
	if src == nil {
		return nil, fail(op, KindEmptyInput, audio.ErrEmpty)
	}

	clip, err := src.Acquire(ctx)
	if err != nil {
		s.log.Debug().Err(err).Str("source", src.Kind()).Msg("failed to acquire audio")
		return nil, fail(op, audioKind(ctx, err), err)
	}
	s.log.Debug().Str("source", src.Kind()).Str("format", string(clip.Format)).Int("bytes", len(clip.Data)).Msg("audio acquired")

	norm, err := audio.Normalize(ctx, clip, s.opts.TempDir)
	if err != nil {
		return nil, fail(op, audioKind(ctx, err), err)
	}
	defer func() {
		if err := norm.Close(); err != nil {
			s.log.Warn().Err(err).Str("path", norm.Path).Msg("failed to remove temp audio")
		}
	}()

	if s.opts.SilenceRMS > 0 {
		if rms := audio.RMS(norm.Samples); rms < s.opts.SilenceRMS {
			s.log.Debug().Float64("rms", rms).Float64("threshold", s.opts.SilenceRMS).Msg("clip below silence threshold, skipping recognition")
			return nil, fail(op, KindUnintelligible, ErrNoSpeech)
		}
	}

	rctx, cancel := s.remoteContext(ctx)
	defer cancel()

	start := time.Now()
	text, err := s.opts.Recognizer.Transcribe(rctx, norm.Path, locale)
	s.observeRemote("stt", s.opts.Recognizer.Name(), err, time.Since(start))
	if err != nil {
		if errors.Is(err, ErrNoSpeech) {
			return nil, fail(op, KindUnintelligible, err)
		}
		return nil, fail(op, KindServiceUnavailable, err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fail(op, KindUnintelligible, ErrNoSpeech)
	}

	return &Transcript{
		Text:         text,
		Locale:       locale,
		Provider:     s.opts.Recognizer.Name(),
		AudioSeconds: norm.Duration(),
	}, nil
}

func (s *Service) synthesize(ctx context.Context, op Operation, text string, code lang.VoiceCode, filename string) (*Artifact, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fail(op, KindEmptyInput, errors.New("text is blank"))
	}

	rctx, cancel := s.remoteContext(ctx)
	defer cancel()

	start := time.Now()
	data, err := s.opts.Synthesizer.Synthesize(rctx, text, code)
	s.observeRemote("tts", s.opts.Synthesizer.Name(), err, time.Since(start))
	if err != nil {
		return nil, fail(op, KindServiceUnavailable, err)
	}
	if len(data) == 0 {
		return nil, fail(op, KindServiceUnavailable, errors.New("synthesizer returned no audio"))
	}

	return &Artifact{Data: data, MIMEType: MIMEAudioMP3, Filename: filename}, nil
}

func (s *Service) remoteContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opts.RemoteTimeout > 0 {
		return context.WithTimeout(ctx, s.opts.RemoteTimeout)
	}
	return context.WithCancel(ctx)
}

func (s *Service) observeRemote(kind, provider string, err error, elapsed time.Duration) {
	if s.opts.RemoteObserver != nil {
		s.opts.RemoteObserver(kind, provider, err, elapsed)
	}
	ev := s.log.Debug()
	if err != nil && !errors.Is(err, ErrNoSpeech) {
		ev = s.log.Warn().Err(err)
	}
	ev.Str("call", kind).Str("provider", provider).Dur("elapsed", elapsed).Msg("remote call finished")
}

// audioKind classifies an error from acquiring or normalizing audio.
func audioKind(ctx context.Context, err error) Kind {
	switch {
	case ctx.Err() != nil:
		return KindServiceUnavailable
	case errors.Is(err, audio.ErrEmpty):
		return KindEmptyInput
	case errors.Is(err, audio.ErrTranscoderUnavailable):
		return KindServiceUnavailable
	}
	return KindInvalidAudio
}
