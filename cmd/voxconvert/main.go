package main

import (
	"context"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/snarg/voxconvert"
	"github.com/snarg/voxconvert/internal/api"
	"github.com/snarg/voxconvert/internal/artifact"
	"github.com/snarg/voxconvert/internal/audio"
	"github.com/snarg/voxconvert/internal/config"
	"github.com/snarg/voxconvert/internal/convert"
	"github.com/snarg/voxconvert/internal/metrics"
	"github.com/snarg/voxconvert/internal/synth"
	"github.com/snarg/voxconvert/internal/transcribe"
	"github.com/snarg/voxconvert/internal/translate"
)

var version = "dev"

func main() {
	startTime := time.Now()

	// CLI flags
	var overrides config.Overrides
	flag.StringVar(&overrides.EnvFile, "env-file", "", "Path to .env file (default: .env)")
	flag.StringVar(&overrides.HTTPAddr, "listen", "", "HTTP listen address (env: HTTP_ADDR)")
	flag.StringVar(&overrides.LogLevel, "log-level", "", "Log level: debug, info, warn, error (env: LOG_LEVEL)")
	flag.StringVar(&overrides.STTProvider, "stt", "", "Recognition provider: google, whisper, deepgram, elevenlabs (env: STT_PROVIDER)")
	flag.StringVar(&overrides.TTSProvider, "tts", "", "Synthesis provider: gtts, elevenlabs, openai (env: TTS_PROVIDER)")
	flag.StringVar(&overrides.ArtifactDir, "artifact-dir", "", "Local artifact directory (env: ARTIFACT_DIR)")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("voxconvert", version)
		return
	}

	// Config
	cfg, err := config.Load(overrides)
	if err != nil {
		early := zerolog.New(os.Stderr).With().Timestamp().Logger()
		early.Fatal().Err(err).Msg("failed to load config")
	}

	// Logger
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(os.Stdout).With().Timestamp().Logger().Level(level)
	log.Info().Str("version", version).Msg("voxconvert starting")

	// Context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !audio.CheckFFmpeg() {
		log.Warn().Msg("ffmpeg not found in PATH; MP3 uploads and non-PCM WAV will be rejected")
	}

	// Recognition
	recognizer, closeRecognizer, err := newRecognizer(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("provider", cfg.STTProvider).Msg("failed to create recognition provider")
	}
	defer closeRecognizer()

	// Synthesis
	synthesizer := newSynthesizer(cfg)

	// Translation
	var translator convert.Translator
	providers := api.Providers{STT: recognizer.Name(), TTS: synthesizer.Name()}
	if cfg.TranslationEnabled() {
		t := translate.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAITranslateModel)
		translator = t
		providers.Translate = t.Name()
	} else {
		log.Info().Msg("translation disabled (set OPENAI_API_KEY to enable)")
	}

	log.Info().
		Str("stt", recognizer.Name()).
		Str("stt_model", recognizer.Model()).
		Str("tts", synthesizer.Name()).
		Str("tts_model", synthesizer.Model()).
		Str("translate", providers.Translate).
		Msg("providers configured")

	// Artifact store
	storeLog := log.With().Str("component", "artifact").Logger()
	store, services, err := artifact.New(cfg, storeLog)
	if err != nil {
		log.Fatal().Err(err).Str("store", cfg.ArtifactStore).Msg("failed to initialize artifact store")
	}
	for _, bg := range services {
		bg.Start()
		defer bg.Stop()
	}
	log.Info().Str("type", store.Type()).Msg("artifact store ready")

	// Conversion service
	svc := convert.NewService(convert.Options{
		Recognizer:     recognizer,
		Synthesizer:    synthesizer,
		Translator:     translator,
		TempDir:        cfg.TempDir,
		SilenceRMS:     cfg.SilenceRMS,
		RemoteTimeout:  cfg.RemoteTimeout,
		Observer:       metrics.ObserveConversion,
		RemoteObserver: metrics.ObserveRemote,
		Log:            log,
	})

	// HTTP Server
	webFS, err := fs.Sub(voxconvert.WebFiles, "web")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load embedded web files")
	}
	httpLog := log.With().Str("component", "http").Logger()
	srv := api.NewServer(api.ServerOptions{
		Config:     cfg,
		Converter:  svc,
		Store:      store,
		Providers:  providers,
		WebFS:      webFS,
		Transcoder: audio.CheckFFmpeg,
		Version:    version,
		StartTime:  startTime,
		Log:        httpLog,
	})
	prometheus.MustRegister(metrics.NewCollector(srv, audio.CheckFFmpeg))

	// Start HTTP server in background
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	// Wait for shutdown signal or server error
	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("http server error")
		}
	}

	// Graceful shutdown with 10s timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown error")
	}

	log.Info().Msg("voxconvert stopped")
}

func newRecognizer(ctx context.Context, cfg *config.Config) (transcribe.Provider, func(), error) {
	switch cfg.STTProvider {
	case "whisper":
		return transcribe.NewWhisperClient(cfg.WhisperURL, cfg.WhisperModel, cfg.WhisperAPIKey), func() {}, nil
	case "deepgram":
		return transcribe.NewDeepgramClient(cfg.DeepgramAPIKey, cfg.DeepgramModel), func() {}, nil
	case "elevenlabs":
		return transcribe.NewElevenLabsClient(cfg.ElevenLabsAPIKey, cfg.ElevenLabsSTTModel), func() {}, nil
	}
	g, err := transcribe.NewGoogleClient(ctx, cfg.GoogleCredentialsFile)
	if err != nil {
		return nil, nil, err
	}
	return g, func() { g.Close() }, nil
}

func newSynthesizer(cfg *config.Config) synth.Provider {
	switch cfg.TTSProvider {
	case "elevenlabs":
		return synth.NewElevenLabsClient(cfg.ElevenLabsAPIKey, cfg.ElevenLabsVoiceID, cfg.ElevenLabsModel)
	case "openai":
		return synth.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAITTSModel, cfg.OpenAITTSVoice)
	}
	return synth.NewGTTSClient(cfg.GTTSHost)
}
