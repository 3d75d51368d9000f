package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr     string        `env:"HTTP_ADDR" envDefault:":8080"`
	ReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"60s"`
	IdleTimeout  time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"120s"`

	AuthToken      string   `env:"AUTH_TOKEN"`
	CORSOrigins    []string `env:"CORS_ORIGINS" envSeparator:","`
	LogLevel       string   `env:"LOG_LEVEL" envDefault:"info"`
	RateLimitRPS   float64  `env:"RATE_LIMIT_RPS" envDefault:"2"`
	RateLimitBurst int      `env:"RATE_LIMIT_BURST" envDefault:"5"`

	MaxUploadMB   int           `env:"MAX_UPLOAD_MB" envDefault:"25"`
	RemoteTimeout time.Duration `env:"REMOTE_TIMEOUT" envDefault:"30s"`
	SilenceRMS    float64       `env:"SILENCE_RMS" envDefault:"50"`
	TempDir       string        `env:"TEMP_DIR"`

	Capture CaptureConfig `envPrefix:"CAPTURE_"`

	STTProvider       string `env:"STT_PROVIDER" envDefault:"google"`
	TTSProvider       string `env:"TTS_PROVIDER" envDefault:"gtts"`
	TranslateProvider string `env:"TRANSLATE_PROVIDER" envDefault:"openai"`

	GoogleCredentialsFile string `env:"GOOGLE_CREDENTIALS_FILE"`

	WhisperURL    string `env:"WHISPER_URL" envDefault:"https://api.openai.com/v1/audio/transcriptions"`
	WhisperModel  string `env:"WHISPER_MODEL" envDefault:"whisper-1"`
	WhisperAPIKey string `env:"WHISPER_API_KEY"`

	DeepgramAPIKey string `env:"DEEPGRAM_API_KEY"`
	DeepgramModel  string `env:"DEEPGRAM_MODEL" envDefault:"nova-2"`

	GTTSHost string `env:"GTTS_HOST" envDefault:"translate.google.com"`

	ElevenLabsAPIKey   string `env:"ELEVENLABS_API_KEY"`
	ElevenLabsVoiceID  string `env:"ELEVENLABS_VOICE_ID" envDefault:"EXAVITQu4vr4xnSDxMaL"`
	ElevenLabsModel    string `env:"ELEVENLABS_MODEL" envDefault:"eleven_multilingual_v2"`
	ElevenLabsSTTModel string `env:"ELEVENLABS_STT_MODEL" envDefault:"scribe_v1"`

	OpenAIAPIKey         string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL        string `env:"OPENAI_BASE_URL"`
	OpenAITTSModel       string `env:"OPENAI_TTS_MODEL" envDefault:"tts-1"`
	OpenAITTSVoice       string `env:"OPENAI_TTS_VOICE" envDefault:"alloy"`
	OpenAITranslateModel string `env:"OPENAI_TRANSLATE_MODEL" envDefault:"gpt-4o-mini"`

	ArtifactStore     string        `env:"ARTIFACT_STORE" envDefault:"local"`
	ArtifactDir       string        `env:"ARTIFACT_DIR" envDefault:"./artifacts"`
	ArtifactRetention time.Duration `env:"ARTIFACT_RETENTION" envDefault:"1h"`

	S3 S3Config `envPrefix:"S3_"`
}

// CaptureConfig bounds live microphone capture.
type CaptureConfig struct {
	DefaultSeconds int `env:"DEFAULT_SECONDS" envDefault:"5"`
	MinSeconds     int `env:"MIN_SECONDS" envDefault:"3"`
	MaxSeconds     int `env:"MAX_SECONDS" envDefault:"10"`
	SampleRate     int `env:"SAMPLE_RATE" envDefault:"16000"`
}

// S3Config is shared by the "s3" and "minio" artifact stores.
type S3Config struct {
	Bucket        string        `env:"BUCKET"`
	Region        string        `env:"REGION" envDefault:"us-east-1"`
	Endpoint      string        `env:"ENDPOINT"`
	AccessKey     string        `env:"ACCESS_KEY"`
	SecretKey     string        `env:"SECRET_KEY"`
	Prefix        string        `env:"PREFIX"`
	PresignExpiry time.Duration `env:"PRESIGN_EXPIRY" envDefault:"15m"`
	UseSSL        bool          `env:"USE_SSL" envDefault:"true"`
}

// Enabled reports whether enough S3 settings are present to build a client.
func (c S3Config) Enabled() bool {
	return c.Bucket != "" && c.AccessKey != "" && c.SecretKey != ""
}

// Overrides holds CLI flag values that take priority over env vars.
type Overrides struct {
	EnvFile     string
	HTTPAddr    string
	LogLevel    string
	STTProvider string
	TTSProvider string
	ArtifactDir string
}

// Load reads configuration from .env file, environment variables, and CLI overrides.
// Priority: CLI flags > environment variables > .env file > struct defaults.
func Load(overrides Overrides) (*Config, error) {
	// Load .env file (silent if missing)
	envFile := overrides.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if _, err := os.Stat(envFile); err == nil {
		_ = godotenv.Load(envFile)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	// Apply CLI overrides (non-empty values win)
	if overrides.HTTPAddr != "" {
		cfg.HTTPAddr = overrides.HTTPAddr
	}
	if overrides.LogLevel != "" {
		cfg.LogLevel = overrides.LogLevel
	}
	if overrides.STTProvider != "" {
		cfg.STTProvider = overrides.STTProvider
	}
	if overrides.TTSProvider != "" {
		cfg.TTSProvider = overrides.TTSProvider
	}
	if overrides.ArtifactDir != "" {
		cfg.ArtifactDir = overrides.ArtifactDir
	}

	cfg.STTProvider = strings.ToLower(strings.TrimSpace(cfg.STTProvider))
	cfg.TTSProvider = strings.ToLower(strings.TrimSpace(cfg.TTSProvider))
	cfg.TranslateProvider = strings.ToLower(strings.TrimSpace(cfg.TranslateProvider))
	cfg.ArtifactStore = strings.ToLower(strings.TrimSpace(cfg.ArtifactStore))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks provider selections and the credentials each one needs.
func (c *Config) Validate() error {
	switch c.STTProvider {
	case "google":
	case "whisper":
		if c.WhisperURL == "" {
			return fmt.Errorf("STT_PROVIDER=whisper requires WHISPER_URL")
		}
	case "deepgram":
		if c.DeepgramAPIKey == "" {
			return fmt.Errorf("STT_PROVIDER=deepgram requires DEEPGRAM_API_KEY")
		}
	case "elevenlabs":
		if c.ElevenLabsAPIKey == "" {
			return fmt.Errorf("STT_PROVIDER=elevenlabs requires ELEVENLABS_API_KEY")
		}
	default:
		return fmt.Errorf("unknown STT_PROVIDER %q (want google, whisper, deepgram or elevenlabs)", c.STTProvider)
	}

	switch c.TTSProvider {
	case "gtts":
	case "elevenlabs":
		if c.ElevenLabsAPIKey == "" {
			return fmt.Errorf("TTS_PROVIDER=elevenlabs requires ELEVENLABS_API_KEY")
		}
	case "openai":
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("TTS_PROVIDER=openai requires OPENAI_API_KEY")
		}
	default:
		return fmt.Errorf("unknown TTS_PROVIDER %q (want gtts, elevenlabs or openai)", c.TTSProvider)
	}

	switch c.TranslateProvider {
	case "openai", "none":
	default:
		return fmt.Errorf("unknown TRANSLATE_PROVIDER %q (want openai or none)", c.TranslateProvider)
	}

	switch c.ArtifactStore {
	case "local":
	case "s3", "minio":
		if !c.S3.Enabled() {
			return fmt.Errorf("ARTIFACT_STORE=%s requires S3_BUCKET, S3_ACCESS_KEY and S3_SECRET_KEY", c.ArtifactStore)
		}
		if c.ArtifactStore == "minio" && c.S3.Endpoint == "" {
			return fmt.Errorf("ARTIFACT_STORE=minio requires S3_ENDPOINT")
		}
	default:
		return fmt.Errorf("unknown ARTIFACT_STORE %q (want local, s3 or minio)", c.ArtifactStore)
	}

	cp := c.Capture
	if cp.MinSeconds < 1 || cp.MaxSeconds < cp.MinSeconds {
		return fmt.Errorf("invalid capture bounds: min=%d max=%d", cp.MinSeconds, cp.MaxSeconds)
	}
	if cp.DefaultSeconds < cp.MinSeconds || cp.DefaultSeconds > cp.MaxSeconds {
		return fmt.Errorf("CAPTURE_DEFAULT_SECONDS=%d outside [%d, %d]", cp.DefaultSeconds, cp.MinSeconds, cp.MaxSeconds)
	}
	if c.RateLimitRPS > 0 && c.RateLimitBurst < 1 {
		return fmt.Errorf("RATE_LIMIT_BURST must be >= 1 when RATE_LIMIT_RPS is set")
	}
	if c.MaxUploadMB < 1 {
		return fmt.Errorf("MAX_UPLOAD_MB must be >= 1")
	}
	return nil
}

// TranslationEnabled reports whether a translation provider is configured.
func (c *Config) TranslationEnabled() bool {
	return c.TranslateProvider != "none" && c.OpenAIAPIKey != ""
}
