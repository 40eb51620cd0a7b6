package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Speech modes select which speech endpoint is called.
const (
	SpeechModeTranslate  = "translate"  // speech-to-text-translate, one combined call
	SpeechModeTranscribe = "transcribe" // speech-to-text with language auto-detection
)

// Speech providers. Translation always goes through Sarvam.
const (
	SpeechProviderSarvam     = "sarvam"
	SpeechProviderElevenLabs = "elevenlabs"
	SpeechProviderWhisper    = "whisper"
)

type Config struct {
	SarvamAPIKey    string        `env:"SARVAM_API_KEY,required"`
	SarvamBaseURL   string        `env:"SARVAM_BASE_URL" envDefault:"https://api.sarvam.ai"`
	SpeechProvider  string        `env:"SPEECH_PROVIDER" envDefault:"sarvam"`
	SpeechMode      string        `env:"SPEECH_MODE" envDefault:"translate"`
	ChunkSize       int           `env:"TRANSLATE_CHUNK_SIZE" envDefault:"450"`
	ProviderTimeout time.Duration `env:"PROVIDER_TIMEOUT" envDefault:"120s"`

	ElevenLabsAPIKey   string `env:"ELEVENLABS_API_KEY"`
	ElevenLabsModel    string `env:"ELEVENLABS_MODEL" envDefault:"scribe_v1"`
	ElevenLabsKeyterms string `env:"ELEVENLABS_KEYTERMS"`
	ElevenLabsURL      string `env:"ELEVENLABS_URL"`

	WhisperURL    string `env:"WHISPER_URL"`
	WhisperModel  string `env:"WHISPER_MODEL" envDefault:"whisper-1"`
	WhisperAPIKey string `env:"WHISPER_API_KEY"`

	// Generative translation is enabled only when GeminiAPIKey is set.
	GeminiAPIKey  string `env:"GEMINI_API_KEY"`
	GeminiModel   string `env:"GEMINI_MODEL" envDefault:"gemini-2.0-flash"`
	GeminiBaseURL string `env:"GEMINI_BASE_URL"`

	MaxUploadBytes int64 `env:"MAX_UPLOAD_BYTES" envDefault:"26214400"`

	// Job history is recorded only when DatabaseURL is set.
	DatabaseURL       string        `env:"DATABASE_URL"`
	JobRetention      time.Duration `env:"JOB_RETENTION" envDefault:"720h"`
	RetentionInterval time.Duration `env:"JOB_RETENTION_INTERVAL" envDefault:"1h"`

	HTTPAddr     string        `env:"HTTP_ADDR" envDefault:":8000"`
	ReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"30s"`
	WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"300s"`
	IdleTimeout  time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"120s"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// GeminiEnabled reports whether the supplementary generative translation runs.
func (c *Config) GeminiEnabled() bool { return c.GeminiAPIKey != "" }

// Overrides holds CLI flag values that take priority over env vars.
type Overrides struct {
	EnvFile     string
	HTTPAddr    string
	LogLevel    string
	SpeechMode  string
	DatabaseURL string
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
	if overrides.SpeechMode != "" {
		cfg.SpeechMode = overrides.SpeechMode
	}
	if overrides.DatabaseURL != "" {
		cfg.DatabaseURL = overrides.DatabaseURL
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.SpeechProvider {
	case SpeechProviderSarvam:
	case SpeechProviderElevenLabs:
		if c.ElevenLabsAPIKey == "" {
			return fmt.Errorf("SPEECH_PROVIDER=elevenlabs requires ELEVENLABS_API_KEY")
		}
	case SpeechProviderWhisper:
		if c.WhisperURL == "" {
			return fmt.Errorf("SPEECH_PROVIDER=whisper requires WHISPER_URL")
		}
	default:
		return fmt.Errorf("invalid SPEECH_PROVIDER %q: must be sarvam, elevenlabs or whisper", c.SpeechProvider)
	}
	switch c.SpeechMode {
	case SpeechModeTranslate, SpeechModeTranscribe:
	default:
		return fmt.Errorf("invalid SPEECH_MODE %q: must be %q or %q", c.SpeechMode, SpeechModeTranslate, SpeechModeTranscribe)
	}
	if c.ChunkSize < 1 {
		return fmt.Errorf("invalid TRANSLATE_CHUNK_SIZE %d: must be >= 1", c.ChunkSize)
	}
	if c.MaxUploadBytes < 1 {
		return fmt.Errorf("invalid MAX_UPLOAD_BYTES %d: must be >= 1", c.MaxUploadBytes)
	}
	return nil
}
