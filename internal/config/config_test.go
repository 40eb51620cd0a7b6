package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	cleanup := setEnvs(t, map[string]string{
		"SARVAM_API_KEY": "sk-test",
	})
	defer cleanup()

	t.Run("defaults", func(t *testing.T) {
		cfg, err := Load(Overrides{EnvFile: "nonexistent.env"})
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if cfg.HTTPAddr != ":8000" {
			t.Errorf("HTTPAddr = %q, want :8000", cfg.HTTPAddr)
		}
		if cfg.LogLevel != "info" {
			t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
		}
		if cfg.SpeechMode != SpeechModeTranslate {
			t.Errorf("SpeechMode = %q, want %q", cfg.SpeechMode, SpeechModeTranslate)
		}
		if cfg.ChunkSize != 450 {
			t.Errorf("ChunkSize = %d, want 450", cfg.ChunkSize)
		}
		if cfg.SarvamBaseURL != "https://api.sarvam.ai" {
			t.Errorf("SarvamBaseURL = %q", cfg.SarvamBaseURL)
		}
		if cfg.ProviderTimeout != 120*time.Second {
			t.Errorf("ProviderTimeout = %v, want 120s", cfg.ProviderTimeout)
		}
		if cfg.GeminiEnabled() {
			t.Error("GeminiEnabled = true without GEMINI_API_KEY")
		}
		if cfg.JobRetention != 720*time.Hour {
			t.Errorf("JobRetention = %v, want 720h", cfg.JobRetention)
		}
	})

	t.Run("cli_overrides_take_priority", func(t *testing.T) {
		cfg, err := Load(Overrides{
			EnvFile:     "nonexistent.env",
			HTTPAddr:    ":9090",
			LogLevel:    "debug",
			SpeechMode:  SpeechModeTranscribe,
			DatabaseURL: "postgres://override/db",
		})
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if cfg.HTTPAddr != ":9090" {
			t.Errorf("HTTPAddr = %q, want :9090", cfg.HTTPAddr)
		}
		if cfg.LogLevel != "debug" {
			t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
		}
		if cfg.SpeechMode != SpeechModeTranscribe {
			t.Errorf("SpeechMode = %q, want %q", cfg.SpeechMode, SpeechModeTranscribe)
		}
		if cfg.DatabaseURL != "postgres://override/db" {
			t.Errorf("DatabaseURL = %q, want override", cfg.DatabaseURL)
		}
	})

	t.Run("env_file_read", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "test.env")
		if err := os.WriteFile(path, []byte("GEMINI_API_KEY=gm-test\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		defer os.Unsetenv("GEMINI_API_KEY")

		cfg, err := Load(Overrides{EnvFile: path})
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if !cfg.GeminiEnabled() {
			t.Error("GeminiEnabled = false, want true from .env")
		}
	})

	t.Run("invalid_speech_mode", func(t *testing.T) {
		_, err := Load(Overrides{EnvFile: "nonexistent.env", SpeechMode: "stream"})
		if err == nil {
			t.Error("expected error for invalid speech mode")
		}
	})
}

func TestLoadMissingRequired(t *testing.T) {
	cleanup := setEnvs(t, map[string]string{
		"SARVAM_API_KEY": "",
	})
	defer cleanup()
	os.Unsetenv("SARVAM_API_KEY")

	_, err := Load(Overrides{EnvFile: "nonexistent.env"})
	if err == nil {
		t.Error("expected error when SARVAM_API_KEY is missing")
	}
}

// setEnvs sets environment variables and returns a cleanup function.
func setEnvs(t *testing.T, envs map[string]string) func() {
	t.Helper()
	originals := make(map[string]string)
	unset := make([]string, 0)

	for k, v := range envs {
		if orig, ok := os.LookupEnv(k); ok {
			originals[k] = orig
		} else {
			unset = append(unset, k)
		}
		os.Setenv(k, v)
	}

	return func() {
		for k, v := range originals {
			os.Setenv(k, v)
		}
		for _, k := range unset {
			os.Unsetenv(k)
		}
	}
}

func TestLoad_SpeechProvider(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr bool
	}{
		{"default_sarvam", map[string]string{}, false},
		{"elevenlabs_with_key", map[string]string{"SPEECH_PROVIDER": "elevenlabs", "ELEVENLABS_API_KEY": "xi"}, false},
		{"elevenlabs_without_key", map[string]string{"SPEECH_PROVIDER": "elevenlabs"}, true},
		{"whisper_with_url", map[string]string{"SPEECH_PROVIDER": "whisper", "WHISPER_URL": "http://localhost:9000/v1/audio/transcriptions"}, false},
		{"whisper_without_url", map[string]string{"SPEECH_PROVIDER": "whisper"}, true},
		{"unknown", map[string]string{"SPEECH_PROVIDER": "deepgram"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range []string{"SPEECH_PROVIDER", "ELEVENLABS_API_KEY", "WHISPER_URL"} {
				t.Setenv(k, "")
				os.Unsetenv(k)
			}
			vars := map[string]string{"SARVAM_API_KEY": "sk-test"}
			for k, v := range tt.env {
				vars[k] = v
			}
			cleanup := setEnvs(t, vars)
			defer cleanup()

			cfg, err := Load(Overrides{EnvFile: "nonexistent.env"})
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if cfg.ElevenLabsModel != "scribe_v1" {
				t.Errorf("ElevenLabsModel = %q, want scribe_v1", cfg.ElevenLabsModel)
			}
		})
	}
}
