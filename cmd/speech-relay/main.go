package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/snarg/speech-relay/internal/api"
	"github.com/snarg/speech-relay/internal/config"
	"github.com/snarg/speech-relay/internal/database"
	"github.com/snarg/speech-relay/internal/metrics"
	"github.com/snarg/speech-relay/internal/process"
	"github.com/snarg/speech-relay/internal/transcribe"
	"github.com/snarg/speech-relay/internal/translate"
)

var version = "dev"

func main() {
	startTime := time.Now()

	var overrides config.Overrides
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.StringVar(&overrides.EnvFile, "env-file", "", "path to .env file (default .env)")
	flag.StringVar(&overrides.HTTPAddr, "listen", "", "HTTP listen address (overrides HTTP_ADDR)")
	flag.StringVar(&overrides.LogLevel, "log-level", "", "log level (overrides LOG_LEVEL)")
	flag.StringVar(&overrides.SpeechMode, "speech-mode", "", "translate or transcribe (overrides SPEECH_MODE)")
	flag.StringVar(&overrides.DatabaseURL, "database-url", "", "Postgres URL for job history (overrides DATABASE_URL)")
	flag.Parse()

	if *showVersion {
		fmt.Println(version)
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
	log.Info().Str("version", version).Str("speech_mode", cfg.SpeechMode).Msg("speech-relay starting")

	// Context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Database (optional job history)
	var db *database.DB
	if cfg.DatabaseURL != "" {
		dbLog := log.With().Str("component", "database").Logger()
		db, err = database.Connect(ctx, cfg.DatabaseURL, dbLog)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer db.Close()
		if err := db.Migrate(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to migrate database")
		}
		go db.RunRetention(ctx, cfg.JobRetention, cfg.RetentionInterval)
	} else {
		log.Info().Msg("DATABASE_URL not set, job history disabled")
	}

	// Providers
	speech := newSpeechProvider(cfg)
	log.Info().Str("provider", speech.Name()).Str("model", speech.Model()).Msg("speech provider configured")
	translator := translate.NewSarvamTranslator(translate.SarvamOptions{
		BaseURL: cfg.SarvamBaseURL,
		APIKey:  cfg.SarvamAPIKey,
		Timeout: cfg.ProviderTimeout,
	})

	var generative process.TextTranslator
	if cfg.GeminiEnabled() {
		gen, err := translate.NewGeminiGenerator(ctx, translate.GeminiOptions{
			APIKey:  cfg.GeminiAPIKey,
			Model:   cfg.GeminiModel,
			BaseURL: cfg.GeminiBaseURL,
			Timeout: cfg.ProviderTimeout,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create gemini client")
		}
		generative = translate.NewGeminiTranslator(gen, cfg.GeminiModel)
		log.Info().Str("model", cfg.GeminiModel).Msg("generative translation enabled")
	}

	orch := process.New(process.Options{
		Speech:     speech,
		Translator: translator,
		Generative: generative,
		ChunkSize:  cfg.ChunkSize,
		Log:        log.With().Str("component", "process").Logger(),
	})

	// HTTP Server
	httpLog := log.With().Str("component", "http").Logger()
	srv := api.NewServer(api.ServerOptions{
		Config:      cfg,
		Processor:   orch,
		DB:          db,
		SpeechModel: speech.Model(),
		Version:     version,
		StartTime:   startTime,
		Log:         httpLog,
	})

	var pool *pgxpool.Pool
	if db != nil {
		pool = db.Pool
	}
	prometheus.MustRegister(metrics.NewCollector(pool, srv.Stats()))

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

	log.Info().Msg("speech-relay stopped")
}

// newSpeechProvider builds the configured speech-to-text backend.
func newSpeechProvider(cfg *config.Config) transcribe.Provider {
	switch cfg.SpeechProvider {
	case config.SpeechProviderElevenLabs:
		return transcribe.NewElevenLabsClient(transcribe.ElevenLabsOptions{
			URL:      cfg.ElevenLabsURL,
			APIKey:   cfg.ElevenLabsAPIKey,
			Model:    cfg.ElevenLabsModel,
			Keyterms: cfg.ElevenLabsKeyterms,
			Timeout:  cfg.ProviderTimeout,
		})
	case config.SpeechProviderWhisper:
		return transcribe.NewWhisperClient(transcribe.WhisperOptions{
			URL:     cfg.WhisperURL,
			Model:   cfg.WhisperModel,
			APIKey:  cfg.WhisperAPIKey,
			Timeout: cfg.ProviderTimeout,
		})
	default:
		return transcribe.NewSarvamClient(transcribe.SarvamOptions{
			BaseURL:   cfg.SarvamBaseURL,
			APIKey:    cfg.SarvamAPIKey,
			Translate: cfg.SpeechMode == config.SpeechModeTranslate,
			Timeout:   cfg.ProviderTimeout,
		})
	}
}
