package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/snarg/speech-relay/internal/config"
	"github.com/snarg/speech-relay/internal/database"
	"github.com/snarg/speech-relay/internal/metrics"
)

type Server struct {
	http    *http.Server
	process *ProcessHandler
	log     zerolog.Logger
}

// ServerOptions holds the dependencies of the HTTP server.
type ServerOptions struct {
	Config      *config.Config
	Processor   Processor
	DB          *database.DB // nil when job history is disabled
	SpeechModel string
	Version     string
	StartTime   time.Time
	Log         zerolog.Logger
}

func NewServer(opts ServerOptions) *Server {
	cfg := opts.Config
	r := chi.NewRouter()

	// Global middleware
	r.Use(RequestID)
	r.Use(Logger(opts.Log))
	r.Use(Recoverer)
	r.Use(CORS)
	r.Use(metrics.InstrumentHandler)

	var (
		recorder JobRecorder
		checker  HealthChecker
	)
	if opts.DB != nil {
		recorder = opts.DB
		checker = opts.DB
	}

	proc := NewProcessHandler(opts.Processor, recorder, cfg.MaxUploadBytes, opts.Log)
	proc.Routes(r)

	health := NewHealthHandler(checker, opts.SpeechModel, cfg.GeminiEnabled(), opts.Version, opts.StartTime)
	r.Get("/api/v1/health", health.ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())

	if opts.DB != nil {
		jobs := NewJobsHandler(opts.DB, opts.Log)
		r.Get("/api/v1/jobs", jobs.List)
	}

	return &Server{
		http: &http.Server{
			Addr:         cfg.HTTPAddr,
			Handler:      r,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
		process: proc,
		log:     opts.Log,
	}
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.http.Handler }

// Stats exposes request-handling state to the metrics collector.
func (s *Server) Stats() metrics.ProcessStats { return s.process }

func (s *Server) Start() error {
	s.log.Info().Str("addr", s.http.Addr).Msg("http server starting")
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("http server shutting down")
	return s.http.Shutdown(ctx)
}
