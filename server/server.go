// Package server exposes rendering, presets and Web Audio export over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sfxgraph/sfxgraph/compiler"
	"github.com/sfxgraph/sfxgraph/engine"
	"github.com/sfxgraph/sfxgraph/presets"
	"github.com/sfxgraph/sfxgraph/render"
)

// maxBodySize bounds uploaded sound documents.
const maxBodySize = 1 << 20

// Config holds server configuration
type Config struct {
	Addr       string
	SampleRate int
	PresetsDir string
}

// Server is the HTTP server
type Server struct {
	config   Config
	router   *chi.Mux
	logger   *slog.Logger
	renderer render.Renderer
	compiler *compiler.Compiler
	presets  *presets.Presets
	jobs     *JobManager
}

// New creates a new server. A nil logger discards log output.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	renderer := render.New(engine.New(), cfg.SampleRate)
	com, err := compiler.New(renderer.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("create compiler: %w", err)
	}
	s := &Server{
		config:   cfg,
		router:   chi.NewRouter(),
		logger:   logger,
		renderer: renderer,
		compiler: com,
		presets:  presets.Load(cfg.PresetsDir),
		jobs:     NewJobManager(renderer, logger),
	}
	s.setupRoutes()
	return s, nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	r := s.router

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/health", s.handleHealth)

	r.Get("/presets", s.handlePresets)
	r.Get("/presets/{name}", s.handlePreset)

	r.Post("/render", s.handleRender)
	r.Post("/renders", s.handleCreateJob)
	r.Get("/renders/{id}", s.handleJobStatus)
	r.Get("/renders/{id}/wav", s.handleJobWav)

	r.Post("/export/webaudio", s.handleExport)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Int("bytes", ww.BytesWritten()),
			slog.Duration("elapsed", time.Since(start)),
			slog.String("request_id", middleware.GetReqID(r.Context())))
	})
}

// Handler returns the router, for embedding and tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully, letting
// running requests finish.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.config.Addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		s.logger.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("shutdown error", slog.Any("error", err))
		}
		s.jobs.Close()
	}()

	s.logger.Info("server starting", slog.String("addr", s.config.Addr), slog.Int("sample_rate", s.renderer.SampleRate))
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-done
	return nil
}
