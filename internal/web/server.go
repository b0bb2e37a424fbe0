package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/emiliopalmerini/echonote/internal/ports"
	sharedmw "github.com/emiliopalmerini/echonote/internal/shared/middleware"
	"github.com/emiliopalmerini/echonote/internal/upload"
)

//go:embed static/*
var staticFiles embed.FS

// multipartOverhead is the allowance for form boundaries and headers on top
// of the audio payload itself.
const multipartOverhead = 1 << 20

// Uploader runs the upload pipeline for one request.
type Uploader interface {
	Upload(ctx context.Context, req upload.Request) (*upload.Result, error)
}

// Config holds server-specific configuration.
type Config struct {
	Addr            string
	MaxUploadBytes  int64
	ShutdownTimeout time.Duration
}

type Server struct {
	cfg      Config
	router   chi.Router
	uploader Uploader
	repo     ports.TranscriptRepository
	metrics  http.Handler
	logger   *slog.Logger
}

// NewServer wires the routes. metrics may be nil, in which case /metrics is
// not served.
func NewServer(cfg Config, uploader Uploader, repo ports.TranscriptRepository, metrics http.Handler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}

	s := &Server{
		cfg:      cfg,
		router:   chi.NewRouter(),
		uploader: uploader,
		repo:     repo,
		metrics:  metrics,
		logger:   logger,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := s.router

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	}))
	r.Use(sharedmw.HTMX)

	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(fmt.Sprintf("failed to create static filesystem: %v", err))
	}
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}

	r.Get("/", s.handleHistory)

	r.Route("/api", func(r chi.Router) {
		r.Get("/transcriptions", s.handleAPIListTranscriptions)
		r.Post("/upload", s.handleAPIUpload)
		r.Delete("/transcriptions/{id}", s.handleAPIDeleteTranscription)

		r.NotFound(s.handleAPINotFound)
		r.MethodNotAllowed(s.handleAPINotFound)
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	s.logger.Info("server listening", "addr", s.cfg.Addr)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("server shutdown failed", "error", err)
		}
	}()

	err := server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
