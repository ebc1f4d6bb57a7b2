// Package server exposes the PDS pipeline over HTTP: upload a sheet, ask for
// a localized summary or comparison, or trigger a Drive folder sync.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/TheCodeHarbor/valvoline-pds-api/internal/drive"
	"github.com/TheCodeHarbor/valvoline-pds-api/internal/pds"
	"github.com/TheCodeHarbor/valvoline-pds-api/internal/storage"
)

const (
	readTimeout     = 30 * time.Second
	writeTimeout    = 120 * time.Second
	shutdownTimeout = 10 * time.Second
)

// Server is the HTTP front of the service.
type Server struct {
	addr          string
	service       *pds.Service
	store         *storage.Store
	syncer        *drive.Syncer
	driveFolderID string
	defaultLocale string
	logger        *slog.Logger
	httpServer    *http.Server
}

// Config wires the server's collaborators. Syncer may be nil when Drive sync
// is not configured.
type Config struct {
	Addr          string
	Service       *pds.Service
	Store         *storage.Store
	Syncer        *drive.Syncer
	DriveFolderID string
	DefaultLocale string
	Logger        *slog.Logger
}

// New builds the server and its route table.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		addr:          cfg.Addr,
		service:       cfg.Service,
		store:         cfg.Store,
		syncer:        cfg.Syncer,
		driveFolderID: cfg.DriveFolderID,
		defaultLocale: cfg.DefaultLocale,
		logger:        logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/health", s.handleHealth)
	r.Post("/upload", s.handleUpload)
	r.Post("/answer", s.handleAnswer)
	r.Post("/drive/sync", s.handleDriveSync)

	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      r,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}
	return s
}

// Handler exposes the route table for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run serves until the context is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", s.addr)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("http server shutting down")
		return s.httpServer.Shutdown(shutdownCtx)
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
		)
	})
}
