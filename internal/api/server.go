// Package api serves insights and subscription review over JSON HTTP.
package api

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Veraticus/spice-insights/internal/common"
	"github.com/Veraticus/spice-insights/internal/service"
)

const shutdownTimeout = 5 * time.Second

// Config holds server settings.
type Config struct {
	Addr        string
	OwnerID     int64
	InsightDays int
	ReadTimeout time.Duration
	// TLS enables HTTPS when set.
	TLS *tls.Config
}

// Server exposes service.Insights over HTTP.
type Server struct {
	svc    *service.Insights
	store  service.Storage
	logger *slog.Logger
	router chi.Router
	cfg    Config
}

// NewServer creates a server and registers its routes.
func NewServer(svc *service.Insights, store service.Storage, cfg Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.InsightDays <= 0 {
		cfg.InsightDays = 30
	}
	s := &Server{
		svc:    svc,
		store:  store,
		cfg:    cfg,
		logger: logger.With("component", "api"),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	s.RegisterRoutes(r)
	s.router = r

	return s
}

// RegisterRoutes registers all API routes.
func (s *Server) RegisterRoutes(r chi.Router) {
	r.Get("/api/health", s.handleHealth)
	r.Get("/api/insights", s.handleInsights)
	r.Route("/api/subscriptions", func(r chi.Router) {
		r.Get("/", s.handleListSubscriptions)
		r.Post("/", s.handleConfirm)
		r.Get("/candidates", s.handleCandidates)
	})
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s,
		ReadHeaderTimeout: s.cfg.ReadTimeout,
		ReadTimeout:       s.cfg.ReadTimeout,
		TLSConfig:         s.cfg.TLS,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Server starting", "addr", s.cfg.Addr, "owner_id", s.cfg.OwnerID, "tls", s.cfg.TLS != nil)
		if s.cfg.TLS != nil {
			errCh <- srv.ListenAndServeTLS("", "")
			return
		}
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("Server shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown failed: %w", err)
		}
		return nil
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		reqLogger := s.logger.With("request_id", middleware.GetReqID(r.Context()))
		next.ServeHTTP(ww, r.WithContext(common.WithLogger(r.Context(), reqLogger)))
		s.logger.Debug("Request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
