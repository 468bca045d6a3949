// Package web serves the upload-and-chart dashboard over HTTP.
package web

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/duskroseSouthAfrica/sheetdash/internal/config"
	"github.com/duskroseSouthAfrica/sheetdash/internal/engine"
	"github.com/duskroseSouthAfrica/sheetdash/internal/log"
)

const (
	chartWidth      = 640
	chartHeight     = 400
	janitorInterval = time.Minute
	shutdownTimeout = 10 * time.Second
)

// Server holds everything the handlers share. Per-user state lives in the
// session store only.
type Server struct {
	cfg       *config.Config
	rules     engine.Rules
	sessions  *sessionStore
	templates *template.Template
}

// New builds a server from validated configuration.
func New(cfg *config.Config, rules engine.Rules) (*Server, error) {
	tmpl, err := parseTemplates()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Server{
		cfg:       cfg,
		rules:     rules,
		sessions:  newSessionStore(cfg.MaxSessions, cfg.SessionTTL),
		templates: tmpl,
	}, nil
}

// Routes returns the HTTP handler with logging applied.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.uploadHandler)
	mux.HandleFunc("POST /upload", s.displayHandler)
	mux.HandleFunc("GET /dashboard", s.dashboardHandler)
	mux.HandleFunc("POST /select", s.selectHandler)
	mux.HandleFunc("GET /chart/{view}/{name}", s.chartImageHandler)
	mux.HandleFunc("GET /api/chart/{view}/{name}", s.chartJSONHandler)
	mux.HandleFunc("GET /api/health", healthHandler)
	return log.Middleware(sessionCookie)(mux)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("server running", "addr", s.cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return s.sessions.janitor(ctx, janitorInterval)
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		slog.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
