// internal/api/server.go
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	apihandler "github.com/newthinker/hedgeai/internal/api/handler/api"
	"github.com/newthinker/hedgeai/internal/api/handler/web"
	"github.com/newthinker/hedgeai/internal/api/middleware"
	"github.com/newthinker/hedgeai/internal/dashboard"
	"github.com/newthinker/hedgeai/internal/metrics"
	"github.com/newthinker/hedgeai/internal/session"
)

// Server represents the HTTP server for the HedgeAI dashboard
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
	mux        *http.ServeMux
}

// Config holds server configuration
type Config struct {
	Host          string
	Port          int
	APIKey        string
	TemplatesDir  string
	MetricsPath   string
	SessionTTL    time.Duration
	SecureCookies bool
	// WriteTimeout must cover a full analysis round trip. Zero picks a
	// two minute default; a negative value disables the timeout.
	WriteTimeout time.Duration
}

// Dependencies holds the collaborators of the server.
type Dependencies struct {
	Dashboard dashboard.Config
	Analyzer  dashboard.Analyzer
	Sessions  *session.Store
	Metrics   *metrics.Registry // optional
}

// WriteTimeoutFor returns the server write timeout that fits an analysis
// client timeout. No client timeout means no write timeout.
func WriteTimeoutFor(analysisTimeout time.Duration) time.Duration {
	if analysisTimeout <= 0 {
		return -1
	}
	return analysisTimeout + 30*time.Second
}

// NewServer creates a new HTTP server
func NewServer(cfg Config, deps Dependencies, logger *zap.Logger) (*Server, error) {
	if deps.Analyzer == nil {
		return nil, errors.New("analyzer required")
	}
	if deps.Sessions == nil {
		return nil, errors.New("session store required")
	}
	if err := deps.Dashboard.Validate(); err != nil {
		return nil, fmt.Errorf("dashboard config: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	writeTimeout := cfg.WriteTimeout
	switch {
	case writeTimeout < 0:
		writeTimeout = 0
	case writeTimeout == 0:
		writeTimeout = 2 * time.Minute
	}

	mux := http.NewServeMux()
	s := &Server{
		logger: logger,
		mux:    mux,
	}

	if err := s.setupRoutes(cfg, deps); err != nil {
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	var handler http.Handler = mux
	if deps.Metrics != nil {
		handler = metrics.HTTPMiddleware(deps.Metrics)(handler)
	}
	handler = metrics.LoggingMiddleware(logger)(handler)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: writeTimeout,
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(cfg Config, deps Dependencies) error {
	views := &cookieSessions{
		store:   deps.Sessions,
		ttl:     cfg.SessionTTL,
		secure:  cfg.SecureCookies,
		metrics: deps.Metrics,
	}

	webHandler, err := web.NewHandler(cfg.TemplatesDir, views, s.logger)
	if err != nil {
		return fmt.Errorf("creating web handler: %w", err)
	}

	s.mux.HandleFunc("GET /{$}", webHandler.Dashboard)
	s.mux.HandleFunc("POST /select", webHandler.Select)
	s.mux.HandleFunc("POST /analyze", webHandler.Analyze)

	chartHandler := apihandler.NewChartHandler(deps.Dashboard)
	analysisHandler := apihandler.NewAnalysisHandler(deps.Dashboard, deps.Analyzer, s.logger)

	auth := middleware.APIKeyAuth(cfg.APIKey)
	s.mux.Handle("GET /api/v1/config", auth(http.HandlerFunc(chartHandler.Config)))
	s.mux.Handle("GET /api/v1/chart", auth(http.HandlerFunc(chartHandler.Chart)))
	s.mux.Handle("GET /api/v1/analysis", auth(http.HandlerFunc(analysisHandler.Analyze)))

	s.mux.HandleFunc("GET /api/health", s.handleHealth)

	if deps.Metrics != nil && cfg.MetricsPath != "" {
		s.mux.Handle("GET "+cfg.MetricsPath, deps.Metrics.Handler())
	}
	return nil
}

// Handler returns the root handler, including middleware.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
