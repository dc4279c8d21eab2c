package analyzer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/newthinker/hedgeai/internal/api/middleware"
	"github.com/newthinker/hedgeai/internal/core"
	"github.com/newthinker/hedgeai/internal/metrics"
)

// ServerConfig holds the backend listener settings.
type ServerConfig struct {
	Host        string
	Port        int
	APIKey      string
	MetricsPath string // empty disables /metrics
	// WriteTimeout must cover capture plus the model call.
	WriteTimeout time.Duration
}

// Server is the HTTP front of a Service.
type Server struct {
	httpServer *http.Server
	service    *Service
	logger     *zap.Logger
	mux        *http.ServeMux
}

// NewServer wires the backend routes. reg may be nil.
func NewServer(cfg ServerConfig, service *Service, reg *metrics.Registry, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	writeTimeout := cfg.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = 3 * time.Minute
	}

	s := &Server{
		service: service,
		logger:  logger,
		mux:     http.NewServeMux(),
	}

	s.mux.HandleFunc("GET /{$}", s.handleRoot)
	s.mux.Handle("GET /screenshot/", middleware.APIKeyAuth(cfg.APIKey)(http.HandlerFunc(s.handleScreenshot)))
	s.mux.Handle("GET /analyze/", middleware.APIKeyAuth(cfg.APIKey)(http.HandlerFunc(s.handleAnalyze)))
	s.mux.HandleFunc("GET /api/health", s.handleHealth)

	var handler http.Handler = s.mux
	if reg != nil {
		if cfg.MetricsPath != "" {
			s.mux.Handle("GET "+cfg.MetricsPath, reg.Handler())
		}
		service.SetRecorder(reg)
		handler = metrics.HTTPMiddleware(reg)(handler)
	}
	handler = metrics.LoggingMiddleware(logger)(handler)
	handler = middleware.CORS(handler)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: writeTimeout,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler returns the root handler, including middleware.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("starting analysis backend",
		zap.String("addr", s.httpServer.Addr),
		zap.String("provider", s.service.ProviderName()),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down analysis backend")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Hello from backend!"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleScreenshot(w http.ResponseWriter, r *http.Request) {
	symbol, interval, ok := queryParams(w, r)
	if !ok {
		return
	}

	key, err := s.service.Screenshot(r.Context(), symbol, interval)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Screenshot taken", "path": key})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	symbol, interval, ok := queryParams(w, r)
	if !ok {
		return
	}

	a, err := s.service.Analyze(r.Context(), symbol, interval)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// queryParams reads the required symbol and interval parameters, answering
// 422 when either is absent.
func queryParams(w http.ResponseWriter, r *http.Request) (core.Symbol, core.Timeframe, bool) {
	q := r.URL.Query()
	var missing []string
	for _, name := range []string{"symbol", "interval"} {
		if q.Get(name) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"detail":  "missing required query parameter",
			"missing": missing,
		})
		return "", "", false
	}
	return core.Symbol(q.Get("symbol")), core.Timeframe(q.Get("interval")), true
}

type failurePayload struct {
	Error       string `json:"error"`
	Details     string `json:"details,omitempty"`
	RawResponse string `json:"raw_response,omitempty"`
}

func writeFailure(w http.ResponseWriter, err error) {
	var f *Failure
	if !errors.As(err, &f) {
		f = fail("Internal server error", err)
	}
	writeJSON(w, http.StatusInternalServerError, failurePayload{
		Error:       f.Message,
		Details:     f.Details,
		RawResponse: f.RawResponse,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
