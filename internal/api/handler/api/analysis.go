// internal/api/handler/api/analysis.go
package api

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/newthinker/hedgeai/internal/api/response"
	"github.com/newthinker/hedgeai/internal/dashboard"
)

// AnalysisHandler runs one-off analyses outside any dashboard session.
type AnalysisHandler struct {
	cfg      dashboard.Config
	analyzer dashboard.Analyzer
	logger   *zap.Logger
}

// NewAnalysisHandler creates a new analysis handler.
func NewAnalysisHandler(cfg dashboard.Config, analyzer dashboard.Analyzer, logger *zap.Logger) *AnalysisHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalysisHandler{cfg: cfg, analyzer: analyzer, logger: logger}
}

// Analyze answers GET /api/v1/analysis?symbol=&interval=.
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	symbol, interval, err := selection(r, h.cfg)
	if err != nil {
		response.Fail(w, err)
		return
	}

	a, err := h.analyzer.Analyze(r.Context(), symbol, interval)
	if err != nil {
		h.logger.Warn("analysis failed",
			zap.String("symbol", string(symbol)),
			zap.String("interval", string(interval)),
			zap.Error(err),
		)
		response.Fail(w, err)
		return
	}

	response.JSON(w, http.StatusOK, a)
}
