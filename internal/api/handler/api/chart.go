// internal/api/handler/api/chart.go
package api

import (
	"net/http"

	"github.com/newthinker/hedgeai/internal/api/response"
	"github.com/newthinker/hedgeai/internal/chart"
	"github.com/newthinker/hedgeai/internal/dashboard"
)

// ChartHandler exposes the dashboard configuration and chart derivation.
type ChartHandler struct {
	cfg dashboard.Config
}

// NewChartHandler creates a new chart handler.
func NewChartHandler(cfg dashboard.Config) *ChartHandler {
	return &ChartHandler{cfg: cfg}
}

// ConfigResponse describes the selectable lists.
type ConfigResponse struct {
	Symbols          []string `json:"symbols"`
	Timeframes       []string `json:"timeframes"`
	DefaultSymbol    string   `json:"default_symbol"`
	DefaultTimeframe string   `json:"default_timeframe"`
	Theme            string   `json:"theme"`
}

// ChartResponse is the derived chart frame for one selection.
type ChartResponse struct {
	Symbol     string `json:"symbol"`
	Interval   string `json:"interval"`
	Title      string `json:"title"`
	FrameTitle string `json:"frame_title"`
	URL        string `json:"url"`
	Width      string `json:"width"`
	Height     int    `json:"height"`
}

// Config returns the configured symbols and timeframes.
func (h *ChartHandler) Config(w http.ResponseWriter, r *http.Request) {
	resp := ConfigResponse{
		Symbols:    make([]string, len(h.cfg.Symbols)),
		Timeframes: make([]string, len(h.cfg.Timeframes)),
		Theme:      h.cfg.Chart.Theme,
	}
	for i, s := range h.cfg.Symbols {
		resp.Symbols[i] = string(s)
	}
	for i, tf := range h.cfg.Timeframes {
		resp.Timeframes[i] = string(tf)
	}
	resp.DefaultSymbol = resp.Symbols[0]
	resp.DefaultTimeframe = resp.Timeframes[0]

	response.JSON(w, http.StatusOK, resp)
}

// Chart returns the widget URL and titles for ?symbol=&interval=.
func (h *ChartHandler) Chart(w http.ResponseWriter, r *http.Request) {
	symbol, interval, err := selection(r, h.cfg)
	if err != nil {
		response.Fail(w, err)
		return
	}

	response.JSON(w, http.StatusOK, ChartResponse{
		Symbol:     string(symbol),
		Interval:   string(interval),
		Title:      chart.Title(symbol, interval),
		FrameTitle: chart.FrameTitle(symbol, interval),
		URL:        h.cfg.Chart.URL(symbol, interval),
		Width:      chart.FrameWidth,
		Height:     chart.FrameHeight,
	})
}
