// internal/api/handler/web/dashboard.go
package web

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/newthinker/hedgeai/internal/core"
	"github.com/newthinker/hedgeai/internal/dashboard"
)

// Dashboard renders the full page for the current session.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	view, err := h.views.Resolve(w, r)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.render(w, "layout.html", view.Page())
}

// Select applies the posted symbol and/or timeframe and returns the chart
// fragment. It never triggers an analysis.
func (h *Handler) Select(w http.ResponseWriter, r *http.Request) {
	view, err := h.views.Resolve(w, r)
	if err != nil {
		h.fail(w, err)
		return
	}
	if err := applySelection(r, view); err != nil {
		h.fail(w, err)
		return
	}
	h.render(w, "chart", view.Page())
}

// Analyze runs an analysis of the current selection and returns the result
// fragment. When a newer analysis was dispatched meanwhile the response is
// 204 so the page keeps whatever the newer one renders.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	view, err := h.views.Resolve(w, r)
	if err != nil {
		h.fail(w, err)
		return
	}
	if err := applySelection(r, view); err != nil {
		h.fail(w, err)
		return
	}

	// A closed tab must not store a failure; a newer analysis still cancels
	// this one through the view.
	outcome := view.Analyze(context.WithoutCancel(r.Context()))
	if !outcome.Applied {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	page := view.Page()
	page.Panel = dashboard.NewPanel(outcome.Result)
	h.render(w, "analysis", page)
}

// applySelection reads optional symbol and timeframe form values.
func applySelection(r *http.Request, view *dashboard.View) error {
	if err := r.ParseForm(); err != nil {
		return core.WrapError(core.ErrMissingParameter, err)
	}
	if s := r.PostFormValue("symbol"); s != "" {
		if err := view.SelectSymbol(core.Symbol(s)); err != nil {
			return err
		}
	}
	if tf := r.PostFormValue("timeframe"); tf != "" {
		if err := view.SelectTimeframe(core.Timeframe(tf)); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, core.ErrSymbolNotAllowed), errors.Is(err, core.ErrTimeframeNotAllowed),
		errors.Is(err, core.ErrMissingParameter):
		status = http.StatusBadRequest
	default:
		h.logger.Error("dashboard request failed", zap.Error(err))
	}

	msg := http.StatusText(status)
	var coreErr *core.Error
	if errors.As(err, &coreErr) {
		msg = coreErr.Message
	}
	http.Error(w, msg, status)
}
