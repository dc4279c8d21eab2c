// internal/api/handler/api/params.go
package api

import (
	"fmt"
	"net/http"

	"github.com/newthinker/hedgeai/internal/core"
	"github.com/newthinker/hedgeai/internal/dashboard"
)

// selection reads symbol and interval from the query and checks both
// against the configured lists.
func selection(r *http.Request, cfg dashboard.Config) (core.Symbol, core.Timeframe, error) {
	q := r.URL.Query()
	symbol := core.Symbol(q.Get("symbol"))
	interval := core.Timeframe(q.Get("interval"))

	if symbol == "" {
		return "", "", core.WrapError(core.ErrMissingParameter, fmt.Errorf("symbol"))
	}
	if interval == "" {
		return "", "", core.WrapError(core.ErrMissingParameter, fmt.Errorf("interval"))
	}
	if !cfg.HasSymbol(symbol) {
		return "", "", core.WrapError(core.ErrSymbolNotAllowed, fmt.Errorf("%q", symbol))
	}
	if !cfg.HasTimeframe(interval) {
		return "", "", core.WrapError(core.ErrTimeframeNotAllowed, fmt.Errorf("%q", interval))
	}
	return symbol, interval, nil
}
