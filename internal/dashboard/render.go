package dashboard

import (
	"github.com/newthinker/hedgeai/internal/chart"
	"github.com/newthinker/hedgeai/internal/core"
)

// Emphasis is the colour emphasis of an enumerated value.
type Emphasis string

const (
	EmphasisPositive Emphasis = "positive"
	EmphasisNeutral  Emphasis = "neutral"
	EmphasisNegative Emphasis = "negative"
)

// Class returns the CSS class for the emphasis.
func (e Emphasis) Class() string {
	switch e {
	case EmphasisPositive:
		return "text-green-400"
	case EmphasisNegative:
		return "text-red-400"
	default:
		return "text-yellow-400"
	}
}

// SignalEmphasis: LONG is positive, SHORT negative, anything else neutral.
func SignalEmphasis(s core.TradeSignal) Emphasis {
	switch s {
	case core.SignalLong:
		return EmphasisPositive
	case core.SignalShort:
		return EmphasisNegative
	default:
		return EmphasisNeutral
	}
}

// ConfidenceEmphasis: High is positive, Medium neutral, anything else negative.
func ConfidenceEmphasis(c core.Confidence) Emphasis {
	switch c {
	case core.ConfidenceHigh:
		return EmphasisPositive
	case core.ConfidenceMedium:
		return EmphasisNeutral
	default:
		return EmphasisNegative
	}
}

// Option is one entry of a selector.
type Option struct {
	Value    string
	Label    string
	Selected bool
}

// ChartView is the embedded chart frame.
type ChartView struct {
	Title      string
	FrameTitle string
	URL        string
	Width      string
	Height     int
}

// Panel is the analysis result panel. Exactly one of Error or the
// structured fields is meaningful.
type Panel struct {
	Error string

	TradeSignal     string
	SignalClass     string
	Pattern         string
	Entry           string
	StopLoss        string
	TakeProfit      string
	Confidence      string
	ConfidenceClass string
}

// Page is everything the dashboard template needs.
type Page struct {
	Title      string
	Symbols    []Option
	Timeframes []Option
	Chart      ChartView
	// Panel is nil until an analysis has completed.
	Panel *Panel
	// Seq of the last dispatched analysis.
	Seq uint64
}

// NewPanel builds the result panel, or nil for a nil result.
func NewPanel(r *core.Result) *Panel {
	if r == nil {
		return nil
	}
	if r.Failed() {
		msg := r.Err
		if msg == "" {
			msg = FailureMessage
		}
		return &Panel{Error: msg}
	}

	a := r.Analysis
	return &Panel{
		TradeSignal:     string(a.TradeSignal),
		SignalClass:     SignalEmphasis(a.TradeSignal).Class(),
		Pattern:         a.Pattern,
		Entry:           a.Entry.String(),
		StopLoss:        a.StopLoss.String(),
		TakeProfit:      a.TakeProfit.String(),
		Confidence:      string(a.Confidence),
		ConfidenceClass: ConfidenceEmphasis(a.Confidence).Class(),
	}
}

// NewChartView derives the chart frame for a selection.
func NewChartView(opts chart.Options, symbol core.Symbol, timeframe core.Timeframe) ChartView {
	return ChartView{
		Title:      chart.Title(symbol, timeframe),
		FrameTitle: chart.FrameTitle(symbol, timeframe),
		URL:        opts.URL(symbol, timeframe),
		Width:      chart.FrameWidth,
		Height:     chart.FrameHeight,
	}
}

// Render builds the page model for a state. It is recomputed on every call.
func (c Config) Render(st State) Page {
	symbols := make([]Option, len(c.Symbols))
	for i, s := range c.Symbols {
		symbols[i] = Option{Value: string(s), Label: s.Ticker(), Selected: s == st.Symbol}
	}
	timeframes := make([]Option, len(c.Timeframes))
	for i, tf := range c.Timeframes {
		timeframes[i] = Option{Value: string(tf), Label: string(tf), Selected: tf == st.Timeframe}
	}

	return Page{
		Title:      "HedgeAI",
		Symbols:    symbols,
		Timeframes: timeframes,
		Chart:      NewChartView(c.Chart, st.Symbol, st.Timeframe),
		Panel:      NewPanel(st.Result),
		Seq:        st.Seq,
	}
}

// Page renders the current state of the view.
func (v *View) Page() Page {
	return v.cfg.Render(v.State())
}
