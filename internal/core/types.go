package core

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Symbol is an exchange-qualified ticker, e.g. "BINANCE:BTCUSDT".
type Symbol string

// Exchange returns the exchange prefix, or "" when the symbol is unqualified.
func (s Symbol) Exchange() string {
	exchange, _, ok := strings.Cut(string(s), ":")
	if !ok {
		return ""
	}
	return exchange
}

// Ticker returns the symbol without its exchange prefix.
func (s Symbol) Ticker() string {
	_, ticker, ok := strings.Cut(string(s), ":")
	if !ok {
		return string(s)
	}
	return ticker
}

// Timeframe is a candle duration in minutes, e.g. "15".
type Timeframe string

// TradeSignal is the directional verdict returned by the analysis backend.
type TradeSignal string

const (
	SignalLong  TradeSignal = "LONG"
	SignalShort TradeSignal = "SHORT"
	SignalNone  TradeSignal = "NONE"
)

// Confidence is the qualitative certainty label of an analysis.
type Confidence string

const (
	ConfidenceHigh   Confidence = "High"
	ConfidenceMedium Confidence = "Medium"
	ConfidenceLow    Confidence = "Low"
)

// Price is an optional price level. The zero value is absent.
type Price struct {
	Value float64
	Set   bool
}

// PriceOf returns a present price.
func PriceOf(v float64) Price {
	return Price{Value: v, Set: true}
}

// String renders the price, or "N/A" when absent.
func (p Price) String() string {
	if !p.Set {
		return "N/A"
	}
	return strconv.FormatFloat(p.Value, 'f', -1, 64)
}

func (p Price) MarshalJSON() ([]byte, error) {
	if !p.Set {
		return []byte("null"), nil
	}
	return json.Marshal(p.Value)
}

// UnmarshalJSON accepts a number, a numeric string or null. Anything else,
// such as "N/A", a boolean or an object, leaves the price absent.
func (p *Price) UnmarshalJSON(data []byte) error {
	*p = Price{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			*p = PriceOf(v)
		}
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return nil
	}
	*p = PriceOf(v)
	return nil
}

// Analysis is the structured verdict for one symbol and timeframe.
type Analysis struct {
	Symbol      Symbol      `json:"symbol,omitempty"`
	Interval    Timeframe   `json:"interval,omitempty"`
	TradeSignal TradeSignal `json:"trade_signal"`
	Pattern     string      `json:"pattern"`
	Entry       Price       `json:"entry"`
	StopLoss    Price       `json:"stop_loss"`
	TakeProfit  Price       `json:"take_profit"`
	Confidence  Confidence  `json:"confidence"`
}

// Result is the outcome of one analyze action: either an error message or
// a structured analysis. A nil *Result means no analysis was performed yet.
type Result struct {
	Err      string
	Analysis *Analysis
}

// FailedResult returns an error-shaped result.
func FailedResult(msg string) *Result {
	return &Result{Err: msg}
}

// AnalysisResult returns a structured result.
func AnalysisResult(a *Analysis) *Result {
	return &Result{Analysis: a}
}

// Failed reports whether the result is error-shaped.
func (r *Result) Failed() bool {
	return r.Err != "" || r.Analysis == nil
}

func (r *Result) MarshalJSON() ([]byte, error) {
	if r.Failed() {
		msg := r.Err
		if msg == "" {
			msg = ErrAnalysisFailed.Message
		}
		return json.Marshal(map[string]string{"error": msg})
	}
	return json.Marshal(r.Analysis)
}
