package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSymbol_TickerAndExchange(t *testing.T) {
	tests := []struct {
		symbol   Symbol
		ticker   string
		exchange string
	}{
		{"BINANCE:BTCUSDT", "BTCUSDT", "BINANCE"},
		{"BINANCE:SOLUSDT", "SOLUSDT", "BINANCE"},
		{"AAPL", "AAPL", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.ticker, tt.symbol.Ticker(), "ticker of %s", tt.symbol)
		assert.Equal(t, tt.exchange, tt.symbol.Exchange(), "exchange of %s", tt.symbol)
	}
}

func TestPrice_String(t *testing.T) {
	assert.Equal(t, "N/A", Price{}.String())
	assert.Equal(t, "64250.5", PriceOf(64250.5).String())
	assert.Equal(t, "0", PriceOf(0).String())
}

func TestPrice_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Price
	}{
		{"number", `12.5`, PriceOf(12.5)},
		{"null", `null`, Price{}},
		{"numeric string", `"1,234.5"`, PriceOf(1234.5)},
		{"text", `"Entry price"`, Price{}},
		{"boolean", `true`, Price{}},
		{"array", `[64000, 65000]`, Price{}},
		{"object", `{"price": 64000}`, Price{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p Price
			require.NoError(t, json.Unmarshal([]byte(tt.input), &p))
			assert.Equal(t, tt.want, p)
		})
	}
}

func TestAnalysis_DecodeBackendPayload(t *testing.T) {
	body := `{
		"symbol": "BINANCE:BTCUSDT",
		"interval": "15",
		"trade_signal": "LONG",
		"pattern": "Bull flag",
		"entry": 64000,
		"stop_loss": null,
		"take_profit": 67000.25,
		"confidence": "High"
	}`

	var a Analysis
	require.NoError(t, json.Unmarshal([]byte(body), &a))

	assert.Equal(t, SignalLong, a.TradeSignal)
	assert.Equal(t, "Bull flag", a.Pattern)
	assert.Equal(t, PriceOf(64000), a.Entry)
	assert.False(t, a.StopLoss.Set)
	assert.Equal(t, PriceOf(67000.25), a.TakeProfit)
	assert.Equal(t, ConfidenceHigh, a.Confidence)
}

func TestResult_MarshalJSON(t *testing.T) {
	failed, err := json.Marshal(FailedResult("Failed to analyze chart."))
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":"Failed to analyze chart."}`, string(failed))

	ok, err := json.Marshal(AnalysisResult(&Analysis{
		TradeSignal: SignalShort,
		Pattern:     "Double top",
		Entry:       PriceOf(150),
		Confidence:  ConfidenceLow,
	}))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"trade_signal": "SHORT",
		"pattern": "Double top",
		"entry": 150,
		"stop_loss": null,
		"take_profit": null,
		"confidence": "Low"
	}`, string(ok))
}

func TestResult_Failed(t *testing.T) {
	assert.True(t, FailedResult("boom").Failed())
	assert.True(t, (&Result{}).Failed())
	assert.False(t, AnalysisResult(&Analysis{TradeSignal: SignalNone}).Failed())
}

func TestAnalysis_DecodeMalformedPriceKeepsRest(t *testing.T) {
	body := `{
		"trade_signal": "SHORT",
		"pattern": "Double top",
		"entry": 152.4,
		"stop_loss": {"level": 158},
		"take_profit": false,
		"confidence": "Medium"
	}`

	var a Analysis
	require.NoError(t, json.Unmarshal([]byte(body), &a))

	assert.Equal(t, SignalShort, a.TradeSignal)
	assert.Equal(t, "Double top", a.Pattern)
	assert.Equal(t, PriceOf(152.4), a.Entry)
	assert.False(t, a.StopLoss.Set)
	assert.False(t, a.TakeProfit.Set)
	assert.Equal(t, ConfidenceMedium, a.Confidence)
}
