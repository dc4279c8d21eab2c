package analysis

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/newthinker/hedgeai/internal/core"
	"github.com/newthinker/hedgeai/internal/dashboard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestClient_ImplementsAnalyzer(t *testing.T) {
	var _ dashboard.Analyzer = (*Client)(nil)
}

func TestNew_DefaultEndpoint(t *testing.T) {
	c, err := New("", 0, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultEndpoint, c.Endpoint())
}

func TestNew_InvalidEndpoint(t *testing.T) {
	_, err := New("not a url", 0, zap.NewNop())
	assert.ErrorIs(t, err, core.ErrConfigInvalid)
}

func TestClient_Analyze_Success(t *testing.T) {
	var gotSymbol, gotInterval string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSymbol = r.URL.Query().Get("symbol")
		gotInterval = r.URL.Query().Get("interval")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"trade_signal":"SHORT","pattern":"Rising wedge","entry":142.5,"stop_loss":147,"take_profit":null,"confidence":"Medium"}`))
	}))
	defer server.Close()

	c, err := New(server.URL+"/analyze/", 5*time.Second, zap.NewNop())
	require.NoError(t, err)

	a, err := c.Analyze(context.Background(), "BINANCE:SOLUSDT", "15")
	require.NoError(t, err)

	assert.Equal(t, "BINANCE:SOLUSDT", gotSymbol)
	assert.Equal(t, "15", gotInterval)
	assert.Equal(t, core.SignalShort, a.TradeSignal)
	assert.Equal(t, "Rising wedge", a.Pattern)
	assert.Equal(t, core.PriceOf(142.5), a.Entry)
	assert.Equal(t, core.PriceOf(147), a.StopLoss)
	assert.False(t, a.TakeProfit.Set)
	assert.Equal(t, core.ConfidenceMedium, a.Confidence)
	assert.Equal(t, core.Symbol("BINANCE:SOLUSDT"), a.Symbol)
	assert.Equal(t, core.Timeframe("15"), a.Interval)
}

func TestClient_Analyze_RemoteError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"Failed during screenshot capture","details":"chrome not found"}`))
	}))
	defer server.Close()

	c, err := New(server.URL, time.Second, zap.NewNop())
	require.NoError(t, err)

	_, err = c.Analyze(context.Background(), "BINANCE:BTCUSDT", "1")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrAnalysisFailed)

	var remote *RemoteError
	require.True(t, errors.As(err, &remote))
	assert.Equal(t, http.StatusInternalServerError, remote.Status)
	assert.Equal(t, "Failed during screenshot capture", remote.UserMessage())
}

func TestClient_Analyze_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>gateway</html>`))
	}))
	defer server.Close()

	c, err := New(server.URL, time.Second, zap.NewNop())
	require.NoError(t, err)

	_, err = c.Analyze(context.Background(), "BINANCE:BTCUSDT", "1")
	assert.ErrorIs(t, err, core.ErrAnalysisFailed)
	assert.ErrorIs(t, err, core.ErrResponseInvalid)
}

func TestClient_Analyze_NonOKWithoutErrorField(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c, err := New(server.URL, time.Second, zap.NewNop())
	require.NoError(t, err)

	_, err = c.Analyze(context.Background(), "BINANCE:BTCUSDT", "1")
	assert.ErrorIs(t, err, core.ErrAnalysisFailed)
}

func TestClient_Analyze_NetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	c, err := New(url, time.Second, zap.NewNop())
	require.NoError(t, err)

	_, err = c.Analyze(context.Background(), "BINANCE:BTCUSDT", "1")
	assert.ErrorIs(t, err, core.ErrAnalysisFailed)
}

func TestClient_Analyze_ContextCancelled(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	c, err := New(server.URL, 0, zap.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = c.Analyze(ctx, "BINANCE:BTCUSDT", "1")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient_FeedsDashboardFailureMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	c, err := New(server.URL, time.Second, zap.NewNop())
	require.NoError(t, err)

	v, err := dashboard.New(dashboard.DefaultConfig(), c, zap.NewNop())
	require.NoError(t, err)

	v.Analyze(context.Background())
	panel := v.Page().Panel
	require.NotNil(t, panel)
	assert.Equal(t, dashboard.FailureMessage, panel.Error)
}

func TestClient_Analyze_SendsAPIKey(t *testing.T) {
	var gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-API-Key")
		w.Write([]byte(`{"trade_signal":"NONE","pattern":"","entry":null,"stop_loss":null,"take_profit":null,"confidence":"Low"}`))
	}))
	defer server.Close()

	c, err := New(server.URL, time.Second, nil)
	require.NoError(t, err)

	_, err = c.WithAPIKey("backend-key").Analyze(context.Background(), "BINANCE:ETHUSDT", "60")
	require.NoError(t, err)
	assert.Equal(t, "backend-key", gotKey)
}
