package analyzer

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newthinker/hedgeai/internal/metrics"
)

func newTestServer(t *testing.T, cfg ServerConfig, capt *fakeCapturer, prov *fakeProvider) *Server {
	t.Helper()
	svc, _ := newTestService(t, Config{}, capt, prov)
	return NewServer(cfg, svc, metrics.NewRegistry(), nil)
}

func get(t *testing.T, h http.Handler, target string, header ...string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var body map[string]any
	if w.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	}
	return w, body
}

func TestServer_Root(t *testing.T) {
	s := newTestServer(t, ServerConfig{}, &fakeCapturer{}, &fakeProvider{name: "gemini"})

	w, body := get(t, s.Handler(), "/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Hello from backend!", body["message"])
	assert.NotEmpty(t, w.Header().Get(metrics.RequestIDHeader))
}

func TestServer_Analyze(t *testing.T) {
	s := newTestServer(t, ServerConfig{}, &fakeCapturer{img: pngBytes}, &fakeProvider{name: "gemini", content: modelReply})

	w, body := get(t, s.Handler(), "/analyze/?symbol=BINANCE:BTCUSDT&interval=60")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "LONG", body["trade_signal"])
	assert.Equal(t, 64250.5, body["entry"])
	assert.Nil(t, body["take_profit"])
	assert.Contains(t, body, "take_profit")
}

func TestServer_Analyze_MissingParams(t *testing.T) {
	s := newTestServer(t, ServerConfig{}, &fakeCapturer{img: pngBytes}, &fakeProvider{name: "gemini"})

	w, body := get(t, s.Handler(), "/analyze/?symbol=BINANCE:BTCUSDT")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, []any{"interval"}, body["missing"])
	assert.NotContains(t, body, "error")
}

func TestServer_Analyze_Failures(t *testing.T) {
	s := newTestServer(t, ServerConfig{}, &fakeCapturer{img: pngBytes}, &fakeProvider{name: "gemini", content: "not json"})

	w, body := get(t, s.Handler(), "/analyze/?symbol=BINANCE:BTCUSDT&interval=1")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Failed to parse Gemini response", body["error"])
	assert.Equal(t, "not json", body["raw_response"])

	s = newTestServer(t, ServerConfig{}, &fakeCapturer{err: errors.New("no browser")}, &fakeProvider{name: "gemini"})
	w, body = get(t, s.Handler(), "/analyze/?symbol=BINANCE:BTCUSDT&interval=1")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Failed during screenshot capture", body["error"])
	assert.Equal(t, "no browser", body["details"])
}

func TestServer_Screenshot(t *testing.T) {
	s := newTestServer(t, ServerConfig{}, &fakeCapturer{img: pngBytes}, &fakeProvider{name: "gemini"})

	w, body := get(t, s.Handler(), "/screenshot/?symbol=BINANCE:ETHUSDT&interval=D")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Screenshot taken", body["message"])
	assert.Equal(t, "screenshot_BINANCE_ETHUSDT_D.png", body["path"])
}

func TestServer_APIKey(t *testing.T) {
	s := newTestServer(t, ServerConfig{APIKey: "k"}, &fakeCapturer{img: pngBytes}, &fakeProvider{name: "gemini", content: modelReply})

	w, _ := get(t, s.Handler(), "/analyze/?symbol=BINANCE:BTCUSDT&interval=60")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = get(t, s.Handler(), "/analyze/?symbol=BINANCE:BTCUSDT&interval=60", "X-API-Key", "k")
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = get(t, s.Handler(), "/")
	assert.Equal(t, http.StatusOK, w.Code, "root stays open")
}

func TestServer_CORS(t *testing.T) {
	s := newTestServer(t, ServerConfig{}, &fakeCapturer{}, &fakeProvider{name: "gemini"})

	w, _ := get(t, s.Handler(), "/", "Origin", "http://localhost:3000")
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestServer_Metrics(t *testing.T) {
	s := newTestServer(t, ServerConfig{MetricsPath: "/metrics"}, &fakeCapturer{img: pngBytes}, &fakeProvider{name: "gemini", content: modelReply})

	get(t, s.Handler(), "/analyze/?symbol=BINANCE:BTCUSDT&interval=60")

	w, _ := get(t, s.Handler(), "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `hedgeai_snapshots_total{status="ok"} 1`)
	assert.Contains(t, w.Body.String(), `hedgeai_llm_requests_total{provider="gemini",status="ok"} 1`)
}
