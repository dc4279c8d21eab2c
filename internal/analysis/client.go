// Package analysis is the HTTP client of the remote chart analysis endpoint.
package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/newthinker/hedgeai/internal/core"
	"go.uber.org/zap"
)

// DefaultEndpoint is the analysis backend started by `hedgeai analyzer`.
const DefaultEndpoint = "http://localhost:8000/analyze/"

// maxBodySize bounds the analysis payload.
const maxBodySize = 1 << 20

// RemoteError is returned when the backend answered with an error payload.
type RemoteError struct {
	Status  int
	Message string
	Details string
}

func (e *RemoteError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("analysis backend returned %d: %s (%s)", e.Status, e.Message, e.Details)
	}
	return fmt.Sprintf("analysis backend returned %d: %s", e.Status, e.Message)
}

// UserMessage is the text the dashboard shows for this failure.
func (e *RemoteError) UserMessage() string {
	return e.Message
}

// payload is the union of the success and error bodies.
type payload struct {
	core.Analysis
	Error   string `json:"error"`
	Details string `json:"details"`
}

// Client calls GET <endpoint>?symbol=<symbol>&interval=<timeframe>.
type Client struct {
	endpoint string
	apiKey   string
	client   *http.Client
	logger   *zap.Logger
}

// New creates a new analysis client. A zero timeout means no client side
// timeout; cancellation then only comes from the caller's context.
func New(endpoint string, timeout time.Duration, logger *zap.Logger) (*Client, error) {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if _, err := url.ParseRequestURI(endpoint); err != nil {
		return nil, core.WrapError(core.ErrConfigInvalid, fmt.Errorf("analysis endpoint: %w", err))
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
	}, nil
}

// WithAPIKey makes the client send key in the X-API-Key header.
func (c *Client) WithAPIKey(key string) *Client {
	c.apiKey = key
	return c
}

// Endpoint returns the configured endpoint.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Analyze requests an analysis for symbol and timeframe.
func (c *Client) Analyze(ctx context.Context, symbol core.Symbol, timeframe core.Timeframe) (*core.Analysis, error) {
	reqURL, err := c.requestURL(symbol, timeframe)
	if err != nil {
		return nil, core.WrapError(core.ErrAnalysisFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, core.WrapError(core.ErrAnalysisFailed, fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, core.WrapError(core.ErrAnalysisFailed, fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, core.WrapError(core.ErrAnalysisFailed, fmt.Errorf("reading response: %w", err))
	}

	c.logger.Debug("analysis response",
		zap.String("symbol", string(symbol)),
		zap.String("interval", string(timeframe)),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	var p payload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, core.WrapError(core.ErrAnalysisFailed,
			core.WrapError(core.ErrResponseInvalid, err))
	}

	if p.Error != "" {
		return nil, core.WrapError(core.ErrAnalysisFailed, &RemoteError{
			Status:  resp.StatusCode,
			Message: p.Error,
			Details: p.Details,
		})
	}

	if resp.StatusCode != http.StatusOK {
		return nil, core.WrapError(core.ErrAnalysisFailed,
			fmt.Errorf("analysis backend returned status %d", resp.StatusCode))
	}

	analysis := p.Analysis
	if analysis.Symbol == "" {
		analysis.Symbol = symbol
	}
	if analysis.Interval == "" {
		analysis.Interval = timeframe
	}
	return &analysis, nil
}

func (c *Client) requestURL(symbol core.Symbol, timeframe core.Timeframe) (string, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return "", fmt.Errorf("parsing endpoint: %w", err)
	}
	q := u.Query()
	q.Set("symbol", string(symbol))
	q.Set("interval", string(timeframe))
	u.RawQuery = q.Encode()
	return u.String(), nil
}
