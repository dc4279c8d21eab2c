// Package snapshot renders chart widgets in a headless browser and captures
// them as PNG images.
package snapshot

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/newthinker/hedgeai/internal/chart"
	"github.com/newthinker/hedgeai/internal/core"
)

// Capturer produces an image of the chart for a symbol and interval.
type Capturer interface {
	Capture(ctx context.Context, symbol core.Symbol, interval core.Timeframe) ([]byte, error)
}

// Options configures the headless browser.
type Options struct {
	Width         int
	Height        int
	SettleDelay   time.Duration // time the widget is given to draw before capture
	ExecPath      string        // empty uses the chrome found on PATH
	MaxConcurrent int64
	Chart         chart.Options
}

// DefaultOptions matches the viewport and settle time charts are analyzed at.
func DefaultOptions() Options {
	return Options{
		Width:         1200,
		Height:        800,
		SettleDelay:   4 * time.Second,
		MaxConcurrent: 2,
		Chart:         chart.DefaultOptions(),
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Width <= 0 {
		o.Width = d.Width
	}
	if o.Height <= 0 {
		o.Height = d.Height
	}
	if o.SettleDelay < 0 {
		o.SettleDelay = 0
	}
	if o.MaxConcurrent <= 0 {
		o.MaxConcurrent = d.MaxConcurrent
	}
	if o.Chart.BaseURL == "" {
		o.Chart = d.Chart
	}
	return o
}

// Chrome captures charts with a fresh headless Chrome per request.
type Chrome struct {
	opts   Options
	sem    *semaphore.Weighted
	logger *zap.Logger
}

// NewChrome creates a Chrome capturer.
func NewChrome(opts Options, logger *zap.Logger) *Chrome {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts = opts.withDefaults()
	return &Chrome{
		opts:   opts,
		sem:    semaphore.NewWeighted(opts.MaxConcurrent),
		logger: logger,
	}
}

// Capture loads the chart widget, waits for it to settle and returns a PNG
// of the viewport.
func (c *Chrome) Capture(ctx context.Context, symbol core.Symbol, interval core.Timeframe) ([]byte, error) {
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return nil, core.WrapError(core.ErrSnapshotFailed, err)
	}
	defer c.sem.Release(1)

	url := c.opts.Chart.URL(symbol, interval)
	c.logger.Debug("capturing chart",
		zap.String("symbol", string(symbol)),
		zap.String("interval", string(interval)),
		zap.String("url", url),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, c.allocatorOptions()...)
	defer cancelAlloc()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	start := time.Now()
	var buf []byte
	err := chromedp.Run(browserCtx,
		chromedp.EmulateViewport(int64(c.opts.Width), int64(c.opts.Height)),
		chromedp.Navigate(url),
		chromedp.Sleep(c.opts.SettleDelay),
		chromedp.CaptureScreenshot(&buf),
	)
	if err != nil {
		return nil, core.WrapError(core.ErrSnapshotFailed, fmt.Errorf("capture %s: %w", symbol, err))
	}

	c.logger.Info("chart captured",
		zap.String("symbol", string(symbol)),
		zap.String("interval", string(interval)),
		zap.Int("bytes", len(buf)),
		zap.Duration("duration", time.Since(start)),
	)
	return buf, nil
}

func (c *Chrome) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts, chromedp.WindowSize(c.opts.Width, c.opts.Height))
	if c.opts.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(c.opts.ExecPath))
	}
	return opts
}
