// Package dashboard holds the state and presentation logic of the trading
// dashboard: the symbol and timeframe selection, the derived chart and the
// last analysis result.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/newthinker/hedgeai/internal/chart"
	"github.com/newthinker/hedgeai/internal/core"
	"go.uber.org/zap"
)

// FailureMessage is shown when an analysis call fails without a message of
// its own.
const FailureMessage = "Failed to analyze chart."

// Analyzer produces an analysis for one symbol and timeframe.
type Analyzer interface {
	Analyze(ctx context.Context, symbol core.Symbol, timeframe core.Timeframe) (*core.Analysis, error)
}

// Recorder receives analysis outcomes, typically for metrics.
type Recorder interface {
	RecordAnalysis(outcome string, seconds float64)
	RecordStaleAnalysis()
}

// userMessage is implemented by analyzer errors that carry text meant for
// the user.
type userMessage interface {
	UserMessage() string
}

// State is a snapshot of a view.
type State struct {
	Symbol    core.Symbol
	Timeframe core.Timeframe
	// Result is nil until the first analysis completes.
	Result *core.Result
	// Seq is the sequence number of the last dispatched analysis.
	Seq uint64
}

// Outcome describes a completed Analyze call.
type Outcome struct {
	Result *core.Result
	Seq    uint64
	// Applied is false when a newer analysis was dispatched while this one
	// was in flight; the result was then discarded.
	Applied bool
}

// View is one dashboard instance. It is safe for concurrent use.
type View struct {
	cfg      Config
	analyzer Analyzer
	logger   *zap.Logger
	recorder Recorder

	mu        sync.Mutex
	symbol    core.Symbol
	timeframe core.Timeframe
	result    *core.Result
	seq       uint64
	cancel    context.CancelFunc
}

// New creates a view selecting the first symbol and timeframe of cfg.
func New(cfg Config, analyzer Analyzer, logger *zap.Logger) (*View, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if analyzer == nil {
		return nil, core.WrapError(core.ErrConfigMissing, fmt.Errorf("analyzer is required"))
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Chart.BaseURL == "" {
		cfg.Chart = chart.DefaultOptions()
	}

	return &View{
		cfg:       cfg,
		analyzer:  analyzer,
		logger:    logger,
		symbol:    cfg.Symbols[0],
		timeframe: cfg.Timeframes[0],
	}, nil
}

// SetRecorder sets the analysis outcome recorder.
func (v *View) SetRecorder(r Recorder) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.recorder = r
}

// Config returns the view configuration.
func (v *View) Config() Config {
	return v.cfg
}

// SelectSymbol changes the current symbol. The analysis result is kept.
func (v *View) SelectSymbol(s core.Symbol) error {
	if !v.cfg.HasSymbol(s) {
		return core.WrapError(core.ErrSymbolNotAllowed, fmt.Errorf("%q", s))
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.symbol = s
	return nil
}

// SelectTimeframe changes the current timeframe. The analysis result is kept.
func (v *View) SelectTimeframe(tf core.Timeframe) error {
	if !v.cfg.HasTimeframe(tf) {
		return core.WrapError(core.ErrTimeframeNotAllowed, fmt.Errorf("%q", tf))
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.timeframe = tf
	return nil
}

// State returns a snapshot of the view.
func (v *View) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return State{
		Symbol:    v.symbol,
		Timeframe: v.timeframe,
		Result:    v.result,
		Seq:       v.seq,
	}
}

// Analyze requests an analysis of the current selection.
//
// Every call is tagged with a new sequence number and cancels the call
// still in flight, if any. Only the latest dispatched call may replace the
// displayed result; earlier ones complete with Applied false.
func (v *View) Analyze(ctx context.Context) Outcome {
	v.mu.Lock()
	v.seq++
	seq := v.seq
	symbol, timeframe := v.symbol, v.timeframe
	if v.cancel != nil {
		v.cancel()
	}
	callCtx, cancel := context.WithCancel(ctx)
	v.cancel = cancel
	recorder := v.recorder
	v.mu.Unlock()

	start := time.Now()
	analysis, err := v.analyzer.Analyze(callCtx, symbol, timeframe)
	cancel()

	var result *core.Result
	outcome := "success"
	if err != nil {
		outcome = "failure"
		result = core.FailedResult(failureMessage(err))
		v.logger.Warn("analysis failed",
			zap.String("symbol", string(symbol)),
			zap.String("timeframe", string(timeframe)),
			zap.Uint64("seq", seq),
			zap.Error(err),
		)
	} else {
		result = core.AnalysisResult(analysis)
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if seq != v.seq {
		v.logger.Debug("discarding stale analysis",
			zap.Uint64("seq", seq),
			zap.Uint64("latest", v.seq),
		)
		if recorder != nil {
			recorder.RecordStaleAnalysis()
		}
		return Outcome{Result: result, Seq: seq}
	}

	v.result = result
	v.cancel = nil
	if recorder != nil {
		recorder.RecordAnalysis(outcome, time.Since(start).Seconds())
	}
	return Outcome{Result: result, Seq: seq, Applied: true}
}

func failureMessage(err error) string {
	var um userMessage
	if errors.As(err, &um) && um.UserMessage() != "" {
		return um.UserMessage()
	}
	return FailureMessage
}
