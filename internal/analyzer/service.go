// Package analyzer is the chart analysis backend: it captures the chart
// for a symbol and interval, asks a vision model for a trade setup and
// returns the model's structured answer.
package analyzer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/newthinker/hedgeai/internal/core"
	"github.com/newthinker/hedgeai/internal/llm"
	"github.com/newthinker/hedgeai/internal/snapshot"
	"github.com/newthinker/hedgeai/internal/storage/archive"
)

// Failure messages reported to callers in the "error" field.
const (
	MsgCaptureFailed  = "Failed during screenshot capture"
	MsgNoScreenshot   = "Failed to capture screenshot"
	MsgCreateFailed   = "Failed to create screenshot"
	msgGenerateFailed = "Failed to generate content from %s"
	msgParseFailed    = "Failed to parse %s response"
)

// Failure is a stage error with the payload the backend reports for it.
type Failure struct {
	Message     string
	Details     string
	RawResponse string
	Err         error
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return f.Message + ": " + f.Err.Error()
	}
	return f.Message
}

func (f *Failure) Unwrap() error {
	return f.Err
}

func fail(msg string, err error) *Failure {
	f := &Failure{Message: msg, Err: err}
	if err != nil {
		f.Details = err.Error()
	}
	return f
}

// Recorder receives backend events, typically for metrics.
type Recorder interface {
	RecordSnapshot(status string)
	RecordLLMRequest(provider, status string, seconds float64)
	RecordCacheHit()
}

// Config tunes the service.
type Config struct {
	RequestsPerMinute int           // model calls per minute; 0 disables limiting
	CacheTTL          time.Duration // 0 disables the result cache
	Timeout           time.Duration // per model call; 0 means none
	MaxTokens         int
}

// Service runs capture, archive and analysis.
type Service struct {
	cfg      Config
	capturer snapshot.Capturer
	store    archive.Store
	provider llm.Provider
	limiter  *rate.Limiter
	cache    *cache.Cache
	recorder Recorder
	logger   *zap.Logger
}

// NewService creates a Service. store may be nil when screenshots need not
// be kept.
func NewService(cfg Config, capturer snapshot.Capturer, store archive.Store, provider llm.Provider, logger *zap.Logger) (*Service, error) {
	if capturer == nil {
		return nil, errors.New("capturer required")
	}
	if provider == nil {
		return nil, errors.New("llm provider required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	limit := rate.Inf
	if cfg.RequestsPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(cfg.RequestsPerMinute))
	}

	s := &Service{
		cfg:      cfg,
		capturer: capturer,
		store:    store,
		provider: provider,
		limiter:  rate.NewLimiter(limit, 1),
		logger:   logger,
	}
	if cfg.CacheTTL > 0 {
		s.cache = cache.New(cfg.CacheTTL, 2*cfg.CacheTTL)
	}
	return s, nil
}

// SetRecorder sets the event recorder.
func (s *Service) SetRecorder(r Recorder) {
	s.recorder = r
}

// ProviderName is the display name of the model provider.
func (s *Service) ProviderName() string {
	return displayName(s.provider.Name())
}

// Screenshot captures and archives the chart and returns its archive key.
func (s *Service) Screenshot(ctx context.Context, symbol core.Symbol, interval core.Timeframe) (string, error) {
	img, err := s.capture(ctx, symbol, interval)
	if err != nil {
		return "", err
	}
	if s.store == nil {
		return "", fail(MsgCreateFailed, errors.New("no archive configured"))
	}

	key := archive.SnapshotKey(symbol, interval)
	if err := s.store.Put(ctx, key, img, "image/png"); err != nil {
		return "", fail(MsgCreateFailed, core.WrapError(core.ErrArchiveFailed, err))
	}
	return key, nil
}

// Analyze captures the chart and returns the model's reading of it.
func (s *Service) Analyze(ctx context.Context, symbol core.Symbol, interval core.Timeframe) (*core.Analysis, error) {
	cacheKey := string(symbol) + "|" + string(interval)
	if s.cache != nil {
		if v, ok := s.cache.Get(cacheKey); ok {
			if s.recorder != nil {
				s.recorder.RecordCacheHit()
			}
			a := *v.(*core.Analysis)
			return &a, nil
		}
	}

	img, err := s.capture(ctx, symbol, interval)
	if err != nil {
		return nil, err
	}
	if len(img) == 0 {
		return nil, fail(MsgNoScreenshot, nil)
	}
	s.keep(ctx, symbol, interval, img)

	content, err := s.ask(ctx, symbol, interval, img)
	if err != nil {
		return nil, err
	}

	var a core.Analysis
	if err := json.Unmarshal([]byte(CleanResponse(content)), &a); err != nil {
		f := fail(fmt.Sprintf(msgParseFailed, s.ProviderName()), core.WrapError(core.ErrResponseInvalid, err))
		f.Details = ""
		f.RawResponse = content
		s.logger.Warn("unparseable model response",
			zap.String("symbol", string(symbol)),
			zap.String("raw", content),
			zap.Error(err),
		)
		return nil, f
	}
	if a.Symbol == "" {
		a.Symbol = symbol
	}
	if a.Interval == "" {
		a.Interval = interval
	}

	if s.cache != nil {
		stored := a
		s.cache.Set(cacheKey, &stored, cache.DefaultExpiration)
	}
	return &a, nil
}

func (s *Service) capture(ctx context.Context, symbol core.Symbol, interval core.Timeframe) ([]byte, error) {
	img, err := s.capturer.Capture(ctx, symbol, interval)
	if err != nil {
		s.record("failed")
		s.logger.Error("screenshot capture failed",
			zap.String("symbol", string(symbol)),
			zap.String("interval", string(interval)),
			zap.Error(err),
		)
		return nil, fail(MsgCaptureFailed, err)
	}
	s.record("ok")
	return img, nil
}

// keep archives the image for later inspection. Analysis does not depend
// on it, so failures are only logged.
func (s *Service) keep(ctx context.Context, symbol core.Symbol, interval core.Timeframe, img []byte) {
	if s.store == nil {
		return
	}
	key := archive.SnapshotKey(symbol, interval)
	if err := s.store.Put(ctx, key, img, "image/png"); err != nil {
		s.logger.Warn("archiving screenshot failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *Service) ask(ctx context.Context, symbol core.Symbol, interval core.Timeframe, img []byte) (string, error) {
	generateFailed := fmt.Sprintf(msgGenerateFailed, s.ProviderName())

	if err := s.limiter.Wait(ctx); err != nil {
		return "", fail(generateFailed, err)
	}

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := s.provider.Chat(ctx, llm.ChatRequest{
		Messages:  []llm.Message{llm.UserMessage(Prompt(symbol, interval), llm.PNG(img))},
		MaxTokens: s.cfg.MaxTokens,
		JSONMode:  true,
	})
	elapsed := time.Since(start).Seconds()

	if err != nil {
		s.recordLLM("error", elapsed)
		base := core.ErrLLMFailed
		if errors.Is(err, context.DeadlineExceeded) {
			base = core.ErrLLMTimeout
		}
		s.logger.Error("model request failed",
			zap.String("provider", s.provider.Name()),
			zap.String("symbol", string(symbol)),
			zap.Error(err),
		)
		return "", fail(generateFailed, core.WrapError(base, err))
	}
	s.recordLLM("ok", elapsed)

	s.logger.Debug("model response",
		zap.String("provider", s.provider.Name()),
		zap.Int("input_tokens", resp.Usage.InputTokens),
		zap.Int("output_tokens", resp.Usage.OutputTokens),
		zap.String("finish_reason", resp.FinishReason),
	)
	return resp.Content, nil
}

func (s *Service) record(status string) {
	if s.recorder != nil {
		s.recorder.RecordSnapshot(status)
	}
}

func (s *Service) recordLLM(status string, seconds float64) {
	if s.recorder != nil {
		s.recorder.RecordLLMRequest(s.provider.Name(), status, seconds)
	}
}

func displayName(provider string) string {
	switch provider {
	case "gemini":
		return "Gemini"
	case "claude":
		return "Claude"
	case "openai":
		return "OpenAI"
	case "ollama":
		return "Ollama"
	default:
		return provider
	}
}
