package dashboard

import (
	"fmt"

	"github.com/newthinker/hedgeai/internal/chart"
	"github.com/newthinker/hedgeai/internal/core"
)

// Config is the read-only configuration the root container hands to every
// dashboard view.
type Config struct {
	// Symbols offered in the symbol selector. The first one is the default.
	Symbols []core.Symbol
	// Timeframes offered in the timeframe selector. The first one is the default.
	Timeframes []core.Timeframe
	// Chart holds the widget display settings.
	Chart chart.Options
}

// DefaultConfig returns the stock dashboard: two Binance pairs on 1, 5, 15
// and 60 minute candles.
func DefaultConfig() Config {
	return Config{
		Symbols:    []core.Symbol{"BINANCE:BTCUSDT", "BINANCE:SOLUSDT"},
		Timeframes: []core.Timeframe{"1", "5", "15", "60"},
		Chart:      chart.DefaultOptions(),
	}
}

// Validate checks that both lists are non-empty and free of duplicates.
func (c Config) Validate() error {
	if len(c.Symbols) == 0 {
		return core.WrapError(core.ErrConfigMissing, fmt.Errorf("at least one symbol is required"))
	}
	if len(c.Timeframes) == 0 {
		return core.WrapError(core.ErrConfigMissing, fmt.Errorf("at least one timeframe is required"))
	}

	seen := make(map[core.Symbol]struct{}, len(c.Symbols))
	for _, s := range c.Symbols {
		if s == "" {
			return core.WrapError(core.ErrConfigInvalid, fmt.Errorf("empty symbol"))
		}
		if _, dup := seen[s]; dup {
			return core.WrapError(core.ErrConfigInvalid, fmt.Errorf("duplicate symbol %s", s))
		}
		seen[s] = struct{}{}
	}

	seenTF := make(map[core.Timeframe]struct{}, len(c.Timeframes))
	for _, tf := range c.Timeframes {
		if tf == "" {
			return core.WrapError(core.ErrConfigInvalid, fmt.Errorf("empty timeframe"))
		}
		if _, dup := seenTF[tf]; dup {
			return core.WrapError(core.ErrConfigInvalid, fmt.Errorf("duplicate timeframe %s", tf))
		}
		seenTF[tf] = struct{}{}
	}

	return nil
}

// HasSymbol reports whether s is one of the configured symbols.
func (c Config) HasSymbol(s core.Symbol) bool {
	for _, candidate := range c.Symbols {
		if candidate == s {
			return true
		}
	}
	return false
}

// HasTimeframe reports whether tf is one of the configured timeframes.
func (c Config) HasTimeframe(tf core.Timeframe) bool {
	for _, candidate := range c.Timeframes {
		if candidate == tf {
			return true
		}
	}
	return false
}
