// Package chart derives embed URLs for the TradingView chart widget.
package chart

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/newthinker/hedgeai/internal/core"
)

// Frame dimensions of the embedded widget.
const (
	FrameWidth  = "100%"
	FrameHeight = 500
)

// Options holds the fixed display settings of the widget.
type Options struct {
	BaseURL         string   `mapstructure:"base_url"`
	Theme           string   `mapstructure:"theme"`
	Style           string   `mapstructure:"style"`
	Timezone        string   `mapstructure:"timezone"`
	ToolbarBG       string   `mapstructure:"toolbar_bg"`
	SaveImage       bool     `mapstructure:"save_image"`
	WithDateRanges  bool     `mapstructure:"with_date_ranges"`
	HideIdeas       bool     `mapstructure:"hide_ideas"`
	EnabledFeatures []string `mapstructure:"enabled_features"`
}

// DefaultOptions returns the dark-themed candle chart used by the dashboard.
func DefaultOptions() Options {
	return Options{
		BaseURL:         "https://www.tradingview.com/widgetembed/",
		Theme:           "dark",
		Style:           "1",
		Timezone:        "Etc/UTC",
		ToolbarBG:       "f1f3f6",
		SaveImage:       true,
		WithDateRanges:  true,
		HideIdeas:       true,
		EnabledFeatures: []string{"study_templates"},
	}
}

// URL returns the widget embed URL for symbol and interval.
// The result depends only on its inputs and the options.
func (o Options) URL(symbol core.Symbol, interval core.Timeframe) string {
	s := url.QueryEscape(string(symbol))
	i := url.QueryEscape(string(interval))

	var b strings.Builder
	b.WriteString(o.BaseURL)
	b.WriteString("?frameElementId=tv_" + s + "_" + i)
	b.WriteString("&symbol=" + s)
	b.WriteString("&interval=" + i)
	b.WriteString("&theme=" + url.QueryEscape(o.Theme))
	b.WriteString("&style=" + url.QueryEscape(o.Style))
	b.WriteString("&timezone=" + url.QueryEscape(o.Timezone))
	fmt.Fprintf(&b, "&saveimage=%d", boolFlag(o.SaveImage))
	b.WriteString("&toolbarbg=" + url.QueryEscape(o.ToolbarBG))
	b.WriteString("&studies=[]")
	fmt.Fprintf(&b, "&withdateranges=%d", boolFlag(o.WithDateRanges))
	fmt.Fprintf(&b, "&hideideas=%d", boolFlag(o.HideIdeas))
	b.WriteString("&enabled_features=" + url.QueryEscape(quotedList(o.EnabledFeatures)))
	return b.String()
}

// WidgetURL derives the embed URL with DefaultOptions.
func WidgetURL(symbol core.Symbol, interval core.Timeframe) string {
	return DefaultOptions().URL(symbol, interval)
}

// Title is the chart header, e.g. "BTCUSDT — 15 min".
func Title(symbol core.Symbol, interval core.Timeframe) string {
	return fmt.Sprintf("%s — %s min", symbol.Ticker(), interval)
}

// FrameTitle is the accessible title of the iframe.
func FrameTitle(symbol core.Symbol, interval core.Timeframe) string {
	return fmt.Sprintf("chart-%s-%s", symbol, interval)
}

func boolFlag(b bool) int {
	if b {
		return 1
	}
	return 0
}

// quotedList renders ["a","b"] the way the widget expects it.
func quotedList(items []string) string {
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = `"` + item + `"`
	}
	return "[" + strings.Join(quoted, ",") + "]"
}
