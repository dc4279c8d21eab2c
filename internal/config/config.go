package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/newthinker/hedgeai/internal/chart"
	"github.com/newthinker/hedgeai/internal/core"
	"github.com/newthinker/hedgeai/internal/dashboard"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
	Session   SessionConfig   `mapstructure:"session"`
	Analyzer  AnalyzerConfig  `mapstructure:"analyzer"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

// ServerConfig holds the dashboard HTTP server settings.
type ServerConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Mode         string `mapstructure:"mode"`
	APIKey       string `mapstructure:"api_key"`
	TemplatesDir string `mapstructure:"templates_dir"`
}

// DashboardConfig holds what the root container passes to every view.
type DashboardConfig struct {
	Symbols          []string      `mapstructure:"symbols"`
	Timeframes       []string      `mapstructure:"timeframes"`
	AnalysisEndpoint string        `mapstructure:"analysis_endpoint"`
	AnalysisAPIKey   string        `mapstructure:"analysis_api_key"`
	AnalysisTimeout  time.Duration `mapstructure:"analysis_timeout"`
	Chart            chart.Options `mapstructure:"chart"`
}

// SessionConfig bounds the per-browser dashboard views.
type SessionConfig struct {
	MaxSessions   int           `mapstructure:"max_sessions"`
	TTL           time.Duration `mapstructure:"ttl"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

// AnalyzerConfig holds the analysis backend settings.
type AnalyzerConfig struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	APIKey            string        `mapstructure:"api_key"`
	SettleDelay       time.Duration `mapstructure:"settle_delay"`
	ViewportWidth     int           `mapstructure:"viewport_width"`
	ViewportHeight    int           `mapstructure:"viewport_height"`
	ChromePath        string        `mapstructure:"chrome_path"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
	CacheTTL          time.Duration `mapstructure:"cache_ttl"`
	Timeout           time.Duration `mapstructure:"timeout"`
}

type LLMConfig struct {
	Provider string       `mapstructure:"provider"`
	Gemini   GeminiConfig `mapstructure:"gemini"`
	Claude   ClaudeConfig `mapstructure:"claude"`
	OpenAI   OpenAIConfig `mapstructure:"openai"`
	Ollama   OllamaConfig `mapstructure:"ollama"`
}

type GeminiConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

type ClaudeConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type OpenAIConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type OllamaConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	Model    string `mapstructure:"model"`
}

type StorageConfig struct {
	Archive ArchiveConfig `mapstructure:"archive"`
}

// ArchiveConfig selects where chart screenshots are kept.
type ArchiveConfig struct {
	Type string   `mapstructure:"type"` // "localfs" or "s3"
	Path string   `mapstructure:"path"` // For localfs
	S3   S3Config `mapstructure:"s3"`   // For S3
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Load reads configuration from file. Fields the file leaves empty keep
// their Defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Support environment variable overrides
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setChartDefaults(v, chart.DefaultOptions())
	// Registered here rather than in applyDefaults: an explicit 0 disables
	// the client timeout and must survive loading.
	v.SetDefault("dashboard.analysis_timeout", Defaults().Dashboard.AnalysisTimeout)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.applyDefaults(Defaults())
	cfg.applyProviderEnv()
	return &cfg, nil
}

// LoadOrDefaults loads path, or returns the defaults when path is empty.
func LoadOrDefaults(path string) (*Config, error) {
	if path != "" {
		return Load(path)
	}
	cfg := Defaults()
	cfg.applyProviderEnv()
	return cfg, nil
}

// applyProviderEnv fills missing LLM keys from the variables each vendor's
// own tooling reads.
func (c *Config) applyProviderEnv() {
	if c.LLM.Gemini.APIKey == "" {
		c.LLM.Gemini.APIKey = firstEnv("GEMINI_API_KEY", "GOOGLE_API_KEY")
	}
	if c.LLM.Claude.APIKey == "" {
		c.LLM.Claude.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if c.LLM.OpenAI.APIKey == "" {
		c.LLM.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if c.LLM.Ollama.Endpoint == "" {
		c.LLM.Ollama.Endpoint = os.Getenv("OLLAMA_HOST")
		if c.LLM.Ollama.Endpoint == "" {
			c.LLM.Ollama.Endpoint = "http://localhost:11434"
		}
	}
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	dash := dashboard.DefaultConfig()
	symbols := make([]string, len(dash.Symbols))
	for i, s := range dash.Symbols {
		symbols[i] = string(s)
	}
	timeframes := make([]string, len(dash.Timeframes))
	for i, tf := range dash.Timeframes {
		timeframes[i] = string(tf)
	}

	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
			Mode: "release",
		},
		Dashboard: DashboardConfig{
			Symbols:          symbols,
			Timeframes:       timeframes,
			AnalysisEndpoint: "http://localhost:8000/analyze/",
			AnalysisTimeout:  90 * time.Second,
			Chart:            dash.Chart,
		},
		Session: SessionConfig{
			MaxSessions:   1000,
			TTL:           24 * time.Hour,
			SweepInterval: 10 * time.Minute,
		},
		Analyzer: AnalyzerConfig{
			Host:              "0.0.0.0",
			Port:              8000,
			SettleDelay:       4 * time.Second,
			ViewportWidth:     1200,
			ViewportHeight:    800,
			RequestsPerMinute: 15,
			Timeout:           2 * time.Minute,
		},
		LLM: LLMConfig{
			Provider: "gemini",
			Gemini: GeminiConfig{
				Model: "gemini-1.5-flash-latest",
			},
		},
		Storage: StorageConfig{
			Archive: ArchiveConfig{
				Type: "localfs",
				Path: "screenshots",
			},
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// setChartDefaults registers the widget options key by key so a partial
// chart section in the file only overrides what it names.
func setChartDefaults(v *viper.Viper, o chart.Options) {
	v.SetDefault("dashboard.chart.base_url", o.BaseURL)
	v.SetDefault("dashboard.chart.theme", o.Theme)
	v.SetDefault("dashboard.chart.style", o.Style)
	v.SetDefault("dashboard.chart.timezone", o.Timezone)
	v.SetDefault("dashboard.chart.toolbar_bg", o.ToolbarBG)
	v.SetDefault("dashboard.chart.save_image", o.SaveImage)
	v.SetDefault("dashboard.chart.with_date_ranges", o.WithDateRanges)
	v.SetDefault("dashboard.chart.hide_ideas", o.HideIdeas)
	v.SetDefault("dashboard.chart.enabled_features", o.EnabledFeatures)
}

// applyDefaults fills zero values from d.
func (c *Config) applyDefaults(d *Config) {
	if c.Server.Host == "" {
		c.Server.Host = d.Server.Host
	}
	if c.Server.Port == 0 {
		c.Server.Port = d.Server.Port
	}
	if c.Server.Mode == "" {
		c.Server.Mode = d.Server.Mode
	}
	if len(c.Dashboard.Symbols) == 0 {
		c.Dashboard.Symbols = d.Dashboard.Symbols
	}
	if len(c.Dashboard.Timeframes) == 0 {
		c.Dashboard.Timeframes = d.Dashboard.Timeframes
	}
	if c.Dashboard.AnalysisEndpoint == "" {
		c.Dashboard.AnalysisEndpoint = d.Dashboard.AnalysisEndpoint
	}
	if c.Dashboard.Chart.BaseURL == "" {
		c.Dashboard.Chart.BaseURL = d.Dashboard.Chart.BaseURL
	}
	if c.Session.MaxSessions == 0 {
		c.Session.MaxSessions = d.Session.MaxSessions
	}
	if c.Session.TTL == 0 {
		c.Session.TTL = d.Session.TTL
	}
	if c.Session.SweepInterval == 0 {
		c.Session.SweepInterval = d.Session.SweepInterval
	}
	if c.Analyzer.Host == "" {
		c.Analyzer.Host = d.Analyzer.Host
	}
	if c.Analyzer.Port == 0 {
		c.Analyzer.Port = d.Analyzer.Port
	}
	if c.Analyzer.SettleDelay == 0 {
		c.Analyzer.SettleDelay = d.Analyzer.SettleDelay
	}
	if c.Analyzer.ViewportWidth == 0 {
		c.Analyzer.ViewportWidth = d.Analyzer.ViewportWidth
	}
	if c.Analyzer.ViewportHeight == 0 {
		c.Analyzer.ViewportHeight = d.Analyzer.ViewportHeight
	}
	if c.Analyzer.Timeout == 0 {
		c.Analyzer.Timeout = d.Analyzer.Timeout
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = d.LLM.Provider
	}
	if c.LLM.Gemini.Model == "" {
		c.LLM.Gemini.Model = d.LLM.Gemini.Model
	}
	if c.Storage.Archive.Type == "" {
		c.Storage.Archive.Type = d.Storage.Archive.Type
	}
	if c.Storage.Archive.Type == "localfs" && c.Storage.Archive.Path == "" {
		c.Storage.Archive.Path = d.Storage.Archive.Path
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = d.Metrics.Path
	}
}

// DashboardConfig converts the dashboard section into the view configuration.
func (c *Config) DashboardConfig() dashboard.Config {
	symbols := make([]core.Symbol, len(c.Dashboard.Symbols))
	for i, s := range c.Dashboard.Symbols {
		symbols[i] = core.Symbol(s)
	}
	timeframes := make([]core.Timeframe, len(c.Dashboard.Timeframes))
	for i, tf := range c.Dashboard.Timeframes {
		timeframes[i] = core.Timeframe(tf)
	}
	return dashboard.Config{
		Symbols:    symbols,
		Timeframes: timeframes,
		Chart:      c.Dashboard.Chart,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("port must be between 1 and 65535, got %d", c.Server.Port))
	}

	// Dashboard validation
	if err := c.DashboardConfig().Validate(); err != nil {
		return err
	}
	if _, err := url.ParseRequestURI(c.Dashboard.AnalysisEndpoint); err != nil {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("analysis_endpoint: %w", err))
	}
	if c.Dashboard.AnalysisTimeout < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("analysis_timeout cannot be negative, got %s", c.Dashboard.AnalysisTimeout))
	}

	if c.Session.MaxSessions < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("max_sessions must be positive, got %d", c.Session.MaxSessions))
	}

	return nil
}

// ValidateAnalyzer checks the settings the analysis backend needs.
func (c *Config) ValidateAnalyzer() error {
	if c.Analyzer.Port < 1 || c.Analyzer.Port > 65535 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("analyzer port must be between 1 and 65535, got %d", c.Analyzer.Port))
	}
	if c.Analyzer.RequestsPerMinute < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("requests_per_minute cannot be negative, got %d", c.Analyzer.RequestsPerMinute))
	}
	if c.Analyzer.ViewportWidth < 1 || c.Analyzer.ViewportHeight < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("viewport must be positive, got %dx%d", c.Analyzer.ViewportWidth, c.Analyzer.ViewportHeight))
	}

	// LLM validation - the provider must be configured
	switch c.LLM.Provider {
	case "gemini":
		if c.LLM.Gemini.APIKey == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("gemini api_key required when provider is gemini"))
		}
	case "claude":
		if c.LLM.Claude.APIKey == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("claude api_key required when provider is claude"))
		}
	case "openai":
		if c.LLM.OpenAI.APIKey == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("openai api_key required when provider is openai"))
		}
	case "ollama":
		if c.LLM.Ollama.Endpoint == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("ollama endpoint required when provider is ollama"))
		}
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown llm provider %q", c.LLM.Provider))
	}

	switch c.Storage.Archive.Type {
	case "localfs":
		if c.Storage.Archive.Path == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("archive path required for localfs"))
		}
	case "s3":
		if c.Storage.Archive.S3.Bucket == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("s3 bucket required for s3 archive"))
		}
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown archive type %q", c.Storage.Archive.Type))
	}

	return nil
}
