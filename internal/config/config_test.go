package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/newthinker/hedgeai/internal/core"
)

func TestLoad_FromFile(t *testing.T) {
	content := []byte(`
server:
  host: "127.0.0.1"
  port: 9090

dashboard:
  symbols: ["BINANCE:ETHUSDT", "BINANCE:BNBUSDT", "BINANCE:XRPUSDT"]
  timeframes: ["5", "240"]
  analysis_endpoint: "http://analyzer:8000/analyze/"
  analysis_timeout: 45s

storage:
  archive:
    type: s3
    s3:
      bucket: charts
      region: us-east-1
`)

	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(cfgPath, content, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if len(cfg.Dashboard.Symbols) != 3 || cfg.Dashboard.Symbols[0] != "BINANCE:ETHUSDT" {
		t.Errorf("unexpected symbols %v", cfg.Dashboard.Symbols)
	}
	if len(cfg.Dashboard.Timeframes) != 2 || cfg.Dashboard.Timeframes[1] != "240" {
		t.Errorf("unexpected timeframes %v", cfg.Dashboard.Timeframes)
	}
	if cfg.Dashboard.AnalysisTimeout != 45*time.Second {
		t.Errorf("expected 45s timeout, got %s", cfg.Dashboard.AnalysisTimeout)
	}
	if cfg.Storage.Archive.Type != "s3" || cfg.Storage.Archive.S3.Bucket != "charts" {
		t.Errorf("unexpected archive config %+v", cfg.Storage.Archive)
	}

	// Untouched sections keep their defaults
	if cfg.Analyzer.Port != 8000 {
		t.Errorf("expected default analyzer port 8000, got %d", cfg.Analyzer.Port)
	}
	if cfg.Dashboard.Chart.Theme != "dark" {
		t.Errorf("expected default dark chart theme, got %q", cfg.Dashboard.Chart.Theme)
	}
	if cfg.LLM.Provider != "gemini" {
		t.Errorf("expected default provider gemini, got %s", cfg.LLM.Provider)
	}
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("HEDGEAI_TEST_GEMINI_KEY", "secret-key")

	content := []byte(`
llm:
  provider: gemini
  gemini:
    api_key: "${HEDGEAI_TEST_GEMINI_KEY}"
`)
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(cfgPath, content, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.LLM.Gemini.APIKey != "secret-key" {
		t.Errorf("expected expanded api key, got %q", cfg.LLM.Gemini.APIKey)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Dashboard.Symbols[0] != "BINANCE:BTCUSDT" || cfg.Dashboard.Timeframes[0] != "1" {
		t.Errorf("unexpected default selection %s/%s", cfg.Dashboard.Symbols[0], cfg.Dashboard.Timeframes[0])
	}
	if cfg.Analyzer.SettleDelay != 4*time.Second {
		t.Errorf("expected 4s settle delay, got %s", cfg.Analyzer.SettleDelay)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestConfig_DashboardConfig(t *testing.T) {
	dash := Defaults().DashboardConfig()
	if len(dash.Symbols) != 2 || dash.Symbols[1] != core.Symbol("BINANCE:SOLUSDT") {
		t.Errorf("unexpected symbols %v", dash.Symbols)
	}
	if len(dash.Timeframes) != 4 || dash.Timeframes[3] != core.Timeframe("60") {
		t.Errorf("unexpected timeframes %v", dash.Timeframes)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid config", mutate: func(c *Config) {}},
		{name: "invalid port - zero", mutate: func(c *Config) { c.Server.Port = 0 }, wantErr: true},
		{name: "invalid port - too high", mutate: func(c *Config) { c.Server.Port = 70000 }, wantErr: true},
		{name: "no symbols", mutate: func(c *Config) { c.Dashboard.Symbols = nil }, wantErr: true},
		{name: "duplicate timeframe", mutate: func(c *Config) { c.Dashboard.Timeframes = []string{"1", "1"} }, wantErr: true},
		{name: "bad endpoint", mutate: func(c *Config) { c.Dashboard.AnalysisEndpoint = "::" }, wantErr: true},
		{name: "negative timeout", mutate: func(c *Config) { c.Dashboard.AnalysisTimeout = -time.Second }, wantErr: true},
		{name: "no sessions", mutate: func(c *Config) { c.Session.MaxSessions = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_ValidateAnalyzer(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "gemini with key", mutate: func(c *Config) { c.LLM.Gemini.APIKey = "k" }},
		{name: "gemini without key", mutate: func(c *Config) {}, wantErr: true},
		{name: "claude without key", mutate: func(c *Config) { c.LLM.Provider = "claude" }, wantErr: true},
		{name: "openai with key", mutate: func(c *Config) {
			c.LLM.Provider = "openai"
			c.LLM.OpenAI.APIKey = "k"
		}},
		{name: "ollama with endpoint", mutate: func(c *Config) {
			c.LLM.Provider = "ollama"
			c.LLM.Ollama.Endpoint = "http://localhost:11434"
		}},
		{name: "unknown provider", mutate: func(c *Config) { c.LLM.Provider = "bard" }, wantErr: true},
		{name: "s3 without bucket", mutate: func(c *Config) {
			c.LLM.Gemini.APIKey = "k"
			c.Storage.Archive.Type = "s3"
		}, wantErr: true},
		{name: "unknown archive", mutate: func(c *Config) {
			c.LLM.Gemini.APIKey = "k"
			c.Storage.Archive.Type = "ftp"
		}, wantErr: true},
		{name: "negative rate", mutate: func(c *Config) {
			c.LLM.Gemini.APIKey = "k"
			c.Analyzer.RequestsPerMinute = -1
		}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			err := cfg.ValidateAnalyzer()
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateAnalyzer() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_PartialChartSection(t *testing.T) {
	content := []byte(`
dashboard:
  chart:
    theme: light
`)
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(cfgPath, content, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Dashboard.Chart.Theme != "light" {
		t.Errorf("expected light theme, got %q", cfg.Dashboard.Chart.Theme)
	}
	if cfg.Dashboard.Chart.Timezone != "Etc/UTC" {
		t.Errorf("expected default timezone, got %q", cfg.Dashboard.Chart.Timezone)
	}
	if !cfg.Dashboard.Chart.HideIdeas {
		t.Error("expected hide_ideas default to survive")
	}
}

func TestLoadOrDefaults_ProviderEnv(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "google-key")
	t.Setenv("ANTHROPIC_API_KEY", "anthropic-key")

	cfg, err := LoadOrDefaults("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LLM.Gemini.APIKey != "google-key" {
		t.Errorf("expected gemini key from GOOGLE_API_KEY, got %q", cfg.LLM.Gemini.APIKey)
	}
	if cfg.LLM.Claude.APIKey != "anthropic-key" {
		t.Errorf("expected claude key from env, got %q", cfg.LLM.Claude.APIKey)
	}
	if err := cfg.ValidateAnalyzer(); err != nil {
		t.Errorf("expected analyzer config to validate, got %v", err)
	}
}

func TestLoad_FileKeyWinsOverProviderEnv(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "from-env")

	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("llm:\n  gemini:\n    api_key: from-file\n")
	if err := os.WriteFile(cfgPath, content, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.LLM.Gemini.APIKey != "from-file" {
		t.Errorf("expected file key, got %q", cfg.LLM.Gemini.APIKey)
	}
}

func TestLoad_AnalysisTimeout(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    time.Duration
	}{
		{name: "absent uses default", content: "server:\n  port: 9090\n", want: 90 * time.Second},
		{name: "explicit zero disables", content: "dashboard:\n  analysis_timeout: 0s\n", want: 0},
		{name: "explicit value", content: "dashboard:\n  analysis_timeout: 2m\n", want: 2 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfgPath := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(cfgPath, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}

			cfg, err := Load(cfgPath)
			if err != nil {
				t.Fatalf("failed to load config: %v", err)
			}
			if cfg.Dashboard.AnalysisTimeout != tt.want {
				t.Errorf("expected %s, got %s", tt.want, cfg.Dashboard.AnalysisTimeout)
			}
			if err := cfg.Validate(); err != nil {
				t.Errorf("unexpected validation error: %v", err)
			}
		})
	}
}
