package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/newthinker/hedgeai/internal/analyzer"
	"github.com/newthinker/hedgeai/internal/config"
	"github.com/newthinker/hedgeai/internal/llm/factory"
	"github.com/newthinker/hedgeai/internal/logger"
	"github.com/newthinker/hedgeai/internal/metrics"
	"github.com/newthinker/hedgeai/internal/snapshot"
	"github.com/newthinker/hedgeai/internal/storage/archive"
)

var analyzerCmd = &cobra.Command{
	Use:   "analyzer",
	Short: "Start the chart analysis backend",
	Long: `Start the analysis backend. It captures the chart of the requested
symbol and interval in a headless browser and asks the configured
vision model for a trade setup.`,
	RunE: runAnalyzer,
}

func init() {
	rootCmd.AddCommand(analyzerCmd)
}

func runAnalyzer(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadOrDefaults(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log := logger.Must("analyzer", debug || cfg.Server.Mode == "debug")
	defer log.Sync()

	if err := cfg.ValidateAnalyzer(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	provider, err := factory.New(ctx, cfg.LLM)
	if err != nil {
		return fmt.Errorf("creating LLM provider: %w", err)
	}

	store, err := archive.New(cfg.Storage.Archive)
	if err != nil {
		return fmt.Errorf("creating snapshot archive: %w", err)
	}

	capturer := snapshot.NewChrome(snapshot.Options{
		Width:       cfg.Analyzer.ViewportWidth,
		Height:      cfg.Analyzer.ViewportHeight,
		SettleDelay: cfg.Analyzer.SettleDelay,
		ExecPath:    cfg.Analyzer.ChromePath,
		Chart:       cfg.Dashboard.Chart,
	}, log.Named("snapshot"))

	service, err := analyzer.NewService(analyzer.Config{
		RequestsPerMinute: cfg.Analyzer.RequestsPerMinute,
		CacheTTL:          cfg.Analyzer.CacheTTL,
		Timeout:           cfg.Analyzer.Timeout,
	}, capturer, store, provider, log.Named("service"))
	if err != nil {
		return fmt.Errorf("creating analyzer: %w", err)
	}

	var reg *metrics.Registry
	metricsPath := ""
	if cfg.Metrics.Enabled {
		reg = metrics.NewRegistry()
		metricsPath = cfg.Metrics.Path
	}

	server := analyzer.NewServer(analyzer.ServerConfig{
		Host:         cfg.Analyzer.Host,
		Port:         cfg.Analyzer.Port,
		APIKey:       cfg.Analyzer.APIKey,
		MetricsPath:  metricsPath,
		WriteTimeout: cfg.Analyzer.Timeout + time.Minute,
	}, service, reg, log)

	log.Info("starting HedgeAI analyzer",
		zap.String("host", cfg.Analyzer.Host),
		zap.Int("port", cfg.Analyzer.Port),
		zap.String("provider", provider.Name()),
		zap.String("archive", cfg.Storage.Archive.Type),
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown error", zap.Error(err))
		return err
	}

	log.Info("analyzer stopped")
	return nil
}
