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
	"golang.org/x/sync/errgroup"

	"github.com/newthinker/hedgeai/internal/analysis"
	"github.com/newthinker/hedgeai/internal/api"
	"github.com/newthinker/hedgeai/internal/config"
	"github.com/newthinker/hedgeai/internal/dashboard"
	"github.com/newthinker/hedgeai/internal/logger"
	"github.com/newthinker/hedgeai/internal/metrics"
	"github.com/newthinker/hedgeai/internal/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadOrDefaults(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log := logger.Must("dashboard", debug || cfg.Server.Mode == "debug")
	defer log.Sync()
	if cfgFile == "" {
		log.Warn("no config file specified, using defaults")
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	client, err := analysis.New(cfg.Dashboard.AnalysisEndpoint, cfg.Dashboard.AnalysisTimeout, log.Named("analysis"))
	if err != nil {
		return fmt.Errorf("creating analysis client: %w", err)
	}
	client.WithAPIKey(cfg.Dashboard.AnalysisAPIKey)

	var reg *metrics.Registry
	if cfg.Metrics.Enabled {
		reg = metrics.NewRegistry()
	}

	dcfg := cfg.DashboardConfig()
	sessions := session.NewStore(cfg.Session.MaxSessions, cfg.Session.TTL, func() (*dashboard.View, error) {
		view, err := dashboard.New(dcfg, client, log.Named("view"))
		if err != nil {
			return nil, err
		}
		if reg != nil {
			view.SetRecorder(reg)
		}
		return view, nil
	})

	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}

	server, err := api.NewServer(api.Config{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		APIKey:       cfg.Server.APIKey,
		TemplatesDir: cfg.Server.TemplatesDir,
		MetricsPath:  metricsPath,
		SessionTTL:   cfg.Session.TTL,
		WriteTimeout: api.WriteTimeoutFor(cfg.Dashboard.AnalysisTimeout),
	}, api.Dependencies{
		Dashboard: dcfg,
		Analyzer:  client,
		Sessions:  sessions,
		Metrics:   reg,
	}, log)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	log.Info("starting HedgeAI dashboard",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
		zap.String("analysis_endpoint", client.Endpoint()),
		zap.Int("symbols", len(dcfg.Symbols)),
		zap.Int("timeframes", len(dcfg.Timeframes)),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(server.Start)
	g.Go(func() error {
		sessions.RunSweeper(ctx, cfg.Session.SweepInterval, func(removed, remaining int) {
			if removed > 0 {
				log.Debug("expired sessions removed", zap.Int("removed", removed), zap.Int("remaining", remaining))
			}
			if reg != nil {
				reg.SetSessionsActive(remaining)
			}
		})
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
