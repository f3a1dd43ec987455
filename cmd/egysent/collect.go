package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/egysentiment/collector/internal/config"
	"github.com/egysentiment/collector/internal/corpus"
	"github.com/egysentiment/collector/internal/extract"
	"github.com/egysentiment/collector/internal/fetch"
	"github.com/egysentiment/collector/internal/identity"
	"github.com/egysentiment/collector/internal/logger"
	"github.com/egysentiment/collector/internal/pipeline"
	"github.com/egysentiment/collector/internal/ratelimit"
	"github.com/egysentiment/collector/internal/sentiment"
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Run one incremental acquisition and labeling pass",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		p, client, err := buildPipeline(ctx)
		if err != nil {
			return err
		}
		defer client.Close()

		if cfg.EnableMonitoring {
			go serveMonitoring(cfg.MonitoringPort)
		}

		added, err := p.Collect(ctx)
		if err != nil {
			return err
		}
		logger.Info("collection finished", "new_records", added)
		return nil
	},
}

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Walk the configured archives and ingest historical articles",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		p, client, err := buildPipeline(ctx)
		if err != nil {
			return err
		}
		defer client.Close()

		added, err := p.Backfill(ctx)
		if err != nil {
			return err
		}
		logger.Info("backfill finished", "new_records", added)
		return nil
	},
}

// buildPipeline assembles the full ingestion stack. Only labeling commands
// call this, so the credential check lives here rather than in config.Load.
func buildPipeline(ctx context.Context) (*pipeline.Pipeline, *sentiment.Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	sources, err := config.LoadSources(cfg.SourcesPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading sources: %w", err)
	}

	ua := identity.NewPool()
	client, err := sentiment.NewClient(ctx, cfg.GeminiAPIKey, sentiment.Options{
		Model:          cfg.GeminiModel,
		RateLimitDelay: cfg.RateLimitDelay,
		CallTimeout:    cfg.LabelTimeout,
		MaxPromptChars: cfg.MaxPromptChars,
		Budget:         ratelimit.NewBudget(cfg.MaxLabelRequests),
		CacheTTL:       cfg.CacheTTL,
	})
	if err != nil {
		return nil, nil, err
	}

	p := pipeline.New(
		cfg,
		sources,
		fetch.DefaultChain(cfg.FeedTimeout, ua),
		fetch.DefaultChain(cfg.ListingTimeout, ua),
		extract.New(cfg.ExtractTimeout, ua),
		client,
		corpus.NewStore(cfg.CorpusPath),
	)
	return p, client, nil
}

func init() {
	rootCmd.AddCommand(collectCmd)
	rootCmd.AddCommand(backfillCmd)
}
