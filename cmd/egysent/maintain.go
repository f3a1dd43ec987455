package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/egysentiment/collector/internal/corpus"
	"github.com/egysentiment/collector/internal/dedup"
	"github.com/egysentiment/collector/internal/export"
	"github.com/egysentiment/collector/internal/features"
	"github.com/egysentiment/collector/internal/logger"
	"github.com/egysentiment/collector/internal/ratelimit"
	"github.com/egysentiment/collector/internal/sentiment"
)

var dedupCmd = &cobra.Command{
	Use:   "dedup",
	Short: "Remove exact and near-duplicate records from the corpus",
	RunE: func(cmd *cobra.Command, args []string) error {
		kept, removed, err := dedup.Deduplicate(cfg.CorpusPath, cfg.FuzzyThreshold)
		if err != nil {
			return err
		}
		logger.Info("dedup finished",
			"kept", kept,
			"removed", removed,
			"backup", cfg.CorpusPath+dedup.BackupSuffix)
		return nil
	},
}

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score unscored corpus records into the forecast feature file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate(); err != nil {
			return err
		}

		client, err := sentiment.NewClient(cmd.Context(), cfg.GeminiAPIKey, sentiment.Options{
			Model:          cfg.GeminiModel,
			RateLimitDelay: cfg.RateLimitDelay,
			CallTimeout:    cfg.LabelTimeout,
			MaxPromptChars: cfg.MaxPromptChars,
			Budget:         ratelimit.NewBudget(cfg.MaxLabelRequests),
			CacheTTL:       cfg.CacheTTL,
		})
		if err != nil {
			return err
		}
		defer client.Close()

		added, err := features.ScoreCorpus(
			cmd.Context(),
			corpus.NewStore(cfg.CorpusPath),
			features.NewStore(cfg.FeaturesPath),
			client,
		)
		if err != nil {
			return err
		}
		logger.Info("scoring finished", "new_rows", added, "file", cfg.FeaturesPath)
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Convert the corpus to the instruction fine-tuning format",
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := export.Convert(corpus.NewStore(cfg.CorpusPath), cfg.ExportPath)
		if err != nil {
			return err
		}
		logger.Info("export finished", "samples", n, "file", cfg.ExportPath)
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print corpus size and the recent sentiment distribution",
	RunE: func(cmd *cobra.Command, args []string) error {
		stats, err := corpus.NewStore(cfg.CorpusPath).Stats(100)
		if err != nil {
			return err
		}

		fmt.Printf("corpus: %s\n", cfg.CorpusPath)
		fmt.Printf("records: %d\n", stats.Total)
		for _, label := range []string{sentiment.Positive, sentiment.Negative, sentiment.Neutral} {
			fmt.Printf("  %-8s %d (last 100)\n", label, stats.Distribution[label])
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dedupCmd)
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(statusCmd)
}
