// Command egysent runs the Egyptian financial news sentiment pipeline:
// incremental collection, historical backfill, corpus maintenance and the
// downstream feature/export jobs.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/egysentiment/collector/internal/config"
	"github.com/egysentiment/collector/internal/logger"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "egysent",
	Short: "Egyptian financial news sentiment pipeline",
	Long: `egysent acquires Egyptian financial news from feeds, listing pages and
paginated archives, labels article sentiment through an inference service
and maintains the resulting training corpus and forecast features.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger.Init()

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("loading configuration: %w", err)
		}
		return nil
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
