// Package cli implements the docqa command-line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/siemdocs/docqa/internal/app"
	"github.com/siemdocs/docqa/internal/logger"
)

var (
	flagVerbose bool
	flagConfig  string
)

// buildApp constructs the pipeline. Replaceable in tests.
var buildApp = app.Build

var rootCmd = &cobra.Command{
	Use:   "docqa",
	Short: "Question answering over security product documentation",
	Long: `docqa retrieves relevant passages from indexed security product
documentation (SIEM integrations, detection rules, parsers, data sources)
using hybrid vector + keyword search with reranking, and can generate
cited answers from the retrieved context.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.SetVerbose(flagVerbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file path (default ~/.docqa/config.toml)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
