// Package cli implements the positron command line interface. Commands are
// thin glue over the driving ports; all behaviour lives in the core services.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/positron-labs/positron/internal/logger"
)

// version is overridden at build time via -ldflags.
var version = "dev"

var (
	verbose   bool
	dataDir   string
	configDir string
)

var rootCmd = &cobra.Command{
	Use:   "positron",
	Short: "Chat with your documents from the terminal",
	Long: `Positron ingests documents into a local knowledge base and answers
questions about them using retrieval-augmented generation.

Ingest files or web pages, then chat or search:

  positron ingest report.pdf notes.md
  positron ingest https://example.com/articles
  positron chat "what does the report conclude?"
  positron search "quarterly revenue"`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory (default ~/.positron/data)")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "config directory (default ~/.positron)")
}

// Execute runs the CLI and releases any resources the commands opened.
func Execute() error {
	defer closeServices()
	return rootCmd.Execute()
}
