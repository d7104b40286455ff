package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show knowledge base statistics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	if err := initServices(serviceNeeds{}); err != nil {
		return err
	}
	if documentService == nil {
		return errors.New("document service not configured")
	}

	stats, err := documentService.Stats(context.Background())
	if err != nil {
		return fmt.Errorf("failed to collect stats: %w", err)
	}

	cmd.Printf("Documents: %d\n", stats.Documents)
	cmd.Printf("Chunks:    %d\n", stats.Chunks)
	cmd.Printf("Sessions:  %d\n", stats.Sessions)
	return nil
}
