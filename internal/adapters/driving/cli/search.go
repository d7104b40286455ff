package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/positron-labs/positron/internal/core/domain"
)

var (
	searchLimit int
	searchJSON  bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search ingested documents",
	Long: `Performs semantic search across all ingested documents.
The query is embedded and matched against stored chunks by cosine
similarity.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum number of results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if err := initServices(serviceNeeds{embedding: true}); err != nil {
		return err
	}
	if searchService == nil {
		return errors.New("search service not configured")
	}

	results, err := searchService.Search(context.Background(), args[0], searchLimit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}
	return outputSearchTable(cmd, results)
}

func outputSearchJSON(cmd *cobra.Command, results []domain.SearchResult) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, results []domain.SearchResult) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		location := results[i].Source
		if results[i].Page > 0 {
			location = fmt.Sprintf("%s, p.%d", location, results[i].Page)
		}
		cmd.Printf("[%d] %s (%.2f)\n", i+1, location, results[i].Score)
		cmd.Printf("    %s\n", preview(results[i].Content))
		cmd.Println()
	}
	return nil
}

// preview condenses chunk text to a single short line.
func preview(content string) string {
	const maxPreview = 120

	runes := []rune(strings.Join(strings.Fields(content), " "))
	if len(runes) <= maxPreview {
		return string(runes)
	}
	return string(runes[:maxPreview]) + "..."
}
