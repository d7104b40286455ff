package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Manage ingested documents",
	Long:  `List, view, or delete ingested documents.`,
}

var documentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all documents",
	Args:  cobra.NoArgs,
	RunE:  runDocumentList,
}

var documentGetCmd = &cobra.Command{
	Use:   "get [doc-id]",
	Short: "Show document info",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentGet,
}

var documentDeleteCmd = &cobra.Command{
	Use:   "delete [doc-id]",
	Short: "Delete a document and its chunks",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentDelete,
}

func init() {
	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentGetCmd)
	documentCmd.AddCommand(documentDeleteCmd)
	rootCmd.AddCommand(documentCmd)
}

func runDocumentList(cmd *cobra.Command, _ []string) error {
	if err := initServices(serviceNeeds{}); err != nil {
		return err
	}
	if documentService == nil {
		return errors.New("document service not configured")
	}

	docs, err := documentService.ListDocuments(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if len(docs) == 0 {
		cmd.Println("No documents ingested yet.")
		return nil
	}

	cmd.Println("Documents:")
	cmd.Println()
	for i := range docs {
		title := docs[i].Title
		if title == "" {
			title = docs[i].Filename
		}
		cmd.Printf("  %s\n", docs[i].ID)
		cmd.Printf("    Title: %s\n", title)
		cmd.Printf("    Chunks: %d\n", docs[i].ChunkCount)
		cmd.Printf("    Ingested: %s\n", docs[i].CreatedAt.Format("2006-01-02 15:04"))
		cmd.Println()
	}

	cmd.Printf("Total: %d documents\n", len(docs))
	return nil
}

func runDocumentGet(cmd *cobra.Command, args []string) error {
	if err := initServices(serviceNeeds{}); err != nil {
		return err
	}
	if documentService == nil {
		return errors.New("document service not configured")
	}

	doc, err := documentService.GetDocument(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	cmd.Printf("ID: %s\n", doc.ID)
	cmd.Printf("Filename: %s\n", doc.Filename)
	if doc.Title != "" {
		cmd.Printf("Title: %s\n", doc.Title)
	}
	if doc.SourceURL != "" {
		cmd.Printf("Source URL: %s\n", doc.SourceURL)
	}
	cmd.Printf("Content type: %s\n", doc.ContentType)
	cmd.Printf("Chunks: %d\n", doc.ChunkCount)
	if len(doc.Pages) > 0 {
		cmd.Printf("Pages: %d\n", len(doc.Pages))
	}
	cmd.Printf("Ingested: %s\n", doc.CreatedAt.Format("2006-01-02 15:04:05"))
	return nil
}

func runDocumentDelete(cmd *cobra.Command, args []string) error {
	if err := initServices(serviceNeeds{}); err != nil {
		return err
	}
	if documentService == nil {
		return errors.New("document service not configured")
	}

	if err := documentService.DeleteDocument(context.Background(), args[0]); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	cmd.Printf("Deleted document %s\n", args[0])
	return nil
}
