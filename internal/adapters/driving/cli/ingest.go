package cli

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/positron-labs/positron/internal/core/domain"
	"github.com/positron-labs/positron/internal/normalisers/pdf"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file|url]...",
	Short: "Ingest files or web pages into the knowledge base",
	Long: `Ingests documents so they can be searched and used as chat context.

Arguments may be file paths or http(s) URLs. Supported file formats are
plain text, markdown, HTML, PDF (requires pdftotext) and DOCX. For URLs,
the page text is ingested and up to five linked PDFs are followed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

var ingestNoPDFLinks bool

func init() {
	ingestCmd.Flags().BoolVar(&ingestNoPDFLinks, "no-pdf-links", false, "Do not follow PDF links found on ingested pages")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if err := initServices(serviceNeeds{embedding: true}); err != nil {
		return err
	}
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	ctx := context.Background()
	var failed int

	for _, arg := range args {
		var err error
		if isURL(arg) {
			err = ingestURL(ctx, cmd, arg)
		} else {
			err = ingestFile(ctx, cmd, arg)
		}
		if err != nil {
			failed++
			cmd.PrintErrf("Failed to ingest %s: %v\n", arg, err)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d inputs failed", failed, len(args))
	}
	return nil
}

func ingestFile(ctx context.Context, cmd *cobra.Command, path string) error {
	contentType := detectContentType(path)
	if contentType == "application/pdf" {
		if err := pdf.CheckAvailable(); err != nil {
			return fmt.Errorf("%w\n%s", err, pdf.InstallInstructions())
		}
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	doc, err := ingestService.IngestFile(ctx, &domain.RawDocument{
		Filename:    filepath.Base(path),
		ContentType: contentType,
		Content:     content,
	})
	if err != nil {
		return err
	}

	printIngested(cmd, doc)
	return nil
}

func ingestURL(ctx context.Context, cmd *cobra.Command, url string) error {
	docs, err := ingestService.IngestURL(ctx, url, !ingestNoPDFLinks)
	if err != nil {
		return err
	}
	for i := range docs {
		printIngested(cmd, &docs[i])
	}
	return nil
}

func printIngested(cmd *cobra.Command, doc *domain.Document) {
	title := doc.Title
	if title == "" {
		title = doc.Filename
	}
	cmd.Printf("Ingested %s (%d chunks)\n", title, doc.ChunkCount)
	cmd.Printf("  ID: %s\n", doc.ID)
}

func isURL(arg string) bool {
	return strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://")
}

// detectContentType maps a file path to a MIME type. Common formats are
// resolved explicitly so behaviour does not depend on the host's MIME
// tables.
func detectContentType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", "":
		return "text/plain"
	case ".md", ".markdown":
		return "text/markdown"
	case ".html", ".htm":
		return "text/html"
	case ".pdf":
		return "application/pdf"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	}

	if byExt := mime.TypeByExtension(filepath.Ext(path)); byExt != "" {
		if parsed, _, err := mime.ParseMediaType(byExt); err == nil {
			return parsed
		}
	}
	return "text/plain"
}
