package driven

import "context"

// PageFetcher retrieves web content for URL ingestion.
type PageFetcher interface {
	// FetchPage downloads a page and returns its body and content type.
	FetchPage(ctx context.Context, url string) (*FetchResult, error)

	// DiscoverPDFLinks extracts absolute PDF URLs from an HTML page body.
	// The base URL resolves relative links.
	DiscoverPDFLinks(base string, body []byte) []string

	// FetchPDF downloads a linked PDF document.
	FetchPDF(ctx context.Context, url string) ([]byte, error)
}

// FetchResult is the outcome of fetching a URL.
type FetchResult struct {
	// Body is the raw response body.
	Body []byte

	// ContentType is the media type from the Content-Type header,
	// without parameters.
	ContentType string

	// FinalURL is the URL after following redirects.
	FinalURL string
}
