// Package web provides an HTTP page fetcher for URL ingestion.
package web

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/positron-labs/positron/internal/core/domain"
	"github.com/positron-labs/positron/internal/core/ports/driven"
)

// Ensure Fetcher implements the interface.
var _ driven.PageFetcher = (*Fetcher)(nil)

// Default configuration values.
const (
	DefaultTimeout     = 30 * time.Second
	DefaultMaxBodySize = 20 << 20 // 20 MiB
	DefaultUserAgent   = "positron/1.0"
)

// hrefPattern matches href attribute values in anchor tags.
var hrefPattern = regexp.MustCompile(`(?i)href\s*=\s*["']([^"']+)["']`)

// Config holds configuration for the web fetcher.
type Config struct {
	// Timeout is the per-request timeout (default: 30s).
	Timeout time.Duration

	// MaxBodySize caps downloaded body size in bytes (default: 20 MiB).
	MaxBodySize int64

	// UserAgent is sent with every request.
	UserAgent string
}

// Fetcher retrieves web pages and linked PDFs over HTTP.
type Fetcher struct {
	client      *http.Client
	maxBodySize int64
	userAgent   string
}

// NewFetcher creates a new web fetcher.
func NewFetcher(cfg Config) *Fetcher {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxBodySize == 0 {
		cfg.MaxBodySize = DefaultMaxBodySize
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}

	return &Fetcher{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		maxBodySize: cfg.MaxBodySize,
		userAgent:   cfg.UserAgent,
	}
}

// FetchPage downloads a page and returns its body and content type.
func (f *Fetcher) FetchPage(ctx context.Context, rawURL string) (*driven.FetchResult, error) {
	body, resp, err := f.get(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType != "" {
		if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
			contentType = mediaType
		}
	}

	return &driven.FetchResult{
		Body:        body,
		ContentType: contentType,
		FinalURL:    resp.Request.URL.String(),
	}, nil
}

// DiscoverPDFLinks extracts absolute PDF URLs from an HTML page body.
// The base URL resolves relative links. Order follows appearance in the
// page, with duplicates removed.
func (f *Fetcher) DiscoverPDFLinks(base string, body []byte) []string {
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil
	}

	seen := make(map[string]bool)
	var links []string //nolint:prealloc // link count unknown until scanned

	for _, match := range hrefPattern.FindAllSubmatch(body, -1) {
		href := string(match[1])
		ref, err := url.Parse(href)
		if err != nil {
			continue
		}

		resolved := baseURL.ResolveReference(ref)
		if resolved.Scheme != "http" && resolved.Scheme != "https" {
			continue
		}
		if !strings.HasSuffix(strings.ToLower(resolved.Path), ".pdf") {
			continue
		}

		abs := resolved.String()
		if seen[abs] {
			continue
		}
		seen[abs] = true
		links = append(links, abs)
	}

	return links
}

// FetchPDF downloads a linked PDF document.
func (f *Fetcher) FetchPDF(ctx context.Context, rawURL string) ([]byte, error) {
	body, _, err := f.get(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return body, nil
}

// get performs an HTTP GET with size-limited body reading.
func (f *Fetcher) get(ctx context.Context, rawURL string) ([]byte, *http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("%w: %s returned status %d", domain.ErrInvalidInput, rawURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize+1))
	if err != nil {
		return nil, nil, fmt.Errorf("reading response body: %w", err)
	}
	if int64(len(body)) > f.maxBodySize {
		return nil, nil, fmt.Errorf("%w: %s exceeds maximum size of %d bytes", domain.ErrInvalidInput, rawURL, f.maxBodySize)
	}

	return body, resp, nil
}
