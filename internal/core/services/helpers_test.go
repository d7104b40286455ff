package services

import (
	"context"
	"fmt"

	"github.com/positron-labs/positron/internal/core/ports/driven"
)

// fakeEmbedder is a deterministic EmbeddingProvider for tests.
// Texts starting with the same byte embed to identical vectors.
type fakeEmbedder struct {
	dims       int
	err        error // fail every call
	batchErr   error // fail multi-text batch calls only
	queryCalls int
	docCalls   int
}

func newFakeEmbedder(dims int) *fakeEmbedder {
	return &fakeEmbedder{dims: dims}
}

func (f *fakeEmbedder) embed(text string) []float32 {
	vec := make([]float32, f.dims)
	if text != "" {
		vec[int(text[0])%f.dims] = 1
	}
	return vec
}

func (f *fakeEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	f.docCalls++
	if f.err != nil {
		return nil, f.err
	}
	if f.batchErr != nil && len(texts) > 1 {
		return nil, f.batchErr
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = f.embed(text)
	}
	return out, nil
}

func (f *fakeEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	f.queryCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.embed(text), nil
}

func (f *fakeEmbedder) Dimensions() int { return f.dims }

func (f *fakeEmbedder) ModelName() string { return "fake-embed" }

func (f *fakeEmbedder) Ping(context.Context) error { return nil }

func (f *fakeEmbedder) Close() error { return nil }

// fakeLLM is a canned LLMProvider that records the messages it receives.
type fakeLLM struct {
	reply       string
	err         error
	gotMessages []driven.ChatMessage
}

func (f *fakeLLM) Generate(_ context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeLLM) Chat(_ context.Context, messages []driven.ChatMessage, _ driven.ChatOptions) (string, error) {
	f.gotMessages = messages
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeLLM) ModelName() string { return "fake-llm" }

func (f *fakeLLM) Ping(context.Context) error { return nil }

func (f *fakeLLM) Close() error { return nil }

// fakeFetcher serves canned pages and PDFs.
type fakeFetcher struct {
	page      *driven.FetchResult
	pageErr   error
	pdfLinks  []string
	pdfs      map[string][]byte
	pdfCalls  int
	fetchedAt []string
}

func (f *fakeFetcher) FetchPage(_ context.Context, url string) (*driven.FetchResult, error) {
	if f.pageErr != nil {
		return nil, f.pageErr
	}
	return f.page, nil
}

func (f *fakeFetcher) DiscoverPDFLinks(_ string, _ []byte) []string {
	return f.pdfLinks
}

func (f *fakeFetcher) FetchPDF(_ context.Context, url string) ([]byte, error) {
	f.pdfCalls++
	f.fetchedAt = append(f.fetchedAt, url)
	body, ok := f.pdfs[url]
	if !ok {
		return nil, fmt.Errorf("not found: %s", url)
	}
	return body, nil
}
