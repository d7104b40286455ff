package cli

import (
	"bytes"
	"context"

	"github.com/positron-labs/positron/internal/core/domain"
	"github.com/positron-labs/positron/internal/core/ports/driving"
)

// setupTestServices wires fake services into the package so commands run
// without any stores or providers. The returned cleanup restores the
// uninitialised state.
func setupTestServices() (*testServices, func()) {
	fakes := &testServices{
		ingest:   &fakeIngestService{},
		chat:     &fakeChatService{resp: &driving.ChatResponse{Reply: "reply", SessionID: "session-1"}},
		search:   &fakeSearchService{},
		document: &fakeDocumentService{},
		session:  &fakeSessionService{},
	}

	ingestService = fakes.ingest
	chatService = fakes.chat
	searchService = fakes.search
	documentService = fakes.document
	sessionService = fakes.session
	servicesReady = true

	return fakes, func() {
		ingestService = nil
		chatService = nil
		searchService = nil
		documentService = nil
		sessionService = nil
		servicesReady = false
	}
}

// executeCommand runs the root command with args and captures its output.
func executeCommand(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

type testServices struct {
	ingest   *fakeIngestService
	chat     *fakeChatService
	search   *fakeSearchService
	document *fakeDocumentService
	session  *fakeSessionService
}

type fakeIngestService struct {
	doc      *domain.Document
	urlDocs  []domain.Document
	err      error
	gotRaw   *domain.RawDocument
	gotURL   string
	gotLinks bool
}

func (f *fakeIngestService) IngestFile(_ context.Context, raw *domain.RawDocument) (*domain.Document, error) {
	f.gotRaw = raw
	if f.err != nil {
		return nil, f.err
	}
	if f.doc != nil {
		return f.doc, nil
	}
	return &domain.Document{ID: "doc-1", Filename: raw.Filename, ChunkCount: 3}, nil
}

func (f *fakeIngestService) IngestURL(_ context.Context, url string, extractLinkedPDFs bool) ([]domain.Document, error) {
	f.gotURL = url
	f.gotLinks = extractLinkedPDFs
	if f.err != nil {
		return nil, f.err
	}
	return f.urlDocs, nil
}

type fakeChatService struct {
	resp   *driving.ChatResponse
	err    error
	gotReq driving.ChatRequest
}

func (f *fakeChatService) Chat(_ context.Context, req driving.ChatRequest) (*driving.ChatResponse, error) {
	f.gotReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

type fakeSearchService struct {
	results  []domain.SearchResult
	err      error
	gotQuery string
	gotTopK  int
}

func (f *fakeSearchService) Search(_ context.Context, query string, topK int) ([]domain.SearchResult, error) {
	f.gotQuery = query
	f.gotTopK = topK
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

type fakeDocumentService struct {
	docs      []domain.Document
	stats     driving.Stats
	err       error
	deletedID string
}

func (f *fakeDocumentService) ListDocuments(context.Context) ([]domain.Document, error) {
	return f.docs, f.err
}

func (f *fakeDocumentService) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.docs {
		if f.docs[i].ID == id {
			return &f.docs[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeDocumentService) DeleteDocument(_ context.Context, id string) error {
	f.deletedID = id
	return f.err
}

func (f *fakeDocumentService) Stats(context.Context) (*driving.Stats, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &f.stats, nil
}

type fakeSessionService struct {
	sessions  []domain.Session
	messages  []domain.Message
	err       error
	deletedID string
}

func (f *fakeSessionService) ListSessions(context.Context) ([]domain.Session, error) {
	return f.sessions, f.err
}

func (f *fakeSessionService) GetSession(_ context.Context, id string) (*domain.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.sessions {
		if f.sessions[i].ID == id {
			return &f.sessions[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeSessionService) ListMessages(_ context.Context, _ string) ([]domain.Message, error) {
	return f.messages, f.err
}

func (f *fakeSessionService) DeleteSession(_ context.Context, id string) error {
	f.deletedID = id
	return f.err
}
