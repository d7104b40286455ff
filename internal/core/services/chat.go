package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/positron-labs/positron/internal/core/domain"
	"github.com/positron-labs/positron/internal/core/ports/driven"
	"github.com/positron-labs/positron/internal/core/ports/driving"
	"github.com/positron-labs/positron/internal/logger"
)

// Ensure ChatService implements the interface.
var _ driving.ChatService = (*ChatService)(nil)

// systemPrompt instructs the model to answer from the provided context.
const systemPrompt = `You are a helpful assistant that answers questions about the user's documents.
Use the provided context to answer. When the context does not contain the answer, say so rather than guessing.
Refer to context blocks by their [n] number when helpful.`

// snippetLength bounds the preview text stored in a citation.
const snippetLength = 150

// ChatService conducts retrieval-augmented conversations.
type ChatService struct {
	sessions  driven.SessionStore
	retriever *Retriever
	llm       driven.LLMProvider
	settings  domain.ChatSettings
}

// NewChatService creates a new chat service.
func NewChatService(
	sessions driven.SessionStore,
	retriever *Retriever,
	llm driven.LLMProvider,
	settings domain.ChatSettings,
) *ChatService {
	if settings.HistoryWindow <= 0 {
		settings.HistoryWindow = domain.DefaultAppSettings().Chat.HistoryWindow
	}
	if settings.TopK <= 0 {
		settings.TopK = domain.DefaultAppSettings().Chat.TopK
	}
	return &ChatService{
		sessions:  sessions,
		retriever: retriever,
		llm:       llm,
		settings:  settings,
	}
}

// Chat sends a user message and returns the assistant reply.
//
//nolint:gocyclo // Orchestration function with necessary sequential steps
func (s *ChatService) Chat(ctx context.Context, req driving.ChatRequest) (*driving.ChatResponse, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, fmt.Errorf("%w: empty message", domain.ErrInvalidInput)
	}

	logger.Section("Chat Turn")

	// 1. Resolve or create the session
	session, err := s.resolveSession(ctx, req.SessionID, message)
	if err != nil {
		return nil, err
	}

	// 2. Load conversation history before persisting the new message
	history, err := s.sessions.ListMessages(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	if len(history) > s.settings.HistoryWindow {
		history = history[len(history)-s.settings.HistoryWindow:]
	}
	logger.Debug("History window: %d messages", len(history))

	// 3. Retrieve document context. Retrieval failures degrade to a
	// context-free answer instead of failing the turn.
	var results []domain.SearchResult
	if req.UseContext {
		topK := req.TopK
		if topK <= 0 {
			topK = s.settings.TopK
		}
		results, err = s.retriever.Retrieve(ctx, message, topK)
		if err != nil {
			logger.Warn("Retrieval failed, answering without context: %v", err)
			results = nil
		}
		logger.Debug("Retrieved %d context chunks", len(results))
	}

	// 4. Persist the user message
	userMsg := &domain.Message{
		ID:        uuid.NewString(),
		SessionID: session.ID,
		Role:      domain.RoleUser,
		Content:   message,
		CreatedAt: time.Now(),
	}
	if err := s.sessions.AppendMessage(ctx, userMsg); err != nil {
		return nil, fmt.Errorf("save user message: %w", err)
	}

	// 5. Generate the reply. The user message stays recorded on failure;
	// no assistant message is persisted.
	reply, err := s.llm.Chat(ctx, s.buildMessages(history, results, message), driven.ChatOptions{})
	if err != nil {
		return nil, fmt.Errorf("generate reply: %w", err)
	}

	// 6. Persist the assistant message with its citations
	citations := buildCitations(results)
	assistantMsg := &domain.Message{
		ID:        uuid.NewString(),
		SessionID: session.ID,
		Role:      domain.RoleAssistant,
		Content:   reply,
		Citations: citations,
		CreatedAt: time.Now(),
	}
	if err := s.sessions.AppendMessage(ctx, assistantMsg); err != nil {
		return nil, fmt.Errorf("save assistant message: %w", err)
	}

	return &driving.ChatResponse{
		Reply:     reply,
		SessionID: session.ID,
		Citations: citations,
	}, nil
}

// resolveSession loads an existing session or lazily creates a new one
// titled from the first message.
func (s *ChatService) resolveSession(ctx context.Context, sessionID, message string) (*domain.Session, error) {
	if sessionID != "" {
		session, err := s.sessions.GetSession(ctx, sessionID)
		if err != nil {
			return nil, fmt.Errorf("get session: %w", err)
		}
		return session, nil
	}

	now := time.Now()
	session := &domain.Session{
		ID:        uuid.NewString(),
		Title:     domain.TitleFromMessage(message),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.sessions.SaveSession(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	logger.Info("Created session %s: %q", session.ID, session.Title)
	return session, nil
}

// buildMessages assembles the LLM conversation: system prompt with
// context blocks, bounded history, then the current user message.
func (s *ChatService) buildMessages(
	history []domain.Message, results []domain.SearchResult, message string,
) []driven.ChatMessage {
	system := systemPrompt
	if len(results) > 0 {
		var b strings.Builder
		b.WriteString(system)
		b.WriteString("\n\nContext:\n")
		for i, res := range results {
			fmt.Fprintf(&b, "[%d] %s\n", i+1, res.Content)
		}
		system = b.String()
	}

	messages := make([]driven.ChatMessage, 0, len(history)+2)
	messages = append(messages, driven.ChatMessage{Role: "system", Content: system})
	for _, msg := range history {
		messages = append(messages, driven.ChatMessage{Role: msg.Role, Content: msg.Content})
	}
	messages = append(messages, driven.ChatMessage{Role: domain.RoleUser, Content: message})

	return messages
}

// buildCitations converts retrieval results into citations, deduplicated
// by source and page. The first occurrence wins, so the highest-scoring
// chunk provides the snippet.
func buildCitations(results []domain.SearchResult) []domain.Citation {
	if len(results) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(results))
	citations := make([]domain.Citation, 0, len(results))
	for _, res := range results {
		citation := domain.Citation{
			Source:  res.Source,
			Page:    res.Page,
			Snippet: snippet(res.Content),
			Score:   res.Score,
		}
		if seen[citation.Key()] {
			continue
		}
		seen[citation.Key()] = true
		citations = append(citations, citation)
	}

	return citations
}

// snippet truncates content to a short preview without splitting a rune.
func snippet(content string) string {
	content = strings.Join(strings.Fields(content), " ")
	runes := []rune(content)
	if len(runes) <= snippetLength {
		return content
	}
	return string(runes[:snippetLength]) + "..."
}
