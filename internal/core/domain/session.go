package domain

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxTitleLength bounds session titles derived from the first user message.
const MaxTitleLength = 50

// Message roles.
const (
	// RoleUser marks a message written by the user.
	RoleUser = "user"

	// RoleAssistant marks a message generated by the language model.
	RoleAssistant = "assistant"
)

// Session represents one conversation thread.
// Sessions are created lazily on the first message of a new conversation.
type Session struct {
	// ID is the unique identifier for the session.
	ID string

	// Title is derived from the first user message, truncated to
	// MaxTitleLength.
	Title string

	// CreatedAt is when the session was created.
	CreatedAt time.Time

	// UpdatedAt is when the session last received a message.
	UpdatedAt time.Time
}

// Message represents a single turn in a session. Messages are append-only;
// ordering is insertion order within a session.
type Message struct {
	// ID is the unique identifier for the message.
	ID string

	// SessionID links to the parent Session.
	SessionID string

	// Role is RoleUser or RoleAssistant.
	Role string

	// Content is the message text.
	Content string

	// Citations lists the sources that informed an assistant message.
	// Empty for user messages.
	Citations []Citation

	// CreatedAt is when the message was persisted.
	CreatedAt time.Time
}

// Citation identifies a retrieved chunk that informed an assistant message.
// It is a denormalised snapshot of the chunk's provenance metadata, so that
// deleting the underlying document never corrupts conversation history.
type Citation struct {
	// Source is the document filename or URL the chunk came from.
	Source string `json:"source"`

	// Page is the 1-based page number, or 0 when not applicable.
	Page int `json:"page,omitempty"`

	// Snippet is a short preview of the chunk content.
	Snippet string `json:"snippet,omitempty"`

	// Score is the similarity score at retrieval time.
	Score float64 `json:"score,omitempty"`
}

// Key returns the deduplication key for a citation (source + page).
func (c Citation) Key() string {
	if c.Page == 0 {
		return c.Source
	}
	return c.Source + "#" + strconv.Itoa(c.Page)
}

// TitleFromMessage derives a session title from the first user message.
// The message is whitespace-normalised and truncated to MaxTitleLength
// without splitting a multi-byte rune.
func TitleFromMessage(message string) string {
	title := strings.Join(strings.Fields(message), " ")
	if utf8.RuneCountInString(title) <= MaxTitleLength {
		return title
	}

	runes := []rune(title)
	return string(runes[:MaxTitleLength])
}
