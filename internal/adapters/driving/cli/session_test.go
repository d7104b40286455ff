package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/positron-labs/positron/internal/core/domain"
)

func TestSessionCmd_Use(t *testing.T) {
	assert.Equal(t, "session", sessionCmd.Use)
}

func TestSessionListCmd_Empty(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand("session", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No sessions yet.")
}

func TestSessionListCmd_PrintsSessions(t *testing.T) {
	fakes, cleanup := setupTestServices()
	defer cleanup()

	fakes.session.sessions = []domain.Session{
		{ID: "s1", Title: "About the report", UpdatedAt: time.Date(2026, 4, 2, 11, 0, 0, 0, time.UTC)},
	}

	out, err := executeCommand("session", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "s1")
	assert.Contains(t, out, "Title: About the report")
	assert.Contains(t, out, "Total: 1 sessions")
}

func TestSessionShowCmd(t *testing.T) {
	fakes, cleanup := setupTestServices()
	defer cleanup()

	fakes.session.sessions = []domain.Session{{ID: "s1", Title: "About the report"}}
	fakes.session.messages = []domain.Message{
		{Role: domain.RoleUser, Content: "what changed?"},
		{Role: domain.RoleAssistant, Content: "Revenue grew.", Citations: []domain.Citation{{Source: "report.pdf", Page: 2}}},
	}

	out, err := executeCommand("session", "show", "s1")
	require.NoError(t, err)

	assert.Contains(t, out, "About the report (s1)")
	assert.Contains(t, out, "> what changed?")
	assert.Contains(t, out, "Revenue grew.")
	assert.Contains(t, out, "report.pdf, p.2")
}

func TestSessionShowCmd_NotFound(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := executeCommand("session", "show", "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSessionDeleteCmd(t *testing.T) {
	fakes, cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand("session", "delete", "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", fakes.session.deletedID)
	assert.Contains(t, out, "Deleted session s1")
}
