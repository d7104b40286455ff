package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/positron-labs/positron/internal/core/domain"
	"github.com/positron-labs/positron/internal/core/ports/driving"
)

func resetChatFlags() {
	chatSessionID = ""
	chatNoContext = false
	chatTopK = 0
}

func TestChatCmd_Use(t *testing.T) {
	assert.Equal(t, "chat [message]", chatCmd.Use)
}

func TestChatCmd_OneShot(t *testing.T) {
	fakes, cleanup := setupTestServices()
	defer cleanup()
	defer resetChatFlags()

	fakes.chat.resp = &driving.ChatResponse{
		Reply:     "The report concludes growth.",
		SessionID: "session-9",
		Citations: []domain.Citation{
			{Source: "report.pdf", Page: 12},
			{Source: "notes.txt"},
		},
	}

	out, err := executeCommand("chat", "what does the report conclude?")
	require.NoError(t, err)

	assert.Equal(t, "what does the report conclude?", fakes.chat.gotReq.Message)
	assert.True(t, fakes.chat.gotReq.UseContext)
	assert.Contains(t, out, "The report concludes growth.")
	assert.Contains(t, out, "Sources:")
	assert.Contains(t, out, "report.pdf, p.12")
	assert.Contains(t, out, "- notes.txt")
}

func TestChatCmd_NoContextFlag(t *testing.T) {
	fakes, cleanup := setupTestServices()
	defer cleanup()
	defer resetChatFlags()

	_, err := executeCommand("chat", "--no-context", "hello")
	require.NoError(t, err)
	assert.False(t, fakes.chat.gotReq.UseContext)
}

func TestChatCmd_SessionAndTopKFlags(t *testing.T) {
	fakes, cleanup := setupTestServices()
	defer cleanup()
	defer resetChatFlags()

	_, err := executeCommand("chat", "--session", "session-3", "--top-k", "7", "follow up")
	require.NoError(t, err)
	assert.Equal(t, "session-3", fakes.chat.gotReq.SessionID)
	assert.Equal(t, 7, fakes.chat.gotReq.TopK)
}

func TestChatCmd_ErrorSurfaces(t *testing.T) {
	fakes, cleanup := setupTestServices()
	defer cleanup()
	defer resetChatFlags()

	fakes.chat.err = errors.New("model overloaded")

	_, err := executeCommand("chat", "doomed")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model overloaded")
}

func TestChatCmd_NoCitationsOmitsSources(t *testing.T) {
	fakes, cleanup := setupTestServices()
	defer cleanup()
	defer resetChatFlags()

	fakes.chat.resp = &driving.ChatResponse{Reply: "hi", SessionID: "s"}

	out, err := executeCommand("chat", "hello")
	require.NoError(t, err)
	assert.NotContains(t, out, "Sources:")
}
