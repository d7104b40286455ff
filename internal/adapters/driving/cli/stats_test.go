package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/positron-labs/positron/internal/core/ports/driving"
)

func TestStatsCmd(t *testing.T) {
	fakes, cleanup := setupTestServices()
	defer cleanup()

	fakes.document.stats = driving.Stats{Documents: 4, Chunks: 120, Sessions: 2}

	out, err := executeCommand("stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Documents: 4")
	assert.Contains(t, out, "Chunks:    120")
	assert.Contains(t, out, "Sessions:  2")
}
