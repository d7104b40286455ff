package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/positron-labs/positron/internal/core/domain"
)

func TestSearchCmd_Use(t *testing.T) {
	assert.Equal(t, "search [query]", searchCmd.Use)
}

func TestSearchCmd_RequiresExactlyOneArg(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := executeCommand("search")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestSearchCmd_HasLimitFlag(t *testing.T) {
	flag := searchCmd.Flags().Lookup("limit")
	require.NotNil(t, flag)
	assert.Equal(t, "n", flag.Shorthand)
}

func TestSearchCmd_PrintsResults(t *testing.T) {
	fakes, cleanup := setupTestServices()
	defer cleanup()

	fakes.search.results = []domain.SearchResult{
		{Content: "quantum computing basics", Score: 0.93, Source: "physics.pdf", Page: 4},
		{Content: "more quantum text", Score: 0.71, Source: "notes.txt"},
	}

	out, err := executeCommand("search", "quantum")
	require.NoError(t, err)

	assert.Equal(t, "quantum", fakes.search.gotQuery)
	assert.Contains(t, out, "Results:")
	assert.Contains(t, out, "[1] physics.pdf, p.4 (0.93)")
	assert.Contains(t, out, "quantum computing basics")
	assert.Contains(t, out, "[2] notes.txt (0.71)")
}

func TestSearchCmd_PassesLimit(t *testing.T) {
	fakes, cleanup := setupTestServices()
	defer cleanup()
	defer func() { searchLimit = 0 }()

	_, err := executeCommand("search", "--limit", "3", "query")
	require.NoError(t, err)
	assert.Equal(t, 3, fakes.search.gotTopK)
}

func TestSearchCmd_NoResults(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand("search", "nothing here")
	require.NoError(t, err)
	assert.Contains(t, out, "No results found.")
}

func TestSearchCmd_JSONOutput(t *testing.T) {
	fakes, cleanup := setupTestServices()
	defer cleanup()
	defer func() { searchJSON = false }()

	fakes.search.results = []domain.SearchResult{
		{Content: "chunk text", Score: 0.5, Source: "doc.txt"},
	}

	out, err := executeCommand("search", "--json", "query")
	require.NoError(t, err)
	assert.Contains(t, out, `"Source": "doc.txt"`)
}

func TestPreview_TruncatesLongContent(t *testing.T) {
	long := ""
	for i := 0; i < 40; i++ {
		long += "word "
	}

	got := preview(long)
	assert.LessOrEqual(t, len([]rune(got)), 123)
	assert.Contains(t, got, "...")
}
