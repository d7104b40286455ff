package driven

import "context"

// CommandRunner executes external commands.
// It exists so adapters that shell out (e.g., pdftotext) can be tested
// without the tool installed.
type CommandRunner interface {
	// Run executes the named command with arguments and returns its
	// combined stdout.
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}
