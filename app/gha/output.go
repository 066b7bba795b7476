package gha

import (
	"fmt"
	"os"
)

// WriteOutput appends a step output to the file named by GITHUB_OUTPUT,
// using the heredoc form so multi-line values round-trip. Outside of a
// workflow run the variable is unset and the call is a no-op.
func WriteOutput(name, value string) error {
	path := os.Getenv("GITHUB_OUTPUT")
	if path == "" {
		return nil
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open output file: %w", err)
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "%s<<EOF\n%s\nEOF\n", name, value); err != nil {
		return fmt.Errorf("failed to write output %s: %w", name, err)
	}

	return nil
}
