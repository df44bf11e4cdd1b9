package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/danielolaszy/jiralog/internal/stacktrace"
)

// readTrace reads a rendered stack trace from the named file, or from stdin
// when no file is given.
func readTrace(cmd *cobra.Command, args []string) ([]string, error) {
	var r io.Reader = cmd.InOrStdin()
	if len(args) > 0 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return nil, fmt.Errorf("failed to open trace: %w", err)
		}
		defer f.Close()
		r = f
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read trace: %w", err)
	}

	if strings.TrimSpace(string(data)) == "" {
		return nil, fmt.Errorf("no stack trace found in input")
	}
	return stacktrace.SplitLines(string(data)), nil
}
