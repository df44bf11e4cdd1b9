package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/danielolaszy/jiralog/internal/fingerprint"
	"github.com/danielolaszy/jiralog/internal/stacktrace"
)

func newFingerprintCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fingerprint [file]",
		Short: "Print the deduplication fingerprint of a stack trace",
		Long: `Print the fingerprint of a rendered stack trace read from a file, or from
stdin when no file is given.

Two traces with the same fingerprint are filed under the same ticket. Only
the call sites take part: exception messages and file names do not.

Example:
  jiralog fingerprint trace.txt
  kubectl logs pod/shop | jiralog fingerprint --explain`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			explain, err := cmd.Flags().GetBool("explain")
			if err != nil {
				return err
			}

			lines, err := readTrace(cmd, args)
			if err != nil {
				return err
			}

			chain, err := stacktrace.Parse(lines)
			if err != nil {
				return fmt.Errorf("failed to parse stack trace: %w", err)
			}

			fp, err := fingerprint.Compute(chain)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if explain {
				fmt.Fprintln(out, strings.Join(chain.Render(), "\n"))
				fmt.Fprintf(out, "fingerprint: %d\n", fp)
				return nil
			}
			fmt.Fprintln(out, fp)
			return nil
		},
	}

	cmd.Flags().Bool("explain", false, "Print the parsed frames that make up the fingerprint")

	return cmd
}
