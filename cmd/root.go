// Package cmd provides the command-line interface for jiralog.
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/danielolaszy/jiralog/internal/logging"
)

// newRootCmd builds the command tree.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "jiralog",
		Short: "jiralog files JIRA tickets for application failures",
		Long: `jiralog turns error-level log events into JIRA tickets, one ticket per
distinct stack trace. Repeated failures add a comment to the existing ticket
instead of opening a new one.

The commands here work on rendered stack traces, as found in log files:
fingerprint shows how a trace is deduplicated and report files it.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level, _ := cmd.Flags().GetString("log-level")
			format, _ := cmd.Flags().GetString("log-format")
			if level == "" && format == "" {
				return
			}
			if level == "" {
				level = os.Getenv("LOG_LEVEL")
			}
			if format == "" {
				format = os.Getenv("LOG_FORMAT")
			}
			logging.SetupLogger(os.Stderr, logging.LogLevel(level), logging.Format(format))
		},
	}

	rootCmd.PersistentFlags().String("log-level", "", "Diagnostic log level (debug, info, warn, error); overrides LOG_LEVEL")
	rootCmd.PersistentFlags().String("log-format", "", "Diagnostic log format (text, json); overrides LOG_FORMAT")

	rootCmd.AddCommand(newFingerprintCmd())
	rootCmd.AddCommand(newReportCmd())

	return rootCmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return newRootCmd().Execute()
}
