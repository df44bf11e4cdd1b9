package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/danielolaszy/jiralog/internal/appender"
	"github.com/danielolaszy/jiralog/internal/cache"
	"github.com/danielolaszy/jiralog/internal/config"
	"github.com/danielolaszy/jiralog/internal/fingerprint"
	"github.com/danielolaszy/jiralog/internal/logging"
	"github.com/danielolaszy/jiralog/internal/stacktrace"
	"github.com/danielolaszy/jiralog/pkg/jiralog"
	"github.com/danielolaszy/jiralog/pkg/models"
)

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report [file]",
		Short: "File a ticket for a stack trace",
		Long: `File a ticket for a rendered stack trace read from a file, or from stdin when
no file is given. The tracker is configured through the environment
(JIRA_URL, JIRA_USERNAME, JIRA_PASSWORD, JIRA_PROJECT, ...).

With --ticket the trace is treated as a repeat of an existing ticket and a
comment is added to it instead.

Example:
  jiralog report --logger orders --message "payment failed" trace.txt
  jiralog report --ticket OPS-42 trace.txt`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loggerName, err := cmd.Flags().GetString("logger")
			if err != nil {
				return err
			}
			message, err := cmd.Flags().GetString("message")
			if err != nil {
				return err
			}
			ticket, err := cmd.Flags().GetString("ticket")
			if err != nil {
				return err
			}
			levelName, err := cmd.Flags().GetString("level")
			if err != nil {
				return err
			}
			level := models.ParseLevel(levelName)

			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if err := config.ValidateJiraConfig(cfg); err != nil {
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

			if message == "" {
				message = lines[0]
			}

			service, err := jiralog.NewService(cfg)
			if err != nil {
				return err
			}

			c := cache.New(cfg.Cache.Size, cfg.Cache.Idle)
			if ticket != "" {
				c.Put(fp, ticket)
			}
			a := appender.New(cfg.Jira, service, c, appender.WithTimeout(cfg.Timeout))

			logging.Info("reporting stack trace",
				"tracker", cfg.Tracker,
				"project", cfg.Jira.ProjectKey,
				"fingerprint", fp)

			event := models.ErrorEvent{
				Time:       time.Now(),
				LoggerName: loggerName,
				Level:      level,
				Message:    message,
				StackLines: lines,
			}

			outcome := a.Append(context.Background(), event)
			switch outcome {
			case appender.OutcomeCreated, appender.OutcomeCommented:
				key, _ := c.Get(fp)
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", outcome, key)
				return nil
			case appender.OutcomeIgnored:
				if level < models.LevelError {
					return fmt.Errorf("level %s is below ERROR, nothing to report", level)
				}
				return fmt.Errorf("stack trace has no frames, nothing to report")
			default:
				return fmt.Errorf("failed to report stack trace: %s", outcome)
			}
		},
	}

	cmd.Flags().StringP("logger", "l", jiralog.DefaultLoggerName, "Logger name used in the ticket summary")
	cmd.Flags().StringP("message", "m", "", "Logged message used in the ticket summary (default: first line of the trace)")
	cmd.Flags().StringP("ticket", "t", "", "Comment on this existing ticket instead of creating one")
	cmd.Flags().String("level", "error", "Severity of the reported event (debug, info, warn, error, fatal)")

	return cmd
}
