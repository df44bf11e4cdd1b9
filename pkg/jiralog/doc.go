// Package jiralog files tracker tickets for errors logged through log/slog.
//
// Quick start:
//
//	h, err := jiralog.New(jiralog.WithLoggerName("orders"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer h.Close()
//
//	logger := slog.New(h)
//	logger.Error("payment failed", "error", errors.WithStack(err))
//
// Records at ERROR or above that carry an "error" attribute become tickets.
// The first occurrence of a stack trace opens a ticket; later occurrences of
// the same trace comment on it. Errors need a captured stack trace, as made
// by github.com/pkg/errors, to be filed.
//
// New reads its settings from the environment:
//
//	JIRALOG_TRACKER     jira (default) or github
//	JIRA_URL            tracker base URL; for github an Enterprise domain
//	JIRA_USERNAME       account name
//	JIRA_PASSWORD       password or API token (JIRA_TOKEN is also accepted)
//	JIRA_PROJECT        project key, or owner/repo for github
//	JIRA_LABEL          optional label, also shown in the summary
//	JIRA_ASSIGNEE       optional assignee
//	JIRA_ISSUE_TYPE     issue type id or name (default 1)
//	JIRALOG_CACHE_SIZE  fingerprints remembered (default 5000)
//	JIRALOG_CACHE_IDLE  idle expiry of a fingerprint (default 168h)
//	JIRALOG_TIMEOUT     bound on each tracker call (default 10s)
//
// A Handler is safe for concurrent use. Handlers created by New share one
// process-wide fingerprint cache.
package jiralog
