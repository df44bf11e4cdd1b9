// Package appender turns error-level log events into tracker tickets.
//
// The first occurrence of a failure creates a ticket; later occurrences with
// the same fingerprint add a comment to that ticket. The fingerprint -> ticket
// mapping lives in a cache.Cache owned by the caller.
package appender

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/danielolaszy/jiralog/internal/cache"
	"github.com/danielolaszy/jiralog/internal/config"
	"github.com/danielolaszy/jiralog/internal/fingerprint"
	"github.com/danielolaszy/jiralog/internal/logging"
	"github.com/danielolaszy/jiralog/internal/metrics"
	"github.com/danielolaszy/jiralog/internal/stacktrace"
	"github.com/danielolaszy/jiralog/internal/tracker"
	"github.com/danielolaszy/jiralog/pkg/models"
)

// Outcome is the result of processing one event.
type Outcome int

const (
	// OutcomeIgnored: below ERROR, or no failure with a real stack.
	OutcomeIgnored Outcome = iota
	// OutcomeUnconfigured: credentials are missing, nothing was sent.
	OutcomeUnconfigured
	// OutcomeCreated: a new ticket was filed.
	OutcomeCreated
	// OutcomeCommented: a comment was added to the cached ticket.
	OutcomeCommented
	// OutcomeDropped: the ticket service call failed.
	OutcomeDropped
	// OutcomeQueued: accepted for asynchronous processing.
	OutcomeQueued
)

func (o Outcome) String() string {
	switch o {
	case OutcomeIgnored:
		return "ignored"
	case OutcomeUnconfigured:
		return "unconfigured"
	case OutcomeCreated:
		return "created"
	case OutcomeCommented:
		return "commented"
	case OutcomeDropped:
		return "dropped"
	case OutcomeQueued:
		return "queued"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// ErrUnconfigured is logged when an event arrives without credentials.
var ErrUnconfigured = errors.New("missing authentication details: set JIRA_USERNAME and JIRA_PASSWORD")

// Sink receives error events from a host logging framework.
type Sink interface {
	Append(ctx context.Context, event models.ErrorEvent) Outcome
	Close() error
}

// Option configures an Appender.
type Option func(*Appender)

// WithMetrics records outcomes and call latencies.
func WithMetrics(m *metrics.Metrics) Option {
	return func(a *Appender) { a.metrics = m }
}

// WithTimeout bounds each ticket service call. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(a *Appender) { a.timeout = d }
}

// Appender files or updates tickets for error events. Safe for concurrent
// use.
type Appender struct {
	cfg     config.JiraConfig
	service tracker.Service
	cache   *cache.Cache
	metrics *metrics.Metrics
	timeout time.Duration
}

// New creates an Appender. Appenders that share c share deduplication.
func New(cfg config.JiraConfig, service tracker.Service, c *cache.Cache, opts ...Option) *Appender {
	if c == nil {
		c = cache.New(cache.DefaultCapacity, cache.DefaultIdleExpiry)
	}
	if cfg.IssueType == "" {
		cfg.IssueType = "1"
	}
	a := &Appender{
		cfg:     cfg,
		service: service,
		cache:   c,
		timeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Append processes one event. It never panics and never reports failures to
// the caller; failures are logged and the event is dropped. Cancellation of
// ctx is ignored; values are kept.
func (a *Appender) Append(ctx context.Context, event models.ErrorEvent) (outcome Outcome) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error("recovered while processing event",
				"panic", r,
				"logger", event.LoggerName)
			outcome = OutcomeDropped
		}
		a.metrics.RecordOutcome(outcome.String())
	}()

	if event.Level < models.LevelError {
		return OutcomeIgnored
	}

	lines := event.StackLines
	if lines == nil {
		lines = event.Failure.Render()
	}
	if len(lines) <= 1 {
		logging.Debug("ignoring event without a stack trace", "logger", event.LoggerName)
		return OutcomeIgnored
	}

	if !a.cfg.HasCredentials() {
		logging.Warn("cannot file ticket",
			"error", ErrUnconfigured,
			"project", a.cfg.ProjectKey,
			"username", logging.MaskSensitive(a.cfg.Username))
		return OutcomeUnconfigured
	}

	chain := event.Failure
	if chain == nil {
		parsed, err := stacktrace.Parse(lines)
		if err != nil {
			logging.Error("failed to parse stack trace", "error", err, "logger", event.LoggerName)
			return OutcomeDropped
		}
		chain = parsed
	}
	fp := fingerprint.MustCompute(chain)

	log := logging.GetLogger().With(
		"event_id", uuid.NewString(),
		"fingerprint", fp,
		"project", a.cfg.ProjectKey)

	// A cancelled logging context must not drop the ticket; calls are
	// bounded by the appender's own timeout instead.
	ctx = context.WithoutCancel(ctx)

	formatted := event.Formatted
	if formatted == "" {
		formatted = DefaultLayout(event)
	}

	var session tracker.Session
	err := a.call(ctx, "authenticate", func(ctx context.Context) error {
		log.Debug("authenticating", "username", a.cfg.Username)
		s, err := a.service.Authenticate(ctx, a.cfg.Username, a.cfg.Password)
		session = s
		return err
	})
	if err != nil {
		log.Error("failed to create or update ticket", "error", err)
		return OutcomeDropped
	}

	unlock := a.cache.Lock(fp)
	defer unlock()

	if key, ok := a.cache.Get(fp); ok {
		return a.comment(ctx, log, session, key, formatted, lines)
	}
	return a.create(ctx, log, session, fp, event, formatted, lines)
}

// create files a new ticket and remembers it. Caller holds the lock for fp.
func (a *Appender) create(ctx context.Context, log *slog.Logger, session tracker.Session, fp int32, event models.ErrorEvent, formatted string, lines []string) Outcome {
	draft := models.TicketDraft{
		Project:     a.cfg.ProjectKey,
		Summary:     BuildSummary(event.LoggerName, event.Message, a.cfg.Label),
		Description: BuildBody(formatted, lines, false),
		Assignee:    a.cfg.Assignee,
		Type:        a.cfg.IssueType,
	}
	if label := a.cfg.Label; label != "" {
		draft.Labels = []string{label}
	}

	log.Debug("creating ticket", "summary", draft.Summary)

	var key string
	err := a.call(ctx, "create", func(ctx context.Context) error {
		k, err := session.CreateTicket(ctx, draft)
		if err == nil && k == "" {
			err = errors.New("tracker returned an empty ticket key")
		}
		key = k
		return err
	})
	if err != nil {
		log.Error("failed to create or update ticket", "error", err)
		return OutcomeDropped
	}

	a.cache.Put(fp, key)
	log.Info("created ticket", "ticket", key)
	return OutcomeCreated
}

// comment adds a comment to an existing ticket. Caller holds the lock for
// the ticket's fingerprint.
func (a *Appender) comment(ctx context.Context, log *slog.Logger, session tracker.Session, key, formatted string, lines []string) Outcome {
	body := BuildBody(formatted, lines, true)

	err := a.call(ctx, "comment", func(ctx context.Context) error {
		return session.AddComment(ctx, key, body)
	})
	if err != nil {
		log.Error("failed to create or update ticket", "error", err, "ticket", key)
		return OutcomeDropped
	}

	log.Info("updated ticket", "ticket", key)
	return OutcomeCommented
}

// call runs one ticket service operation under the configured timeout.
func (a *Appender) call(ctx context.Context, op string, fn func(context.Context) error) error {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	start := time.Now()
	err := fn(ctx)
	a.metrics.ObserveCall(op, time.Since(start), err)

	if err == nil {
		return nil
	}
	var te *tracker.TransportError
	if errors.As(err, &te) {
		return err
	}
	return &tracker.TransportError{Op: op, Err: err}
}

// Close drops every cached fingerprint. A restarted appender treats every
// failure as new.
func (a *Appender) Close() error {
	a.cache.Clear()
	logging.Debug("cleared fingerprint cache")
	return nil
}
