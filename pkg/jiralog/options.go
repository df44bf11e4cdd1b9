package jiralog

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/danielolaszy/jiralog/internal/appender"
)

// DefaultLoggerName is used when a record carries no "logger" attribute.
const DefaultLoggerName = "root"

type options struct {
	loggerName   string
	level        slog.Leveler
	next         slog.Handler
	registerer   prometheus.Registerer
	async        bool
	asyncOpts    []appender.AsyncOption
	privateCache bool
}

// Option configures a Handler.
type Option func(*options)

// WithLoggerName sets the logger name used in ticket summaries when a record
// has no "logger" attribute. Default: "root".
func WithLoggerName(name string) Option {
	return func(o *options) {
		o.loggerName = name
	}
}

// WithLevel sets the minimum level that is considered for tickets. Levels
// below ERROR are accepted but never produce tickets. Default: slog.LevelError.
func WithLevel(level slog.Leveler) Option {
	return func(o *options) {
		o.level = level
	}
}

// WithNext forwards every record to next as well, so the handler can sit in
// front of the application's normal log output.
func WithNext(next slog.Handler) Option {
	return func(o *options) {
		o.next = next
	}
}

// WithRegisterer exposes appender metrics on reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.registerer = reg
	}
}

// WithAsync hands events to a background goroutine. bufferSize bounds the
// queue; with dropOnFull a full queue drops events instead of blocking the
// logging call.
func WithAsync(bufferSize int, dropOnFull bool) Option {
	return func(o *options) {
		o.async = true
		o.asyncOpts = []appender.AsyncOption{appender.WithBufferSize(bufferSize)}
		if dropOnFull {
			o.asyncOpts = append(o.asyncOpts, appender.WithDropOnFull())
		}
	}
}

// WithPrivateCache gives the handler its own fingerprint cache instead of
// the process-wide one.
func WithPrivateCache() Option {
	return func(o *options) {
		o.privateCache = true
	}
}

func defaultOptions() options {
	return options{
		loggerName: DefaultLoggerName,
		level:      slog.LevelError,
	}
}

func buildOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
