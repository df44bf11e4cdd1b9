package jiralog

import (
	"bytes"
	"context"
	"log/slog"
	"strings"

	"github.com/danielolaszy/jiralog/internal/appender"
	"github.com/danielolaszy/jiralog/internal/stacktrace"
	"github.com/danielolaszy/jiralog/pkg/models"
)

// Handler is a slog.Handler that turns error records into tracker tickets.
type Handler struct {
	sink appender.Sink
	opts options
	next slog.Handler
	goas []groupOrAttrs
}

// groupOrAttrs holds either a group name or a list of attributes, in the
// order they were added.
type groupOrAttrs struct {
	group string
	attrs []slog.Attr
}

// NewHandler creates a Handler delivering to sink.
func NewHandler(sink appender.Sink, opts ...Option) *Handler {
	o := buildOptions(opts)
	return &Handler{
		sink: sink,
		opts: o,
		next: o.next,
	}
}

// Enabled implements slog.Handler.
func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	if level >= h.opts.level.Level() {
		return true
	}
	return h.next != nil && h.next.Enabled(ctx, level)
}

// Handle implements slog.Handler. Ticket filing never fails the call; only
// errors from the next handler are returned.
func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	var err error
	if h.next != nil && h.next.Enabled(ctx, r.Level) {
		err = h.next.Handle(ctx, r)
	}
	if r.Level >= h.opts.level.Level() {
		h.sink.Append(ctx, h.event(ctx, r))
	}
	return err
}

// WithAttrs implements slog.Handler.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	h2 := h.with(groupOrAttrs{attrs: attrs})
	if h2.next != nil {
		h2.next = h2.next.WithAttrs(attrs)
	}
	return h2
}

// WithGroup implements slog.Handler.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := h.with(groupOrAttrs{group: name})
	if h2.next != nil {
		h2.next = h2.next.WithGroup(name)
	}
	return h2
}

func (h *Handler) with(goa groupOrAttrs) *Handler {
	h2 := *h
	h2.goas = make([]groupOrAttrs, len(h.goas)+1)
	copy(h2.goas, h.goas)
	h2.goas[len(h.goas)] = goa
	return &h2
}

// Close flushes and closes the underlying sink. Handlers derived through
// WithAttrs or WithGroup share it.
func (h *Handler) Close() error {
	return h.sink.Close()
}

// event converts a record. Records without an error attribute produce an
// event without a failure, which the sink ignores.
func (h *Handler) event(ctx context.Context, r slog.Record) models.ErrorEvent {
	loggerName, err := h.inspect(r)

	event := models.ErrorEvent{
		Time:       r.Time,
		LoggerName: loggerName,
		Level:      models.FromSlog(r.Level),
		Message:    r.Message,
	}
	if err != nil {
		event.Failure = stacktrace.Capture(err)
		event.Formatted = h.format(ctx, r)
	}
	return event
}

// inspect finds the logger name and the logged error among the handler's
// and the record's attributes. Attributes nested in group values are not
// searched.
func (h *Handler) inspect(r slog.Record) (string, error) {
	loggerName := h.opts.loggerName
	var logged error

	visit := func(a slog.Attr) bool {
		v := a.Value.Resolve()
		switch a.Key {
		case "logger":
			if v.Kind() == slog.KindString && v.String() != "" {
				loggerName = v.String()
			}
		case "error", "err":
			if e, ok := v.Any().(error); ok && logged == nil {
				logged = e
			}
		}
		return true
	}

	for _, goa := range h.goas {
		for _, a := range goa.attrs {
			visit(a)
		}
	}
	r.Attrs(visit)
	return loggerName, logged
}

// format renders the record as a logfmt line, including the handler's
// attributes and groups. The stack is listed separately in ticket bodies, so
// errors are rendered by message only.
func (h *Handler) format(ctx context.Context, r slog.Record) string {
	var buf bytes.Buffer
	var th slog.Handler = slog.NewTextHandler(&buf, &slog.HandlerOptions{
		Level:       slog.LevelDebug,
		ReplaceAttr: errorText,
	})
	for _, goa := range h.goas {
		if goa.group != "" {
			th = th.WithGroup(goa.group)
		} else {
			th = th.WithAttrs(goa.attrs)
		}
	}
	if err := th.Handle(ctx, r); err != nil {
		return r.Message
	}
	return strings.TrimSpace(buf.String())
}

// errorText replaces error values with their message. The text handler
// would otherwise print them with %+v, which includes pkg/errors stacks.
func errorText(groups []string, a slog.Attr) slog.Attr {
	if a.Value.Kind() != slog.KindAny {
		return a
	}
	if err, ok := a.Value.Any().(error); ok {
		return slog.String(a.Key, err.Error())
	}
	return a
}

var _ slog.Handler = (*Handler)(nil)
