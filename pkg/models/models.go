// Package models defines data structures shared across the application.
package models

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// MaxCauseDepth bounds how many linked causes are followed when walking a
// FailureChain. Real chains are far shorter.
const MaxCauseDepth = 64

// Level is the severity of a log event. Levels are ordered.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

// String returns the upper-case name of the level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelFatal:
		return "FATAL"
	default:
		return fmt.Sprintf("LEVEL(%d)", int(l))
	}
}

// ParseLevel converts a level name to a Level. Unknown names map to LevelInfo.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	case "fatal":
		return LevelFatal
	default:
		return LevelInfo
	}
}

// FromSlog maps an slog level onto a Level.
func FromSlog(l slog.Level) Level {
	switch {
	case l >= slog.LevelError+4:
		return LevelFatal
	case l >= slog.LevelError:
		return LevelError
	case l >= slog.LevelWarn:
		return LevelWarn
	case l >= slog.LevelInfo:
		return LevelInfo
	default:
		return LevelDebug
	}
}

// Frame is one entry in a failure's call trace.
type Frame struct {
	// Unit is the declaring unit, e.g. a package path or a receiver type
	Unit string

	// Operation is the function or method name
	Operation string

	// Location is the source file
	Location string

	// Line is the line number within Location, 0 when unknown
	Line int
}

// String renders the frame as it appears in a trace line, without the
// leading "at".
func (f Frame) String() string {
	loc := f.Location
	if loc == "" {
		loc = "Unknown Source"
	}
	if f.Line > 0 {
		loc = fmt.Sprintf("%s:%d", loc, f.Line)
	}
	if f.Unit == "" {
		return fmt.Sprintf("%s(%s)", f.Operation, loc)
	}
	return fmt.Sprintf("%s.%s(%s)", f.Unit, f.Operation, loc)
}

// FailureChain is a raised failure: its frames, outermost call first, plus
// an optional cause. A nil entry in Frames is a missing frame.
type FailureChain struct {
	// Kind names the failure type, e.g. "*fs.PathError"
	Kind string

	// Message is the human-readable text of the failure
	Message string

	Frames []*Frame

	Cause *FailureChain
}

// Render produces the line-based representation of the chain. Line 0 is
// the summary line of the outermost failure.
func (c *FailureChain) Render() []string {
	if c == nil {
		return nil
	}
	var lines []string
	cur := c
	for depth := 0; cur != nil && depth < MaxCauseDepth; depth++ {
		header := cur.header()
		if depth > 0 {
			header = "Caused by: " + header
		}
		lines = append(lines, header)
		for _, f := range cur.Frames {
			if f == nil {
				continue
			}
			lines = append(lines, "\tat "+f.String())
		}
		cur = cur.Cause
	}
	return lines
}

func (c *FailureChain) header() string {
	switch {
	case c.Kind == "":
		return c.Message
	case c.Message == "":
		return c.Kind
	default:
		return c.Kind + ": " + c.Message
	}
}

// ErrorEvent is a single log event delivered by the host logging framework.
type ErrorEvent struct {
	Time       time.Time
	LoggerName string
	Level      Level
	Message    string

	// Formatted is the host's rendering of the event line, used verbatim in
	// ticket bodies. Empty means the appender renders its own.
	Formatted string

	// Failure is the structured failure attached to the event, if any
	Failure *FailureChain

	// StackLines is a pre-rendered failure representation. When set it is
	// used for ticket bodies, and for fingerprinting if Failure is nil.
	StackLines []string
}

// TicketDraft holds the fields of a ticket to be created.
type TicketDraft struct {
	// Project is the tracker project key (e.g., "OPS" or "owner/repo")
	Project string

	// Summary is the ticket title, bounded by the tracker's field limit
	Summary string

	// Description is the full body text of the ticket
	Description string

	// Assignee is the user the ticket is assigned to, empty for none
	Assignee string

	// Type is the tracker issue type, by id or name
	Type string

	// Labels are attached to the ticket where the tracker supports them
	Labels []string
}
