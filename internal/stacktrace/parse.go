// Package stacktrace converts failures into models.FailureChain values,
// either from pre-rendered trace text or from Go error chains.
package stacktrace

import (
	"errors"
	"strconv"
	"strings"

	"github.com/danielolaszy/jiralog/pkg/models"
)

const (
	framePrefix      = "at "
	causePrefix      = "Caused by: "
	suppressedPrefix = "Suppressed: "
)

// ErrEmptyTrace is returned by Parse when there is nothing to parse.
var ErrEmptyTrace = errors.New("stacktrace: empty trace")

// Parse reads a rendered trace. Line 0 is the summary line of the outermost
// failure and is never part of the frame list. "Caused by:" lines open a
// linked cause. Elided ("... N more") lines, suppressed blocks and any line
// that is not a frame (including message text that starts with "at ") are
// skipped.
func Parse(lines []string) (*models.FailureChain, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyTrace
	}

	head := &models.FailureChain{}
	head.Kind, head.Message = splitHeader(lines[0])
	cur := head
	depth := 0
	suppressedIndent := -1

	for _, raw := range lines[1:] {
		line := strings.TrimRight(raw, "\r")
		indent := len(line) - len(strings.TrimLeft(line, " \t"))
		text := strings.TrimSpace(line)

		if suppressedIndent >= 0 {
			if indent > suppressedIndent {
				continue
			}
			suppressedIndent = -1
		}

		switch {
		case strings.HasPrefix(text, suppressedPrefix):
			suppressedIndent = indent
		case strings.HasPrefix(text, causePrefix):
			if depth+1 >= models.MaxCauseDepth {
				return head, nil
			}
			next := &models.FailureChain{}
			next.Kind, next.Message = splitHeader(strings.TrimPrefix(text, causePrefix))
			cur.Cause = next
			cur = next
			depth++
		case strings.HasPrefix(text, framePrefix):
			if f, ok := parseFrame(strings.TrimPrefix(text, framePrefix)); ok {
				cur.Frames = append(cur.Frames, f)
			}
		}
	}
	return head, nil
}

// SplitLines splits raw trace text into lines, dropping a trailing empty
// line.
func SplitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

// parseFrame parses "unit.operation(location:line)". Lines without the
// parenthesized location, such as continuation lines of a multi-line
// message that happen to start with "at ", are not frames.
func parseFrame(s string) (*models.Frame, bool) {
	open := strings.LastIndex(s, "(")
	if open <= 0 || !strings.HasSuffix(s, ")") || strings.ContainsAny(s[:open], " \t") {
		return nil, false
	}
	f := &models.Frame{}
	f.Location, f.Line = splitLocation(s[open+1 : len(s)-1])
	f.Unit, f.Operation = splitSymbol(s[:open])
	return f, true
}

func splitLocation(loc string) (string, int) {
	if i := strings.LastIndex(loc, ":"); i >= 0 {
		if n, err := strconv.Atoi(loc[i+1:]); err == nil {
			return loc[:i], n
		}
	}
	if loc == "Unknown Source" {
		return "", 0
	}
	return loc, 0
}

// splitSymbol splits a qualified name at its last dot.
func splitSymbol(symbol string) (string, string) {
	if i := strings.LastIndex(symbol, "."); i >= 0 {
		return symbol[:i], symbol[i+1:]
	}
	return "", symbol
}

// splitHeader splits "Kind: message". A header without a kind-like prefix
// is all message.
func splitHeader(h string) (string, string) {
	i := strings.Index(h, ": ")
	if i <= 0 || strings.ContainsAny(h[:i], " \t") {
		return "", h
	}
	return h[:i], h[i+2:]
}
