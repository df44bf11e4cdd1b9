package appender

import (
	"fmt"
	"strings"
	"time"

	"github.com/danielolaszy/jiralog/pkg/models"
)

const (
	// MaxSummaryLength is the summary field limit of the ticket tracker.
	MaxSummaryLength = 254

	truncationMarker = " ..."

	bodyPreamble = "The following was logged by the application:\n"
	codeMarker   = "{code}"
	omittedNote  = "\n...\n(Stacktrace omitted as it is identical to the one in the description of this issue).\n"
)

// BuildSummary builds a ticket title from the logger name, the logged
// message and an optional label. Titles over MaxSummaryLength characters are
// cut to MaxSummaryLength-4 characters followed by " ...".
func BuildSummary(loggerName, message, label string) string {
	var b strings.Builder
	if strings.TrimSpace(label) != "" {
		b.WriteString("(Auto-generated, labelled '")
		b.WriteString(label)
		b.WriteString("') ")
	} else {
		b.WriteString("(Auto-generated) ")
	}
	b.WriteString(loggerName)
	b.WriteString(":")
	b.WriteString(message)

	summary := []rune(b.String())
	if len(summary) <= MaxSummaryLength {
		return string(summary)
	}
	return string(summary[:MaxSummaryLength-len(truncationMarker)]) + truncationMarker
}

// BuildBody builds a ticket description or comment. New tickets list every
// line of the failure; comments on an existing ticket replace the listing
// with a note.
func BuildBody(formatted string, frameLines []string, skipFrames bool) string {
	var b strings.Builder
	b.WriteString(bodyPreamble)
	b.WriteString(codeMarker)
	b.WriteString("\n")
	b.WriteString(strings.TrimSpace(formatted))

	if skipFrames {
		b.WriteString(omittedNote)
	} else {
		for _, line := range frameLines {
			b.WriteString("\n")
			b.WriteString(line)
		}
	}

	b.WriteString(codeMarker)
	b.WriteString("\n")
	return b.String()
}

// DefaultLayout renders an event line when the host did not supply one.
func DefaultLayout(event models.ErrorEvent) string {
	line := fmt.Sprintf("%-5s %s - %s", event.Level, event.LoggerName, event.Message)
	if event.Time.IsZero() {
		return line
	}
	return event.Time.Format(time.RFC3339) + " " + line
}
