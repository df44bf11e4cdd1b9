// Package tracker defines the outbound ticket service the appender talks to.
package tracker

import (
	"context"
	"fmt"

	"github.com/danielolaszy/jiralog/pkg/models"
)

// Service authenticates against a ticket tracker.
type Service interface {
	// Authenticate opens a session for one event. Sessions are not reused.
	Authenticate(ctx context.Context, username, password string) (Session, error)
}

// Session performs ticket operations on behalf of an authenticated user.
type Session interface {
	// CreateTicket files a new ticket and returns its key.
	CreateTicket(ctx context.Context, draft models.TicketDraft) (string, error)

	// AddComment appends body as a comment on the ticket with the given key.
	AddComment(ctx context.Context, ticketID, body string) error
}

// TransportError reports a failed call to the ticket service: a malformed
// endpoint, a network failure or an error response.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
