// Package jira files appender tickets in a JIRA project through the REST API.
package jira

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	jira "github.com/andygrunwald/go-jira"
	"github.com/trivago/tgo/tcontainer"

	"github.com/danielolaszy/jiralog/internal/logging"
	"github.com/danielolaszy/jiralog/internal/tracker"
	"github.com/danielolaszy/jiralog/pkg/models"
)

// Client handles interactions with the JIRA API
type Client struct {
	baseURL string
	timeout time.Duration
}

// NewClient creates a new JIRA client for the instance at baseURL. The
// timeout bounds each HTTP request; zero means no bound.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		timeout: timeout,
	}
}

// Authenticate builds a basic-auth API client. No request is made, so bad
// credentials surface on the first ticket call.
func (c *Client) Authenticate(ctx context.Context, username, password string) (tracker.Session, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		if err == nil {
			err = errors.New("missing scheme or host")
		}
		return nil, &tracker.TransportError{
			Op:  "authenticate",
			Err: fmt.Errorf("malformed JIRA URL %q: %w", c.baseURL, err),
		}
	}

	// Create JIRA authentication transport
	tp := jira.BasicAuthTransport{
		Username: username,
		Password: password,
	}
	httpClient := tp.Client()
	httpClient.Timeout = c.timeout

	client, err := jira.NewClient(httpClient, c.baseURL)
	if err != nil {
		return nil, &tracker.TransportError{Op: "authenticate", Err: err}
	}

	logging.Debug("created JIRA client", "url", c.baseURL, "username", username)
	return &session{client: client}, nil
}

type session struct {
	client *jira.Client
}

// CreateTicket creates a JIRA issue from the draft and returns its key.
func (s *session) CreateTicket(ctx context.Context, draft models.TicketDraft) (string, error) {
	issueFields := &jira.IssueFields{
		Project: jira.Project{
			Key: draft.Project,
		},
		Summary:     draft.Summary,
		Description: draft.Description,
		Type:        issueType(draft.Type),
		Labels:      draft.Labels,
	}
	if draft.Assignee != "" {
		// jira.User maps every field, including Password, into the payload.
		issueFields.Unknowns = tcontainer.MarshalMap{
			"assignee": map[string]string{"name": draft.Assignee},
		}
	}

	newIssue, resp, err := s.client.Issue.CreateWithContext(ctx, &jira.Issue{Fields: issueFields})
	if err != nil {
		return "", fmt.Errorf("failed to create JIRA ticket: %w (status: %d)", err, statusCode(resp))
	}

	return newIssue.Key, nil
}

// AddComment appends a comment to the issue with the given key.
func (s *session) AddComment(ctx context.Context, ticketID, body string) error {
	_, resp, err := s.client.Issue.AddCommentWithContext(ctx, ticketID, &jira.Comment{Body: body})
	if err != nil {
		return fmt.Errorf("failed to comment on JIRA ticket %s: %w (status: %d)", ticketID, err, statusCode(resp))
	}
	return nil
}

// issueType maps the configured type to an issue type reference: numeric
// values are ids, anything else a name.
func issueType(t string) jira.IssueType {
	if _, err := strconv.Atoi(t); err == nil {
		return jira.IssueType{ID: t}
	}
	return jira.IssueType{Name: t}
}

// statusCode tolerates the nil response go-jira returns on transport errors.
func statusCode(resp *jira.Response) int {
	if resp == nil || resp.Response == nil {
		return 0
	}
	return resp.StatusCode
}

var _ tracker.Service = (*Client)(nil)
