// Package github files appender tickets as GitHub issues.
//
// The tracker settings are reused as-is: the password is a personal access
// token and the project is "owner/repo". Ticket ids are issue references of
// the form "owner/repo#number".
package github

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/go-github/v41/github"
	"golang.org/x/oauth2"

	"github.com/danielolaszy/jiralog/internal/logging"
	"github.com/danielolaszy/jiralog/internal/tracker"
	"github.com/danielolaszy/jiralog/pkg/models"
)

// Client creates authenticated GitHub API sessions.
type Client struct {
	apiURL  string
	timeout time.Duration
}

// NewClient creates a new GitHub client. endpoint may be empty (github.com),
// a GitHub Enterprise domain, or a full API URL.
func NewClient(endpoint string, timeout time.Duration) *Client {
	return &Client{
		apiURL:  apiURL(endpoint),
		timeout: timeout,
	}
}

// apiURL converts a domain to the REST API base URL.
func apiURL(endpoint string) string {
	switch {
	case endpoint == "" || endpoint == "github.com":
		return "https://api.github.com/"
	case strings.Contains(endpoint, "://"):
		if !strings.HasSuffix(endpoint, "/") {
			endpoint += "/"
		}
		return endpoint
	default:
		return fmt.Sprintf("https://%s/api/v3/", endpoint)
	}
}

// Authenticate builds a token-authenticated API client. The username is only
// logged.
func (c *Client) Authenticate(ctx context.Context, username, password string) (tracker.Session, error) {
	parsedURL, err := url.Parse(c.apiURL)
	if err != nil {
		return nil, &tracker.TransportError{
			Op:  "authenticate",
			Err: fmt.Errorf("invalid github api url: %w", err),
		}
	}

	// Create the oauth2 client
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: password},
	)
	tc := oauth2.NewClient(context.Background(), ts)
	tc.Timeout = c.timeout

	client := github.NewClient(tc)
	client.BaseURL = parsedURL
	client.UploadURL = parsedURL

	logging.Debug("created github client",
		"api_url", c.apiURL,
		"username", username,
		"token", logging.MaskSensitive(password))

	return &session{client: client}, nil
}

type session struct {
	client *github.Client
}

// CreateTicket opens an issue in the "owner/repo" named by draft.Project and
// returns its reference.
func (s *session) CreateTicket(ctx context.Context, draft models.TicketDraft) (string, error) {
	owner, repo, err := splitRepository(draft.Project)
	if err != nil {
		return "", err
	}

	req := &github.IssueRequest{
		Title: github.String(draft.Summary),
		Body:  github.String(draft.Description),
	}
	if len(draft.Labels) > 0 {
		labels := append([]string(nil), draft.Labels...)
		req.Labels = &labels
	}
	if draft.Assignee != "" {
		req.Assignee = github.String(draft.Assignee)
	}

	issue, resp, err := s.client.Issues.Create(ctx, owner, repo, req)
	if err != nil {
		return "", fmt.Errorf("failed to create issue in %s: %w (status: %d)", draft.Project, err, statusCode(resp))
	}

	return fmt.Sprintf("%s/%s#%d", owner, repo, issue.GetNumber()), nil
}

// AddComment comments on the issue referenced by ticketID.
func (s *session) AddComment(ctx context.Context, ticketID, body string) error {
	owner, repo, number, err := parseReference(ticketID)
	if err != nil {
		return err
	}

	comment := &github.IssueComment{Body: github.String(body)}
	_, resp, err := s.client.Issues.CreateComment(ctx, owner, repo, number, comment)
	if err != nil {
		return fmt.Errorf("failed to comment on issue %s: %w (status: %d)", ticketID, err, statusCode(resp))
	}
	return nil
}

// parseReference parses "owner/repo#number".
func parseReference(ref string) (string, string, int, error) {
	repository, num, ok := strings.Cut(ref, "#")
	if !ok {
		return "", "", 0, fmt.Errorf("invalid issue reference: %s, expected format: owner/repo#number", ref)
	}
	owner, repo, err := splitRepository(repository)
	if err != nil {
		return "", "", 0, err
	}
	number, err := strconv.Atoi(num)
	if err != nil || number <= 0 {
		return "", "", 0, fmt.Errorf("invalid issue number in reference %s", ref)
	}
	return owner, repo, number, nil
}

// splitRepository parses "owner/repo".
func splitRepository(repository string) (string, string, error) {
	parts := strings.Split(repository, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repository format: %s, expected format: owner/repo", repository)
	}
	return parts[0], parts[1], nil
}

func statusCode(resp *github.Response) int {
	if resp == nil || resp.Response == nil {
		return 0
	}
	return resp.StatusCode
}

var _ tracker.Service = (*Client)(nil)
