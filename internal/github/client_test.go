package github

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielolaszy/jiralog/pkg/models"
)

func TestAPIURL(t *testing.T) {
	testCases := []struct {
		name           string
		endpoint       string
		expectedAPIURL string
	}{
		{name: "Default GitHub.com", endpoint: "github.com", expectedAPIURL: "https://api.github.com/"},
		{name: "Empty endpoint defaults to github.com", endpoint: "", expectedAPIURL: "https://api.github.com/"},
		{name: "GitHub Enterprise", endpoint: "github.example.com", expectedAPIURL: "https://github.example.com/api/v3/"},
		{name: "Full URL", endpoint: "http://127.0.0.1:8080", expectedAPIURL: "http://127.0.0.1:8080/"},
		{name: "Full URL with slash", endpoint: "https://ghe.local/api/v3/", expectedAPIURL: "https://ghe.local/api/v3/"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expectedAPIURL, apiURL(tc.endpoint))
		})
	}
}

func TestParseReference(t *testing.T) {
	testCases := []struct {
		name    string
		ref     string
		owner   string
		repo    string
		number  int
		wantErr bool
	}{
		{name: "Valid reference", ref: "acme/shop#42", owner: "acme", repo: "shop", number: 42},
		{name: "Missing number", ref: "acme/shop", wantErr: true},
		{name: "Bad number", ref: "acme/shop#x", wantErr: true},
		{name: "Zero number", ref: "acme/shop#0", wantErr: true},
		{name: "Missing owner", ref: "shop#42", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			owner, repo, number, err := parseReference(tc.ref)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.owner, owner)
			assert.Equal(t, tc.repo, repo)
			assert.Equal(t, tc.number, number)
		})
	}
}

func TestCreateTicketAndComment(t *testing.T) {
	var issue map[string]any
	var comment map[string]any
	var auth string

	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/shop/issues", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&issue))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"number":42,"title":"x"}`))
	})
	mux.HandleFunc("/repos/acme/shop/issues/42/comments", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&comment))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":1}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	session, err := NewClient(server.URL, time.Second).Authenticate(context.Background(), "bot", "ghp_token")
	require.NoError(t, err)

	ref, err := session.CreateTicket(context.Background(), models.TicketDraft{
		Project:     "acme/shop",
		Summary:     "(Auto-generated) orders:payment failed",
		Description: "body",
		Assignee:    "oncall",
		Labels:      []string{"prod"},
	})
	require.NoError(t, err)
	assert.Equal(t, "acme/shop#42", ref)
	assert.Equal(t, "Bearer ghp_token", auth)
	assert.Equal(t, "(Auto-generated) orders:payment failed", issue["title"])
	assert.Equal(t, "body", issue["body"])
	assert.Equal(t, "oncall", issue["assignee"])
	assert.Equal(t, []any{"prod"}, issue["labels"])

	require.NoError(t, session.AddComment(context.Background(), ref, "seen again"))
	assert.Equal(t, "seen again", comment["body"])
}

func TestCreateTicketInvalidRepository(t *testing.T) {
	session, err := NewClient("", time.Second).Authenticate(context.Background(), "bot", "ghp_token")
	require.NoError(t, err)

	_, err = session.CreateTicket(context.Background(), models.TicketDraft{Project: "OPS"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "owner/repo")
}

func TestCreateTicketErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Bad credentials"}`))
	}))
	defer server.Close()

	session, err := NewClient(server.URL, time.Second).Authenticate(context.Background(), "bot", "bad")
	require.NoError(t, err)

	_, err = session.CreateTicket(context.Background(), models.TicketDraft{Project: "acme/shop", Summary: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status: 401")
}
