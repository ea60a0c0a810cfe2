package jira

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupIssue(t *testing.T) {
	var gotAuth, gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"key":"ABC-123","fields":{"summary":"Fix the thing"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), srv.URL+"/", "", "pat-token")
	issue, err := c.LookupIssue(context.Background(), "ABC-123")
	require.NoError(t, err)

	assert.Equal(t, &Issue{Key: "ABC-123", Summary: "Fix the thing", URL: srv.URL + "/browse/ABC-123"}, issue)
	assert.Equal(t, "Bearer pat-token", gotAuth)
	assert.Equal(t, "/rest/api/2/issue/ABC-123", gotPath)
	assert.Equal(t, "fields=summary", gotQuery)
}

func TestLookupIssueBasicAuth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "me" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"key":"AB-1","fields":{"summary":"s"}}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.Client(), srv.URL, "me", "secret").LookupIssue(context.Background(), "AB-1")
	assert.NoError(t, err)

	_, err = NewClient(srv.Client(), srv.URL, "me", "wrong").LookupIssue(context.Background(), "AB-1")
	assert.Error(t, err)
}

func TestLookupIssueErrors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		notFound bool
	}{
		{"missing issue", http.StatusNotFound, `{"errorMessages":["Issue does not exist"]}`, true},
		{"error body with 200", http.StatusOK, `{"errorMessages":["nope"]}`, false},
		{"field errors", http.StatusBadRequest, `{"errors":{"key":"bad"}}`, false},
		{"not json", http.StatusOK, `<html>login</html>`, false},
		{"empty object", http.StatusOK, `{}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			issue, err := NewClient(srv.Client(), srv.URL, "", "").LookupIssue(context.Background(), "AB-1")
			require.Error(t, err)
			assert.Nil(t, issue)
			assert.Equal(t, tt.notFound, errors.Is(err, ErrIssueNotFound))
		})
	}
}

func TestNotConfigured(t *testing.T) {
	_, err := NewClient(nil, "", "", "").LookupIssue(context.Background(), "AB-1")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestSearchMine(t *testing.T) {
	var payload map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/rest/api/2/search", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		w.Write([]byte(`{"issues":[
			{"key":"AB-2","fields":{"summary":"second","status":{"name":"Open"}}},
			{"key":"AB-1","fields":{"summary":"first","status":{"name":"Done"}}}
		]}`))
	}))
	defer srv.Close()

	hits, err := NewClient(srv.Client(), srv.URL, "", "").SearchMine(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, []SearchHit{
		{Key: "AB-2", Summary: "second", Status: "Open"},
		{Key: "AB-1", Summary: "first", Status: "Done"},
	}, hits)
	assert.Equal(t, "assignee = currentUser() ORDER BY created DESC", payload["jql"])
	assert.Equal(t, float64(10), payload["maxResults"])
}

func TestServerInfo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"baseUrl":"https://jira.example.com","version":"9.12.0","serverTitle":"Jira"}`))
	}))
	defer srv.Close()

	info, err := NewClient(srv.Client(), srv.URL, "", "").ServerInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "9.12.0", info.Version)
	assert.Equal(t, "Jira", info.ServerTitle)
}
