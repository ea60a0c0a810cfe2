// Package jira is a small client for the Jira REST API v2.
package jira

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	neturl "net/url"
	"strings"
	"time"
)

var (
	ErrIssueNotFound = errors.New("jira issue not found")
	ErrNotConfigured = errors.New("jira base_url is not configured")
)

// Issue is the tri-field result of an issue lookup.
type Issue struct {
	Key     string
	Summary string
	URL     string
}

// SearchHit is one row of a JQL search.
type SearchHit struct {
	Key     string
	Summary string
	Status  string
}

type ServerInfo struct {
	BaseURL        string `json:"baseUrl"`
	Version        string `json:"version"`
	DeploymentType string `json:"deploymentType"`
	ServerTitle    string `json:"serverTitle"`
}

// Client talks to one Jira server. With a user the token is sent as basic
// auth, without one as a bearer (personal access) token.
type Client struct {
	client  *http.Client
	baseURL string
	user    string
	token   string
}

func NewClient(client *http.Client, baseURL, user, token string) *Client {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		client:  client,
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		user:    strings.TrimSpace(user),
		token:   strings.TrimSpace(token),
	}
}

// BrowseURL is the human-facing page of an issue.
func (c *Client) BrowseURL(key string) string {
	return c.baseURL + "/browse/" + key
}

type apiErrors struct {
	ErrorMessages []string          `json:"errorMessages"`
	Errors        map[string]string `json:"errors"`
}

func (e apiErrors) present() bool {
	return len(e.ErrorMessages) > 0 || len(e.Errors) > 0
}

func (e apiErrors) String() string {
	parts := append([]string{}, e.ErrorMessages...)
	for field, msg := range e.Errors {
		parts = append(parts, field+": "+msg)
	}
	return strings.Join(parts, "; ")
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	if c.baseURL == "" {
		return ErrNotConfigured
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal jira payload: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build jira request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	switch {
	case c.user != "" && c.token != "":
		req.SetBasicAuth(c.user, c.token)
	case c.token != "":
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("jira request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read jira response: %w", err)
	}

	var apiErr apiErrors
	_ = json.Unmarshal(raw, &apiErr)

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrIssueNotFound, apiErr.String())
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("jira %s %s: status %d (%s)", method, path, resp.StatusCode, apiErr.String())
	}
	if apiErr.present() {
		return fmt.Errorf("jira %s %s: %s", method, path, apiErr.String())
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("jira %s %s: response is not JSON: %w", method, path, err)
	}
	return nil
}

// LookupIssue resolves an issue key to its summary and browse URL.
func (c *Client) LookupIssue(ctx context.Context, key string) (*Issue, error) {
	var data struct {
		Key    string `json:"key"`
		Fields struct {
			Summary string `json:"summary"`
		} `json:"fields"`
	}
	path := "/rest/api/2/issue/" + neturl.PathEscape(key) + "?fields=summary"
	if err := c.do(ctx, http.MethodGet, path, nil, &data); err != nil {
		return nil, err
	}
	if data.Key == "" {
		return nil, fmt.Errorf("%w: empty response for %s", ErrIssueNotFound, key)
	}
	return &Issue{
		Key:     data.Key,
		Summary: data.Fields.Summary,
		URL:     c.BrowseURL(data.Key),
	}, nil
}

// SearchMine lists issues assigned to the authenticated user, newest first.
func (c *Client) SearchMine(ctx context.Context, maxResults int) ([]SearchHit, error) {
	body := map[string]any{
		"jql":        "assignee = currentUser() ORDER BY created DESC",
		"maxResults": maxResults,
		"fields":     []string{"key", "summary", "status"},
	}
	var data struct {
		Issues []struct {
			Key    string `json:"key"`
			Fields struct {
				Summary string `json:"summary"`
				Status  struct {
					Name string `json:"name"`
				} `json:"status"`
			} `json:"fields"`
		} `json:"issues"`
	}
	if err := c.do(ctx, http.MethodPost, "/rest/api/2/search", body, &data); err != nil {
		return nil, err
	}

	hits := make([]SearchHit, 0, len(data.Issues))
	for _, issue := range data.Issues {
		hits = append(hits, SearchHit{
			Key:     issue.Key,
			Summary: issue.Fields.Summary,
			Status:  issue.Fields.Status.Name,
		})
	}
	return hits, nil
}

func (c *Client) ServerInfo(ctx context.Context) (*ServerInfo, error) {
	var info ServerInfo
	if err := c.do(ctx, http.MethodGet, "/rest/api/2/serverInfo", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}
