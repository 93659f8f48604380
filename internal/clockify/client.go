// Package clockify provides a client for the Clockify time-tracking API.
package clockify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://api.clockify.me/api/v1"
	requestTimeout = 15 * time.Second
	maxBodySize    = 1 << 20 // 1 MB
	pageSize       = 50
)

// APIError is a non-2xx response from the Clockify API.
type APIError struct {
	Status int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("clockify: HTTP %d: %s", e.Status, statusHint(e.Status))
}

// statusHint maps an HTTP status to a short remedial hint.
func statusHint(code int) string {
	switch code {
	case http.StatusBadRequest:
		return "invalid project ID or request parameters"
	case http.StatusUnauthorized:
		return "check your API key"
	case http.StatusForbidden:
		return "access forbidden - check workspace/project permissions"
	case http.StatusNotFound:
		return "project or workspace not found"
	case http.StatusUnprocessableEntity:
		return "invalid request - check time range and project ID"
	default:
		return "unexpected error"
	}
}

// Client posts time entries and lists projects for one workspace.
type Client struct {
	apiKey      string
	workspaceID string
	baseURL     string
	http        *http.Client
}

// NewClient creates a client for the given workspace. An empty baseURL
// selects the public API. Returns nil if the key or workspace is empty.
func NewClient(apiKey, workspaceID, baseURL string) *Client {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" || workspaceID == "" {
		return nil
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		apiKey:      apiKey,
		workspaceID: workspaceID,
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		http:        &http.Client{},
	}
}

// PostTimeEntry creates a time entry and returns its id.
func (c *Client) PostTimeEntry(ctx context.Context, projectID string, start, end time.Time, description string) (string, error) {
	reqBody := TimeEntryRequest{
		ProjectID:   projectID,
		Start:       start.UTC().Format(time.RFC3339),
		End:         end.UTC().Format(time.RFC3339),
		Description: description,
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("clockify: encoding time entry: %w", err)
	}

	body, err := c.post(ctx, fmt.Sprintf("/workspaces/%s/time-entries", c.workspaceID), payload)
	if err != nil {
		return "", err
	}

	var entry TimeEntryResponse
	if err := json.Unmarshal(body, &entry); err != nil {
		return "", fmt.Errorf("clockify: parsing time entry response: %w", err)
	}
	return entry.ID, nil
}

// Projects lists every project in the workspace, walking pages until a
// short page signals the end.
func (c *Client) Projects(ctx context.Context) ([]Project, error) {
	var all []Project
	for page := 1; ; page++ {
		body, err := c.get(ctx, fmt.Sprintf("/workspaces/%s/projects?page-size=%d&page=%d",
			c.workspaceID, pageSize, page))
		if err != nil {
			return nil, err
		}

		var projects []Project
		if err := json.Unmarshal(body, &projects); err != nil {
			return nil, fmt.Errorf("clockify: parsing projects: %w", err)
		}
		all = append(all, projects...)

		if len(projects) < pageSize {
			return all, nil
		}
	}
}

// post performs an authenticated POST request and returns the response body.
func (c *Client) post(ctx context.Context, path string, payload []byte) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("clockify: creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req)
}

// get performs an authenticated GET request and returns the response body.
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("clockify: creating request: %w", err)
	}

	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "github.com/theirongolddev/cclock/1.0")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("clockify: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{Status: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("clockify: reading response: %w", err)
	}
	return body, nil
}
