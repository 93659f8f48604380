package clockify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestNewClient_RequiresKeyAndWorkspace(t *testing.T) {
	if c := NewClient("", "ws1", ""); c != nil {
		t.Error("NewClient with empty key != nil")
	}
	if c := NewClient("key", "", ""); c != nil {
		t.Error("NewClient with empty workspace != nil")
	}
	if c := NewClient("  ", "ws1", ""); c != nil {
		t.Error("NewClient with blank key != nil")
	}
	if c := NewClient("key", "ws1", ""); c == nil {
		t.Error("NewClient with key and workspace = nil")
	}
}

func TestPostTimeEntry(t *testing.T) {
	var gotReq TimeEntryRequest
	var gotPath, gotKey, gotContentType string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		gotPath = r.URL.Path
		gotKey = r.Header.Get("X-Api-Key")
		gotContentType = r.Header.Get("Content-Type")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decoding body: %v", err)
		}
		fmt.Fprint(w, `{"id":"entry-123","description":"Development"}`)
	}))
	defer srv.Close()

	c := NewClient("api-key", "ws1", srv.URL)
	start := time.Date(2026, 2, 4, 8, 0, 0, 0, time.UTC)
	end := start.Add(4 * time.Hour)

	id, err := c.PostTimeEntry(context.Background(), "proj-1", start, end, "Development")
	if err != nil {
		t.Fatalf("PostTimeEntry: %v", err)
	}

	if id != "entry-123" {
		t.Errorf("id = %q, want entry-123", id)
	}
	if gotPath != "/workspaces/ws1/time-entries" {
		t.Errorf("path = %q", gotPath)
	}
	if gotKey != "api-key" {
		t.Errorf("X-Api-Key = %q", gotKey)
	}
	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %q", gotContentType)
	}
	if gotReq.ProjectID != "proj-1" {
		t.Errorf("projectId = %q, want proj-1", gotReq.ProjectID)
	}
	if gotReq.Start != "2026-02-04T08:00:00Z" {
		t.Errorf("start = %q, want 2026-02-04T08:00:00Z", gotReq.Start)
	}
	if gotReq.End != "2026-02-04T12:00:00Z" {
		t.Errorf("end = %q, want 2026-02-04T12:00:00Z", gotReq.End)
	}
	if gotReq.Description != "Development" {
		t.Errorf("description = %q, want Development", gotReq.Description)
	}
}

func TestPostTimeEntry_StatusHints(t *testing.T) {
	tests := []struct {
		status int
		hint   string
	}{
		{http.StatusBadRequest, "invalid project ID"},
		{http.StatusUnauthorized, "check your API key"},
		{http.StatusForbidden, "access forbidden"},
		{http.StatusNotFound, "not found"},
		{http.StatusUnprocessableEntity, "check time range"},
		{http.StatusInternalServerError, "unexpected error"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			c := NewClient("api-key", "ws1", srv.URL)
			_, err := c.PostTimeEntry(context.Background(), "proj-1", time.Now(), time.Now(), "x")
			if err == nil {
				t.Fatalf("PostTimeEntry with %d: nil error", tt.status)
			}

			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("error %v is not an APIError", err)
			}
			if apiErr.Status != tt.status {
				t.Errorf("Status = %d, want %d", apiErr.Status, tt.status)
			}
			if !strings.Contains(err.Error(), tt.hint) {
				t.Errorf("error %q does not mention %q", err.Error(), tt.hint)
			}
		})
	}
}

func TestProjects_Pagination(t *testing.T) {
	var pages []string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/workspaces/ws1/projects" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("page-size"); got != "50" {
			t.Errorf("page-size = %q, want 50", got)
		}
		page := r.URL.Query().Get("page")
		pages = append(pages, page)

		count := 50 // full first page
		if page == "2" {
			count = 2 // short page ends pagination
		}
		projects := make([]Project, count)
		for i := range projects {
			projects[i] = Project{
				ID:   fmt.Sprintf("p%s-%d", page, i),
				Name: fmt.Sprintf("Project %s-%d", page, i),
			}
		}
		_ = json.NewEncoder(w).Encode(projects)
	}))
	defer srv.Close()

	c := NewClient("api-key", "ws1", srv.URL)
	projects, err := c.Projects(context.Background())
	if err != nil {
		t.Fatalf("Projects: %v", err)
	}

	if len(projects) != 52 {
		t.Errorf("got %d projects, want 52", len(projects))
	}
	if len(pages) != 2 || pages[0] != "1" || pages[1] != "2" {
		t.Errorf("pages requested = %v, want [1 2]", pages)
	}
}

func TestProjects_SingleShortPage(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		_ = json.NewEncoder(w).Encode([]Project{{ID: "p1", Name: "Only"}})
	}))
	defer srv.Close()

	c := NewClient("api-key", "ws1", srv.URL)
	projects, err := c.Projects(context.Background())
	if err != nil {
		t.Fatalf("Projects: %v", err)
	}
	if len(projects) != 1 {
		t.Errorf("got %d projects, want 1", len(projects))
	}
	if calls != 1 {
		t.Errorf("server called %d times, want 1", calls)
	}
}
