package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/theirongolddev/cclock/internal/ledger"
)

func userLine(ts, cwd string) string {
	return fmt.Sprintf(`{"type":"user","timestamp":"%s","cwd":"%s","message":{"role":"user","content":[{"type":"text","text":"hi"}]}}`, ts, cwd)
}

func assistantLine(ts, cwd string, in, out int) string {
	return fmt.Sprintf(`{"type":"assistant","timestamp":"%s","cwd":"%s","message":{"role":"assistant","usage":{"input_tokens":%d,"output_tokens":%d}}}`, ts, cwd, in, out)
}

func writeTranscript(t *testing.T, dir, project, name string, lines ...string) string {
	t.Helper()
	projDir := filepath.Join(dir, project)
	if err := os.MkdirAll(projDir, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(projDir, name)
	var data []byte
	for _, l := range lines {
		data = append(data, l...)
		data = append(data, '\n')
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func openStore(t *testing.T) *ledger.Store {
	t.Helper()
	store, err := ledger.Open(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRefresh_ParsesAndStores(t *testing.T) {
	dir := t.TempDir()
	writeTranscript(t, dir, "proj-a", "one.jsonl",
		userLine("2026-02-03T10:00:00Z", "/work/alpha"),
		assistantLine("2026-02-03T10:01:00Z", "/work/alpha", 100, 50),
	)
	writeTranscript(t, dir, "proj-b", "two.jsonl",
		userLine("2026-02-03T14:00:00Z", "/work/beta"),
		assistantLine("2026-02-03T14:02:00Z", "/work/beta", 200, 80),
	)

	store := openStore(t)
	res, err := Refresh(store, RefreshOptions{
		ProjectsDir:   dir,
		IdleThreshold: 15 * time.Minute,
		ManifestPath:  filepath.Join(t.TempDir(), "scan.json"),
	})
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if res.TotalFiles != 2 || res.Parsed != 2 || res.Upserted != 2 || res.CacheHits != 0 {
		t.Errorf("result = %+v, want 2 parsed, 2 upserted, 0 cache hits", res)
	}
	if res.ProjectCount != 2 {
		t.Errorf("ProjectCount = %d, want 2", res.ProjectCount)
	}

	sessions, err := store.LoadAllSessions()
	if err != nil {
		t.Fatalf("LoadAllSessions() error = %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("len(sessions) = %d, want 2", len(sessions))
	}
	if sessions[0].Project != "/work/alpha" {
		t.Errorf("sessions[0].Project = %q, want %q", sessions[0].Project, "/work/alpha")
	}
	if sessions[0].Duration != time.Minute {
		t.Errorf("sessions[0].Duration = %v, want 1m", sessions[0].Duration)
	}
	if sessions[0].Tokens.InputTokens != 100 || sessions[0].Tokens.OutputTokens != 50 {
		t.Errorf("sessions[0].Tokens = %+v, want 100 in, 50 out", sessions[0].Tokens)
	}
}

func TestRefresh_SecondRunHitsCache(t *testing.T) {
	dir := t.TempDir()
	writeTranscript(t, dir, "proj-a", "one.jsonl",
		userLine("2026-02-03T10:00:00Z", "/work/alpha"),
		assistantLine("2026-02-03T10:01:00Z", "/work/alpha", 100, 50),
	)
	writeTranscript(t, dir, "proj-a", "two.jsonl",
		userLine("2026-02-03T12:00:00Z", "/work/alpha"),
	)

	store := openStore(t)
	manifestPath := filepath.Join(t.TempDir(), "scan.json")
	opts := RefreshOptions{ProjectsDir: dir, IdleThreshold: 15 * time.Minute, ManifestPath: manifestPath}

	if _, err := Refresh(store, opts); err != nil {
		t.Fatalf("first Refresh() error = %v", err)
	}
	res, err := Refresh(store, opts)
	if err != nil {
		t.Fatalf("second Refresh() error = %v", err)
	}
	if res.CacheHits != 2 || res.Parsed != 0 || res.Upserted != 0 {
		t.Errorf("second run = %+v, want 2 cache hits and nothing parsed", res)
	}

	count, err := store.SessionCount()
	if err != nil {
		t.Fatalf("SessionCount() error = %v", err)
	}
	if count != 2 {
		t.Errorf("SessionCount() = %d, want 2", count)
	}
}

func TestRefresh_ReparsesChangedFile(t *testing.T) {
	dir := t.TempDir()
	writeTranscript(t, dir, "proj-a", "one.jsonl",
		userLine("2026-02-03T10:00:00Z", "/work/alpha"),
		assistantLine("2026-02-03T10:01:00Z", "/work/alpha", 100, 50),
	)
	writeTranscript(t, dir, "proj-a", "two.jsonl",
		userLine("2026-02-03T12:00:00Z", "/work/alpha"),
		assistantLine("2026-02-03T12:01:00Z", "/work/alpha", 10, 5),
	)

	store := openStore(t)
	manifestPath := filepath.Join(t.TempDir(), "scan.json")
	opts := RefreshOptions{ProjectsDir: dir, IdleThreshold: 15 * time.Minute, ManifestPath: manifestPath}

	if _, err := Refresh(store, opts); err != nil {
		t.Fatalf("first Refresh() error = %v", err)
	}

	// The transcript grows; the stored session converges on the new state.
	writeTranscript(t, dir, "proj-a", "one.jsonl",
		userLine("2026-02-03T10:00:00Z", "/work/alpha"),
		assistantLine("2026-02-03T10:01:00Z", "/work/alpha", 100, 50),
		assistantLine("2026-02-03T10:05:00Z", "/work/alpha", 300, 20),
	)

	res, err := Refresh(store, opts)
	if err != nil {
		t.Fatalf("second Refresh() error = %v", err)
	}
	if res.CacheHits != 1 || res.Parsed != 1 || res.Upserted != 1 {
		t.Errorf("second run = %+v, want 1 cache hit, 1 parsed, 1 upserted", res)
	}

	sessions, err := store.LoadAllSessions()
	if err != nil {
		t.Fatalf("LoadAllSessions() error = %v", err)
	}
	rel := filepath.Join("proj-a", "one.jsonl")
	for _, s := range sessions {
		if s.SourcePath != rel {
			continue
		}
		if s.Tokens.InputTokens != 400 {
			t.Errorf("InputTokens = %d, want 400", s.Tokens.InputTokens)
		}
		if s.Duration != 5*time.Minute {
			t.Errorf("Duration = %v, want 5m", s.Duration)
		}
		return
	}
	t.Fatalf("no session stored for %s", rel)
}

func TestRefresh_IdentityIsRelative(t *testing.T) {
	dir := t.TempDir()
	writeTranscript(t, dir, "proj-a", "one.jsonl",
		userLine("2026-02-03T10:00:00Z", "/work/alpha"),
		assistantLine("2026-02-03T10:01:00Z", "/work/alpha", 100, 50),
	)

	store := openStore(t)
	if _, err := Refresh(store, RefreshOptions{ProjectsDir: dir, IdleThreshold: 15 * time.Minute}); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	sessions, err := store.LoadAllSessions()
	if err != nil {
		t.Fatalf("LoadAllSessions() error = %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("len(sessions) = %d, want 1", len(sessions))
	}
	if want := filepath.Join("proj-a", "one.jsonl"); sessions[0].SourcePath != want {
		t.Errorf("SourcePath = %q, want %q", sessions[0].SourcePath, want)
	}
	if filepath.IsAbs(sessions[0].SourcePath) {
		t.Errorf("SourcePath = %q is absolute; identity must not depend on the projects dir location", sessions[0].SourcePath)
	}

	// Reaching the same transcripts through a different root spelling must
	// not create a second row for the same file.
	link := filepath.Join(t.TempDir(), "claude-link")
	if err := os.Symlink(dir, link); err != nil {
		t.Skipf("symlink not supported: %v", err)
	}
	if _, err := Refresh(store, RefreshOptions{ProjectsDir: link, IdleThreshold: 15 * time.Minute}); err != nil {
		t.Fatalf("Refresh() via symlink error = %v", err)
	}

	count, err := store.SessionCount()
	if err != nil {
		t.Fatalf("SessionCount() error = %v", err)
	}
	if count != 1 {
		t.Errorf("SessionCount() after symlinked rescan = %d, want 1", count)
	}
}

func TestRefresh_NoManifestReparsesAll(t *testing.T) {
	dir := t.TempDir()
	writeTranscript(t, dir, "proj-a", "one.jsonl",
		userLine("2026-02-03T10:00:00Z", "/work/alpha"),
	)

	store := openStore(t)
	opts := RefreshOptions{ProjectsDir: dir, IdleThreshold: 15 * time.Minute}

	if _, err := Refresh(store, opts); err != nil {
		t.Fatalf("first Refresh() error = %v", err)
	}
	res, err := Refresh(store, opts)
	if err != nil {
		t.Fatalf("second Refresh() error = %v", err)
	}
	if res.CacheHits != 0 || res.Parsed != 1 {
		t.Errorf("second run = %+v, want everything reparsed", res)
	}
}

func TestRefresh_EventlessFileNotStored(t *testing.T) {
	dir := t.TempDir()
	writeTranscript(t, dir, "proj-a", "empty.jsonl",
		`{"type":"queue-operation","operation":"dequeue","timestamp":"2026-02-03T09:00:00Z"}`,
	)

	store := openStore(t)
	res, err := Refresh(store, RefreshOptions{ProjectsDir: dir, IdleThreshold: 15 * time.Minute})
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if res.Parsed != 1 || res.Upserted != 0 {
		t.Errorf("result = %+v, want 1 parsed, 0 upserted", res)
	}

	count, err := store.SessionCount()
	if err != nil {
		t.Fatalf("SessionCount() error = %v", err)
	}
	if count != 0 {
		t.Errorf("SessionCount() = %d, want 0", count)
	}
}

func TestRefresh_MissingDir(t *testing.T) {
	store := openStore(t)
	res, err := Refresh(store, RefreshOptions{
		ProjectsDir:   filepath.Join(t.TempDir(), "nope"),
		IdleThreshold: 15 * time.Minute,
	})
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if res.TotalFiles != 0 {
		t.Errorf("TotalFiles = %d, want 0", res.TotalFiles)
	}
}

func TestRefresh_ReportsProgress(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 3; i++ {
		writeTranscript(t, dir, "proj-a", fmt.Sprintf("s%d.jsonl", i),
			userLine("2026-02-03T10:00:00Z", "/work/alpha"),
		)
	}

	store := openStore(t)
	var mu sync.Mutex
	var last int
	_, err := Refresh(store, RefreshOptions{
		ProjectsDir:   dir,
		IdleThreshold: 15 * time.Minute,
		Progress: func(current, total int) {
			mu.Lock()
			defer mu.Unlock()
			if current > last {
				last = current
			}
			if total != 3 {
				t.Errorf("total = %d, want 3", total)
			}
		},
	})
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if last != 3 {
		t.Errorf("final progress = %d, want 3", last)
	}
}
