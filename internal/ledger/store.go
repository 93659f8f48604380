// Package ledger provides the SQLite-backed session and sync ledger.
//
// Timestamps are stored as RFC3339 UTC strings without fractional
// seconds, so lexicographic comparison in SQL equals chronological
// comparison. The per-session date column is the local calendar date of
// the session start; range queries use the start/end overlap predicate
// instead, and the two can disagree for sessions spanning midnight.
package ledger

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/theirongolddev/cclock/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

const dateFormat = "2006-01-02"

// Store wraps the ledger database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the ledger database at the given path.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating ledger dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("opening ledger db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the ledger database.
func (s *Store) Close() error {
	return s.db.Close()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// UpsertSession writes or fully overwrites the row keyed by
// sess.SourcePath. Re-scanning a still-growing transcript converges the
// row toward its final state; rows are never deleted here even if the
// source file disappears.
func (s *Store) UpsertSession(sess model.Session) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO sessions
		(source_path, project, date, start_time, end_time, duration_seconds,
		 input_tokens, output_tokens, cache_creation_input_tokens, cache_read_input_tokens)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.SourcePath,
		sess.Project,
		sess.Start.Local().Format(dateFormat),
		formatTime(sess.Start),
		formatTime(sess.End),
		int64(sess.Duration/time.Second),
		sess.Tokens.InputTokens,
		sess.Tokens.OutputTokens,
		sess.Tokens.CacheCreationTokens,
		sess.Tokens.CacheReadTokens,
	)
	if err != nil {
		return fmt.Errorf("upserting session %s: %w", sess.SourcePath, err)
	}
	return nil
}

const sessionColumns = `source_path, project, start_time, end_time, duration_seconds,
	input_tokens, output_tokens, cache_creation_input_tokens, cache_read_input_tokens`

func scanSessions(rows *sql.Rows) ([]model.Session, error) {
	var sessions []model.Session
	for rows.Next() {
		var (
			sess         model.Session
			startStr     string
			endStr       string
			durationSecs int64
		)
		err := rows.Scan(
			&sess.SourcePath, &sess.Project, &startStr, &endStr, &durationSecs,
			&sess.Tokens.InputTokens, &sess.Tokens.OutputTokens,
			&sess.Tokens.CacheCreationTokens, &sess.Tokens.CacheReadTokens,
		)
		if err != nil {
			return nil, err
		}
		sess.Start, _ = time.Parse(time.RFC3339, startStr)
		sess.End, _ = time.Parse(time.RFC3339, endStr)
		sess.Duration = time.Duration(durationSecs) * time.Second
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// QueryRange returns every session whose interval overlaps the window,
// using the predicate start < endUTC AND end >= startUTC. A session
// spanning a day boundary is returned for both adjacent days' windows.
func (s *Store) QueryRange(startUTC, endUTC time.Time) ([]model.Session, error) {
	rows, err := s.db.Query(
		`SELECT `+sessionColumns+` FROM sessions
		 WHERE start_time < ? AND end_time >= ?
		 ORDER BY start_time`,
		formatTime(endUTC), formatTime(startUTC),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	return scanSessions(rows)
}

// SessionsOnDate returns the sessions whose stored date column matches the
// local calendar date (YYYY-MM-DD). The date is the local date of the
// session's start, so a midnight-spanning session belongs wholly to its
// start date; use QueryRange for instant-based windows.
func (s *Store) SessionsOnDate(localDate string) ([]model.Session, error) {
	rows, err := s.db.Query(
		`SELECT `+sessionColumns+` FROM sessions WHERE date = ? ORDER BY start_time`,
		localDate,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	return scanSessions(rows)
}

// LoadAllSessions reads every stored session ordered by start time.
func (s *Store) LoadAllSessions() ([]model.Session, error) {
	rows, err := s.db.Query(`SELECT ` + sessionColumns + ` FROM sessions ORDER BY start_time`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	return scanSessions(rows)
}

// SessionCount returns the number of stored sessions.
func (s *Store) SessionCount() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM sessions").Scan(&count)
	return count, err
}

// EarliestSessionDate returns the minimum date column across sessions,
// or "" when the ledger is empty.
func (s *Store) EarliestSessionDate() (string, error) {
	var d sql.NullString
	if err := s.db.QueryRow("SELECT MIN(date) FROM sessions").Scan(&d); err != nil {
		return "", err
	}
	if !d.Valid {
		return "", nil
	}
	return d.String, nil
}

// IsDaySynced reports whether the day marker exists for (date, workspace).
func (s *Store) IsDaySynced(date, workspaceID string) (bool, error) {
	var one int
	err := s.db.QueryRow(
		"SELECT 1 FROM synced_days WHERE date = ? AND workspace_id = ?",
		date, workspaceID,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// MarkDaySynced writes the day marker. Callers must only do this after
// every bucket of the day has its entry-audit row; the marker is what
// later runs consult to skip the day wholesale.
func (s *Store) MarkDaySynced(date, workspaceID string) error {
	_, err := s.db.Exec(
		"INSERT OR REPLACE INTO synced_days (date, workspace_id, synced_at) VALUES (?, ?, ?)",
		date, workspaceID, formatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("marking day %s synced: %w", date, err)
	}
	return nil
}

// IsEntrySynced reports whether (date, workspace, project) already has a
// posted entry recorded.
func (s *Store) IsEntrySynced(date, workspaceID, projectID string) (bool, error) {
	var one int
	err := s.db.QueryRow(
		"SELECT 1 FROM synced_entries WHERE date = ? AND workspace_id = ? AND project_id = ?",
		date, workspaceID, projectID,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// MarkEntrySynced records the external entry id for a posted bucket.
// Must be durable before the day marker is written, so a crash between
// posts never loses track of what already went out.
func (s *Store) MarkEntrySynced(date, workspaceID, projectID, entryID string) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO synced_entries
		 (date, workspace_id, project_id, entry_id, synced_at)
		 VALUES (?, ?, ?, ?, ?)`,
		date, workspaceID, projectID, entryID, formatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("marking entry %s/%s synced: %w", date, projectID, err)
	}
	return nil
}

// SyncedDay is one completed day marker.
type SyncedDay struct {
	Date     string
	SyncedAt string
}

// SyncedDays lists completed day markers for a workspace, newest first.
func (s *Store) SyncedDays(workspaceID string) ([]SyncedDay, error) {
	rows, err := s.db.Query(
		"SELECT date, synced_at FROM synced_days WHERE workspace_id = ? ORDER BY date DESC",
		workspaceID,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var days []SyncedDay
	for rows.Next() {
		var d SyncedDay
		if err := rows.Scan(&d.Date, &d.SyncedAt); err != nil {
			return nil, err
		}
		days = append(days, d)
	}
	return days, rows.Err()
}

// SyncedEntry is one posted-entry audit row.
type SyncedEntry struct {
	Date      string
	ProjectID string
	EntryID   string
	SyncedAt  string
}

// EntriesForDay lists the audit rows for one day, in project id order.
func (s *Store) EntriesForDay(date, workspaceID string) ([]SyncedEntry, error) {
	rows, err := s.db.Query(
		`SELECT date, project_id, entry_id, synced_at FROM synced_entries
		 WHERE date = ? AND workspace_id = ? ORDER BY project_id`,
		date, workspaceID,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var entries []SyncedEntry
	for rows.Next() {
		var e SyncedEntry
		if err := rows.Scan(&e.Date, &e.ProjectID, &e.EntryID, &e.SyncedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// RunRecord is one orchestrator run, successful or not.
type RunRecord struct {
	ID            string
	StartedAt     time.Time
	FinishedAt    time.Time
	DaysSynced    int
	EntriesPosted int
	Error         string
}

// RecordRun inserts a completed run row.
func (s *Store) RecordRun(r RunRecord) error {
	_, err := s.db.Exec(
		`INSERT INTO sync_runs (id, started_at, finished_at, days_synced, entries_posted, error)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, formatTime(r.StartedAt), formatTime(r.FinishedAt),
		r.DaysSynced, r.EntriesPosted, r.Error,
	)
	if err != nil {
		return fmt.Errorf("recording sync run: %w", err)
	}
	return nil
}

// RecentRuns returns up to limit run rows, newest first.
func (s *Store) RecentRuns(limit int) ([]RunRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, started_at, finished_at, days_synced, entries_posted, error
		 FROM sync_runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var runs []RunRecord
	for rows.Next() {
		var (
			r          RunRecord
			startedStr string
			finished   sql.NullString
			errStr     sql.NullString
		)
		if err := rows.Scan(&r.ID, &startedStr, &finished, &r.DaysSynced, &r.EntriesPosted, &errStr); err != nil {
			return nil, err
		}
		r.StartedAt, _ = time.Parse(time.RFC3339, startedStr)
		if finished.Valid {
			r.FinishedAt, _ = time.Parse(time.RFC3339, finished.String)
		}
		if errStr.Valid {
			r.Error = errStr.String
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
