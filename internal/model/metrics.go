package model

import "time"

// SummaryStats holds the top-level aggregate across all stored sessions.
type SummaryStats struct {
	TotalSessions   int
	ActiveDays      int
	TotalActiveSecs int64
	Tokens          TokenUsage

	SyncedDays   int
	PendingDays  int
	LastSyncedAt time.Time
}

// DayStats holds per-calendar-day activity for reports and charts.
type DayStats struct {
	Date       string // local calendar date, YYYY-MM-DD
	Sessions   int
	ActiveSecs int64
	Tokens     TokenUsage
	Synced     bool
}

// ProjectStats holds per-working-directory activity with its Clockify
// mapping status.
type ProjectStats struct {
	Project    string
	Sessions   int
	ActiveSecs int64
	Tokens     TokenUsage
	ProjectID  string // empty when unmapped
}

// HourlyStats holds one hour-of-day activity bucket.
type HourlyStats struct {
	Hour       int
	Sessions   int
	ActiveSecs int64
	Tokens     int64
}
