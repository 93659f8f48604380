// Package model defines domain types for cclock sessions and sync.
package model

import "time"

// TokenUsage holds the four additive token counters reported on
// assistant events. Zero value means no usage data.
type TokenUsage struct {
	InputTokens         int64
	OutputTokens        int64
	CacheCreationTokens int64
	CacheReadTokens     int64
}

// Add accumulates u into t.
func (t *TokenUsage) Add(u TokenUsage) {
	t.InputTokens += u.InputTokens
	t.OutputTokens += u.OutputTokens
	t.CacheCreationTokens += u.CacheCreationTokens
	t.CacheReadTokens += u.CacheReadTokens
}

// Total returns the sum of all four counters.
func (t TokenUsage) Total() int64 {
	return t.InputTokens + t.OutputTokens + t.CacheCreationTokens + t.CacheReadTokens
}

// Session is one contiguous unit of activity assembled from a single
// transcript file. SourcePath is the file's path relative to the Claude
// projects directory and is the stable identity for upserts; re-scanning
// the same file replaces the whole row.
type Session struct {
	SourcePath string
	Project    string // working directory of the transcript, the bucket key
	Start      time.Time
	End        time.Time
	// Duration counts active time only: gaps at or above the idle
	// threshold are excluded, so Duration <= End.Sub(Start).
	Duration time.Duration
	Tokens   TokenUsage
}

// Allocation assigns one contiguous span of a work day to a Clockify
// project. Within a day's allocation set the spans are contiguous,
// non-overlapping, and sum exactly to the work-day span.
type Allocation struct {
	ProjectID string
	Start     time.Time
	End       time.Time
}

// Duration returns the allocation's span.
func (a Allocation) Duration() time.Duration {
	return a.End.Sub(a.Start)
}
