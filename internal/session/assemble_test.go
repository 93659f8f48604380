package session

import (
	"testing"
	"time"

	"github.com/theirongolddev/cclock/internal/model"
	"github.com/theirongolddev/cclock/internal/source"
)

// ev returns a user event at the given RFC3339 timestamp with a fixed cwd.
func ev(t *testing.T, ts string) source.Event {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		t.Fatal(err)
	}
	return source.Event{Timestamp: parsed, Role: "user", Cwd: "/work/project"}
}

func TestAssemble_Empty(t *testing.T) {
	if _, ok := Assemble(nil, DefaultIdleThreshold); ok {
		t.Error("Assemble(nil) ok = true, want false")
	}
}

func TestAssemble_SingleEvent(t *testing.T) {
	s, ok := Assemble([]source.Event{ev(t, "2026-02-03T10:00:00Z")}, DefaultIdleThreshold)
	if !ok {
		t.Fatal("Assemble ok = false, want true")
	}
	if s.Duration != 0 {
		t.Errorf("Duration = %v, want 0", s.Duration)
	}
	if !s.Start.Equal(s.End) {
		t.Errorf("Start %v != End %v for single event", s.Start, s.End)
	}
}

func TestAssemble_StartEndSpan(t *testing.T) {
	s, ok := Assemble([]source.Event{
		ev(t, "2026-02-03T10:00:00Z"),
		ev(t, "2026-02-03T10:05:30Z"),
	}, DefaultIdleThreshold)
	if !ok {
		t.Fatal("Assemble ok = false, want true")
	}
	if got := s.Start.Format(time.RFC3339); got != "2026-02-03T10:00:00Z" {
		t.Errorf("Start = %s", got)
	}
	if got := s.End.Format(time.RFC3339); got != "2026-02-03T10:05:30Z" {
		t.Errorf("End = %s", got)
	}
	if s.Duration != 5*time.Minute+30*time.Second {
		t.Errorf("Duration = %v, want 5m30s", s.Duration)
	}
	if s.Project != "/work/project" {
		t.Errorf("Project = %q, want /work/project", s.Project)
	}
}

func TestAssemble_IdleGaps(t *testing.T) {
	tests := []struct {
		name  string
		times []string
		want  time.Duration
	}{
		{
			// Gaps 5m, 3m, both under threshold: full 8m counted.
			name:  "gaps below threshold count fully",
			times: []string{"2026-02-03T10:00:00Z", "2026-02-03T10:05:00Z", "2026-02-03T10:08:00Z"},
			want:  8 * time.Minute,
		},
		{
			// Gaps 5m (below), 30m (above): only the 5m counts.
			name:  "gap above threshold is excluded",
			times: []string{"2026-02-03T10:00:00Z", "2026-02-03T10:05:00Z", "2026-02-03T10:35:00Z"},
			want:  5 * time.Minute,
		},
		{
			// Gaps 3m, 20m, 4m: the 20m is dropped, 3+4=7m.
			name:  "mixed gaps only large ones dropped",
			times: []string{"2026-02-03T10:00:00Z", "2026-02-03T10:03:00Z", "2026-02-03T10:23:00Z", "2026-02-03T10:27:00Z"},
			want:  7 * time.Minute,
		},
		{
			// Gaps 5m, 5m, 30m, 5m: duration 15m over a 45m span.
			name:  "long pause mid-session",
			times: []string{"2026-02-03T09:00:00Z", "2026-02-03T09:05:00Z", "2026-02-03T09:10:00Z", "2026-02-03T09:40:00Z", "2026-02-03T09:45:00Z"},
			want:  15 * time.Minute,
		},
		{
			// A gap equal to the threshold is idle, not active.
			name:  "gap exactly at threshold excluded",
			times: []string{"2026-02-03T10:00:00Z", "2026-02-03T10:15:00Z"},
			want:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := make([]source.Event, 0, len(tt.times))
			for _, ts := range tt.times {
				events = append(events, ev(t, ts))
			}

			s, ok := Assemble(events, 15*time.Minute)
			if !ok {
				t.Fatal("Assemble ok = false, want true")
			}
			if s.Duration != tt.want {
				t.Errorf("Duration = %v, want %v", s.Duration, tt.want)
			}
			if span := s.End.Sub(s.Start); s.Duration > span {
				t.Errorf("Duration %v exceeds span %v", s.Duration, span)
			}
		})
	}
}

func TestAssemble_TokenTotals(t *testing.T) {
	base, _ := time.Parse(time.RFC3339, "2026-02-03T10:00:00Z")
	events := []source.Event{
		{Timestamp: base, Role: "user", Cwd: "/work/project"},
		{Timestamp: base.Add(10 * time.Second), Role: "assistant", Usage: model.TokenUsage{
			InputTokens: 100, OutputTokens: 50, CacheCreationTokens: 200, CacheReadTokens: 500,
		}},
		{Timestamp: base.Add(20 * time.Second), Role: "assistant"}, // no usage data
		{Timestamp: base.Add(30 * time.Second), Role: "assistant", Usage: model.TokenUsage{
			InputTokens: 10, OutputTokens: 5,
		}},
	}

	s, ok := Assemble(events, DefaultIdleThreshold)
	if !ok {
		t.Fatal("Assemble ok = false, want true")
	}
	if s.Tokens.InputTokens != 110 {
		t.Errorf("InputTokens = %d, want 110", s.Tokens.InputTokens)
	}
	if s.Tokens.OutputTokens != 55 {
		t.Errorf("OutputTokens = %d, want 55", s.Tokens.OutputTokens)
	}
	if s.Tokens.CacheCreationTokens != 200 {
		t.Errorf("CacheCreationTokens = %d, want 200", s.Tokens.CacheCreationTokens)
	}
	if s.Tokens.CacheReadTokens != 500 {
		t.Errorf("CacheReadTokens = %d, want 500", s.Tokens.CacheReadTokens)
	}
}

func TestAssemble_FirstNonEmptyCwdWins(t *testing.T) {
	base, _ := time.Parse(time.RFC3339, "2026-02-03T10:00:00Z")
	events := []source.Event{
		{Timestamp: base, Role: "user"}, // no cwd
		{Timestamp: base.Add(time.Second), Role: "user", Cwd: "/work/first"},
		{Timestamp: base.Add(2 * time.Second), Role: "user", Cwd: "/work/second"},
	}

	s, ok := Assemble(events, DefaultIdleThreshold)
	if !ok {
		t.Fatal("Assemble ok = false, want true")
	}
	if s.Project != "/work/first" {
		t.Errorf("Project = %q, want /work/first", s.Project)
	}
}
