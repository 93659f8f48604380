package pipeline

import (
	"testing"
	"time"

	"github.com/theirongolddev/cclock/internal/model"
)

func mkSession(project string, start time.Time, duration time.Duration, in, out int64) model.Session {
	return model.Session{
		SourcePath: "/transcripts/" + project + "-" + start.Format("150405") + ".jsonl",
		Project:    project,
		Start:      start,
		End:        start.Add(duration),
		Duration:   duration,
		Tokens:     model.TokenUsage{InputTokens: in, OutputTokens: out},
	}
}

func localDay(day, hour int) time.Time {
	return time.Date(2026, 2, day, hour, 0, 0, 0, time.Local)
}

func TestSummarize(t *testing.T) {
	sessions := []model.Session{
		mkSession("/work/alpha", localDay(3, 10), 30*time.Minute, 100, 50),
		mkSession("/work/alpha", localDay(3, 14), time.Hour, 200, 80),
		mkSession("/work/beta", localDay(5, 9), 15*time.Minute, 10, 5),
	}

	stats := Summarize(sessions)
	if stats.TotalSessions != 3 {
		t.Errorf("TotalSessions = %d, want 3", stats.TotalSessions)
	}
	if stats.ActiveDays != 2 {
		t.Errorf("ActiveDays = %d, want 2", stats.ActiveDays)
	}
	if want := int64((30*time.Minute + time.Hour + 15*time.Minute) / time.Second); stats.TotalActiveSecs != want {
		t.Errorf("TotalActiveSecs = %d, want %d", stats.TotalActiveSecs, want)
	}
	if stats.Tokens.InputTokens != 310 || stats.Tokens.OutputTokens != 135 {
		t.Errorf("Tokens = %+v, want 310 in, 135 out", stats.Tokens)
	}
}

func TestSummarize_Empty(t *testing.T) {
	stats := Summarize(nil)
	if stats.TotalSessions != 0 || stats.ActiveDays != 0 || stats.TotalActiveSecs != 0 {
		t.Errorf("stats = %+v, want zero values", stats)
	}
}

func TestAggregateDays_FillsRange(t *testing.T) {
	sessions := []model.Session{
		mkSession("/work/alpha", localDay(3, 10), 30*time.Minute, 100, 50),
		mkSession("/work/alpha", localDay(3, 14), time.Hour, 0, 0),
		mkSession("/work/beta", localDay(5, 9), 15*time.Minute, 0, 0),
	}

	days := AggregateDays(sessions, localDay(3, 0), localDay(5, 23))
	if len(days) != 3 {
		t.Fatalf("len(days) = %d, want 3", len(days))
	}

	// Most recent first, with the empty 4th zero-filled.
	wantDates := []string{"2026-02-05", "2026-02-04", "2026-02-03"}
	wantSessions := []int{1, 0, 2}
	for i := range wantDates {
		if days[i].Date != wantDates[i] {
			t.Errorf("days[%d].Date = %q, want %q", i, days[i].Date, wantDates[i])
		}
		if days[i].Sessions != wantSessions[i] {
			t.Errorf("days[%d].Sessions = %d, want %d", i, days[i].Sessions, wantSessions[i])
		}
	}
	if days[2].ActiveSecs != int64((90*time.Minute)/time.Second) {
		t.Errorf("days[2].ActiveSecs = %d, want 5400", days[2].ActiveSecs)
	}
}

func TestAggregateDays_NoBoundsNoFill(t *testing.T) {
	sessions := []model.Session{
		mkSession("/work/alpha", localDay(3, 10), 30*time.Minute, 0, 0),
		mkSession("/work/beta", localDay(10, 9), 15*time.Minute, 0, 0),
	}

	days := AggregateDays(sessions, time.Time{}, time.Time{})
	if len(days) != 2 {
		t.Fatalf("len(days) = %d, want 2 with no zero fill", len(days))
	}
	if days[0].Date != "2026-02-10" || days[1].Date != "2026-02-03" {
		t.Errorf("days = [%s, %s], want most recent first", days[0].Date, days[1].Date)
	}
}

func TestAggregateProjects(t *testing.T) {
	sessions := []model.Session{
		mkSession("/work/alpha", localDay(3, 10), 30*time.Minute, 100, 50),
		mkSession("/work/beta", localDay(3, 12), 2*time.Hour, 10, 5),
		mkSession("/work/alpha", localDay(4, 10), 20*time.Minute, 50, 25),
	}

	projects := AggregateProjects(sessions, time.Time{}, time.Time{})
	if len(projects) != 2 {
		t.Fatalf("len(projects) = %d, want 2", len(projects))
	}
	if projects[0].Project != "/work/beta" {
		t.Errorf("projects[0].Project = %q, want /work/beta first by active time", projects[0].Project)
	}
	if projects[1].Sessions != 2 {
		t.Errorf("alpha sessions = %d, want 2", projects[1].Sessions)
	}
	if projects[1].ActiveSecs != int64((50*time.Minute)/time.Second) {
		t.Errorf("alpha ActiveSecs = %d, want 3000", projects[1].ActiveSecs)
	}
	if projects[1].Tokens.InputTokens != 150 {
		t.Errorf("alpha InputTokens = %d, want 150", projects[1].Tokens.InputTokens)
	}
}

func TestFilterByTime(t *testing.T) {
	since := localDay(3, 9)
	until := localDay(3, 17)
	sessions := []model.Session{
		mkSession("/work/a", localDay(3, 9), time.Minute, 0, 0),  // exactly at since
		mkSession("/work/b", localDay(3, 12), time.Minute, 0, 0), // inside
		mkSession("/work/c", localDay(3, 17), time.Minute, 0, 0), // exactly at until
		mkSession("/work/d", localDay(3, 8), time.Minute, 0, 0),  // before
	}

	got := FilterByTime(sessions, since, until)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Project != "/work/a" || got[1].Project != "/work/b" {
		t.Errorf("filtered = %q, %q, want /work/a and /work/b", got[0].Project, got[1].Project)
	}
}

func TestFilterByProject(t *testing.T) {
	sessions := []model.Session{
		mkSession("/work/Alpha", localDay(3, 9), time.Minute, 0, 0),
		mkSession("/work/beta", localDay(3, 10), time.Minute, 0, 0),
	}

	got := FilterByProject(sessions, "alpha")
	if len(got) != 1 || got[0].Project != "/work/Alpha" {
		t.Errorf("filtered = %+v, want the Alpha session only", got)
	}
	if got := FilterByProject(sessions, ""); len(got) != 2 {
		t.Errorf("empty filter returned %d sessions, want all", len(got))
	}
}

func TestAggregateTodayHourly(t *testing.T) {
	now := time.Now()
	sessions := []model.Session{
		mkSession("/work/alpha", now, 30*time.Minute, 100, 50),
		mkSession("/work/beta", now.AddDate(0, 0, -1), time.Hour, 10, 5),
	}

	hours := AggregateTodayHourly(sessions)
	if len(hours) != 24 {
		t.Fatalf("len(hours) = %d, want 24", len(hours))
	}
	var total int
	var tokens int64
	for _, h := range hours {
		total += h.Sessions
		tokens += h.Tokens
	}
	if total != 1 {
		t.Errorf("sessions counted today = %d, want 1", total)
	}
	if tokens != 150 {
		t.Errorf("tokens counted today = %d, want 150", tokens)
	}
}
