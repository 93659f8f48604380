package pipeline

import (
	"sort"
	"strings"
	"time"

	"github.com/theirongolddev/cclock/internal/model"
)

const dayFormat = "2006-01-02"

// Summarize computes top-level statistics across sessions. Sync-related
// fields are left for the caller to fill from the ledger's markers.
func Summarize(sessions []model.Session) model.SummaryStats {
	var stats model.SummaryStats
	activeDays := make(map[string]struct{})

	for _, s := range sessions {
		stats.TotalSessions++
		stats.TotalActiveSecs += int64(s.Duration / time.Second)
		stats.Tokens.Add(s.Tokens)

		if !s.Start.IsZero() {
			activeDays[s.Start.Local().Format(dayFormat)] = struct{}{}
		}
	}

	stats.ActiveDays = len(activeDays)
	return stats
}

// AggregateDays computes per-day statistics from sessions. When both
// bounds are set, every day in the range appears so charts show gaps as
// zeros. Days are ordered most recent first.
func AggregateDays(sessions []model.Session, since, until time.Time) []model.DayStats {
	filtered := FilterByTime(sessions, since, until)

	dayMap := make(map[string]*model.DayStats)

	for _, s := range filtered {
		if s.Start.IsZero() {
			continue
		}
		key := s.Start.Local().Format(dayFormat)
		ds, ok := dayMap[key]
		if !ok {
			ds = &model.DayStats{Date: key}
			dayMap[key] = ds
		}
		ds.Sessions++
		ds.ActiveSecs += int64(s.Duration / time.Second)
		ds.Tokens.Add(s.Tokens)
	}

	if !since.IsZero() && !until.IsZero() {
		day := time.Date(since.Year(), since.Month(), since.Day(), 0, 0, 0, 0, time.Local)
		end := time.Date(until.Year(), until.Month(), until.Day(), 0, 0, 0, 0, time.Local)
		for !day.After(end) {
			key := day.Format(dayFormat)
			if _, ok := dayMap[key]; !ok {
				dayMap[key] = &model.DayStats{Date: key}
			}
			day = day.AddDate(0, 0, 1)
		}
	}

	days := make([]model.DayStats, 0, len(dayMap))
	for _, ds := range dayMap {
		days = append(days, *ds)
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].Date > days[j].Date
	})

	return days
}

// AggregateProjects computes per-project statistics, ordered by active
// time descending.
func AggregateProjects(sessions []model.Session, since, until time.Time) []model.ProjectStats {
	filtered := FilterByTime(sessions, since, until)

	projMap := make(map[string]*model.ProjectStats)

	for _, s := range filtered {
		ps, ok := projMap[s.Project]
		if !ok {
			ps = &model.ProjectStats{Project: s.Project}
			projMap[s.Project] = ps
		}
		ps.Sessions++
		ps.ActiveSecs += int64(s.Duration / time.Second)
		ps.Tokens.Add(s.Tokens)
	}

	projects := make([]model.ProjectStats, 0, len(projMap))
	for _, ps := range projMap {
		projects = append(projects, *ps)
	}
	sort.Slice(projects, func(i, j int) bool {
		if projects[i].ActiveSecs != projects[j].ActiveSecs {
			return projects[i].ActiveSecs > projects[j].ActiveSecs
		}
		return projects[i].Project < projects[j].Project
	})

	return projects
}

// AggregateTodayHourly computes 24 hourly activity buckets for today in
// local time. A session's activity is attributed to its start hour.
func AggregateTodayHourly(sessions []model.Session) []model.HourlyStats {
	now := time.Now()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	todayEnd := todayStart.Add(24 * time.Hour)

	hours := make([]model.HourlyStats, 24)
	for i := range hours {
		hours[i].Hour = i
	}

	for _, s := range sessions {
		if s.Start.IsZero() {
			continue
		}
		local := s.Start.Local()
		if local.Before(todayStart) || !local.Before(todayEnd) {
			continue
		}
		h := local.Hour()
		hours[h].Sessions++
		hours[h].ActiveSecs += int64(s.Duration / time.Second)
		hours[h].Tokens += s.Tokens.Total()
	}
	return hours
}

// FilterByTime returns sessions whose start time falls within [since, until).
func FilterByTime(sessions []model.Session, since, until time.Time) []model.Session {
	if since.IsZero() && until.IsZero() {
		return sessions
	}

	var result []model.Session
	for _, s := range sessions {
		if s.Start.IsZero() {
			continue
		}
		if !since.IsZero() && s.Start.Before(since) {
			continue
		}
		if !until.IsZero() && !s.Start.Before(until) {
			continue
		}
		result = append(result, s)
	}
	return result
}

// FilterByProject returns sessions matching the project substring.
func FilterByProject(sessions []model.Session, project string) []model.Session {
	if project == "" {
		return sessions
	}
	var result []model.Session
	for _, s := range sessions {
		if containsIgnoreCase(s.Project, project) {
			result = append(result, s)
		}
	}
	return result
}

func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
