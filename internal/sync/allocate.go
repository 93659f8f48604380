// Package sync turns stored sessions into proportional time entries and
// drives the day-by-day posting loop against Clockify.
package sync

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/theirongolddev/cclock/internal/model"
)

// UnmappedError reports session projects that have no entry in the
// project map when no catch-all other_project_id is configured.
type UnmappedError struct {
	Projects []string
}

func (e *UnmappedError) Error() string {
	return fmt.Sprintf("no project mapping for %s and other_project_id is not set", strings.Join(e.Projects, ", "))
}

// Allocate distributes one work day across the projects seen in sessions,
// proportional to each project's tracked active time. Sessions whose
// project has no mapping are pooled under otherProjectID; if that is empty
// and unmapped sessions exist, Allocate fails before anything is posted.
//
// Allocations are contiguous from workDayStart, ordered by project ID, and
// the last allocation ends exactly at workDayEnd so the durations always
// sum to the full work day. Mapping lookup is exact string match on the
// session project path.
func Allocate(sessions []model.Session, projectMap map[string]string, otherProjectID string, workDayStart, workDayEnd time.Time) ([]model.Allocation, error) {
	if len(sessions) == 0 {
		return nil, nil
	}

	buckets := make(map[string]int64)
	unmapped := make(map[string]bool)
	var totalSecs int64

	for _, sess := range sessions {
		secs := int64(sess.Duration / time.Second)
		projectID, ok := projectMap[sess.Project]
		if !ok {
			if otherProjectID == "" {
				unmapped[sess.Project] = true
				continue
			}
			projectID = otherProjectID
		}
		buckets[projectID] += secs
		totalSecs += secs
	}

	if len(unmapped) > 0 {
		projects := make([]string, 0, len(unmapped))
		for p := range unmapped {
			projects = append(projects, p)
		}
		sort.Strings(projects)
		return nil, &UnmappedError{Projects: projects}
	}

	if totalSecs == 0 {
		// Only zero-duration sessions; there is no ratio to split by.
		return nil, nil
	}

	ids := make([]string, 0, len(buckets))
	for id, secs := range buckets {
		if secs == 0 {
			continue
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)

	workDaySecs := int64(workDayEnd.Sub(workDayStart) / time.Second)
	allocations := make([]model.Allocation, 0, len(ids))
	current := workDayStart

	for i, id := range ids {
		var end time.Time
		if i == len(ids)-1 {
			// Last entry absorbs the rounding remainder.
			end = workDayEnd
		} else {
			ratio := float64(buckets[id]) / float64(totalSecs)
			secs := int64(float64(workDaySecs) * ratio)
			end = current.Add(time.Duration(secs) * time.Second)
		}
		allocations = append(allocations, model.Allocation{
			ProjectID: id,
			Start:     current,
			End:       end,
		})
		current = end
	}

	return allocations, nil
}

// workdayBoundaries converts "HH:MM" local times of day into UTC instants
// on the given date.
func workdayBoundaries(date time.Time, startHM, endHM string) (time.Time, time.Time, error) {
	start, err := atTimeOfDay(date, startHM)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parsing work day start: %w", err)
	}
	end, err := atTimeOfDay(date, endHM)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parsing work day end: %w", err)
	}
	return start, end, nil
}

func atTimeOfDay(date time.Time, hm string) (time.Time, error) {
	t, err := time.Parse("15:04", hm)
	if err != nil {
		return time.Time{}, err
	}
	local := time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, time.Local)
	return local.UTC(), nil
}

func isWeekday(date time.Time) bool {
	wd := date.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}
