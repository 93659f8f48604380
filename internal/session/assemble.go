// Package session assembles ordered transcript events into work sessions
// with idle-aware durations.
package session

import (
	"time"

	"github.com/theirongolddev/cclock/internal/model"
	"github.com/theirongolddev/cclock/internal/source"
)

// DefaultIdleThreshold is the gap size above which elapsed time between
// two events no longer counts as active work.
const DefaultIdleThreshold = 15 * time.Minute

// Assemble folds an ordered event sequence into a single session. Gaps
// between consecutive events below idleThreshold count toward the
// duration; larger gaps are idle time and are excluded, but the session
// is not split — start and end stay the wall-clock extremes, so
// duration <= end-start always holds. Token counters sum over assistant
// events only.
//
// Returns ok=false for an empty sequence. The caller owns SourcePath.
func Assemble(events []source.Event, idleThreshold time.Duration) (model.Session, bool) {
	if len(events) == 0 {
		return model.Session{}, false
	}

	s := model.Session{
		Start: events[0].Timestamp,
		End:   events[len(events)-1].Timestamp,
	}

	var active time.Duration
	for i := 1; i < len(events); i++ {
		gap := events[i].Timestamp.Sub(events[i-1].Timestamp)
		if gap < idleThreshold {
			active += gap
		}
	}
	s.Duration = active

	for _, ev := range events {
		if s.Project == "" && ev.Cwd != "" {
			s.Project = ev.Cwd
		}
		if ev.Role == "assistant" {
			s.Tokens.Add(ev.Usage)
		}
	}

	return s, true
}
