package sync

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/theirongolddev/cclock/internal/ledger"
	"github.com/theirongolddev/cclock/internal/model"
)

const dateFormat = "2006-01-02"

// PostFunc sends one time entry to the external tracker and returns the
// created entry's ID.
type PostFunc func(ctx context.Context, projectID string, start, end time.Time, description string) (string, error)

// RunnerConfig holds everything a sync run needs.
type RunnerConfig struct {
	// Store is the local session ledger
	Store *ledger.Store

	// Post sends a single time entry
	Post PostFunc

	// WorkspaceID scopes the synced-day and synced-entry markers
	WorkspaceID string

	// ProjectMap maps session project paths to tracker project IDs
	ProjectMap map[string]string

	// OtherProjectID pools unmapped projects; empty disables the pool
	OtherProjectID string

	// WorkDayStart and WorkDayEnd are "HH:MM" local times of day
	WorkDayStart string
	WorkDayEnd   string

	// Description is attached to every posted entry (default: "Development")
	Description string

	// Out receives progress output (default: discard)
	Out io.Writer
}

// Report summarizes one sync run.
type Report struct {
	RunID         string
	DaysSynced    int
	EntriesPosted int
}

// DayPlan is the allocation set one day would post, minus entries that
// already went out on a previous run.
type DayPlan struct {
	Date        string
	Allocations []model.Allocation
}

// Runner walks all unsynced workdays from the earliest session through
// yesterday and posts their allocations. Every successful post is recorded
// before the next one is attempted, so an aborted run resumes where it
// stopped.
type Runner struct {
	store          *ledger.Store
	post           PostFunc
	workspaceID    string
	projectMap     map[string]string
	otherProjectID string
	workDayStart   string
	workDayEnd     string
	description    string
	out            io.Writer
	now            func() time.Time
}

// NewRunner creates a sync runner.
func NewRunner(cfg RunnerConfig) *Runner {
	description := cfg.Description
	if description == "" {
		description = "Development"
	}
	out := cfg.Out
	if out == nil {
		out = io.Discard
	}
	return &Runner{
		store:          cfg.Store,
		post:           cfg.Post,
		workspaceID:    cfg.WorkspaceID,
		projectMap:     cfg.ProjectMap,
		otherProjectID: cfg.OtherProjectID,
		workDayStart:   cfg.WorkDayStart,
		workDayEnd:     cfg.WorkDayEnd,
		description:    description,
		out:            out,
		now:            time.Now,
	}
}

// Run executes the sync loop and records a run row whether it completes or
// aborts. The first post failure stops the run; already-recorded entries
// stay recorded, and the next run picks up after them.
func (r *Runner) Run(ctx context.Context) (Report, error) {
	rep := Report{RunID: uuid.NewString()}
	startedAt := r.now()

	err := r.run(ctx, &rep)

	rec := ledger.RunRecord{
		ID:            rep.RunID,
		StartedAt:     startedAt,
		FinishedAt:    r.now(),
		DaysSynced:    rep.DaysSynced,
		EntriesPosted: rep.EntriesPosted,
	}
	if err != nil {
		rec.Error = err.Error()
	}
	if recErr := r.store.RecordRun(rec); recErr != nil && err == nil {
		err = fmt.Errorf("recording run: %w", recErr)
	}
	return rep, err
}

func (r *Runner) run(ctx context.Context, rep *Report) error {
	days, err := r.pendingDays()
	if err != nil {
		return err
	}
	if len(days) == 0 {
		return nil
	}

	fmt.Fprintf(r.out, "Syncing workdays from %s to %s...\n", days[0].Format(dateFormat), days[len(days)-1].Format(dateFormat))

	for _, day := range days {
		dateStr := day.Format(dateFormat)

		synced, err := r.store.IsDaySynced(dateStr, r.workspaceID)
		if err != nil {
			return err
		}
		if synced {
			continue
		}

		allocations, err := r.allocationsFor(day)
		if err != nil {
			return err
		}
		if len(allocations) == 0 {
			// No sessions touched this work day; leave it eligible.
			continue
		}

		fmt.Fprintf(r.out, "  %s - syncing", dateStr)
		dayEntries := 0

		for _, alloc := range allocations {
			entrySynced, err := r.store.IsEntrySynced(dateStr, r.workspaceID, alloc.ProjectID)
			if err != nil {
				fmt.Fprintln(r.out)
				return err
			}
			if entrySynced {
				continue
			}

			entryID, err := r.post(ctx, alloc.ProjectID, alloc.Start, alloc.End, r.description)
			if err != nil {
				fmt.Fprintln(r.out)
				return fmt.Errorf("posting %s entry for %s: %w", dateStr, alloc.ProjectID, err)
			}
			if err := r.store.MarkEntrySynced(dateStr, r.workspaceID, alloc.ProjectID, entryID); err != nil {
				fmt.Fprintln(r.out)
				return err
			}
			dayEntries++
			rep.EntriesPosted++
		}

		if err := r.store.MarkDaySynced(dateStr, r.workspaceID); err != nil {
			fmt.Fprintln(r.out)
			return err
		}
		fmt.Fprintf(r.out, " - %d entries posted\n", dayEntries)
		rep.DaysSynced++
	}

	fmt.Fprintln(r.out, "---")
	fmt.Fprintf(r.out, "Synced %d days, %d total entries\n", rep.DaysSynced, rep.EntriesPosted)
	return nil
}

// Plan computes what Run would post without posting or marking anything.
func (r *Runner) Plan() ([]DayPlan, error) {
	days, err := r.pendingDays()
	if err != nil {
		return nil, err
	}

	var plans []DayPlan
	for _, day := range days {
		dateStr := day.Format(dateFormat)

		synced, err := r.store.IsDaySynced(dateStr, r.workspaceID)
		if err != nil {
			return nil, err
		}
		if synced {
			continue
		}

		allocations, err := r.allocationsFor(day)
		if err != nil {
			return nil, err
		}

		pending := allocations[:0]
		for _, alloc := range allocations {
			entrySynced, err := r.store.IsEntrySynced(dateStr, r.workspaceID, alloc.ProjectID)
			if err != nil {
				return nil, err
			}
			if !entrySynced {
				pending = append(pending, alloc)
			}
		}
		if len(pending) == 0 {
			continue
		}
		plans = append(plans, DayPlan{Date: dateStr, Allocations: pending})
	}
	return plans, nil
}

// pendingDays lists every weekday from the earliest session date through
// yesterday. Today is never included; its work day is still open.
func (r *Runner) pendingDays() ([]time.Time, error) {
	earliest, err := r.store.EarliestSessionDate()
	if err != nil {
		return nil, err
	}
	if earliest == "" {
		fmt.Fprintln(r.out, "No sessions found. Nothing to sync.")
		return nil, nil
	}

	start, err := time.ParseInLocation(dateFormat, earliest, time.Local)
	if err != nil {
		return nil, fmt.Errorf("parsing earliest session date %q: %w", earliest, err)
	}

	today := r.now().Local()
	yesterday := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.Local).AddDate(0, 0, -1)
	if start.After(yesterday) {
		fmt.Fprintln(r.out, "No complete workdays to sync.")
		return nil, nil
	}

	var days []time.Time
	for day := start; !day.After(yesterday); day = day.AddDate(0, 0, 1) {
		if isWeekday(day) {
			days = append(days, day)
		}
	}
	return days, nil
}

func (r *Runner) allocationsFor(day time.Time) ([]model.Allocation, error) {
	startUTC, endUTC, err := workdayBoundaries(day, r.workDayStart, r.workDayEnd)
	if err != nil {
		return nil, err
	}
	sessions, err := r.store.QueryRange(startUTC, endUTC)
	if err != nil {
		return nil, err
	}
	allocations, err := Allocate(sessions, r.projectMap, r.otherProjectID, startUTC, endUTC)
	if err != nil {
		return nil, fmt.Errorf("allocating %s: %w", day.Format(dateFormat), err)
	}
	return allocations, nil
}
