package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/cclock/internal/cli"
	"github.com/theirongolddev/cclock/internal/pipeline"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Daily activity table with sync state",
	RunE:  runHistory,
}

var historyDays int

func init() {
	historyCmd.Flags().IntVarP(&historyDays, "days", "n", 14, "Time window in days")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(_ *cobra.Command, _ []string) error {
	cfg := loadConfig()
	store, err := openLedger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if _, err := refreshLedger(store, cfg); err != nil {
		return err
	}

	sessions, err := store.LoadAllSessions()
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Println("\n  No sessions found.")
		return nil
	}

	now := time.Now()
	since := now.AddDate(0, 0, -(historyDays - 1))
	days := pipeline.AggregateDays(sessions, since, now)

	syncedDays, err := store.SyncedDays(cfg.Clockify.WorkspaceID)
	if err != nil {
		return err
	}
	syncedSet := make(map[string]bool, len(syncedDays))
	for _, d := range syncedDays {
		syncedSet[d.Date] = true
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("HISTORY  Last %dd", historyDays)))
	fmt.Println()

	rows := make([][]string, 0, len(days))
	for _, d := range days {
		date, _ := time.ParseInLocation("2006-01-02", d.Date, time.Local)

		sync := "-"
		if syncedSet[d.Date] {
			sync = "synced"
			if entries, err := store.EntriesForDay(d.Date, cfg.Clockify.WorkspaceID); err == nil && len(entries) > 0 {
				sync = fmt.Sprintf("synced (%d entries)", len(entries))
			}
		} else if d.Sessions > 0 {
			sync = "pending"
		}

		rows = append(rows, []string{
			d.Date,
			cli.FormatDayOfWeek(int(date.Weekday())),
			cli.FormatNumber(int64(d.Sessions)),
			cli.FormatDuration(d.ActiveSecs),
			cli.FormatTokens(d.Tokens.Total()),
			sync,
		})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Date", "Day", "Sessions", "Active", "Tokens", "Clockify"},
		Rows:    rows,
	}))

	// Activity sparkline, oldest to newest
	values := make([]float64, 0, len(days))
	for i := len(days) - 1; i >= 0; i-- {
		values = append(values, float64(days[i].ActiveSecs))
	}
	fmt.Printf("\n  Activity: %s\n", cli.RenderSparkline(values))

	runs, err := store.RecentRuns(5)
	if err != nil {
		return err
	}
	if len(runs) > 0 {
		fmt.Println()
		fmt.Println(cli.RenderTitle("SYNC RUNS"))
		fmt.Println()

		runRows := make([][]string, 0, len(runs))
		for _, run := range runs {
			outcome := "ok"
			if run.Error != "" {
				outcome = truncate("failed: "+run.Error, 40)
			}
			runRows = append(runRows, []string{
				run.StartedAt.Local().Format("Jan 02 15:04"),
				run.FinishedAt.Sub(run.StartedAt).Round(time.Second).String(),
				cli.FormatNumber(int64(run.DaysSynced)),
				cli.FormatNumber(int64(run.EntriesPosted)),
				outcome,
			})
		}
		fmt.Print(cli.RenderTable(cli.Table{
			Headers: []string{"Started", "Took", "Days", "Entries", "Outcome"},
			Rows:    runRows,
		}))
	}
	fmt.Println()

	return nil
}
