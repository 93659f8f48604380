package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/cclock/internal/cli"
	"github.com/theirongolddev/cclock/internal/config"
	"github.com/theirongolddev/cclock/internal/ledger"
	"github.com/theirongolddev/cclock/internal/model"
	"github.com/theirongolddev/cclock/internal/pipeline"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Ledger and sync state at a glance",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(_ *cobra.Command, _ []string) error {
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
	syncedDays, err := store.SyncedDays(cfg.Clockify.WorkspaceID)
	if err != nil {
		return err
	}
	runs, err := store.RecentRuns(1)
	if err != nil {
		return err
	}

	stats := pipeline.Summarize(sessions)

	fmt.Println()
	fmt.Println(cli.RenderTitle("STATUS"))
	fmt.Println()

	fmt.Printf("  Config:       %s\n", config.ConfigPath())
	fmt.Printf("  Ledger:       %s\n", ledgerPathInUse())
	fmt.Printf("  Transcripts:  %s\n", config.ClaudeProjectsDir(cfg))
	fmt.Println()

	fmt.Printf("  Sessions:     %s across %d days\n", cli.FormatNumber(int64(stats.TotalSessions)), stats.ActiveDays)
	fmt.Printf("  Active time:  %s\n", cli.FormatDuration(stats.TotalActiveSecs))
	fmt.Printf("  Tokens:       %s\n", cli.FormatTokens(stats.Tokens.Total()))
	fmt.Println()

	if cfg.Clockify.WorkspaceID == "" {
		fmt.Println("  Clockify:     not configured (run `cclock setup`)")
	} else {
		fmt.Printf("  Workspace:    %s\n", cfg.Clockify.WorkspaceID)
		fmt.Printf("  Synced days:  %d\n", len(syncedDays))

		pending := pendingDayCount(sessions, syncedDays)
		if pending > 0 {
			fmt.Printf("  Pending:      %d workdays (run `cclock sync`)\n", pending)
		} else {
			fmt.Println("  Pending:      nothing, all caught up")
		}
	}

	if len(runs) > 0 {
		run := runs[0]
		outcome := fmt.Sprintf("%d days, %d entries", run.DaysSynced, run.EntriesPosted)
		if run.Error != "" {
			outcome = "failed: " + run.Error
		}
		fmt.Printf("  Last sync:    %s (%s)\n", run.StartedAt.Local().Format("Jan 02 15:04"), outcome)
	}
	fmt.Println()

	return nil
}

func ledgerPathInUse() string {
	if flagDBPath != "" {
		return flagDBPath
	}
	return config.LedgerPath()
}

// pendingDayCount counts weekdays before today that have activity but no
// completed day marker yet.
func pendingDayCount(sessions []model.Session, syncedDays []ledger.SyncedDay) int {
	synced := make(map[string]bool, len(syncedDays))
	for _, d := range syncedDays {
		synced[d.Date] = true
	}

	today := time.Now().Local().Format("2006-01-02")
	seen := make(map[string]bool)
	pending := 0
	for _, s := range sessions {
		date := s.Start.Local().Format("2006-01-02")
		if date >= today || seen[date] || synced[date] {
			continue
		}
		seen[date] = true
		switch s.Start.Local().Weekday() {
		case time.Saturday, time.Sunday:
		default:
			pending++
		}
	}
	return pending
}
