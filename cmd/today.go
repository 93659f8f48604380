package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/cclock/internal/cli"
	"github.com/theirongolddev/cclock/internal/pipeline"
)

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "Today's tracked activity per project",
	RunE:  runToday,
}

func init() {
	rootCmd.AddCommand(todayCmd)
}

func runToday(_ *cobra.Command, _ []string) error {
	cfg := loadConfig()
	store, err := openLedger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if _, err := refreshLedger(store, cfg); err != nil {
		return err
	}

	// Report by the stored date column: a session that started yesterday
	// and ran past midnight counts toward yesterday, not today.
	now := time.Now().Local()
	sessions, err := store.SessionsOnDate(now.Format("2006-01-02"))
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("TODAY  %s", now.Format("Mon Jan 02"))))
	fmt.Println()

	if len(sessions) == 0 {
		fmt.Println("  No Claude Code activity today.")
		fmt.Println()
		return nil
	}

	projects := pipeline.AggregateProjects(sessions, time.Time{}, time.Time{})

	var totalSecs, totalTokens int64
	rows := make([][]string, 0, len(projects)+2)
	for _, ps := range projects {
		totalSecs += ps.ActiveSecs
		totalTokens += ps.Tokens.Total()

		mapped := "-"
		if _, ok := cfg.Projects[ps.Project]; ok {
			mapped = "mapped"
		}
		rows = append(rows, []string{
			truncate(ps.Project, 32),
			cli.FormatNumber(int64(ps.Sessions)),
			cli.FormatDuration(ps.ActiveSecs),
			cli.FormatTokens(ps.Tokens.Total()),
			mapped,
		})
	}
	rows = append(rows, []string{"---"})
	rows = append(rows, []string{
		"Total",
		cli.FormatNumber(int64(len(sessions))),
		cli.FormatDuration(totalSecs),
		cli.FormatTokens(totalTokens),
		"",
	})

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Project", "Sessions", "Active", "Tokens", "Clockify"},
		Rows:    rows,
	}))
	fmt.Println()

	return nil
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-1]) + "…"
}
