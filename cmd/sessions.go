package cmd

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/cclock/internal/cli"
	"github.com/theirongolddev/cclock/internal/pipeline"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Recent sessions with active time and tokens",
	RunE:  runSessions,
}

var (
	sessionsLimit   int
	sessionsDays    int
	sessionsProject string
)

func init() {
	sessionsCmd.Flags().IntVarP(&sessionsLimit, "limit", "l", 20, "Number of sessions to show")
	sessionsCmd.Flags().IntVarP(&sessionsDays, "days", "n", 0, "Only sessions from the last N days (0 = all)")
	sessionsCmd.Flags().StringVarP(&sessionsProject, "project", "p", "", "Filter to project (substring match)")
	rootCmd.AddCommand(sessionsCmd)
}

func runSessions(_ *cobra.Command, _ []string) error {
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
	sessions = pipeline.FilterByProject(sessions, sessionsProject)
	if sessionsDays > 0 {
		now := time.Now()
		sessions = pipeline.FilterByTime(sessions, now.AddDate(0, 0, -sessionsDays), now)
	}

	if len(sessions) == 0 {
		fmt.Println("\n  No sessions found.")
		return nil
	}

	// Most recent first
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].Start.After(sessions[j].Start)
	})
	if sessionsLimit > 0 && len(sessions) > sessionsLimit {
		sessions = sessions[:sessionsLimit]
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("SESSIONS  showing %d", len(sessions))))
	fmt.Println()

	rows := make([][]string, 0, len(sessions))
	for _, s := range sessions {
		rows = append(rows, []string{
			s.Start.Local().Format("Jan 02 15:04"),
			truncate(s.Project, 28),
			cli.FormatDuration(int64(s.Duration.Seconds())),
			cli.FormatDuration(int64(s.End.Sub(s.Start).Seconds())),
			cli.FormatTokens(s.Tokens.Total()),
		})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Start", "Project", "Active", "Span", "Tokens"},
		Rows:    rows,
	}))

	return nil
}
