package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/cclock/internal/cli"
	"github.com/theirongolddev/cclock/internal/tui/components"
	"github.com/theirongolddev/cclock/internal/tui/theme"
)

func (a App) renderSyncTab(width int) string {
	d := a.data

	var b strings.Builder

	lastSynced := "never"
	if len(d.syncedDays) > 0 {
		lastSynced = d.syncedDays[0].Date
	}
	workspace := a.cfg.Clockify.WorkspaceID
	if workspace == "" {
		workspace = "not configured"
	}

	cards := []struct{ Label, Value, Detail string }{
		{
			Label:  "SYNCED DAYS",
			Value:  fmt.Sprintf("%d", len(d.syncedDays)),
			Detail: "marked complete",
		},
		{
			Label:  "PENDING",
			Value:  fmt.Sprintf("%d", d.pendingDays),
			Detail: "weekdays to sync",
		},
		{
			Label:  "LAST SYNCED",
			Value:  lastSynced,
			Detail: truncStr(workspace, 20),
		},
	}
	b.WriteString(components.MetricCardRow(cards, width))
	b.WriteString("\n")

	half := components.LayoutRow(width, 2)
	days := components.ContentCard("Recent Synced Days",
		a.renderSyncedDays(components.CardInnerWidth(half[0])), half[0])
	run := components.ContentCard("Last Run",
		a.renderLastRun(components.CardInnerWidth(half[1])), half[1])
	b.WriteString(components.CardRow([]string{days, run}))

	return b.String()
}

func (a App) renderSyncedDays(width int) string {
	t := theme.Active
	d := a.data

	dimStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	if len(d.syncedDays) == 0 {
		hint := "Nothing synced yet."
		if d.pendingDays > 0 {
			hint += fmt.Sprintf(" Run `cclock sync` to post %d pending days.", d.pendingDays)
		}
		return dimStyle.Render(truncStr(hint, width))
	}

	dateStyle := lipgloss.NewStyle().Foreground(t.TextPrimary)
	okStyle := lipgloss.NewStyle().Foreground(t.Green)

	var b strings.Builder
	for i, day := range d.syncedDays {
		if i >= 10 {
			fmt.Fprintf(&b, "%s\n", dimStyle.Render(fmt.Sprintf("… and %d more", len(d.syncedDays)-i)))
			break
		}
		entries := ""
		if n, ok := d.entryCounts[day.Date]; ok {
			entries = fmt.Sprintf("%d entries", n)
		}
		syncedAt := day.SyncedAt
		if ts, err := time.Parse(time.RFC3339, day.SyncedAt); err == nil {
			syncedAt = ts.Local().Format("Jan 2 15:04")
		}
		fmt.Fprintf(&b, "%s %s  %s  %s\n",
			okStyle.Render("✓"),
			dateStyle.Render(day.Date),
			dimStyle.Render(syncedAt),
			dimStyle.Render(entries),
		)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (a App) renderLastRun(width int) string {
	t := theme.Active
	d := a.data

	dimStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	if d.lastRun == nil {
		return dimStyle.Render("No sync runs recorded.")
	}

	run := d.lastRun
	var b strings.Builder

	status := lipgloss.NewStyle().Foreground(t.Green).Render("✓ completed")
	if run.Error != "" {
		status = lipgloss.NewStyle().Foreground(t.Red).Render("✗ failed")
	}

	took := run.FinishedAt.Sub(run.StartedAt).Round(100 * time.Millisecond)
	fmt.Fprintf(&b, "%s\n\n", status)
	fmt.Fprintf(&b, "Started   %s\n", dimStyle.Render(run.StartedAt.Local().Format("Jan 2 15:04:05")))
	fmt.Fprintf(&b, "Took      %s\n", dimStyle.Render(took.String()))
	fmt.Fprintf(&b, "Days      %s\n", dimStyle.Render(cli.FormatNumber(int64(run.DaysSynced))))
	fmt.Fprintf(&b, "Entries   %s\n", dimStyle.Render(cli.FormatNumber(int64(run.EntriesPosted))))
	if run.Error != "" {
		errStyle := lipgloss.NewStyle().Foreground(t.Red)
		fmt.Fprintf(&b, "\n%s", errStyle.Render(truncStr(run.Error, width)))
	}
	return strings.TrimRight(b.String(), "\n")
}
