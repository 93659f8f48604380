package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/cclock/internal/cli"
	"github.com/theirongolddev/cclock/internal/model"
	"github.com/theirongolddev/cclock/internal/tui/components"
	"github.com/theirongolddev/cclock/internal/tui/theme"
)

func (a App) renderTodayTab(width int) string {
	d := a.data

	var b strings.Builder

	cards := []struct{ Label, Value, Detail string }{
		{
			Label:  "ACTIVE TIME",
			Value:  cli.FormatDuration(d.todaySecs),
			Detail: fmt.Sprintf("%d sessions", d.todaySessions),
		},
		{
			Label:  "TOKENS",
			Value:  cli.FormatTokens(d.todayTokens),
			Detail: "today",
		},
		{
			Label:  "PROJECTS",
			Value:  fmt.Sprintf("%d", len(d.todayProjects)),
			Detail: "active today",
		},
		{
			Label:  "PENDING SYNC",
			Value:  fmt.Sprintf("%d", d.pendingDays),
			Detail: "weekdays",
		},
	}
	b.WriteString(components.MetricCardRow(cards, width))
	b.WriteString("\n")

	b.WriteString(components.ContentCard("Workday Allocation", a.renderAllocation(components.CardInnerWidth(width)), width))
	b.WriteString("\n")

	half := components.LayoutRow(width, 2)
	projects := components.ContentCard("By Project",
		a.renderTodayProjects(components.CardInnerWidth(half[0])), half[0])
	hourly := components.ContentCard("Activity by Hour",
		a.renderHourly(components.CardInnerWidth(half[1])), half[1])
	b.WriteString(components.CardRow([]string{projects, hourly}))

	return b.String()
}

func hasUnmapped(projects []model.ProjectStats) bool {
	for _, p := range projects {
		if p.ProjectID == "" {
			return true
		}
	}
	return false
}

// renderAllocation shows how today's activity would split across Clockify
// buckets if synced now.
func (a App) renderAllocation(width int) string {
	t := theme.Active
	d := a.data

	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim)
	if d.allocErr != nil {
		return lipgloss.NewStyle().Foreground(t.Orange).
			Render(truncStr(d.allocErr.Error(), width))
	}
	if len(d.allocs) == 0 {
		return dimStyle.Render("No activity inside today's workday window yet.")
	}

	colors := components.SegmentColors()
	total := int64(0)
	for _, al := range d.allocs {
		total += int64(al.Duration().Seconds())
	}

	var segments []components.Segment
	var b strings.Builder
	labelStyle := lipgloss.NewStyle().Foreground(t.TextPrimary)
	for i, al := range d.allocs {
		share := 0.0
		if total > 0 {
			share = al.Duration().Seconds() / float64(total)
		}
		color := colors[i%len(colors)]
		segments = append(segments, components.Segment{
			Label: al.ProjectID,
			Share: share,
			Color: color,
		})

		dot := lipgloss.NewStyle().Foreground(color).Render("●")
		fmt.Fprintf(&b, "%s %s  %s  %s\n",
			dot,
			labelStyle.Render(truncStr(al.ProjectID, width-30)),
			dimStyle.Render(cli.FormatTimeRange(al.Start, al.End)),
			dimStyle.Render(cli.FormatPercent(share)),
		)
	}

	return components.SegmentBar(segments, width) + "\n\n" + strings.TrimRight(b.String(), "\n")
}

func (a App) renderTodayProjects(width int) string {
	t := theme.Active
	d := a.data

	if len(d.todayProjects) == 0 {
		return lipgloss.NewStyle().Foreground(t.TextDim).Render("No sessions today.")
	}

	nameStyle := lipgloss.NewStyle().Foreground(t.TextPrimary)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	unmappedStyle := lipgloss.NewStyle().Foreground(t.Orange)

	var maxSecs int64
	for _, p := range d.todayProjects {
		if p.ActiveSecs > maxSecs {
			maxSecs = p.ActiveSecs
		}
	}

	barWidth := 14
	nameWidth := width - barWidth - 22
	if nameWidth < 10 {
		nameWidth = 10
	}

	var b strings.Builder
	for i, p := range d.todayProjects {
		if i >= 8 {
			fmt.Fprintf(&b, "%s\n", dimStyle.Render(fmt.Sprintf("… and %d more", len(d.todayProjects)-i)))
			break
		}
		name := truncStr(filepath.Base(p.Project), nameWidth)
		mark := " "
		if p.ProjectID == "" {
			mark = unmappedStyle.Render("!")
		}
		fmt.Fprintf(&b, "%s %-*s %s %s\n",
			mark,
			nameWidth, nameStyle.Render(name),
			cli.RenderBar(float64(p.ActiveSecs), float64(maxSecs), barWidth),
			dimStyle.Render(cli.FormatDuration(p.ActiveSecs)),
		)
	}
	if hasUnmapped(d.todayProjects) {
		b.WriteString(unmappedStyle.Render("! = no Clockify mapping"))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (a App) renderHourly(width int) string {
	t := theme.Active
	d := a.data

	if len(d.todayHourly) == 0 {
		return lipgloss.NewStyle().Foreground(t.TextDim).Render("No activity yet.")
	}

	values := make([]float64, 24)
	for _, h := range d.todayHourly {
		if h.Hour >= 0 && h.Hour < 24 {
			values[h.Hour] = float64(h.ActiveSecs)
		}
	}
	labels := make([]string, 24)
	for i := range labels {
		if i%6 == 0 {
			labels[i] = fmt.Sprintf("%02d", i)
		}
	}
	return components.BarChart(values, labels, t.Accent, width, 6)
}
