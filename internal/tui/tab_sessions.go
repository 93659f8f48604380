package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/cclock/internal/cli"
	"github.com/theirongolddev/cclock/internal/tui/components"
	"github.com/theirongolddev/cclock/internal/tui/theme"
)

func (a App) renderSessionsTab(width, height int) string {
	t := theme.Active
	d := a.data

	if len(d.recent) == 0 {
		return components.ContentCard("Sessions",
			lipgloss.NewStyle().Foreground(t.TextDim).Render("No sessions recorded yet. Press r to rescan."),
			width)
	}

	inner := components.CardInnerWidth(width)
	// Rows available inside the card: border, title and padding eat from
	// the tab's height.
	visible := height - 7
	if visible < 3 {
		visible = 3
	}

	offset := a.sessOffset
	if a.sessCursor < offset {
		offset = a.sessCursor
	}
	if a.sessCursor >= offset+visible {
		offset = a.sessCursor - visible + 1
	}

	dimStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	nameStyle := lipgloss.NewStyle().Foreground(t.TextPrimary)
	cursorStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Bold(true)
	rowHover := lipgloss.NewStyle().Background(t.SurfaceHover)

	nameWidth := inner - 44
	if nameWidth < 12 {
		nameWidth = 12
	}

	var b strings.Builder

	header := fmt.Sprintf("  %-10s  %-13s  %-*s  %8s  %8s",
		"DATE", "SPAN", nameWidth, "PROJECT", "ACTIVE", "TOKENS")
	b.WriteString(dimStyle.Render(truncStr(header, inner)))
	b.WriteString("\n")

	end := offset + visible
	if end > len(d.recent) {
		end = len(d.recent)
	}
	for i := offset; i < end; i++ {
		s := d.recent[i]
		marker := "  "
		row := fmt.Sprintf("%-10s  %-13s  %s  %8s  %8s",
			s.Start.Local().Format("2006-01-02"),
			cli.FormatTimeRange(s.Start, s.End),
			nameStyle.Render(fmt.Sprintf("%-*s", nameWidth, truncStr(filepath.Base(s.Project), nameWidth))),
			cli.FormatDuration(int64(s.Duration.Seconds())),
			cli.FormatTokens(s.Tokens.Total()),
		)
		if i == a.sessCursor {
			marker = cursorStyle.Render("▌ ")
			row = rowHover.Render(row)
		}
		b.WriteString(marker + row + "\n")
	}

	fmt.Fprintf(&b, "\n%s",
		dimStyle.Render(fmt.Sprintf("%d/%d  j/k to move, g/G to jump", a.sessCursor+1, len(d.recent))))

	title := fmt.Sprintf("Sessions (%d)", len(d.recent))
	return components.ContentCard(title, strings.TrimRight(b.String(), "\n"), width)
}
