package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/cclock/internal/tui/theme"
)

// RenderStatusBar renders the bottom status bar with key hints on the left
// and refresh state on the right.
func RenderStatusBar(width int, lastRefresh string, refreshing, autoRefresh bool) string {
	t := theme.Active

	style := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Width(width)

	left := " [?]help  [r]efresh  [q]uit"

	right := ""
	switch {
	case refreshing:
		right = "refreshing... "
	case lastRefresh != "":
		right = "updated " + lastRefresh + " "
	}
	if autoRefresh {
		right = "auto  " + right
	}

	padding := width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 0 {
		padding = 0
	}

	var b []byte
	b = append(b, left...)
	for i := 0; i < padding; i++ {
		b = append(b, ' ')
	}
	b = append(b, right...)

	return style.Render(string(b))
}
