package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/cclock/internal/tui/theme"
)

// ProgressBar renders a solid progress bar with a trailing percentage.
func ProgressBar(pct float64, width int) string {
	t := theme.Active

	if pct < 0 {
		pct = 0
	}
	if pct > 1 {
		pct = 1
	}

	bar := progress.New(
		progress.WithSolidFill(string(t.Accent)),
		progress.WithWidth(width),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	pctStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	return bar.ViewAs(pct) + spaceStyle.Render(" ") + pctStyle.Render(fmt.Sprintf("%.0f%%", pct*100))
}

// Segment is one span of a SegmentBar with a share of the total width.
type Segment struct {
	Label string
	Share float64 // 0..1, shares should sum to 1
	Color lipgloss.Color
}

// SegmentBar renders a single-row bar split into proportional colored
// segments, used for the work-day allocation preview. The last segment
// absorbs rounding leftovers so the bar is always exactly width cells.
func SegmentBar(segments []Segment, width int) string {
	if len(segments) == 0 || width <= 0 {
		return ""
	}

	var b strings.Builder
	used := 0
	for i, seg := range segments {
		w := int(seg.Share * float64(width))
		if i == len(segments)-1 {
			w = width - used
		}
		if w <= 0 {
			continue
		}
		used += w
		style := lipgloss.NewStyle().Foreground(seg.Color)
		b.WriteString(style.Render(strings.Repeat("█", w)))
	}
	return b.String()
}

// SegmentColors cycles a stable palette for segment bars and legends.
func SegmentColors() []lipgloss.Color {
	t := theme.Active
	return []lipgloss.Color{t.Blue, t.Green, t.Orange, t.Yellow, t.Cyan, t.Red}
}
