package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/cclock/internal/tui/theme"
)

// Sparkline renders a unicode sparkline from values.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	t := theme.Active

	blocks := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	peak := values[0]
	for _, v := range values[1:] {
		if v > peak {
			peak = v
		}
	}
	if peak == 0 {
		peak = 1
	}

	style := lipgloss.NewStyle().Foreground(color).Background(t.Surface)

	var buf strings.Builder
	buf.Grow(len(values) * 4) // UTF-8 block chars are up to 3 bytes
	for _, v := range values {
		idx := int(v / peak * float64(len(blocks)-1))
		if idx >= len(blocks) {
			idx = len(blocks) - 1
		}
		if idx < 0 {
			idx = 0
		}
		buf.WriteRune(blocks[idx])
	}

	return style.Render(buf.String())
}

// BarChart renders a column chart with one-character bars and a label row
// underneath. Falls back to a sparkline when the area is too small.
func BarChart(values []float64, labels []string, color lipgloss.Color, width, height int) string {
	if len(values) == 0 {
		return ""
	}
	if width < 15 || height < 3 {
		return Sparkline(values, color)
	}

	t := theme.Active

	peak := 0.0
	for _, v := range values {
		if v > peak {
			peak = v
		}
	}
	if peak == 0 {
		peak = 1
	}

	n := len(values)
	gap := 1
	if n*2-1 > width {
		gap = 0
	}
	chartH := height - 1 // last row is labels

	barStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface)
	emptyStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	labelStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	// Bar heights in rows, minimum one row for any non-zero value.
	rows := make([]int, n)
	for i, v := range values {
		h := int(v / peak * float64(chartH))
		if h == 0 && v > 0 {
			h = 1
		}
		rows[i] = h
	}

	var b strings.Builder
	for row := chartH; row >= 1; row-- {
		for i := 0; i < n; i++ {
			if rows[i] >= row {
				b.WriteString(barStyle.Render("█"))
			} else {
				b.WriteString(emptyStyle.Render("·"))
			}
			if gap > 0 && i < n-1 {
				b.WriteString(emptyStyle.Render(" "))
			}
		}
		b.WriteString("\n")
	}

	// Label row: place each label under its bar where it fits.
	cell := 1 + gap
	labelRow := make([]rune, n*cell)
	for i := range labelRow {
		labelRow[i] = ' '
	}
	for i, label := range labels {
		if i >= n || label == "" {
			continue
		}
		pos := i * cell
		for j, r := range label {
			if pos+j >= len(labelRow) {
				break
			}
			if labelRow[pos+j] != ' ' {
				break
			}
			labelRow[pos+j] = r
		}
	}
	b.WriteString(labelStyle.Render(strings.TrimRight(string(labelRow), " ")))

	return b.String()
}
