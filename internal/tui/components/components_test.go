package components

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestLayoutRowSumsExactly(t *testing.T) {
	cases := []struct{ total, n int }{
		{100, 4},
		{101, 4},
		{103, 4},
		{80, 3},
		{7, 3},
	}
	for _, tc := range cases {
		widths := LayoutRow(tc.total, tc.n)
		if len(widths) != tc.n {
			t.Fatalf("LayoutRow(%d, %d) returned %d widths", tc.total, tc.n, len(widths))
		}
		sum := 0
		for _, w := range widths {
			sum += w
		}
		if sum != tc.total {
			t.Errorf("LayoutRow(%d, %d) sums to %d", tc.total, tc.n, sum)
		}
	}

	if got := LayoutRow(50, 0); got != nil {
		t.Errorf("LayoutRow(50, 0) = %v, want nil", got)
	}
}

func TestSegmentBarExactWidth(t *testing.T) {
	segments := []Segment{
		{Label: "a", Share: 0.37, Color: lipgloss.Color("1")},
		{Label: "b", Share: 0.41, Color: lipgloss.Color("2")},
		{Label: "c", Share: 0.22, Color: lipgloss.Color("3")},
	}
	for _, width := range []int{10, 33, 80} {
		bar := SegmentBar(segments, width)
		if got := lipgloss.Width(bar); got != width {
			t.Errorf("SegmentBar width %d rendered %d cells", width, got)
		}
	}

	if got := SegmentBar(nil, 40); got != "" {
		t.Errorf("SegmentBar(nil) = %q, want empty", got)
	}
}

func TestTabIdxByKey(t *testing.T) {
	for i, tab := range Tabs {
		if got := TabIdxByKey(tab.Key); got != i {
			t.Errorf("TabIdxByKey(%q) = %d, want %d", tab.Key, got, i)
		}
	}
	if got := TabIdxByKey('z'); got != -1 {
		t.Errorf("TabIdxByKey('z') = %d, want -1", got)
	}
}
