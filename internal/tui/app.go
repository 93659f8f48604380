// Package tui provides the interactive Bubble Tea dashboard for cclock.
package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/cclock/internal/config"
	"github.com/theirongolddev/cclock/internal/ledger"
	"github.com/theirongolddev/cclock/internal/model"
	"github.com/theirongolddev/cclock/internal/pipeline"
	syncer "github.com/theirongolddev/cclock/internal/sync"
	"github.com/theirongolddev/cclock/internal/tui/components"
	"github.com/theirongolddev/cclock/internal/tui/theme"
)

// dashboardData is everything one refresh pass produces for the three tabs.
type dashboardData struct {
	recent        []model.Session // all sessions, most recent first
	todayProjects []model.ProjectStats
	todayHourly   []model.HourlyStats
	todaySessions int
	todaySecs     int64
	todayTokens   int64
	days          []model.DayStats

	syncedDays  []ledger.SyncedDay
	entryCounts map[string]int // synced date -> posted entries
	lastRun     *ledger.RunRecord
	pendingDays int

	allocs   []model.Allocation
	allocErr error
}

// RefreshDoneMsg is sent when a ledger refresh and reload completes.
type RefreshDoneMsg struct {
	Data dashboardData
	Err  error
	Took time.Duration
}

type tickMsg struct{}

// App is the root Bubble Tea model.
type App struct {
	cfg   config.Config
	store *ledger.Store

	data     dashboardData
	loaded   bool
	loadTime time.Duration

	autoRefresh     bool
	refreshInterval time.Duration
	lastRefresh     time.Time
	refreshing      bool
	refreshErr      string

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool

	// Sessions tab
	sessCursor int
	sessOffset int

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals setupValues
	needSetup bool

	spinner spinner.Model
}

const (
	minTerminalWidth = 70
	maxContentWidth  = 160
	minContentHeight = 5
)

// NewApp creates the dashboard model. The store handle stays owned by the
// caller; the app is its only user while the program runs.
func NewApp(cfg config.Config, store *ledger.Store) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent)

	return App{
		cfg:             cfg,
		store:           store,
		needSetup:       !config.Exists(),
		autoRefresh:     true,
		refreshInterval: 30 * time.Second,
		spinner:         sp,
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnableMouseCellMotion,
		refreshCmd(a.cfg, a.store),
		a.spinner.Tick,
		tickCmd(),
	)
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		return a, nil

	case tea.MouseMsg:
		if !a.loaded || a.showHelp || (a.needSetup && a.setupForm != nil) {
			return a, nil
		}

		switch msg.Button {
		case tea.MouseButtonWheelUp:
			if a.activeTab == 1 && a.sessCursor > 0 {
				a.sessCursor--
			}
			return a, nil

		case tea.MouseButtonWheelDown:
			if a.activeTab == 1 && a.sessCursor < len(a.data.recent)-1 {
				a.sessCursor++
			}
			return a, nil

		case tea.MouseButtonLeft:
			if msg.Y == 0 {
				if tab := a.tabAtX(msg.X); tab >= 0 {
					a.activeTab = tab
				}
			}
			return a, nil
		}
		return a, nil

	case tea.KeyMsg:
		return a.updateKey(msg)

	case RefreshDoneMsg:
		a.refreshing = false
		a.lastRefresh = time.Now()
		a.loadTime = msg.Took
		if msg.Err != nil {
			a.refreshErr = msg.Err.Error()
		} else {
			a.refreshErr = ""
			a.data = msg.Data
			a.clampSessionCursor()
		}

		if !a.loaded {
			a.loaded = true
			// Activate first-run setup after data loads
			if a.needSetup {
				a.setupForm = newSetupForm(a.data.pendingDays, len(a.data.recent), &a.setupVals)
				if a.width > 0 {
					a.setupForm = a.setupForm.WithWidth(a.width).WithHeight(a.height)
				}
				return a, a.setupForm.Init()
			}
		}
		return a, nil

	case spinner.TickMsg:
		if !a.loaded {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil

	case tickMsg:
		cmds := []tea.Cmd{tickCmd()}
		if a.loaded && a.autoRefresh && !a.refreshing {
			if time.Since(a.lastRefresh) >= a.refreshInterval {
				a.refreshing = true
				cmds = append(cmds, refreshCmd(a.cfg, a.store))
			}
		}
		return a, tea.Batch(cmds...)
	}

	// Forward unhandled messages to the setup form (cursor blinks, etc.)
	if a.needSetup && a.setupForm != nil {
		return a.updateSetupForm(msg)
	}

	return a, nil
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return a, tea.Quit
	}

	if !a.loaded {
		return a, nil
	}

	// First-run setup wizard intercepts all keys
	if a.needSetup && a.setupForm != nil {
		return a.updateSetupForm(msg)
	}

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	if key == "q" {
		return a, tea.Quit
	}

	if key == "r" && !a.refreshing {
		a.refreshing = true
		return a, refreshCmd(a.cfg, a.store)
	}
	if key == "R" {
		a.autoRefresh = !a.autoRefresh
		return a, nil
	}

	// Sessions list navigation
	if a.activeTab == 1 {
		switch key {
		case "j", "down":
			if a.sessCursor < len(a.data.recent)-1 {
				a.sessCursor++
			}
			return a, nil
		case "k", "up":
			if a.sessCursor > 0 {
				a.sessCursor--
			}
			return a, nil
		case "g":
			a.sessCursor = 0
			a.sessOffset = 0
			return a, nil
		case "G":
			a.sessCursor = len(a.data.recent) - 1
			if a.sessCursor < 0 {
				a.sessCursor = 0
			}
			return a, nil
		}
	}

	switch key {
	case "left":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
	case "right", "tab":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
	default:
		if len(key) == 1 {
			if idx := components.TabIdxByKey(rune(key[0])); idx >= 0 {
				a.activeTab = idx
			}
		}
	}
	return a, nil
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	if a.setupForm.State == huh.StateCompleted {
		if cfg, err := a.saveSetupConfig(); err == nil {
			a.cfg = cfg
		}
		a.needSetup = false
		a.setupForm = nil
		a.refreshing = true
		return a, refreshCmd(a.cfg, a.store)
	}

	if a.setupForm.State == huh.StateAborted {
		a.needSetup = false
		a.setupForm = nil
		return a, nil
	}

	return a, cmd
}

func (a *App) clampSessionCursor() {
	if a.sessCursor >= len(a.data.recent) {
		a.sessCursor = len(a.data.recent) - 1
	}
	if a.sessCursor < 0 {
		a.sessCursor = 0
	}
}

func (a App) contentWidth() int {
	cw := a.width
	if cw > maxContentWidth {
		cw = maxContentWidth
	}
	return cw
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if !a.loaded {
		return a.viewLoading()
	}
	if a.needSetup && a.setupForm != nil {
		return a.setupForm.View()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := a.height
	if h < 5 {
		h = 5
	}
	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  cclock needs at least %d columns.\n",
		a.width, minTerminalWidth,
	)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Padding(1, 3)

	logoStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(t.TextMuted)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◷ cclock"))
	b.WriteString(subtitleStyle.Render(" · Claude time tracking"))
	b.WriteString("\n\n")
	b.WriteString(a.spinner.View())
	b.WriteString(subtitleStyle.Render(" Scanning transcripts..."))

	card := cardStyle.Render(b.String())

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Padding(1, 3)

	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Cyan).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim)

	var b strings.Builder
	b.WriteString(titleStyle.Render("Keyboard Shortcuts"))
	b.WriteString("\n\n")

	bindings := []struct{ key, desc string }{
		{"t s y", "Jump to tab"},
		{"← → tab", "Previous / Next tab"},
		{"j k", "Navigate sessions"},
		{"g G", "First / Last session"},
		{"r", "Refresh now"},
		{"R", "Toggle auto-refresh"},
		{"?", "Toggle help"},
		{"q", "Quit"},
	}
	for _, bind := range bindings {
		fmt.Fprintf(&b, "  %s  %s\n",
			keyStyle.Render(fmt.Sprintf("%-9s", bind.key)),
			descStyle.Render(bind.desc))
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	card := cardStyle.Render(b.String())

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	header := components.RenderTabBar(a.activeTab, w)

	refreshAge := ""
	if !a.lastRefresh.IsZero() {
		refreshAge = a.lastRefresh.Format("15:04:05")
	}
	statusBar := components.RenderStatusBar(w, refreshAge, a.refreshing, a.autoRefresh)

	headerH := lipgloss.Height(header)
	statusH := lipgloss.Height(statusBar)
	contentH := h - headerH - statusH
	if contentH < minContentHeight {
		contentH = minContentHeight
	}

	var content string
	switch a.activeTab {
	case 0:
		content = a.renderTodayTab(cw)
	case 1:
		content = a.renderSessionsTab(cw, contentH)
	case 2:
		content = a.renderSyncTab(cw)
	}

	if a.refreshErr != "" {
		errStyle := lipgloss.NewStyle().Foreground(t.Red)
		content = errStyle.Render("  refresh failed: "+truncStr(a.refreshErr, cw-20)) + "\n" + content
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)

	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// ─── Data loading ───────────────────────────────────────────────

// refreshCmd rescans transcripts into the ledger and reloads everything the
// tabs show. Runs in a tea.Cmd goroutine; the app starts at most one at a
// time, so the store keeps a single writer.
func refreshCmd(cfg config.Config, store *ledger.Store) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()

		_, err := pipeline.Refresh(store, pipeline.RefreshOptions{
			ProjectsDir:   config.ClaudeProjectsDir(cfg),
			IdleThreshold: config.IdleThreshold(cfg),
			ManifestPath:  pipeline.ManifestPath(),
		})
		if err != nil {
			return RefreshDoneMsg{Err: err, Took: time.Since(start)}
		}

		data, err := collectDashboard(cfg, store)
		return RefreshDoneMsg{Data: data, Err: err, Took: time.Since(start)}
	}
}

func collectDashboard(cfg config.Config, store *ledger.Store) (dashboardData, error) {
	var d dashboardData

	sessions, err := store.LoadAllSessions()
	if err != nil {
		return d, err
	}

	d.recent = make([]model.Session, len(sessions))
	copy(d.recent, sessions)
	sort.Slice(d.recent, func(i, j int) bool {
		return d.recent[i].Start.After(d.recent[j].Start)
	})

	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	today := pipeline.FilterByTime(sessions, dayStart, dayStart.Add(24*time.Hour))
	d.todaySessions = len(today)
	d.todayProjects = pipeline.AggregateProjects(today, time.Time{}, time.Time{})
	d.todayHourly = pipeline.AggregateTodayHourly(sessions)
	for _, s := range today {
		d.todaySecs += int64(s.Duration / time.Second)
		d.todayTokens += s.Tokens.Total()
	}
	d.days = pipeline.AggregateDays(sessions, now.AddDate(0, 0, -13), now)

	d.syncedDays, err = store.SyncedDays(cfg.Clockify.WorkspaceID)
	if err != nil {
		return d, err
	}
	d.entryCounts = make(map[string]int, len(d.syncedDays))
	for i, day := range d.syncedDays {
		if i >= 10 {
			break
		}
		entries, err := store.EntriesForDay(day.Date, cfg.Clockify.WorkspaceID)
		if err != nil {
			return d, err
		}
		d.entryCounts[day.Date] = len(entries)
	}

	runs, err := store.RecentRuns(1)
	if err != nil {
		return d, err
	}
	if len(runs) > 0 {
		d.lastRun = &runs[0]
	}

	d.pendingDays = countPendingDays(sessions, d.syncedDays, now)

	// Allocation preview for today's activity
	if startUTC, endUTC, ok := workdayWindow(cfg, now); ok {
		windowed, err := store.QueryRange(startUTC, endUTC)
		if err != nil {
			return d, err
		}
		d.allocs, d.allocErr = syncer.Allocate(
			windowed, cfg.Projects, cfg.Workday.OtherProjectID, startUTC, endUTC)
	}

	return d, nil
}

// workdayWindow converts the configured HH:MM window on the given local day
// to UTC instants. ok is false when the config does not parse.
func workdayWindow(cfg config.Config, day time.Time) (time.Time, time.Time, bool) {
	start, err1 := time.Parse("15:04", cfg.Workday.Start)
	end, err2 := time.Parse("15:04", cfg.Workday.End)
	if err1 != nil || err2 != nil {
		return time.Time{}, time.Time{}, false
	}
	local := day.Local()
	s := time.Date(local.Year(), local.Month(), local.Day(), start.Hour(), start.Minute(), 0, 0, time.Local)
	e := time.Date(local.Year(), local.Month(), local.Day(), end.Hour(), end.Minute(), 0, 0, time.Local)
	return s.UTC(), e.UTC(), true
}

func countPendingDays(sessions []model.Session, syncedDays []ledger.SyncedDay, now time.Time) int {
	synced := make(map[string]bool, len(syncedDays))
	for _, d := range syncedDays {
		synced[d.Date] = true
	}

	today := now.Local().Format("2006-01-02")
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

func tickCmd() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// ─── Helpers ────────────────────────────────────────────────────

func truncStr(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// ─── Mouse support ──────────────────────────────────────────────

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes are derived from the same width rules used by RenderTabBar.
func (a App) tabAtX(x int) int {
	pos := 1 // leading space in the tab bar
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW
		if i < len(components.Tabs)-1 {
			pos++ // separator
		}
	}
	return -1
}
