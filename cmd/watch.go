package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/cclock/internal/tui"
	"github.com/theirongolddev/cclock/internal/tui/theme"
)

var flagWatchTheme string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Full-screen dashboard with live refresh",
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&flagWatchTheme, "theme", theme.FlexokiDark.Name,
		"color theme (flexoki-dark, terminal)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(_ *cobra.Command, _ []string) error {
	cfg := loadConfig()

	theme.SetActive(flagWatchTheme)
	if theme.Active.Name != theme.Terminal.Name {
		// Force TrueColor so the hex palette produces ANSI codes even when
		// lipgloss would otherwise detect a lesser profile.
		lipgloss.SetColorProfile(termenv.TrueColor)
	}

	store, err := openLedger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	app := tui.NewApp(cfg, store)
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("dashboard error: %w", err)
	}

	return nil
}
