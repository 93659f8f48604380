package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/theirongolddev/cclock/internal/config"
)

// setupValues receives the first-run wizard's answers.
type setupValues struct {
	apiKey      string
	workspaceID string
	dayStart    string
	dayEnd      string
	otherID     string
}

// newSetupForm builds the first-run wizard shown when no config file exists
// yet. Every field may be left blank; blanks keep the defaults.
func newSetupForm(pendingDays, sessionCount int, vals *setupValues) *huh.Form {
	welcome := fmt.Sprintf(
		"Found %d sessions in your transcripts (%d weekdays not yet synced).\n"+
			"Answer a few questions to enable Clockify sync, or press esc to skip.",
		sessionCount, pendingDays)

	defaults := config.DefaultConfig()
	vals.dayStart = defaults.Workday.Start
	vals.dayEnd = defaults.Workday.End

	validTime := func(s string) error {
		if s == "" {
			return nil
		}
		if _, err := time.Parse("15:04", s); err != nil {
			return fmt.Errorf("use HH:MM, e.g. 09:00")
		}
		return nil
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to cclock").
				Description(welcome),

			huh.NewInput().
				Title("Clockify API key").
				Description("From clockify.me profile settings. Blank to configure later.").
				EchoMode(huh.EchoModePassword).
				Value(&vals.apiKey),

			huh.NewInput().
				Title("Workspace ID").
				Description("The Clockify workspace to post time entries to.").
				Value(&vals.workspaceID),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Workday start").
				Description("Local time the billable day begins.").
				Validate(validTime).
				Value(&vals.dayStart),

			huh.NewInput().
				Title("Workday end").
				Validate(validTime).
				Value(&vals.dayEnd),

			huh.NewInput().
				Title("Catch-all project ID").
				Description("Clockify project for unmapped work. Blank to require explicit mappings.").
				Value(&vals.otherID),
		),
	).WithShowHelp(true)
}

// saveSetupConfig merges the wizard answers into the on-disk config,
// keeping defaults for anything left blank, and returns the saved config.
func (a App) saveSetupConfig() (config.Config, error) {
	cfg := a.cfg
	v := a.setupVals

	if v.apiKey != "" {
		cfg.Clockify.APIKey = v.apiKey
	}
	if v.workspaceID != "" {
		cfg.Clockify.WorkspaceID = v.workspaceID
	}
	if v.dayStart != "" {
		cfg.Workday.Start = v.dayStart
	}
	if v.dayEnd != "" {
		cfg.Workday.End = v.dayEnd
	}
	if v.otherID != "" {
		cfg.Workday.OtherProjectID = v.otherID
	}

	if err := config.Save(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
