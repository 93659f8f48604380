package config

import (
	"testing"
	"time"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.General.IdleMinutes != 15 {
		t.Errorf("IdleMinutes = %d, want 15", cfg.General.IdleMinutes)
	}
	if cfg.Workday.Start != "09:00" || cfg.Workday.End != "17:00" {
		t.Errorf("workday = %s-%s, want 09:00-17:00", cfg.Workday.Start, cfg.Workday.End)
	}
	if cfg.Clockify.Description != "Development" {
		t.Errorf("Description = %q, want Development", cfg.Clockify.Description)
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := DefaultConfig()
	cfg.General.IdleMinutes = 20
	cfg.Clockify.APIKey = "key-123"
	cfg.Clockify.WorkspaceID = "ws-1"
	cfg.Workday.OtherProjectID = "other-9"
	cfg.Projects = map[string]string{
		"/home/me/work/acme": "proj-acme",
	}

	if err := Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !Exists() {
		t.Fatal("Exists = false after Save")
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.General.IdleMinutes != 20 {
		t.Errorf("IdleMinutes = %d, want 20", loaded.General.IdleMinutes)
	}
	if loaded.Clockify.WorkspaceID != "ws-1" {
		t.Errorf("WorkspaceID = %q, want ws-1", loaded.Clockify.WorkspaceID)
	}
	if loaded.Workday.OtherProjectID != "other-9" {
		t.Errorf("OtherProjectID = %q, want other-9", loaded.Workday.OtherProjectID)
	}
	if got := loaded.Projects["/home/me/work/acme"]; got != "proj-acme" {
		t.Errorf("Projects mapping = %q, want proj-acme", got)
	}
}

func TestGetAPIKey_EnvWins(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Clockify.APIKey = "from-config"

	t.Setenv("CLOCKIFY_API_KEY", "from-env")
	if got := GetAPIKey(cfg); got != "from-env" {
		t.Errorf("GetAPIKey = %q, want from-env", got)
	}

	t.Setenv("CLOCKIFY_API_KEY", "")
	if got := GetAPIKey(cfg); got != "from-config" {
		t.Errorf("GetAPIKey = %q, want from-config", got)
	}
}

func TestIdleThreshold(t *testing.T) {
	cfg := DefaultConfig()
	if got := IdleThreshold(cfg); got != 15*time.Minute {
		t.Errorf("IdleThreshold = %v, want 15m", got)
	}

	cfg.General.IdleMinutes = 30
	if got := IdleThreshold(cfg); got != 30*time.Minute {
		t.Errorf("IdleThreshold = %v, want 30m", got)
	}

	cfg.General.IdleMinutes = -1
	if got := IdleThreshold(cfg); got != 15*time.Minute {
		t.Errorf("IdleThreshold with negative = %v, want 15m", got)
	}
}
