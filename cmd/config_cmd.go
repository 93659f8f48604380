// Package cmd implements the cclock CLI commands.
package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/cclock/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Transcripts:    %s\n", config.ClaudeProjectsDir(cfg))
	fmt.Printf("    Idle threshold: %s\n", config.IdleThreshold(cfg))
	fmt.Println()

	fmt.Println("  [Clockify]")
	apiKey := config.GetAPIKey(cfg)
	if apiKey != "" {
		fmt.Printf("    API key:      %s\n", maskAPIKey(apiKey))
	} else {
		fmt.Println("    API key:      not configured")
	}
	if cfg.Clockify.WorkspaceID != "" {
		fmt.Printf("    Workspace:    %s\n", cfg.Clockify.WorkspaceID)
	} else {
		fmt.Println("    Workspace:    not configured")
	}
	if cfg.Clockify.BaseURL != "" {
		fmt.Printf("    Base URL:     %s\n", cfg.Clockify.BaseURL)
	}
	fmt.Printf("    Description:  %s\n", cfg.Clockify.Description)
	fmt.Println()

	fmt.Println("  [Workday]")
	fmt.Printf("    Window:        %s - %s local\n", cfg.Workday.Start, cfg.Workday.End)
	if cfg.Workday.OtherProjectID != "" {
		fmt.Printf("    Other bucket:  %s\n", cfg.Workday.OtherProjectID)
	} else {
		fmt.Println("    Other bucket:  disabled (unmapped projects fail the sync)")
	}
	fmt.Println()

	fmt.Printf("  [Projects]  %d mappings\n", len(cfg.Projects))
	paths := make([]string, 0, len(cfg.Projects))
	for path := range cfg.Projects {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	for _, path := range paths {
		fmt.Printf("    %s = %s\n", path, cfg.Projects[path])
	}
	fmt.Println()

	fmt.Println("  Run `cclock setup` to reconfigure.")
	return nil
}

func maskAPIKey(key string) string {
	if len(key) > 16 {
		return key[:8] + "..." + key[len(key)-4:]
	}
	if len(key) > 4 {
		return key[:4] + "..."
	}
	return "****"
}
