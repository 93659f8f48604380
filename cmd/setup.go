package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/cclock/internal/config"
	"github.com/theirongolddev/cclock/internal/source"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	reader := bufio.NewReader(os.Stdin)

	// Load existing config or defaults
	cfg := loadConfig()

	files, _ := source.ScanDir(config.ClaudeProjectsDir(cfg))
	projectCount := source.CountProjects(files)

	fmt.Println()
	fmt.Println("  Welcome to cclock!")
	fmt.Println()
	if len(files) > 0 {
		fmt.Printf("  Found %d transcripts in %s (%d projects)\n\n",
			len(files), config.ClaudeProjectsDir(cfg), projectCount)
	}

	// 1. API key
	fmt.Println("  1. Clockify API key")
	fmt.Println("     From clockify.me > Profile Settings > API.")
	existing := config.GetAPIKey(cfg)
	if existing != "" {
		fmt.Printf("     Current: %s\n", maskAPIKey(existing))
	}
	fmt.Print("     > ")
	apiKey, _ := reader.ReadString('\n')
	apiKey = strings.TrimSpace(apiKey)
	if apiKey != "" {
		cfg.Clockify.APIKey = apiKey
	}
	fmt.Println()

	// 2. Workspace
	fmt.Println("  2. Clockify workspace ID")
	fmt.Println("     From the workspace settings URL: clockify.me/workspaces/<id>/settings")
	if cfg.Clockify.WorkspaceID != "" {
		fmt.Printf("     Current: %s\n", cfg.Clockify.WorkspaceID)
	}
	fmt.Print("     > ")
	workspace, _ := reader.ReadString('\n')
	workspace = strings.TrimSpace(workspace)
	if workspace != "" {
		cfg.Clockify.WorkspaceID = workspace
	}
	fmt.Println()

	// 3. Workday window
	fmt.Printf("  3. Work day window (local time, currently %s - %s)\n", cfg.Workday.Start, cfg.Workday.End)
	fmt.Print("     Start (HH:MM) > ")
	start, _ := reader.ReadString('\n')
	if start = strings.TrimSpace(start); start != "" {
		if !validTimeOfDay(start) {
			return fmt.Errorf("invalid time of day %q, expected HH:MM", start)
		}
		cfg.Workday.Start = start
	}
	fmt.Print("     End   (HH:MM) > ")
	end, _ := reader.ReadString('\n')
	if end = strings.TrimSpace(end); end != "" {
		if !validTimeOfDay(end) {
			return fmt.Errorf("invalid time of day %q, expected HH:MM", end)
		}
		cfg.Workday.End = end
	}
	fmt.Println()

	// 4. Other bucket
	fmt.Println("  4. Catch-all Clockify project for unmapped directories")
	fmt.Println("     Leave blank to make unmapped directories a sync error instead.")
	if cfg.Workday.OtherProjectID != "" {
		fmt.Printf("     Current: %s\n", cfg.Workday.OtherProjectID)
	}
	fmt.Print("     > ")
	other, _ := reader.ReadString('\n')
	if other = strings.TrimSpace(other); other != "" {
		cfg.Workday.OtherProjectID = other
	}

	// Save
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.ConfigPath())
	fmt.Println("  Map working directories to project IDs under [projects];")
	fmt.Println("  `cclock projects --remote` lists the IDs in your workspace.")
	fmt.Println()

	return nil
}

func validTimeOfDay(hm string) bool {
	_, err := time.Parse("15:04", hm)
	return err == nil
}
