package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/cclock/internal/cli"
	"github.com/theirongolddev/cclock/internal/clockify"
	"github.com/theirongolddev/cclock/internal/config"
	"github.com/theirongolddev/cclock/internal/pipeline"
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "Project activity and Clockify mappings",
	RunE:  runProjects,
}

var projectsRemote bool

func init() {
	projectsCmd.Flags().BoolVar(&projectsRemote, "remote", false, "List projects from the Clockify workspace instead")
	rootCmd.AddCommand(projectsCmd)
}

func runProjects(cmd *cobra.Command, _ []string) error {
	cfg := loadConfig()

	if projectsRemote {
		return listRemoteProjects(cmd.Context(), cfg)
	}

	store, err := openLedger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if _, err := refreshLedger(store, cfg); err != nil {
		return err
	}

	sessions, err := store.LoadAllSessions()
	if err != nil {
		return err
	}
	projects := pipeline.AggregateProjects(sessions, time.Time{}, time.Time{})

	if len(projects) == 0 {
		fmt.Println("\n  No project activity recorded.")
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("PROJECTS"))
	fmt.Println()

	rows := make([][]string, 0, len(projects))
	for _, ps := range projects {
		mapping := cfg.Projects[ps.Project]
		if mapping == "" {
			mapping = "-"
		}
		rows = append(rows, []string{
			truncate(ps.Project, 32),
			cli.FormatNumber(int64(ps.Sessions)),
			cli.FormatDuration(ps.ActiveSecs),
			cli.FormatTokens(ps.Tokens.Total()),
			truncate(mapping, 24),
		})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Project", "Sessions", "Active", "Tokens", "Clockify ID"},
		Rows:    rows,
	}))

	unmapped := 0
	for _, ps := range projects {
		if _, ok := cfg.Projects[ps.Project]; !ok {
			unmapped++
		}
	}
	if unmapped > 0 {
		if cfg.Workday.OtherProjectID != "" {
			fmt.Printf("\n  %d unmapped projects will pool into the Other project.\n\n", unmapped)
		} else {
			fmt.Printf("\n  %d unmapped projects and no other_project_id set; sync will refuse them.\n\n", unmapped)
		}
	}

	return nil
}

func listRemoteProjects(ctx context.Context, cfg config.Config) error {
	client := clockify.NewClient(config.GetAPIKey(cfg), cfg.Clockify.WorkspaceID, cfg.Clockify.BaseURL)
	if client == nil {
		return errors.New("clockify api key and workspace_id must be configured (run `cclock setup`)")
	}

	projects, err := client.Projects(ctx)
	if err != nil {
		return fmt.Errorf("listing workspace projects: %w", err)
	}

	// Reverse map to show which local paths feed each Clockify project.
	mappedBy := make(map[string][]string)
	for path, id := range cfg.Projects {
		mappedBy[id] = append(mappedBy[id], path)
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("CLOCKIFY PROJECTS"))
	fmt.Println()

	rows := make([][]string, 0, len(projects))
	for _, p := range projects {
		state := ""
		if p.Archived {
			state = "archived"
		}
		mapped := "-"
		if len(mappedBy[p.ID]) > 0 {
			mapped = fmt.Sprintf("%d paths", len(mappedBy[p.ID]))
		}
		if p.ID == cfg.Workday.OtherProjectID {
			mapped = "other pool"
		}
		rows = append(rows, []string{
			truncate(p.Name, 28),
			p.ID,
			mapped,
			state,
		})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Name", "ID", "Mapped", ""},
		Rows:    rows,
	}))
	fmt.Println()

	return nil
}
