package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/cclock/internal/cli"
	"github.com/theirongolddev/cclock/internal/clockify"
	"github.com/theirongolddev/cclock/internal/config"
	syncer "github.com/theirongolddev/cclock/internal/sync"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Post unsynced workdays to Clockify",
	Long:  "Allocate each complete workday across your Clockify projects and post one time entry per project. Days and entries already posted are skipped, so re-running is always safe.",
	RunE:  runSync,
}

var syncDryRun bool

func init() {
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "Show what would be posted without posting")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, _ []string) error {
	cfg := loadConfig()

	store, err := openLedger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if _, err := refreshLedger(store, cfg); err != nil {
		return err
	}

	runner := syncer.NewRunner(syncer.RunnerConfig{
		Store:          store,
		WorkspaceID:    cfg.Clockify.WorkspaceID,
		ProjectMap:     cfg.Projects,
		OtherProjectID: cfg.Workday.OtherProjectID,
		WorkDayStart:   cfg.Workday.Start,
		WorkDayEnd:     cfg.Workday.End,
		Description:    cfg.Clockify.Description,
		Out:            os.Stdout,
		Post:           postCapability(cfg),
	})

	if syncDryRun {
		return printSyncPlan(runner)
	}

	if cfg.Clockify.WorkspaceID == "" || config.GetAPIKey(cfg) == "" {
		return errors.New("clockify api key and workspace_id must be configured (run `cclock setup`)")
	}

	fmt.Println()
	report, err := runner.Run(cmd.Context())
	if err != nil {
		var unmapped *syncer.UnmappedError
		if errors.As(err, &unmapped) {
			fmt.Fprintln(os.Stderr)
			fmt.Fprintln(os.Stderr, "  These working directories have no Clockify project mapping:")
			for _, p := range unmapped.Projects {
				fmt.Fprintf(os.Stderr, "    %s\n", p)
			}
			fmt.Fprintln(os.Stderr, "  Add them under [projects] in the config, or set other_project_id.")
		}
		return err
	}

	if report.DaysSynced == 0 && report.EntriesPosted == 0 {
		fmt.Println("  Everything is already synced.")
	}
	fmt.Println()
	return nil
}

// postCapability wires the Clockify client in as the runner's post function.
// A nil client (missing key or workspace) is deferred to post time so that
// --dry-run works without credentials.
func postCapability(cfg config.Config) syncer.PostFunc {
	client := clockify.NewClient(config.GetAPIKey(cfg), cfg.Clockify.WorkspaceID, cfg.Clockify.BaseURL)
	if client == nil {
		return nil
	}
	return client.PostTimeEntry
}

func printSyncPlan(runner *syncer.Runner) error {
	plans, err := runner.Plan()
	if err != nil {
		var unmapped *syncer.UnmappedError
		if errors.As(err, &unmapped) {
			fmt.Println()
			fmt.Println("  Sync would fail: unmapped working directories and no other_project_id:")
			for _, p := range unmapped.Projects {
				fmt.Printf("    %s\n", p)
			}
			fmt.Println()
			return nil
		}
		return err
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("SYNC PLAN  dry run"))
	fmt.Println()

	if len(plans) == 0 {
		fmt.Println("  Nothing to post. Everything is already synced.")
		fmt.Println()
		return nil
	}

	entries := 0
	rows := make([][]string, 0, len(plans)*2)
	for _, plan := range plans {
		for _, alloc := range plan.Allocations {
			rows = append(rows, []string{
				plan.Date,
				alloc.ProjectID,
				cli.FormatTimeRange(alloc.Start, alloc.End),
				cli.FormatDuration(int64(alloc.Duration().Seconds())),
			})
			entries++
		}
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Date", "Clockify Project", "Span", "Duration"},
		Rows:    rows,
	}))
	fmt.Printf("\n  %d days, %d entries would be posted.\n\n", len(plans), entries)
	return nil
}
