package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/cclock/internal/config"
	"github.com/theirongolddev/cclock/internal/ledger"
	"github.com/theirongolddev/cclock/internal/pipeline"
)

var (
	flagClaudeDir string
	flagDBPath    string
	flagNoRefresh bool
	flagQuiet     bool
)

var rootCmd = &cobra.Command{
	Use:   "cclock",
	Short: "Claude Code time tracking for Clockify",
	Long:  "Turn Claude Code activity into billable time: assemble sessions from transcripts, allocate work days, and sync entries to Clockify.",
	RunE:  runToday,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagClaudeDir, "claude-dir", "d", "", "Claude projects directory (default ~/.claude/projects)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Ledger database path (default XDG data dir)")
	rootCmd.PersistentFlags().BoolVar(&flagNoRefresh, "no-refresh", false, "Skip the transcript scan, use stored sessions as-is")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
}

func loadConfig() config.Config {
	cfg, err := config.Load()
	if err != nil && !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Config error, using defaults: %v\n", err)
	}
	if flagClaudeDir != "" {
		cfg.General.ClaudeDir = flagClaudeDir
	}
	return cfg
}

func openLedger(cfg config.Config) (*ledger.Store, error) {
	path := flagDBPath
	if path == "" {
		path = config.LedgerPath()
	}
	store, err := ledger.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening ledger %s: %w", path, err)
	}
	return store, nil
}

// refreshLedger runs a transcript scan unless --no-refresh was given.
func refreshLedger(store *ledger.Store, cfg config.Config) (*pipeline.RefreshResult, error) {
	if flagNoRefresh {
		return nil, nil
	}

	progressFn := func(current, total int) {
		if flagQuiet {
			return
		}
		if current%100 == 0 || current == total {
			fmt.Fprintf(os.Stderr, "\r  Scanning [%d/%d]", current, total)
		}
	}

	result, err := pipeline.Refresh(store, pipeline.RefreshOptions{
		ProjectsDir:   config.ClaudeProjectsDir(cfg),
		IdleThreshold: config.IdleThreshold(cfg),
		ManifestPath:  pipeline.ManifestPath(),
		Progress:      progressFn,
	})
	if err != nil {
		return nil, err
	}

	if !flagQuiet && result.TotalFiles > 0 {
		fmt.Fprintf(os.Stderr, "\r  %d transcripts (%d changed, %d projects)    \n",
			result.TotalFiles, result.Parsed, result.ProjectCount)
	}
	if !flagQuiet && result.FileErrors > 0 {
		fmt.Fprintf(os.Stderr, "  %d files could not be read\n", result.FileErrors)
	}

	return result, nil
}
