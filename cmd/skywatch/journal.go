package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"stratus-hq/skywatch/pkg/cli"
	"stratus-hq/skywatch/pkg/config"
	"stratus-hq/skywatch/pkg/journal"
)

var journalFlags struct {
	loop   string
	limit  int
	format string
}

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query the cycle journal",
	Long: `Query the acquisition cycle journal for post-hoc diagnosis.

Every completed cycle writes one entry: the attempted time index, the
outcome (stored, skipped_closed, not_yet_published, unavailable, failed),
the stored path and size, and the acquisition duration. The journal makes
an upstream outage visible after the fact.

Examples:
  # Last 20 cycles across all loops
  skywatch journal

  # Last 50 tile cycles as JSON
  skywatch journal --loop tile --limit 50 --format json`,
	RunE: queryJournal,
}

func init() {
	rootCmd.AddCommand(journalCmd)

	journalCmd.Flags().StringVar(&journalFlags.loop, "loop", "", "filter by loop name (tile, camera)")
	journalCmd.Flags().IntVar(&journalFlags.limit, "limit", 20, "maximum entries to show")
	journalCmd.Flags().StringVar(&journalFlags.format, "format", "text", "output format: text, json")
}

func queryJournal(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}

	jnl, err := journal.Open(journal.Config{
		Path:        cfg.Journal.Path,
		BusyTimeout: cfg.Journal.BusyTimeout,
	})
	if err != nil {
		return cli.NewCommandError("journal", fmt.Errorf("failed to open journal: %w", err))
	}
	defer jnl.Close()

	entries, err := jnl.Recent(context.Background(), journalFlags.loop, journalFlags.limit)
	if err != nil {
		return cli.NewCommandError("journal", fmt.Errorf("query failed: %w", err))
	}

	if len(entries) == 0 {
		fmt.Println("No journal entries found.")
		return nil
	}

	if cli.OutputFormat(journalFlags.format) == cli.FormatJSON {
		return cli.NewFormatter(cli.FormatJSON).FormatTo(os.Stdout, entries)
	}

	for _, e := range entries {
		line := fmt.Sprintf("%s  %-7s %-17s %s",
			e.At.Format("2006-01-02 15:04:05"), e.Loop, e.Outcome, e.Index)
		if e.Path != "" {
			line += fmt.Sprintf("  %s (%d bytes)", e.Path, e.SizeBytes)
		}
		if e.Detail != "" {
			line += "  " + e.Detail
		}
		fmt.Println(line)
	}
	return nil
}
