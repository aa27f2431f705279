package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	runsLimit int
	runsJSON  bool
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect past scout runs",
	RunE:  runRunsList,
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent runs, newest first",
	RunE:  runRunsList,
}

var runsShowCmd = &cobra.Command{
	Use:   "show [run-id]",
	Short: "Show one run with its targets, paths and diagnostics",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsShow,
}

var runsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Aggregate statistics across all runs",
	RunE:  runRunsStats,
}

func init() {
	runsCmd.PersistentFlags().BoolVar(&runsJSON, "json", false, "output as JSON")
	runsListCmd.Flags().IntVarP(&runsLimit, "limit", "n", 20, "maximum runs to list")
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	runsCmd.AddCommand(runsStatsCmd)
	rootCmd.AddCommand(runsCmd)
}

func runRunsList(cmd *cobra.Command, _ []string) error {
	if scoutService == nil {
		return errors.New("scout service not configured")
	}

	runs, err := scoutService.ListRuns(context.Background(), runsLimit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if runsJSON {
		data, err := json.MarshalIndent(runs, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal runs: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(runs) == 0 {
		cmd.Println("No runs recorded.")
		return nil
	}

	cmd.Println("Recent runs:")
	for _, run := range runs {
		cmd.Printf("  %s  %-13s %-24s %s\n",
			shortID(run.ID), run.Status, run.TargetCompany,
			run.CreatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func runRunsShow(cmd *cobra.Command, args []string) error {
	if scoutService == nil {
		return errors.New("scout service not configured")
	}

	run, diag, err := scoutService.GetRun(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("failed to load run: %w", err)
	}

	if runsJSON {
		return outputRunJSON(cmd, run, diag)
	}
	return outputRunDetail(cmd, run, diag)
}

func runRunsStats(cmd *cobra.Command, _ []string) error {
	if scoutService == nil {
		return errors.New("scout service not configured")
	}

	stats, err := scoutService.Stats(context.Background())
	if err != nil {
		return fmt.Errorf("failed to load stats: %w", err)
	}

	if runsJSON {
		data, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal stats: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("Total runs: %d\n", stats.Total)
	if len(stats.ByStatus) > 0 {
		cmd.Println("By status:")
		for status, count := range stats.ByStatus {
			cmd.Printf("  %-14s %d\n", status, count)
		}
	}
	if len(stats.BySource) > 0 {
		cmd.Println("By source:")
		for source, count := range stats.BySource {
			cmd.Printf("  %-14s %d\n", source, count)
		}
	}
	if stats.LatestRunAt != nil {
		cmd.Printf("Latest run: %s\n", stats.LatestRunAt.Format("2006-01-02 15:04"))
	}
	return nil
}
