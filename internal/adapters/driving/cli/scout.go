package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/warmpath/scout-cli/internal/core/domain"
)

var (
	scoutFunction string
	scoutTitle    string
	scoutLimit    int
	scoutSeeds    string
	scoutJSON     bool
)

var scoutCmd = &cobra.Command{
	Use:   "scout [company]",
	Short: "Run a scout for warm paths into a company",
	Long: `Runs one bounded discovery pass against the configured provider chain,
normalises the candidates it finds and scores a connector path for each
one using your imported contacts.

Seed targets supplied via --seeds bypass live discovery entirely.`,
	Args: cobra.ExactArgs(1),
	RunE: runScout,
}

func init() {
	scoutCmd.Flags().StringVar(&scoutFunction, "function", "", "narrow discovery to a function, e.g. platform")
	scoutCmd.Flags().StringVar(&scoutTitle, "title", "", "narrow discovery to a title, e.g. 'Staff Engineer'")
	scoutCmd.Flags().IntVarP(&scoutLimit, "limit", "n", 0, "maximum targets to discover (default 25)")
	scoutCmd.Flags().StringVar(&scoutSeeds, "seeds", "", "path to a JSON seed target list")
	scoutCmd.Flags().BoolVar(&scoutJSON, "json", false, "output the run as JSON")
	rootCmd.AddCommand(scoutCmd)
}

func runScout(cmd *cobra.Command, args []string) error {
	if scoutService == nil {
		return errors.New("scout service not configured")
	}

	request := domain.ScoutRequest{
		TargetCompany:  args[0],
		TargetFunction: scoutFunction,
		TargetTitle:    scoutTitle,
		Limit:          scoutLimit,
	}

	if scoutSeeds != "" {
		seeds, err := loadSeedTargets(scoutSeeds)
		if err != nil {
			return err
		}
		request.SeedTargets = seeds
	}

	run, diag, err := scoutService.RunScout(context.Background(), request)
	if err != nil {
		return fmt.Errorf("scout run failed: %w", err)
	}

	if scoutJSON {
		return outputRunJSON(cmd, run, diag)
	}
	return outputRunDetail(cmd, run, diag)
}

// seedFileEntry is the on-disk shape of one seed target.
type seedFileEntry struct {
	FullName       string   `json:"full_name"`
	CurrentTitle   string   `json:"current_title"`
	CurrentCompany string   `json:"current_company"`
	LinkedInURL    string   `json:"linkedin_url"`
	Confidence     *float64 `json:"confidence"`
}

func loadSeedTargets(path string) ([]domain.SeedTarget, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed targets: %w", err)
	}

	var entries []seedFileEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing seed targets: %w", err)
	}

	seeds := make([]domain.SeedTarget, len(entries))
	for i, entry := range entries {
		seeds[i] = domain.SeedTarget{
			FullName:       entry.FullName,
			CurrentTitle:   entry.CurrentTitle,
			CurrentCompany: entry.CurrentCompany,
			ProfileURL:     entry.LinkedInURL,
			Confidence:     entry.Confidence,
		}
	}
	return seeds, nil
}

func outputRunJSON(cmd *cobra.Command, run *domain.ScoutRun, diag *domain.RunDiagnostics) error {
	payload := struct {
		Run         *domain.ScoutRun       `json:"run"`
		Diagnostics *domain.RunDiagnostics `json:"diagnostics"`
	}{Run: run, Diagnostics: diag}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputRunDetail(cmd *cobra.Command, run *domain.ScoutRun, diag *domain.RunDiagnostics) error {
	cmd.Printf("Run %s [%s]\n", run.ID, run.Status)
	cmd.Printf("  Company:  %s\n", run.TargetCompany)
	if run.TargetFunction != "" {
		cmd.Printf("  Function: %s\n", run.TargetFunction)
	}
	if run.TargetTitle != "" {
		cmd.Printf("  Title:    %s\n", run.TargetTitle)
	}
	cmd.Printf("  Source:   %s\n", run.Source)
	cmd.Printf("  Notes:    %s\n", run.Notes)
	cmd.Println()

	if diag != nil && len(diag.Attempts) > 0 {
		cmd.Println("Provider attempts:")
		for _, attempt := range diag.Attempts {
			line := fmt.Sprintf("  %-18s %s", attempt.Adapter, attempt.Status)
			if attempt.Status == domain.AttemptSuccess {
				line += fmt.Sprintf(" (%d results)", attempt.ResultCount)
			}
			if attempt.Error != "" {
				line += " " + attempt.Error
			}
			cmd.Println(line)
		}
		cmd.Println()
	}

	if len(run.Targets) == 0 {
		cmd.Println("No targets.")
		return nil
	}

	cmd.Printf("Targets (%d):\n", len(run.Targets))
	for i, target := range run.Targets {
		cmd.Printf("  [%d] %s (%.2f)\n", i+1, target.FullName, target.Confidence)
		if target.CurrentTitle != "" {
			cmd.Printf("      %s\n", target.CurrentTitle)
		}
		if target.ProfileURL != "" {
			cmd.Printf("      %s\n", target.ProfileURL)
		}
	}
	cmd.Println()

	if len(run.Paths) == 0 {
		cmd.Println("No connector paths. Import contacts to map introduction routes.")
		return nil
	}

	cmd.Printf("Connector paths (%d):\n", len(run.Paths))
	for i, path := range run.Paths {
		cmd.Printf("  [%d] via %s -> target %s  score %.1f  ask: %s\n",
			i+1, path.ConnectorName, shortID(path.TargetID), path.PathScore, path.RecommendedAsk)
		if path.Rationale != "" {
			cmd.Printf("      %s\n", path.Rationale)
		}
	}
	return nil
}

// shortID abbreviates a UUID for table output.
func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
