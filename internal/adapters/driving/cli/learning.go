package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/warmpath/scout-cli/internal/core/domain"
)

var (
	feedbackOutcome string
	feedbackNote    string
	tuneMinSamples  int
)

var learningCmd = &cobra.Command{
	Use:   "learning",
	Short: "Manage scoring weights and outreach feedback",
	Long: `Scoring weights rank connector paths. The default profile works out of
the box; recording outreach outcomes lets 'learning tune' derive weights
from what actually landed introductions.`,
	RunE: runLearningProfile,
}

var learningProfileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show the active weight profile",
	RunE:  runLearningProfile,
}

var learningFeedbackCmd = &cobra.Command{
	Use:   "feedback [run-id] [path-id]",
	Short: "Record the outcome of one outreach",
	Long: `Records what happened after reaching out along a connector path.

Outcomes, best to worst:
  intro_accepted  the introduction was made and accepted
  replied         the target replied
  sent            outreach sent, no signal yet
  follow_up_sent  a follow up was needed
  no_response     no reply after following up
  not_interested  explicit decline`,
	Args: cobra.ExactArgs(2),
	RunE: runLearningFeedback,
}

var learningTuneCmd = &cobra.Command{
	Use:   "tune",
	Short: "Derive and activate a weight profile from recorded feedback",
	RunE:  runLearningTune,
}

func init() {
	learningFeedbackCmd.Flags().StringVar(&feedbackOutcome, "outcome", "", "outreach outcome (required)")
	learningFeedbackCmd.Flags().StringVar(&feedbackNote, "note", "", "optional free-form note")
	learningTuneCmd.Flags().IntVar(&tuneMinSamples, "min-samples", 0, "minimum feedback samples required (default 8)")
	learningCmd.AddCommand(learningProfileCmd)
	learningCmd.AddCommand(learningFeedbackCmd)
	learningCmd.AddCommand(learningTuneCmd)
	rootCmd.AddCommand(learningCmd)
}

func runLearningProfile(cmd *cobra.Command, _ []string) error {
	if learningService == nil {
		return errors.New("learning service not configured")
	}

	profile, err := learningService.ActiveProfile(context.Background())
	if err != nil {
		return fmt.Errorf("failed to load active profile: %w", err)
	}

	cmd.Printf("Active profile: %s\n", profile.Label)
	cmd.Printf("  Source: %s\n", profile.Source)
	if profile.SampleSize > 0 {
		cmd.Printf("  Samples: %d\n", profile.SampleSize)
	}
	cmd.Println("  Weights:")
	cmd.Printf("    Company alignment:   %.1f\n", profile.Weights.CompanyAlignment)
	cmd.Printf("    Role alignment:      %.1f\n", profile.Weights.RoleAlignment)
	cmd.Printf("    Relationship:        %.1f\n", profile.Weights.Relationship)
	cmd.Printf("    Connector influence: %.1f\n", profile.Weights.ConnectorInfluence)
	cmd.Printf("    Target confidence:   %.1f\n", profile.Weights.TargetConfidence)
	cmd.Printf("    Ask fit:             %.1f\n", profile.Weights.AskFit)
	cmd.Printf("    Safety:              %.1f\n", profile.Weights.Safety)
	return nil
}

func runLearningFeedback(cmd *cobra.Command, args []string) error {
	if learningService == nil {
		return errors.New("learning service not configured")
	}
	if feedbackOutcome == "" {
		return errors.New("--outcome is required")
	}

	feedback, err := learningService.RecordFeedback(
		context.Background(), args[0], args[1],
		domain.FeedbackOutcome(feedbackOutcome), feedbackNote)
	if err != nil {
		return fmt.Errorf("failed to record feedback: %w", err)
	}

	cmd.Printf("Recorded %s for path %s.\n", feedback.Outcome, shortID(feedback.PathID))
	return nil
}

func runLearningTune(cmd *cobra.Command, _ []string) error {
	if learningService == nil {
		return errors.New("learning service not configured")
	}

	profile, err := learningService.AutoTune(context.Background(), tuneMinSamples)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientSamples) {
			return fmt.Errorf("not enough feedback to tune: %w", err)
		}
		return fmt.Errorf("auto-tune failed: %w", err)
	}

	cmd.Printf("Activated profile: %s (from %d samples)\n", profile.Label, profile.SampleSize)
	return nil
}
