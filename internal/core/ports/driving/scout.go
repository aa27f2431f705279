package driving

import (
	"context"

	"github.com/warmpath/scout-cli/internal/core/domain"
)

// ScoutService runs the discovery-and-scoring pipeline.
type ScoutService interface {
	// RunScout executes one bounded scout run. Ordinary discovery failures
	// are encoded in the run's status and diagnostics, never returned as an
	// error; an error here means persistence or another unexpected failure.
	RunScout(ctx context.Context, request domain.ScoutRequest) (*domain.ScoutRun, *domain.RunDiagnostics, error)

	// GetRun returns a run with its targets, paths and diagnostics.
	GetRun(ctx context.Context, runID string) (*domain.ScoutRun, *domain.RunDiagnostics, error)

	// ListRuns returns recent runs, newest first.
	ListRuns(ctx context.Context, limit int) ([]domain.ScoutRun, error)

	// Stats aggregates persisted runs.
	Stats(ctx context.Context) (*domain.RunStats, error)
}

// LearningService manages scoring-weight profiles and outreach feedback.
type LearningService interface {
	// ActiveProfile returns the active profile, creating the default one on
	// first use.
	ActiveProfile(ctx context.Context) (*domain.WeightProfile, error)

	// RecordFeedback stores one outreach outcome against a connector path.
	RecordFeedback(ctx context.Context, runID, pathID string, outcome domain.FeedbackOutcome, note string) (*domain.Feedback, error)

	// AutoTune derives a new weight profile from recorded outcomes and
	// activates it. Returns domain.ErrInsufficientSamples when fewer than
	// minSamples outcomes exist.
	AutoTune(ctx context.Context, minSamples int) (*domain.WeightProfile, error)
}
