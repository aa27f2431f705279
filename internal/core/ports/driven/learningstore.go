package driven

import (
	"context"

	"github.com/warmpath/scout-cli/internal/core/domain"
)

// LearningStore persists scoring-weight profiles and outreach feedback.
type LearningStore interface {
	// ActiveProfile returns the currently active weight profile.
	// Returns domain.ErrNotFound when none has been created yet.
	ActiveProfile(ctx context.Context) (*domain.WeightProfile, error)

	// SaveProfile stores a profile. When activate is true, any previously
	// active profile is deactivated in the same transaction.
	SaveProfile(ctx context.Context, profile domain.WeightProfile, activate bool) error

	// RecordFeedback stores one outreach outcome.
	RecordFeedback(ctx context.Context, feedback domain.Feedback) error

	// ListFeedback returns up to limit feedback records, newest first.
	ListFeedback(ctx context.Context, limit int) ([]domain.Feedback, error)

	// TrainingSamples joins feedback with the score breakdowns of the paths
	// it was recorded against.
	TrainingSamples(ctx context.Context) ([]domain.TrainingSample, error)
}

// WeightSource supplies the scoring weights for a run. The learning
// subsystem implements it; callers may also inject a fixed set.
type WeightSource interface {
	// ActiveWeights returns normalised weights summing to 100.
	ActiveWeights(ctx context.Context) (domain.ScoringWeights, error)
}
