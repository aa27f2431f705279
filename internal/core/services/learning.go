package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/warmpath/scout-cli/internal/core/domain"
	"github.com/warmpath/scout-cli/internal/core/ports/driven"
	"github.com/warmpath/scout-cli/internal/core/ports/driving"
	"github.com/warmpath/scout-cli/internal/logger"
)

var (
	_ driving.LearningService = (*LearningService)(nil)
	_ driven.WeightSource     = (*LearningService)(nil)
)

// DefaultMinTuneSamples is the floor below which auto-tuning refuses to
// replace the active profile.
const DefaultMinTuneSamples = 8

// LearningService manages scoring weight profiles and the feedback loop
// that retunes them. It doubles as the scout service's weight source.
type LearningService struct {
	store driven.LearningStore
	now   func() time.Time
}

// NewLearningService creates a learning service over the given store.
func NewLearningService(store driven.LearningStore) *LearningService {
	return &LearningService{store: store, now: time.Now}
}

// ActiveProfile returns the active weight profile, creating the default one
// on first use so scoring always has a profile to attribute runs to.
func (s *LearningService) ActiveProfile(ctx context.Context) (*domain.WeightProfile, error) {
	profile, err := s.store.ActiveProfile(ctx)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	created := domain.WeightProfile{
		ID:          uuid.New().String(),
		Label:       "Default scoring profile",
		Source:      domain.ProfileSourceDefault,
		Weights:     domain.DefaultWeights().Normalize(),
		ActivatedAt: s.now(),
	}
	if err := s.store.SaveProfile(ctx, created, true); err != nil {
		return nil, fmt.Errorf("saving default profile: %w", err)
	}
	logger.Debug("Created default weight profile %s", created.ID)
	return &created, nil
}

// ActiveWeights implements driven.WeightSource.
func (s *LearningService) ActiveWeights(ctx context.Context) (domain.ScoringWeights, error) {
	profile, err := s.ActiveProfile(ctx)
	if err != nil {
		return domain.ScoringWeights{}, err
	}
	return profile.Weights, nil
}

// RecordFeedback stores one outcome observation against a connector path.
func (s *LearningService) RecordFeedback(ctx context.Context, runID, pathID string, outcome domain.FeedbackOutcome, note string) (*domain.Feedback, error) {
	if !outcome.IsValid() {
		return nil, fmt.Errorf("%w: unknown feedback outcome %q", domain.ErrInvalidInput, outcome)
	}
	if runID == "" || pathID == "" {
		return nil, fmt.Errorf("%w: feedback requires a run and a path", domain.ErrInvalidInput)
	}

	feedback := domain.Feedback{
		ID:        uuid.New().String(),
		RunID:     runID,
		PathID:    pathID,
		Outcome:   outcome,
		Note:      note,
		Source:    "cli",
		CreatedAt: s.now(),
	}
	if err := s.store.RecordFeedback(ctx, feedback); err != nil {
		return nil, fmt.Errorf("recording feedback: %w", err)
	}
	return &feedback, nil
}

// AutoTune derives a fresh weight profile from accumulated feedback and
// activates it. minSamples below one falls back to DefaultMinTuneSamples.
func (s *LearningService) AutoTune(ctx context.Context, minSamples int) (*domain.WeightProfile, error) {
	if minSamples < 1 {
		minSamples = DefaultMinTuneSamples
	}

	samples, err := s.store.TrainingSamples(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading training samples: %w", err)
	}
	if len(samples) < minSamples {
		return nil, fmt.Errorf("%w: have %d, need %d", domain.ErrInsufficientSamples, len(samples), minSamples)
	}

	active, err := s.ActiveProfile(ctx)
	if err != nil {
		return nil, err
	}

	tuned, ok := domain.AutoTuneWeights(samples, active.Weights)
	if !ok {
		return nil, fmt.Errorf("%w: no usable samples", domain.ErrInsufficientSamples)
	}

	profile := domain.WeightProfile{
		ID:          uuid.New().String(),
		Label:       fmt.Sprintf("Auto-tuned profile (%d samples)", len(samples)),
		Source:      domain.ProfileSourceAutoTuned,
		Weights:     tuned,
		SampleSize:  len(samples),
		ActivatedAt: s.now(),
	}
	if err := s.store.SaveProfile(ctx, profile, true); err != nil {
		return nil, fmt.Errorf("saving tuned profile: %w", err)
	}
	logger.Info("Activated auto-tuned weight profile from %d feedback samples", len(samples))
	return &profile, nil
}
