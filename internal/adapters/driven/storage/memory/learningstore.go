package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/warmpath/scout-cli/internal/core/domain"
	"github.com/warmpath/scout-cli/internal/core/ports/driven"
)

// Ensure LearningStore implements the interface.
var _ driven.LearningStore = (*LearningStore)(nil)

// LearningStore is an in-memory implementation of driven.LearningStore.
// TrainingSamples needs path breakdowns, so it is wired to a ScoutStore
// holding the paths feedback refers to.
type LearningStore struct {
	mu       sync.RWMutex
	profiles map[string]domain.WeightProfile
	activeID string
	feedback []domain.Feedback
	scouts   *ScoutStore
}

// NewLearningStore creates a new in-memory learning store reading path
// breakdowns from scouts.
func NewLearningStore(scouts *ScoutStore) *LearningStore {
	return &LearningStore{
		profiles: make(map[string]domain.WeightProfile),
		scouts:   scouts,
	}
}

// ActiveProfile returns the currently active weight profile.
func (s *LearningStore) ActiveProfile(_ context.Context) (*domain.WeightProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profile, ok := s.profiles[s.activeID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &profile, nil
}

// SaveProfile stores a profile, optionally activating it.
func (s *LearningStore) SaveProfile(_ context.Context, profile domain.WeightProfile, activate bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[profile.ID] = profile
	if activate {
		s.activeID = profile.ID
	}
	return nil
}

// RecordFeedback appends one feedback record.
func (s *LearningStore) RecordFeedback(_ context.Context, feedback domain.Feedback) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feedback = append(s.feedback, feedback)
	return nil
}

// ListFeedback returns feedback newest first.
func (s *LearningStore) ListFeedback(_ context.Context, limit int) ([]domain.Feedback, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := append([]domain.Feedback(nil), s.feedback...)
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// TrainingSamples joins feedback with the scored breakdowns of the paths it
// refers to. Feedback whose path no longer has a breakdown is skipped.
func (s *LearningStore) TrainingSamples(_ context.Context) ([]domain.TrainingSample, error) {
	s.mu.RLock()
	feedback := append([]domain.Feedback(nil), s.feedback...)
	s.mu.RUnlock()

	var samples []domain.TrainingSample
	for _, fb := range feedback {
		breakdown := s.scouts.pathBreakdown(fb.RunID, fb.PathID)
		if breakdown == nil {
			continue
		}
		samples = append(samples, domain.TrainingSample{
			Breakdown: *breakdown,
			Outcome:   fb.Outcome,
		})
	}
	return samples, nil
}

// pathBreakdown looks up the stored breakdown for a connector path.
func (s *ScoutStore) pathBreakdown(runID, pathID string) *domain.ScoreBreakdown {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, path := range s.paths[runID] {
		if path.ID == pathID && path.Breakdown != nil {
			breakdown := *path.Breakdown
			return &breakdown
		}
	}
	return nil
}
