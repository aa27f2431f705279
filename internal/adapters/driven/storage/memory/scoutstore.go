package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/warmpath/scout-cli/internal/core/domain"
	"github.com/warmpath/scout-cli/internal/core/ports/driven"
)

// Ensure ScoutStore implements the interface.
var _ driven.ScoutStore = (*ScoutStore)(nil)

// ScoutStore is an in-memory implementation of driven.ScoutStore.
type ScoutStore struct {
	mu          sync.RWMutex
	runs        map[string]domain.ScoutRun
	targets     map[string][]domain.Target
	paths       map[string][]domain.ConnectorPath
	diagnostics map[string]domain.RunDiagnostics
}

// NewScoutStore creates a new in-memory scout store.
func NewScoutStore() *ScoutStore {
	return &ScoutStore{
		runs:        make(map[string]domain.ScoutRun),
		targets:     make(map[string][]domain.Target),
		paths:       make(map[string][]domain.ConnectorPath),
		diagnostics: make(map[string]domain.RunDiagnostics),
	}
}

// CreateRun stores a new run record.
func (s *ScoutStore) CreateRun(_ context.Context, run domain.ScoutRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	run.Targets = nil
	run.Paths = nil
	s.runs[run.ID] = run
	return nil
}

// UpdateRunStatus transitions a run. Empty notes or source keep the stored
// values.
func (s *ScoutStore) UpdateRunStatus(_ context.Context, runID string, status domain.RunStatus, notes, source string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.runs[runID]
	if !ok {
		return domain.ErrNotFound
	}
	run.Status = status
	if notes != "" {
		run.Notes = notes
	}
	if source != "" {
		run.Source = source
	}
	run.UpdatedAt = time.Now()
	s.runs[runID] = run
	return nil
}

// GetRun retrieves a run with its targets and connector paths.
func (s *ScoutStore) GetRun(_ context.Context, runID string) (*domain.ScoutRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[runID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	run.Targets = append([]domain.Target(nil), s.targets[runID]...)
	run.Paths = append([]domain.ConnectorPath(nil), s.paths[runID]...)
	return &run, nil
}

// ListRuns returns runs newest first, without targets or paths.
func (s *ScoutStore) ListRuns(_ context.Context, limit int) ([]domain.ScoutRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	runs := make([]domain.ScoutRun, 0, len(s.runs))
	for id := range s.runs {
		runs = append(runs, s.runs[id])
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

// SaveTargets replaces the stored targets for a run.
func (s *ScoutStore) SaveTargets(_ context.Context, runID string, targets []domain.Target) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.runs[runID]; !ok {
		return domain.ErrNotFound
	}
	s.targets[runID] = append([]domain.Target(nil), targets...)
	return nil
}

// SaveConnectorPaths replaces the stored connector paths for a run.
func (s *ScoutStore) SaveConnectorPaths(_ context.Context, runID string, paths []domain.ConnectorPath) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.runs[runID]; !ok {
		return domain.ErrNotFound
	}
	s.paths[runID] = append([]domain.ConnectorPath(nil), paths...)
	return nil
}

// SaveDiagnostics overwrites the diagnostics snapshot for a run.
func (s *ScoutStore) SaveDiagnostics(_ context.Context, diag domain.RunDiagnostics) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	diag.Attempts = append([]domain.AdapterAttempt(nil), diag.Attempts...)
	s.diagnostics[diag.RunID] = diag
	return nil
}

// GetDiagnostics retrieves the diagnostics snapshot for a run.
func (s *ScoutStore) GetDiagnostics(_ context.Context, runID string) (*domain.RunDiagnostics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	diag, ok := s.diagnostics[runID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	diag.Attempts = append([]domain.AdapterAttempt(nil), diag.Attempts...)
	return &diag, nil
}

// Stats aggregates all stored runs.
func (s *ScoutStore) Stats(_ context.Context) (*domain.RunStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := domain.RunStats{
		ByStatus: make(map[string]int),
		BySource: make(map[string]int),
	}
	for id := range s.runs {
		run := s.runs[id]
		stats.Total++
		stats.ByStatus[string(run.Status)]++
		if run.Source != "" {
			stats.BySource[run.Source]++
		}
		if stats.LatestRunAt == nil || run.CreatedAt.After(*stats.LatestRunAt) {
			at := run.CreatedAt
			stats.LatestRunAt = &at
		}
	}
	return &stats, nil
}
