package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warmpath/scout-cli/internal/adapters/driven/storage/memory"
	"github.com/warmpath/scout-cli/internal/core/domain"
	"github.com/warmpath/scout-cli/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockProvider implements driven.ScoutProvider for testing.
type mockProvider struct {
	name       string
	configured bool
	results    []domain.DiscoveredTarget
	searchErr  error
	calls      int
}

func (m *mockProvider) Name() string       { return m.name }
func (m *mockProvider) IsConfigured() bool { return m.configured }

func (m *mockProvider) Search(_ context.Context, _ driven.SearchInput) ([]domain.DiscoveredTarget, error) {
	m.calls++
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	return m.results, nil
}

// --- Helpers ---

func newTestService(t *testing.T, providers ...driven.ScoutProvider) (*ScoutService, *memory.ScoutStore, *memory.ContactStore) {
	t.Helper()
	store := memory.NewScoutStore()
	contacts := memory.NewContactStore()
	svc := NewScoutService(store, contacts, providers, ScoutOptions{})
	return svc, store, contacts
}

func seedContacts(t *testing.T, contacts *memory.ContactStore, list ...domain.Contact) {
	t.Helper()
	for _, contact := range list {
		require.NoError(t, contacts.Save(context.Background(), contact))
	}
}

func discovered(name, title, company string, confidence float64) domain.DiscoveredTarget {
	return domain.DiscoveredTarget{
		FullName:       name,
		CurrentTitle:   title,
		CurrentCompany: company,
		ProfileURL:     "https://www.linkedin.com/in/" + name,
		Confidence:     confidence,
		MatchReason:    "mock",
	}
}

// --- Tests ---

func TestRunScout_InvalidRequest(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, _, err := svc.RunScout(context.Background(), domain.ScoutRequest{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRunScout_FallbackToSecondProvider(t *testing.T) {
	primary := &mockProvider{name: "primary", configured: true}
	secondary := &mockProvider{
		name:       "secondary",
		configured: true,
		results: []domain.DiscoveredTarget{
			discovered("ada-lovelace", "Engineering Manager", "Acme", 0.8),
			discovered("grace-hopper", "Director of Engineering", "Acme", 0.75),
		},
	}
	svc, _, _ := newTestService(t, primary, secondary)

	run, diag, err := svc.RunScout(context.Background(), domain.ScoutRequest{
		TargetCompany:  "Acme",
		TargetFunction: "engineering",
	})
	require.NoError(t, err)
	require.NotNil(t, run)
	require.NotNil(t, diag)

	assert.Equal(t, domain.RunStatusCompleted, run.Status)
	assert.Equal(t, "secondary", run.Source)
	assert.Len(t, run.Targets, 2)

	require.Len(t, diag.Attempts, 2)
	assert.Equal(t, "primary", diag.Attempts[0].Adapter)
	assert.Equal(t, domain.AttemptNoResults, diag.Attempts[0].Status)
	assert.Equal(t, "secondary", diag.Attempts[1].Adapter)
	assert.Equal(t, domain.AttemptSuccess, diag.Attempts[1].Status)
	assert.Equal(t, 2, diag.Attempts[1].ResultCount)
}

func TestRunScout_NoProvidersConfigured(t *testing.T) {
	primary := &mockProvider{name: "primary"}
	secondary := &mockProvider{name: "secondary"}
	svc, _, _ := newTestService(t, primary, secondary)

	run, diag, err := svc.RunScout(context.Background(), domain.ScoutRequest{
		TargetCompany: "Acme",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.RunStatusNeedsAdapter, run.Status)
	assert.Empty(t, run.Targets)
	require.Len(t, diag.Attempts, 2)
	for _, attempt := range diag.Attempts {
		assert.Equal(t, domain.AttemptNotConfigured, attempt.Status)
	}
	assert.Zero(t, primary.calls)
	assert.Zero(t, secondary.calls)
}

func TestRunScout_ErrorThenFallbackSucceeds(t *testing.T) {
	primary := &mockProvider{name: "primary", configured: true, searchErr: errors.New("session expired")}
	secondary := &mockProvider{
		name:       "secondary",
		configured: true,
		results:    []domain.DiscoveredTarget{discovered("ada-lovelace", "Recruiter", "Acme", 0.7)},
	}
	svc, _, _ := newTestService(t, primary, secondary)

	run, diag, err := svc.RunScout(context.Background(), domain.ScoutRequest{TargetCompany: "Acme"})
	require.NoError(t, err)

	assert.Equal(t, domain.RunStatusCompleted, run.Status)
	assert.Equal(t, "secondary", run.Source)
	require.Len(t, diag.Attempts, 2)
	assert.Equal(t, domain.AttemptError, diag.Attempts[0].Status)
	assert.Contains(t, diag.Attempts[0].Error, "session expired")
}

func TestRunScout_AllProvidersFail(t *testing.T) {
	primary := &mockProvider{name: "primary", configured: true, searchErr: errors.New("timeout")}
	secondary := &mockProvider{name: "secondary", configured: true, searchErr: errors.New("blocked")}
	svc, _, _ := newTestService(t, primary, secondary)

	run, diag, err := svc.RunScout(context.Background(), domain.ScoutRequest{TargetCompany: "Acme"})
	require.NoError(t, err)

	assert.Equal(t, domain.RunStatusFailed, run.Status)
	assert.Contains(t, run.Notes, "primary (timeout)")
	assert.Contains(t, run.Notes, "secondary (blocked)")
	require.Len(t, diag.Attempts, 2)
}

func TestRunScout_SeedTargetsShortCircuitProviders(t *testing.T) {
	provider := &mockProvider{
		name:       "primary",
		configured: true,
		results:    []domain.DiscoveredTarget{discovered("unwanted", "CTO", "Acme", 0.9)},
	}
	svc, _, _ := newTestService(t, provider)

	confidence := 0.9
	run, diag, err := svc.RunScout(context.Background(), domain.ScoutRequest{
		TargetCompany: "Acme",
		SeedTargets: []domain.SeedTarget{
			{FullName: "Ada Lovelace", CurrentTitle: "VP Engineering", CurrentCompany: "Acme", Confidence: &confidence},
			{FullName: "Grace Hopper", CurrentTitle: "Staff Engineer", CurrentCompany: "Acme"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, domain.RunStatusCompleted, run.Status)
	assert.Equal(t, "seed_targets", run.Source)
	assert.True(t, diag.UsedSeedTargets)
	assert.Zero(t, provider.calls, "providers must not be queried when seeds are supplied")

	require.Len(t, run.Targets, 2)
	assert.Equal(t, "Ada Lovelace", run.Targets[0].FullName)
	assert.InDelta(t, 0.9, run.Targets[0].Confidence, 0.001)
	assert.InDelta(t, domain.DefaultConfidence, run.Targets[1].Confidence, 0.001)
	for _, target := range run.Targets {
		assert.Equal(t, "seed_target", target.MatchReason)
	}
}

func TestRunScout_EmptyChainNeedsAdapter(t *testing.T) {
	svc, _, _ := newTestService(t)

	run, diag, err := svc.RunScout(context.Background(), domain.ScoutRequest{TargetCompany: "Acme"})
	require.NoError(t, err)

	assert.Equal(t, domain.RunStatusNeedsAdapter, run.Status)
	require.Len(t, diag.Attempts, 1)
	assert.Equal(t, "noop", diag.Attempts[0].Adapter)
	assert.Equal(t, domain.AttemptNotConfigured, diag.Attempts[0].Status)
}

func TestRunScout_ConfiguredButEmptyCompletes(t *testing.T) {
	provider := &mockProvider{name: "primary", configured: true}
	svc, _, _ := newTestService(t, provider)

	run, _, err := svc.RunScout(context.Background(), domain.ScoutRequest{TargetCompany: "Acme"})
	require.NoError(t, err)

	assert.Equal(t, domain.RunStatusCompleted, run.Status)
	assert.Contains(t, run.Notes, "No matching second-degree targets")
}

func TestRunScout_NormalisesAndCapsResults(t *testing.T) {
	dup := discovered("ada-lovelace", "EM", "Acme", 0.6)
	dupHigher := dup
	dupHigher.Confidence = 0.8
	provider := &mockProvider{
		name:       "primary",
		configured: true,
		results: []domain.DiscoveredTarget{
			dup,
			dupHigher,
			discovered("too-weak", "Intern", "Acme", 0.2),
			discovered("grace-hopper", "Director", "Acme", 0.7),
		},
	}
	svc, _, _ := newTestService(t, provider)

	run, _, err := svc.RunScout(context.Background(), domain.ScoutRequest{TargetCompany: "Acme"})
	require.NoError(t, err)

	require.Len(t, run.Targets, 2)
	assert.Equal(t, "ada-lovelace", run.Targets[0].FullName)
	assert.InDelta(t, 0.8, run.Targets[0].Confidence, 0.001)
	assert.Equal(t, "grace-hopper", run.Targets[1].FullName)
}

func TestRunScout_BuildsConnectorPaths(t *testing.T) {
	provider := &mockProvider{
		name:       "primary",
		configured: true,
		results: []domain.DiscoveredTarget{
			discovered("ada-lovelace", "Engineering Manager", "Acme", 0.8),
		},
	}
	svc, _, contacts := newTestService(t, provider)

	recent := time.Now().AddDate(0, -6, 0)
	old := time.Now().AddDate(-5, 0, 0)
	seedContacts(t, contacts,
		domain.Contact{ID: "c1", Name: "Recent Recruiter", CurrentTitle: "Technical Recruiter", CurrentCompany: "Acme", ConnectedOn: &recent, CreatedAt: time.Now()},
		domain.Contact{ID: "c2", Name: "Old Engineer", CurrentTitle: "Software Engineer", CurrentCompany: "Acme", ConnectedOn: &old, CreatedAt: time.Now()},
		domain.Contact{ID: "c3", Name: "Third Contact", CurrentTitle: "Accountant", CurrentCompany: "Acme", ConnectedOn: &old, CreatedAt: time.Now()},
	)

	run, _, err := svc.RunScout(context.Background(), domain.ScoutRequest{
		TargetCompany:  "Acme",
		TargetFunction: "engineering",
	})
	require.NoError(t, err)

	require.Len(t, run.Paths, domain.MaxConnectorsPerTarget)
	assert.GreaterOrEqual(t, run.Paths[0].PathScore, run.Paths[1].PathScore)
	for _, path := range run.Paths {
		assert.Equal(t, run.Targets[0].ID, path.TargetID)
		assert.NotEmpty(t, path.Rationale)
		require.NotNil(t, path.Breakdown)
		assert.Equal(t, domain.ScoringVersion, path.Breakdown.ScoringVersion)
	}
}

func TestRunScout_NoContactsMeansNoPaths(t *testing.T) {
	provider := &mockProvider{
		name:       "primary",
		configured: true,
		results:    []domain.DiscoveredTarget{discovered("ada-lovelace", "EM", "Acme", 0.8)},
	}
	svc, _, _ := newTestService(t, provider)

	run, _, err := svc.RunScout(context.Background(), domain.ScoutRequest{TargetCompany: "Acme"})
	require.NoError(t, err)

	assert.Equal(t, domain.RunStatusCompleted, run.Status)
	assert.Len(t, run.Targets, 1)
	assert.Empty(t, run.Paths)
}

func TestRunScout_ContactPoolFallsBackToList(t *testing.T) {
	provider := &mockProvider{
		name:       "primary",
		configured: true,
		results:    []domain.DiscoveredTarget{discovered("ada-lovelace", "EM", "Acme", 0.8)},
	}
	svc, _, contacts := newTestService(t, provider)

	seedContacts(t, contacts,
		domain.Contact{ID: "c1", Name: "Elsewhere Contact", CurrentTitle: "Engineering Manager", CurrentCompany: "Globex", CreatedAt: time.Now()},
	)

	run, _, err := svc.RunScout(context.Background(), domain.ScoutRequest{TargetCompany: "Acme"})
	require.NoError(t, err)

	require.Len(t, run.Paths, 1)
	assert.Equal(t, "Elsewhere Contact", run.Paths[0].ConnectorName)
}

func TestRunScout_DedupesProvidersByName(t *testing.T) {
	first := &mockProvider{name: "primary", configured: true,
		results: []domain.DiscoveredTarget{discovered("ada-lovelace", "EM", "Acme", 0.8)}}
	duplicate := &mockProvider{name: "primary", configured: true}
	svc, _, _ := newTestService(t, first, duplicate)

	_, diag, err := svc.RunScout(context.Background(), domain.ScoutRequest{TargetCompany: "Acme"})
	require.NoError(t, err)

	require.Len(t, diag.Attempts, 1)
	assert.Zero(t, duplicate.calls)
}

func TestRunScout_MergesSourcesAcrossProviders(t *testing.T) {
	primary := &mockProvider{name: "primary", configured: true,
		results: []domain.DiscoveredTarget{discovered("ada-lovelace", "EM", "Acme", 0.8)}}
	secondary := &mockProvider{name: "secondary", configured: true,
		results: []domain.DiscoveredTarget{discovered("grace-hopper", "Director", "Acme", 0.7)}}
	svc, _, _ := newTestService(t, primary, secondary)

	run, _, err := svc.RunScout(context.Background(), domain.ScoutRequest{
		TargetCompany: "Acme",
		Limit:         1,
	})
	require.NoError(t, err)

	// The first provider satisfied the limit, so the chain stops there.
	assert.Equal(t, "primary", run.Source)
	assert.Len(t, run.Targets, 1)
	assert.Zero(t, secondary.calls)
}

func TestGetRunRoundTrip(t *testing.T) {
	provider := &mockProvider{name: "primary", configured: true,
		results: []domain.DiscoveredTarget{discovered("ada-lovelace", "EM", "Acme", 0.8)}}
	svc, _, _ := newTestService(t, provider)

	created, _, err := svc.RunScout(context.Background(), domain.ScoutRequest{TargetCompany: "Acme"})
	require.NoError(t, err)

	run, diag, err := svc.GetRun(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, run.ID)
	assert.Equal(t, created.Status, run.Status)
	require.NotNil(t, diag)
	assert.Equal(t, created.ID, diag.RunID)

	_, _, err = svc.GetRun(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListRunsAndStats(t *testing.T) {
	provider := &mockProvider{name: "primary", configured: true,
		results: []domain.DiscoveredTarget{discovered("ada-lovelace", "EM", "Acme", 0.8)}}
	svc, _, _ := newTestService(t, provider)

	for i := 0; i < 3; i++ {
		_, _, err := svc.RunScout(context.Background(), domain.ScoutRequest{TargetCompany: "Acme"})
		require.NoError(t, err)
	}

	runs, err := svc.ListRuns(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 3, stats.ByStatus[string(domain.RunStatusCompleted)])
	assert.NotNil(t, stats.LatestRunAt)
}

func TestRunScout_FixedWeightOverride(t *testing.T) {
	provider := &mockProvider{name: "primary", configured: true,
		results: []domain.DiscoveredTarget{discovered("ada-lovelace", "Engineering Manager", "Acme", 0.8)}}
	store := memory.NewScoutStore()
	contacts := memory.NewContactStore()
	weights := domain.ScoringWeights{Relationship: 50, CompanyAlignment: 50}
	svc := NewScoutService(store, contacts, []driven.ScoutProvider{provider}, ScoutOptions{
		Weights: &weights,
	})
	seedContacts(t, contacts,
		domain.Contact{ID: "c1", Name: "Connector", CurrentTitle: "EM", CurrentCompany: "Acme", CreatedAt: time.Now()},
	)

	run, _, err := svc.RunScout(context.Background(), domain.ScoutRequest{TargetCompany: "Acme"})
	require.NoError(t, err)

	require.Len(t, run.Paths, 1)
	breakdown := run.Paths[0].Breakdown
	require.NotNil(t, breakdown)
	// Only the two overridden dimensions carry points.
	assert.Zero(t, breakdown.RoleAlignment)
	assert.Zero(t, breakdown.AskFit)
	assert.Greater(t, breakdown.CompanyAlignment, 0.0)
}
