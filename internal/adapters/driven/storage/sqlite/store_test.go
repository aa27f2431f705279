package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warmpath/scout-cli/internal/core/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestNewStore_MigratesOnce(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Reopening the same directory must replay cleanly.
	store, err = NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Close())
}

func TestScoutStore_RunRoundTrip(t *testing.T) {
	store := newTestStore(t)
	scouts := store.ScoutStore()
	ctx := context.Background()

	run := domain.ScoutRun{
		ID:             "run-1",
		TargetCompany:  "Acme",
		TargetFunction: "engineering",
		Status:         domain.RunStatusRunning,
		Source:         "linkedin_li_at",
		Notes:          "Scout run started.",
		CreatedAt:      time.Now().UTC(),
		UpdatedAt:      time.Now().UTC(),
	}
	require.NoError(t, scouts.CreateRun(ctx, run))

	loaded, err := scouts.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "Acme", loaded.TargetCompany)
	assert.Equal(t, domain.RunStatusRunning, loaded.Status)

	require.NoError(t, scouts.UpdateRunStatus(ctx, "run-1", domain.RunStatusCompleted, "done", ""))
	loaded, err = scouts.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, domain.RunStatusCompleted, loaded.Status)
	assert.Equal(t, "done", loaded.Notes)
	assert.Equal(t, "linkedin_li_at", loaded.Source, "empty source keeps the stored value")

	_, err = scouts.GetRun(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, scouts.UpdateRunStatus(ctx, "missing", domain.RunStatusFailed, "", ""), domain.ErrNotFound)
}

func TestScoutStore_TargetsAndPathsRoundTrip(t *testing.T) {
	store := newTestStore(t)
	scouts := store.ScoutStore()
	ctx := context.Background()

	require.NoError(t, scouts.CreateRun(ctx, domain.ScoutRun{
		ID: "run-1", TargetCompany: "Acme", Status: domain.RunStatusRunning,
		CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC(),
	}))

	targets := []domain.Target{
		{ID: "t1", RunID: "run-1", FullName: "Ada Lovelace", Confidence: 0.9, CreatedAt: time.Now().UTC()},
		{ID: "t2", RunID: "run-1", FullName: "Grace Hopper", Confidence: 0.7, CreatedAt: time.Now().UTC()},
	}
	require.NoError(t, scouts.SaveTargets(ctx, "run-1", targets))

	breakdown := domain.ScoreBreakdown{
		ScoringVersion:       domain.ScoringVersion,
		CompanyAlignment:     24,
		RoleAlignment:        12,
		QualityTier:          domain.TierHigh,
		GuardrailAdjustments: []string{"Referral downgraded to intro due to low relationship strength or target confidence."},
	}
	paths := []domain.ConnectorPath{
		{
			ID: "p1", RunID: "run-1", TargetID: "t1",
			ConnectorContactID: "c1", ConnectorName: "Connector One",
			ConnectorStrength: 0.85, PathScore: 82.5,
			RecommendedAsk: domain.AskIntro, Rationale: "Path ranks well.",
			Breakdown: &breakdown, CreatedAt: time.Now().UTC(),
		},
		{
			ID: "p2", RunID: "run-1", TargetID: "t2",
			ConnectorStrength: 0.55, PathScore: 41,
			RecommendedAsk: domain.AskContext, CreatedAt: time.Now().UTC(),
		},
	}
	require.NoError(t, scouts.SaveConnectorPaths(ctx, "run-1", paths))

	loaded, err := scouts.GetRun(ctx, "run-1")
	require.NoError(t, err)

	require.Len(t, loaded.Targets, 2)
	assert.Equal(t, "Ada Lovelace", loaded.Targets[0].FullName, "targets ordered by confidence")

	require.Len(t, loaded.Paths, 2)
	assert.Equal(t, "p1", loaded.Paths[0].ID, "paths ordered by score")
	require.NotNil(t, loaded.Paths[0].Breakdown)
	assert.Equal(t, domain.TierHigh, loaded.Paths[0].Breakdown.QualityTier)
	assert.Len(t, loaded.Paths[0].Breakdown.GuardrailAdjustments, 1)
	assert.Nil(t, loaded.Paths[1].Breakdown)

	// Re-saving replaces wholesale.
	require.NoError(t, scouts.SaveTargets(ctx, "run-1", targets[:1]))
	loaded, err = scouts.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Len(t, loaded.Targets, 1)
}

func TestScoutStore_DiagnosticsRoundTrip(t *testing.T) {
	store := newTestStore(t)
	scouts := store.ScoutStore()
	ctx := context.Background()

	require.NoError(t, scouts.CreateRun(ctx, domain.ScoutRun{
		ID: "run-1", TargetCompany: "Acme", Status: domain.RunStatusRunning,
		CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC(),
	}))

	diag := domain.RunDiagnostics{
		RunID:           "run-1",
		Source:          "secondary",
		UsedSeedTargets: false,
		RequestedLimit:  25,
		EffectiveLimit:  25,
		MinConfidence:   0.45,
		Attempts: []domain.AdapterAttempt{
			{Adapter: "primary", Status: domain.AttemptNoResults},
			{Adapter: "secondary", Status: domain.AttemptSuccess, ResultCount: 3},
		},
	}
	require.NoError(t, scouts.SaveDiagnostics(ctx, diag))

	loaded, err := scouts.GetDiagnostics(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "secondary", loaded.Source)
	assert.InDelta(t, 0.45, loaded.MinConfidence, 0.001)
	require.Len(t, loaded.Attempts, 2)
	assert.Equal(t, "primary", loaded.Attempts[0].Adapter)
	assert.Equal(t, 3, loaded.Attempts[1].ResultCount)

	// Overwrite replaces the attempts wholesale.
	diag.Attempts = diag.Attempts[1:]
	require.NoError(t, scouts.SaveDiagnostics(ctx, diag))
	loaded, err = scouts.GetDiagnostics(ctx, "run-1")
	require.NoError(t, err)
	assert.Len(t, loaded.Attempts, 1)
}

func TestScoutStore_ListAndStats(t *testing.T) {
	store := newTestStore(t)
	scouts := store.ScoutStore()
	ctx := context.Background()
	base := time.Now().UTC()

	for i, status := range []domain.RunStatus{domain.RunStatusCompleted, domain.RunStatusCompleted, domain.RunStatusFailed} {
		require.NoError(t, scouts.CreateRun(ctx, domain.ScoutRun{
			ID:            "run-" + string(rune('a'+i)),
			TargetCompany: "Acme",
			Status:        status,
			Source:        "static_seed",
			CreatedAt:     base.Add(time.Duration(i) * time.Minute),
			UpdatedAt:     base.Add(time.Duration(i) * time.Minute),
		}))
	}

	runs, err := scouts.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-c", runs[0].ID)

	stats, err := scouts.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.ByStatus["completed"])
	assert.Equal(t, 1, stats.ByStatus["failed"])
	assert.Equal(t, 3, stats.BySource["static_seed"])
	require.NotNil(t, stats.LatestRunAt)
}

func TestContactStore_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	contacts := store.ContactStore()
	ctx := context.Background()

	connected := time.Now().UTC().AddDate(-1, 0, 0)
	require.NoError(t, contacts.Save(ctx, domain.Contact{
		ID: "c1", Name: "Ada", CurrentTitle: "EM", CurrentCompany: "Acme Corp.",
		ConnectedOn: &connected, CreatedAt: time.Now().UTC(),
	}))
	require.NoError(t, contacts.Save(ctx, domain.Contact{
		ID: "c2", Name: "Grace", CurrentCompany: "Globex", CreatedAt: time.Now().UTC(),
	}))

	// Company matching is against the normalised name.
	found, err := contacts.FindByCompany(ctx, "ACME, Inc.")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Ada", found[0].Name)
	require.NotNil(t, found[0].ConnectedOn)
	assert.WithinDuration(t, connected, *found[0].ConnectedOn, time.Second)
}

func TestContactStore_ListAndUpsert(t *testing.T) {
	store := newTestStore(t)
	contacts := store.ContactStore()
	ctx := context.Background()

	require.NoError(t, contacts.Save(ctx, domain.Contact{ID: "c1", Name: "Ada", CurrentCompany: "Acme"}))
	require.NoError(t, contacts.Save(ctx, domain.Contact{ID: "c1", Name: "Ada Lovelace", CurrentCompany: "Acme"}))

	listed, err := contacts.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "Ada Lovelace", listed[0].Name)
	assert.Nil(t, listed[0].ConnectedOn)
}

func TestLearningStore_ProfileActivation(t *testing.T) {
	store := newTestStore(t)
	learning := store.LearningStore()
	ctx := context.Background()

	_, err := learning.ActiveProfile(ctx)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	first := domain.WeightProfile{
		ID: "p1", Label: "Default", Source: domain.ProfileSourceDefault,
		Weights: domain.DefaultWeights(), ActivatedAt: time.Now().UTC(),
	}
	require.NoError(t, learning.SaveProfile(ctx, first, true))

	second := domain.WeightProfile{
		ID: "p2", Label: "Tuned", Source: domain.ProfileSourceAutoTuned,
		Weights: domain.DefaultWeights(), SampleSize: 12, ActivatedAt: time.Now().UTC(),
	}
	require.NoError(t, learning.SaveProfile(ctx, second, true))

	active, err := learning.ActiveProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "p2", active.ID)
	assert.Equal(t, 12, active.SampleSize)
	assert.InDelta(t, domain.DefaultWeights().CompanyAlignment, active.Weights.CompanyAlignment, 0.001)
}

func TestLearningStore_FeedbackAndTrainingSamples(t *testing.T) {
	store := newTestStore(t)
	scouts := store.ScoutStore()
	learning := store.LearningStore()
	ctx := context.Background()

	require.NoError(t, scouts.CreateRun(ctx, domain.ScoutRun{
		ID: "run-1", TargetCompany: "Acme", Status: domain.RunStatusCompleted,
		CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC(),
	}))
	breakdown := domain.ScoreBreakdown{ScoringVersion: domain.ScoringVersion, CompanyAlignment: 24}
	require.NoError(t, scouts.SaveConnectorPaths(ctx, "run-1", []domain.ConnectorPath{
		{ID: "p1", RunID: "run-1", TargetID: "t1", RecommendedAsk: domain.AskIntro, Breakdown: &breakdown, CreatedAt: time.Now().UTC()},
		{ID: "p2", RunID: "run-1", TargetID: "t1", RecommendedAsk: domain.AskContext, CreatedAt: time.Now().UTC()},
	}))

	require.NoError(t, learning.RecordFeedback(ctx, domain.Feedback{
		ID: "f1", RunID: "run-1", PathID: "p1", Outcome: domain.OutcomeReplied, CreatedAt: time.Now().UTC(),
	}))
	require.NoError(t, learning.RecordFeedback(ctx, domain.Feedback{
		ID: "f2", RunID: "run-1", PathID: "p2", Outcome: domain.OutcomeSent, CreatedAt: time.Now().UTC(),
	}))

	listed, err := learning.ListFeedback(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, listed, 2)

	samples, err := learning.TrainingSamples(ctx)
	require.NoError(t, err)
	require.Len(t, samples, 1, "feedback without a stored breakdown is skipped")
	assert.Equal(t, domain.OutcomeReplied, samples[0].Outcome)
	assert.InDelta(t, 24, samples[0].Breakdown.CompanyAlignment, 0.001)
}
