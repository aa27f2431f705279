package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/warmpath/scout-cli/internal/core/domain"
	"github.com/warmpath/scout-cli/internal/core/ports/driven"
	"github.com/warmpath/scout-cli/internal/core/ports/driving"
	"github.com/warmpath/scout-cli/internal/logger"
)

// Ensure ScoutService implements the interface.
var _ driving.ScoutService = (*ScoutService)(nil)

// ScoutOptions tunes a scout service. Zero values fall back to the
// documented defaults.
type ScoutOptions struct {
	// MinConfidence is the normalisation floor. Zero means
	// domain.DefaultMinConfidence; clamped into [0,1].
	MinConfidence float64

	// Weights, when non-nil, fixes the scoring weights for every run and
	// bypasses the weight source.
	Weights *domain.ScoringWeights

	// GuardrailPenalty overrides the per-adjustment deduction. Zero means
	// domain.DefaultGuardrailPenalty.
	GuardrailPenalty float64

	// Now is the clock, swappable in tests.
	Now func() time.Time
}

// ScoutService orchestrates the discovery-and-scoring pipeline: it walks the
// provider chain, normalises what came back, scores connector paths and
// drives the run state machine. Each run is a single sequential unit of
// work; runs are independent and may execute concurrently.
type ScoutService struct {
	store        driven.ScoutStore
	contacts     driven.ContactStore
	providers    []driven.ScoutProvider
	weightSource driven.WeightSource
	opts         ScoutOptions
}

// NewScoutService creates a scout service over the given provider chain.
// Provider order is significant; duplicates by name are dropped.
func NewScoutService(
	store driven.ScoutStore,
	contacts driven.ContactStore,
	providers []driven.ScoutProvider,
	opts ScoutOptions,
) *ScoutService {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &ScoutService{
		store:     store,
		contacts:  contacts,
		providers: dedupeProviders(providers),
		opts:      opts,
	}
}

// SetWeightSource sets the collaborator supplying scoring weights, typically
// the learning service's active profile.
func (s *ScoutService) SetWeightSource(source driven.WeightSource) {
	s.weightSource = source
}

// noopProvider stands in when no provider was supplied at all.
type noopProvider struct{}

func (noopProvider) Name() string       { return "noop" }
func (noopProvider) IsConfigured() bool { return false }

func (noopProvider) Search(context.Context, driven.SearchInput) ([]domain.DiscoveredTarget, error) {
	return nil, nil
}

// dedupeProviders keeps the first provider for each name, preserving order.
func dedupeProviders(providers []driven.ScoutProvider) []driven.ScoutProvider {
	seen := make(map[string]struct{}, len(providers))
	unique := make([]driven.ScoutProvider, 0, len(providers))
	for _, provider := range providers {
		if provider == nil {
			continue
		}
		if _, ok := seen[provider.Name()]; ok {
			continue
		}
		seen[provider.Name()] = struct{}{}
		unique = append(unique, provider)
	}
	return unique
}

// discovery is the internal result of walking the provider chain.
type discovery struct {
	targets           []domain.DiscoveredTarget
	diagnostics       domain.RunDiagnostics
	allQueriedErrored bool
}

// RunScout executes one bounded scout run. Discovery failures land in the
// run's status and diagnostics; only validation and persistence problems
// come back as errors.
func (s *ScoutService) RunScout(ctx context.Context, request domain.ScoutRequest) (*domain.ScoutRun, *domain.RunDiagnostics, error) {
	if err := request.Validate(); err != nil {
		return nil, nil, err
	}

	logger.Section("Scout Run")

	runID := uuid.New().String()
	limit := request.EffectiveLimit()
	minConfidence := s.minConfidence()
	weights, err := s.resolveWeights(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("resolving weights: %w", err)
	}

	chain := s.providers
	if len(chain) == 0 {
		chain = []driven.ScoutProvider{noopProvider{}}
	}

	usingSeeds := len(request.SeedTargets) > 0
	initialSource := chain[0].Name()
	if usingSeeds {
		initialSource = "seed_targets"
	}
	logger.Debug("Run %s: company=%q limit=%d min_confidence=%.2f seeds=%v",
		runID, request.TargetCompany, limit, minConfidence, usingSeeds)

	now := s.opts.Now()
	run := domain.ScoutRun{
		ID:             runID,
		TargetCompany:  strings.TrimSpace(request.TargetCompany),
		TargetFunction: strings.TrimSpace(request.TargetFunction),
		TargetTitle:    strings.TrimSpace(request.TargetTitle),
		Status:         domain.RunStatusRunning,
		Source:         initialSource,
		Notes:          "Scout run started.",
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.store.CreateRun(ctx, run); err != nil {
		return nil, nil, fmt.Errorf("creating scout run: %w", err)
	}

	disc := s.discoverTargets(ctx, request, chain, limit, minConfidence, runID)
	diag := disc.diagnostics

	if len(disc.targets) == 0 && disc.allQueriedErrored {
		return s.finishRun(ctx, runID, diag, domain.RunStatusFailed, providerFailureMessage(diag.Attempts))
	}

	if len(disc.targets) == 0 {
		hasConfiguredAdapter := diag.UsedSeedTargets
		for _, attempt := range diag.Attempts {
			if attempt.Status != domain.AttemptNotConfigured {
				hasConfiguredAdapter = true
				break
			}
		}

		if hasConfiguredAdapter {
			return s.finishRun(ctx, runID, diag, domain.RunStatusCompleted,
				"No matching second-degree targets found for the current query.")
		}
		return s.finishRun(ctx, runID, diag, domain.RunStatusNeedsAdapter,
			"No targets discovered. Provide seed targets or configure at least one scout provider.")
	}

	targets := make([]domain.Target, len(disc.targets))
	for i, discovered := range disc.targets {
		targets[i] = domain.Target{
			ID:             uuid.New().String(),
			RunID:          runID,
			FullName:       discovered.FullName,
			Headline:       discovered.Headline,
			CurrentTitle:   discovered.CurrentTitle,
			CurrentCompany: discovered.CurrentCompany,
			ProfileURL:     discovered.ProfileURL,
			Confidence:     discovered.Confidence,
			MatchReason:    discovered.MatchReason,
			CreatedAt:      s.opts.Now(),
		}
	}
	if err := s.store.SaveTargets(ctx, runID, targets); err != nil {
		return nil, nil, fmt.Errorf("saving targets: %w", err)
	}

	paths, err := s.buildConnectorPaths(ctx, runID, run.TargetCompany, run.TargetFunction, targets, weights)
	if err != nil {
		return nil, nil, fmt.Errorf("building connector paths: %w", err)
	}
	if err := s.store.SaveConnectorPaths(ctx, runID, paths); err != nil {
		return nil, nil, fmt.Errorf("saving connector paths: %w", err)
	}

	summary := fmt.Sprintf("Scouted %d potential targets and mapped %d connector paths using %s.",
		len(targets), len(paths), diag.Source)
	logger.Info("%s", summary)

	return s.finishRun(ctx, runID, diag, domain.RunStatusCompleted, summary)
}

// finishRun persists diagnostics, moves the run to its terminal state and
// reloads it for the caller.
func (s *ScoutService) finishRun(
	ctx context.Context,
	runID string,
	diag domain.RunDiagnostics,
	status domain.RunStatus,
	notes string,
) (*domain.ScoutRun, *domain.RunDiagnostics, error) {
	if err := s.store.SaveDiagnostics(ctx, diag); err != nil {
		return nil, nil, fmt.Errorf("saving diagnostics: %w", err)
	}
	if err := s.store.UpdateRunStatus(ctx, runID, status, notes, diag.Source); err != nil {
		return nil, nil, fmt.Errorf("updating run status: %w", err)
	}

	run, err := s.store.GetRun(ctx, runID)
	if err != nil {
		return nil, nil, fmt.Errorf("loading finished run: %w", err)
	}
	return run, &diag, nil
}

// discoverTargets walks the provider chain and normalises the result.
// Seed targets short-circuit the chain entirely: the caller already knows
// who to reach, live discovery would only dilute that.
func (s *ScoutService) discoverTargets(
	ctx context.Context,
	request domain.ScoutRequest,
	chain []driven.ScoutProvider,
	limit int,
	minConfidence float64,
	runID string,
) discovery {
	diag := domain.RunDiagnostics{
		RunID:          runID,
		Source:         chain[0].Name(),
		RequestedLimit: requestedLimit(request, limit),
		EffectiveLimit: limit,
		MinConfidence:  minConfidence,
	}

	if len(request.SeedTargets) > 0 {
		seeds := request.SeedTargets
		if len(seeds) > limit {
			seeds = seeds[:limit]
		}
		mapped := make([]domain.DiscoveredTarget, len(seeds))
		for i, seed := range seeds {
			mapped[i] = mapSeedTarget(seed)
		}

		targets := domain.NormalizeTargets(mapped, minConfidence, limit)
		status := domain.AttemptSuccess
		if len(targets) == 0 {
			status = domain.AttemptNoResults
		}
		diag.Source = "seed_targets"
		diag.UsedSeedTargets = true
		diag.Attempts = []domain.AdapterAttempt{{
			Adapter:     "seed_targets",
			Status:      status,
			ResultCount: len(targets),
		}}
		logger.Debug("Seed targets supplied: %d accepted after normalisation", len(targets))

		return discovery{targets: targets, diagnostics: diag}
	}

	var (
		discovered   []domain.DiscoveredTarget
		contributors []string
		queried      int
		errored      int
	)

	for _, provider := range chain {
		if !provider.IsConfigured() {
			diag.Attempts = append(diag.Attempts, domain.AdapterAttempt{
				Adapter: provider.Name(),
				Status:  domain.AttemptNotConfigured,
			})
			logger.Debug("Provider %s not configured, skipping", provider.Name())
			continue
		}

		remaining := limit - len(discovered)
		if remaining <= 0 {
			break
		}

		queried++
		results, err := provider.Search(ctx, driven.SearchInput{
			TargetCompany:  request.TargetCompany,
			TargetFunction: request.TargetFunction,
			TargetTitle:    request.TargetTitle,
			Limit:          remaining,
		})
		if err != nil {
			errored++
			diag.Attempts = append(diag.Attempts, domain.AdapterAttempt{
				Adapter: provider.Name(),
				Status:  domain.AttemptError,
				Error:   err.Error(),
			})
			logger.Warn("Provider %s failed: %v", provider.Name(), err)
			continue
		}

		status := domain.AttemptNoResults
		if len(results) > 0 {
			status = domain.AttemptSuccess
			contributors = append(contributors, provider.Name())
			discovered = append(discovered, results...)
		}
		diag.Attempts = append(diag.Attempts, domain.AdapterAttempt{
			Adapter:     provider.Name(),
			Status:      status,
			ResultCount: len(results),
		})
		logger.Debug("Provider %s returned %d candidates", provider.Name(), len(results))
	}

	targets := domain.NormalizeTargets(discovered, minConfidence, limit)
	if len(contributors) > 0 {
		diag.Source = strings.Join(contributors, "+")
	}

	return discovery{
		targets:           targets,
		diagnostics:       diag,
		allQueriedErrored: queried > 0 && errored == queried,
	}
}

// GetRun returns a persisted run with its diagnostics snapshot.
func (s *ScoutService) GetRun(ctx context.Context, runID string) (*domain.ScoutRun, *domain.RunDiagnostics, error) {
	run, err := s.store.GetRun(ctx, runID)
	if err != nil {
		return nil, nil, err
	}
	diag, err := s.store.GetDiagnostics(ctx, runID)
	if err != nil {
		return nil, nil, err
	}
	return run, diag, nil
}

// ListRuns returns recent runs, newest first.
func (s *ScoutService) ListRuns(ctx context.Context, limit int) ([]domain.ScoutRun, error) {
	return s.store.ListRuns(ctx, limit)
}

// Stats aggregates persisted runs.
func (s *ScoutService) Stats(ctx context.Context) (*domain.RunStats, error) {
	return s.store.Stats(ctx)
}

// minConfidence resolves the configured normalisation floor.
func (s *ScoutService) minConfidence() float64 {
	if s.opts.MinConfidence <= 0 {
		return domain.DefaultMinConfidence
	}
	return domain.Clamp01(s.opts.MinConfidence)
}

// resolveWeights picks the scoring weights for this run: a fixed override,
// then the weight source, then the defaults.
func (s *ScoutService) resolveWeights(ctx context.Context) (domain.ScoringWeights, error) {
	if s.opts.Weights != nil {
		return s.opts.Weights.Normalize(), nil
	}
	if s.weightSource != nil {
		weights, err := s.weightSource.ActiveWeights(ctx)
		if err != nil {
			return domain.ScoringWeights{}, err
		}
		return weights.Normalize(), nil
	}
	return domain.DefaultWeights().Normalize(), nil
}

// requestedLimit reports what the caller asked for, before clamping.
func requestedLimit(request domain.ScoutRequest, effective int) int {
	if request.Limit > 0 {
		return request.Limit
	}
	return effective
}

// mapSeedTarget converts caller-supplied seed input into a discovered
// target.
func mapSeedTarget(seed domain.SeedTarget) domain.DiscoveredTarget {
	confidence := domain.DefaultConfidence
	if seed.Confidence != nil {
		confidence = domain.ClampConfidence(*seed.Confidence)
	}
	return domain.DiscoveredTarget{
		FullName:       seed.FullName,
		CurrentTitle:   seed.CurrentTitle,
		CurrentCompany: seed.CurrentCompany,
		ProfileURL:     seed.ProfileURL,
		Confidence:     confidence,
		MatchReason:    "seed_target",
	}
}

// providerFailureMessage aggregates every errored attempt into the run's
// failure note.
func providerFailureMessage(attempts []domain.AdapterAttempt) string {
	var failed []string
	for _, attempt := range attempts {
		if attempt.Status != domain.AttemptError {
			continue
		}
		if attempt.Error != "" {
			failed = append(failed, fmt.Sprintf("%s (%s)", attempt.Adapter, attempt.Error))
		} else {
			failed = append(failed, attempt.Adapter)
		}
	}

	if len(failed) == 0 {
		return domain.ErrAllProvidersFailed.Error()
	}
	return fmt.Sprintf("%s: %s", domain.ErrAllProvidersFailed.Error(), strings.Join(failed, ", "))
}
