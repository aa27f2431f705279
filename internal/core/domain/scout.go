package domain

import (
	"fmt"
	"strings"
	"time"
)

// Pipeline limits. These bound a single scout run; a run is one batch
// operation, never a stream.
const (
	// DefaultLimit is the result limit applied when a request does not set one.
	DefaultLimit = 25

	// MaxTargetsPerRun is the absolute cap on targets accepted per run.
	MaxTargetsPerRun = 100

	// MaxSeedTargets is the maximum number of caller-supplied seed targets.
	MaxSeedTargets = 100

	// MaxConnectorsPerTarget is how many connector paths are kept per target.
	MaxConnectorsPerTarget = 2

	// MaxConnectorPaths caps connector paths across a whole run.
	MaxConnectorPaths = 120

	// DefaultMinConfidence is the confidence floor applied during
	// normalisation when the caller does not override it.
	DefaultMinConfidence = 0.45

	// DefaultConfidence is assigned to targets whose source reported no
	// usable confidence value.
	DefaultConfidence = 0.6
)

// companyNameLimits bound the target company field of a request.
const (
	minCompanyLen = 2
	maxCompanyLen = 120
)

// ScoutRequest is a caller's request to discover second-degree targets at a
// company and map connector paths to them.
type ScoutRequest struct {
	// TargetCompany is the company the seeker wants a warm path into.
	TargetCompany string

	// TargetFunction optionally narrows discovery to a function, e.g. "platform".
	TargetFunction string

	// TargetTitle optionally narrows discovery to a title, e.g. "Staff Engineer".
	TargetTitle string

	// Limit is the requested number of targets. Zero means DefaultLimit.
	Limit int

	// SeedTargets, when present, bypass live discovery entirely.
	SeedTargets []SeedTarget
}

// SeedTarget is a caller-supplied candidate, trusted over live providers.
type SeedTarget struct {
	FullName       string
	CurrentTitle   string
	CurrentCompany string
	ProfileURL     string

	// Confidence is optional; nil falls back to DefaultConfidence.
	Confidence *float64
}

// Validate checks the request before any provider is queried.
// A failing request is a client error and never creates a run.
func (r ScoutRequest) Validate() error {
	company := strings.TrimSpace(r.TargetCompany)
	if len(company) < minCompanyLen || len(company) > maxCompanyLen {
		return fmt.Errorf("%w: target company must be %d-%d characters", ErrInvalidInput, minCompanyLen, maxCompanyLen)
	}
	if r.Limit < 0 || r.Limit > MaxTargetsPerRun {
		return fmt.Errorf("%w: limit must be within 1-%d", ErrInvalidInput, MaxTargetsPerRun)
	}
	if len(r.SeedTargets) > MaxSeedTargets {
		return fmt.Errorf("%w: at most %d seed targets allowed", ErrInvalidInput, MaxSeedTargets)
	}
	return nil
}

// EffectiveLimit resolves the requested limit against the default and the
// per-run cap.
func (r ScoutRequest) EffectiveLimit() int {
	limit := r.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxTargetsPerRun {
		limit = MaxTargetsPerRun
	}
	return limit
}

// DiscoveredTarget is a person a provider believes plausibly works at the
// target company. Produced by providers or mapped from seed input; consumed
// by the normaliser.
type DiscoveredTarget struct {
	FullName       string
	Headline       string
	CurrentTitle   string
	CurrentCompany string
	ProfileURL     string

	// Confidence is the source's own estimate in [0,1]. Normalisation clamps
	// out-of-range values and substitutes DefaultConfidence for NaN.
	Confidence float64

	// MatchReason tags how the source matched this person, e.g.
	// "linkedin_search_html" or "seed_target".
	MatchReason string
}

// IdentityKey is the de-duplication key for a discovered target: the
// lowercased profile URL when present, else the lowercased name. A trailing
// slash on the URL is not significant.
func (t DiscoveredTarget) IdentityKey() string {
	key := strings.ToLower(strings.TrimSpace(t.ProfileURL))
	if key == "" {
		key = strings.ToLower(CleanName(t.FullName))
	}
	return strings.TrimSuffix(key, "/")
}

// Target is a discovered target persisted under a run.
type Target struct {
	ID             string
	RunID          string
	FullName       string
	Headline       string
	CurrentTitle   string
	CurrentCompany string
	ProfileURL     string
	Confidence     float64
	MatchReason    string
	CreatedAt      time.Time
}

// RunStatus is the lifecycle state of a scout run.
type RunStatus string

// Run lifecycle states. A run is created running and ends in exactly one of
// the three terminal states; status is never manually overridden afterwards.
const (
	RunStatusPending      RunStatus = "pending"
	RunStatusRunning      RunStatus = "running"
	RunStatusCompleted    RunStatus = "completed"
	RunStatusNeedsAdapter RunStatus = "needs_adapter"
	RunStatusFailed       RunStatus = "failed"
)

// IsValid returns true if the status is recognised.
func (s RunStatus) IsValid() bool {
	switch s {
	case RunStatusPending, RunStatusRunning, RunStatusCompleted, RunStatusNeedsAdapter, RunStatusFailed:
		return true
	default:
		return false
	}
}

// Terminal returns true for the end states of the run state machine.
func (s RunStatus) Terminal() bool {
	switch s {
	case RunStatusCompleted, RunStatusNeedsAdapter, RunStatusFailed:
		return true
	default:
		return false
	}
}

// ScoutRun ties discovery, normalisation and scoring together into one unit
// of work. It owns its targets and connector paths; deleting a run deletes
// both.
type ScoutRun struct {
	ID             string
	TargetCompany  string
	TargetFunction string
	TargetTitle    string
	Status         RunStatus
	Source         string
	Notes          string
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Targets []Target
	Paths   []ConnectorPath
}

// AttemptStatus describes the outcome of querying one provider.
type AttemptStatus string

// Provider attempt outcomes.
const (
	AttemptNotConfigured AttemptStatus = "not_configured"
	AttemptNoResults     AttemptStatus = "no_results"
	AttemptSuccess       AttemptStatus = "success"
	AttemptError         AttemptStatus = "error"
)

// AdapterAttempt records one provider query within a run, in query order.
type AdapterAttempt struct {
	Adapter     string
	Status      AttemptStatus
	ResultCount int
	Error       string
}

// RunDiagnostics is the per-run record of which adapters were tried and what
// each returned. Persisted as a full snapshot alongside the run; downstream
// callers depend on this contract.
type RunDiagnostics struct {
	RunID           string
	Source          string
	UsedSeedTargets bool
	RequestedLimit  int
	EffectiveLimit  int
	MinConfidence   float64
	Attempts        []AdapterAttempt
}

// ConnectorPath links a persisted target to a candidate connector from the
// seeker's contact book, with the score that ranks the route.
type ConnectorPath struct {
	ID                 string
	RunID              string
	TargetID           string
	ConnectorContactID string
	ConnectorName      string

	// ConnectorStrength estimates the seeker-connector relationship in [0,1].
	ConnectorStrength float64

	// PathScore is the guardrail-adjusted score in [0,100].
	PathScore float64

	RecommendedAsk AskType
	Rationale      string
	Breakdown      *ScoreBreakdown
	CreatedAt      time.Time
}

// QualityTier classifies how promising a connector path is.
type QualityTier string

// Path quality tiers.
const (
	TierHigh   QualityTier = "high"
	TierMedium QualityTier = "medium"
	TierLow    QualityTier = "low"
)

// ScoreBreakdown is the immutable per-dimension breakdown behind a path
// score, one-to-one with its connector path.
type ScoreBreakdown struct {
	ScoringVersion string

	// Weighted points per dimension, each in [0, weight].
	CompanyAlignment   float64
	RoleAlignment      float64
	Relationship       float64
	ConnectorInfluence float64
	TargetConfidence   float64
	AskFit             float64
	Safety             float64

	TotalBeforeGuardrails float64
	GuardrailPenalty      float64
	QualityTier           QualityTier
	GuardrailAdjustments  []string
}

// RunStats aggregates persisted runs for reporting.
type RunStats struct {
	Total       int
	ByStatus    map[string]int
	BySource    map[string]int
	LatestRunAt *time.Time
}
