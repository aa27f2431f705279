package driven

import (
	"context"

	"github.com/warmpath/scout-cli/internal/core/domain"
)

// SearchInput is one provider query within a scout run.
type SearchInput struct {
	// TargetCompany is the company to scout. Required.
	TargetCompany string

	// TargetFunction optionally narrows the search to a function.
	TargetFunction string

	// TargetTitle optionally narrows the search to a title.
	TargetTitle string

	// Limit is the remaining result quota for this query.
	Limit int
}

// ScoutProvider discovers second-degree candidates at a company.
// Each provider kind (live session-backed, static seed list) implements this
// interface; the orchestrator holds a slice of it and never a concrete type.
type ScoutProvider interface {
	// Name returns the provider's stable identifier, used in diagnostics and
	// the run's source label.
	Name() string

	// IsConfigured reports whether the provider can be queried this run.
	// Unconfigured providers are skipped and recorded, never errored.
	IsConfigured() bool

	// Search returns candidates for the input. An error is recorded against
	// the provider's attempt; it never aborts the chain. A usable-but-empty
	// outcome is ([]..., nil), not an error.
	Search(ctx context.Context, input SearchInput) ([]domain.DiscoveredTarget, error)
}
