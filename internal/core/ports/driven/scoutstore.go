package driven

import (
	"context"

	"github.com/warmpath/scout-cli/internal/core/domain"
)

// ScoutStore persists scout runs and everything a run owns. The core emits
// fully-formed entities; the store owns no business rules.
type ScoutStore interface {
	// CreateRun stores a new run. The run arrives in the running state so a
	// caller polling mid-run sees progress.
	CreateRun(ctx context.Context, run domain.ScoutRun) error

	// UpdateRunStatus moves a run to a new status. Empty notes or source keep
	// the stored values.
	UpdateRunStatus(ctx context.Context, runID string, status domain.RunStatus, notes, source string) error

	// GetRun returns a run with its targets and connector paths.
	// Returns domain.ErrNotFound when the run does not exist.
	GetRun(ctx context.Context, runID string) (*domain.ScoutRun, error)

	// ListRuns returns up to limit runs, newest first, without children.
	ListRuns(ctx context.Context, limit int) ([]domain.ScoutRun, error)

	// SaveTargets stores the normalised targets of a run.
	SaveTargets(ctx context.Context, runID string, targets []domain.Target) error

	// SaveConnectorPaths stores scored paths with their breakdowns.
	SaveConnectorPaths(ctx context.Context, runID string, paths []domain.ConnectorPath) error

	// SaveDiagnostics overwrites the run's diagnostics snapshot. Adapter
	// attempts are replaced wholesale on every save.
	SaveDiagnostics(ctx context.Context, diag domain.RunDiagnostics) error

	// GetDiagnostics returns the stored snapshot for a run.
	GetDiagnostics(ctx context.Context, runID string) (*domain.RunDiagnostics, error)

	// Stats aggregates persisted runs.
	Stats(ctx context.Context) (*domain.RunStats, error)
}
