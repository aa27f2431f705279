package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/warmpath/scout-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/warmpath/scout-cli/internal/core/domain"
	"github.com/warmpath/scout-cli/internal/core/ports/driven"
)

// Store is a unified SQLite-based storage that provides access to all
// persistence interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.warmscout/data/scout.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".warmscout", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "scout.db")

	// WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// ScoutStore returns a ScoutStore interface backed by this store.
func (s *Store) ScoutStore() driven.ScoutStore {
	return &scoutStore{store: s}
}

// ContactStore returns a ContactStore interface backed by this store.
func (s *Store) ContactStore() driven.ContactStore {
	return &contactStore{store: s}
}

// LearningStore returns a LearningStore interface backed by this store.
func (s *Store) LearningStore() driven.LearningStore {
	return &learningStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Scout Store ====================

// scoutStore implements driven.ScoutStore.
type scoutStore struct {
	store *Store
}

var _ driven.ScoutStore = (*scoutStore)(nil)

// CreateRun stores a new run record.
func (s *scoutStore) CreateRun(ctx context.Context, run domain.ScoutRun) error {
	now := time.Now().UTC()
	if run.CreatedAt.IsZero() {
		run.CreatedAt = now
	}
	if run.UpdatedAt.IsZero() {
		run.UpdatedAt = now
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO scout_runs (id, target_company, target_function, target_title, status, source, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.TargetCompany, run.TargetFunction, run.TargetTitle,
		string(run.Status), run.Source, run.Notes, run.CreatedAt, run.UpdatedAt)

	if err != nil {
		return fmt.Errorf("creating scout run: %w", err)
	}
	return nil
}

// UpdateRunStatus transitions a run. Empty notes or source keep the stored
// values.
func (s *scoutStore) UpdateRunStatus(ctx context.Context, runID string, status domain.RunStatus, notes, source string) error {
	result, err := s.store.db.ExecContext(ctx, `
		UPDATE scout_runs SET
			status = ?,
			notes = CASE WHEN ? = '' THEN notes ELSE ? END,
			source = CASE WHEN ? = '' THEN source ELSE ? END,
			updated_at = ?
		WHERE id = ?
	`, string(status), notes, notes, source, source, time.Now().UTC(), runID)
	if err != nil {
		return fmt.Errorf("updating scout run: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update result: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetRun retrieves a run with its targets and connector paths.
func (s *scoutStore) GetRun(ctx context.Context, runID string) (*domain.ScoutRun, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, target_company, target_function, target_title, status, source, notes, created_at, updated_at
		FROM scout_runs WHERE id = ?
	`, runID)

	var run domain.ScoutRun
	var status string
	if err := row.Scan(&run.ID, &run.TargetCompany, &run.TargetFunction, &run.TargetTitle,
		&status, &run.Source, &run.Notes, &run.CreatedAt, &run.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning scout run: %w", err)
	}
	run.Status = domain.RunStatus(status)

	targets, err := s.runTargets(ctx, runID)
	if err != nil {
		return nil, err
	}
	run.Targets = targets

	paths, err := s.runPaths(ctx, runID)
	if err != nil {
		return nil, err
	}
	run.Paths = paths

	return &run, nil
}

// ListRuns returns runs newest first, without targets or paths.
func (s *scoutStore) ListRuns(ctx context.Context, limit int) ([]domain.ScoutRun, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, target_company, target_function, target_title, status, source, notes, created_at, updated_at
		FROM scout_runs ORDER BY created_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying scout runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.ScoutRun //nolint:prealloc // size unknown from query
	for rows.Next() {
		var run domain.ScoutRun
		var status string
		if err := rows.Scan(&run.ID, &run.TargetCompany, &run.TargetFunction, &run.TargetTitle,
			&status, &run.Source, &run.Notes, &run.CreatedAt, &run.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning scout run: %w", err)
		}
		run.Status = domain.RunStatus(status)
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating scout runs: %w", err)
	}
	return runs, nil
}

// SaveTargets replaces the stored targets for a run.
func (s *scoutStore) SaveTargets(ctx context.Context, runID string, targets []domain.Target) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM scout_targets WHERE run_id = ?", runID); err != nil {
		return fmt.Errorf("clearing targets: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO scout_targets (id, run_id, full_name, headline, current_title, current_company, profile_url, confidence, match_reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, target := range targets {
		if _, err := stmt.ExecContext(ctx, target.ID, runID, target.FullName, target.Headline,
			target.CurrentTitle, target.CurrentCompany, target.ProfileURL,
			target.Confidence, target.MatchReason, target.CreatedAt); err != nil {
			return fmt.Errorf("saving target: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// SaveConnectorPaths replaces the stored connector paths for a run.
func (s *scoutStore) SaveConnectorPaths(ctx context.Context, runID string, paths []domain.ConnectorPath) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM connector_paths WHERE run_id = ?", runID); err != nil {
		return fmt.Errorf("clearing connector paths: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO connector_paths (id, run_id, target_id, connector_contact_id, connector_name, connector_strength, path_score, recommended_ask, rationale, breakdown, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, path := range paths {
		var breakdownJSON any
		if path.Breakdown != nil {
			data, err := json.Marshal(path.Breakdown)
			if err != nil {
				return fmt.Errorf("marshalling breakdown: %w", err)
			}
			breakdownJSON = string(data)
		}

		if _, err := stmt.ExecContext(ctx, path.ID, runID, path.TargetID, path.ConnectorContactID,
			path.ConnectorName, path.ConnectorStrength, path.PathScore,
			string(path.RecommendedAsk), path.Rationale, breakdownJSON, path.CreatedAt); err != nil {
			return fmt.Errorf("saving connector path: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// SaveDiagnostics overwrites the diagnostics snapshot for a run: the
// summary row is upserted and attempts are replaced wholesale.
func (s *scoutStore) SaveDiagnostics(ctx context.Context, diag domain.RunDiagnostics) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx, `
		INSERT INTO run_diagnostics (run_id, source, used_seed_targets, requested_limit, effective_limit, min_confidence)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id) DO UPDATE SET
			source = excluded.source,
			used_seed_targets = excluded.used_seed_targets,
			requested_limit = excluded.requested_limit,
			effective_limit = excluded.effective_limit,
			min_confidence = excluded.min_confidence
	`, diag.RunID, diag.Source, diag.UsedSeedTargets, diag.RequestedLimit, diag.EffectiveLimit, diag.MinConfidence)
	if err != nil {
		return fmt.Errorf("saving diagnostics: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM adapter_attempts WHERE run_id = ?", diag.RunID); err != nil {
		return fmt.Errorf("clearing adapter attempts: %w", err)
	}

	for i, attempt := range diag.Attempts {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO adapter_attempts (run_id, position, adapter, status, result_count, error)
			VALUES (?, ?, ?, ?, ?, ?)
		`, diag.RunID, i, attempt.Adapter, string(attempt.Status), attempt.ResultCount, attempt.Error)
		if err != nil {
			return fmt.Errorf("saving adapter attempt: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetDiagnostics retrieves the diagnostics snapshot for a run.
func (s *scoutStore) GetDiagnostics(ctx context.Context, runID string) (*domain.RunDiagnostics, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT run_id, source, used_seed_targets, requested_limit, effective_limit, min_confidence
		FROM run_diagnostics WHERE run_id = ?
	`, runID)

	var diag domain.RunDiagnostics
	if err := row.Scan(&diag.RunID, &diag.Source, &diag.UsedSeedTargets,
		&diag.RequestedLimit, &diag.EffectiveLimit, &diag.MinConfidence); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning diagnostics: %w", err)
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT adapter, status, result_count, error
		FROM adapter_attempts WHERE run_id = ? ORDER BY position
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying adapter attempts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var attempt domain.AdapterAttempt
		var status string
		if err := rows.Scan(&attempt.Adapter, &status, &attempt.ResultCount, &attempt.Error); err != nil {
			return nil, fmt.Errorf("scanning adapter attempt: %w", err)
		}
		attempt.Status = domain.AttemptStatus(status)
		diag.Attempts = append(diag.Attempts, attempt)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating adapter attempts: %w", err)
	}
	return &diag, nil
}

// Stats aggregates all stored runs.
func (s *scoutStore) Stats(ctx context.Context) (*domain.RunStats, error) {
	stats := domain.RunStats{
		ByStatus: make(map[string]int),
		BySource: make(map[string]int),
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT status, source, created_at FROM scout_runs
	`)
	if err != nil {
		return nil, fmt.Errorf("querying run stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status, source string
		var createdAt time.Time
		if err := rows.Scan(&status, &source, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning run stats: %w", err)
		}
		stats.Total++
		stats.ByStatus[status]++
		if source != "" {
			stats.BySource[source]++
		}
		if stats.LatestRunAt == nil || createdAt.After(*stats.LatestRunAt) {
			at := createdAt
			stats.LatestRunAt = &at
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating run stats: %w", err)
	}
	return &stats, nil
}

// runTargets loads the targets belonging to a run.
func (s *scoutStore) runTargets(ctx context.Context, runID string) ([]domain.Target, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, run_id, full_name, headline, current_title, current_company, profile_url, confidence, match_reason, created_at
		FROM scout_targets WHERE run_id = ? ORDER BY confidence DESC, rowid
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying targets: %w", err)
	}
	defer rows.Close()

	var targets []domain.Target //nolint:prealloc // size unknown from query
	for rows.Next() {
		var target domain.Target
		if err := rows.Scan(&target.ID, &target.RunID, &target.FullName, &target.Headline,
			&target.CurrentTitle, &target.CurrentCompany, &target.ProfileURL,
			&target.Confidence, &target.MatchReason, &target.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning target: %w", err)
		}
		targets = append(targets, target)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating targets: %w", err)
	}
	return targets, nil
}

// runPaths loads the connector paths belonging to a run.
func (s *scoutStore) runPaths(ctx context.Context, runID string) ([]domain.ConnectorPath, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, run_id, target_id, connector_contact_id, connector_name, connector_strength, path_score, recommended_ask, rationale, breakdown, created_at
		FROM connector_paths WHERE run_id = ? ORDER BY path_score DESC, rowid
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying connector paths: %w", err)
	}
	defer rows.Close()

	var paths []domain.ConnectorPath //nolint:prealloc // size unknown from query
	for rows.Next() {
		var path domain.ConnectorPath
		var ask string
		var breakdownJSON sql.NullString
		if err := rows.Scan(&path.ID, &path.RunID, &path.TargetID, &path.ConnectorContactID,
			&path.ConnectorName, &path.ConnectorStrength, &path.PathScore,
			&ask, &path.Rationale, &breakdownJSON, &path.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning connector path: %w", err)
		}
		path.RecommendedAsk = domain.AskType(ask)

		if breakdownJSON.Valid && breakdownJSON.String != "" {
			var breakdown domain.ScoreBreakdown
			if err := json.Unmarshal([]byte(breakdownJSON.String), &breakdown); err != nil {
				return nil, fmt.Errorf("unmarshaling breakdown: %w", err)
			}
			path.Breakdown = &breakdown
		}
		paths = append(paths, path)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating connector paths: %w", err)
	}
	return paths, nil
}

// ==================== Contact Store ====================

// contactStore implements driven.ContactStore.
type contactStore struct {
	store *Store
}

var _ driven.ContactStore = (*contactStore)(nil)

// Save stores or updates a contact. The normalised company is persisted
// alongside so company lookups stay index-friendly.
func (s *contactStore) Save(ctx context.Context, contact domain.Contact) error {
	if contact.CreatedAt.IsZero() {
		contact.CreatedAt = time.Now().UTC()
	}

	var connectedOn any
	if contact.ConnectedOn != nil {
		connectedOn = *contact.ConnectedOn
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO contacts (id, name, current_title, current_company, normalised_company, connected_on, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			current_title = excluded.current_title,
			current_company = excluded.current_company,
			normalised_company = excluded.normalised_company,
			connected_on = excluded.connected_on
	`, contact.ID, contact.Name, contact.CurrentTitle, contact.CurrentCompany,
		domain.NormalizeCompanyName(contact.CurrentCompany), connectedOn, contact.CreatedAt)

	if err != nil {
		return fmt.Errorf("saving contact: %w", err)
	}
	return nil
}

// FindByCompany returns contacts whose normalised company matches.
func (s *contactStore) FindByCompany(ctx context.Context, company string) ([]domain.Contact, error) {
	normalised := domain.NormalizeCompanyName(company)
	if normalised == "" {
		return nil, nil
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, name, current_title, current_company, connected_on, created_at
		FROM contacts WHERE normalised_company = ?
		ORDER BY created_at DESC, name
	`, normalised)
	if err != nil {
		return nil, fmt.Errorf("querying contacts by company: %w", err)
	}
	defer rows.Close()

	return scanContacts(rows)
}

// List returns contacts newest first.
func (s *contactStore) List(ctx context.Context, limit int) ([]domain.Contact, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, name, current_title, current_company, connected_on, created_at
		FROM contacts ORDER BY created_at DESC, name LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying contacts: %w", err)
	}
	defer rows.Close()

	return scanContacts(rows)
}

// scanContacts scans multiple contact rows.
func scanContacts(rows *sql.Rows) ([]domain.Contact, error) {
	var contacts []domain.Contact //nolint:prealloc // size unknown from query
	for rows.Next() {
		var contact domain.Contact
		var connectedOn sql.NullTime
		if err := rows.Scan(&contact.ID, &contact.Name, &contact.CurrentTitle,
			&contact.CurrentCompany, &connectedOn, &contact.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning contact: %w", err)
		}
		if connectedOn.Valid {
			at := connectedOn.Time
			contact.ConnectedOn = &at
		}
		contacts = append(contacts, contact)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating contacts: %w", err)
	}
	return contacts, nil
}

// ==================== Learning Store ====================

// learningStore implements driven.LearningStore.
type learningStore struct {
	store *Store
}

var _ driven.LearningStore = (*learningStore)(nil)

// ActiveProfile returns the currently active weight profile.
func (s *learningStore) ActiveProfile(ctx context.Context) (*domain.WeightProfile, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, label, source, weights, sample_size, activated_at
		FROM weight_profiles WHERE is_active = 1
	`)

	var profile domain.WeightProfile
	var source, weightsJSON string
	if err := row.Scan(&profile.ID, &profile.Label, &source, &weightsJSON,
		&profile.SampleSize, &profile.ActivatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning weight profile: %w", err)
	}
	profile.Source = domain.ProfileSource(source)

	if err := json.Unmarshal([]byte(weightsJSON), &profile.Weights); err != nil {
		return nil, fmt.Errorf("unmarshaling weights: %w", err)
	}
	return &profile, nil
}

// SaveProfile stores a profile, optionally activating it. Activation
// deactivates every other profile in the same transaction.
func (s *learningStore) SaveProfile(ctx context.Context, profile domain.WeightProfile, activate bool) error {
	weightsJSON, err := json.Marshal(profile.Weights)
	if err != nil {
		return fmt.Errorf("marshalling weights: %w", err)
	}
	if profile.ActivatedAt.IsZero() {
		profile.ActivatedAt = time.Now().UTC()
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if activate {
		if _, err := tx.ExecContext(ctx, "UPDATE weight_profiles SET is_active = 0"); err != nil {
			return fmt.Errorf("deactivating profiles: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO weight_profiles (id, label, source, weights, sample_size, is_active, activated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			label = excluded.label,
			source = excluded.source,
			weights = excluded.weights,
			sample_size = excluded.sample_size,
			is_active = excluded.is_active,
			activated_at = excluded.activated_at
	`, profile.ID, profile.Label, string(profile.Source), string(weightsJSON),
		profile.SampleSize, activate, profile.ActivatedAt)
	if err != nil {
		return fmt.Errorf("saving weight profile: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// RecordFeedback appends one feedback record.
func (s *learningStore) RecordFeedback(ctx context.Context, feedback domain.Feedback) error {
	if feedback.CreatedAt.IsZero() {
		feedback.CreatedAt = time.Now().UTC()
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO feedback (id, run_id, path_id, outcome, note, source, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, feedback.ID, feedback.RunID, feedback.PathID, string(feedback.Outcome),
		feedback.Note, feedback.Source, feedback.CreatedAt)

	if err != nil {
		return fmt.Errorf("recording feedback: %w", err)
	}
	return nil
}

// ListFeedback returns feedback newest first.
func (s *learningStore) ListFeedback(ctx context.Context, limit int) ([]domain.Feedback, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, run_id, path_id, outcome, note, source, created_at
		FROM feedback ORDER BY created_at DESC, rowid DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying feedback: %w", err)
	}
	defer rows.Close()

	var records []domain.Feedback //nolint:prealloc // size unknown from query
	for rows.Next() {
		var feedback domain.Feedback
		var outcome string
		if err := rows.Scan(&feedback.ID, &feedback.RunID, &feedback.PathID,
			&outcome, &feedback.Note, &feedback.Source, &feedback.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning feedback: %w", err)
		}
		feedback.Outcome = domain.FeedbackOutcome(outcome)
		records = append(records, feedback)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating feedback: %w", err)
	}
	return records, nil
}

// TrainingSamples joins feedback with the scored breakdowns of the paths it
// refers to. Feedback whose path has no stored breakdown is skipped.
func (s *learningStore) TrainingSamples(ctx context.Context) ([]domain.TrainingSample, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT f.outcome, p.breakdown
		FROM feedback f
		JOIN connector_paths p ON p.id = f.path_id
		WHERE p.breakdown IS NOT NULL
		ORDER BY f.created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("querying training samples: %w", err)
	}
	defer rows.Close()

	var samples []domain.TrainingSample //nolint:prealloc // size unknown from query
	for rows.Next() {
		var outcome, breakdownJSON string
		if err := rows.Scan(&outcome, &breakdownJSON); err != nil {
			return nil, fmt.Errorf("scanning training sample: %w", err)
		}

		var breakdown domain.ScoreBreakdown
		if err := json.Unmarshal([]byte(breakdownJSON), &breakdown); err != nil {
			return nil, fmt.Errorf("unmarshaling breakdown: %w", err)
		}
		samples = append(samples, domain.TrainingSample{
			Breakdown: breakdown,
			Outcome:   domain.FeedbackOutcome(outcome),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating training samples: %w", err)
	}
	return samples, nil
}
