// pkg/registry/registry.go
package registry

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/feedbackops/cleanse/pkg/model"
)

// registrySchema creates the run and change tables if they are missing.
// The registry database accumulates runs across invocations, so nothing
// here is destructive.
const registrySchema = `
CREATE TABLE IF NOT EXISTS pipeline_runs (
    run_id INTEGER PRIMARY KEY AUTOINCREMENT,
    timestamp TEXT NOT NULL,
    cleaner_type TEXT NOT NULL,
    input_file TEXT NOT NULL,
    output_file TEXT NOT NULL,
    total_records INTEGER NOT NULL,
    total_changes INTEGER NOT NULL,
    duration_seconds REAL NOT NULL,
    status TEXT NOT NULL DEFAULT 'completed'
);

CREATE TABLE IF NOT EXISTS changes (
    change_id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id INTEGER NOT NULL,
    timestamp TEXT NOT NULL,
    column_name TEXT NOT NULL,
    operation TEXT NOT NULL,
    original_value TEXT,
    new_value TEXT,
    row_index INTEGER,
    FOREIGN KEY (run_id) REFERENCES pipeline_runs (run_id)
);

CREATE INDEX IF NOT EXISTS idx_changes_run_id ON changes (run_id);
CREATE INDEX IF NOT EXISTS idx_changes_column ON changes (column_name);
CREATE INDEX IF NOT EXISTS idx_changes_operation ON changes (operation);
CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON pipeline_runs (timestamp);
`

// RunMetadata describes one pipeline run to be recorded.
type RunMetadata struct {
	Timestamp       string  `db:"timestamp"`
	CleanerType     string  `db:"cleaner_type"`
	InputFile       string  `db:"input_file"`
	OutputFile      string  `db:"output_file"`
	TotalRecords    int     `db:"total_records"`
	TotalChanges    int     `db:"total_changes"`
	DurationSeconds float64 `db:"duration_seconds"`
	Status          string  `db:"status"`
}

// RunSummary is a recorded run as read back from the registry.
type RunSummary struct {
	RunID           int64   `db:"run_id"`
	Timestamp       string  `db:"timestamp"`
	CleanerType     string  `db:"cleaner_type"`
	InputFile       string  `db:"input_file"`
	OutputFile      string  `db:"output_file"`
	TotalRecords    int     `db:"total_records"`
	TotalChanges    int     `db:"total_changes"`
	DurationSeconds float64 `db:"duration_seconds"`
	Status          string  `db:"status"`
}

// Registry persists run history and full change detail in a single SQLite
// database shared across pipeline invocations.
type Registry struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// Open connects to the registry database at path, creating the file if it
// does not exist yet.
func Open(path string, logger *zap.Logger) (*Registry, error) {
	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open registry database: %w", err)
	}

	// The sqlite3 driver serializes writes; a single connection avoids
	// database-is-locked errors under concurrent use.
	db.SetMaxOpenConns(1)

	return &Registry{
		db:     db,
		logger: logger.Named("run-registry"),
	}, nil
}

// Close releases the underlying database handle.
func (r *Registry) Close() error {
	return r.db.Close()
}

// Initialize creates the registry tables and indexes. Safe to call on
// every startup.
func (r *Registry) Initialize(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, registrySchema); err != nil {
		return fmt.Errorf("failed to initialize registry schema: %w", err)
	}
	r.logger.Debug("Registry schema ready")
	return nil
}

// StoreRun records one run and all of its changes in a single transaction.
// Either the run row and every change row land together, or nothing is
// written. Returns the new run ID.
func (r *Registry) StoreRun(ctx context.Context, meta RunMetadata, changes []model.ChangeRecord) (int64, error) {
	if meta.Status == "" {
		meta.Status = "completed"
	}
	if meta.Timestamp == "" {
		meta.Timestamp = time.Now().UTC().Format(model.TimestampLayout)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin registry transaction: %w", err)
	}

	runID, err := r.storeRunTx(ctx, tx, meta, changes)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			r.logger.Warn("Registry rollback failed", zap.Error(rbErr))
		}
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit registry transaction: %w", err)
	}

	r.logger.Info("Recorded pipeline run",
		zap.Int64("run_id", runID),
		zap.String("cleaner_type", meta.CleanerType),
		zap.Int("total_changes", len(changes)))

	return runID, nil
}

func (r *Registry) storeRunTx(ctx context.Context, tx *sqlx.Tx, meta RunMetadata, changes []model.ChangeRecord) (int64, error) {
	res, err := tx.NamedExecContext(ctx, `
		INSERT INTO pipeline_runs
			(timestamp, cleaner_type, input_file, output_file,
			 total_records, total_changes, duration_seconds, status)
		VALUES
			(:timestamp, :cleaner_type, :input_file, :output_file,
			 :total_records, :total_changes, :duration_seconds, :status)`, meta)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run metadata: %w", err)
	}

	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read new run ID: %w", err)
	}

	stmt, err := tx.PreparexContext(ctx, `
		INSERT INTO changes
			(run_id, timestamp, column_name, operation,
			 original_value, new_value, row_index)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare change insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range changes {
		_, err := stmt.ExecContext(ctx, runID, c.Timestamp, c.Column, c.Operation,
			c.OriginalValue, c.NewValue, c.RowIndex)
		if err != nil {
			return 0, fmt.Errorf("failed to insert change record: %w", err)
		}
	}

	return runID, nil
}

// GetRecentRuns returns up to limit runs, most recent first.
func (r *Registry) GetRecentRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 10
	}

	var runs []RunSummary
	err := r.db.SelectContext(ctx, &runs, `
		SELECT run_id, timestamp, cleaner_type, input_file, output_file,
		       total_records, total_changes, duration_seconds, status
		FROM pipeline_runs
		ORDER BY run_id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent runs: %w", err)
	}
	return runs, nil
}

// GetRunChanges returns every change recorded for one run.
func (r *Registry) GetRunChanges(ctx context.Context, runID int64) ([]model.ChangeRecord, error) {
	var changes []model.ChangeRecord
	err := r.db.SelectContext(ctx, &changes, `
		SELECT column_name, operation, original_value, new_value, row_index, timestamp
		FROM changes
		WHERE run_id = ?
		ORDER BY change_id`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query run changes: %w", err)
	}
	return changes, nil
}

// DB exposes the underlying handle for ad-hoc queries, used by the
// interactive shell.
func (r *Registry) DB() *sqlx.DB {
	return r.db
}
