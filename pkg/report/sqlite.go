// pkg/report/sqlite.go
package report

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/feedbackops/cleanse/pkg/model"
)

// reportSchema rebuilds the per-export changes table with its query indexes
// and analytics views. The table is replaced on every export so repeated
// exports of the same log are idempotent.
const reportSchema = `
	DROP TABLE IF EXISTS changes;
	CREATE TABLE changes (
		column_name TEXT NOT NULL,
		operation TEXT NOT NULL,
		original_value TEXT,
		new_value TEXT,
		row_index INTEGER,
		timestamp TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_changes_operation ON changes(operation);
	CREATE INDEX IF NOT EXISTS idx_changes_column ON changes(column_name);
	CREATE INDEX IF NOT EXISTS idx_changes_timestamp ON changes(timestamp);
	CREATE INDEX IF NOT EXISTS idx_changes_row ON changes(row_index);

	DROP VIEW IF EXISTS change_summary;
	CREATE VIEW change_summary AS
	SELECT
		operation,
		column_name,
		COUNT(*) AS change_count,
		MIN(timestamp) AS first_change,
		MAX(timestamp) AS last_change
	FROM changes
	GROUP BY operation, column_name
	ORDER BY change_count DESC;

	DROP VIEW IF EXISTS recent_changes;
	CREATE VIEW recent_changes AS
	SELECT * FROM changes
	ORDER BY timestamp DESC
	LIMIT 100;

	DROP VIEW IF EXISTS top_changed_columns;
	CREATE VIEW top_changed_columns AS
	SELECT
		column_name,
		COUNT(*) AS total_changes,
		COUNT(DISTINCT operation) AS unique_operations
	FROM changes
	GROUP BY column_name
	ORDER BY total_changes DESC;
`

// writeSQLite loads the change log into a standalone SQLite database with
// precomputed indexes and summary views.
func writeSQLite(records []model.ChangeRecord, path string) error {
	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return fmt.Errorf("open report database: %w", err)
	}
	defer db.Close()

	if _, err := db.Exec(reportSchema); err != nil {
		return fmt.Errorf("build report schema: %w", err)
	}

	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("begin insert transaction: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO changes (column_name, operation, original_value, new_value, row_index, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.Exec(r.Column, r.Operation, r.OriginalValue, r.NewValue, r.RowIndex, r.Timestamp); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert change record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit changes: %w", err)
	}
	return nil
}
