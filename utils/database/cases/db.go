package cases

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// Init initializes the case database and ensures all necessary tables are created.
func Init(dbPath string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to connect to case database: %w", err)
	}

	casesSchema := `CREATE TABLE IF NOT EXISTS cases (
	          case_number INTEGER PRIMARY KEY,
	          subject_id TEXT NOT NULL,
	          moderator_id TEXT NOT NULL,
	          action_type TEXT NOT NULL,
	          severity TEXT NOT NULL,
	          reason TEXT NOT NULL,
	          duration_minutes INTEGER,
	          status TEXT NOT NULL DEFAULT 'open',
	          created_at INTEGER NOT NULL,
	          resolved_at INTEGER,
	          resolved_by TEXT,
	          resolution_comment TEXT,
	          evidence TEXT NOT NULL DEFAULT '{}',
	          guild_id TEXT NOT NULL DEFAULT ''
	      );
	      CREATE INDEX IF NOT EXISTS idx_cases_subject ON cases(subject_id);
	      CREATE INDEX IF NOT EXISTS idx_cases_status ON cases(status);`
	if _, err := db.Exec(casesSchema); err != nil {
		return nil, fmt.Errorf("failed to create cases table: %w", err)
	}

	// Single-row table holding the allocator high-water mark.
	seqSchema := `CREATE TABLE IF NOT EXISTS case_sequence (
	          id INTEGER PRIMARY KEY CHECK (id = 1),
	          high_water INTEGER NOT NULL
	      );`
	if _, err := db.Exec(seqSchema); err != nil {
		return nil, fmt.Errorf("failed to create case_sequence table: %w", err)
	}

	if err := bootstrapSequence(db); err != nil {
		return nil, err
	}

	return db, nil
}

// bootstrapSequence reconciles the high-water mark with the cases table.
// This scan runs once at startup; steady-state allocation never derives
// numbers from existing records.
func bootstrapSequence(db *sqlx.DB) error {
	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin sequence bootstrap: %w", err)
	}
	defer tx.Rollback()

	var maxCase int64
	if err := tx.Get(&maxCase, `SELECT COALESCE(MAX(case_number), 0) FROM cases`); err != nil {
		return fmt.Errorf("failed to scan max case number: %w", err)
	}

	var stored int64
	err = tx.Get(&stored, `SELECT high_water FROM case_sequence WHERE id = 1`)
	switch {
	case err == nil:
		if maxCase > stored {
			if _, err := tx.Exec(`UPDATE case_sequence SET high_water = ? WHERE id = 1`, maxCase); err != nil {
				return fmt.Errorf("failed to reconcile high-water mark: %w", err)
			}
		}
	case errors.Is(err, sql.ErrNoRows):
		if _, err := tx.Exec(`INSERT INTO case_sequence (id, high_water) VALUES (1, ?)`, maxCase); err != nil {
			return fmt.Errorf("failed to seed high-water mark: %w", err)
		}
	default:
		return fmt.Errorf("failed to read high-water mark: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit sequence bootstrap: %w", err)
	}
	return nil
}
