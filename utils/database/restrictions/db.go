package restrictions

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// Init initializes the restriction database and ensures the table exists.
// subject_id is the primary key: the schema itself enforces that at most
// one restriction exists per subject.
func Init(dbPath string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to connect to restriction database: %w", err)
	}

	schema := `CREATE TABLE IF NOT EXISTS restrictions (
	          subject_id TEXT PRIMARY KEY,
	          restriction_type TEXT NOT NULL,
	          started_at INTEGER NOT NULL,
	          duration_minutes INTEGER NOT NULL,
	          moderator_id TEXT NOT NULL,
	          mod_comment TEXT NOT NULL DEFAULT '',
	          user_comment TEXT NOT NULL DEFAULT '',
	          guild_id TEXT NOT NULL DEFAULT '',
	          generation INTEGER NOT NULL
	      );`
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create restrictions table: %w", err)
	}

	return db, nil
}
