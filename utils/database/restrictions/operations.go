package restrictions

import (
	"database/sql"
	"errors"
	"fmt"

	"mod-ledger/model"
	"mod-ledger/moderr"

	"github.com/jmoiron/sqlx"
	sqlite3 "github.com/mattn/go-sqlite3"
)

// Insert persists a new restriction. The primary-key constraint turns a
// second insert for the same subject into a Conflict error.
func Insert(db *sqlx.DB, r *model.Restriction) error {
	query := `INSERT INTO restrictions (subject_id, restriction_type, started_at, duration_minutes, moderator_id, mod_comment, user_comment, guild_id, generation)
			  VALUES (:subject_id, :restriction_type, :started_at, :duration_minutes, :moderator_id, :mod_comment, :user_comment, :guild_id, :generation)`
	_, err := db.NamedExec(query, r)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey {
			return moderr.Conflict("subject %s already has an active restriction", r.SubjectID)
		}
		return moderr.Persistence(fmt.Sprintf("failed to insert restriction for subject %s", r.SubjectID), err)
	}
	return nil
}

// Get retrieves the active restriction for a subject, or nil if none exists.
func Get(db *sqlx.DB, subjectID string) (*model.Restriction, error) {
	var r model.Restriction
	err := db.Get(&r, `SELECT * FROM restrictions WHERE subject_id = ?`, subjectID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, moderr.Persistence(fmt.Sprintf("failed to get restriction for subject %s", subjectID), err)
	}
	return &r, nil
}

// ListAll retrieves every persisted restriction. Used by the scheduler
// recovery pass at startup.
func ListAll(db *sqlx.DB) ([]model.Restriction, error) {
	var records []model.Restriction
	if err := db.Select(&records, `SELECT * FROM restrictions`); err != nil {
		return nil, moderr.Persistence("failed to list restrictions", err)
	}
	return records, nil
}

// UpdateDuration extends a restriction's duration and bumps its
// generation. The generation predicate guards against racing writers.
func UpdateDuration(db *sqlx.DB, subjectID string, newDuration, oldGeneration, newGeneration int64) error {
	query := `UPDATE restrictions SET duration_minutes = ?, generation = ? WHERE subject_id = ? AND generation = ?`
	res, err := db.Exec(query, newDuration, newGeneration, subjectID, oldGeneration)
	if err != nil {
		return moderr.Persistence(fmt.Sprintf("failed to extend restriction for subject %s", subjectID), err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return moderr.Persistence(fmt.Sprintf("failed to check rows affected for subject %s", subjectID), err)
	}
	if affected == 0 {
		return moderr.NotFound("no active restriction for subject %s at generation %d", subjectID, oldGeneration)
	}
	return nil
}

// Delete removes a restriction row. Returns NotFound if no row existed.
func Delete(db *sqlx.DB, subjectID string) error {
	res, err := db.Exec(`DELETE FROM restrictions WHERE subject_id = ?`, subjectID)
	if err != nil {
		return moderr.Persistence(fmt.Sprintf("failed to delete restriction for subject %s", subjectID), err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return moderr.Persistence(fmt.Sprintf("failed to check rows affected for subject %s", subjectID), err)
	}
	if affected == 0 {
		return moderr.NotFound("no active restriction for subject %s", subjectID)
	}
	return nil
}

// MaxGeneration returns the highest persisted generation, used to seed
// the in-process generation counter after a restart so stale timers can
// never collide with fresh ones.
func MaxGeneration(db *sqlx.DB) (int64, error) {
	var max int64
	if err := db.Get(&max, `SELECT COALESCE(MAX(generation), 0) FROM restrictions`); err != nil {
		return 0, moderr.Persistence("failed to read max restriction generation", err)
	}
	return max, nil
}
