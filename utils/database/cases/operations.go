package cases

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"mod-ledger/model"
	"mod-ledger/moderr"

	"github.com/jmoiron/sqlx"
)

// InsertAllocated atomically advances the high-water mark and inserts
// the case record with the freshly allocated number, in a single
// transaction. The number is only visible to the caller once the
// transaction commits, so a failed commit never leaks a case number.
func InsertAllocated(db *sqlx.DB, record *model.Case) (int64, error) {
	tx, err := db.Beginx()
	if err != nil {
		return 0, moderr.Persistence("failed to begin case insert", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`UPDATE case_sequence SET high_water = high_water + 1 WHERE id = 1`); err != nil {
		return 0, moderr.Persistence("failed to advance high-water mark", err)
	}

	var number int64
	if err := tx.Get(&number, `SELECT high_water FROM case_sequence WHERE id = 1`); err != nil {
		return 0, moderr.Persistence("failed to read allocated case number", err)
	}

	record.CaseNumber = number
	query := `INSERT INTO cases (case_number, subject_id, moderator_id, action_type, severity, reason, duration_minutes, status, created_at, evidence, guild_id)
			  VALUES (:case_number, :subject_id, :moderator_id, :action_type, :severity, :reason, :duration_minutes, :status, :created_at, :evidence, :guild_id)`
	if _, err := tx.NamedExec(query, record); err != nil {
		return 0, moderr.Persistence("failed to insert case record", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, moderr.Persistence("failed to commit case insert", err)
	}
	return number, nil
}

// GetCase retrieves a single case by subject and case number.
func GetCase(db *sqlx.DB, subjectID string, caseNumber int64) (*model.Case, error) {
	var record model.Case
	query := `SELECT * FROM cases WHERE subject_id = ? AND case_number = ?`
	err := db.Get(&record, query, subjectID, caseNumber)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, moderr.NotFound("case #%d for subject %s does not exist", caseNumber, subjectID)
	}
	if err != nil {
		return nil, moderr.Persistence(fmt.Sprintf("failed to get case #%d", caseNumber), err)
	}
	return &record, nil
}

// ListAll retrieves all case records for a specific guild. An empty
// guild ID returns every case in the ledger.
func ListAll(db *sqlx.DB, guildID string) ([]model.Case, error) {
	var records []model.Case
	var err error
	if guildID == "" {
		err = db.Select(&records, `SELECT * FROM cases`)
	} else {
		err = db.Select(&records, `SELECT * FROM cases WHERE guild_id = ?`, guildID)
	}
	if err != nil {
		return nil, moderr.Persistence("failed to list cases", err)
	}
	return records, nil
}

// ListBySubject retrieves all case records for a specific subject.
func ListBySubject(db *sqlx.DB, subjectID string) ([]model.Case, error) {
	var records []model.Case
	err := db.Select(&records, `SELECT * FROM cases WHERE subject_id = ?`, subjectID)
	if err != nil {
		return nil, moderr.Persistence(fmt.Sprintf("failed to list cases for subject %s", subjectID), err)
	}
	return records, nil
}

// ListByStatus retrieves all case records in the given lifecycle state.
func ListByStatus(db *sqlx.DB, status model.CaseStatus) ([]model.Case, error) {
	var records []model.Case
	err := db.Select(&records, `SELECT * FROM cases WHERE status = ?`, status)
	if err != nil {
		return nil, moderr.Persistence(fmt.Sprintf("failed to list %s cases", status), err)
	}
	return records, nil
}

// MarkResolved transitions a case from open to resolved, setting the
// resolution fields exactly once. The status re-check runs inside the
// transaction so two concurrent resolvers cannot both win.
func MarkResolved(db *sqlx.DB, subjectID string, caseNumber int64, resolverID, comment string, now time.Time) error {
	tx, err := db.Beginx()
	if err != nil {
		return moderr.Persistence("failed to begin case resolve", err)
	}
	defer tx.Rollback()

	var status model.CaseStatus
	err = tx.Get(&status, `SELECT status FROM cases WHERE subject_id = ? AND case_number = ?`, subjectID, caseNumber)
	if errors.Is(err, sql.ErrNoRows) {
		return moderr.NotFound("case #%d for subject %s does not exist", caseNumber, subjectID)
	}
	if err != nil {
		return moderr.Persistence(fmt.Sprintf("failed to read case #%d status", caseNumber), err)
	}
	if status == model.CaseResolved {
		return moderr.Conflict("case #%d is already resolved", caseNumber)
	}

	query := `UPDATE cases SET status = ?, resolved_at = ?, resolved_by = ?, resolution_comment = ?
			  WHERE subject_id = ? AND case_number = ? AND status = ?`
	res, err := tx.Exec(query, model.CaseResolved, now.Unix(), resolverID, comment, subjectID, caseNumber, model.CaseOpen)
	if err != nil {
		return moderr.Persistence(fmt.Sprintf("failed to resolve case #%d", caseNumber), err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return moderr.Persistence(fmt.Sprintf("failed to check rows affected for case #%d", caseNumber), err)
	}
	if affected == 0 {
		return moderr.Conflict("case #%d is already resolved", caseNumber)
	}

	if err := tx.Commit(); err != nil {
		return moderr.Persistence("failed to commit case resolve", err)
	}
	return nil
}
