// Package ledger owns case numbering and the case lifecycle. Case
// numbers are issued by a durable high-water mark advanced in the same
// transaction that stores the case record, so the allocated sequence
// has no duplicates and no gaps even under concurrent writers.
package ledger

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"mod-ledger/model"
	"mod-ledger/moderr"
	"mod-ledger/utils/database/cases"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

type Ledger struct {
	db  *sqlx.DB
	log *zap.Logger

	// allocMu serializes the allocate-and-insert step. Reads and
	// resolves for different case numbers proceed concurrently.
	allocMu sync.Mutex

	now func() time.Time
}

func New(db *sqlx.DB, log *zap.Logger) *Ledger {
	return &Ledger{
		db:  db,
		log: log,
		now: time.Now,
	}
}

// OpenCase validates the action data, allocates the next case number
// and persists the record in one atomic step. Applying the real-world
// effect of the action is the gateway's business, not the ledger's.
func (l *Ledger) OpenCase(subjectID string, in model.CaseInput) (int64, error) {
	if err := validateInput(subjectID, in); err != nil {
		return 0, err
	}

	now := l.now()
	if in.Evidence.CapturedAt == 0 {
		in.Evidence.CapturedAt = now.Unix()
	}
	evidenceJSON, err := json.Marshal(in.Evidence)
	if err != nil {
		return 0, moderr.Validation("failed to encode evidence snapshot: %v", err)
	}

	record := &model.Case{
		SubjectID:       subjectID,
		ModeratorID:     in.ModeratorID,
		ActionType:      in.ActionType,
		Severity:        in.Severity,
		Reason:          in.Reason,
		DurationMinutes: in.DurationMinutes,
		Status:          model.CaseOpen,
		CreatedAt:       now.Unix(),
		Evidence:        string(evidenceJSON),
		GuildID:         in.GuildID,
	}

	l.allocMu.Lock()
	number, err := cases.InsertAllocated(l.db, record)
	l.allocMu.Unlock()
	if err != nil {
		return 0, err
	}

	l.log.Info("case opened",
		zap.Int64("case_number", number),
		zap.String("subject_id", subjectID),
		zap.String("action_type", string(in.ActionType)),
		zap.String("severity", string(in.Severity)))
	return number, nil
}

// ResolveCase transitions a case to its terminal state. A second
// resolve for the same case returns a Conflict and leaves the original
// resolution untouched.
func (l *Ledger) ResolveCase(subjectID string, caseNumber int64, resolverID, comment string) error {
	if resolverID == "" {
		return moderr.Validation("resolver id is required")
	}
	if err := cases.MarkResolved(l.db, subjectID, caseNumber, resolverID, comment, l.now()); err != nil {
		return err
	}
	l.log.Info("case resolved",
		zap.Int64("case_number", caseNumber),
		zap.String("subject_id", subjectID),
		zap.String("resolved_by", resolverID))
	return nil
}

// GetCase retrieves a single case record.
func (l *Ledger) GetCase(subjectID string, caseNumber int64) (*model.Case, error) {
	return cases.GetCase(l.db, subjectID, caseNumber)
}

// ListBySubject returns the full case history of a subject.
func (l *Ledger) ListBySubject(subjectID string) ([]model.Case, error) {
	return cases.ListBySubject(l.db, subjectID)
}

// ListAll returns every case for a guild (all guilds when empty).
func (l *Ledger) ListAll(guildID string) ([]model.Case, error) {
	return cases.ListAll(l.db, guildID)
}

func validateInput(subjectID string, in model.CaseInput) error {
	if subjectID == "" {
		return moderr.Validation("subject id is required")
	}
	if in.ModeratorID == "" {
		return moderr.Validation("moderator id is required")
	}
	if !in.ActionType.Valid() {
		return moderr.Validation("unknown action type %q", in.ActionType)
	}
	if !in.Severity.Valid() {
		return moderr.Validation("unknown severity %q", in.Severity)
	}
	if strings.TrimSpace(in.Reason) == "" {
		return moderr.Validation("reason must not be empty")
	}
	if in.ActionType.RequiresDuration() && in.DurationMinutes == nil {
		return moderr.Validation("action %q requires a duration", in.ActionType)
	}
	if in.DurationMinutes != nil {
		if d := *in.DurationMinutes; d < 1 || d > model.MaxDurationMinutes {
			return moderr.Validation("duration %d minutes is out of range [1, %d]", d, model.MaxDurationMinutes)
		}
	}
	return nil
}
