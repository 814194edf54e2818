package bot

import (
	"context"
	"time"

	"mod-ledger/ledger"
	"mod-ledger/model"
	"mod-ledger/restriction"
	"mod-ledger/stats"
)

// Service is the library API consumed by the command layer. It fronts
// the case ledger and the restriction registry; everything user-facing
// (embeds, replies, permissions) stays outside.
type Service struct {
	ledger   *ledger.Ledger
	registry *restriction.Registry
	now      func() time.Time
}

func NewService(l *ledger.Ledger, r *restriction.Registry) *Service {
	return &Service{
		ledger:   l,
		registry: r,
		now:      time.Now,
	}
}

// OpenCase records a new moderation case and returns its case number.
func (s *Service) OpenCase(ctx context.Context, subjectID string, in model.CaseInput) (int64, error) {
	return s.ledger.OpenCase(subjectID, in)
}

// ResolveCase closes an open case. Resolving twice is a Conflict.
func (s *Service) ResolveCase(ctx context.Context, subjectID string, caseNumber int64, resolverID, comment string) error {
	return s.ledger.ResolveCase(subjectID, caseNumber, resolverID, comment)
}

// GetCase returns a single case record.
func (s *Service) GetCase(ctx context.Context, subjectID string, caseNumber int64) (*model.Case, error) {
	return s.ledger.GetCase(subjectID, caseNumber)
}

// CaseHistory returns every case on record for a subject.
func (s *Service) CaseHistory(ctx context.Context, subjectID string) ([]model.Case, error) {
	return s.ledger.ListBySubject(subjectID)
}

// GetStats computes the moderation stats report for a guild over the
// given period. A period of zero means all time.
func (s *Service) GetStats(ctx context.Context, guildID string, period time.Duration) (*model.StatsReport, error) {
	records, err := s.ledger.ListAll(guildID)
	if err != nil {
		return nil, err
	}
	return stats.Compute(records, guildID, period, s.now()), nil
}

// ApplyRestriction places a time-bounded restriction on a subject.
func (s *Service) ApplyRestriction(ctx context.Context, in model.RestrictionInput) (*model.Restriction, error) {
	return s.registry.Apply(ctx, in)
}

// RemoveRestriction lifts a restriction ahead of schedule.
func (s *Service) RemoveRestriction(ctx context.Context, subjectID, reason string) (*model.Restriction, error) {
	return s.registry.Remove(ctx, subjectID, reason)
}

// ExtendRestriction adds time to an active restriction.
func (s *Service) ExtendRestriction(ctx context.Context, subjectID string, additionalMinutes int64) (*model.Restriction, error) {
	return s.registry.Extend(ctx, subjectID, additionalMinutes)
}

// GetRestriction returns the active restriction for a subject, nil if none.
func (s *Service) GetRestriction(ctx context.Context, subjectID string) (*model.Restriction, error) {
	return s.registry.Get(subjectID)
}
