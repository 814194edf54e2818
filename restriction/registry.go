// Package restriction holds the single-restriction-per-subject registry
// and the timer engine that expires entries on schedule. Correctness
// under concurrent apply/remove/extend and timer fires rests on two
// mechanisms: a per-subject lock serializing state changes, and a
// monotonic generation token that lets a fired timer detect it is
// acting on superseded state.
package restriction

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"mod-ledger/gateway"
	"mod-ledger/model"
	"mod-ledger/moderr"
	"mod-ledger/utils/database/restrictions"

	"github.com/jmoiron/sqlx"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

type Registry struct {
	db    *sqlx.DB
	gw    gateway.ActionGateway
	cfg   model.GatewayConfig
	log   *zap.Logger
	audit *zap.Logger
	sched *Scheduler

	// gen issues generation tokens. Seeded from the highest persisted
	// generation during Recover so a recovered timer can never collide
	// with a token issued after restart.
	gen atomic.Int64

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex

	now func() time.Time
}

func NewRegistry(db *sqlx.DB, gw gateway.ActionGateway, cfg model.GatewayConfig, log *zap.Logger) *Registry {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.BaseBackoff <= 0 {
		cfg.BaseBackoff = 500 * time.Millisecond
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	r := &Registry{
		db:    db,
		gw:    gw,
		cfg:   cfg,
		log:   log,
		audit: log.Named("audit"),
		locks: make(map[string]*sync.Mutex),
		now:   time.Now,
	}
	r.sched = NewScheduler(r.onTimerFired)
	return r
}

// Scheduler exposes the timer engine, mainly for shutdown.
func (r *Registry) Scheduler() *Scheduler {
	return r.sched
}

// Get returns the active restriction for a subject, or nil.
func (r *Registry) Get(subjectID string) (*model.Restriction, error) {
	return restrictions.Get(r.db, subjectID)
}

// Apply places a new restriction on a subject. The platform effect is
// applied first; if the gateway call fails nothing is persisted. A
// subject with an active restriction yields a Conflict.
func (r *Registry) Apply(ctx context.Context, in model.RestrictionInput) (*model.Restriction, error) {
	if err := validateRestrictionInput(in); err != nil {
		return nil, err
	}

	mu := r.subjectLock(in.SubjectID)
	mu.Lock()
	defer mu.Unlock()

	existing, err := restrictions.Get(r.db, in.SubjectID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, moderr.Conflict("subject %s already has an active %s restriction", in.SubjectID, existing.Type)
	}

	duration := time.Duration(in.DurationMinutes) * time.Minute
	gctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	err = r.gw.ApplyRestriction(gctx, in.SubjectID, in.Type, in.GuildID, duration)
	cancel()
	if err != nil {
		return nil, moderr.Gateway(fmt.Sprintf("failed to apply %s restriction to subject %s", in.Type, in.SubjectID), err)
	}

	record := &model.Restriction{
		SubjectID:       in.SubjectID,
		Type:            in.Type,
		StartedAt:       r.now().Unix(),
		DurationMinutes: in.DurationMinutes,
		ModeratorID:     in.ModeratorID,
		ModComment:      in.ModComment,
		UserComment:     in.UserComment,
		GuildID:         in.GuildID,
		Generation:      r.gen.Add(1),
	}
	if err := restrictions.Insert(r.db, record); err != nil {
		// The platform effect is already live; best-effort rollback so
		// the subject is not restricted without a registry entry.
		rctx, rcancel := context.WithTimeout(context.Background(), r.cfg.Timeout)
		if rbErr := r.gw.RemoveRestriction(rctx, in.SubjectID, in.Type, in.GuildID); rbErr != nil {
			r.audit.Error("restriction rollback failed after persist error; manual intervention required",
				zap.String("subject_id", in.SubjectID),
				zap.String("restriction_type", string(in.Type)),
				zap.Error(rbErr))
		}
		rcancel()
		return nil, err
	}

	r.sched.Arm(in.SubjectID, record.Generation, duration)
	r.log.Info("restriction applied",
		zap.String("subject_id", in.SubjectID),
		zap.String("restriction_type", string(in.Type)),
		zap.Int64("duration_minutes", in.DurationMinutes),
		zap.Int64("generation", record.Generation))
	return record, nil
}

// Remove lifts a restriction before its scheduled expiry. The registry
// entry is deleted and the timer invalidated first so the restriction
// cannot outlive the removal even if the gateway call fails; a gateway
// failure is still surfaced to the caller as it needs manual cleanup.
func (r *Registry) Remove(ctx context.Context, subjectID, reason string) (*model.Restriction, error) {
	mu := r.subjectLock(subjectID)
	mu.Lock()
	defer mu.Unlock()

	existing, err := restrictions.Get(r.db, subjectID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, moderr.NotFound("no active restriction for subject %s", subjectID)
	}

	if err := restrictions.Delete(r.db, subjectID); err != nil {
		return nil, err
	}
	r.sched.Cancel(subjectID)

	if err := r.removeWithRetry(ctx, existing); err != nil {
		r.audit.Error("restriction removal left platform effect in place; manual intervention required",
			zap.String("subject_id", subjectID),
			zap.String("restriction_type", string(existing.Type)),
			zap.String("reason", reason),
			zap.Error(err))
		return existing, moderr.Gateway(fmt.Sprintf("restriction for subject %s removed from registry, but the platform effect could not be lifted", subjectID), err)
	}

	r.log.Info("restriction removed",
		zap.String("subject_id", subjectID),
		zap.String("restriction_type", string(existing.Type)),
		zap.String("reason", reason))
	return existing, nil
}

// Extend adds time to an active restriction. The new generation is
// persisted before the old timer can observe it, which turns any
// in-flight fire for the previous generation into a no-op.
func (r *Registry) Extend(ctx context.Context, subjectID string, additionalMinutes int64) (*model.Restriction, error) {
	if additionalMinutes < 1 {
		return nil, moderr.Validation("additional minutes must be at least 1, got %d", additionalMinutes)
	}

	mu := r.subjectLock(subjectID)
	mu.Lock()
	defer mu.Unlock()

	existing, err := restrictions.Get(r.db, subjectID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, moderr.NotFound("no active restriction for subject %s", subjectID)
	}

	newDuration := existing.DurationMinutes + additionalMinutes
	if newDuration > model.MaxDurationMinutes {
		return nil, moderr.Validation("extended duration %d minutes exceeds the maximum of %d", newDuration, model.MaxDurationMinutes)
	}

	newGen := r.gen.Add(1)
	if err := restrictions.UpdateDuration(r.db, subjectID, newDuration, existing.Generation, newGen); err != nil {
		return nil, err
	}

	existing.DurationMinutes = newDuration
	existing.Generation = newGen
	r.sched.Arm(subjectID, newGen, existing.Remaining(r.now()))

	r.log.Info("restriction extended",
		zap.String("subject_id", subjectID),
		zap.Int64("additional_minutes", additionalMinutes),
		zap.Int64("generation", newGen))
	return existing, nil
}

// Recover rehydrates timers from the registry after a restart. Entries
// already past due are expired synchronously before this returns, so an
// expired restriction is never still enforced once the service accepts
// traffic.
func (r *Registry) Recover(ctx context.Context) error {
	maxGen, err := restrictions.MaxGeneration(r.db)
	if err != nil {
		return err
	}
	r.gen.Store(maxGen)

	records, err := restrictions.ListAll(r.db)
	if err != nil {
		return err
	}

	now := r.now()
	expired, armed := 0, 0
	for i := range records {
		rec := records[i]
		mu := r.subjectLock(rec.SubjectID)
		mu.Lock()
		if remaining := rec.Remaining(now); remaining <= 0 {
			r.expireLocked(ctx, &rec)
			expired++
		} else {
			r.sched.Arm(rec.SubjectID, rec.Generation, remaining)
			armed++
		}
		mu.Unlock()
	}

	r.log.Info("restriction recovery complete",
		zap.Int("expired", expired),
		zap.Int("rescheduled", armed))
	return nil
}

// onTimerFired runs on the timer goroutine. It re-reads the registry
// under the subject lock; a missing entry or a generation mismatch
// means the restriction was removed, extended or replaced since the
// timer was armed, and the fire is a no-op.
func (r *Registry) onTimerFired(subjectID string, generation int64) {
	mu := r.subjectLock(subjectID)
	mu.Lock()
	defer mu.Unlock()

	existing, err := restrictions.Get(r.db, subjectID)
	if err != nil {
		r.log.Error("expiry fire could not read registry", zap.String("subject_id", subjectID), zap.Error(err))
		return
	}
	if existing == nil || existing.Generation != generation {
		r.log.Debug("stale expiry fire ignored",
			zap.String("subject_id", subjectID),
			zap.Int64("fired_generation", generation))
		return
	}

	r.expireLocked(context.Background(), existing)
}

// expireLocked lifts the platform effect and deletes the registry
// entry. The caller holds the subject lock. If the gateway keeps
// failing after bounded retries the entry is expired anyway: a
// restriction must never persist past its intended duration, and the
// discrepancy goes to the audit log as a manual-intervention item.
func (r *Registry) expireLocked(ctx context.Context, rec *model.Restriction) {
	if err := r.removeWithRetry(ctx, rec); err != nil {
		r.audit.Error("expiry gateway removal failed after retries; manual intervention required",
			zap.String("subject_id", rec.SubjectID),
			zap.String("restriction_type", string(rec.Type)),
			zap.String("guild_id", rec.GuildID),
			zap.Error(err))
	}

	if err := restrictions.Delete(r.db, rec.SubjectID); err != nil && !moderr.IsNotFound(err) {
		r.log.Error("failed to delete expired restriction", zap.String("subject_id", rec.SubjectID), zap.Error(err))
		return
	}

	r.log.Info("restriction expired",
		zap.String("subject_id", rec.SubjectID),
		zap.String("restriction_type", string(rec.Type)),
		zap.Int64("generation", rec.Generation))
}

func (r *Registry) removeWithRetry(ctx context.Context, rec *model.Restriction) error {
	backoff := retry.WithMaxRetries(uint64(r.cfg.MaxAttempts-1), retry.NewExponential(r.cfg.BaseBackoff))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		gctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
		if err := r.gw.RemoveRestriction(gctx, rec.SubjectID, rec.Type, rec.GuildID); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
}

func (r *Registry) subjectLock(subjectID string) *sync.Mutex {
	r.locksMu.Lock()
	defer r.locksMu.Unlock()
	mu, ok := r.locks[subjectID]
	if !ok {
		mu = &sync.Mutex{}
		r.locks[subjectID] = mu
	}
	return mu
}

func validateRestrictionInput(in model.RestrictionInput) error {
	if in.SubjectID == "" {
		return moderr.Validation("subject id is required")
	}
	if in.ModeratorID == "" {
		return moderr.Validation("moderator id is required")
	}
	if !in.Type.Valid() {
		return moderr.Validation("unknown restriction type %q", in.Type)
	}
	if in.DurationMinutes < 1 || in.DurationMinutes > model.MaxDurationMinutes {
		return moderr.Validation("duration %d minutes is out of range [1, %d]", in.DurationMinutes, model.MaxDurationMinutes)
	}
	return nil
}
