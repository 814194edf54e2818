package model

import "time"

// RestrictionType is the behavioral limitation applied to a subject.
type RestrictionType string

const (
	RestrictSilence         RestrictionType = "silence"
	RestrictVoiceTimeout    RestrictionType = "voice_timeout"
	RestrictFullRestriction RestrictionType = "full_restriction"
	RestrictIsolation       RestrictionType = "isolation"
)

func (r RestrictionType) Valid() bool {
	switch r {
	case RestrictSilence, RestrictVoiceTimeout, RestrictFullRestriction, RestrictIsolation:
		return true
	}
	return false
}

// Restriction is the single active restriction for a subject. The
// database table is named 'restrictions' and subject_id is the primary
// key: at most one row per subject exists at any time.
type Restriction struct {
	SubjectID       string          `db:"subject_id"`
	Type            RestrictionType `db:"restriction_type"`
	StartedAt       int64           `db:"started_at"` // unix seconds
	DurationMinutes int64           `db:"duration_minutes"`
	ModeratorID     string          `db:"moderator_id"`
	ModComment      string          `db:"mod_comment"`
	UserComment     string          `db:"user_comment"`
	GuildID         string          `db:"guild_id"`
	// Generation is bumped on every apply/extend. A scheduled expiry
	// fire that captured an older generation must not act.
	Generation int64 `db:"generation"`
}

// ExpiresAt returns the instant the restriction is due to lapse.
func (r *Restriction) ExpiresAt() time.Time {
	return time.Unix(r.StartedAt, 0).Add(time.Duration(r.DurationMinutes) * time.Minute)
}

// Remaining returns how much of the restriction is left at now.
// Negative values mean it is already past due.
func (r *Restriction) Remaining(now time.Time) time.Duration {
	return r.ExpiresAt().Sub(now)
}

// RestrictionInput is the boundary payload for applying a restriction.
type RestrictionInput struct {
	SubjectID       string
	Type            RestrictionType
	DurationMinutes int64
	ModeratorID     string
	ModComment      string
	UserComment     string
	GuildID         string
}
