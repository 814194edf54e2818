package model

import "time"

// ActionType is the kind of moderation action recorded in a case.
type ActionType string

const (
	ActionWarn    ActionType = "warn"
	ActionTimeout ActionType = "timeout"
	ActionKick    ActionType = "kick"
	ActionBan     ActionType = "ban"
	ActionModNote ActionType = "mod_note"
	ActionSilence ActionType = "silence"
)

// Valid reports whether the action type is one of the known values.
func (a ActionType) Valid() bool {
	switch a {
	case ActionWarn, ActionTimeout, ActionKick, ActionBan, ActionModNote, ActionSilence:
		return true
	}
	return false
}

// RequiresDuration reports whether the action carries a mandatory duration.
func (a ActionType) RequiresDuration() bool {
	return a == ActionTimeout || a == ActionSilence
}

// Severity grades how serious a case is.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// CaseStatus is the lifecycle state of a case. Open is the initial
// state, Resolved is terminal.
type CaseStatus string

const (
	CaseOpen     CaseStatus = "open"
	CaseResolved CaseStatus = "resolved"
)

// MaxDurationMinutes is the upper bound for timeout/silence durations (28 days).
const MaxDurationMinutes = 40320

// Case is a single moderation case record. The database table is named
// 'cases'. Everything except the resolution fields is immutable once
// written.
type Case struct {
	CaseNumber        int64      `db:"case_number"` // allocator-issued, gap-free
	SubjectID         string     `db:"subject_id"`
	ModeratorID       string     `db:"moderator_id"`
	ActionType        ActionType `db:"action_type"`
	Severity          Severity   `db:"severity"`
	Reason            string     `db:"reason"`
	DurationMinutes   *int64     `db:"duration_minutes"`
	Status            CaseStatus `db:"status"`
	CreatedAt         int64      `db:"created_at"` // unix seconds
	ResolvedAt        *int64     `db:"resolved_at"`
	ResolvedBy        *string    `db:"resolved_by"`
	ResolutionComment *string    `db:"resolution_comment"`
	Evidence          string     `db:"evidence"` // JSON snapshot, captured at creation
	GuildID           string     `db:"guild_id"`
}

// CreatedTime returns the creation timestamp as a time.Time.
func (c *Case) CreatedTime() time.Time {
	return time.Unix(c.CreatedAt, 0).UTC()
}

// CaseInput is the boundary payload for opening a case.
type CaseInput struct {
	ModeratorID     string
	ActionType      ActionType
	Severity        Severity
	Reason          string
	DurationMinutes *int64
	Evidence        EvidenceSnapshot
	GuildID         string
}

// EvidenceMessage is one message captured as evidence.
type EvidenceMessage struct {
	MessageID   string   `json:"message_id"`
	ChannelID   string   `json:"channel_id"`
	AuthorID    string   `json:"author_id"`
	Content     string   `json:"content"`
	Attachments []string `json:"attachments,omitempty"` // local file paths
	SentAt      int64    `json:"sent_at"`
}

// EvidenceSnapshot is the contextual data frozen at case creation.
type EvidenceSnapshot struct {
	Messages       []EvidenceMessage `json:"messages,omitempty"`
	PriorDeletions []string          `json:"prior_deletions,omitempty"`
	CapturedAt     int64             `json:"captured_at"`
}
