package model

// ModeratorCount is one leaderboard entry, keyed by the moderator's
// canonical ID rather than a display name.
type ModeratorCount struct {
	ModeratorID string
	Count       int
}

// TrendBucket is one UTC calendar day of case volume. Days with no
// cases still get a bucket with Count 0.
type TrendBucket struct {
	Day   string // "2006-01-02", UTC
	Count int
}

// StatsReport is the read-side summary over the case ledger for one
// guild and period.
type StatsReport struct {
	GuildID        string
	TotalCases     int
	OpenCases      int
	ResolvedCases  int
	ResolutionRate float64 // percent, one decimal
	ByAction       map[ActionType]int
	BySeverity     map[Severity]int
	ByModerator    map[string]int
	TopModerators  []ModeratorCount
	DailyTrend     []TrendBucket
}
