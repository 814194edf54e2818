// Package stats computes read-side summaries over the case ledger.
// Computation is pure: given the same case set, period and clock, the
// report is identical, including bucket ordering.
package stats

import (
	"math"
	"sort"
	"time"

	"mod-ledger/model"
)

// TopModeratorLimit caps the leaderboard length.
const TopModeratorLimit = 10

// Compute builds a StatsReport over the given cases. A period of zero
// or less means all time. Cases are included when created_at >= now-period.
func Compute(records []model.Case, guildID string, period time.Duration, now time.Time) *model.StatsReport {
	var since time.Time
	if period > 0 {
		since = now.Add(-period)
	}

	report := &model.StatsReport{
		GuildID:     guildID,
		ByAction:    make(map[model.ActionType]int),
		BySeverity:  make(map[model.Severity]int),
		ByModerator: make(map[string]int),
	}

	var included []model.Case
	for _, c := range records {
		if !since.IsZero() && c.CreatedAt < since.Unix() {
			continue
		}
		included = append(included, c)
	}

	for _, c := range included {
		report.TotalCases++
		if c.Status == model.CaseResolved {
			report.ResolvedCases++
		} else {
			report.OpenCases++
		}
		report.ByAction[c.ActionType]++
		report.BySeverity[c.Severity]++
		// Grouped by the canonical moderator ID. Display names are
		// mutable and can collide across moderators.
		report.ByModerator[c.ModeratorID]++
	}

	if report.TotalCases > 0 {
		rate := float64(report.ResolvedCases) / float64(report.TotalCases) * 100
		report.ResolutionRate = math.Round(rate*10) / 10
	}

	report.TopModerators = topModerators(report.ByModerator)
	report.DailyTrend = dailyTrend(included, since, now)
	return report
}

// topModerators orders by count descending, ties broken by ascending
// moderator ID so the ordering is deterministic.
func topModerators(counts map[string]int) []model.ModeratorCount {
	out := make([]model.ModeratorCount, 0, len(counts))
	for id, n := range counts {
		out = append(out, model.ModeratorCount{ModeratorID: id, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].ModeratorID < out[j].ModeratorID
	})
	if len(out) > TopModeratorLimit {
		out = out[:TopModeratorLimit]
	}
	return out
}

// dailyTrend buckets case volume per UTC calendar day, oldest first.
// Every day in the window gets a bucket, including empty ones.
func dailyTrend(records []model.Case, since, now time.Time) []model.TrendBucket {
	if len(records) == 0 {
		return nil
	}

	start := since
	if start.IsZero() {
		earliest := records[0].CreatedAt
		for _, c := range records[1:] {
			if c.CreatedAt < earliest {
				earliest = c.CreatedAt
			}
		}
		start = time.Unix(earliest, 0)
	}
	startDay := start.UTC().Truncate(24 * time.Hour)
	endDay := now.UTC().Truncate(24 * time.Hour)

	perDay := make(map[string]int)
	for _, c := range records {
		perDay[c.CreatedTime().Format("2006-01-02")]++
	}

	var buckets []model.TrendBucket
	for day := startDay; !day.After(endDay); day = day.Add(24 * time.Hour) {
		key := day.Format("2006-01-02")
		buckets = append(buckets, model.TrendBucket{Day: key, Count: perDay[key]})
	}
	return buckets
}
