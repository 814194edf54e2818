package bot

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"mod-ledger/ledger"
	"mod-ledger/model"
	"mod-ledger/moderr"
	"mod-ledger/restriction"
	"mod-ledger/utils/database/cases"
	"mod-ledger/utils/database/restrictions"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type nopGateway struct {
	mu      sync.Mutex
	applied int
	removed int
}

func (g *nopGateway) ApplyRestriction(ctx context.Context, subjectID string, t model.RestrictionType, guildID string, d time.Duration) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.applied++
	return nil
}

func (g *nopGateway) RemoveRestriction(ctx context.Context, subjectID string, t model.RestrictionType, guildID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.removed++
	return nil
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	dir := t.TempDir()

	caseDB, err := cases.Init(filepath.Join(dir, "cases.db"))
	require.NoError(t, err)
	t.Cleanup(func() { caseDB.Close() })

	restrictionDB, err := restrictions.Init(filepath.Join(dir, "restrictions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { restrictionDB.Close() })

	log := zap.NewNop()
	l := ledger.New(caseDB, log)
	reg := restriction.NewRegistry(restrictionDB, &nopGateway{}, model.GatewayConfig{
		Timeout:     time.Second,
		MaxAttempts: 3,
		BaseBackoff: time.Millisecond,
	}, log)
	t.Cleanup(reg.Scheduler().Stop)

	return NewService(l, reg)
}

// The end-to-end scenario: two cases on an empty ledger take numbers 1
// and 2, resolving the first yields a 50% all-time resolution rate.
func TestServiceEndToEnd(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	n1, err := svc.OpenCase(ctx, "42", model.CaseInput{
		ModeratorID: "9",
		ActionType:  model.ActionWarn,
		Severity:    model.SeverityMedium,
		Reason:      "spam",
		GuildID:     "guild-1",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n1)

	n2, err := svc.OpenCase(ctx, "7", model.CaseInput{
		ModeratorID: "9",
		ActionType:  model.ActionModNote,
		Severity:    model.SeverityLow,
		Reason:      "repeat offender",
		GuildID:     "guild-1",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n2)

	require.NoError(t, svc.ResolveCase(ctx, "42", 1, "9", "handled"))

	report, err := svc.GetStats(ctx, "guild-1", 0)
	require.NoError(t, err)
	assert.Equal(t, 2, report.TotalCases)
	assert.Equal(t, 1, report.OpenCases)
	assert.Equal(t, 1, report.ResolvedCases)
	assert.Equal(t, 50.0, report.ResolutionRate)
}

func TestServiceRestrictionRoundTrip(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	r, err := svc.ApplyRestriction(ctx, model.RestrictionInput{
		SubjectID:       "42",
		Type:            model.RestrictSilence,
		DurationMinutes: 30,
		ModeratorID:     "9",
		GuildID:         "guild-1",
	})
	require.NoError(t, err)

	active, err := svc.GetRestriction(ctx, "42")
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, r.Generation, active.Generation)

	extended, err := svc.ExtendRestriction(ctx, "42", 15)
	require.NoError(t, err)
	assert.Equal(t, int64(45), extended.DurationMinutes)

	_, err = svc.RemoveRestriction(ctx, "42", "appealed")
	require.NoError(t, err)

	active, err = svc.GetRestriction(ctx, "42")
	require.NoError(t, err)
	assert.Nil(t, active)

	_, err = svc.RemoveRestriction(ctx, "42", "appealed")
	assert.True(t, moderr.IsNotFound(err))
}
