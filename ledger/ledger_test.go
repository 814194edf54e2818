package ledger

import (
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"mod-ledger/model"
	"mod-ledger/moderr"
	"mod-ledger/utils/database/cases"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newLedger(t *testing.T) *Ledger {
	t.Helper()
	db, err := cases.Init(filepath.Join(t.TempDir(), "cases.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db, zap.NewNop())
}

func validInput() model.CaseInput {
	return model.CaseInput{
		ModeratorID: "mod-1",
		ActionType:  model.ActionWarn,
		Severity:    model.SeverityMedium,
		Reason:      "spam",
		GuildID:     "guild-1",
	}
}

func TestOpenCaseConcurrentNumbersAreGapFree(t *testing.T) {
	l := newLedger(t)

	const n = 50
	numbers := make(chan int64, n)
	errs := make(chan error, n)
	var wg sync.WaitGroup
	for g := 0; g < n; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			num, err := l.OpenCase(fmt.Sprintf("user-%d", g), validInput())
			if err != nil {
				errs <- err
				return
			}
			numbers <- num
		}(g)
	}
	wg.Wait()
	close(numbers)
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	seen := make(map[int64]bool, n)
	for num := range numbers {
		assert.False(t, seen[num], "case number %d issued twice", num)
		seen[num] = true
	}
	for want := int64(1); want <= n; want++ {
		assert.True(t, seen[want], "case number %d missing from allocation", want)
	}
}

func TestOpenCaseValidation(t *testing.T) {
	l := newLedger(t)
	duration := int64(30)
	tooLong := int64(model.MaxDurationMinutes + 1)

	tests := []struct {
		name    string
		subject string
		mutate  func(*model.CaseInput)
	}{
		{"empty subject", "", func(in *model.CaseInput) {}},
		{"empty moderator", "user-1", func(in *model.CaseInput) { in.ModeratorID = "" }},
		{"unknown action", "user-1", func(in *model.CaseInput) { in.ActionType = "obliterate" }},
		{"unknown severity", "user-1", func(in *model.CaseInput) { in.Severity = "apocalyptic" }},
		{"empty reason", "user-1", func(in *model.CaseInput) { in.Reason = "   " }},
		{"timeout without duration", "user-1", func(in *model.CaseInput) { in.ActionType = model.ActionTimeout }},
		{"silence without duration", "user-1", func(in *model.CaseInput) { in.ActionType = model.ActionSilence }},
		{"duration too long", "user-1", func(in *model.CaseInput) {
			in.ActionType = model.ActionTimeout
			in.DurationMinutes = &tooLong
		}},
		{"duration below range", "user-1", func(in *model.CaseInput) {
			zero := int64(0)
			in.ActionType = model.ActionTimeout
			in.DurationMinutes = &zero
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			_, err := l.OpenCase(tt.subject, in)
			assert.True(t, moderr.IsValidation(err), "expected validation error, got %v", err)
		})
	}

	// No case may have been written by any rejected input.
	all, err := l.ListAll("")
	require.NoError(t, err)
	assert.Empty(t, all)

	in := validInput()
	in.ActionType = model.ActionTimeout
	in.DurationMinutes = &duration
	num, err := l.OpenCase("user-1", in)
	require.NoError(t, err)
	assert.Equal(t, int64(1), num, "failed validations must not consume case numbers")
}

func TestResolveCaseIdempotence(t *testing.T) {
	l := newLedger(t)

	num, err := l.OpenCase("user-1", validInput())
	require.NoError(t, err)

	require.NoError(t, l.ResolveCase("user-1", num, "resolver-1", "handled"))

	err = l.ResolveCase("user-1", num, "resolver-2", "again")
	assert.True(t, moderr.IsConflict(err))

	record, err := l.GetCase("user-1", num)
	require.NoError(t, err)
	require.NotNil(t, record.ResolvedBy)
	assert.Equal(t, "resolver-1", *record.ResolvedBy)
	require.NotNil(t, record.ResolutionComment)
	assert.Equal(t, "handled", *record.ResolutionComment)
}

func TestResolveCaseNotFound(t *testing.T) {
	l := newLedger(t)
	err := l.ResolveCase("user-1", 7, "resolver-1", "")
	assert.True(t, moderr.IsNotFound(err))
}

func TestOpenCaseFreezesEvidence(t *testing.T) {
	l := newLedger(t)

	in := validInput()
	in.Evidence = model.EvidenceSnapshot{
		Messages: []model.EvidenceMessage{
			{MessageID: "m1", ChannelID: "c1", AuthorID: "user-1", Content: "buy cheap nitro"},
		},
		CapturedAt: 1700000000,
	}
	num, err := l.OpenCase("user-1", in)
	require.NoError(t, err)

	record, err := l.GetCase("user-1", num)
	require.NoError(t, err)
	assert.Contains(t, record.Evidence, "buy cheap nitro")
	assert.Contains(t, record.Evidence, `"captured_at":1700000000`)
}
