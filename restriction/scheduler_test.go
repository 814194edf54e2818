package restriction

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fireRecorder struct {
	mu    sync.Mutex
	fires []int64
}

func (f *fireRecorder) fire(subjectID string, generation int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fires = append(f.fires, generation)
}

func (f *fireRecorder) generations() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int64(nil), f.fires...)
}

func TestArmFires(t *testing.T) {
	rec := &fireRecorder{}
	s := NewScheduler(rec.fire)
	defer s.Stop()

	s.Arm("user-1", 1, 10*time.Millisecond)
	require.Eventually(t, func() bool {
		return len(rec.generations()) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []int64{1}, rec.generations())
	assert.False(t, s.Pending("user-1"))
}

func TestRearmReplacesOlderTimer(t *testing.T) {
	rec := &fireRecorder{}
	s := NewScheduler(rec.fire)
	defer s.Stop()

	s.Arm("user-1", 1, 30*time.Millisecond)
	s.Arm("user-1", 2, 60*time.Millisecond)

	require.Eventually(t, func() bool {
		return len(rec.generations()) > 0
	}, time.Second, 5*time.Millisecond)

	// Only the newest generation may fire; the replaced timer was stopped.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, []int64{2}, rec.generations())
}

func TestCancelPreventsFire(t *testing.T) {
	rec := &fireRecorder{}
	s := NewScheduler(rec.fire)
	defer s.Stop()

	s.Arm("user-1", 1, 20*time.Millisecond)
	s.Cancel("user-1")
	assert.False(t, s.Pending("user-1"))

	time.Sleep(60 * time.Millisecond)
	assert.Empty(t, rec.generations())
}

func TestOneTimerPerSubject(t *testing.T) {
	rec := &fireRecorder{}
	s := NewScheduler(rec.fire)
	defer s.Stop()

	for gen := int64(1); gen <= 5; gen++ {
		s.Arm("user-1", gen, time.Minute)
	}
	s.Arm("user-2", 10, time.Minute)

	s.mu.Lock()
	count := len(s.timers)
	s.mu.Unlock()
	assert.Equal(t, 2, count, "re-arming must replace, not stack, timers")
}

func TestStopCancelsEverything(t *testing.T) {
	rec := &fireRecorder{}
	s := NewScheduler(rec.fire)

	s.Arm("user-1", 1, 20*time.Millisecond)
	s.Arm("user-2", 2, 20*time.Millisecond)
	s.Stop()

	time.Sleep(60 * time.Millisecond)
	assert.Empty(t, rec.generations())
	assert.False(t, s.Pending("user-1"))
	assert.False(t, s.Pending("user-2"))
}
