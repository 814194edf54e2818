package restriction

import (
	"sync"
	"time"
)

// Scheduler arms one deferred expiry task per subject. Cancellation is
// cooperative: the armed timer captures the generation current at arm
// time, and the fire callback is responsible for re-checking it against
// the registry before acting. Stopping the underlying timer here is an
// optimization, not the correctness mechanism.
type Scheduler struct {
	mu     sync.Mutex
	timers map[string]*armedTimer
	fire   func(subjectID string, generation int64)
}

type armedTimer struct {
	timer      *time.Timer
	generation int64
}

func NewScheduler(fire func(subjectID string, generation int64)) *Scheduler {
	return &Scheduler{
		timers: make(map[string]*armedTimer),
		fire:   fire,
	}
}

// Arm schedules an expiry fire for the subject after d, replacing any
// previously armed timer. At most one timer per subject is ever live.
func (s *Scheduler) Arm(subjectID string, generation int64, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if armed, ok := s.timers[subjectID]; ok {
		armed.timer.Stop()
	}
	armed := &armedTimer{generation: generation}
	armed.timer = time.AfterFunc(d, func() {
		s.clear(subjectID, generation)
		s.fire(subjectID, generation)
	})
	s.timers[subjectID] = armed
}

// Cancel stops and drops the subject's armed timer, if any.
func (s *Scheduler) Cancel(subjectID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if armed, ok := s.timers[subjectID]; ok {
		armed.timer.Stop()
		delete(s.timers, subjectID)
	}
}

// Stop cancels every armed timer. Used during shutdown.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for subjectID, armed := range s.timers {
		armed.timer.Stop()
		delete(s.timers, subjectID)
	}
}

// Pending reports whether a timer is currently armed for the subject.
func (s *Scheduler) Pending(subjectID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.timers[subjectID]
	return ok
}

// clear removes the map entry for a fired timer, unless it was already
// replaced by a newer generation.
func (s *Scheduler) clear(subjectID string, generation int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if armed, ok := s.timers[subjectID]; ok && armed.generation == generation {
		delete(s.timers, subjectID)
	}
}
