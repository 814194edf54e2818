package bot

import (
	"sync"
	"time"

	"mod-ledger/tasks"
)

const evidenceSweepInterval = 6 * time.Hour

// TaskScheduler manages the periodic background tasks: the stats
// leaderboard refresh and the evidence retention sweep. Restriction
// expiry is not handled here; that is the restriction package's own
// per-subject timer engine.
type TaskScheduler struct {
	bot  *Bot
	done chan struct{}
	wg   sync.WaitGroup
}

func NewTaskScheduler(b *Bot) *TaskScheduler {
	return &TaskScheduler{
		bot:  b,
		done: make(chan struct{}),
	}
}

// Start begins all scheduled tasks.
func (s *TaskScheduler) Start() {
	s.wg.Add(2)
	go s.runStatsPublisher()
	go s.runEvidenceCleaner()
}

// Stop signals all tasks to finish and waits for them.
func (s *TaskScheduler) Stop() {
	close(s.done)
	s.wg.Wait()
}

func (s *TaskScheduler) runStatsPublisher() {
	defer s.wg.Done()

	cfg := s.bot.GetConfig()
	if len(cfg.StatsChannels) == 0 {
		return
	}
	publisher := tasks.NewStatsPublisher(s.bot.Session, s.bot.ledger, cfg.StatsChannels, cfg.StatsPeriod, s.bot.Log)

	publisher.PublishAll()
	ticker := time.NewTicker(cfg.StatsInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			publisher.PublishAll()
		case <-s.done:
			return
		}
	}
}

func (s *TaskScheduler) runEvidenceCleaner() {
	defer s.wg.Done()

	cfg := s.bot.GetConfig()
	ticker := time.NewTicker(evidenceSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			tasks.CleanOldEvidence(cfg.Evidence, s.bot.Log)
		case <-s.done:
			return
		}
	}
}
