package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/suggestbox/suggestbox/internal/store"
)

// Scheduler periodically purges click log rows that have aged out of every
// ranking window. Aged rows are invisible to ranking either way; the purge
// keeps the log bounded.
type Scheduler struct {
	store    store.Store
	log      *zap.Logger
	interval time.Duration
	retain   time.Duration
}

// New creates a purge scheduler. retain should cover the longest aging window
// in use, since source ranking typically looks further back than shortcut
// ranking.
func New(s store.Store, log *zap.Logger, interval, statAge, sourceAge time.Duration) *Scheduler {
	if interval == 0 {
		interval = time.Hour
	}
	retain := statAge
	if sourceAge > retain {
		retain = sourceAge
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{store: s, log: log, interval: interval, retain: retain}
}

// Run starts the purge loop. Blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Run immediately on start.
	s.Purge(ctx)

	s.log.Info("scheduler running",
		zap.Duration("interval", s.interval),
		zap.Duration("retain", s.retain))

	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.Purge(ctx)
		}
	}
}

// Purge runs a single purge pass.
func (s *Scheduler) Purge(ctx context.Context) {
	n, err := s.store.PurgeOlderThan(ctx, time.Now().Add(-s.retain))
	if err != nil {
		s.log.Error("purge failed", zap.Error(err))
		return
	}
	if n > 0 {
		s.log.Info("purged aged click rows", zap.Int64("rows", n))
	}
}
