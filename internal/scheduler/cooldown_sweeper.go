package scheduler

import (
	"context"
	"time"

	"intake_backend/internal/assessment/repository"
	"intake_backend/platform/logger"
)

const defaultCooldownSweepInterval = 5 * time.Minute

// CooldownSweeper periodically removes expired IP cooldown records.
type CooldownSweeper struct {
	guard    repository.CooldownGuard
	log      *logger.Logger
	interval time.Duration
	now      func() time.Time
}

func NewCooldownSweeper(guard repository.CooldownGuard, log *logger.Logger, interval time.Duration) *CooldownSweeper {
	if interval <= 0 {
		interval = defaultCooldownSweepInterval
	}

	return &CooldownSweeper{
		guard:    guard,
		log:      log,
		interval: interval,
		now:      time.Now,
	}
}

func (s *CooldownSweeper) Run(ctx context.Context) {
	if s == nil || s.guard == nil {
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *CooldownSweeper) sweep(ctx context.Context) {
	removed, err := s.guard.Sweep(ctx, s.now())
	if err != nil {
		s.log.Warn("cooldown sweep failed", "error", err)
		return
	}

	if removed > 0 {
		s.log.Debug("cooldown sweep removed expired records", "removed", removed)
	}
}
