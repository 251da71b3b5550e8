package worker

import (
	"context"
	"errors"
	"time"

	"github.com/vytor/revplan/internal/logger"
)

// Every submits a job built by newJob immediately and then once per
// interval until ctx is cancelled. A tick that finds the queue full is
// skipped. It returns nil on cancellation.
func Every(ctx context.Context, pool *Pool, interval time.Duration, newJob func() Job) error {
	log := logger.FromContext(ctx).WithPrefix("scheduler")
	if interval <= 0 {
		return errors.New("schedule interval must be positive")
	}
	log.Info("scheduling every %v", interval)

	submit := func() {
		if err := pool.Submit(newJob()); err != nil && !errors.Is(err, ErrQueueFull) {
			log.Warn("failed to submit job: %v", err)
		}
	}

	submit()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Debug("scheduler stopped")
			return nil
		case <-ticker.C:
			submit()
		}
	}
}
