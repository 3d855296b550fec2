package sync

import (
	"context"
	stdsync "sync"
	"time"

	"go.uber.org/zap"
)

// DefaultQuietPeriod is how long after the last trigger a sync fires.
const DefaultQuietPeriod = 2 * time.Second

type SyncRunner interface {
	Sync(ctx context.Context) (Stats, error)
}

// Scheduler coalesces bursts of triggers into one sync with a
// trailing-edge debounce, then retries a failed sync exactly once. The
// engine's single-flight guard is the correctness mechanism for overlap;
// the debounce only trims latency and chatter.
type Scheduler struct {
	runner SyncRunner
	quiet  time.Duration
	log    *zap.SugaredLogger

	mu    stdsync.Mutex
	timer *time.Timer
}

func NewScheduler(runner SyncRunner, quiet time.Duration, log *zap.SugaredLogger) *Scheduler {
	if quiet <= 0 {
		quiet = DefaultQuietPeriod
	}
	return &Scheduler{
		runner: runner,
		quiet:  quiet,
		log:    log,
	}
}

// RequestSync is fire-and-forget. Every call restarts the quiet window;
// the sync runs once the window elapses without another call.
func (scheduler *Scheduler) RequestSync() {
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()

	if scheduler.timer != nil {
		scheduler.timer.Stop()
	}
	scheduler.timer = time.AfterFunc(scheduler.quiet, scheduler.runOnce)
}

// Stop cancels a pending trigger. A sync already running is not
// interrupted.
func (scheduler *Scheduler) Stop() {
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()

	if scheduler.timer != nil {
		scheduler.timer.Stop()
		scheduler.timer = nil
	}
}

func (scheduler *Scheduler) runOnce() {
	ctx := context.Background()
	if _, err := scheduler.runner.Sync(ctx); err != nil {
		scheduler.log.Warnw("sync failed, retrying once", "error", err)
		if _, err := scheduler.runner.Sync(ctx); err != nil {
			// Give up until the next natural trigger (new write,
			// app foreground, sign-in).
			scheduler.log.Errorw("sync retry failed", "error", err)
		}
	}
}
