// Package schedule computes adaptive wake-up delays and drives recurring tasks.
package schedule

import (
	"context"
	"log/slog"
	"math"
	"time"
)

// MinDelay is the shortest delay NextDelay returns for a future candidate.
const MinDelay = time.Second

// maxDelaySeconds is the largest gap, in seconds, a time.Duration can hold.
const maxDelaySeconds = int64(math.MaxInt64 / int64(time.Second))

// NextDelay returns how long to wait until the earliest candidate unix time
// after now, but never less than MinDelay. Gaps too large for a
// time.Duration saturate. Without such a candidate it returns fallback.
func NextDelay(candidates []int64, fallback time.Duration, now int64) time.Duration {
	var next int64
	found := false
	for _, c := range candidates {
		if c <= now {
			continue
		}
		if !found || c < next {
			next = c
			found = true
		}
	}
	if !found {
		return fallback
	}
	gap := next - now
	if gap < 0 || gap > maxDelaySeconds {
		return time.Duration(math.MaxInt64)
	}
	return max(MinDelay, time.Duration(gap)*time.Second)
}

// Task is one recurring unit of work.
type Task interface {
	Name() string
	// Cycle runs once and returns how long to wait before the next run.
	Cycle(ctx context.Context, now time.Time) time.Duration
}

// Observer is notified after every cycle.
type Observer interface {
	Observe(task string, ranAt time.Time, next time.Duration)
}

// Runner repeatedly runs tasks, sleeping between cycles for the delay each
// cycle asks for.
type Runner struct {
	log      *slog.Logger
	now      func() time.Time
	observer Observer
}

// NewRunner creates a Runner using the wall clock.
func NewRunner(log *slog.Logger, observer Observer) *Runner {
	return &Runner{
		log:      log,
		now:      time.Now,
		observer: observer,
	}
}

// SetClock overrides the time source (useful for testing).
func (r *Runner) SetClock(now func() time.Time) {
	r.now = now
}

// Run cycles t until ctx is cancelled.
func (r *Runner) Run(ctx context.Context, t Task) {
	r.log.Info("task started", "task", t.Name())
	defer r.log.Info("task stopped", "task", t.Name())

	for ctx.Err() == nil {
		start := r.now()
		delay := t.Cycle(ctx, start)
		if delay < MinDelay {
			delay = MinDelay
		}
		if r.observer != nil {
			r.observer.Observe(t.Name(), start, delay)
		}
		r.log.Debug("task sleeping", "task", t.Name(), "delay", delay)

		if !sleep(ctx, delay) {
			return
		}
	}
}

// sleep waits for d and reports false if ctx was cancelled first.
func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
