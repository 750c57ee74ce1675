package schedule

import (
	"context"
	"io"
	"log/slog"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestNextDelay(t *testing.T) {
	tests := []struct {
		name       string
		candidates []int64
		fallback   time.Duration
		now        int64
		want       time.Duration
	}{
		{
			name:       "earliest future candidate",
			candidates: []int64{150, 300},
			fallback:   600 * time.Second,
			now:        100,
			want:       50 * time.Second,
		},
		{
			name:       "order does not matter",
			candidates: []int64{300, 150},
			fallback:   600 * time.Second,
			now:        100,
			want:       50 * time.Second,
		},
		{
			name:     "no candidates",
			fallback: 600 * time.Second,
			now:      100,
			want:     600 * time.Second,
		},
		{
			name:       "past timestamps ignored",
			candidates: []int64{90},
			fallback:   600 * time.Second,
			now:        100,
			want:       600 * time.Second,
		},
		{
			name:       "candidate equal to now ignored",
			candidates: []int64{100},
			fallback:   600 * time.Second,
			now:        100,
			want:       600 * time.Second,
		},
		{
			name:       "mixed past and future",
			candidates: []int64{0, 90, 400, 250},
			fallback:   600 * time.Second,
			now:        100,
			want:       150 * time.Second,
		},
		{
			name:       "far future saturates",
			candidates: []int64{253402300799},
			fallback:   5 * time.Minute,
			now:        1700000000,
			want:       time.Duration(math.MaxInt64),
		},
		{
			name:       "gap just past duration range saturates",
			candidates: []int64{20_000_000_000},
			fallback:   5 * time.Minute,
			now:        100,
			want:       time.Duration(math.MaxInt64),
		},
		{
			name:       "millisecond timestamp saturates",
			candidates: []int64{1_700_000_000_000},
			fallback:   5 * time.Minute,
			now:        1_700_000_000,
			want:       time.Duration(math.MaxInt64),
		},
		{
			name:       "earlier candidate wins over far future",
			candidates: []int64{253402300799, 400},
			fallback:   5 * time.Minute,
			now:        100,
			want:       300 * time.Second,
		},
		{
			name:       "one second ahead",
			candidates: []int64{101},
			fallback:   600 * time.Second,
			now:        100,
			want:       time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextDelay(tt.candidates, tt.fallback, tt.now)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("NextDelay() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

type countingTask struct {
	mu     sync.Mutex
	cycles int
	delay  time.Duration
	times  []time.Time
}

func (c *countingTask) Name() string { return "counting" }

func (c *countingTask) Cycle(_ context.Context, now time.Time) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cycles++
	c.times = append(c.times, now)
	return c.delay
}

func (c *countingTask) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cycles
}

type recordingObserver struct {
	mu    sync.Mutex
	calls []time.Duration
}

func (r *recordingObserver) Observe(_ string, _ time.Time, next time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, next)
}

func (r *recordingObserver) first() (time.Duration, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		return 0, false
	}
	return r.calls[0], true
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunnerCyclesImmediately(t *testing.T) {
	task := &countingTask{delay: time.Hour}
	obs := &recordingObserver{}
	r := NewRunner(discardLogger(), obs)
	fixed := time.Unix(1000, 0)
	r.SetClock(func() time.Time { return fixed })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx, task)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for task.count() == 0 {
		select {
		case <-deadline:
			t.Fatal("task never ran")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after context cancellation")
	}

	if diff := cmp.Diff(1, task.count()); diff != "" {
		t.Errorf("cycle count (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(fixed, task.times[0]); diff != "" {
		t.Errorf("cycle time (-want +got):\n%s", diff)
	}
	got, ok := obs.first()
	if !ok {
		t.Fatal("observer not called")
	}
	if diff := cmp.Diff(time.Hour, got); diff != "" {
		t.Errorf("observed delay (-want +got):\n%s", diff)
	}
}

func TestRunnerClampsDelay(t *testing.T) {
	task := &countingTask{delay: 0}
	obs := &recordingObserver{}
	r := NewRunner(discardLogger(), obs)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	r.Run(ctx, task)

	// A zero delay must not spin: one cycle, then a MinDelay sleep that outlives ctx.
	if diff := cmp.Diff(1, task.count()); diff != "" {
		t.Errorf("cycle count (-want +got):\n%s", diff)
	}
	got, _ := obs.first()
	if diff := cmp.Diff(MinDelay, got); diff != "" {
		t.Errorf("observed delay (-want +got):\n%s", diff)
	}
}

func TestRunnerCancelledBeforeStart(t *testing.T) {
	task := &countingTask{delay: time.Millisecond}
	r := NewRunner(discardLogger(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r.Run(ctx, task)

	if diff := cmp.Diff(0, task.count()); diff != "" {
		t.Errorf("expected no cycles when context cancelled (-want +got):\n%s", diff)
	}
}
