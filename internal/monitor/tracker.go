package monitor

import (
	"slices"
	"strings"
	"sync"
	"time"
)

// Status is the outcome of a monitor's latest cycle.
type Status struct {
	Task    string
	LastRun time.Time
	Next    time.Duration
}

// Tracker records the latest cycle of every monitor. It implements
// schedule.Observer and is safe for concurrent use.
type Tracker struct {
	mu       sync.Mutex
	statuses map[string]Status
}

// NewTracker creates an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{statuses: make(map[string]Status)}
}

// Observe records a finished cycle.
func (t *Tracker) Observe(task string, ranAt time.Time, next time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.statuses[task] = Status{Task: task, LastRun: ranAt, Next: next}
}

// Statuses returns the recorded cycles ordered by task name.
func (t *Tracker) Statuses() []Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Status, 0, len(t.statuses))
	for _, s := range t.statuses {
		out = append(out, s)
	}
	slices.SortFunc(out, func(a, b Status) int { return strings.Compare(a.Task, b.Task) })
	return out
}
