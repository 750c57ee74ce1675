// Package supervisor runs the monitors and long-lived services side by side
// and stops all of them together.
package supervisor

import (
	"context"
	"errors"
	"log/slog"

	"github.com/oklog/run"

	"garden_bot/internal/schedule"
)

// TaskRunner drives one recurring task until ctx is cancelled.
type TaskRunner interface {
	Run(ctx context.Context, t schedule.Task)
}

// Service is a long-lived component that blocks until ctx is cancelled.
type Service interface {
	Run(ctx context.Context)
}

// Run starts every task on runner and every service, each in its own
// goroutine. It returns once ctx is cancelled or any member exits, after all
// members have stopped.
func Run(ctx context.Context, log *slog.Logger, runner TaskRunner, tasks []schedule.Task, services ...Service) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var g run.Group
	g.Add(func() error {
		<-ctx.Done()
		return ctx.Err()
	}, func(error) {
		cancel()
	})

	for _, t := range tasks {
		t := t
		g.Add(func() error {
			runner.Run(ctx, t)
			return nil
		}, func(error) {
			cancel()
		})
	}
	for _, s := range services {
		s := s
		g.Add(func() error {
			s.Run(ctx)
			return nil
		}, func(error) {
			cancel()
		})
	}

	log.Info("supervisor started", "tasks", len(tasks), "services", len(services))
	err := g.Run()
	log.Info("supervisor stopped")
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
