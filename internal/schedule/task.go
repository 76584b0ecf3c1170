package schedule

import (
	"context"
	"log/slog"
	"time"
)

type Task interface {
	Run(ctx context.Context) error
	Name() string
}

// Every runs task immediately and then once per interval until ctx is done.
// A failed run is logged and does not stop the schedule.
func Every(ctx context.Context, interval time.Duration, task Task) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		runOnce(ctx, task)
		select {
		case <-ctx.Done():
			slog.Info("scheduled task stopped", "task", task.Name())
			return
		case <-ticker.C:
		}
	}
}

func runOnce(ctx context.Context, task Task) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("scheduled task panic", "task", task.Name(), "panic", r)
		}
	}()
	start := time.Now()
	if err := task.Run(ctx); err != nil {
		slog.Error("scheduled task failed", "task", task.Name(), "error", err)
		return
	}
	slog.Debug("scheduled task done", "task", task.Name(), "cost", time.Since(start))
}
