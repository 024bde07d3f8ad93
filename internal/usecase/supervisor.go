package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/user/harvester-service/pkg/metrics"
)

const (
	supervisorBackoff        = 10 * time.Second
	supervisorBackoffCeiling = 5 * time.Minute
	// A worker that survived this long gets its backoff reset; the failure
	// was not a startup loop.
	supervisorHealthyRun = time.Minute
)

// Supervise runs a worker forever, restarting it with capped exponential
// backoff whenever it returns an error or panics. Returns only when the
// context is cancelled, so a crashed cycler never takes the process down.
func Supervise(ctx context.Context, name string, run func(context.Context) error) {
	backoff := supervisorBackoff
	for {
		start := time.Now()
		err := runRecovered(ctx, run)

		if ctx.Err() != nil {
			slog.Info("worker stopped", "worker", name)
			return
		}

		if time.Since(start) >= supervisorHealthyRun {
			backoff = supervisorBackoff
		}

		slog.Error("worker crashed, restarting",
			"worker", name, "error", err, "backoff", backoff)
		metrics.WorkerRestartsTotal.WithLabelValues(name).Inc()

		if !sleepCtx(ctx, backoff) {
			slog.Info("worker stopped", "worker", name)
			return
		}
		backoff = min(backoff*2, supervisorBackoffCeiling)
	}
}

// runRecovered converts a panic inside the worker into an ordinary error so
// the supervisor's restart loop handles both the same way.
func runRecovered(ctx context.Context, run func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("worker panic: %v", r)
		}
	}()
	return run(ctx)
}
