package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/user/harvester-service/internal/repository"
)

// WorkQueue is the selection contract a cycle controller drives: an
// unbounded, growing set of work units ordered by how long ago each was last
// processed. Because the ordering lives in the store, a restarted process
// resumes in the right place with no checkpoint state.
type WorkQueue[T any] interface {
	// Next returns the unit untouched the longest, ties broken by identity.
	// Returns repository.ErrEmptyQueue when no units exist.
	Next(ctx context.Context) (T, error)
	// MarkProcessed moves the unit to the back of the queue. Called exactly
	// once per iteration, after success or contained failure alike, so no
	// unit can starve the rest.
	MarkProcessed(ctx context.Context, unit T) error
}

// CycleController runs an endless, fair round-robin over a WorkQueue.
// The process callback must contain all per-unit failures itself; an error
// returned from it (or from the queue) is treated as loss of the store and
// propagated to the supervisor.
type CycleController[T any] struct {
	name      string
	queue     WorkQueue[T]
	process   func(ctx context.Context, unit T) error
	pause     time.Duration
	emptyPoll time.Duration
}

func NewCycleController[T any](
	name string,
	queue WorkQueue[T],
	process func(ctx context.Context, unit T) error,
	pause, emptyPoll time.Duration,
) *CycleController[T] {
	return &CycleController[T]{
		name:      name,
		queue:     queue,
		process:   process,
		pause:     pause,
		emptyPoll: emptyPoll,
	}
}

// Run loops until the context is cancelled. Iterations never overlap, so a
// unit is never selected twice concurrently by the same cycler.
func (c *CycleController[T]) Run(ctx context.Context) error {
	slog.Info("cycler started", "cycler", c.name)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		unit, err := c.queue.Next(ctx)
		if errors.Is(err, repository.ErrEmptyQueue) {
			slog.Info("no work units yet, polling", "cycler", c.name, "poll", c.emptyPoll)
			if !sleepCtx(ctx, c.emptyPoll) {
				return ctx.Err()
			}
			continue
		}
		if err != nil {
			return fmt.Errorf("%s: select next unit: %w", c.name, err)
		}

		if err := c.process(ctx, unit); err != nil {
			return fmt.Errorf("%s: process unit: %w", c.name, err)
		}

		if err := c.queue.MarkProcessed(ctx, unit); err != nil {
			return fmt.Errorf("%s: mark processed: %w", c.name, err)
		}

		if !sleepCtx(ctx, c.pause) {
			return ctx.Err()
		}
	}
}

// sleepCtx waits d or until the context is cancelled; false means cancelled.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
