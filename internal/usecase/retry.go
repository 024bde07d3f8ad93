package usecase

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"time"

	"github.com/user/harvester-service/internal/repository"
)

const (
	maxAttempts    = 3
	initialBackoff = 2 * time.Second
	backoffCeiling = 30 * time.Second
	jitterFactor   = 0.2 // +/- 20%
)

// transientErr reports whether an error is worth retrying within the same
// iteration. Blocked fetches are excluded on purpose: retrying a host that
// just refused us only makes it block harder.
func transientErr(err error) bool {
	return errors.Is(err, repository.ErrRateLimited) ||
		errors.Is(err, repository.ErrFetchTimeout)
}

// withRetry runs fn up to maxAttempts times with capped exponential backoff
// and jitter between transient failures. The last error is returned once
// attempts are exhausted; non-transient errors return immediately.
func withRetry(ctx context.Context, op string, fn func(context.Context) error) error {
	backoff := initialBackoff
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err = fn(ctx)
		if err == nil || !transientErr(err) {
			return err
		}
		if attempt == maxAttempts {
			break
		}
		delay := jitter(backoff)
		slog.Warn("transient failure, backing off",
			"op", op, "attempt", attempt, "backoff", delay, "error", err)
		if !sleepCtx(ctx, delay) {
			return ctx.Err()
		}
		backoff = min(backoff*2, backoffCeiling)
	}
	return err
}

func jitter(d time.Duration) time.Duration {
	delta := float64(d) * jitterFactor
	return d + time.Duration((rand.Float64()*2-1)*delta)
}
