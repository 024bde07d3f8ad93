package repository

import (
	"context"
	"time"
)

// CooldownRepository defines a best-effort TTL cache used to avoid repeating
// expensive or hostile operations too soon: re-running a discovery query, or
// fetching from a host that recently blocked us. Losing this state is safe;
// it only costs extra work.
type CooldownRepository interface {
	// Mark starts a cooldown for the key.
	Mark(ctx context.Context, key string, ttl time.Duration) error
	// Active reports whether the key is still cooling down.
	Active(ctx context.Context, key string) (bool, error)
}
