package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/user/harvester-service/pkg/utils"
)

const cooldownPrefix = "cooldown:"

// CooldownRepoImpl provides a concrete implementation for the
// CooldownRepository interface using Redis SETEX keys. Keys are hashed so
// arbitrary queries and hostnames stay safe as Redis keys.
type CooldownRepoImpl struct {
	client *redis.Client
}

func NewCooldownRepo(client *redis.Client) *CooldownRepoImpl {
	return &CooldownRepoImpl{client: client}
}

func (r *CooldownRepoImpl) key(raw string) string {
	return fmt.Sprintf("%s%s", cooldownPrefix, utils.HashURL(raw))
}

// Mark starts a cooldown by setting a key with a TTL. SETEX is atomic.
func (r *CooldownRepoImpl) Mark(ctx context.Context, key string, ttl time.Duration) error {
	return r.client.SetEx(ctx, r.key(key), "1", ttl).Err()
}

// Active reports whether the cooldown key still exists.
func (r *CooldownRepoImpl) Active(ctx context.Context, key string) (bool, error) {
	val, err := r.client.Exists(ctx, r.key(key)).Result()
	if err != nil {
		return false, err
	}
	return val == 1, nil
}

// Ping exposes connectivity for the health endpoint.
func (r *CooldownRepoImpl) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
