// Package locking provides Redis-backed advisory locks so multiple notifier
// instances never double-send. The locks are best-effort TTL locks, not
// fencing locks; the send log remains the correctness backstop.
package locking

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLocker implements TTL locks via SET NX EX.
type RedisLocker struct {
	client *redis.Client
	prefix string
}

// NewRedisLocker creates a locker. All keys get the given prefix.
func NewRedisLocker(client *redis.Client, prefix string) *RedisLocker {
	if prefix == "" {
		prefix = "chivvy:lock:"
	}
	return &RedisLocker{client: client, prefix: prefix}
}

// TryLock attempts to acquire the key. Returns false when another holder has
// it. The lock expires on its own; there is no explicit unlock, which keeps
// crashed holders from wedging the system.
func (l *RedisLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	acquired, err := l.client.SetNX(ctx, l.prefix+key, 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire lock %s: %w", key, err)
	}
	return acquired, nil
}

// Release drops a lock early. Used by the pass lock so back-to-back manual
// runs don't wait out the TTL.
func (l *RedisLocker) Release(ctx context.Context, key string) error {
	return l.client.Del(ctx, l.prefix+key).Err()
}
