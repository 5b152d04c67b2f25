package auth

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedKeyPrefix = "revoked:"

// Revocations tracks session tokens invalidated before their natural expiry.
// With redis available each entry carries a TTL matching the remaining token
// life, so the set self-expires and survives across instances. Without redis
// it degrades to a process-local map that grows for the life of the process.
type Revocations struct {
	redis *redis.Client

	mu    sync.RWMutex
	local map[string]struct{}
}

func NewRevocations(redisClient *redis.Client) *Revocations {
	return &Revocations{
		redis: redisClient,
		local: map[string]struct{}{},
	}
}

func (r *Revocations) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if r.redis != nil {
		return r.redis.Set(ctx, revokedKeyPrefix+token, "1", ttl).Err()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.local[token] = struct{}{}
	return nil
}

func (r *Revocations) Revoked(ctx context.Context, token string) bool {
	if r.redis != nil {
		n, err := r.redis.Exists(ctx, revokedKeyPrefix+token).Result()
		if err == nil {
			return n > 0
		}
		// fall through to the local set on redis failure
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.local[token]
	return ok
}
