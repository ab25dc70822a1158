// Package dedup drops repeated webhook deliveries. Twilio retries a webhook
// when the previous attempt was slow or failed, and a retried delivery must
// not launch a second analysis pipeline.
package dedup

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// DefaultTTL is how long a message SID is remembered.
	DefaultTTL = 24 * time.Hour

	keyPrefix = "guardian:seen:"
)

// Filter reports whether an inbound message has been seen before.
type Filter interface {
	IsNew(ctx context.Context, messageID string) (bool, error)
}

// RedisFilter tracks seen message SIDs in Redis so dedup survives restarts
// and is shared across replicas.
type RedisFilter struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisFilter(rdb *redis.Client) *RedisFilter {
	return &RedisFilter{rdb: rdb, ttl: DefaultTTL}
}

// IsNew returns true if the message SID has NOT been seen before. When true,
// the SID is marked as seen atomically (SETNX).
func (f *RedisFilter) IsNew(ctx context.Context, messageID string) (bool, error) {
	set, err := f.rdb.SetNX(ctx, keyPrefix+messageID, 1, f.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("dedup SETNX: %w", err)
	}
	return set, nil
}

// MemoryFilter is the single-process fallback used when Redis is not
// configured. Entries expire lazily on lookup.
type MemoryFilter struct {
	mu   sync.Mutex
	seen map[string]time.Time
	ttl  time.Duration
	now  func() time.Time
}

func NewMemoryFilter() *MemoryFilter {
	return &MemoryFilter{
		seen: make(map[string]time.Time),
		ttl:  DefaultTTL,
		now:  time.Now,
	}
}

func (f *MemoryFilter) IsNew(ctx context.Context, messageID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := f.now()
	for id, at := range f.seen {
		if now.Sub(at) > f.ttl {
			delete(f.seen, id)
		}
	}

	if _, ok := f.seen[messageID]; ok {
		return false, nil
	}
	f.seen[messageID] = now
	return true, nil
}
