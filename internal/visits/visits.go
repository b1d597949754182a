// Package visits counts how many times each browser session has loaded the
// catalog home page.
package visits

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Counter records a visit and returns how many visits the session had made
// before this one.
type Counter interface {
	Hit(ctx context.Context, sessionID string) (int64, error)
}

// MemoryCounter keeps counts in process memory. Counts are lost on restart.
type MemoryCounter struct {
	mu     sync.Mutex
	counts map[string]int64
}

// NewMemoryCounter returns an empty in-process counter.
func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{counts: make(map[string]int64)}
}

// Hit returns the number of earlier visits for sessionID and records this one.
func (c *MemoryCounter) Hit(_ context.Context, sessionID string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	previous := c.counts[sessionID]
	c.counts[sessionID] = previous + 1
	return previous, nil
}

// RedisCounter keeps counts in Redis under "visits:<session>" keys that
// expire after ttl of inactivity.
type RedisCounter struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCounter connects to redisURL and pings it.
func NewRedisCounter(redisURL string, ttl time.Duration) (*RedisCounter, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return &RedisCounter{client: client, ttl: ttl}, nil
}

func (c *RedisCounter) Hit(ctx context.Context, sessionID string) (int64, error) {
	key := "visits:" + sessionID

	pipe := c.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val() - 1, nil
}

// Close releases the Redis connection pool.
func (c *RedisCounter) Close() error {
	return c.client.Close()
}
