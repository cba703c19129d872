package cache

import (
	"context"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
)

// writeTimeout bounds the detached cache writes so a dead backend cannot
// accumulate goroutines.
const writeTimeout = 5 * time.Second

// Client wraps the shared Redis connection pool behind bounded-timeout
// read/write operations. The cache is strictly an optimization: no method
// returns an error, callers only observe hit/miss.
type Client struct {
	rdb         *redis.Client
	readTimeout time.Duration
	ttl         time.Duration
}

// New initializes a cache client over a shared Redis connection pool.
// An empty addr yields a disabled client. Connection failures are logged
// but never fatal; go-redis dials lazily, so the backend coming up later
// re-enables hits without a restart.
func New(addr, password string, readTimeout, ttl time.Duration) *Client {
	if addr == "" {
		log.Println("REDIS_ADDR not set, cache disabled.")
		return &Client{}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0, // Default DB
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if pong, err := rdb.Ping(ctx).Result(); err != nil {
		log.Printf("Warning: Redis at %s not reachable (%v). Serving without cache hits until it recovers.", addr, err)
	} else {
		log.Printf("Successfully connected to Redis! Ping response: %s", pong)
	}

	return &Client{rdb: rdb, readTimeout: readTimeout, ttl: ttl}
}

// Available reports whether cache access should be attempted at all.
func (c *Client) Available() bool {
	return c != nil && c.rdb != nil
}

// Get performs a bounded-timeout cache read. Any failure, including a
// timeout or an unreachable backend, is reported as a miss.
func (c *Client) Get(ctx context.Context, key string) ([]byte, bool) {
	if !c.Available() {
		return nil, false
	}

	ctx, cancel := context.WithTimeout(ctx, c.readTimeout)
	defer cancel()

	payload, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("Cache get for %q failed: %v", key, err)
		}
		return nil, false
	}
	return payload, true
}

// SetAsync dispatches a cache write with the configured TTL and returns
// immediately. The write runs on its own goroutine with its own deadline
// and may outlive the request that triggered it; failures are logged only.
func (c *Client) SetAsync(key string, payload []byte) {
	if !c.Available() {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()

		if err := c.rdb.Set(ctx, key, payload, c.ttl).Err(); err != nil {
			log.Printf("Cache set for %q failed: %v", key, err)
		}
	}()
}

// Close closes the Redis connection
func (c *Client) Close() {
	if c.rdb != nil {
		c.rdb.Close()
		log.Println("Redis connection closed.")
	}
}
