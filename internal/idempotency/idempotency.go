// Package idempotency guards against NATS at-least-once redelivery causing
// the engine to re-run, or the emitter to stamp a second MsgId, for a
// window that has already been settled.
package idempotency

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store deduplicates window-settle requests using Redis SETNX: the first
// caller to claim a window id wins, everyone else sees it as already taken.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// New opens a Redis client against addr. ttl bounds how long a claimed
// window id is remembered; after it expires, a retry is treated as fresh
// (the hub's own state is the source of truth for "already settled").
func New(addr string, ttl time.Duration) *Store {
	return &Store{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		ttl:    ttl,
	}
}

// Claim reports whether this caller is the first to claim windowID. A false
// result means some other caller (or a prior delivery of the same NATS
// message) already processed it.
func (s *Store) Claim(ctx context.Context, windowID int64) (bool, error) {
	key := fmt.Sprintf("settlementhub:window-processed:%d", windowID)
	ok, err := s.client.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("idempotency: claiming window %d: %w", windowID, err)
	}
	return ok, nil
}

// Release removes a claim, for use when settlement fails after the claim
// succeeds so a retry isn't permanently locked out.
func (s *Store) Release(ctx context.Context, windowID int64) error {
	key := fmt.Sprintf("settlementhub:window-processed:%d", windowID)
	return s.client.Del(ctx, key).Err()
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.client.Close()
}
