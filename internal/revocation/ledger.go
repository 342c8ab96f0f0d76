// Package revocation is the token blacklist. An entry lives exactly as long as
// the token it revokes would have stayed valid.
package revocation

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Marker is the opaque value stored for every revoked token.
const Marker = "blacklisted"

// Ledger records revoked tokens.
type Ledger interface {
	// Revoke inserts token if absent and reports whether this call revoked it.
	// A non-positive ttl is a no-op: the token has already expired.
	Revoke(ctx context.Context, token string, ttl time.Duration) (bool, error)
	IsRevoked(ctx context.Context, token string) (bool, error)
}

var errEmptyToken = errors.New("revocation: token is required")

// RedisLedger stores one key per revoked token with a millisecond TTL.
type RedisLedger struct {
	rdb redis.Cmdable
}

func NewRedisLedger(rdb redis.Cmdable) *RedisLedger {
	return &RedisLedger{rdb: rdb}
}

func (l *RedisLedger) Revoke(ctx context.Context, token string, ttl time.Duration) (bool, error) {
	if token == "" {
		return false, errEmptyToken
	}
	if ttl <= 0 {
		return false, nil
	}
	// SET key value PX ttl NX: concurrent revocations of one token have exactly one winner.
	return l.rdb.SetNX(ctx, token, Marker, ttl).Result()
}

func (l *RedisLedger) IsRevoked(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, errEmptyToken
	}
	n, err := l.rdb.Exists(ctx, token).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MemoryLedger is an in-process Ledger for tests and single-node local runs.
// Expired entries are forgotten lazily on access.
type MemoryLedger struct {
	mu      sync.Mutex
	entries map[string]time.Time
	clock   func() time.Time
}

func NewMemoryLedger(clock func() time.Time) *MemoryLedger {
	if clock == nil {
		clock = time.Now
	}
	return &MemoryLedger{entries: map[string]time.Time{}, clock: clock}
}

func (l *MemoryLedger) Revoke(_ context.Context, token string, ttl time.Duration) (bool, error) {
	if token == "" {
		return false, errEmptyToken
	}
	if ttl <= 0 {
		return false, nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock()
	if l.liveLocked(token, now) {
		return false, nil
	}
	l.entries[token] = now.Add(ttl)
	return true, nil
}

func (l *MemoryLedger) IsRevoked(_ context.Context, token string) (bool, error) {
	if token == "" {
		return false, errEmptyToken
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.liveLocked(token, l.clock()), nil
}

func (l *MemoryLedger) liveLocked(token string, now time.Time) bool {
	until, ok := l.entries[token]
	if !ok {
		return false
	}
	if !now.Before(until) {
		delete(l.entries, token)
		return false
	}
	return true
}
