package utils

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestHitFixedWindow_BlocksAfterLimitAndResets(t *testing.T) {
	mr, rdb := newTestRedis(t)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		res, err := HitFixedWindow(ctx, rdb, "rl:test", 3, time.Minute)
		if err != nil {
			t.Fatalf("hit %d: %v", i, err)
		}
		if !res.Allowed || res.Count != int64(i) {
			t.Fatalf("hit %d: unexpected result %+v", i, res)
		}
	}

	res, err := HitFixedWindow(ctx, rdb, "rl:test", 3, time.Minute)
	if err != nil {
		t.Fatalf("hit: %v", err)
	}
	if res.Allowed {
		t.Fatalf("expected 4th hit to be rejected")
	}
	if res.RetryAfter <= 0 {
		t.Fatalf("expected retry-after, got %v", res.RetryAfter)
	}

	mr.FastForward(time.Minute + time.Second)
	res, err = HitFixedWindow(ctx, rdb, "rl:test", 3, time.Minute)
	if err != nil || !res.Allowed || res.Count != 1 {
		t.Fatalf("expected fresh window, got %+v %v", res, err)
	}
}

func TestHitFixedWindow_ValidatesInput(t *testing.T) {
	_, rdb := newTestRedis(t)
	ctx := context.Background()
	if _, err := HitFixedWindow(ctx, rdb, "", 1, time.Second); err == nil {
		t.Fatalf("expected error for empty key")
	}
	if _, err := HitFixedWindow(ctx, rdb, "k", 0, time.Second); err == nil {
		t.Fatalf("expected error for zero limit")
	}
	if _, err := HitFixedWindow(ctx, rdb, "k", 1, 0); err == nil {
		t.Fatalf("expected error for zero window")
	}
}
