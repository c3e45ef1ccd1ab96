package cache

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c, err := NewRedisCacheWithClient(client)
	if err != nil {
		t.Fatalf("new cache failed: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestGetWithCachedReadsThrough(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()
	calls := 0
	fetch := func(context.Context) (int, error) {
		calls++
		return 42, nil
	}
	isEmpty := func(v int) bool { return v == 0 }
	marshal := func(v int) string { return strconv.Itoa(v) }
	unmarshal := func(s string) (int, error) { return strconv.Atoi(s) }

	for i := 0; i < 3; i++ {
		got, err := GetWithCached(ctx, c, "k", time.Minute, time.Second, isEmpty, marshal, unmarshal, fetch)
		if err != nil || got != 42 {
			t.Fatalf("unexpected result %d, %v", got, err)
		}
	}
	if calls != 1 {
		t.Fatalf("expected one fetch, got %d", calls)
	}
}

func TestGetWithCachedCachesAbsence(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	calls := 0
	fetch := func(context.Context) (*string, error) {
		calls++
		return nil, nil
	}
	isEmpty := func(v *string) bool { return v == nil }
	marshal := func(v *string) string { return *v }
	unmarshal := func(s string) (*string, error) { return &s, nil }

	for i := 0; i < 2; i++ {
		got, err := GetWithCached(ctx, c, "absent", time.Minute, time.Second, isEmpty, marshal, unmarshal, fetch)
		if err != nil || got != nil {
			t.Fatalf("unexpected result %v, %v", got, err)
		}
	}
	if calls != 1 {
		t.Fatalf("expected absence to be cached, fetched %d times", calls)
	}
	value, _ := mr.Get("absent")
	if value != NullCacheValue {
		t.Fatalf("expected null marker, got %q", value)
	}
}

func TestGetWithCachedPropagatesFetchError(t *testing.T) {
	c, mr := newTestCache(t)
	errBoom := errors.New("boom")
	_, err := GetWithCached(context.Background(), c, "err", time.Minute, time.Second,
		func(int) bool { return false },
		strconv.Itoa,
		strconv.Atoi,
		func(context.Context) (int, error) { return 0, errBoom })
	if !errors.Is(err, errBoom) {
		t.Fatalf("expected fetch error, got %v", err)
	}
	if mr.Exists("err") {
		t.Fatalf("errors must not be cached")
	}
}

func TestInvalidate(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	_ = c.Set(ctx, "a", "1", 0)
	_ = c.Set(ctx, "b", "2", 0)
	if err := Invalidate(ctx, c, "a", "b"); err != nil {
		t.Fatalf("invalidate failed: %v", err)
	}
	if mr.Exists("a") || mr.Exists("b") {
		t.Fatalf("keys should be gone")
	}
	if err := Invalidate(ctx, nil, "a"); err != nil {
		t.Fatalf("nil cache should be a no-op: %v", err)
	}
}

func TestJitterTTL(t *testing.T) {
	ttl := 10 * time.Minute
	for i := 0; i < 20; i++ {
		got := JitterTTL(ttl)
		if got > ttl || got < ttl-ttl/10 {
			t.Fatalf("jitter out of range: %v", got)
		}
	}
	if JitterTTL(0) != 0 {
		t.Fatalf("zero ttl should stay zero")
	}
}
