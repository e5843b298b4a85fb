package redis

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/angelmondragon/storefront-backend/pkg/config"
)

func TestFixedWindowAllowKeepsFirstExpiry(t *testing.T) {
	ctx := context.Background()
	mock := newFakeRedis()
	client := &Client{store: mock}

	for i, want := range []bool{true, true, false} {
		allowed, count, err := client.FixedWindowAllow(ctx, "login:ip:1.2.3.4", 2, time.Minute)
		if err != nil {
			t.Fatalf("hit %d: unexpected error: %v", i, err)
		}
		if allowed != want || count != int64(i+1) {
			t.Fatalf("hit %d: allowed=%v count=%d", i, allowed, count)
		}
	}
	if got := mock.ttls["sf:rate_limit:login:ip:1.2.3.4"]; got != time.Minute {
		t.Fatalf("expected window ttl 1m, got %v", got)
	}
	if mock.expireSets != 1 {
		t.Fatalf("window must only be armed once, armed %d times", mock.expireSets)
	}
}

func TestGetDelConsumesOnce(t *testing.T) {
	ctx := context.Background()
	client := &Client{store: newFakeRedis()}
	key := client.AccessSessionKey("jti-1")

	if err := client.Set(ctx, key, "refresh", time.Hour); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := client.GetDel(ctx, key)
	if err != nil || got != "refresh" {
		t.Fatalf("first GetDel = %q, %v", got, err)
	}
	if _, err := client.GetDel(ctx, key); !IsNil(err) {
		t.Fatalf("second GetDel should miss, got %v", err)
	}
}

func TestDelIfValue(t *testing.T) {
	ctx := context.Background()
	mock := newFakeRedis()
	client := &Client{store: mock}

	if ok, err := client.SetNX(ctx, "sf:lock:housekeeping", "owner-a", time.Minute); err != nil || !ok {
		t.Fatalf("setnx: %v %v", ok, err)
	}
	deleted, err := client.DelIfValue(ctx, "sf:lock:housekeeping", "owner-b")
	if err != nil || deleted {
		t.Fatalf("foreign owner must not delete: %v %v", deleted, err)
	}
	deleted, err = client.DelIfValue(ctx, "sf:lock:housekeeping", "owner-a")
	if err != nil || !deleted {
		t.Fatalf("owner should delete: %v %v", deleted, err)
	}
	if _, held := mock.data["sf:lock:housekeeping"]; held {
		t.Fatal("lock still present")
	}
}

func TestZeroClientReportsNotConnected(t *testing.T) {
	var client *Client
	if err := client.Ping(context.Background()); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("close on nil client: %v", err)
	}
	if _, _, err := (&Client{}).FixedWindowAllow(context.Background(), "x", 1, time.Second); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}
}

func TestKeyspace(t *testing.T) {
	var keys Keyspace
	cases := []struct{ got, want string }{
		{keys.IdempotencyKey("scope", "id"), "sf:idempotency:scope:id"},
		{keys.RateLimitKey("scope"), "sf:rate_limit:scope"},
		{keys.AccessSessionKey("abc"), "sf:session:access:abc"},
		{keys.CartKey("cart-storage:guest-42"), "sf:cart-storage:guest-42"},
		{keys.CartKey(" cart-storage "), "sf:cart-storage"},
		{keys.LockKey("housekeeping"), "sf:lock:housekeeping"},
		{Keyspace{Namespace: "test"}.LockKey("cron"), "test:lock:cron"},
		{Keyspace{Namespace: " "}.IdempotencyKey("", "k"), "sf:idempotency:k"},
	}
	for _, tc := range cases {
		if tc.got != tc.want {
			t.Fatalf("expected %s, got %s", tc.want, tc.got)
		}
	}
}

func TestOptionsFromConfig(t *testing.T) {
	if _, err := optionsFromConfig(config.RedisConfig{}); err == nil {
		t.Fatal("expected error without url or address")
	}

	opts, err := optionsFromConfig(config.RedisConfig{
		URL:         "redis://:pw@cache.internal:6380/3",
		PoolSize:    7,
		DialTimeout: 2 * time.Second,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Addr != "cache.internal:6380" || opts.DB != 3 || opts.Password != "pw" {
		t.Fatalf("unexpected parsed options %+v", opts)
	}
	if opts.PoolSize != 7 || opts.DialTimeout != 2*time.Second {
		t.Fatalf("config defaults not applied: pool=%d dial=%v", opts.PoolSize, opts.DialTimeout)
	}

	opts, err = optionsFromConfig(config.RedisConfig{Address: "localhost:6379", DB: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Addr != "localhost:6379" || opts.DB != 2 {
		t.Fatalf("unexpected address options %+v", opts)
	}
}

type fakeRedis struct {
	data       map[string]string
	counters   map[string]int64
	ttls       map[string]time.Duration
	expireSets int
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{
		data:     make(map[string]string),
		counters: make(map[string]int64),
		ttls:     make(map[string]time.Duration),
	}
}

func (f *fakeRedis) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
	f.data[key] = fmt.Sprint(value)
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) GetDel(ctx context.Context, key string) *redis.StringCmd {
	cmd := f.Get(ctx, key)
	delete(f.data, key)
	return cmd
}

func (f *fakeRedis) SetNX(_ context.Context, key string, value any, _ time.Duration) *redis.BoolCmd {
	if _, exists := f.data[key]; exists {
		return redis.NewBoolResult(false, nil)
	}
	f.data[key] = fmt.Sprint(value)
	return redis.NewBoolResult(true, nil)
}

func (f *fakeRedis) Incr(_ context.Context, key string) *redis.IntCmd {
	f.counters[key]++
	return redis.NewIntResult(f.counters[key], nil)
}

func (f *fakeRedis) ExpireNX(_ context.Context, key string, ttl time.Duration) *redis.BoolCmd {
	if _, armed := f.ttls[key]; armed {
		return redis.NewBoolResult(false, nil)
	}
	f.ttls[key] = ttl
	f.expireSets++
	return redis.NewBoolResult(true, nil)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	for _, key := range keys {
		delete(f.data, key)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

// Eval understands only the compare-and-delete script.
func (f *fakeRedis) Eval(_ context.Context, script string, keys []string, args ...any) *redis.Cmd {
	if script != delIfValue || len(keys) != 1 || len(args) != 1 {
		return redis.NewCmdResult(nil, fmt.Errorf("unexpected script"))
	}
	if f.data[keys[0]] != fmt.Sprint(args[0]) {
		return redis.NewCmdResult(int64(0), nil)
	}
	delete(f.data, keys[0])
	return redis.NewCmdResult(int64(1), nil)
}
