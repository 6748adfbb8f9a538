package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/angelmondragon/storefronts/pkg/config"
	"github.com/redis/go-redis/v9"
)

func TestSetNXOnlyFirstWriterWins(t *testing.T) {
	ctx := context.Background()
	client := &Client{store: newMockCmdable()}

	ok, err := client.SetNX(ctx, "k", "owner-a", time.Minute)
	if err != nil || !ok {
		t.Fatalf("expected first setnx to succeed, ok=%v err=%v", ok, err)
	}
	ok, err = client.SetNX(ctx, "k", "owner-b", time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatalf("second setnx must not overwrite")
	}
	got, err := client.Get(ctx, "k")
	if err != nil || got != "owner-a" {
		t.Fatalf("expected owner-a, got %q err=%v", got, err)
	}

	if err := client.Del(ctx, "k"); err != nil {
		t.Fatalf("del failed: %v", err)
	}
	if _, err := client.Get(ctx, "k"); err != redis.Nil {
		t.Fatalf("expected redis.Nil after delete, got %v", err)
	}
}

func TestDelWithoutKeysIsNoop(t *testing.T) {
	mock := newMockCmdable()
	client := &Client{store: mock}
	if err := client.Del(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mock.delCalls != 0 {
		t.Fatalf("expected no DEL round-trip, got %d", mock.delCalls)
	}
}

func TestUninitializedClientErrors(t *testing.T) {
	client := &Client{}
	if err := client.Ping(context.Background()); err == nil {
		t.Fatalf("expected error from uninitialized client")
	}
	if _, err := client.SetNX(context.Background(), "k", "v", time.Second); err == nil {
		t.Fatalf("expected error from uninitialized client")
	}
}

func TestKeyBuilders(t *testing.T) {
	client := &Client{}
	if got := client.LockKey("regeneration", "abc"); got != "sf:lock:regeneration:abc" {
		t.Fatalf("unexpected lock key %s", got)
	}
	if got := client.PageCacheKey("page", "/plomeria/monterrey/"); got != "sf:page:plomeria/monterrey" {
		t.Fatalf("unexpected page key %s", got)
	}
	if got := client.PageCacheKey("page", "/"); got != "sf:page:index" {
		t.Fatalf("root path should map to index, got %s", got)
	}
	if got := client.LockKey("", "abc"); got != "sf:lock:abc" {
		t.Fatalf("empty parts should be skipped, got %s", got)
	}
}

func TestOptionsFromConfig(t *testing.T) {
	if _, err := optionsFromConfig(config.RedisConfig{}); err == nil {
		t.Fatalf("expected error when no endpoint configured")
	}

	opts, err := optionsFromConfig(config.RedisConfig{
		Address:     "localhost:6379",
		DB:          2,
		PoolSize:    7,
		DialTimeout: 3 * time.Second,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Addr != "localhost:6379" || opts.DB != 2 || opts.PoolSize != 7 || opts.DialTimeout != 3*time.Second {
		t.Fatalf("unexpected options %+v", opts)
	}

	opts, err = optionsFromConfig(config.RedisConfig{URL: "redis://:secret@cache:6380/4", PoolSize: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Addr != "cache:6380" || opts.DB != 4 || opts.Password != "secret" || opts.PoolSize != 3 {
		t.Fatalf("unexpected url options %+v", opts)
	}
}

type mockCmdable struct {
	data     map[string]string
	delCalls int
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{data: make(map[string]string)}
}

func (m *mockCmdable) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *mockCmdable) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	m.data[key] = fmt.Sprint(value)
	return redis.NewStatusResult("OK", nil)
}

func (m *mockCmdable) Get(ctx context.Context, key string) *redis.StringCmd {
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *mockCmdable) SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd {
	if _, exists := m.data[key]; exists {
		return redis.NewBoolResult(false, nil)
	}
	m.data[key] = fmt.Sprint(value)
	return redis.NewBoolResult(true, nil)
}

func (m *mockCmdable) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	m.delCalls++
	for _, key := range keys {
		delete(m.data, key)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func (m *mockCmdable) Eval(ctx context.Context, script string, keys []string, args ...any) *redis.Cmd {
	if script != compareAndDeleteScript || len(keys) != 1 || len(args) != 1 {
		return redis.NewCmdResult(nil, fmt.Errorf("unexpected eval"))
	}
	if v, ok := m.data[keys[0]]; !ok || v != fmt.Sprint(args[0]) {
		return redis.NewCmdResult(int64(0), nil)
	}
	delete(m.data, keys[0])
	return redis.NewCmdResult(int64(1), nil)
}

func TestCompareAndDeleteOnlyRemovesMatchingValue(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := &Client{store: mock}
	mock.data["k"] = "owner-b"

	removed, err := client.CompareAndDelete(ctx, "k", "owner-a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if removed || mock.data["k"] != "owner-b" {
		t.Fatalf("key held by another owner must survive")
	}

	removed, err = client.CompareAndDelete(ctx, "k", "owner-b")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !removed {
		t.Fatalf("expected matching owner to delete the key")
	}
	if _, ok := mock.data["k"]; ok {
		t.Fatalf("key should be gone")
	}
	if mock.delCalls != 0 {
		t.Fatalf("release must not issue a separate DEL, got %d", mock.delCalls)
	}
}
