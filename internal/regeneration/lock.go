package regeneration

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	pkgerrors "github.com/angelmondragon/storefronts/pkg/errors"
)

const defaultLockTTL = 10 * time.Minute

// Unlock releases a held run lock.
type Unlock func(ctx context.Context) error

// Locker serializes runs per storefront. TryLock fails fast with
// CodeConflict when another run holds the lock.
type Locker interface {
	TryLock(ctx context.Context, storefrontID uuid.UUID) (Unlock, error)
}

// redisStore defines the operations used by RedisLocker.
type redisStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	CompareAndDelete(ctx context.Context, key, value string) (bool, error)
	LockKey(scope, id string) string
}

// RedisLocker implements Locker using Redis SETNX + TTL with an owner
// token, so it also serializes runs across processes.
type RedisLocker struct {
	client redisStore
	ttl    time.Duration
}

// NewRedisLocker constructs a Redis-backed locker.
func NewRedisLocker(client redisStore, ttl time.Duration) (*RedisLocker, error) {
	if client == nil {
		return nil, errors.New("redis client required for lock")
	}
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &RedisLocker{client: client, ttl: ttl}, nil
}

func (l *RedisLocker) TryLock(ctx context.Context, storefrontID uuid.UUID) (Unlock, error) {
	key := l.client.LockKey("regeneration", storefrontID.String())
	owner := uuid.NewString()
	ok, err := l.client.SetNX(ctx, key, owner, l.ttl)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("setnx: %w", err), "acquire regeneration lock")
	}
	if !ok {
		return nil, errRunInProgress(storefrontID)
	}
	return func(ctx context.Context) error {
		// A lock taken over after TTL expiry belongs to another run and is left alone.
		if _, err := l.client.CompareAndDelete(ctx, key, owner); err != nil {
			return fmt.Errorf("release lock: %w", err)
		}
		return nil
	}, nil
}

// LocalLocker serializes runs inside one process. It is used when Redis is
// not configured.
type LocalLocker struct {
	mu      sync.Mutex
	running map[uuid.UUID]struct{}
}

// NewLocalLocker builds an in-process locker.
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{running: map[uuid.UUID]struct{}{}}
}

func (l *LocalLocker) TryLock(_ context.Context, storefrontID uuid.UUID) (Unlock, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, busy := l.running[storefrontID]; busy {
		return nil, errRunInProgress(storefrontID)
	}
	l.running[storefrontID] = struct{}{}
	var once sync.Once
	return func(context.Context) error {
		once.Do(func() {
			l.mu.Lock()
			delete(l.running, storefrontID)
			l.mu.Unlock()
		})
		return nil
	}, nil
}

func errRunInProgress(storefrontID uuid.UUID) error {
	return pkgerrors.Newf(pkgerrors.CodeConflict, "regeneration already running for storefront %s", storefrontID)
}
