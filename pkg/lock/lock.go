package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	pkgerrors "github.com/angelmondragon/homeplate-backend/pkg/errors"
)

const (
	defaultTTL      = 10 * time.Second
	defaultAttempts = 20
	defaultBackoff  = 50 * time.Millisecond
)

// Lock guards a critical section across API replicas.
type Lock interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

// Store defines the redis operations used by RedisLock.
type Store interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	DelIfEqual(ctx context.Context, key, value string) (bool, error)
	LockKey(parts ...string) string
}

// RedisLock implements Lock using Redis SETNX + TTL.
type RedisLock struct {
	client Store
	key    string
	ttl    time.Duration
	owner  string
}

// NewRedisLock constructs a Redis-backed lock on an already namespaced key.
func NewRedisLock(client Store, key string, ttl time.Duration) (*RedisLock, error) {
	if client == nil {
		return nil, errors.New("redis client required for lock")
	}
	if key == "" {
		return nil, errors.New("lock key is required")
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &RedisLock{client: client, key: key, ttl: ttl}, nil
}

// Acquire tries to own the lock for the configured TTL.
func (l *RedisLock) Acquire(ctx context.Context) (bool, error) {
	owner := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.key, owner, l.ttl)
	if err != nil {
		return false, fmt.Errorf("setnx: %w", err)
	}
	if ok {
		l.owner = owner
	}
	return ok, nil
}

// Release frees the lock only if the owner value still matches. The check and the delete run as
// one script, so a lock that expired and was taken by someone else is left alone.
func (l *RedisLock) Release(ctx context.Context) error {
	if l.owner == "" {
		return nil
	}
	owner := l.owner
	l.owner = ""
	if _, err := l.client.DelIfEqual(ctx, l.key, owner); err != nil {
		return fmt.Errorf("release lock: %w", err)
	}
	return nil
}

// Locker hands out short-lived locks around record read-modify-write cycles.
type Locker struct {
	store    Store
	ttl      time.Duration
	attempts int
	backoff  time.Duration
}

// Option tunes a Locker.
type Option func(*Locker)

// WithTTL overrides how long a lock may be held before it expires on its own.
func WithTTL(ttl time.Duration) Option {
	return func(l *Locker) {
		if ttl > 0 {
			l.ttl = ttl
		}
	}
}

// WithRetry overrides the acquisition attempts and the pause between them.
func WithRetry(attempts int, backoff time.Duration) Option {
	return func(l *Locker) {
		if attempts > 0 {
			l.attempts = attempts
		}
		if backoff >= 0 {
			l.backoff = backoff
		}
	}
}

// NewLocker builds a Locker over the redis store.
func NewLocker(store Store, opts ...Option) (*Locker, error) {
	if store == nil {
		return nil, errors.New("redis client required for locker")
	}
	l := &Locker{store: store, ttl: defaultTTL, attempts: defaultAttempts, backoff: defaultBackoff}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l, nil
}

// WithLock runs fn while holding the lock named by parts. When the lock stays busy for every
// attempt a CONFLICT error is returned and fn does not run.
func (l *Locker) WithLock(ctx context.Context, fn func(ctx context.Context) error, parts ...string) (err error) {
	lk, err := NewRedisLock(l.store, l.store.LockKey(parts...), l.ttl)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build lock")
	}

	acquired := false
	for attempt := 0; attempt < l.attempts; attempt++ {
		ok, acqErr := lk.Acquire(ctx)
		if acqErr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, acqErr, "acquire lock")
		}
		if ok {
			acquired = true
			break
		}
		if attempt == l.attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return pkgerrors.Wrap(pkgerrors.CodeDependency, ctx.Err(), "acquire lock")
		case <-time.After(l.backoff):
		}
	}
	if !acquired {
		return pkgerrors.New(pkgerrors.CodeConflict, "record is being updated, retry shortly")
	}

	defer func() {
		if relErr := lk.Release(context.WithoutCancel(ctx)); relErr != nil && err == nil {
			err = pkgerrors.Wrap(pkgerrors.CodeDependency, relErr, "release lock")
		}
	}()
	return fn(ctx)
}
