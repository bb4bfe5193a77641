package lock

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	pkgerrors "github.com/angelmondragon/homeplate-backend/pkg/errors"
	"github.com/angelmondragon/homeplate-backend/pkg/redis"
)

func newStore(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewFromClient(goredis.NewClient(&goredis.Options{Addr: srv.Addr()}))
	t.Cleanup(func() { _ = client.Close() })
	return client, srv
}

func TestRedisLockAcquireRelease(t *testing.T) {
	ctx := context.Background()
	store, srv := newStore(t)

	first, err := NewRedisLock(store, "hp:lock:dish:1", time.Minute)
	if err != nil {
		t.Fatalf("new lock: %v", err)
	}
	second, _ := NewRedisLock(store, "hp:lock:dish:1", time.Minute)

	ok, err := first.Acquire(ctx)
	if err != nil || !ok {
		t.Fatalf("expected first acquire, ok=%v err=%v", ok, err)
	}
	ok, err = second.Acquire(ctx)
	if err != nil || ok {
		t.Fatalf("expected second acquire to fail, ok=%v err=%v", ok, err)
	}
	if err := second.Release(ctx); err != nil {
		t.Fatalf("release by non owner: %v", err)
	}
	if !srv.Exists("hp:lock:dish:1") {
		t.Fatal("non owner release must not delete the lock")
	}
	if err := first.Release(ctx); err != nil {
		t.Fatalf("release: %v", err)
	}
	if srv.Exists("hp:lock:dish:1") {
		t.Fatal("expected lock removed")
	}
}

func TestExpiredLockReleaseKeepsNewOwner(t *testing.T) {
	ctx := context.Background()
	store, srv := newStore(t)

	stale, _ := NewRedisLock(store, "hp:lock:order:100", time.Second)
	if ok, err := stale.Acquire(ctx); err != nil || !ok {
		t.Fatalf("expected acquire, ok=%v err=%v", ok, err)
	}
	srv.FastForward(2 * time.Second)

	fresh, _ := NewRedisLock(store, "hp:lock:order:100", time.Minute)
	if ok, err := fresh.Acquire(ctx); err != nil || !ok {
		t.Fatalf("expected new owner to acquire, ok=%v err=%v", ok, err)
	}
	if err := stale.Release(ctx); err != nil {
		t.Fatalf("stale release: %v", err)
	}
	if !srv.Exists("hp:lock:order:100") {
		t.Fatal("stale owner must not delete a lock it no longer holds")
	}
	if err := fresh.Release(ctx); err != nil {
		t.Fatalf("release: %v", err)
	}
	if srv.Exists("hp:lock:order:100") {
		t.Fatal("expected lock removed by its owner")
	}
}

func TestNewRedisLockValidation(t *testing.T) {
	if _, err := NewRedisLock(nil, "k", time.Second); err == nil {
		t.Fatal("expected error without client")
	}
	store, _ := newStore(t)
	if _, err := NewRedisLock(store, "", time.Second); err == nil {
		t.Fatal("expected error without key")
	}
}

func TestWithLockSerializesCriticalSection(t *testing.T) {
	store, _ := newStore(t)
	locker, err := NewLocker(store, WithRetry(200, 5*time.Millisecond))
	if err != nil {
		t.Fatalf("new locker: %v", err)
	}

	var inside int32
	var maxInside int32
	var counter int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := locker.WithLock(context.Background(), func(context.Context) error {
				n := atomic.AddInt32(&inside, 1)
				if n > atomic.LoadInt32(&maxInside) {
					atomic.StoreInt32(&maxInside, n)
				}
				current := atomic.LoadInt32(&counter)
				time.Sleep(2 * time.Millisecond)
				atomic.StoreInt32(&counter, current+1)
				atomic.AddInt32(&inside, -1)
				return nil
			}, "dish", "5")
			if err != nil {
				t.Errorf("with lock: %v", err)
			}
		}()
	}
	wg.Wait()

	if counter != 8 {
		t.Fatalf("expected 8 serialized increments, got %d", counter)
	}
	if maxInside != 1 {
		t.Fatalf("expected exclusive access, saw %d concurrent holders", maxInside)
	}
}

func TestWithLockBusyReturnsConflict(t *testing.T) {
	ctx := context.Background()
	store, _ := newStore(t)
	if _, err := store.SetNX(ctx, store.LockKey("vendor", "2"), "someone", time.Minute); err != nil {
		t.Fatalf("seed lock: %v", err)
	}
	locker, _ := NewLocker(store, WithRetry(2, time.Millisecond))

	ran := false
	err := locker.WithLock(ctx, func(context.Context) error {
		ran = true
		return nil
	}, "vendor", "2")
	if !pkgerrors.HasCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if ran {
		t.Fatal("critical section must not run without the lock")
	}
}

func TestWithLockPropagatesErrorAndReleases(t *testing.T) {
	ctx := context.Background()
	store, srv := newStore(t)
	locker, _ := NewLocker(store)
	boom := errors.New("boom")

	err := locker.WithLock(ctx, func(context.Context) error { return boom }, "dish", "8")
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if srv.Exists(store.LockKey("dish", "8")) {
		t.Fatal("expected lock released after failure")
	}
}
