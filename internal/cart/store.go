package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"
)

// Store persists carts by owner key.
type Store interface {
	Load(ctx context.Context, owner string) (*Cart, error)
	Save(ctx context.Context, owner string, cart *Cart) error
	Clear(ctx context.Context, owner string) error
}

type blobStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	CartKey(owner string) string
}

// RedisStore keeps each cart as a JSON blob with a sliding TTL.
type RedisStore struct {
	client blobStore
	ttl    time.Duration
}

// NewRedisStore builds a Redis-backed cart store.
func NewRedisStore(client blobStore, ttl time.Duration) (*RedisStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("cart ttl must be positive")
	}
	return &RedisStore{client: client, ttl: ttl}, nil
}

// Load returns the stored cart or an empty cart when none exists.
func (s *RedisStore) Load(ctx context.Context, owner string) (*Cart, error) {
	raw, err := s.client.Get(ctx, s.client.CartKey(owner))
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return &Cart{}, nil
		}
		return nil, fmt.Errorf("load cart: %w", err)
	}
	var c Cart
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	return &c, nil
}

// Save writes the cart and refreshes its TTL.
func (s *RedisStore) Save(ctx context.Context, owner string, c *Cart) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := s.client.Set(ctx, s.client.CartKey(owner), raw, s.ttl); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

// Clear removes the cart.
func (s *RedisStore) Clear(ctx context.Context, owner string) error {
	if err := s.client.Del(ctx, s.client.CartKey(owner)); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}
