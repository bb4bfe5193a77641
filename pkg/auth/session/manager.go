package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/homeplate-backend/pkg/content/models"
	redisclient "github.com/angelmondragon/homeplate-backend/pkg/redis"
	redislib "github.com/redis/go-redis/v9"
)

const defaultIdentityTTL = 5 * time.Minute

type identityStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

type identityKeyer interface {
	IdentityKey(userID int) string
}

// Manager caches the account resolved for a session so /users/me is not called on every request.
type Manager struct {
	store identityStore
	keyer identityKeyer
	ttl   time.Duration
}

// NewManager constructs an identity cache backed by Redis.
func NewManager(client *redisclient.Client, ttl time.Duration) (*Manager, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if ttl <= 0 {
		ttl = defaultIdentityTTL
	}
	return &Manager{store: client, keyer: client, ttl: ttl}, nil
}

// Lookup returns the cached account for userID. The bool is false on a cache miss.
func (m *Manager) Lookup(ctx context.Context, userID int) (*models.User, bool, error) {
	raw, err := m.store.Get(ctx, m.keyer.IdentityKey(userID))
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var user models.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		// Unreadable entries are dropped and treated as a miss.
		_ = m.store.Del(ctx, m.keyer.IdentityKey(userID))
		return nil, false, nil
	}
	return &user, true, nil
}

// Remember stores the account for the configured TTL.
func (m *Manager) Remember(ctx context.Context, user models.User) error {
	if user.ID <= 0 {
		return fmt.Errorf("user id is required")
	}
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode identity: %w", err)
	}
	return m.store.Set(ctx, m.keyer.IdentityKey(user.ID), raw, m.ttl)
}

// Forget drops the cached account, e.g. after the account changed or the user logged out.
func (m *Manager) Forget(ctx context.Context, userID int) error {
	if userID <= 0 {
		return nil
	}
	return m.store.Del(ctx, m.keyer.IdentityKey(userID))
}
