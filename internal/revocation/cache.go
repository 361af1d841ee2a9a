// Package revocation keeps an in-memory set of accounts whose access was
// pulled after login tokens were issued (denied or removed). The auth
// middleware consults it on every request so a deny/remove takes effect
// before outstanding JWTs expire.
package revocation

import (
	"context"
	"sync"
	"time"

	"github.com/unigate-dev/unigate/internal/domain"
	"github.com/unigate-dev/unigate/internal/logger"
)

// Storage is the minimal read surface the cache needs.
type Storage interface {
	RecentlyRevoked(since time.Time) ([]domain.UserId, error)
}

type Cache struct {
	storage        Storage
	cache          map[domain.UserId]bool
	mu             sync.RWMutex
	jwtTTL         time.Duration
	lastUpdateTime time.Time
}

func NewCache(storage Storage, jwtTTL time.Duration) *Cache {
	return &Cache{
		storage: storage,
		cache:   make(map[domain.UserId]bool),
		jwtTTL:  jwtTTL,
	}
}

// Update rebuilds the cache from accounts revoked within the JWT TTL plus
// a 10% buffer for clock skew. Anything older carries no live token.
func (c *Cache) Update() error {
	since := time.Now().Add(-time.Duration(float64(c.jwtTTL) * 1.1))

	userIds, err := c.storage.RecentlyRevoked(since)
	if err != nil {
		return err
	}

	newCache := make(map[domain.UserId]bool, len(userIds))
	for _, userId := range userIds {
		newCache[userId] = true
	}

	c.mu.Lock()
	c.cache = newCache
	c.lastUpdateTime = time.Now()
	c.mu.Unlock()

	logger.Log.Info("revocation cache updated",
		"component", "revocation_cache",
		"entries", len(newCache),
		"since", since.Format(time.RFC3339))
	return nil
}

func (c *Cache) IsRevoked(userId domain.UserId) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cache[userId]
}

// StartBackgroundUpdate refreshes the cache on a ticker until ctx is done.
func (c *Cache) StartBackgroundUpdate(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	logger.Log.Info("started revocation cache background updates",
		"component", "revocation_cache",
		"interval", interval,
		"jwt_ttl", c.jwtTTL)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := c.Update(); err != nil {
					logger.Log.Error("revocation cache update failed",
						"component", "revocation_cache",
						"error", err)
				}
			case <-ctx.Done():
				logger.Log.Info("revocation cache shutting down",
					"component", "revocation_cache")
				return
			}
		}
	}()
}
