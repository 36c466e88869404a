package cache

import (
	"time"

	"github.com/muratoffalex/manobot/internal/logger"
)

// MultiLevelCache reads through a fast tier to a persistent one and
// promotes hits.
type MultiLevelCache struct {
	fast       Cache
	persistent Cache
	promoteTTL time.Duration
	logger     logger.Logger
}

func NewMultiLevelCache(fast, persistent Cache, promoteTTL time.Duration, logger logger.Logger) *MultiLevelCache {
	return &MultiLevelCache{
		fast:       fast,
		persistent: persistent,
		promoteTTL: promoteTTL,
		logger:     logger,
	}
}

func (c *MultiLevelCache) Get(key string) ([]byte, bool) {
	if data, found := c.fast.Get(key); found {
		return data, true
	}

	data, found := c.persistent.Get(key)
	if !found {
		return nil, false
	}
	if err := c.fast.Set(key, data, c.promoteTTL); err != nil {
		c.logger.WithError(err).WithField("key", key).Debug("Failed to promote cache entry")
	}
	return data, true
}

func (c *MultiLevelCache) Set(key string, data []byte, ttl time.Duration) error {
	if err := c.persistent.Set(key, data, ttl); err != nil {
		return err
	}
	_ = c.fast.Set(key, data, ttl)
	return nil
}

func (c *MultiLevelCache) Delete(key string) error {
	if err := c.fast.Delete(key); err != nil {
		c.logger.WithError(err).Error("Failed to delete from fast cache")
	}
	return c.persistent.Delete(key)
}

func (c *MultiLevelCache) Clear() error {
	if err := c.fast.Clear(); err != nil {
		c.logger.WithError(err).Error("Failed to clear fast cache")
	}
	return c.persistent.Clear()
}

// Purge drops expired entries from the fast tier. The persistent tier
// expires its own entries.
func (c *MultiLevelCache) Purge() int {
	if p, ok := c.fast.(interface{ Purge() int }); ok {
		return p.Purge()
	}
	return 0
}
