package redis

import (
	"context"
	"time"

	"nereus/internal/adapters/redis"
	"nereus/internal/domain/modelversion"
)

const (
	activeModelKey = "model:active"
	cacheTTL       = 10 * time.Minute
)

// ModelCache caches the active model version to keep the mobile update-check
// endpoint off Postgres on every poll
type ModelCache struct {
	client *redis.Client
}

// NewModelCache creates a new model version cache
func NewModelCache(client *redis.Client) *ModelCache {
	return &ModelCache{client: client}
}

// GetActive returns the cached active model version, or (nil, nil) on miss
func (c *ModelCache) GetActive(ctx context.Context) (*modelversion.ModelVersion, error) {
	var m modelversion.ModelVersion
	err := c.client.Get(ctx, activeModelKey, &m)
	if err != nil {
		if redis.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

// SetActive caches the active model version
func (c *ModelCache) SetActive(ctx context.Context, m *modelversion.ModelVersion) error {
	return c.client.Set(ctx, activeModelKey, m, cacheTTL)
}

// Invalidate drops the cached active model version
func (c *ModelCache) Invalidate(ctx context.Context) error {
	return c.client.Delete(ctx, activeModelKey)
}
