package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"

	"launchpad/internal/models"
)

const analyticsKey = "launchpad:analytics:platform"

// AnalyticsCache keeps the platform analytics snapshot in redis for a short TTL.
type AnalyticsCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewAnalyticsCache(client redis.Cmdable, ttl time.Duration) *AnalyticsCache {
	return &AnalyticsCache{client: client, ttl: ttl}
}

// GetAnalytics returns nil, nil on a miss.
func (c *AnalyticsCache) GetAnalytics(ctx context.Context) (*models.PlatformAnalytics, error) {
	raw, err := c.client.Get(ctx, analyticsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var out models.PlatformAnalytics
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *AnalyticsCache) SetAnalytics(ctx context.Context, a *models.PlatformAnalytics) error {
	raw, err := json.Marshal(a)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, analyticsKey, raw, c.ttl).Err()
}

// Invalidate drops the cached snapshot.
func (c *AnalyticsCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, analyticsKey).Err()
}
