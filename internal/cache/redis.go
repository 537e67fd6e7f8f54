// Package cache holds the optional Redis-backed preview cache.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Connect builds a Redis client from a redis:// URL or a bare host:port.
func Connect(redisURL string) (*redis.Client, error) {
	if strings.HasPrefix(redisURL, "redis://") || strings.HasPrefix(redisURL, "rediss://") {
		opt, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		return redis.NewClient(opt), nil
	}
	return redis.NewClient(&redis.Options{Addr: redisURL}), nil
}

// PreviewCache keeps generated preview text for a short TTL so repeated
// views of the same draft do not hit the completion provider again.
// Full reports are never cached.
type PreviewCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewPreviewCache(client *redis.Client, ttl time.Duration) *PreviewCache {
	return &PreviewCache{client: client, ttl: ttl}
}

func previewKey(reportID uuid.UUID) string {
	return "idebisnis:preview:" + reportID.String()
}

// Get returns the cached preview and whether it was present.
func (c *PreviewCache) Get(ctx context.Context, reportID uuid.UUID) (string, bool, error) {
	text, err := c.client.Get(ctx, previewKey(reportID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return text, true, nil
}

func (c *PreviewCache) Set(ctx context.Context, reportID uuid.UUID, text string) error {
	return c.client.Set(ctx, previewKey(reportID), text, c.ttl).Err()
}

func (c *PreviewCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *PreviewCache) Close() error {
	return c.client.Close()
}
