// Package rediscache implements the shipment status cache port on Redis.
package rediscache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"fulfillment/internal/pkg/errs"
)

const (
	// keyLastStatus caches the last carrier status announced per order.
	keyLastStatus = "shipment_status:%s"

	// ttlLastStatus outlives any realistic delivery, after which a repeat
	// notification is harmless anyway.
	ttlLastStatus = 60 * 24 * time.Hour
)

// StatusCache remembers per-order carrier statuses between poll runs.
type StatusCache struct {
	client *redis.Client
}

// NewStatusCache creates a cache over the given Redis client.
func NewStatusCache(client *redis.Client) (*StatusCache, error) {
	if client == nil {
		return nil, errs.NewValueIsRequiredError("client")
	}
	return &StatusCache{client: client}, nil
}

// GetLastStatus returns the last announced status for an order. A cache
// miss is an empty string, not an error.
func (c *StatusCache) GetLastStatus(ctx context.Context, orderID string) (string, error) {
	status, err := c.client.Get(ctx, fmt.Sprintf(keyLastStatus, orderID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", err
	}
	return status, nil
}

// SetLastStatus records the status just announced for an order.
func (c *StatusCache) SetLastStatus(ctx context.Context, orderID string, status string) error {
	return c.client.Set(ctx, fmt.Sprintf(keyLastStatus, orderID), status, ttlLastStatus).Err()
}
