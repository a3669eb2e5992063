package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const eventTTL = 24 * time.Hour

// WebhookDedup is a best-effort processed-event ledger backed by Redis.
// Key format: billing:event:<event_id>. Entries expire after eventTTL, long
// past the provider's redelivery window.
type WebhookDedup struct {
	client *redis.Client
}

// NewWebhookDedup creates a WebhookDedup wrapping the given Redis client.
func NewWebhookDedup(client *redis.Client) *WebhookDedup {
	return &WebhookDedup{client: client}
}

// Seen reports whether this event id has already been reconciled.
func (d *WebhookDedup) Seen(ctx context.Context, eventID string) (bool, error) {
	n, err := d.client.Exists(ctx, d.key(eventID)).Result()
	if err != nil {
		return false, fmt.Errorf("dedup check: %w", err)
	}
	return n > 0, nil
}

// Mark records that this event has been reconciled.
func (d *WebhookDedup) Mark(ctx context.Context, eventID string) error {
	return d.client.Set(ctx, d.key(eventID), "1", eventTTL).Err()
}

func (d *WebhookDedup) key(eventID string) string {
	return "billing:event:" + eventID
}
