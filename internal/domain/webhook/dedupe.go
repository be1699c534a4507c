package webhook

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const dedupeTTL = 24 * time.Hour

// Deduper is a best-effort early exit for replayed events. Correctness
// never depends on it: the storage-level unique constraints remain the
// idempotency boundary, this only saves the re-processing work. Redis
// being down degrades to processing every delivery.
type Deduper struct {
	client *redis.Client
}

// NewDeduper creates an event deduper. client may be nil.
func NewDeduper(client *redis.Client) *Deduper {
	return &Deduper{client: client}
}

// Seen reports whether the event id was already fully processed.
func (d *Deduper) Seen(ctx context.Context, eventID string) bool {
	if d == nil || d.client == nil || eventID == "" {
		return false
	}
	n, err := d.client.Exists(ctx, dedupeKey(eventID)).Result()
	if err != nil {
		log.Warn().Err(err).Str("event_id", eventID).Msg("event dedupe check failed")
		return false
	}
	return n > 0
}

// Mark records the event id after successful processing. Marking only on
// success keeps a failed invocation retryable.
func (d *Deduper) Mark(ctx context.Context, eventID string) {
	if d == nil || d.client == nil || eventID == "" {
		return
	}
	if err := d.client.Set(ctx, dedupeKey(eventID), 1, dedupeTTL).Err(); err != nil {
		log.Warn().Err(err).Str("event_id", eventID).Msg("event dedupe mark failed")
	}
}

func dedupeKey(eventID string) string {
	return "webhook:event:" + eventID
}
