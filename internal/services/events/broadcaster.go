package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/vn-engine/internal/dialogue"
)

const (
	channelPrefix         = "dialogue-events:"
	defaultPublishTimeout = 500 * time.Millisecond
)

// Broadcaster publishes dialogue events to Redis Pub/Sub, one channel per
// session, so tools outside the player can follow a playthrough.
type Broadcaster struct {
	redisClient *redis.Client
	logger      *slog.Logger
	timeout     time.Duration
}

var _ dialogue.Observer = (*Broadcaster)(nil)

// NewBroadcaster creates a new event broadcaster
func NewBroadcaster(redisClient *redis.Client, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		redisClient: redisClient,
		logger:      logger,
		timeout:     defaultPublishTimeout,
	}
}

// Channel returns the channel a session's events are published on.
func Channel(sessionID uuid.UUID) string {
	return channelPrefix + sessionID.String()
}

// Publish implements dialogue.Observer. The player loop calls it
// synchronously, so each publish is bounded by a short timeout.
func (b *Broadcaster) Publish(ctx context.Context, event dialogue.Event) error {
	channel := Channel(event.SessionID)

	data, err := json.Marshal(event)
	if err != nil {
		b.logger.Error("Failed to marshal event", "error", err, "event_type", event.Type)
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	if err := b.redisClient.Publish(ctx, channel, data).Err(); err != nil {
		b.logger.Error("Failed to publish event", "error", err, "channel", channel)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	b.logger.Debug("Event published",
		"channel", channel,
		"event_type", event.Type,
		"line", event.Line,
	)

	return nil
}
