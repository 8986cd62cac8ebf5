package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/garden-quest/pkg/sim"
)

// Broadcaster publishes engine events to Redis Pub/Sub, one channel per session
type Broadcaster struct {
	redisClient *redis.Client
	logger      *slog.Logger
}

// NewBroadcaster creates a new event broadcaster
func NewBroadcaster(redisClient *redis.Client, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		redisClient: redisClient,
		logger:      logger,
	}
}

// Channel returns the pub/sub channel of a session
func Channel(session uuid.UUID) string {
	return fmt.Sprintf("world-events:%s", session.String())
}

// Publish publishes an event to its session channel
func (b *Broadcaster) Publish(ctx context.Context, e sim.Event) error {
	channel := Channel(e.Session)

	data, err := json.Marshal(e)
	if err != nil {
		b.logger.Error("Failed to marshal event", "error", err, "kind", e.Kind)
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.redisClient.Publish(ctx, channel, data).Err(); err != nil {
		b.logger.Error("Failed to publish event", "error", err, "channel", channel)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	b.logger.Debug("Event published",
		"channel", channel,
		"kind", e.Kind,
		"tick", e.Tick,
	)

	return nil
}

// Subscribe returns a subscription to a session's events. The caller closes it.
func (b *Broadcaster) Subscribe(ctx context.Context, session uuid.UUID) *redis.PubSub {
	return b.redisClient.Subscribe(ctx, Channel(session))
}
