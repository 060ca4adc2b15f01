package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segyhp/xp-lending/internal/domain"
	"github.com/segyhp/xp-lending/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const DefaultChannelPrefix = "notifications"

// RedisPublisher fans notifications out to per-user Redis channels.
// Delivery is fire-and-forget: a subscriber that is not listening misses the event.
type RedisPublisher struct {
	client *redis.Client
	prefix string
}

func NewRedisPublisher(client *redis.Client, prefix string) *RedisPublisher {
	if prefix == "" {
		prefix = DefaultChannelPrefix
	}
	return &RedisPublisher{client: client, prefix: prefix}
}

// Channel returns the channel a user's notifications are published to.
func (p *RedisPublisher) Channel(userID string) string {
	return fmt.Sprintf("%s:%s", p.prefix, userID)
}

func (p *RedisPublisher) Publish(ctx context.Context, notification *domain.Notification) error {
	payload, err := json.Marshal(notification)
	if err != nil {
		return err
	}

	channel := p.Channel(notification.UserID)
	if err := p.client.Publish(ctx, channel, payload).Err(); err != nil {
		logger.Warn("Failed to publish notification",
			logger.String("channel", channel),
			logger.String("type", notification.Type),
			logger.ErrorField(err),
		)
		return err
	}

	return nil
}
