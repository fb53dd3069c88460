package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisChannel is the pub/sub channel other API instances subscribe to
const RedisChannel = "curlmap:events"

// RedisPublisher fans events out over Redis pub/sub
type RedisPublisher struct {
	client  *redis.Client
	channel string
}

// NewRedisPublisher creates a pub/sub publisher on RedisChannel
func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client, channel: RedisChannel}
}

func (p *RedisPublisher) Publish(ctx context.Context, events ...Event) error {
	for _, evt := range events {
		data, err := json.Marshal(evt)
		if err != nil {
			return fmt.Errorf("encode event %s: %w", evt.Type, err)
		}
		if err := p.client.Publish(ctx, p.channel, data).Err(); err != nil {
			return fmt.Errorf("publish to redis: %w", err)
		}
	}
	return nil
}
