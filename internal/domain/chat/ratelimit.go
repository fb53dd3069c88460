package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Limiter decides whether a sender may post another message
type Limiter interface {
	Allow(ctx context.Context, userID uuid.UUID) bool
}

// RateLimiter is a fixed-window counter per sender in Redis
type RateLimiter struct {
	redis  *redis.Client
	limit  int
	window time.Duration
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(redisClient *redis.Client) *RateLimiter {
	return &RateLimiter{
		redis:  redisClient,
		limit:  30,          // 30 messages
		window: time.Minute, // per minute
	}
}

// Allow checks if user can send message
func (rl *RateLimiter) Allow(ctx context.Context, userID uuid.UUID) bool {
	if rl == nil || rl.redis == nil {
		return true // No Redis, allow all
	}

	key := fmt.Sprintf("ratelimit:chat:%s", userID)

	count, err := rl.redis.Incr(ctx, key).Result()
	if err != nil {
		log.Warn().Err(err).Msg("Chat rate limiter unavailable")
		return true // Fail open
	}

	if count == 1 {
		rl.redis.Expire(ctx, key, rl.window)
	}

	return count <= int64(rl.limit)
}
