package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/curlmap/curlmap-api/internal/config"
	"github.com/curlmap/curlmap-api/internal/domain/geo"
	"github.com/curlmap/curlmap-api/internal/pkg/database"
	"github.com/curlmap/curlmap-api/internal/pkg/events"
	"github.com/curlmap/curlmap-api/internal/pkg/logger"
)

// minRebuildGap keeps bursts of request events from rebuilding back to back
const minRebuildGap = 5 * time.Second

// geo-worker keeps the Redis GEO sets in step with PostgreSQL. API
// instances update the sets inline and only log when that fails, so this
// worker rebuilds periodically and whenever request lifecycle events arrive.
func main() {
	interval := flag.Duration("interval", 10*time.Minute, "full rebuild interval")
	flag.Parse()

	cfg := config.Load()
	logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env})

	log.Info().Dur("interval", *interval).Msg("Starting geo-worker")

	db, err := database.NewPostgres(cfg.DatabaseURL, database.PoolConfig{
		MaxOpenConns:    2,
		MaxIdleConns:    1,
		ConnMaxLifetime: 5 * time.Minute,
		ConnMaxIdleTime: time.Minute,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	rdb, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(rdb)

	locator := geo.NewRedisLocator(rdb, geo.NewRepository(db))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	wake := make(chan struct{}, 1)
	go subscribeWakeups(ctx, rdb, wake)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		<-sigChan
		log.Info().Msg("Shutdown signal received")
		cancel()
	}()

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	var lastRebuild time.Time
	rebuild := func(reason string) {
		if !lastRebuild.IsZero() && time.Since(lastRebuild) < minRebuildGap {
			return
		}
		start := time.Now()
		if err := locator.Rebuild(ctx); err != nil {
			log.Error().Err(err).Str("reason", reason).Msg("Geo rebuild failed")
			return
		}
		lastRebuild = time.Now()
		log.Info().Str("reason", reason).Dur("took", time.Since(start)).Msg("Geo rebuild done")
	}

	rebuild("startup")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("geo-worker stopped")
			return
		case <-wake:
			rebuild("event")
		case <-ticker.C:
			rebuild("interval")
		}
	}
}

func subscribeWakeups(ctx context.Context, rdb *redis.Client, wake chan<- struct{}) {
	sub := rdb.Subscribe(ctx, events.RedisChannel)
	defer func() { _ = sub.Close() }()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-sub.Channel():
			if !ok {
				return
			}
			if !affectsIndex([]byte(msg.Payload)) {
				continue
			}
			// non-blocking wake-up
			select {
			case wake <- struct{}{}:
			default:
			}
		}
	}
}

// affectsIndex reports whether the event changes the set of open requests
func affectsIndex(payload []byte) bool {
	var evt events.Event
	if err := json.Unmarshal(payload, &evt); err != nil {
		return false
	}
	switch evt.Type {
	case events.RequestCreated, events.RequestCancelled, events.OfferAccepted:
		return true
	default:
		return false
	}
}
