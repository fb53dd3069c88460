package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/curlmap/curlmap-api/internal/config"
	"github.com/curlmap/curlmap-api/internal/domain/booking"
	"github.com/curlmap/curlmap-api/internal/domain/chat"
	"github.com/curlmap/curlmap-api/internal/domain/geo"
	"github.com/curlmap/curlmap-api/internal/domain/negotiation"
	"github.com/curlmap/curlmap-api/internal/domain/pricing"
	"github.com/curlmap/curlmap-api/internal/domain/provider"
	"github.com/curlmap/curlmap-api/internal/domain/review"
	"github.com/curlmap/curlmap-api/internal/middleware"
	"github.com/curlmap/curlmap-api/internal/pkg/database"
	"github.com/curlmap/curlmap-api/internal/pkg/events"
	"github.com/curlmap/curlmap-api/internal/pkg/jwt"
	"github.com/curlmap/curlmap-api/internal/pkg/logger"
	"github.com/curlmap/curlmap-api/internal/pkg/payment"
	pkgresponse "github.com/curlmap/curlmap-api/internal/pkg/response"
	"github.com/curlmap/curlmap-api/internal/pkg/robokassa"
)

const requestTimeout = 30 * time.Second

// handlers groups the HTTP surface mounted under /api/v1
type handlers struct {
	geo         *geo.Handler
	provider    *provider.Handler
	negotiation *negotiation.Handler
	booking     *booking.Handler
	chat        *chat.Handler
	review      *review.Handler
}

func main() {
	cfg := config.Load()
	logger.Init(logger.Config{
		Level:       cfg.LogLevel,
		Environment: cfg.Env,
	})

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("Starting CurlMap API")

	db, err := database.NewPostgres(cfg.DatabaseURL, database.DefaultPoolConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	rdb, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(rdb)

	jwtService := jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL)

	publisher, closePublisher := newPublisher(cfg, rdb)
	defer closePublisher()

	policy := pricing.Policy{
		MinPriceRatio: cfg.MinPriceRatio,
		DepositRate:   cfg.DepositRate,
		Currency:      cfg.Currency,
	}
	payments := payment.New(robokassa.Config{
		MerchantLogin: cfg.RoboKassaMerchantLogin,
		Password1:     cfg.RoboKassaPassword1,
		TestMode:      cfg.RoboKassaTestMode,
	})

	// ---------- Geo ----------
	geoRepo := geo.NewRepository(db)
	locator, indexer := newGeoIndex(cfg, rdb, geoRepo)

	// ---------- Repositories ----------
	providerRepo := provider.NewRepository(db)
	bookingRepo := booking.NewRepository(db)
	negotiationRepo := negotiation.NewRepository(db, bookingRepo)
	chatRepo := chat.NewRepository(db)

	// ---------- Services ----------
	geoService := geo.NewService(locator, cfg.GeoMaxRadiusKm)
	providerService := provider.NewService(providerRepo, indexer)
	bookingService := booking.NewService(bookingRepo, providerService, policy, payments, publisher)
	negotiationService := negotiation.NewService(negotiationRepo, indexer, policy, publisher)
	chatService := chat.NewService(chatRepo, chat.NewRateLimiter(rdb), publisher)

	// Cross-service wiring (setters avoid import cycles)
	bookingService.SetRequestCompleter(negotiationService)
	bookingService.SetChatProvisioner(chatService)
	negotiationService.SetBookingAnnouncer(bookingService)
	chatService.SetBookingDirectory(bookingService)

	h := handlers{
		geo:         geo.NewHandler(geoService),
		provider:    provider.NewHandler(providerService),
		negotiation: negotiation.NewHandler(negotiationService),
		booking:     booking.NewHandler(bookingService),
		chat:        chat.NewHandler(chatService),
		review:      review.NewHandler(review.NewService(review.NewRepository(db), bookingService)),
	}

	r := newRouter(cfg, middleware.Auth(jwtService), h, db)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}

func newRouter(cfg *config.Config, authMiddleware func(http.Handler) http.Handler, h handlers, db *sqlx.DB) chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		status := "ok"
		if db != nil {
			if err := db.PingContext(r.Context()); err != nil {
				status = "degraded"
			}
		}
		pkgresponse.OK(w, map[string]string{
			"status":  status,
			"version": "1.0.0",
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(requestTimeout))

		r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
			pkgresponse.OK(w, map[string]string{"message": "pong"})
		})

		r.Mount("/nearby", h.geo.Routes(authMiddleware))
		r.Mount("/providers", h.provider.Routes(authMiddleware))
		r.Mount("/requests", h.negotiation.Routes(authMiddleware))
		r.Mount("/offers", h.negotiation.OfferRoutes(authMiddleware))
		r.Mount("/bookings", h.booking.Routes(authMiddleware))
		r.Mount("/chats", h.chat.Routes(authMiddleware))
		r.Mount("/reviews", h.review.Routes(authMiddleware))
	})

	return r
}

// newPublisher fans domain events out to the log, Redis pub/sub and, when
// brokers are configured, Kafka
func newPublisher(cfg *config.Config, rdb *redis.Client) (events.Publisher, func()) {
	sinks := events.Multi{events.LogPublisher{}, events.NewRedisPublisher(rdb)}
	if len(cfg.KafkaBrokers) == 0 {
		return sinks, func() {}
	}

	kafka := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaEventsTopic)
	log.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.KafkaEventsTopic).Msg("Kafka event publisher enabled")
	return append(sinks, kafka), func() {
		if err := kafka.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close Kafka writer")
		}
	}
}

// newGeoIndex returns the radius locator and the index writers keep in step
func newGeoIndex(cfg *config.Config, rdb *redis.Client, repo geo.Repository) (geo.Locator, geo.Indexer) {
	if cfg.GeoIndex != "redis" {
		log.Info().Msg("Geo queries served by PostgreSQL bounding box")
		return repo, geo.NoopIndexer{}
	}

	locator := geo.NewRedisLocator(rdb, repo)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := locator.Rebuild(ctx); err != nil {
		log.Warn().Err(err).Msg("Redis geo rebuild failed, falling back to PostgreSQL")
		return repo, geo.NoopIndexer{}
	}
	return locator, locator
}
