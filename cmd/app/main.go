package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/trainbooking/api"
	"github.com/Domenick1991/trainbooking/config"
	"github.com/Domenick1991/trainbooking/internal/authz"
	"github.com/Domenick1991/trainbooking/internal/bootstrap"
	"github.com/Domenick1991/trainbooking/internal/cache"
	"github.com/Domenick1991/trainbooking/internal/kafka"
	"github.com/Domenick1991/trainbooking/internal/logger"
	"github.com/Domenick1991/trainbooking/internal/metrics"
	"github.com/Domenick1991/trainbooking/internal/service/booking"
	"github.com/Domenick1991/trainbooking/internal/service/catalog"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logg, err := logger.New("eticket-api", cfg.Log.Level)
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer logg.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.Register()

	storage, err := bootstrap.OpenStorage(ctx, cfg, logg)
	if err != nil {
		logg.Fatal("open storage", zap.Error(err))
	}
	defer storage.Close(context.Background())

	var trainCache catalog.TrainCache
	if cfg.Redis.Addr != "" {
		redisCache := cache.NewRedisCache(cfg.Redis, cfg.Booking.TrainsCacheTTL)
		if err := redisCache.Ping(ctx); err != nil {
			logg.Warn("redis unavailable, train cache disabled", zap.Error(err))
		} else {
			trainCache = redisCache
			defer redisCache.Close()
		}
	}

	var producer booking.Producer
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaProducer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.PublishAttempts, cfg.Kafka.PublishDelay, logg)
		defer kafkaProducer.Close()
		producer = kafkaProducer
	}

	gate, err := authz.NewGate(ctx, cfg.Auth.AdminToken)
	if err != nil {
		logg.Fatal("build access gate", zap.Error(err))
	}
	var tokens api.TokenParser
	if cfg.Auth.JWTSecret != "" {
		tokens = authz.NewTokenParser(cfg.Auth.JWTSecret)
	}

	catalogService := catalog.NewCatalogService(storage.Trains, trainCache, logg)
	bookingService := booking.NewBookingService(
		storage.Bookings,
		storage.Trains,
		producer,
		cfg.Kafka.BookingEventsTopic,
		logg,
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		booking.WithPNRAttempts(cfg.Booking.PNRAttempts),
	)

	gin.SetMode(gin.ReleaseMode)
	router := api.NewRouter(api.RouterDeps{
		Catalog:        catalogService,
		Bookings:       bookingService,
		Gate:           gate,
		Tokens:         tokens,
		Log:            logg,
		RequestTimeout: cfg.HTTP.RequestTimeout,
		EnableDocs:     cfg.HTTP.EnableDocs,
		Metrics:        promhttp.Handler(),
	})

	if err := bootstrap.Run(ctx, cfg.HTTP, router, logg); err != nil {
		logg.Fatal("server error", zap.Error(err))
	}
}
