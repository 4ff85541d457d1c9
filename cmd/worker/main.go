package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/trainbooking/config"
	"github.com/Domenick1991/trainbooking/internal/analytics"
	"github.com/Domenick1991/trainbooking/internal/bootstrap"
	"github.com/Domenick1991/trainbooking/internal/email"
	"github.com/Domenick1991/trainbooking/internal/kafka"
	"github.com/Domenick1991/trainbooking/internal/logger"
	"github.com/Domenick1991/trainbooking/internal/metrics"
	"github.com/Domenick1991/trainbooking/internal/worker"
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

	logg, err := logger.New("eticket-worker", cfg.Log.Level)
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer logg.Sync()

	if len(cfg.Kafka.Brokers) == 0 {
		logg.Fatal("kafka.brokers is required for the worker")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.Register()

	var recorder worker.Recorder
	if cfg.ClickHouse.Addr != "" {
		conn, err := analytics.Open(ctx, cfg.ClickHouse)
		if err != nil {
			logg.Fatal("open clickhouse", zap.Error(err))
		}
		chRecorder := analytics.NewRecorder(conn, logg)
		defer chRecorder.Close()
		if err := chRecorder.EnsureTable(ctx); err != nil {
			logg.Fatal("create analytics table", zap.Error(err))
		}
		recorder = chRecorder
	}

	topic := cfg.Kafka.NotificationsTopic
	if topic == "" {
		topic = cfg.Kafka.BookingEventsTopic
	}
	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, topic, logg)
	defer consumer.Close()

	handler := worker.NewHandler(email.NewSender(logg), recorder, logg)

	if cfg.Worker.MetricsAddress != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		go func() {
			httpCfg := config.HTTPConfig{Address: cfg.Worker.MetricsAddress, ShutdownTimeout: cfg.Worker.ShutdownTimeout}
			if err := bootstrap.Run(ctx, httpCfg, mux, logg); err != nil {
				logg.Error("metrics server stopped", zap.Error(err))
			}
		}()
	}

	logg.Info("worker consuming", zap.String("topic", topic), zap.String("group_id", cfg.Kafka.GroupID))
	if err := consumer.Consume(ctx, handler.Handle); err != nil {
		logg.Fatal("consumer stopped", zap.Error(err))
	}
	logg.Info("worker stopped")
}
