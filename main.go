package main

import (
	"context"
	"encoding/json"
	"log"
	"os/signal"
	"syscall"
	"time"

	"mandi/internal/config"
	"mandi/internal/database"
	"mandi/internal/metrics"
	"mandi/internal/realtime"
	"mandi/internal/server"
	"mandi/internal/services"
	"mandi/pkg/logger"
	"mandi/pkg/rabbitmq"

	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

// consumedEvents are the routing keys the service's own queue listens to.
var consumedEvents = []string{"order.*", "price_alert.*"}

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog, err := logger.New(logger.Options{
		Production: cfg.IsProduction(),
		Level:      cfg.Log.Level,
		Fields:     cfg.LogFields(),
	})
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zlog.Sync()
	zap.ReplaceGlobals(zlog)

	// --- Database ---
	db, err := database.Open(cfg.DB, cfg.IsProduction())
	if err != nil {
		zlog.Fatal("Failed to open database", zap.Error(err))
	}
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if n, err := database.SeedCategories(ctx, db); err != nil {
		zlog.Fatal("Failed to seed categories", zap.Error(err))
	} else if n > 0 {
		zlog.Info("Seeded categories", zap.Int("created", n))
	}

	// --- RabbitMQ ---
	var publisher services.EventPublisher
	if cfg.RabbitMQ.Enabled {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{
			URL:      cfg.RabbitMQ.URL,
			Exchange: cfg.RabbitMQ.Exchange,
			Queue:    cfg.RabbitMQ.Queue,
			Bindings: consumedEvents,
		}, zlog)
		if err != nil {
			zlog.Warn("RabbitMQ unavailable, events will not be published", zap.Error(err))
		} else {
			defer mqClient.Close()
			publisher = mqClient
			if err := mqClient.Consume(logEvent(zlog)); err != nil {
				zlog.Error("Failed to start RabbitMQ consumer", zap.Error(err))
			}
		}
	}

	// --- HTTP ---
	app := server.New(server.Deps{
		Config:  cfg,
		DB:      db,
		Log:     zlog,
		Metrics: metrics.New(cfg.Metrics.Prefix),
		Events:  publisher,
		Hub:     realtime.NewHub(),
	})

	go func() {
		zlog.Info("Starting server", zap.String("port", cfg.App.Port))
		if err := app.Listen(cfg.App.Port); err != nil {
			zlog.Error("Server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	zlog.Info("Shutting down server...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		zlog.Error("Error during Fiber shutdown", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	zlog.Info("Server gracefully stopped")
}

// logEvent records lifecycle events delivered on the service queue. Malformed bodies
// are rejected so the broker can drop them.
func logEvent(log *zap.Logger) func(amqp.Delivery) error {
	return func(msg amqp.Delivery) error {
		var env struct {
			Event      string          `json:"event"`
			OccurredAt time.Time       `json:"occurred_at"`
			Data       json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(msg.Body, &env); err != nil {
			return err
		}
		log.Info("Received event",
			zap.String("event", env.Event),
			zap.String("routing_key", msg.RoutingKey),
			zap.Time("occurred_at", env.OccurredAt),
			zap.ByteString("data", env.Data),
		)
		return nil
	}
}
