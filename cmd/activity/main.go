package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"forms-service/internal/adapters/kafka"
	"forms-service/internal/config"
	"forms-service/internal/services"
	"forms-service/pkg/logger"
)

// activity tails the template activity topic and logs every event.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}
	slog.SetDefault(logger.New(cfg.Log.Level, cfg.Log.Format))

	if len(cfg.Kafka.Brokers) == 0 {
		log.Fatal("KAFKA_BROKERS is not set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reader := kafka.NewActivityReader(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.GroupID)
	defer reader.Close()

	slog.Info("Consuming activity events", "topic", cfg.Kafka.Topic, "group", cfg.Kafka.GroupID)

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				slog.Info("Activity consumer stopped")
				return
			}
			slog.Error("Failed to read activity event", "error", err)
			os.Exit(1)
		}

		var event services.ActivityEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			slog.Warn("Skipping malformed activity event", "offset", msg.Offset, "error", err)
			continue
		}
		slog.Info("Activity",
			"type", event.Type,
			"templateID", event.TemplateID,
			"userID", event.UserID,
			"commentID", event.CommentID,
			"partition", msg.Partition,
			"offset", msg.Offset,
			"at", event.At,
		)
	}
}
