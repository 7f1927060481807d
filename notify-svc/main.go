package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tableside/config"
	"tableside/notify-svc/internal/service"
	"tableside/notify-svc/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}
	if cfg.KafkaBroker == "" {
		log.Fatal("KAFKA_BROKER is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reader := config.NewKafkaReader(cfg)
	defer reader.Close()

	rdb := config.NewRedis(cfg)
	if rdb != nil {
		defer rdb.Close()
	}

	consumer := service.NewConsumer(reader, service.LogMailer{}, storage.NewSentLog(rdb, 7*24*time.Hour))
	consumer.Start(ctx)
}
