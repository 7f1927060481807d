package config

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
)

type Config struct {
	HTTPAddr      string `env:"HTTP_ADDR" envDefault:":8081"`
	PublicBaseURL string `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:8081"`
	QRCodeSize    int    `env:"QR_CODE_SIZE" envDefault:"256"`

	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBName     string `env:"DB_NAME" envDefault:"tableside"`
	DBUser     string `env:"DB_USER" envDefault:"postgres"`
	DBPassword string `env:"DB_PASSWORD"`

	FallbackPath string `env:"FALLBACK_DB_PATH" envDefault:"data/fallback.db"`

	RedisHost string `env:"REDIS_HOST"`
	RedisPort string `env:"REDIS_PORT" envDefault:"6379"`

	KafkaBroker string `env:"KAFKA_BROKER"`
	EventsTopic string `env:"EVENTS_TOPIC" envDefault:"booking-events"`
	NotifyGroup string `env:"NOTIFY_GROUP" envDefault:"notify-svc-consumer"`

	PrimaryTimeout    time.Duration `env:"PRIMARY_TIMEOUT" envDefault:"2s"`
	PrimaryRetryAfter time.Duration `env:"PRIMARY_RETRY_AFTER" envDefault:"5s"`
	ReconcileInterval time.Duration `env:"RECONCILE_INTERVAL" envDefault:"5m"`
	SettleWindow      time.Duration `env:"RECONCILE_SETTLE_WINDOW" envDefault:"30s"`
	LockTTL           time.Duration `env:"LOCK_TTL" envDefault:"10s"`
	MenuCacheTTL      time.Duration `env:"MENU_CACHE_TTL" envDefault:"24h"`

	DefaultMaxReservations int `env:"DEFAULT_MAX_RESERVATIONS" envDefault:"50"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

func (c Config) PostgresDSN() string {
	return "host=" + c.DBHost + " port=" + c.DBPort + " user=" + c.DBUser +
		" password=" + c.DBPassword + " dbname=" + c.DBName + " sslmode=disable"
}

// OpenPostgres opens the primary pool. An unreachable server is logged and the
// pool returned anyway, the dual store serves from the fallback until it answers.
func OpenPostgres(cfg Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.PostgresDSN())
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.PrimaryTimeout)
	defer cancel()
	if err = db.PingContext(ctx); err != nil {
		log.Printf("Primary database unreachable at startup: %v", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	return db, nil
}

// NewRedis returns nil when REDIS_HOST is unset.
func NewRedis(cfg Config) *redis.Client {
	if cfg.RedisHost == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr: cfg.RedisHost + ":" + cfg.RedisPort,
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.PrimaryTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("Redis unreachable at startup: %v", err)
	}

	return client
}

func NewKafkaReader(cfg Config) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers: []string{cfg.KafkaBroker},
		Topic:   cfg.EventsTopic,
		GroupID: cfg.NotifyGroup,
	})
}

// NewKafkaWriter returns nil when KAFKA_BROKER is unset.
func NewKafkaWriter(cfg Config) *kafka.Writer {
	if cfg.KafkaBroker == "" {
		return nil
	}
	return &kafka.Writer{
		Addr:     kafka.TCP(cfg.KafkaBroker),
		Topic:    cfg.EventsTopic,
		Balancer: &kafka.LeastBytes{},
	}
}
