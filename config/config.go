package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dariast03/reparo-sys-sub001/internal/database"

	"go.uber.org/zap"
)

type Config struct {
	Port       string
	HealthPort string
	DB         DB
	Redis      Redis
	Kafka      Kafka
	Ledger     Ledger
}

type DB struct {
	database.Config
}

type Redis struct {
	Enabled        bool
	Addr           string
	Password       string
	DB             int
	IdempotencyTTL time.Duration
}

type Kafka struct {
	Brokers     []string
	EventsTopic string
}

func (k Kafka) Enabled() bool { return len(k.Brokers) > 0 && k.EventsTopic != "" }

type Ledger struct {
	MaxRetries        int
	ReconcileSchedule string
}

func Load(log *zap.Logger) *Config {
	cfg := &Config{
		Port:       getEnv("APP_PORT", log),
		HealthPort: getEnvDefault("GRPC_HEALTH_PORT", ":50051"),
		DB: DB{
			Config: database.Config{
				Host:     getEnv("DB_HOST", log),
				Port:     getEnv("DB_PORT", log),
				User:     getEnv("DB_USER", log),
				Password: getEnv("DB_PASSWORD", log),
				Name:     getEnv("DB_NAME", log),
				SSLMode:  getEnvDefault("DB_SSLMODE", "disable"),
			},
		},
		Redis: Redis{
			Enabled: getEnvDefault("REDIS_ENABLED", "false") == "true",
		},
		Kafka: Kafka{
			Brokers:     splitAndTrim(os.Getenv("KAFKA_BROKERS")),
			EventsTopic: getEnvDefault("KAFKA_TOPIC_WORKSHOP_EVENTS", "workshop.events"),
		},
		Ledger: Ledger{
			MaxRetries:        atoiDefault(os.Getenv("LEDGER_MAX_RETRIES"), 3),
			ReconcileSchedule: getEnvDefault("RECONCILE_SCHEDULE", "@every 1h"),
		},
	}

	if cfg.Redis.Enabled {
		cfg.Redis.Addr = getEnv("REDIS_ADDR", log)
		cfg.Redis.Password = os.Getenv("REDIS_PASSWORD")
		cfg.Redis.DB = atoiDefault(os.Getenv("REDIS_DB"), 0)
		cfg.Redis.IdempotencyTTL = time.Duration(atoiDefault(os.Getenv("IDEMPOTENCY_TTL_SECONDS"), 86400)) * time.Second
	}

	return cfg
}

// LoadDB reads only the database settings, for tools that need nothing else.
func LoadDB(log *zap.Logger) DB {
	return DB{
		Config: database.Config{
			Host:     getEnv("DB_HOST", log),
			Port:     getEnv("DB_PORT", log),
			User:     getEnv("DB_USER", log),
			Password: getEnv("DB_PASSWORD", log),
			Name:     getEnv("DB_NAME", log),
			SSLMode:  getEnvDefault("DB_SSLMODE", "disable"),
		},
	}
}

func getEnv(key string, log *zap.Logger) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	log.Error("required environment variable is not set", zap.String("key", key))
	panic("missing required environment variable: " + key)
}

func getEnvDefault(key, def string) string {
	if val, exists := os.LookupEnv(key); exists && val != "" {
		return val
	}
	return def
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	parts := []string{}
	for _, p := range strings.Split(s, ",") {
		pt := strings.TrimSpace(p)
		if pt != "" {
			parts = append(parts, pt)
		}
	}
	return parts
}
