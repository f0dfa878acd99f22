package config

import (
	"testing"
	"time"

	"go.uber.org/zap"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("APP_PORT", ":8080")
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_PORT", "5432")
	t.Setenv("DB_USER", "reparo")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_NAME", "reparo")
}

func TestLoad_Defaults(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("REDIS_ENABLED", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("LEDGER_MAX_RETRIES", "")

	cfg := Load(zap.NewNop())

	if cfg.Port != ":8080" || cfg.DB.Host != "localhost" || cfg.DB.SSLMode != "disable" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.Redis.Enabled {
		t.Fatalf("redis should be disabled by default")
	}
	if cfg.Kafka.Enabled() {
		t.Fatalf("kafka should be disabled without brokers")
	}
	if cfg.Ledger.MaxRetries != 3 {
		t.Fatalf("max retries: got %d want 3", cfg.Ledger.MaxRetries)
	}
}

func TestLoad_RedisAndKafka(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("IDEMPOTENCY_TTL_SECONDS", "60")
	t.Setenv("KAFKA_BROKERS", " kafka-1:9092, ,kafka-2:9092 ")
	t.Setenv("LEDGER_MAX_RETRIES", "5")

	cfg := Load(zap.NewNop())

	if !cfg.Redis.Enabled || cfg.Redis.Addr != "localhost:6379" || cfg.Redis.DB != 2 {
		t.Fatalf("redis config: %+v", cfg.Redis)
	}
	if cfg.Redis.IdempotencyTTL != time.Minute {
		t.Fatalf("ttl: got %v", cfg.Redis.IdempotencyTTL)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[1] != "kafka-2:9092" {
		t.Fatalf("brokers: %v", cfg.Kafka.Brokers)
	}
	if cfg.Ledger.MaxRetries != 5 {
		t.Fatalf("max retries: got %d", cfg.Ledger.MaxRetries)
	}
}

func TestLoad_MissingRequiredPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for missing variable")
		}
	}()
	_ = getEnv("REPARO_SURELY_UNSET_VARIABLE", zap.NewNop())
}
