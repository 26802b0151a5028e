package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName string `env:"SERVICE_NAME" envDefault:"chainpoll"`
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	PostgresDSN string `env:"POSTGRES_DSN"`

	// UseMemoryLedger forces the in-process ledger even when a DSN is set.
	UseMemoryLedger bool `env:"USE_MEMORY_LEDGER" envDefault:"false"`

	OutboxBatchSize     int           `env:"OUTBOX_BATCH_SIZE" envDefault:"100"`
	OutboxRelayInterval time.Duration `env:"OUTBOX_RELAY_INTERVAL" envDefault:"2s"`

	AuditConsumerGroup string `env:"AUDIT_CONSUMER_GROUP" envDefault:"poll-ledger-audit"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}
