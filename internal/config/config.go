package config

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// Config holds the oracle configuration, loaded from the environment
// (optionally seeded from a .env file).
type Config struct {
	Relay   RelayConfig   `env:",prefix=RELAY_"`
	Oracle  OracleConfig  `env:",prefix=ORACLE_"`
	Storage StorageConfig `env:",prefix=STORAGE_"`
	Metrics MetricsConfig `env:",prefix=METRICS_"`
	Log     LogConfig     `env:",prefix=LOG_"`
}

// RelayConfig holds the event-log endpoints.
type RelayConfig struct {
	URLs           []string `env:"URLS,default=wss://relay.damus.io"`
	TimeoutSeconds int      `env:"TIMEOUT_SECONDS,default=15"`
	QueryLimit     int      `env:"QUERY_LIMIT,default=500"`
}

// OracleConfig holds the drawing identity and sync behavior.
type OracleConfig struct {
	// SecretKey is the hex-encoded secp256k1 key the oracle signs
	// Result records with. Campaigns of other creators are tracked
	// read-only.
	SecretKey       string   `env:"SECRET_KEY"`
	Creators        []string `env:"CREATORS"`
	SyncSchedule    string   `env:"SYNC_SCHEDULE,default=@every 1m"`
	PendingTTLHours int      `env:"PENDING_TTL_HOURS,default=24"`
}

type StorageConfig struct {
	Path string `env:"PATH,default=raffle.db"`
}

type MetricsConfig struct {
	Addr string `env:"ADDR,default=:9090"`
}

type LogConfig struct {
	Level     string `env:"LEVEL,default=info"`
	File      string `env:"FILE"`
	ErrorFile string `env:"ERROR_FILE"`
	Console   bool   `env:"CONSOLE,default=true"`
}

// Load reads .env (when present) and the process environment.
func Load(ctx context.Context) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	return &cfg, nil
}
