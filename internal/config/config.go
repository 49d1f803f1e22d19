// Package config loads application configuration from environment variables.
package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config holds the application configuration loaded from environment variables.
// Only the database path has no usable zero value; everything else defaults to
// something reasonable for a single-user deployment.
type Config struct {
	// DBPath is the sqlite database file path.
	DBPath string `env:"COINPANEL_DB_PATH,default=coinpanel.db"`

	// SyncInterval is how often the background sync loop runs.
	SyncInterval time.Duration `env:"COINPANEL_SYNC_INTERVAL,default=10m"`

	// ExplorerAPIKey is the Etherscan V2 API key. Optional; without it the
	// chain scanner runs in degraded mode and reports empty balances.
	ExplorerAPIKey string `env:"COINPANEL_EXPLORER_API_KEY"`

	// RetryDelay is the base delay between retries of explorer requests.
	RetryDelay time.Duration `env:"COINPANEL_RETRY_DELAY,default=1s"`

	// PriceTTL is how long fetched prices stay fresh in the resolver cache.
	PriceTTL time.Duration `env:"COINPANEL_PRICE_TTL,default=5m"`
}

// Load reads configuration from the process environment and returns a
// validated Config.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &cfg, lookuper); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	if cfg.SyncInterval <= 0 {
		return nil, fmt.Errorf("COINPANEL_SYNC_INTERVAL must be positive, got %s", cfg.SyncInterval)
	}
	if cfg.RetryDelay <= 0 {
		return nil, fmt.Errorf("COINPANEL_RETRY_DELAY must be positive, got %s", cfg.RetryDelay)
	}
	if cfg.PriceTTL <= 0 {
		return nil, fmt.Errorf("COINPANEL_PRICE_TTL must be positive, got %s", cfg.PriceTTL)
	}

	return &cfg, nil
}
