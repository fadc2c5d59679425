// Package config loads raffleverify settings from the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
)

// Default data sources published by the raffle operator.
const (
	DefaultWinnersURL     = "https://xmrvsbeast.com/p2pool/winners_recent_full_pub.txt"
	DefaultRoundTypesURL  = "https://xmrvsbeast.com/p2pool/select_lists/round-type-list.txt"
	DefaultPlayerListsURL = "https://xmrvsbeast.com/p2pool/select_lists"
)

// Config holds every tunable. Environment variables provide the base values;
// CLI flags override them.
type Config struct {
	WinnersURL     string `env:"RAFFLE_WINNERS_URL" envDefault:"https://xmrvsbeast.com/p2pool/winners_recent_full_pub.txt"`
	RoundTypesURL  string `env:"RAFFLE_ROUND_TYPES_URL" envDefault:"https://xmrvsbeast.com/p2pool/select_lists/round-type-list.txt"`
	PlayerListsURL string `env:"RAFFLE_PLAYER_LISTS_URL" envDefault:"https://xmrvsbeast.com/p2pool/select_lists"`
	Explorer       string `env:"RAFFLE_EXPLORER"`

	// CacheDB is the SQLite cache path. Empty means DefaultCacheDB().
	CacheDB string `env:"RAFFLE_CACHE_DB"`

	HTTPTimeout        time.Duration `env:"RAFFLE_HTTP_TIMEOUT" envDefault:"30s"`
	TimestampTolerance time.Duration `env:"RAFFLE_TIMESTAMP_TOLERANCE" envDefault:"1h"`
	ListMaxAge         time.Duration `env:"RAFFLE_LIST_MAX_AGE" envDefault:"5m"`
}

// Load reads Config from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate checks the settings a verification run depends on.
func (c Config) Validate() error {
	if c.Explorer == "" {
		return fmt.Errorf("explorer URL is required (--explorer or RAFFLE_EXPLORER)")
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http timeout must be positive, got %s", c.HTTPTimeout)
	}
	if c.TimestampTolerance < 0 {
		return fmt.Errorf("timestamp tolerance must not be negative, got %s", c.TimestampTolerance)
	}
	return nil
}

// CachePath returns CacheDB, falling back to DefaultCacheDB.
func (c Config) CachePath() (string, error) {
	if c.CacheDB != "" {
		return c.CacheDB, nil
	}
	return DefaultCacheDB()
}

// DefaultCacheDB returns <user cache dir>/raffleverify/cache.db, creating
// the directory.
func DefaultCacheDB() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("locate cache dir: %w", err)
	}
	dir = filepath.Join(dir, "raffleverify")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create cache dir: %w", err)
	}
	return filepath.Join(dir, "cache.db"), nil
}
