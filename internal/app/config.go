// Package app assembles the catalog bot: configuration, state backend, dialog engine and
// the Telegram routes built on the core runtime.
package app

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	coreconfig "github.com/m3rciful/catalogbot/core/config"
	coredatabase "github.com/m3rciful/catalogbot/core/database"
	"github.com/m3rciful/catalogbot/core/telegram/state"
)

const defaultCatalogTimeout = 10 * time.Second

// CatalogConfig points the bot at the product resource of the remote API.
type CatalogConfig struct {
	BaseURL string        `yaml:"base_url" envconfig:"CATALOG_API_URL"`
	Timeout time.Duration `yaml:"timeout" envconfig:"CATALOG_TIMEOUT"`
}

// StateConfig selects where dialog sessions live.
type StateConfig struct {
	Backend string `yaml:"backend" envconfig:"STATE_BACKEND"`
	// TTL expires idle sessions; 0 keeps them until the dialog ends.
	TTL time.Duration `yaml:"ttl" envconfig:"STATE_TTL"`
}

// RedisConfig is used when state.backend is redis.
type RedisConfig struct {
	Addr     string `yaml:"addr" envconfig:"REDIS_ADDR"`
	Password string `yaml:"password" envconfig:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" envconfig:"REDIS_DB"`
}

// OpsConfig enables the /healthz and /metrics listener when Listen is set.
type OpsConfig struct {
	Listen string `yaml:"listen" envconfig:"OPS_LISTEN"`
}

// Config is the full application configuration.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Catalog  CatalogConfig       `yaml:"catalog"`
	State    StateConfig         `yaml:"state"`
	Redis    RedisConfig         `yaml:"redis"`
	Database coredatabase.Config `yaml:"database"`
	Ops      OpsConfig           `yaml:"ops"`
}

// CoreConfig exposes the embedded core configuration.
func (c *Config) CoreConfig() *coreconfig.Config {
	if c == nil {
		return nil
	}
	return &c.Config
}

// DatabaseConfig returns the database settings, or nil when no backend needs postgres.
func (c *Config) DatabaseConfig() *coredatabase.Config {
	if c == nil || c.State.Backend != state.BackendPostgres {
		return nil
	}
	db := c.Database
	return &db
}

// Load reads the YAML file at path, overlays the environment and validates the result.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := coreconfig.LoadInto(path, &cfg); err != nil {
		return nil, err
	}
	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates cfg and fills defaults.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	if err := coreconfig.Normalize(&cfg.Config); err != nil {
		return err
	}

	cfg.Catalog.BaseURL = strings.TrimSpace(cfg.Catalog.BaseURL)
	if cfg.Catalog.BaseURL == "" {
		return fmt.Errorf("catalog.base_url is required")
	}
	u, err := url.Parse(cfg.Catalog.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("catalog.base_url %q must be an absolute http(s) URL", cfg.Catalog.BaseURL)
	}
	switch {
	case cfg.Catalog.Timeout < 0:
		return fmt.Errorf("catalog.timeout must be >= 0")
	case cfg.Catalog.Timeout == 0:
		cfg.Catalog.Timeout = defaultCatalogTimeout
	}

	backend := strings.ToLower(strings.TrimSpace(cfg.State.Backend))
	if backend == "" {
		backend = state.BackendMemory
	}
	switch backend {
	case state.BackendMemory:
	case state.BackendRedis:
		cfg.Redis.Addr = strings.TrimSpace(cfg.Redis.Addr)
		if cfg.Redis.Addr == "" {
			return fmt.Errorf("redis.addr is required when state.backend is 'redis'")
		}
	case state.BackendPostgres:
		cfg.Database = cfg.Database.WithDefaults()
		if strings.TrimSpace(cfg.Database.Name) == "" {
			return fmt.Errorf("database.name is required when state.backend is 'postgres'")
		}
	default:
		return fmt.Errorf("invalid state.backend %q; allowed: memory, redis, postgres", cfg.State.Backend)
	}
	cfg.State.Backend = backend
	if cfg.State.TTL < 0 {
		return fmt.Errorf("state.ttl must be >= 0")
	}

	cfg.Ops.Listen = strings.TrimSpace(cfg.Ops.Listen)
	return nil
}
