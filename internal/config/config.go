package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the full pricing-engine configuration, loaded from a TOML file.
type Config struct {
	Database DatabaseConfig `toml:"database"`
	Redis    RedisConfig    `toml:"redis"`
	Pricing  PricingConfig  `toml:"pricing"`
}

type DatabaseConfig struct {
	URL string `toml:"url"`
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// PricingConfig holds the engine's tunables.
type PricingConfig struct {
	// PreviewMaxProducts caps how many products a single bulk operation
	// may select, for preview and execute alike.
	PreviewMaxProducts int `toml:"preview_max_products"`
	// PromotionSweepMinutes is the interval of the promotion expiry sweep.
	PromotionSweepMinutes int `toml:"promotion_sweep_minutes"`
	// ExchangeRateTTLMinutes is how long a resolved exchange rate stays cached.
	ExchangeRateTTLMinutes int `toml:"exchange_rate_ttl_minutes"`
}

// Load reads the configuration file and fills in defaults for anything the
// file leaves out.
func Load(filename string) (*Config, error) {
	config := Default()
	if _, err := toml.DecodeFile(filename, config); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}
	return config, nil
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Pricing: PricingConfig{
			PreviewMaxProducts:     500,
			PromotionSweepMinutes:  60,
			ExchangeRateTTLMinutes: 15,
		},
	}
}

// PromotionSweepInterval returns the sweep interval as a duration.
func (c *Config) PromotionSweepInterval() time.Duration {
	return time.Duration(c.Pricing.PromotionSweepMinutes) * time.Minute
}
