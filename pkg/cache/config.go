package cache

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds Redis cache connection parameters.
// A disabled cache is valid and yields a no-op System.
type Config struct {
	Enabled    bool   `toml:"enabled"`
	Address    string `toml:"address"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	KeyPrefix  string `toml:"key_prefix"`
	DefaultTTL string `toml:"default_ttl"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Enabled    string
	Address    string
	Password   string
	DB         string
	KeyPrefix  string
	DefaultTTL string
}

// DefaultTTLDuration returns DefaultTTL as a time.Duration.
func (c *Config) DefaultTTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.DefaultTTL)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay. Enabled only ever turns on.
func (c *Config) Merge(overlay *Config) {
	if overlay.Enabled {
		c.Enabled = true
	}
	if overlay.Address != "" {
		c.Address = overlay.Address
	}
	if overlay.Password != "" {
		c.Password = overlay.Password
	}
	if overlay.DB != 0 {
		c.DB = overlay.DB
	}
	if overlay.KeyPrefix != "" {
		c.KeyPrefix = overlay.KeyPrefix
	}
	if overlay.DefaultTTL != "" {
		c.DefaultTTL = overlay.DefaultTTL
	}
}

func (c *Config) loadDefaults() {
	if c.Address == "" {
		c.Address = "localhost:6379"
	}
	if c.KeyPrefix == "" {
		c.KeyPrefix = "cadence:"
	}
	if c.DefaultTTL == "" {
		c.DefaultTTL = "5m"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Enabled != "" {
		if v := os.Getenv(env.Enabled); v != "" {
			if enabled, err := strconv.ParseBool(v); err == nil {
				c.Enabled = enabled
			}
		}
	}
	if env.Address != "" {
		if v := os.Getenv(env.Address); v != "" {
			c.Address = v
		}
	}
	if env.Password != "" {
		if v := os.Getenv(env.Password); v != "" {
			c.Password = v
		}
	}
	if env.DB != "" {
		if v := os.Getenv(env.DB); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.DB = n
			}
		}
	}
	if env.KeyPrefix != "" {
		if v := os.Getenv(env.KeyPrefix); v != "" {
			c.KeyPrefix = v
		}
	}
	if env.DefaultTTL != "" {
		if v := os.Getenv(env.DefaultTTL); v != "" {
			c.DefaultTTL = v
		}
	}
}

func (c *Config) validate() error {
	if c.DB < 0 {
		return fmt.Errorf("invalid db: %d", c.DB)
	}
	d, err := time.ParseDuration(c.DefaultTTL)
	if err != nil {
		return fmt.Errorf("invalid default_ttl: %w", err)
	}
	if d <= 0 {
		return fmt.Errorf("default_ttl must be positive")
	}
	if c.Enabled && c.Address == "" {
		return fmt.Errorf("address required")
	}
	return nil
}
