package campaigns

import (
	"fmt"
	"os"
	"time"

	"github.com/JaimeStill/cadence/pkg/formatting"
)

// Corpus sources.
const (
	SourceBlob     = "blob"
	SourceDatabase = "database"
)

// Config controls where the benchmark corpus comes from and how it is cached.
type Config struct {
	Source          string              `toml:"source"`
	SnapshotKey     string              `toml:"snapshot_key"`
	CacheTTL        string              `toml:"cache_ttl"`
	FetchTimeout    string              `toml:"fetch_timeout"`
	MaxSnapshotSize formatting.ByteSize `toml:"max_snapshot_size"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Source          string
	SnapshotKey     string
	CacheTTL        string
	FetchTimeout    string
	MaxSnapshotSize string
}

// CacheTTLDuration returns CacheTTL as a time.Duration.
func (c *Config) CacheTTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.CacheTTL)
	return d
}

// FetchTimeoutDuration returns FetchTimeout as a time.Duration.
func (c *Config) FetchTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.FetchTimeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		if err := c.loadEnv(env); err != nil {
			return err
		}
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Source != "" {
		c.Source = overlay.Source
	}
	if overlay.SnapshotKey != "" {
		c.SnapshotKey = overlay.SnapshotKey
	}
	if overlay.CacheTTL != "" {
		c.CacheTTL = overlay.CacheTTL
	}
	if overlay.FetchTimeout != "" {
		c.FetchTimeout = overlay.FetchTimeout
	}
	if overlay.MaxSnapshotSize != 0 {
		c.MaxSnapshotSize = overlay.MaxSnapshotSize
	}
}

func (c *Config) loadDefaults() {
	if c.Source == "" {
		c.Source = SourceBlob
	}
	if c.SnapshotKey == "" {
		c.SnapshotKey = "campaigns/latest.json"
	}
	if c.CacheTTL == "" {
		c.CacheTTL = "5m"
	}
	if c.FetchTimeout == "" {
		c.FetchTimeout = "30s"
	}
	if c.MaxSnapshotSize == 0 {
		c.MaxSnapshotSize = 64 << 20
	}
}

func (c *Config) loadEnv(env *Env) error {
	if env.Source != "" {
		if v := os.Getenv(env.Source); v != "" {
			c.Source = v
		}
	}
	if env.SnapshotKey != "" {
		if v := os.Getenv(env.SnapshotKey); v != "" {
			c.SnapshotKey = v
		}
	}
	if env.CacheTTL != "" {
		if v := os.Getenv(env.CacheTTL); v != "" {
			c.CacheTTL = v
		}
	}
	if env.FetchTimeout != "" {
		if v := os.Getenv(env.FetchTimeout); v != "" {
			c.FetchTimeout = v
		}
	}
	if env.MaxSnapshotSize != "" {
		if v := os.Getenv(env.MaxSnapshotSize); v != "" {
			n, err := formatting.ParseBytes(v)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", env.MaxSnapshotSize, err)
			}
			c.MaxSnapshotSize = formatting.ByteSize(n)
		}
	}
	return nil
}

func (c *Config) validate() error {
	if c.Source != SourceBlob && c.Source != SourceDatabase {
		return fmt.Errorf("invalid source %q: want %s or %s", c.Source, SourceBlob, SourceDatabase)
	}
	if c.SnapshotKey == "" {
		return fmt.Errorf("snapshot_key required")
	}
	if _, err := time.ParseDuration(c.CacheTTL); err != nil {
		return fmt.Errorf("invalid cache_ttl: %w", err)
	}
	if d, err := time.ParseDuration(c.FetchTimeout); err != nil || d <= 0 {
		return fmt.Errorf("invalid fetch_timeout: %q", c.FetchTimeout)
	}
	if c.MaxSnapshotSize <= 0 {
		return fmt.Errorf("max_snapshot_size must be positive")
	}
	return nil
}
