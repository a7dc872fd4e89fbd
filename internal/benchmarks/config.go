package benchmarks

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds benchmark engine settings.
type Config struct {
	SimilarLimit int `toml:"similar_limit"`
}

// Env maps config fields to environment variable names.
type Env struct {
	SimilarLimit string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	if c.SimilarLimit == 0 {
		c.SimilarLimit = DefaultSimilarLimit
	}
	if env != nil && env.SimilarLimit != "" {
		if v := os.Getenv(env.SimilarLimit); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", env.SimilarLimit, err)
			}
			c.SimilarLimit = n
		}
	}
	if c.SimilarLimit < 1 {
		return fmt.Errorf("similar_limit must be positive")
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.SimilarLimit != 0 {
		c.SimilarLimit = overlay.SimilarLimit
	}
}
