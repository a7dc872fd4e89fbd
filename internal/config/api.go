package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/JaimeStill/cadence/pkg/middleware"
	"github.com/JaimeStill/cadence/pkg/pagination"
)

const (
	EnvAPIBasePath               = "CADENCE_API_BASE_PATH"
	EnvPaginationDefaultPageSize = "CADENCE_PAGINATION_DEFAULT_PAGE_SIZE"
	EnvPaginationMaxPageSize     = "CADENCE_PAGINATION_MAX_PAGE_SIZE"
)

// Campaign listing page sizes. pageSizeCeiling caps max_page_size.
const (
	defaultPageSize = 20
	maxPageSize     = 100
	pageSizeCeiling = 1000
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "CADENCE_CORS_ENABLED",
	Origins:          "CADENCE_CORS_ORIGINS",
	AllowedMethods:   "CADENCE_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "CADENCE_CORS_ALLOWED_HEADERS",
	AllowCredentials: "CADENCE_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "CADENCE_CORS_MAX_AGE",
}

// APIConfig holds API routing, CORS, and campaign listing page sizes.
type APIConfig struct {
	BasePath   string                `toml:"base_path"`
	CORS       middleware.CORSConfig `toml:"cors"`
	Pagination pagination.Config     `toml:"pagination"`
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config, its nested CORS config, and its page sizes.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	if err := c.loadEnv(); err != nil {
		return err
	}

	if !strings.HasPrefix(c.BasePath, "/") {
		return fmt.Errorf("base_path must start with /: %q", c.BasePath)
	}
	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := validatePageSizes(c.Pagination); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.Pagination.DefaultPageSize != 0 {
		c.Pagination.DefaultPageSize = overlay.Pagination.DefaultPageSize
	}
	if overlay.Pagination.MaxPageSize != 0 {
		c.Pagination.MaxPageSize = overlay.Pagination.MaxPageSize
	}

	c.CORS.Merge(&overlay.CORS)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.Pagination.DefaultPageSize == 0 {
		c.Pagination.DefaultPageSize = defaultPageSize
	}
	if c.Pagination.MaxPageSize == 0 {
		c.Pagination.MaxPageSize = maxPageSize
	}
}

func (c *APIConfig) loadEnv() error {
	if v := os.Getenv(EnvAPIBasePath); v != "" {
		c.BasePath = v
	}

	sizes := []struct {
		env    string
		target *int
	}{
		{EnvPaginationDefaultPageSize, &c.Pagination.DefaultPageSize},
		{EnvPaginationMaxPageSize, &c.Pagination.MaxPageSize},
	}
	for _, s := range sizes {
		v := os.Getenv(s.env)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %s: %w", s.env, err)
		}
		*s.target = n
	}
	return nil
}

func validatePageSizes(p pagination.Config) error {
	switch {
	case p.DefaultPageSize < 1:
		return fmt.Errorf("default_page_size must be positive, got %d", p.DefaultPageSize)
	case p.MaxPageSize < 1:
		return fmt.Errorf("max_page_size must be positive, got %d", p.MaxPageSize)
	case p.MaxPageSize > pageSizeCeiling:
		return fmt.Errorf("max_page_size cannot exceed %d, got %d", pageSizeCeiling, p.MaxPageSize)
	case p.DefaultPageSize > p.MaxPageSize:
		return fmt.Errorf("default_page_size %d exceeds max_page_size %d", p.DefaultPageSize, p.MaxPageSize)
	}
	return nil
}
