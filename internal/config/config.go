// Package config loads the service configuration from TOML files, a .env
// file, and CADENCE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/cadence/internal/benchmarks"
	"github.com/JaimeStill/cadence/internal/campaigns"
	"github.com/JaimeStill/cadence/pkg/cache"
	"github.com/JaimeStill/cadence/pkg/database"
	"github.com/JaimeStill/cadence/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"
	DotEnvFile           = ".env"

	EnvCadenceEnv             = "CADENCE_ENV"
	EnvCadenceShutdownTimeout = "CADENCE_SHUTDOWN_TIMEOUT"
	EnvCadenceVersion         = "CADENCE_VERSION"
	EnvCadenceLogLevel        = "CADENCE_LOG_LEVEL"
)

// DatabaseEnv names the CADENCE_DB_* variables read by the database config.
var DatabaseEnv = &database.Env{
	Host:            "CADENCE_DB_HOST",
	Port:            "CADENCE_DB_PORT",
	Name:            "CADENCE_DB_NAME",
	User:            "CADENCE_DB_USER",
	Password:        "CADENCE_DB_PASSWORD",
	SSLMode:         "CADENCE_DB_SSL_MODE",
	ApplicationName: "CADENCE_DB_APPLICATION_NAME",
	MaxOpenConns:    "CADENCE_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "CADENCE_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "CADENCE_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "CADENCE_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	ContainerName:    "CADENCE_STORAGE_CONTAINER_NAME",
	ConnectionString: "CADENCE_STORAGE_CONNECTION_STRING",
	ServiceURL:       "CADENCE_STORAGE_SERVICE_URL",
}

var cacheEnv = &cache.Env{
	Enabled:    "CADENCE_CACHE_ENABLED",
	Address:    "CADENCE_CACHE_ADDRESS",
	Password:   "CADENCE_CACHE_PASSWORD",
	DB:         "CADENCE_CACHE_DB",
	KeyPrefix:  "CADENCE_CACHE_KEY_PREFIX",
	DefaultTTL: "CADENCE_CACHE_DEFAULT_TTL",
}

var corpusEnv = &campaigns.Env{
	Source:          "CADENCE_CORPUS_SOURCE",
	SnapshotKey:     "CADENCE_CORPUS_SNAPSHOT_KEY",
	CacheTTL:        "CADENCE_CORPUS_CACHE_TTL",
	FetchTimeout:    "CADENCE_CORPUS_FETCH_TIMEOUT",
	MaxSnapshotSize: "CADENCE_CORPUS_MAX_SNAPSHOT_SIZE",
}

var benchmarksEnv = &benchmarks.Env{
	SimilarLimit: "CADENCE_BENCHMARKS_SIMILAR_LIMIT",
}

// Config is the root configuration for the Cadence service.
type Config struct {
	Server          ServerConfig      `toml:"server"`
	Database        database.Config   `toml:"database"`
	Storage         storage.Config    `toml:"storage"`
	Cache           cache.Config      `toml:"cache"`
	Corpus          campaigns.Config  `toml:"corpus"`
	Benchmarks      benchmarks.Config `toml:"benchmarks"`
	API             APIConfig         `toml:"api"`
	ShutdownTimeout string            `toml:"shutdown_timeout"`
	Version         string            `toml:"version"`
	LogLevel        string            `toml:"log_level"`
}

// Env returns the CADENCE_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvCadenceEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Level returns LogLevel as a slog.Level.
func (c *Config) Level() slog.Level {
	var level slog.Level
	level.UnmarshalText([]byte(c.LogLevel))
	return level
}

// Load reads configuration from the working directory. See LoadDir.
func Load() (*Config, error) {
	return LoadDir(".")
}

// LoadDir loads dir/.env into the process environment (existing variables
// win), reads dir/config.toml if present, merges the config.<CADENCE_ENV>.toml
// overlay, and finalizes all values. Without any files, defaults and
// environment variables provide all configuration.
func LoadDir(dir string) (*Config, error) {
	if err := godotenv.Load(filepath.Join(dir, DotEnvFile)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", DotEnvFile, err)
	}

	cfg := &Config{}

	base := filepath.Join(dir, BaseConfigFile)
	if _, err := os.Stat(base); err == nil {
		loaded, err := load(base)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(dir); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	if overlay.LogLevel != "" {
		c.LogLevel = overlay.LogLevel
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.Cache.Merge(&overlay.Cache)
	c.Corpus.Merge(&overlay.Corpus)
	c.Benchmarks.Merge(&overlay.Benchmarks)
	c.API.Merge(&overlay.API)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(DatabaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.Cache.Finalize(cacheEnv); err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	if err := c.Corpus.Finalize(corpusEnv); err != nil {
		return fmt.Errorf("corpus: %w", err)
	}
	if err := c.Benchmarks.Finalize(benchmarksEnv); err != nil {
		return fmt.Errorf("benchmarks: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvCadenceShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvCadenceVersion); v != "" {
		c.Version = v
	}
	if v := os.Getenv(EnvCadenceLogLevel); v != "" {
		c.LogLevel = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return fmt.Errorf("invalid log_level: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath(dir string) string {
	if env := os.Getenv(EnvCadenceEnv); env != "" {
		path := filepath.Join(dir, fmt.Sprintf(OverlayConfigPattern, env))
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
