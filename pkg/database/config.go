package database

import (
	"cmp"
	"fmt"
	"net"
	"net/url"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"
)

// SSLModes lists the libpq sslmode values accepted by Config.
var SSLModes = []string{"disable", "allow", "prefer", "require", "verify-ca", "verify-full"}

// Config holds PostgreSQL connection and pool parameters.
type Config struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	Name            string `toml:"name"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	SSLMode         string `toml:"ssl_mode"`
	ApplicationName string `toml:"application_name"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime string `toml:"conn_max_lifetime"`
	ConnTimeout     string `toml:"conn_timeout"`
}

// Env names the environment variables that override Config fields.
// Empty names are skipped.
type Env struct {
	Host            string
	Port            string
	Name            string
	User            string
	Password        string
	SSLMode         string
	ApplicationName string
	MaxOpenConns    string
	MaxIdleConns    string
	ConnMaxLifetime string
	ConnTimeout     string
}

// ConnMaxLifetimeDuration returns ConnMaxLifetime as a time.Duration.
func (c *Config) ConnMaxLifetimeDuration() time.Duration {
	d, _ := time.ParseDuration(c.ConnMaxLifetime)
	return d
}

// ConnTimeoutDuration returns ConnTimeout as a time.Duration.
func (c *Config) ConnTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ConnTimeout)
	return d
}

// URL returns a PostgreSQL connection URL with the given scheme.
// database/sql uses "postgres"; golang-migrate's pgx driver uses "pgx5".
// The server sees application_name, and connect_timeout carries
// ConnTimeout in whole seconds (minimum 1).
func (c *Config) URL(scheme string) string {
	params := url.Values{"sslmode": {c.SSLMode}}
	if c.ApplicationName != "" {
		params.Set("application_name", c.ApplicationName)
	}
	if d := c.ConnTimeoutDuration(); d > 0 {
		params.Set("connect_timeout", strconv.Itoa(max(1, int(d.Round(time.Second)/time.Second))))
	}

	u := url.URL{
		Scheme:   scheme,
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:     "/" + c.Name,
		RawQuery: params.Encode(),
	}
	return u.String()
}

// Finalize applies defaults, environment variable overrides, and validation.
// A non-numeric port or pool size in the environment is an error.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		if err := c.loadEnv(env); err != nil {
			return err
		}
	}
	return c.validate()
}

type stringField struct {
	dst *string
	src string
}

type intField struct {
	dst *int
	src int
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	strs := []stringField{
		{&c.Host, overlay.Host},
		{&c.Name, overlay.Name},
		{&c.User, overlay.User},
		{&c.Password, overlay.Password},
		{&c.SSLMode, overlay.SSLMode},
		{&c.ApplicationName, overlay.ApplicationName},
		{&c.ConnMaxLifetime, overlay.ConnMaxLifetime},
		{&c.ConnTimeout, overlay.ConnTimeout},
	}
	for _, f := range strs {
		*f.dst = cmp.Or(f.src, *f.dst)
	}

	ints := []intField{
		{&c.Port, overlay.Port},
		{&c.MaxOpenConns, overlay.MaxOpenConns},
		{&c.MaxIdleConns, overlay.MaxIdleConns},
	}
	for _, f := range ints {
		*f.dst = cmp.Or(f.src, *f.dst)
	}
}

func (c *Config) loadDefaults() {
	c.Host = cmp.Or(c.Host, "localhost")
	c.Port = cmp.Or(c.Port, 5432)
	c.Name = cmp.Or(c.Name, "cadence")
	c.SSLMode = cmp.Or(c.SSLMode, "disable")
	c.ApplicationName = cmp.Or(c.ApplicationName, "cadence")
	c.MaxOpenConns = cmp.Or(c.MaxOpenConns, 25)
	c.MaxIdleConns = cmp.Or(c.MaxIdleConns, 5)
	c.ConnMaxLifetime = cmp.Or(c.ConnMaxLifetime, "15m")
	c.ConnTimeout = cmp.Or(c.ConnTimeout, "5s")
}

// loadEnv reuses the field tables with src holding the variable name.
func (c *Config) loadEnv(env *Env) error {
	strs := []stringField{
		{&c.Host, env.Host},
		{&c.Name, env.Name},
		{&c.User, env.User},
		{&c.Password, env.Password},
		{&c.SSLMode, env.SSLMode},
		{&c.ApplicationName, env.ApplicationName},
		{&c.ConnMaxLifetime, env.ConnMaxLifetime},
		{&c.ConnTimeout, env.ConnTimeout},
	}
	for _, f := range strs {
		if f.src == "" {
			continue
		}
		*f.dst = cmp.Or(os.Getenv(f.src), *f.dst)
	}

	ints := []struct {
		dst  *int
		name string
	}{
		{&c.Port, env.Port},
		{&c.MaxOpenConns, env.MaxOpenConns},
		{&c.MaxIdleConns, env.MaxIdleConns},
	}
	for _, f := range ints {
		if f.name == "" {
			continue
		}
		v := strings.TrimSpace(os.Getenv(f.name))
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", f.name, err)
		}
		*f.dst = n
	}
	return nil
}

func (c *Config) validate() error {
	switch {
	case c.Name == "":
		return fmt.Errorf("name required")
	case c.User == "":
		return fmt.Errorf("user required")
	case c.Port < 1 || c.Port > 65535:
		return fmt.Errorf("port out of range: %d", c.Port)
	case !slices.Contains(SSLModes, c.SSLMode):
		return fmt.Errorf("invalid ssl_mode %q: want one of %s", c.SSLMode, strings.Join(SSLModes, ", "))
	case c.MaxOpenConns < 1:
		return fmt.Errorf("max_open_conns must be positive")
	case c.MaxIdleConns > c.MaxOpenConns:
		return fmt.Errorf("max_idle_conns cannot exceed max_open_conns")
	}

	if _, err := time.ParseDuration(c.ConnMaxLifetime); err != nil {
		return fmt.Errorf("invalid conn_max_lifetime: %w", err)
	}
	timeout, err := time.ParseDuration(c.ConnTimeout)
	if err != nil {
		return fmt.Errorf("invalid conn_timeout: %w", err)
	}
	if timeout <= 0 {
		return fmt.Errorf("conn_timeout must be positive")
	}
	return nil
}
