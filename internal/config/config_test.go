package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/cadence/internal/config"
)

const baseConfig = `
shutdown_timeout = "30s"
version = "0.1.0"
log_level = "debug"

[server]
host = "0.0.0.0"
port = 8080
read_timeout = "30s"
write_timeout = "1m"

[database]
host = "localhost"
port = 5432
name = "cadence"
user = "cadence"
password = "cadence"
ssl_mode = "disable"

[storage]
container_name = "snapshots"
connection_string = "DefaultEndpointsProtocol=http;AccountName=devstoreaccount1;AccountKey=key;BlobEndpoint=http://127.0.0.1:10000/devstoreaccount1;"

[cache]
enabled = true
address = "localhost:6379"

[corpus]
source = "database"
snapshot_key = "campaigns/2024.json"
cache_ttl = "10m"
max_snapshot_size = "8MB"

[benchmarks]
similar_limit = 25

[api]
base_path = "/api"

[api.pagination]
default_page_size = 25
max_page_size = 50
`

const overlayConfig = `
[server]
port = 9090

[database]
host = "prodhost"

[corpus]
source = "blob"
`

// minimalConfig carries only the fields without defaults.
const minimalConfig = `
[database]
user = "cadence"

[storage]
connection_string = "conn"
`

func writeConfig(t *testing.T, dir, filename, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, filename), []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", filename, err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, config.BaseConfigFile, baseConfig)

	cfg, err := config.LoadDir(dir)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("server port: got %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Host != "localhost" {
		t.Errorf("db host: got %s, want localhost", cfg.Database.Host)
	}
	if cfg.Storage.ContainerName != "snapshots" {
		t.Errorf("storage container: got %s, want snapshots", cfg.Storage.ContainerName)
	}
	if !cfg.Cache.Enabled {
		t.Error("cache should be enabled")
	}
	if cfg.Corpus.Source != "database" {
		t.Errorf("corpus source: got %s, want database", cfg.Corpus.Source)
	}
	if cfg.Corpus.MaxSnapshotSize.Int64() != 8<<20 {
		t.Errorf("max_snapshot_size: got %d, want %d", cfg.Corpus.MaxSnapshotSize.Int64(), 8<<20)
	}
	if cfg.Corpus.CacheTTLDuration() != 10*time.Minute {
		t.Errorf("cache_ttl: got %s, want 10m", cfg.Corpus.CacheTTLDuration())
	}
	if cfg.Benchmarks.SimilarLimit != 25 {
		t.Errorf("similar_limit: got %d, want 25", cfg.Benchmarks.SimilarLimit)
	}
	if cfg.API.Pagination.DefaultPageSize != 25 {
		t.Errorf("pagination default_page_size: got %d, want 25", cfg.API.Pagination.DefaultPageSize)
	}
	if cfg.API.Pagination.MaxPageSize != 50 {
		t.Errorf("pagination max_page_size: got %d, want 50", cfg.API.Pagination.MaxPageSize)
	}
	if cfg.Level() != slog.LevelDebug {
		t.Errorf("log level: got %s, want DEBUG", cfg.Level())
	}
}

func TestLoadWithOverlay(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, config.BaseConfigFile, baseConfig)
	writeConfig(t, dir, "config.prod.toml", overlayConfig)
	t.Setenv(config.EnvCadenceEnv, "prod")

	cfg, err := config.LoadDir(dir)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("server port: got %d, want 9090", cfg.Server.Port)
	}
	if cfg.Database.Host != "prodhost" {
		t.Errorf("db host: got %s, want prodhost", cfg.Database.Host)
	}
	if cfg.Database.Name != "cadence" {
		t.Errorf("db name should survive overlay: got %s", cfg.Database.Name)
	}
	if cfg.Corpus.Source != "blob" {
		t.Errorf("corpus source: got %s, want blob", cfg.Corpus.Source)
	}
	if cfg.Corpus.SnapshotKey != "campaigns/2024.json" {
		t.Errorf("snapshot key should survive overlay: got %s", cfg.Corpus.SnapshotKey)
	}
}

func TestLoadMissingOverlayIgnored(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, config.BaseConfigFile, baseConfig)
	t.Setenv(config.EnvCadenceEnv, "staging")

	cfg, err := config.LoadDir(dir)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("server port: got %d, want 8080", cfg.Server.Port)
	}
}

func TestLoadEnvVarOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, config.BaseConfigFile, baseConfig)
	t.Setenv("CADENCE_SERVER_PORT", "3000")
	t.Setenv("CADENCE_DB_HOST", "envhost")
	t.Setenv("CADENCE_CORPUS_SOURCE", "blob")
	t.Setenv("CADENCE_CORPUS_MAX_SNAPSHOT_SIZE", "2MB")
	t.Setenv("CADENCE_BENCHMARKS_SIMILAR_LIMIT", "5")
	t.Setenv("CADENCE_CACHE_ENABLED", "false")
	t.Setenv(config.EnvCadenceLogLevel, "warn")

	cfg, err := config.LoadDir(dir)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Port != 3000 {
		t.Errorf("server port: got %d, want 3000", cfg.Server.Port)
	}
	if cfg.Database.Host != "envhost" {
		t.Errorf("db host: got %s, want envhost", cfg.Database.Host)
	}
	if cfg.Corpus.Source != "blob" {
		t.Errorf("corpus source: got %s, want blob", cfg.Corpus.Source)
	}
	if cfg.Corpus.MaxSnapshotSize.Int64() != 2<<20 {
		t.Errorf("max_snapshot_size: got %d", cfg.Corpus.MaxSnapshotSize.Int64())
	}
	if cfg.Benchmarks.SimilarLimit != 5 {
		t.Errorf("similar_limit: got %d, want 5", cfg.Benchmarks.SimilarLimit)
	}
	if cfg.Cache.Enabled {
		t.Error("cache should be disabled by env")
	}
	if cfg.Level() != slog.LevelWarn {
		t.Errorf("log level: got %s, want WARN", cfg.Level())
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, config.BaseConfigFile, minimalConfig)
	writeConfig(t, dir, config.DotEnvFile, "CADENCE_CORPUS_SNAPSHOT_KEY=campaigns/dotenv.json\n")
	t.Cleanup(func() { os.Unsetenv("CADENCE_CORPUS_SNAPSHOT_KEY") })

	cfg, err := config.LoadDir(dir)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Corpus.SnapshotKey != "campaigns/dotenv.json" {
		t.Errorf("snapshot key: got %s, want campaigns/dotenv.json", cfg.Corpus.SnapshotKey)
	}
}

func TestLoadNoConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CADENCE_DB_USER", "cadence")
	t.Setenv("CADENCE_STORAGE_SERVICE_URL", "https://account.blob.core.windows.net/")

	cfg, err := config.LoadDir(dir)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("default port: got %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Name != "cadence" {
		t.Errorf("default db name: got %s, want cadence", cfg.Database.Name)
	}
	if cfg.Corpus.Source != "blob" {
		t.Errorf("default corpus source: got %s, want blob", cfg.Corpus.Source)
	}
	if cfg.Corpus.SnapshotKey != "campaigns/latest.json" {
		t.Errorf("default snapshot key: got %s", cfg.Corpus.SnapshotKey)
	}
	if cfg.Benchmarks.SimilarLimit != 20 {
		t.Errorf("default similar limit: got %d, want 20", cfg.Benchmarks.SimilarLimit)
	}
	if cfg.Cache.Enabled {
		t.Error("cache should default to disabled")
	}
	if cfg.Level() != slog.LevelInfo {
		t.Errorf("default log level: got %s", cfg.Level())
	}
}

func TestLoadInvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errText string
	}{
		{"malformed toml", "[server\nport = 1", "parse config"},
		{"missing db user", "[storage]\nconnection_string = \"conn\"\n", "database"},
		{"missing storage credentials", "[database]\nuser = \"cadence\"\n", "storage"},
		{"both storage credentials", minimalConfig + "service_url = \"https://x\"\n", "mutually exclusive"},
		{"bad corpus source", minimalConfig + "[corpus]\nsource = \"ftp\"\n", "corpus"},
		{"negative similar limit", minimalConfig + "[benchmarks]\nsimilar_limit = -2\n", "benchmarks"},
		{"bad log level", "log_level = \"loud\"\n" + minimalConfig, "log_level"},
		{"relative base path", minimalConfig + "[api]\nbase_path = \"api\"\n", "base_path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, config.BaseConfigFile, tt.content)

			_, err := config.LoadDir(dir)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.errText) {
				t.Errorf("error %q should mention %q", err, tt.errText)
			}
		})
	}
}

func TestEnvDefault(t *testing.T) {
	t.Setenv(config.EnvCadenceEnv, "")

	cfg := &config.Config{}
	if got := cfg.Env(); got != "local" {
		t.Errorf("env: got %s, want local", got)
	}

	t.Setenv(config.EnvCadenceEnv, "production")
	if got := cfg.Env(); got != "production" {
		t.Errorf("env: got %s, want production", got)
	}
}

func TestShutdownTimeoutDuration(t *testing.T) {
	cfg := &config.Config{ShutdownTimeout: "45s"}
	if got := cfg.ShutdownTimeoutDuration(); got != 45*time.Second {
		t.Errorf("shutdown timeout: got %s, want 45s", got)
	}
}

func TestServerAddr(t *testing.T) {
	tests := []struct {
		host string
		port int
		want string
	}{
		{"0.0.0.0", 8080, "0.0.0.0:8080"},
		{"localhost", 3000, "localhost:3000"},
		{"::1", 9090, "[::1]:9090"},
	}

	for _, tt := range tests {
		cfg := config.ServerConfig{Host: tt.host, Port: tt.port}
		if got := cfg.Addr(); got != tt.want {
			t.Errorf("Addr(%s, %d) = %s, want %s", tt.host, tt.port, got, tt.want)
		}
	}
}

func TestServerValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.ServerConfig
	}{
		{"port too high", config.ServerConfig{Port: 70000}},
		{"bad read timeout", config.ServerConfig{Port: 8080, ReadTimeout: "soon"}},
		{"bad idle timeout", config.ServerConfig{Port: 8080, IdleTimeout: "10 minutes"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Finalize(); err == nil {
				t.Error("expected validation error")
			}
		})
	}

	t.Setenv(config.EnvServerPort, "eighty")
	cfg := config.ServerConfig{}
	if err := cfg.Finalize(); err == nil {
		t.Error("non-numeric port env should fail")
	}
}

func TestPaginationEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, config.BaseConfigFile, minimalConfig)
	t.Setenv("CADENCE_PAGINATION_DEFAULT_PAGE_SIZE", "10")
	t.Setenv("CADENCE_PAGINATION_MAX_PAGE_SIZE", "200")

	cfg, err := config.LoadDir(dir)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.API.Pagination.DefaultPageSize != 10 {
		t.Errorf("default_page_size: got %d, want 10", cfg.API.Pagination.DefaultPageSize)
	}
	if cfg.API.Pagination.MaxPageSize != 200 {
		t.Errorf("max_page_size: got %d, want 200", cfg.API.Pagination.MaxPageSize)
	}
}

func TestPaginationValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"non-numeric default", map[string]string{config.EnvPaginationDefaultPageSize: "ten"}},
		{"negative max", map[string]string{config.EnvPaginationMaxPageSize: "-1"}},
		{"max above ceiling", map[string]string{config.EnvPaginationMaxPageSize: "5000"}},
		{"default above max", map[string]string{
			config.EnvPaginationDefaultPageSize: "60",
			config.EnvPaginationMaxPageSize:     "50",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, config.BaseConfigFile, minimalConfig)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := config.LoadDir(dir)
			if err == nil {
				t.Fatal("expected pagination error")
			}
			if !strings.Contains(err.Error(), "pagination") {
				t.Errorf("error should name pagination: %v", err)
			}
		})
	}
}

func TestPaginationDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, config.BaseConfigFile, minimalConfig)

	cfg, err := config.LoadDir(dir)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.API.Pagination.DefaultPageSize != 20 || cfg.API.Pagination.MaxPageSize != 100 {
		t.Errorf("page sizes: got %d/%d, want 20/100",
			cfg.API.Pagination.DefaultPageSize, cfg.API.Pagination.MaxPageSize)
	}
}
