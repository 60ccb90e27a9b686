// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - Load layers a YAML file and environment variables on top of New().
// - External errors are wrapped with this package's sentinel kinds.
package config

import (
	"fmt"
	"runtime"
	"strings"
	"time"
)

// Store backends.
const (
	BackendFile     = "file"
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// StoreBackend selects where snapshots live: file, memory, redis or postgres.
	StoreBackend string `koanf:"store_backend"`

	// StorePath is the directory used by the file backend.
	StorePath string `koanf:"store_path"`

	// RedisURL is a redis:// URL for the redis backend.
	RedisURL string `koanf:"redis_url"`

	// RedisTTLSeconds expires redis keys; 0 keeps them forever.
	RedisTTLSeconds int `koanf:"redis_ttl_s"`

	// PostgresDSN is the connection string for the postgres backend.
	PostgresDSN string `koanf:"postgres_dsn"`

	// SnapshotKey names the persisted roster snapshot.
	SnapshotKey string `koanf:"snapshot_key"`

	// RecapKey names the blob written when a match is closed.
	RecapKey string `koanf:"recap_key"`

	// TemplateURL is the new-match template source: http(s) URL or file path.
	TemplateURL string `koanf:"template_url"`

	// TemplateTimeoutMS bounds a template fetch.
	TemplateTimeoutMS int `koanf:"template_timeout_ms"`

	// TemplateMaxBytes rejects larger template bodies.
	TemplateMaxBytes int64 `koanf:"template_max_bytes"`

	// MaxBodyBytes rejects larger import payloads with 413.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`

	// EventQueueSize bounds the in-memory change queue.
	EventQueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of change workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets how many stat request ids are remembered.
	DedupeSize int `koanf:"dedupe_size"`

	// CORSOrigins lists origins allowed to call the API from a browser.
	CORSOrigins []string `koanf:"cors_origins"`

	// DefaultPlayer adds one empty player when the restored roster is empty.
	DefaultPlayer bool `koanf:"default_player"`

	// LocaleTimezone is the IANA zone used to render recap dates.
	LocaleTimezone string `koanf:"locale_timezone"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":9080",
		StoreBackend:      BackendFile,
		StorePath:         "data",
		SnapshotKey:       "basketStats",
		RecapKey:          "recapMatch",
		TemplateURL:       "feuille-de-match.json",
		TemplateTimeoutMS: 5000,
		TemplateMaxBytes:  1 << 20,
		MaxBodyBytes:      1 << 20,
		EventQueueSize:    1024,
		WorkerCount:       runtime.NumCPU(),
		DedupeSize:        10_000,
		CORSOrigins:       []string{"*"},
		DefaultPlayer:     true,
		LocaleTimezone:    "Europe/Paris",
	}
}

// TemplateTimeout returns TemplateTimeoutMS as a duration.
func (c *Config) TemplateTimeout() time.Duration {
	return time.Duration(c.TemplateTimeoutMS) * time.Millisecond
}

// RedisTTL returns RedisTTLSeconds as a duration.
func (c *Config) RedisTTL() time.Duration {
	return time.Duration(c.RedisTTLSeconds) * time.Second
}

// Location resolves LocaleTimezone, falling back to the local zone.
func (c *Config) Location() *time.Location {
	if c.LocaleTimezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.LocaleTimezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Validate checks the fields a running service depends on.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.SnapshotKey == "" || c.RecapKey == "" {
		return fmt.Errorf("%w: snapshot_key and recap_key must not be empty", ErrInvalidConfig)
	}
	if c.SnapshotKey == c.RecapKey {
		return fmt.Errorf("%w: snapshot_key and recap_key must differ", ErrInvalidConfig)
	}
	if c.RedisTTLSeconds < 0 {
		return fmt.Errorf("%w: redis_ttl_s must not be negative", ErrInvalidConfig)
	}
	if c.MaxBodyBytes <= 0 || c.TemplateMaxBytes <= 0 {
		return fmt.Errorf("%w: max_body_bytes and template_max_bytes must be positive", ErrInvalidConfig)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log_format %q", ErrInvalidConfig, c.LogFormat)
	}
	switch c.StoreBackend {
	case BackendMemory:
	case BackendFile:
		if c.StorePath == "" {
			return fmt.Errorf("%w: store_path is required for the file backend", ErrInvalidConfig)
		}
	case BackendRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("%w: redis_url is required for the redis backend", ErrInvalidConfig)
		}
	case BackendPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("%w: postgres_dsn is required for the postgres backend", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown store_backend %q (want %s)", ErrInvalidConfig, c.StoreBackend,
			strings.Join([]string{BackendFile, BackendMemory, BackendRedis, BackendPostgres}, ", "))
	}
	return nil
}
