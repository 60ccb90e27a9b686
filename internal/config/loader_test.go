package config_test

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/TissotPA/Match/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.StoreBackend, convey.ShouldEqual, "file")
				convey.So(cfg.CORSOrigins, convey.ShouldResemble, []string{"*"})
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			t.Setenv("COURTSIDE_ADDR", ":8080")
			t.Setenv("COURTSIDE_QUEUE_SIZE", "64")
			t.Setenv("COURTSIDE_WORKER_COUNT", "3")
			t.Setenv("COURTSIDE_STORE_BACKEND", "memory")
			t.Setenv("COURTSIDE_DEFAULT_PLAYER", "false")
			t.Setenv("COURTSIDE_CORS_ORIGINS", "https://a.example, https://b.example")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.EventQueueSize, convey.ShouldEqual, 64)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 3)
				convey.So(cfg.StoreBackend, convey.ShouldEqual, "memory")
				convey.So(cfg.DefaultPlayer, convey.ShouldBeFalse)
				convey.So(cfg.CORSOrigins, convey.ShouldResemble, []string{"https://a.example", "https://b.example"})
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			tmpFile := createTempConfigFile(`
addr: ":9090"
store_backend: redis
redis_url: "redis://localhost:6379/0"
template_url: "https://example.org/feuille.json"
cors_origins:
  - "https://coach.example"
`)
			defer func() { _ = os.Remove(tmpFile) }()
			t.Setenv("COURTSIDE_CONFIG", tmpFile)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.StoreBackend, convey.ShouldEqual, "redis")
				convey.So(cfg.RedisURL, convey.ShouldEqual, "redis://localhost:6379/0")
				convey.So(cfg.TemplateURL, convey.ShouldEqual, "https://example.org/feuille.json")
				convey.So(cfg.CORSOrigins, convey.ShouldResemble, []string{"https://coach.example"})
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			tmpFile := createTempConfigFile(`
addr: ":9090"
worker_count: 24
dedupe_size: 600
`)
			defer func() { _ = os.Remove(tmpFile) }()
			t.Setenv("COURTSIDE_CONFIG", tmpFile)
			t.Setenv("COURTSIDE_WORKER_COUNT", "32")

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 32)
				convey.So(cfg.DedupeSize, convey.ShouldEqual, 600)
				convey.So(cfg.SnapshotKey, convey.ShouldEqual, "basketStats")
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()
			t.Setenv("COURTSIDE_CONFIG", tmpFile)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			t.Setenv("COURTSIDE_CONFIG", "/non/existent/file.yaml")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			t.Setenv("COURTSIDE_ADDR", "")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			t.Setenv("COURTSIDE_QUEUE_SIZE", "invalid")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When size limits and the redis ttl are set", func() {
			t.Setenv("COURTSIDE_REDIS_TTL_S", "3600")
			t.Setenv("COURTSIDE_MAX_BODY_BYTES", "2048")
			t.Setenv("COURTSIDE_TEMPLATE_MAX_BYTES", "4096")

			cfg, err := config.Load(ctx)

			convey.Convey("Then they are loaded", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.RedisTTL(), convey.ShouldEqual, time.Hour)
				convey.So(cfg.MaxBodyBytes, convey.ShouldEqual, 2048)
				convey.So(cfg.TemplateMaxBytes, convey.ShouldEqual, 4096)
			})
		})

		convey.Convey("When a size limit is zero", func() {
			t.Setenv("COURTSIDE_MAX_BODY_BYTES", "0")

			_, err := config.Load(ctx)

			convey.Convey("Then validation fails", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the postgres backend has no dsn", func() {
			t.Setenv("COURTSIDE_STORE_BACKEND", "postgres")

			_, err := config.Load(ctx)

			convey.Convey("Then validation fails", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	for _, kv := range os.Environ() {
		name, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(name, config.EnvPrefix) {
			_ = os.Unsetenv(name)
		}
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "courtside-config-*.yaml")
	if err != nil {
		panic(err)
	}

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}

	if err := tmpFile.Close(); err != nil {
		panic(err)
	}

	return tmpFile.Name()
}
