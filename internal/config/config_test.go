package config_test

import (
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/TissotPA/Match/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.StoreBackend, convey.ShouldEqual, config.BackendFile)
			convey.So(cfg.SnapshotKey, convey.ShouldEqual, "basketStats")
			convey.So(cfg.RecapKey, convey.ShouldEqual, "recapMatch")
			convey.So(cfg.EventQueueSize, convey.ShouldEqual, 1024)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU())
			convey.So(cfg.DedupeSize, convey.ShouldEqual, 10_000)
			convey.So(cfg.TemplateTimeout(), convey.ShouldEqual, 5*time.Second)
			convey.So(cfg.DefaultPlayer, convey.ShouldBeTrue)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs with invalid fields", t, func() {
		cases := map[string]func(*config.Config){
			"empty addr":      func(c *config.Config) { c.Addr = "" },
			"same keys":       func(c *config.Config) { c.RecapKey = c.SnapshotKey },
			"empty key":       func(c *config.Config) { c.SnapshotKey = "" },
			"bad format":      func(c *config.Config) { c.LogFormat = "xml" },
			"unknown backend": func(c *config.Config) { c.StoreBackend = "s3" },
			"file no path":    func(c *config.Config) { c.StorePath = "" },
			"redis no url":    func(c *config.Config) { c.StoreBackend = config.BackendRedis },
			"postgres no dsn": func(c *config.Config) { c.StoreBackend = config.BackendPostgres },
		}

		convey.Convey("Then each fails with ErrInvalidConfig", func() {
			for _, mutate := range cases {
				cfg := config.New()
				mutate(cfg)
				err := cfg.Validate()
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			}
		})
	})

	convey.Convey("Given the memory backend", t, func() {
		cfg := config.New()
		cfg.StoreBackend = config.BackendMemory
		cfg.StorePath = ""

		convey.Convey("Then no path is needed", func() {
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Location(t *testing.T) {
	convey.Convey("Given timezone settings", t, func() {
		cfg := config.New()

		convey.Convey("When the zone is unknown", func() {
			cfg.LocaleTimezone = "Mars/Olympus"
			convey.So(cfg.Location(), convey.ShouldEqual, time.Local)
		})

		convey.Convey("When the zone is empty", func() {
			cfg.LocaleTimezone = ""
			convey.So(cfg.Location(), convey.ShouldEqual, time.Local)
		})

		convey.Convey("When the zone is UTC", func() {
			cfg.LocaleTimezone = "UTC"
			convey.So(cfg.Location().String(), convey.ShouldEqual, "UTC")
		})
	})
}
