package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/TissotPA/Match/internal/adapters/store"
	"github.com/TissotPA/Match/internal/config"
	"github.com/TissotPA/Match/pkg/logger"
	"github.com/gorilla/websocket"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMainWiring(t *testing.T) {
	Convey("Given the main application", t, func() {
		_ = logger.Init()
		_ = logger.SetLevelString("error")
		ctx := context.Background()

		Convey("When configuration comes from the environment", func() {
			t.Setenv("COURTSIDE_ADDR", ":8080")
			t.Setenv("COURTSIDE_QUEUE_SIZE", "1000")
			t.Setenv("COURTSIDE_STORE_BACKEND", "memory")

			Convey("Then it loads and opens a store", func() {
				cfg, err := config.Load(ctx)
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":8080")
				So(cfg.EventQueueSize, ShouldEqual, 1000)

				st, err := store.Open(ctx, cfg)
				So(err, ShouldBeNil)
				So(st.Close(), ShouldBeNil)
			})
		})

		Convey("When the service, hub and router are wired from config", func() {
			cfg := config.New()
			cfg.StoreBackend = config.BackendMemory
			cfg.WorkerCount = 1
			cfg.CORSOrigins = []string{"https://coach.example"}
			cfg.MaxBodyBytes = 32

			svc, hub, h := wire(cfg, store.NewMemory(), logger.Get())
			So(svc.Start(ctx), ShouldBeNil)
			srv := httptest.NewServer(h)
			Reset(func() {
				hub.Close()
				srv.Close()
				_ = svc.Stop(ctx)
			})

			Convey("Then the routes answer", func() {
				for _, path := range []string{"/healthz", "/stats", "/metrics", "/api/v1/players", "/api/v1/totals"} {
					w := httptest.NewRecorder()
					h.ServeHTTP(w, httptest.NewRequest("GET", path, http.NoBody))
					So(w.Code, ShouldEqual, http.StatusOK)
				}
			})

			Convey("Then imports over max_body_bytes are refused", func() {
				body := `{"joueuses":[{"nom":"` + strings.Repeat("x", 64) + `"}]}`
				w := httptest.NewRecorder()
				h.ServeHTTP(w, httptest.NewRequest("POST", "/api/v1/import", strings.NewReader(body)))
				So(w.Code, ShouldEqual, http.StatusRequestEntityTooLarge)
			})

			Convey("Then the live feed follows the CORS allow list", func() {
				url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/live"

				conn, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"https://evil.example"}})
				if conn != nil {
					_ = conn.Close()
				}
				So(err, ShouldNotBeNil)
				So(resp, ShouldNotBeNil)
				So(resp.StatusCode, ShouldEqual, http.StatusForbidden)

				conn, _, err = websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"https://coach.example"}})
				So(err, ShouldBeNil)
				_ = conn.Close()
			})
		})
	})
}
