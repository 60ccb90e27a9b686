package live_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/TissotPA/Match/internal/adapters/http/live"
	"github.com/TissotPA/Match/internal/domain/model"
	"github.com/TissotPA/Match/pkg/logger"
	"github.com/gorilla/websocket"
	. "github.com/smartystreets/goconvey/convey"
)

func dial(srv *httptest.Server) (*websocket.Conn, error) {
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	return conn, err
}

func read(conn *websocket.Conn) (live.Message, error) {
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg live.Message
	err := conn.ReadJSON(&msg)
	return msg, err
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}

func TestHub(t *testing.T) {
	_ = logger.Init()
	_ = logger.SetLevelString("error")

	Convey("Given a hub serving the current roster", t, func() {
		current := []byte(`{"joueuses":[{"nom":"Léa"}]}`)
		hub := live.NewHub(live.WithSnapshot(func(context.Context) ([]byte, uint64, error) {
			return current, 3, nil
		}))
		srv := httptest.NewServer(hub)
		Reset(func() {
			hub.Close()
			srv.Close()
		})

		conn, err := dial(srv)
		So(err, ShouldBeNil)
		Reset(func() { _ = conn.Close() })

		Convey("When a client connects", func() {
			msg, err := read(conn)

			Convey("Then it first receives the snapshot", func() {
				So(err, ShouldBeNil)
				So(msg.Type, ShouldEqual, live.TypeSnapshot)
				So(msg.Version, ShouldEqual, 3)
				So(string(msg.Roster), ShouldEqual, string(current))
				So(waitFor(func() bool { return hub.Count() == 1 }), ShouldBeTrue)
			})
		})

		Convey("When a change is handled", func() {
			_, err := read(conn)
			So(err, ShouldBeNil)
			So(waitFor(func() bool { return hub.Count() == 1 }), ShouldBeTrue)

			err = hub.Handle(context.Background(), model.Change{
				Version:  4,
				Kind:     model.KindStatUpdated,
				PlayerID: "p1",
				Snapshot: []byte(`{"joueuses":[]}`),
				At:       time.Now(),
			})
			So(err, ShouldBeNil)
			msg, err := read(conn)

			Convey("Then the client receives it with the roster inline", func() {
				So(err, ShouldBeNil)
				So(msg.Type, ShouldEqual, live.TypeChange)
				So(msg.Version, ShouldEqual, 4)
				So(msg.Kind, ShouldEqual, model.KindStatUpdated)
				So(msg.PlayerID, ShouldEqual, "p1")
				var doc map[string]any
				So(json.Unmarshal(msg.Roster, &doc), ShouldBeNil)
				So(doc, ShouldContainKey, "joueuses")
			})
		})

		Convey("When changes arrive out of version order", func() {
			_, err := read(conn)
			So(err, ShouldBeNil)
			So(waitFor(func() bool { return hub.Count() == 1 }), ShouldBeTrue)

			for _, v := range []uint64{5, 4, 2, 3, 6} {
				_ = hub.Handle(context.Background(), model.Change{
					Version:  v,
					Kind:     model.KindStatUpdated,
					Snapshot: []byte(`{"joueuses":[]}`),
					At:       time.Now(),
				})
			}
			var versions []uint64
			for range 2 {
				msg, err := read(conn)
				if err != nil {
					break
				}
				versions = append(versions, msg.Version)
			}

			Convey("Then only newer versions reach the client", func() {
				So(versions, ShouldResemble, []uint64{5, 6})
			})
		})

		Convey("When the client disconnects", func() {
			_, _ = read(conn)
			So(waitFor(func() bool { return hub.Count() == 1 }), ShouldBeTrue)
			_ = conn.Close()

			Convey("Then it is unregistered", func() {
				So(waitFor(func() bool { return hub.Count() == 0 }), ShouldBeTrue)
			})
		})

		Convey("When the hub closes", func() {
			_, _ = read(conn)
			So(waitFor(func() bool { return hub.Count() == 1 }), ShouldBeTrue)
			hub.Close()

			Convey("Then subscribers are dropped and new ones refused", func() {
				So(hub.Count(), ShouldEqual, 0)
				_, err := read(conn)
				So(err, ShouldNotBeNil)
				c2, err := dial(srv)
				if err == nil {
					_, err = read(c2)
					_ = c2.Close()
				}
				So(err, ShouldNotBeNil)
			})
		})
	})
}
