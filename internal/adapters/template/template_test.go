package template_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/TissotPA/Match/internal/adapters/template"
	"github.com/TissotPA/Match/internal/domain/snapshot"
	"github.com/TissotPA/Match/internal/domain/stats"
	. "github.com/smartystreets/goconvey/convey"
)

const sheet = `{"joueuses": [{"nom": "Camille", "numero": "5"}, {"nom": "Inès", "numero": 12}]}`

func TestFetcher_HTTP(t *testing.T) {
	Convey("Given a template server", t, func() {
		status := http.StatusOK
		body := sheet
		var cacheControl string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cacheControl = r.Header.Get("Cache-Control")
			w.WriteHeader(status)
			_, _ = w.Write([]byte(body))
		}))
		Reset(srv.Close)

		Convey("When the sheet is served", func() {
			doc, err := template.New(srv.URL).Fetch(context.Background())

			Convey("Then players are read with zero counters", func() {
				So(err, ShouldBeNil)
				es := doc.Entries()
				So(len(es), ShouldEqual, 2)
				So(es[0].Name, ShouldEqual, "Camille")
				So(es[1].Number, ShouldEqual, "12")
				So(es[1].Stats, ShouldResemble, stats.StatLine{})
				So(cacheControl, ShouldEqual, "no-store")
			})
		})

		Convey("When the server answers 404", func() {
			status = http.StatusNotFound
			_, err := template.New(srv.URL).Fetch(context.Background())

			Convey("Then ErrTemplateUnavailable is returned", func() {
				So(errors.Is(err, template.ErrTemplateUnavailable), ShouldBeTrue)
			})
		})

		Convey("When the body has no player list", func() {
			body = `{"equipe": "U15"}`
			_, err := template.New(srv.URL).Fetch(context.Background())

			Convey("Then ErrMalformedSnapshot is returned", func() {
				So(errors.Is(err, snapshot.ErrMalformedSnapshot), ShouldBeTrue)
				So(errors.Is(err, template.ErrTemplateUnavailable), ShouldBeFalse)
			})
		})
	})

	Convey("Given a body larger than the size cap", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(sheet))
		}))
		Reset(srv.Close)

		Convey("When the cap is one byte short", func() {
			_, err := template.New(srv.URL, template.WithMaxBytes(int64(len(sheet)-1))).Fetch(context.Background())

			Convey("Then the fetch fails as unavailable rather than malformed", func() {
				So(errors.Is(err, template.ErrTemplateUnavailable), ShouldBeTrue)
				So(errors.Is(err, snapshot.ErrMalformedSnapshot), ShouldBeFalse)
			})
		})

		Convey("When the cap equals the body size", func() {
			doc, err := template.New(srv.URL, template.WithMaxBytes(int64(len(sheet)))).Fetch(context.Background())

			Convey("Then it decodes", func() {
				So(err, ShouldBeNil)
				So(len(doc.Players), ShouldEqual, 2)
			})
		})
	})

	Convey("Given a server slower than the timeout", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-time.After(time.Second):
			case <-r.Context().Done():
			}
		}))
		Reset(srv.Close)

		Convey("Then the fetch fails as unavailable", func() {
			_, err := template.New(srv.URL, template.WithTimeout(20*time.Millisecond)).Fetch(context.Background())
			So(errors.Is(err, template.ErrTemplateUnavailable), ShouldBeTrue)
		})
	})
}

func TestFetcher_File(t *testing.T) {
	Convey("Given a template file", t, func() {
		path := filepath.Join(t.TempDir(), "feuille-de-match.json")
		So(os.WriteFile(path, []byte(sheet), 0o600), ShouldBeNil)

		Convey("When it is fetched", func() {
			doc, err := template.New(path).Fetch(context.Background())

			Convey("Then it decodes", func() {
				So(err, ShouldBeNil)
				So(len(doc.Players), ShouldEqual, 2)
			})
		})

		Convey("When the file is over the size cap", func() {
			_, err := template.New(path, template.WithMaxBytes(10)).Fetch(context.Background())

			Convey("Then ErrTemplateUnavailable is returned", func() {
				So(errors.Is(err, template.ErrTemplateUnavailable), ShouldBeTrue)
			})
		})

		Convey("When the file is missing", func() {
			_, err := template.New(path + ".missing").Fetch(context.Background())

			Convey("Then ErrTemplateUnavailable is returned", func() {
				So(errors.Is(err, template.ErrTemplateUnavailable), ShouldBeTrue)
			})
		})
	})
}
