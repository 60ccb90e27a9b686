// Package api exposes the match service over HTTP with a chi router.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/TissotPA/Match/internal/adapters/http/swagger"
	"github.com/TissotPA/Match/internal/app"
	"github.com/TissotPA/Match/internal/domain/roster"
	"github.com/TissotPA/Match/internal/domain/snapshot"
	"github.com/TissotPA/Match/internal/domain/stats"
	"github.com/TissotPA/Match/pkg/logger"
	"github.com/TissotPA/Match/pkg/metrics"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	defaultTimeout      = 30 * time.Second
	defaultMaxBodyBytes = 1 << 20
)

// Service is the match service as seen by the handlers.
type Service interface {
	StatsProvider

	Players(ctx context.Context, term string) []roster.Entry
	Player(ctx context.Context, id string) (roster.Entry, error)
	AddPlayer(ctx context.Context, name, number string) roster.Entry
	RemovePlayer(ctx context.Context, id string) bool
	UpdatePlayer(ctx context.Context, id string, u app.PlayerUpdate) (roster.Entry, error)
	UpdateStat(ctx context.Context, requestID, id string, f stats.Field, d stats.Direction) (roster.Entry, bool, error)
	ResetAll(ctx context.Context)
	Clear(ctx context.Context)
	Totals(ctx context.Context) roster.Totals

	Import(ctx context.Context, data []byte) ([]roster.Entry, error)
	Export(ctx context.Context) (snapshot.ExportDocument, string)
	NewMatch(ctx context.Context) ([]roster.Entry, error)
	CloseMatch(ctx context.Context) (snapshot.Recap, error)
	Recap(ctx context.Context) (snapshot.Summary, error)
}

// Server wires HTTP routes for the match API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	playersHandler *PlayersHandler
	eventsHandler  *EventsHandler
	matchHandler   *MatchHandler

	live         http.Handler
	corsOrigins  []string
	timeout      time.Duration
	maxBodyBytes int64
	logger       logger.Logger
}

// NewServer creates a new API server with all handlers.
func NewServer(svc Service, opts ...Option) *Server {
	s := &Server{
		corsOrigins:  []string{"*"},
		timeout:      defaultTimeout,
		maxBodyBytes: defaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("api")
	}
	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(svc)
	s.playersHandler = NewPlayersHandler(svc, s.logger)
	s.eventsHandler = NewEventsHandler(svc, s.logger)
	s.matchHandler = NewMatchHandler(svc, s.maxBodyBytes, s.logger)
	return s
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(RequestLogger(s.logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(MetricsMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.corsOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.healthHandler.HandleHealth)
	r.Get("/stats", s.statsHandler.HandleStats)
	r.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
	swagger.Register(context.Background(), r)

	r.Route("/api/v1", func(r chi.Router) {
		// Upgraded connections outlive any request timeout.
		if s.live != nil {
			r.Get("/live", s.live.ServeHTTP)
		}

		r.Group(func(r chi.Router) {
			r.Use(chimiddleware.Timeout(s.timeout))

			r.Route("/players", func(r chi.Router) {
				r.Get("/", s.playersHandler.HandleList)
				r.Post("/", s.playersHandler.HandleCreate)
				r.Delete("/", s.playersHandler.HandleClear)
				r.Post("/reset", s.playersHandler.HandleReset)

				r.Get("/{id}", s.playersHandler.HandleGet)
				r.Patch("/{id}", s.playersHandler.HandleUpdate)
				r.Delete("/{id}", s.playersHandler.HandleDelete)
				r.Post("/{id}/stats", s.eventsHandler.HandlePostStat)
			})

			r.Get("/totals", s.matchHandler.HandleTotals)
			r.Get("/export", s.matchHandler.HandleExport)
			r.Post("/import", s.matchHandler.HandleImport)
			r.Post("/match/new", s.matchHandler.HandleNewMatch)
			r.Post("/match/close", s.matchHandler.HandleCloseMatch)
			r.Get("/recap", s.matchHandler.HandleRecap)
		})
	})

	return r
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err to a status and writes the {code, message} body.
// Server-side failures are logged and their detail is not sent.
func writeError(ctx context.Context, w http.ResponseWriter, l logger.Logger, err error) {
	status, code := classify(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError && status != http.StatusBadGateway {
		l.Error(ctx, "request failed", logger.String("code", code), logger.Error(err),
			logger.String("requestId", chimiddleware.GetReqID(ctx)))
		msg = http.StatusText(status)
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// decodeJSON reads a JSON body into v. Unknown fields are ignored.
func decodeJSON(r *http.Request, op string, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return WrapKind(op, ErrBadRequest, err)
	}
	return nil
}
