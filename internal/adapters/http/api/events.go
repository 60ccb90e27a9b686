package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/TissotPA/Match/internal/domain/stats"
	"github.com/TissotPA/Match/pkg/logger"
	"github.com/go-chi/chi/v5"
)

// RequestIDHeader carries the client's idempotency key for stat taps.
const RequestIDHeader = "X-Request-ID"

// statRequest is the body of POST /api/v1/players/{id}/stats.
type statRequest struct {
	Stat      string `json:"stat"`
	Direction string `json:"direction"`
}

func (s statRequest) validate() error {
	if strings.TrimSpace(s.Stat) == "" {
		return errors.New("missing stat")
	}
	return nil
}

type statResponse struct {
	Player    playerResponse `json:"joueuse"`
	Duplicate bool           `json:"duplicate"`
}

// EventsHandler applies stat taps.
type EventsHandler struct {
	svc    Service
	logger logger.Logger
}

// NewEventsHandler creates an events handler.
func NewEventsHandler(svc Service, l logger.Logger) *EventsHandler {
	return &EventsHandler{svc: svc, logger: l}
}

// HandlePostStat handles POST /api/v1/players/{id}/stats. A repeated
// X-Request-ID is acknowledged without applying the tap again. A missing
// direction means plus.
func (h *EventsHandler) HandlePostStat(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_stat"
	var req statRequest
	if err := decodeJSON(r, op, &req); err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(r.Context(), w, h.logger, WrapKind(op, ErrBadRequest, err))
		return
	}
	f, err := stats.ParseField(req.Stat)
	if err != nil {
		writeError(r.Context(), w, h.logger, Wrap(op, err))
		return
	}
	d := stats.Increment
	if req.Direction != "" {
		if d, err = stats.ParseDirection(req.Direction); err != nil {
			writeError(r.Context(), w, h.logger, Wrap(op, err))
			return
		}
	}

	requestID := strings.TrimSpace(r.Header.Get(RequestIDHeader))
	e, applied, err := h.svc.UpdateStat(r.Context(), requestID, chi.URLParam(r, "id"), f, d)
	if err != nil {
		writeError(r.Context(), w, h.logger, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, statResponse{Player: newPlayerResponse(e), Duplicate: !applied})
}
