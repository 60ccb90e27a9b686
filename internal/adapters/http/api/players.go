package api

import (
	"net/http"

	"github.com/TissotPA/Match/internal/app"
	"github.com/TissotPA/Match/internal/domain/roster"
	"github.com/TissotPA/Match/pkg/logger"
	"github.com/go-chi/chi/v5"
)

// playerResponse is an entry with its derived scores.
type playerResponse struct {
	roster.Entry
	Points     int `json:"points"`
	Evaluation int `json:"evaluation"`
}

func newPlayerResponse(e roster.Entry) playerResponse {
	return playerResponse{Entry: e, Points: e.Stats.TotalPoints(), Evaluation: e.Stats.Evaluation()}
}

func newPlayerList(es []roster.Entry) []playerResponse {
	out := make([]playerResponse, 0, len(es))
	for _, e := range es {
		out = append(out, newPlayerResponse(e))
	}
	return out
}

type playerListResponse struct {
	Players []playerResponse `json:"joueuses"`
	Count   int              `json:"count"`
}

type createPlayerRequest struct {
	Name   string `json:"nom"`
	Number string `json:"numero"`
}

type updatePlayerRequest struct {
	Name   *string `json:"nom"`
	Number *string `json:"numero"`
}

// PlayersHandler serves roster management routes.
type PlayersHandler struct {
	svc    Service
	logger logger.Logger
}

// NewPlayersHandler creates a players handler.
func NewPlayersHandler(svc Service, l logger.Logger) *PlayersHandler {
	return &PlayersHandler{svc: svc, logger: l}
}

// HandleList handles GET /api/v1/players?q=term.
func (h *PlayersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ps := newPlayerList(h.svc.Players(r.Context(), r.URL.Query().Get("q")))
	writeJSON(w, http.StatusOK, playerListResponse{Players: ps, Count: len(ps)})
}

// HandleCreate handles POST /api/v1/players. An empty body adds an unnamed
// player.
func (h *PlayersHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_player"
	var req createPlayerRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, op, &req); err != nil {
			writeError(r.Context(), w, h.logger, err)
			return
		}
	}
	e := h.svc.AddPlayer(r.Context(), req.Name, req.Number)
	writeJSON(w, http.StatusCreated, newPlayerResponse(e))
}

// HandleClear handles DELETE /api/v1/players.
func (h *PlayersHandler) HandleClear(w http.ResponseWriter, r *http.Request) {
	h.svc.Clear(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// HandleReset handles POST /api/v1/players/reset.
func (h *PlayersHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	h.svc.ResetAll(r.Context())
	ps := newPlayerList(h.svc.Players(r.Context(), ""))
	writeJSON(w, http.StatusOK, playerListResponse{Players: ps, Count: len(ps)})
}

// HandleGet handles GET /api/v1/players/{id}.
func (h *PlayersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_player"
	e, err := h.svc.Player(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(r.Context(), w, h.logger, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, newPlayerResponse(e))
}

// HandleUpdate handles PATCH /api/v1/players/{id}.
func (h *PlayersHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	const op = "api.update_player"
	var req updatePlayerRequest
	if err := decodeJSON(r, op, &req); err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	e, err := h.svc.UpdatePlayer(r.Context(), chi.URLParam(r, "id"), app.PlayerUpdate{Name: req.Name, Number: req.Number})
	if err != nil {
		writeError(r.Context(), w, h.logger, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, newPlayerResponse(e))
}

// HandleDelete handles DELETE /api/v1/players/{id}. Unknown ids are a no-op.
func (h *PlayersHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	h.svc.RemovePlayer(r.Context(), chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}
