package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/TissotPA/Match/internal/domain/roster"
	"github.com/TissotPA/Match/internal/domain/snapshot"
	"github.com/TissotPA/Match/internal/domain/stats"
	"github.com/TissotPA/Match/pkg/logger"
)

type totalsResponse struct {
	roster.Totals
	Percentages map[string]int `json:"pourcentages"`
}

// MatchHandler serves totals, file exchange and match lifecycle routes.
type MatchHandler struct {
	svc          Service
	maxBodyBytes int64
	logger       logger.Logger
}

// NewMatchHandler creates a match handler.
func NewMatchHandler(svc Service, maxBodyBytes int64, l logger.Logger) *MatchHandler {
	return &MatchHandler{svc: svc, maxBodyBytes: maxBodyBytes, logger: l}
}

// HandleTotals handles GET /api/v1/totals.
func (h *MatchHandler) HandleTotals(w http.ResponseWriter, r *http.Request) {
	t := h.svc.Totals(r.Context())
	pct := make(map[string]int, len(stats.Categories()))
	for _, c := range stats.Categories() {
		pct[c.Name] = t.Percentage(c)
	}
	writeJSON(w, http.StatusOK, totalsResponse{Totals: t, Percentages: pct})
}

// HandleExport handles GET /api/v1/export as a file download.
func (h *MatchHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	const op = "api.export"
	doc, name := h.svc.Export(r.Context())
	data, err := snapshot.Encode(doc)
	if err != nil {
		writeError(r.Context(), w, h.logger, Wrap(op, err))
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// HandleImport handles POST /api/v1/import. The body is a snapshot, export
// or template file; nothing changes when it cannot be decoded.
func (h *MatchHandler) HandleImport(w http.ResponseWriter, r *http.Request) {
	const op = "api.import"
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err != nil {
		kind := ErrBadRequest
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			kind = ErrTooLarge
		}
		writeError(r.Context(), w, h.logger, WrapKind(op, kind, err))
		return
	}
	es, err := h.svc.Import(r.Context(), data)
	if err != nil {
		writeError(r.Context(), w, h.logger, Wrap(op, err))
		return
	}
	ps := newPlayerList(es)
	writeJSON(w, http.StatusOK, playerListResponse{Players: ps, Count: len(ps)})
}

// HandleNewMatch handles POST /api/v1/match/new.
func (h *MatchHandler) HandleNewMatch(w http.ResponseWriter, r *http.Request) {
	const op = "api.new_match"
	es, err := h.svc.NewMatch(r.Context())
	if err != nil {
		writeError(r.Context(), w, h.logger, Wrap(op, err))
		return
	}
	ps := newPlayerList(es)
	writeJSON(w, http.StatusOK, playerListResponse{Players: ps, Count: len(ps)})
}

// HandleCloseMatch handles POST /api/v1/match/close.
func (h *MatchHandler) HandleCloseMatch(w http.ResponseWriter, r *http.Request) {
	const op = "api.close_match"
	rec, err := h.svc.CloseMatch(r.Context())
	if err != nil {
		writeError(r.Context(), w, h.logger, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// HandleRecap handles GET /api/v1/recap.
func (h *MatchHandler) HandleRecap(w http.ResponseWriter, r *http.Request) {
	const op = "api.recap"
	sum, err := h.svc.Recap(r.Context())
	if err != nil {
		writeError(r.Context(), w, h.logger, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, sum)
}
