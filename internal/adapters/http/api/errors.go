package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/TissotPA/Match/internal/adapters/store"
	"github.com/TissotPA/Match/internal/adapters/template"
	"github.com/TissotPA/Match/internal/app"
	"github.com/TissotPA/Match/internal/domain/roster"
	"github.com/TissotPA/Match/internal/domain/snapshot"
	"github.com/TissotPA/Match/internal/domain/stats"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
	ErrTooLarge   = errors.New("payload too large")
)

// Error ties a failure to the handler operation that saw it.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Kind != nil && e.Err != nil:
		return e.Op + ": " + e.Kind.Error() + ": " + e.Err.Error()
	case e.Kind != nil:
		return e.Op + ": " + e.Kind.Error()
	case e.Err != nil:
		return e.Op + ": " + e.Err.Error()
	default:
		return e.Op
	}
}

func (e *Error) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// Wrap adds op to err. It returns nil for a nil err.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}

// WrapKind tags err with a sentinel kind.
func WrapKind(op string, kind, err error) error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// classify maps an error chain to an HTTP status and a stable code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, roster.ErrPlayerNotFound):
		return http.StatusNotFound, "player_not_found"
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, stats.ErrInvalidField):
		return http.StatusBadRequest, "invalid_field"
	case errors.Is(err, stats.ErrInvalidDirection):
		return http.StatusBadRequest, "invalid_direction"
	case errors.Is(err, ErrTooLarge):
		return http.StatusRequestEntityTooLarge, "payload_too_large"
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, snapshot.ErrMalformedSnapshot):
		return http.StatusUnprocessableEntity, "malformed_snapshot"
	case errors.Is(err, app.ErrNoPlayers):
		return http.StatusConflict, "no_players"
	case errors.Is(err, template.ErrTemplateUnavailable):
		return http.StatusBadGateway, "template_unavailable"
	case errors.Is(err, app.ErrNoTemplate):
		return http.StatusServiceUnavailable, "no_template"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	default:
		return http.StatusInternalServerError, "internal"
	}
}
