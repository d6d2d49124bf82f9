package httputil

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/AdamBeresnev/volley-scorekeeper/internal/scoring"
	"github.com/AdamBeresnev/volley-scorekeeper/internal/service"
)

type errorBody struct {
	Error string `json:"error"`
}

func InternalServerError(w http.ResponseWriter, msg string, err error) {
	slog.Error(msg, "error", err)
	WriteJSON(w, http.StatusInternalServerError, errorBody{Error: "Internal Server Error"})
}

func BadRequest(w http.ResponseWriter, msg string, err error) {
	if err != nil {
		slog.Warn("bad request", "message", msg, "error", err)
	} else {
		slog.Warn("bad request", "message", msg)
	}
	WriteJSON(w, http.StatusBadRequest, errorBody{Error: msg})
}

func NotFound(w http.ResponseWriter, msg string, err error) {
	if err != nil {
		slog.Warn("not found", "message", msg, "error", err)
	} else {
		slog.Warn("not found", "message", msg)
	}
	WriteJSON(w, http.StatusNotFound, errorBody{Error: msg})
}

func Conflict(w http.ResponseWriter, msg string, err error) {
	slog.Warn("conflict", "message", msg, "error", err)
	WriteJSON(w, http.StatusConflict, errorBody{Error: msg})
}

func Forbidden(w http.ResponseWriter, msg string) {
	WriteJSON(w, http.StatusForbidden, errorBody{Error: msg})
}

func Unauthorized(w http.ResponseWriter, msg string) {
	WriteJSON(w, http.StatusUnauthorized, errorBody{Error: msg})
}

// ServiceError writes the response for an error returned by a service.
// Store failures are logged in full but answered with a generic body.
func ServiceError(w http.ResponseWriter, msg string, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		BadRequest(w, err.Error(), err)
	case errors.Is(err, service.ErrNotFound):
		NotFound(w, err.Error(), err)
	case errors.Is(err, service.ErrConflict),
		errors.Is(err, service.ErrMatchTeamsMissing),
		errors.Is(err, service.ErrIncompleteSets),
		errors.Is(err, service.ErrNotInTournament),
		errors.Is(err, service.ErrPoolMismatch),
		errors.Is(err, scoring.ErrPoolCount),
		errors.Is(err, scoring.ErrNotEnoughStandings),
		errors.Is(err, scoring.ErrSameTeamSeeded):
		Conflict(w, err.Error(), err)
	default:
		InternalServerError(w, msg, err)
	}
}
