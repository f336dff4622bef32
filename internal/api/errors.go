package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/blagoySimandov/bidcompare/go/internal/dispatch"
	"github.com/blagoySimandov/bidcompare/go/internal/logging"
	"github.com/blagoySimandov/bidcompare/go/internal/registrar"
	"github.com/blagoySimandov/bidcompare/go/internal/scoring"
	"github.com/blagoySimandov/bidcompare/go/internal/state"
	"github.com/rs/zerolog/log"
)

var errForbidden = errors.New("forbidden")

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError maps a domain error to a status code. Only validation errors
// carry their message to the client; everything else gets a fixed text.
func writeError(w http.ResponseWriter, r *http.Request, stage string, err error) {
	logging.EnrichError(r.Context(), err, stage)

	switch {
	case errors.Is(err, state.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	case errors.Is(err, errForbidden),
		errors.Is(err, registrar.ErrForbidden),
		errors.Is(err, dispatch.ErrForbidden),
		errors.Is(err, scoring.ErrForbidden):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "forbidden"})
	case errors.Is(err, registrar.ErrValidation), errors.Is(err, dispatch.ErrValidation):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, dispatch.ErrDispatchFailed):
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: "extraction service unavailable"})
	default:
		log.Error().Err(err).Str("stage", stage).Msg("Request failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: internalServerError})
	}
}

func badRequest(w http.ResponseWriter, r *http.Request, message string) {
	logging.EnrichError(r.Context(), errors.New(message), "decode")
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: message})
}
