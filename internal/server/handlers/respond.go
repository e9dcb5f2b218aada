// internal/server/handlers/respond.go

package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"regiodash/internal/domain/boundary"
	"regiodash/internal/domain/region"
	"regiodash/internal/domain/selection"
	"regiodash/internal/service/render"
)

// Error kinds reported to the UI
const (
	KindConfig              = "config"
	KindBadRequest          = "bad_request"
	KindRateLimited         = "rate_limited"
	KindBoundaryUnavailable = "boundary_unavailable"
	KindNothingToPlot       = "nothing_to_plot"
	KindUnavailable         = "unavailable"
)

// Common errors
var (
	ErrRateLimited = errors.New("too many events")
)

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// Helper for JSON responses
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Failed to marshal response"))
		return
	}

	respondWithRaw(w, code, response)
}

func respondWithRaw(w http.ResponseWriter, code int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(body)
}

// Helper for error responses
func respondWithError(w http.ResponseWriter, code int, kind, message string) {
	respondWithJSON(w, code, errorResponse{Error: message, Kind: kind})
}

// classify maps an error to its HTTP status and kind
func classify(err error) (int, string) {
	switch {
	case region.IsConfigError(err):
		return http.StatusUnprocessableEntity, KindConfig
	case errors.Is(err, selection.ErrBadPayload), errors.Is(err, selection.ErrUnknownEvent):
		return http.StatusBadRequest, KindBadRequest
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, KindRateLimited
	case errors.Is(err, boundary.ErrBoundaryUnavailable):
		return http.StatusNotFound, KindBoundaryUnavailable
	case errors.Is(err, render.ErrNothingToPlot):
		return http.StatusNotFound, KindNothingToPlot
	default:
		return http.StatusServiceUnavailable, KindUnavailable
	}
}

// respondWithFailure writes err with the status its kind maps to
func respondWithFailure(w http.ResponseWriter, logger *slog.Logger, err error) {
	code, kind := classify(err)
	if code >= 500 {
		logger.Error("request failed", "kind", kind, "error", err)
	}
	respondWithError(w, code, kind, err.Error())
}
