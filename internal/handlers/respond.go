package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dylondark/cob-zippy-ai/internal/contextutil"
	"github.com/dylondark/cob-zippy-ai/internal/service"
)

// ErrorResponse is the JSON body for failed requests.
type ErrorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// writeJSON writes v as a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error body with ok=false.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, ErrorResponse{OK: false, Error: message})
}

// writeServiceError maps service-layer errors to HTTP status codes:
// invalid input is the caller's fault, upstream means a model endpoint
// misbehaved, storage means the database or vector store is unavailable.
func writeServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	logger := contextutil.LoggerFromContext(ctx)

	switch {
	case errors.Is(err, service.ErrInvalidInput):
		logger.WarnContext(ctx, "invalid request", "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrUpstream):
		logger.ErrorContext(ctx, "upstream model error", "error", err)
		writeError(w, http.StatusBadGateway, "Model endpoint unavailable")
	case errors.Is(err, service.ErrStorage):
		logger.ErrorContext(ctx, "storage error", "error", err)
		writeError(w, http.StatusServiceUnavailable, "Storage unavailable")
	default:
		logger.ErrorContext(ctx, "internal error", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
