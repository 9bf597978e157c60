package transport

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/edgelab/llmgate/pkg/api"
)

// HTTPStatusFromError maps an APIError type to the corresponding HTTP status
// code. Transport-level errors (body too large, malformed JSON) are handled
// by the HTTP adapter.
func HTTPStatusFromError(err *api.APIError) int {
	switch err.Type {
	case api.ErrorTypeInvalidRequest:
		return http.StatusUnprocessableEntity
	case api.ErrorTypeNotFound:
		return http.StatusNotFound
	case api.ErrorTypeBackendUnavailable:
		return http.StatusServiceUnavailable
	case api.ErrorTypeServerError:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// WriteErrorResponse writes the uniform JSON error body for apiErr with the
// given status code.
func WriteErrorResponse(w http.ResponseWriter, apiErr *api.APIError, statusCode int) {
	WriteJSON(w, statusCode, api.NewErrorResponse(apiErr))
}

// WriteAPIError writes an APIError response, deriving the HTTP status code
// from the error type.
func WriteAPIError(w http.ResponseWriter, apiErr *api.APIError) {
	WriteErrorResponse(w, apiErr, HTTPStatusFromError(apiErr))
}

// WriteError writes any error. An *api.APIError anywhere in the chain keeps
// its type; any other error becomes a 500 with the fixed internal detail.
func WriteError(w http.ResponseWriter, err error) {
	var apiErr *api.APIError
	if !errors.As(err, &apiErr) {
		apiErr = api.NewInternalError(err)
	}
	WriteAPIError(w, apiErr)
}

// WriteJSON encodes v as the response body with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers are gone; the client most likely disconnected.
		slog.Debug("writing response body failed", "error", err)
	}
}
