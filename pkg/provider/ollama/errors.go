package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/edgelab/llmgate/pkg/api"
)

// Message prefixes reported to clients, per operation.
const (
	unavailablePrefix = "LLM service unavailable"
	listPrefix        = "Unable to fetch models"
)

// StatusError is returned when the backend answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend returned HTTP %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("backend returned HTTP %d", e.StatusCode)
}

// mapError wraps any backend failure as a backend_unavailable APIError whose
// message starts with prefix and ends with the proximate cause.
func mapError(prefix string, err error) *api.APIError {
	cause := err.Error()
	if errors.Is(err, context.DeadlineExceeded) {
		cause = "backend request timed out: " + cause
	}
	return api.NewBackendUnavailableError(prefix+": "+cause, err)
}

// extractErrorMessage reads an Ollama error body and returns its "error"
// text. Non-JSON bodies are returned trimmed, so plain-text errors from
// proxies in front of the backend are not lost.
func extractErrorMessage(body io.Reader) string {
	if body == nil {
		return ""
	}

	data, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil || len(data) == 0 {
		return ""
	}

	var errResp errorResponse
	if err := json.Unmarshal(data, &errResp); err == nil {
		return errResp.Error
	}

	return strings.TrimSpace(string(data))
}
