package ollama

import (
	"net/http"
	"time"
)

// Config holds configuration for the Ollama provider adapter.
type Config struct {
	// BaseURL is the Ollama server URL (e.g., "http://localhost:11434").
	BaseURL string

	// GenerateTimeout bounds each chat and generate call. Defaults to 120s.
	GenerateTimeout time.Duration

	// ListTimeout bounds each model listing call. Defaults to 30s.
	ListTimeout time.Duration

	// HTTPClient overrides the client used for backend calls. Its Timeout
	// should be zero; per-call deadlines come from the timeouts above.
	HTTPClient *http.Client
}

// DefaultConfig returns a Config with the default timeouts.
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:         baseURL,
		GenerateTimeout: 120 * time.Second,
		ListTimeout:     30 * time.Second,
	}
}
