package engine

import (
	"log/slog"
	"time"
)

// Config holds configuration for the engine.
type Config struct {
	// DefaultModel is used when the request omits the model or sends an
	// empty string.
	DefaultModel string

	// DefaultTemperature is used when the request omits temperature.
	DefaultTemperature float64

	// DefaultMaxTokens is used when the request omits max_tokens.
	DefaultMaxTokens int

	// BackendEndpoint is reported by Health. It is informational only.
	BackendEndpoint string

	// ServiceName and Version are reported by Info.
	ServiceName string
	Version     string

	// Logger receives request logs. Nil means slog.Default().
	Logger *slog.Logger

	// Now returns the current time. Nil means time.Now.
	Now func() time.Time
}

func (c Config) now() time.Time {
	if c.Now == nil {
		return time.Now().UTC()
	}
	return c.Now().UTC()
}
