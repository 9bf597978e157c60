package provider

import "context"

// Provider abstracts an LLM inference backend.
//
// Every call is a single request/response exchange bounded by the adapter's
// timeout and by ctx. Failures are returned as *api.APIError values of type
// backend_unavailable; a call never returns a partial result alongside an
// error.
//
// Implementations must be safe for concurrent use by multiple goroutines.
type Provider interface {
	// Name returns the provider identifier (e.g., "ollama").
	Name() string

	// Capabilities returns what this provider supports.
	Capabilities() Capabilities

	// Chat runs a multi-turn chat completion.
	Chat(ctx context.Context, req *ChatRequest) (*Result, error)

	// Generate runs a single-prompt text completion.
	Generate(ctx context.Context, req *GenerateRequest) (*Result, error)

	// ListModels returns the models installed on the backend.
	ListModels(ctx context.Context) ([]ModelInfo, error)

	// Close releases provider resources (HTTP clients, connections).
	Close() error
}
