package transport

import (
	"context"

	"github.com/edgelab/llmgate/pkg/api"
)

// ChatCompleter handles the OpenAI-style chat completion operation.
type ChatCompleter interface {
	ChatCompletion(ctx context.Context, req *api.ChatRequest) (*api.ChatResponse, error)
}

// Completer handles the single-prompt text completion operation.
type Completer interface {
	Completion(ctx context.Context, req *api.CompletionRequest) (*api.CompletionResponse, error)
}

// ModelLister returns the models available on the backend.
type ModelLister interface {
	ListModels(ctx context.Context) (*api.ModelList, error)
}

// StatusReporter serves the liveness and service information endpoints.
// Neither call may contact the backend.
type StatusReporter interface {
	Health() *api.HealthResponse
	Info() *api.ServiceInfo
}

// Gateway is the full set of operations served over HTTP. Implementations
// return *api.APIError for every failure they can classify; any other error
// is reported as an internal error.
type Gateway interface {
	ChatCompleter
	Completer
	ModelLister
	StatusReporter
}
