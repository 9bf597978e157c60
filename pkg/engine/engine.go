package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/edgelab/llmgate/pkg/api"
	"github.com/edgelab/llmgate/pkg/debug"
	"github.com/edgelab/llmgate/pkg/observability"
	"github.com/edgelab/llmgate/pkg/provider"
	"github.com/edgelab/llmgate/pkg/transport"
)

// Engine translates between the public API and the provider backend.
// It is safe for concurrent use; its fields are never modified after New.
type Engine struct {
	provider provider.Provider
	cfg      Config
	logger   *slog.Logger
}

// Ensure Engine implements transport.Gateway at compile time.
var _ transport.Gateway = (*Engine)(nil)

// New creates a new Engine. The provider must not be nil.
func New(p provider.Provider, cfg Config) (*Engine, error) {
	if p == nil {
		return nil, fmt.Errorf("engine: provider must not be nil")
	}
	if cfg.DefaultModel == "" {
		return nil, fmt.Errorf("engine: default model must not be empty")
	}
	if cfg.DefaultMaxTokens <= 0 {
		return nil, fmt.Errorf("engine: default max tokens must be > 0, got %d", cfg.DefaultMaxTokens)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		provider: p,
		cfg:      cfg,
		logger:   logger,
	}, nil
}

// ChatCompletion validates req, calls the provider's chat operation, and
// returns an assistant message with token usage.
func (e *Engine) ChatCompletion(ctx context.Context, req *api.ChatRequest) (*api.ChatResponse, error) {
	if apiErr := api.ValidateChatRequest(req); apiErr != nil {
		observability.ValidationFailuresTotal.WithLabelValues("chat").Inc()
		return nil, apiErr
	}

	if req.Stream && !e.provider.Capabilities().Streaming {
		debug.Log("engine", "stream requested but not supported, answering in one response")
	}

	provReq := e.translateChatRequest(req)
	e.logger.Info("chat request received", "model", provReq.Model, "messages", len(provReq.Messages))
	debug.Log("engine", "resolved options",
		"temperature", provReq.Options.Temperature, "max_tokens", provReq.Options.MaxTokens)

	start := time.Now()
	res, err := e.provider.Chat(ctx, provReq)
	e.record("chat", provReq.Model, start, res, err)
	if err != nil {
		return nil, e.fail("chat", err)
	}
	if res == nil {
		return nil, api.NewInternalError(errors.New("provider returned no result"))
	}

	resp := &api.ChatResponse{
		ID:      api.NewCompletionID(),
		Model:   provReq.Model,
		Created: e.cfg.now().Unix(),
		Message: api.Message{
			// The backend's reported role is not trusted.
			Role:    api.RoleAssistant,
			Content: res.Content,
		},
		Usage: api.NewUsage(res.PromptTokens, res.CompletionTokens),
	}

	e.logger.Info("chat response generated", "id", resp.ID, "total_tokens", resp.Usage.TotalTokens)
	return resp, nil
}

// Completion validates req, calls the provider's generate operation, and
// returns the generated text with token usage.
func (e *Engine) Completion(ctx context.Context, req *api.CompletionRequest) (*api.CompletionResponse, error) {
	if apiErr := api.ValidateCompletionRequest(req); apiErr != nil {
		observability.ValidationFailuresTotal.WithLabelValues("completion").Inc()
		return nil, apiErr
	}

	provReq := e.translateCompletionRequest(req)
	e.logger.Info("completion request received", "model", provReq.Model, "prompt_length", len(provReq.Prompt))

	start := time.Now()
	res, err := e.provider.Generate(ctx, provReq)
	e.record("generate", provReq.Model, start, res, err)
	if err != nil {
		return nil, e.fail("completion", err)
	}
	if res == nil {
		return nil, api.NewInternalError(errors.New("provider returned no result"))
	}

	resp := &api.CompletionResponse{
		ID:      api.NewCompletionID(),
		Model:   provReq.Model,
		Created: e.cfg.now().Unix(),
		Text:    res.Content,
		Usage:   api.NewUsage(res.PromptTokens, res.CompletionTokens),
	}

	e.logger.Info("completion response generated", "id", resp.ID, "total_tokens", resp.Usage.TotalTokens)
	return resp, nil
}

// ListModels returns the backend's models in backend order. An empty backend
// list yields an empty data array.
func (e *Engine) ListModels(ctx context.Context) (*api.ModelList, error) {
	start := time.Now()
	models, err := e.provider.ListModels(ctx)
	observability.RecordProviderCall(e.provider.Name(), "list_models", "", time.Since(start), 0, 0, err)
	if err != nil {
		return nil, e.fail("list models", err)
	}
	return translateModels(models, e.cfg.now().Unix()), nil
}

// Health reports liveness and the configured backend. It never contacts the
// backend, so it stays healthy while the backend is down.
func (e *Engine) Health() *api.HealthResponse {
	return &api.HealthResponse{
		Status:      "healthy",
		Timestamp:   e.cfg.now().Format(time.RFC3339Nano),
		LLMEndpoint: e.cfg.BackendEndpoint,
		Model:       e.cfg.DefaultModel,
	}
}

// Info returns static service information.
func (e *Engine) Info() *api.ServiceInfo {
	return &api.ServiceInfo{
		Service: e.cfg.ServiceName,
		Version: e.cfg.Version,
		Status:  "running",
		Docs:    "/docs",
	}
}

// record reports one provider call to the metrics collectors.
func (e *Engine) record(operation, model string, start time.Time, res *provider.Result, err error) {
	var prompt, completion int
	if res != nil {
		prompt, completion = res.PromptTokens, res.CompletionTokens
	}
	observability.RecordProviderCall(e.provider.Name(), operation, model, time.Since(start), prompt, completion, err)
}

// fail logs a provider failure and classifies it. Typed API errors pass
// through unchanged; anything else becomes an internal error.
func (e *Engine) fail(operation string, err error) error {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		e.logger.Error("backend call failed", "operation", operation, "type", apiErr.Type, "error", apiErr.Message)
		return apiErr
	}
	e.logger.Error("unexpected error", "operation", operation, "error", err)
	return api.NewInternalError(err)
}
