package engine

import (
	"github.com/edgelab/llmgate/pkg/api"
	"github.com/edgelab/llmgate/pkg/provider"
)

// resolveModel returns the requested model, or the default when the request
// leaves it empty.
func (e *Engine) resolveModel(model string) string {
	if model == "" {
		return e.cfg.DefaultModel
	}
	return model
}

// resolveOptions fills omitted sampling fields from the defaults. Each field
// is resolved independently; an explicit value, including zero temperature,
// is kept as given.
func (e *Engine) resolveOptions(temperature *float64, maxTokens *int) provider.Options {
	opts := provider.Options{
		Temperature: e.cfg.DefaultTemperature,
		MaxTokens:   e.cfg.DefaultMaxTokens,
	}
	if temperature != nil {
		opts.Temperature = *temperature
	}
	if maxTokens != nil {
		opts.MaxTokens = *maxTokens
	}
	return opts
}

// translateChatRequest converts a validated public chat request into a
// provider request. Message order and roles are preserved.
func (e *Engine) translateChatRequest(req *api.ChatRequest) *provider.ChatRequest {
	msgs := make([]provider.Message, len(req.Messages))
	for i, m := range req.Messages {
		msgs[i] = provider.Message{Role: m.Role, Content: m.Content}
	}
	return &provider.ChatRequest{
		Model:    e.resolveModel(req.Model),
		Messages: msgs,
		Options:  e.resolveOptions(req.Temperature, req.MaxTokens),
	}
}

// translateCompletionRequest converts a validated completion request into a
// provider request.
func (e *Engine) translateCompletionRequest(req *api.CompletionRequest) *provider.GenerateRequest {
	return &provider.GenerateRequest{
		Model:   e.resolveModel(req.Model),
		Prompt:  req.Prompt,
		Options: e.resolveOptions(req.Temperature, req.MaxTokens),
	}
}

// translateModels maps backend model names to public model entries, all
// stamped with the same creation time.
func translateModels(models []provider.ModelInfo, created int64) *api.ModelList {
	data := make([]api.Model, 0, len(models))
	for _, m := range models {
		data = append(data, api.Model{
			ID:      m.ID,
			Object:  "model",
			Created: created,
			OwnedBy: "local",
		})
	}
	return &api.ModelList{Object: "list", Data: data}
}
