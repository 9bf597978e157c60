package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/edgelab/llmgate/pkg/debug"
	"github.com/edgelab/llmgate/pkg/provider"
	"github.com/edgelab/llmgate/pkg/telemetry"
)

const tracerName = telemetry.InstrumentationName + "/provider/ollama"

// Provider implements provider.Provider for an Ollama server.
type Provider struct {
	cfg    Config
	client *http.Client
	tracer trace.Tracer
}

// Ensure Provider implements provider.Provider at compile time.
var _ provider.Provider = (*Provider)(nil)

// New creates a new Provider with the given configuration.
// Returns an error if the configuration is invalid.
func New(cfg Config) (*Provider, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("ollama: BaseURL is required")
	}

	// Normalize: remove trailing slash from base URL.
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	if cfg.GenerateTimeout == 0 {
		cfg.GenerateTimeout = 120 * time.Second
	}
	if cfg.ListTimeout == 0 {
		cfg.ListTimeout = 30 * time.Second
	}

	client := cfg.HTTPClient
	if client == nil {
		// No client-wide timeout: each call carries its own deadline.
		client = &http.Client{}
	}

	return &Provider{
		cfg:    cfg,
		client: client,
		tracer: otel.Tracer(tracerName),
	}, nil
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return "ollama"
}

// Capabilities returns what this provider supports.
func (p *Provider) Capabilities() provider.Capabilities {
	return provider.Capabilities{
		Streaming:    false,
		Generate:     true,
		ModelListing: true,
	}
}

// Chat calls /api/chat with streaming disabled.
func (p *Provider) Chat(ctx context.Context, req *provider.ChatRequest) (*provider.Result, error) {
	ctx, span := p.startSpan(ctx, "ollama.chat", req.Model)
	defer span.End()

	body := chatRequest{
		Model:    req.Model,
		Messages: make([]chatMessage, len(req.Messages)),
		Stream:   false,
		Options:  toOptions(req.Options),
	}
	for i, m := range req.Messages {
		body.Messages[i] = chatMessage{Role: m.Role, Content: m.Content}
	}

	var resp chatResponse
	if err := p.do(ctx, http.MethodPost, "/api/chat", p.cfg.GenerateTimeout, body, &resp); err != nil {
		return nil, failSpan(span, mapError(unavailablePrefix, err))
	}

	result := &provider.Result{
		Content:          resp.Message.Content,
		PromptTokens:     resp.PromptEvalCount,
		CompletionTokens: resp.EvalCount,
	}
	recordUsage(span, result)
	return result, nil
}

// Generate calls /api/generate with streaming disabled.
func (p *Provider) Generate(ctx context.Context, req *provider.GenerateRequest) (*provider.Result, error) {
	ctx, span := p.startSpan(ctx, "ollama.generate", req.Model)
	defer span.End()

	body := generateRequest{
		Model:   req.Model,
		Prompt:  req.Prompt,
		Stream:  false,
		Options: toOptions(req.Options),
	}

	var resp generateResponse
	if err := p.do(ctx, http.MethodPost, "/api/generate", p.cfg.GenerateTimeout, body, &resp); err != nil {
		return nil, failSpan(span, mapError(unavailablePrefix, err))
	}

	result := &provider.Result{
		Content:          resp.Response,
		PromptTokens:     resp.PromptEvalCount,
		CompletionTokens: resp.EvalCount,
	}
	recordUsage(span, result)
	return result, nil
}

// ListModels calls /api/tags and returns the installed model names in
// backend order.
func (p *Provider) ListModels(ctx context.Context) ([]provider.ModelInfo, error) {
	ctx, span := p.startSpan(ctx, "ollama.list_models", "")
	defer span.End()

	var resp tagsResponse
	if err := p.do(ctx, http.MethodGet, "/api/tags", p.cfg.ListTimeout, nil, &resp); err != nil {
		return nil, failSpan(span, mapError(listPrefix, err))
	}

	models := make([]provider.ModelInfo, 0, len(resp.Models))
	for _, m := range resp.Models {
		models = append(models, provider.ModelInfo{ID: m.Name})
	}
	span.SetAttributes(attribute.Int("llm.models", len(models)))
	return models, nil
}

// Close releases idle connections held by the HTTP client.
func (p *Provider) Close() error {
	p.client.CloseIdleConnections()
	return nil
}

// do performs one JSON exchange bounded by timeout. A nil in sends no body.
func (p *Provider) do(ctx context.Context, method, path string, timeout time.Duration, in, out any) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		debug.Trace("backend", "request body", "path", path, "body", string(data))
		body = bytes.NewReader(data)
	}

	url := p.cfg.BaseURL + path
	httpReq, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if in != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Accept", "application/json")

	debug.Log("backend", "request", "method", method, "url", url, "timeout", timeout)
	start := time.Now()

	httpResp, err := p.client.Do(httpReq)
	if err != nil {
		debug.Log("backend", "request failed", "url", url, "error", err, "elapsed", time.Since(start))
		return err
	}
	defer httpResp.Body.Close()

	debug.Log("backend", "response", "url", url, "status", httpResp.StatusCode, "elapsed", time.Since(start))

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return &StatusError{
			StatusCode: httpResp.StatusCode,
			Message:    extractErrorMessage(httpResp.Body),
		}
	}

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return fmt.Errorf("reading backend response: %w", err)
	}
	if debug.TraceIsEnabled("backend") {
		debug.Trace("backend", "response body", "path", path, "body", debug.Truncate(string(data), 8192))
	}
	// Unmarshal leaves out untouched for a null document.
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return fmt.Errorf("decoding backend response: empty JSON document (null)")
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding backend response: %w", err)
	}
	return nil
}

func (p *Provider) startSpan(ctx context.Context, name, model string) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String("llm.provider", "ollama"),
		attribute.String("server.address", p.cfg.BaseURL),
	}
	if model != "" {
		attrs = append(attrs, attribute.String("llm.model", model))
	}
	return p.tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
}

func failSpan(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

func recordUsage(span trace.Span, r *provider.Result) {
	span.SetAttributes(
		attribute.Int("llm.usage.prompt_tokens", r.PromptTokens),
		attribute.Int("llm.usage.completion_tokens", r.CompletionTokens),
	)
}

func toOptions(o provider.Options) options {
	return options{
		Temperature: o.Temperature,
		NumPredict:  o.MaxTokens,
	}
}
