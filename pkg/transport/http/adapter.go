// Package http serves the gateway's OpenAI-compatible API over net/http.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/edgelab/llmgate/pkg/api"
	"github.com/edgelab/llmgate/pkg/observability"
	"github.com/edgelab/llmgate/pkg/transport"
)

// Adapter serves the gateway API over HTTP.
// It routes requests to the Gateway and serializes responses.
type Adapter struct {
	gateway transport.Gateway
	docs    *api.Documentation
	mux     *http.ServeMux
	config  Config

	// methods maps each routed path to its allowed methods, so unmatched
	// requests can be answered with 405 instead of 404.
	methods map[string][]string
}

// Config holds configuration for the HTTP adapter.
type Config struct {
	MaxBodySize int64

	// MetricsPath serves Prometheus metrics when non-empty.
	MetricsPath string

	Logger *slog.Logger
}

// DefaultConfig returns the default adapter configuration.
func DefaultConfig() Config {
	return Config{
		MaxBodySize: 10 << 20, // 10 MB
		MetricsPath: "/metrics",
		Logger:      slog.Default(),
	}
}

// NewAdapter creates an HTTP adapter for gw. docs is served at /docs and may
// be nil, in which case the route is not registered.
func NewAdapter(gw transport.Gateway, docs *api.Documentation, cfg Config) *Adapter {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.MaxBodySize <= 0 {
		cfg.MaxBodySize = DefaultConfig().MaxBodySize
	}

	a := &Adapter{
		gateway: gw,
		docs:    docs,
		mux:     http.NewServeMux(),
		config:  cfg,
		methods: make(map[string][]string),
	}

	a.handle(http.MethodGet, "/{$}", "/", a.handleInfo)
	a.handle(http.MethodGet, "/health", "/health", a.handleHealth)
	a.handle(http.MethodPost, "/v1/chat/completions", "/v1/chat/completions", a.handleChatCompletions)
	a.handle(http.MethodPost, "/v1/completions", "/v1/completions", a.handleCompletions)
	a.handle(http.MethodGet, "/v1/models", "/v1/models", a.handleListModels)
	if docs != nil {
		a.handle(http.MethodGet, "/docs", "/docs", a.handleDocs)
	}
	if cfg.MetricsPath != "" {
		a.handle(http.MethodGet, cfg.MetricsPath, cfg.MetricsPath, promhttp.Handler().ServeHTTP)
	}

	return a
}

func (a *Adapter) handle(method, pattern, path string, h http.HandlerFunc) {
	a.mux.HandleFunc(method+" "+pattern, h)
	a.methods[path] = append(a.methods[path], method)
}

// Handler returns the http.Handler for this adapter with the default
// middleware applied: request ID, access logging, metrics, and panic
// recovery, outermost first.
func (a *Adapter) Handler() http.Handler {
	mws := []transport.Middleware{
		transport.RequestID(),
		transport.Logging(a.config.Logger),
	}
	if a.config.MetricsPath != "" {
		mws = append(mws, observability.MetricsMiddleware)
	}
	// Recovery sits innermost and passes the request through unchanged, so
	// the metrics middleware observes the pattern the mux matched.
	mws = append(mws, transport.Recovery())

	return transport.Chain(mws...)(http.HandlerFunc(a.route))
}

// route dispatches to the mux, answering unmatched requests with a JSON
// 404 or 405 instead of the mux's plain-text replies.
func (a *Adapter) route(w http.ResponseWriter, r *http.Request) {
	if _, pattern := a.mux.Handler(r); pattern != "" {
		a.mux.ServeHTTP(w, r)
		return
	}

	if allowed, ok := a.methods[r.URL.Path]; ok {
		sorted := append([]string(nil), allowed...)
		sort.Strings(sorted)
		w.Header().Set("Allow", strings.Join(sorted, ", "))
		transport.WriteJSON(w, http.StatusMethodNotAllowed, api.ErrorResponse{Detail: "Method Not Allowed"})
		return
	}
	transport.WriteAPIError(w, api.NewNotFoundError("Not Found"))
}

// handleInfo handles GET /.
func (a *Adapter) handleInfo(w http.ResponseWriter, r *http.Request) {
	transport.WriteJSON(w, http.StatusOK, a.gateway.Info())
}

// handleHealth handles GET /health.
func (a *Adapter) handleHealth(w http.ResponseWriter, r *http.Request) {
	transport.WriteJSON(w, http.StatusOK, a.gateway.Health())
}

// handleChatCompletions handles POST /v1/chat/completions.
func (a *Adapter) handleChatCompletions(w http.ResponseWriter, r *http.Request) {
	var req api.ChatRequest
	if !a.decode(w, r, &req) {
		return
	}

	resp, err := a.gateway.ChatCompletion(r.Context(), &req)
	if err != nil {
		transport.WriteError(w, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, resp)
}

// handleCompletions handles POST /v1/completions.
func (a *Adapter) handleCompletions(w http.ResponseWriter, r *http.Request) {
	var req api.CompletionRequest
	if !a.decode(w, r, &req) {
		return
	}

	resp, err := a.gateway.Completion(r.Context(), &req)
	if err != nil {
		transport.WriteError(w, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, resp)
}

// handleListModels handles GET /v1/models.
func (a *Adapter) handleListModels(w http.ResponseWriter, r *http.Request) {
	list, err := a.gateway.ListModels(r.Context())
	if err != nil {
		transport.WriteError(w, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, list)
}

// handleDocs handles GET /docs.
func (a *Adapter) handleDocs(w http.ResponseWriter, r *http.Request) {
	transport.WriteJSON(w, http.StatusOK, a.docs)
}

var errTrailingData = errors.New("trailing data after JSON value")

// decode reads a size-limited JSON body into v. On failure it writes the
// error response and returns false: 413 when the body exceeds the limit,
// 422 for anything that is not a single well-formed JSON object of the right
// shape. Unknown fields are ignored.
func (a *Adapter) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, a.config.MaxBodySize)

	var maxBytesErr *http.MaxBytesError

	dec := json.NewDecoder(r.Body)
	err := dec.Decode(v)
	if err == nil {
		_, tokErr := dec.Token()
		switch {
		case tokErr == io.EOF:
			return true
		case errors.As(tokErr, &maxBytesErr):
			err = tokErr
		default:
			err = errTrailingData
		}
	}

	var (
		typeErr   *json.UnmarshalTypeError
		syntaxErr *json.SyntaxError
	)
	switch {
	case errors.As(err, &maxBytesErr):
		transport.WriteErrorResponse(w,
			api.NewInvalidRequestError("body", fmt.Sprintf("request body too large (max %d bytes)", a.config.MaxBodySize)),
			http.StatusRequestEntityTooLarge,
		)
	case errors.Is(err, errTrailingData):
		transport.WriteAPIError(w, api.NewInvalidRequestError("body", "request body must contain a single JSON object"))
	case errors.Is(err, io.EOF):
		transport.WriteAPIError(w, api.NewInvalidRequestError("body", "request body is required"))
	case errors.As(err, &typeErr):
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		transport.WriteAPIError(w, api.NewValidationError([]api.FieldError{{
			Field:   field,
			Message: fmt.Sprintf("%s must be of type %s, got %s", field, jsonTypeName(typeErr.Type.Kind().String()), typeErr.Value),
		}}))
	case errors.As(err, &syntaxErr):
		transport.WriteAPIError(w, api.NewInvalidRequestError("body",
			fmt.Sprintf("invalid JSON at offset %d: %s", syntaxErr.Offset, syntaxErr.Error())))
	default:
		transport.WriteAPIError(w, api.NewInvalidRequestError("body", "invalid JSON: "+err.Error()))
	}
	return false
}

// jsonTypeName turns a Go kind into the JSON type a client would recognise.
func jsonTypeName(kind string) string {
	switch {
	case strings.HasPrefix(kind, "int"), strings.HasPrefix(kind, "uint"):
		return "integer"
	case strings.HasPrefix(kind, "float"):
		return "number"
	case kind == "slice", kind == "array":
		return "array"
	case kind == "struct", kind == "map":
		return "object"
	case kind == "bool":
		return "boolean"
	default:
		return kind
	}
}
