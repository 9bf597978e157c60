package api

import "github.com/invopop/jsonschema"

// Endpoint describes a single route in the API documentation.
type Endpoint struct {
	Method   string `json:"method"`
	Path     string `json:"path"`
	Summary  string `json:"summary"`
	Request  string `json:"request,omitempty"`
	Response string `json:"response,omitempty"`
}

// Documentation is the self-describing document served at the docs path.
type Documentation struct {
	Title     string                        `json:"title"`
	Version   string                        `json:"version"`
	Endpoints []Endpoint                    `json:"endpoints"`
	Schemas   map[string]*jsonschema.Schema `json:"schemas"`
}

// Endpoints lists the public routes of the gateway.
func Endpoints() []Endpoint {
	return []Endpoint{
		{Method: "GET", Path: "/", Summary: "Service information", Response: "ServiceInfo"},
		{Method: "GET", Path: "/health", Summary: "Gateway liveness check", Response: "HealthResponse"},
		{Method: "POST", Path: "/v1/chat/completions", Summary: "Chat completion (OpenAI compatible)", Request: "ChatRequest", Response: "ChatResponse"},
		{Method: "POST", Path: "/v1/completions", Summary: "Text completion", Request: "CompletionRequest", Response: "CompletionResponse"},
		{Method: "GET", Path: "/v1/models", Summary: "List backend models", Response: "ModelList"},
	}
}

// NewDocumentation builds the API documentation, reflecting JSON Schemas
// from the public request and response types.
func NewDocumentation(title, version string) *Documentation {
	r := &jsonschema.Reflector{
		DoNotReference: true,
	}
	schemas := map[string]*jsonschema.Schema{
		"ChatRequest":        r.Reflect(&ChatRequest{}),
		"ChatResponse":       r.Reflect(&ChatResponse{}),
		"CompletionRequest":  r.Reflect(&CompletionRequest{}),
		"CompletionResponse": r.Reflect(&CompletionResponse{}),
		"ModelList":          r.Reflect(&ModelList{}),
		"HealthResponse":     r.Reflect(&HealthResponse{}),
		"ServiceInfo":        r.Reflect(&ServiceInfo{}),
		"ErrorResponse":      r.Reflect(&ErrorResponse{}),
	}
	return &Documentation{
		Title:     title,
		Version:   version,
		Endpoints: Endpoints(),
		Schemas:   schemas,
	}
}
