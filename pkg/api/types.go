package api

// Role values accepted by convention. The gateway passes any role string
// through to the backend unchanged.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single chat message.
type Message struct {
	Role    string `json:"role" validate:"required" jsonschema:"description=Role of the message sender (user/assistant/system)"`
	Content string `json:"content" validate:"required" jsonschema:"description=Content of the message"`
}

// ChatRequest is the body of POST /v1/chat/completions.
//
// Optional numeric fields are pointers: nil means "not provided" and is
// resolved against the configured defaults, while an explicit value
// (including zero) is kept and validated as given.
type ChatRequest struct {
	Messages    []Message `json:"messages" validate:"required,min=1,dive" jsonschema:"description=List of chat messages,minItems=1"`
	Model       string    `json:"model,omitempty" jsonschema:"description=LLM model to use"`
	Temperature *float64  `json:"temperature,omitempty" validate:"omitempty,gte=0,lte=2" jsonschema:"description=Sampling temperature,minimum=0,maximum=2"`
	MaxTokens   *int      `json:"max_tokens,omitempty" validate:"omitempty,gt=0" jsonschema:"description=Maximum tokens to generate,exclusiveMinimum=0"`

	// Stream is accepted for client compatibility but not honored.
	Stream bool `json:"stream,omitempty" jsonschema:"description=Stream the response (ignored)"`
}

// ChatResponse is the body returned by POST /v1/chat/completions.
type ChatResponse struct {
	ID      string  `json:"id" jsonschema:"description=Unique response ID"`
	Model   string  `json:"model" jsonschema:"description=Model used for generation"`
	Created int64   `json:"created" jsonschema:"description=Unix timestamp"`
	Message Message `json:"message" jsonschema:"description=Generated message"`
	Usage   *Usage  `json:"usage,omitempty" jsonschema:"description=Token usage statistics"`
}

// CompletionRequest is the body of POST /v1/completions.
type CompletionRequest struct {
	Prompt      string   `json:"prompt" validate:"required" jsonschema:"description=Input prompt for completion"`
	Model       string   `json:"model,omitempty" jsonschema:"description=LLM model to use"`
	Temperature *float64 `json:"temperature,omitempty" validate:"omitempty,gte=0,lte=2" jsonschema:"description=Sampling temperature,minimum=0,maximum=2"`
	MaxTokens   *int     `json:"max_tokens,omitempty" validate:"omitempty,gt=0" jsonschema:"description=Maximum tokens to generate,exclusiveMinimum=0"`
}

// CompletionResponse is the body returned by POST /v1/completions.
type CompletionResponse struct {
	ID      string `json:"id" jsonschema:"description=Unique response ID"`
	Model   string `json:"model" jsonschema:"description=Model used for generation"`
	Created int64  `json:"created" jsonschema:"description=Unix timestamp"`
	Text    string `json:"text" jsonschema:"description=Generated text"`
	Usage   *Usage `json:"usage,omitempty" jsonschema:"description=Token usage statistics"`
}

// Usage reports token consumption for a single response.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// NewUsage builds a Usage from prompt and completion counts. TotalTokens is
// always the exact sum of the two.
func NewUsage(prompt, completion int) *Usage {
	return &Usage{
		PromptTokens:     prompt,
		CompletionTokens: completion,
		TotalTokens:      prompt + completion,
	}
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
	LLMEndpoint string `json:"llm_endpoint"`
	Model       string `json:"model"`
}

// ServiceInfo is returned by GET /.
type ServiceInfo struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Status  string `json:"status"`
	Docs    string `json:"docs"`
}

// Model is a single entry in a model listing.
type Model struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	OwnedBy string `json:"owned_by"`
}

// ModelList is returned by GET /v1/models.
type ModelList struct {
	Object string  `json:"object"`
	Data   []Model `json:"data"`
}
