package provider

// Message is one turn of a conversation sent to the backend.
type Message struct {
	Role    string
	Content string
}

// Options carries sampling parameters after defaults have been resolved.
// Adapters rename them to their backend's own field names.
type Options struct {
	Temperature float64
	MaxTokens   int
}

// ChatRequest is a fully resolved chat call.
type ChatRequest struct {
	Model    string
	Messages []Message
	Options  Options
}

// GenerateRequest is a fully resolved single-prompt call.
type GenerateRequest struct {
	Model   string
	Prompt  string
	Options Options
}

// Result is the backend's answer to a Chat or Generate call. Token counts
// are zero when the backend does not report them.
type Result struct {
	Content          string
	PromptTokens     int
	CompletionTokens int
}

// ModelInfo describes a model installed on the backend.
type ModelInfo struct {
	ID string
}

// Capabilities declares what features the backend supports.
type Capabilities struct {
	// Streaming indicates whether the adapter can deliver incremental output.
	Streaming bool

	// Generate indicates support for single-prompt completions.
	Generate bool

	// ModelListing indicates whether ListModels queries the backend.
	ModelListing bool
}
