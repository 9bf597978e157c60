// Command llmgate runs an OpenAI-compatible HTTP gateway in front of an
// Ollama inference server.
//
// Usage:
//
//	# Start the gateway with discovered configuration
//	llmgate serve
//
//	# Start with an explicit config file and port
//	llmgate serve --config /etc/llmgate/config.yaml --port 9000
//
//	# Print the resolved configuration
//	llmgate config
//
//	# Show version information
//	llmgate version
//
// Environment variables override the config file; see pkg/config for the
// full list.
package main

func main() {
	Execute()
}
