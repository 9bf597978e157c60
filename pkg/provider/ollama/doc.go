// Package ollama implements the Provider interface for an Ollama inference
// server. It translates the gateway's backend-neutral requests into the
// /api/chat, /api/generate, and /api/tags HTTP calls, renaming sampling
// parameters to Ollama's option names and mapping every failure to a
// backend_unavailable error.
package ollama
