// Package provider defines the interface the gateway uses to reach an LLM
// inference backend. Adapters (such as ollama) own their backend's wire
// protocol: field names, endpoints, and error bodies. The engine only sees
// the backend-neutral types declared here.
package provider
