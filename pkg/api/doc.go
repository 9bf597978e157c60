// Package api defines the public protocol types for the llmgate gateway.
//
// This package provides the OpenAI-compatible request and response shapes
// served by the gateway: chat and text completion requests/responses, token
// usage, model listings, health and service information, error types,
// request validation, and response ID generation.
//
// Validation constraints are declared as struct tags and evaluated by
// go-playground/validator. All violations are reported together in a single
// invalid_request error rather than stopping at the first failure.
//
// Core types:
//   - [ChatRequest] / [ChatResponse]: Chat completions over a message sequence
//   - [CompletionRequest] / [CompletionResponse]: Single-prompt text completions
//   - [Usage]: Token accounting derived from backend counts
//   - [APIError]: Structured error with type, param, message, and cause
package api
