// Package transport defines the handler interfaces, the error boundary, and
// the HTTP middleware chain of the llmgate gateway.
//
// # Handler Interfaces
//
// Gateway is the contract between the HTTP adapter (pkg/transport/http) and
// the translation engine. Its operations return *api.APIError for every
// failure they can classify.
//
// # Error Boundary
//
// HTTPStatusFromError maps error types to status codes and WriteError renders
// any error as the uniform {"detail": ...} body. Errors that are not an
// *api.APIError are reported as internal errors, so nothing escapes without
// a typed response.
//
// # Middleware
//
// Middleware wraps an http.Handler. Built-in middleware provides panic
// recovery, request ID assignment (X-Request-ID), and structured access
// logging via log/slog.
package transport
