// Package engine implements the translation handlers of the gateway. The
// Engine validates OpenAI-style requests, resolves omitted sampling fields
// against the configured defaults, calls the provider, and reshapes the
// provider result into the public response types. It implements
// transport.Gateway and holds no per-request state.
package engine
