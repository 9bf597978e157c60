// Package config provides unified configuration for the llmgate gateway.
//
// Configuration is loaded with a layered approach:
//  1. Built-in defaults
//  2. YAML config file (discovered or explicitly specified)
//  3. Environment variable overrides (malformed values fail the load)
//  4. Validation
//
// A loaded Config is never mutated afterwards and may be shared freely
// between goroutines.
package config

import "time"

// Config holds all configuration for the llmgate gateway.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Backend       BackendConfig       `yaml:"backend"`
	Defaults      DefaultsConfig      `yaml:"defaults"`
	Logging       LoggingConfig       `yaml:"logging"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port" env:"LLMGATE_PORT"`                   // default: 8000
	ReadTimeout     time.Duration `yaml:"read_timeout"`                              // default: 30s
	WriteTimeout    time.Duration `yaml:"write_timeout"`                             // default: 150s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`                          // default: 10s
	MaxBodySize     int64         `yaml:"max_body_size" env:"LLMGATE_MAX_BODY_SIZE"` // default: 10 MiB
}

// BackendConfig holds settings for the inference backend.
type BackendConfig struct {
	Endpoint        string        `yaml:"endpoint" env:"LLM_API_ENDPOINT"`                 // default: http://localhost:11434
	GenerateTimeout time.Duration `yaml:"generate_timeout" env:"LLMGATE_GENERATE_TIMEOUT"` // default: 120s
	ListTimeout     time.Duration `yaml:"list_timeout" env:"LLMGATE_LIST_TIMEOUT"`         // default: 30s
}

// DefaultsConfig holds the sampling defaults applied when a request omits
// the corresponding field.
type DefaultsConfig struct {
	Model       string  `yaml:"model" env:"LLM_MODEL"`         // default: llama2
	MaxTokens   int     `yaml:"max_tokens" env:"MAX_TOKENS"`   // default: 2048
	Temperature float64 `yaml:"temperature" env:"TEMPERATURE"` // default: 0.7
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level" env:"LLMGATE_LOG_LEVEL"`   // default: INFO
	Format string `yaml:"format" env:"LLMGATE_LOG_FORMAT"` // "text" or "json", default: text
	File   string `yaml:"file" env:"LLMGATE_LOG_FILE"`     // empty means stderr
	Debug  string `yaml:"debug" env:"LLMGATE_DEBUG"`       // comma-separated debug categories
}

// ObservabilityConfig holds monitoring and instrumentation settings.
type ObservabilityConfig struct {
	Metrics MetricsConfig `yaml:"metrics"`
	Tracing TracingConfig `yaml:"tracing"`
}

// MetricsConfig holds Prometheus metrics endpoint settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"` // default: true
	Path    string `yaml:"path"`    // default: "/metrics"
}

// TracingConfig holds OpenTelemetry tracing settings.
type TracingConfig struct {
	Enabled bool   `yaml:"enabled" env:"LLMGATE_TRACING"`
	File    string `yaml:"file" env:"LLMGATE_TRACING_FILE"` // empty means stdout
}

// Defaults returns a Config with all default values filled in.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:            8000,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    150 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxBodySize:     10 << 20,
		},
		Backend: BackendConfig{
			Endpoint:        "http://localhost:11434",
			GenerateTimeout: 120 * time.Second,
			ListTimeout:     30 * time.Second,
		},
		Defaults: DefaultsConfig{
			Model:       "llama2",
			MaxTokens:   2048,
			Temperature: 0.7,
		},
		Logging: LoggingConfig{
			Level:  "INFO",
			Format: "text",
		},
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{
				Enabled: true,
				Path:    "/metrics",
			},
		},
	}
}
