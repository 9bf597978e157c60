package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate checks the configuration for required fields and valid values.
// All problems are returned together, each with a descriptive field path.
func (c *Config) Validate() error {
	var errs []error

	// backend.endpoint must be an absolute http(s) URL.
	if c.Backend.Endpoint == "" {
		errs = append(errs, fmt.Errorf("backend.endpoint is required"))
	} else if u, err := url.Parse(c.Backend.Endpoint); err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		errs = append(errs, fmt.Errorf("backend.endpoint must be an absolute http(s) URL, got %q", c.Backend.Endpoint))
	}

	if c.Backend.GenerateTimeout <= 0 {
		errs = append(errs, fmt.Errorf("backend.generate_timeout must be > 0, got %v", c.Backend.GenerateTimeout))
	}
	if c.Backend.ListTimeout <= 0 {
		errs = append(errs, fmt.Errorf("backend.list_timeout must be > 0, got %v", c.Backend.ListTimeout))
	}

	if c.Defaults.MaxTokens <= 0 {
		errs = append(errs, fmt.Errorf("defaults.max_tokens must be > 0, got %d", c.Defaults.MaxTokens))
	}

	if c.Server.Port <= 0 {
		errs = append(errs, fmt.Errorf("server.port must be > 0, got %d", c.Server.Port))
	}
	if c.Server.MaxBodySize <= 0 {
		errs = append(errs, fmt.Errorf("server.max_body_size must be > 0, got %d", c.Server.MaxBodySize))
	}

	switch c.Logging.Format {
	case "text", "json":
		// valid
	default:
		errs = append(errs, fmt.Errorf("logging.format must be \"text\" or \"json\", got %q", c.Logging.Format))
	}

	return errors.Join(errs...)
}
