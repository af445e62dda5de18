package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"subgen/internal/services"
)

// Validate ensures the configuration is usable. Failures carry
// services.ErrValidation.
func (c *Config) Validate() error {
	for _, check := range []func() error{c.validateAPI, c.validateNotifications, c.validateLogging} {
		if err := check(); err != nil {
			return fmt.Errorf("%w: %w", services.ErrValidation, err)
		}
	}
	return nil
}

// The API URL is optional here; it can always be supplied per request. When
// present it must be an absolute http(s) URL.
func (c *Config) validateAPI() error {
	if c.API.TimeoutSeconds < 0 {
		return errors.New("api.timeout_seconds must be >= 0")
	}
	if c.API.URL == "" {
		return nil
	}
	if !strings.HasPrefix(c.API.URL, "http://") && !strings.HasPrefix(c.API.URL, "https://") {
		return fmt.Errorf("api.url %q must start with http:// or https://", c.API.URL)
	}
	parsed, err := url.Parse(c.API.URL)
	if err != nil {
		return fmt.Errorf("api.url: %w", err)
	}
	if parsed.Host == "" {
		return fmt.Errorf("api.url %q is missing a host", c.API.URL)
	}
	return nil
}

func (c *Config) validateNotifications() error {
	topic := c.Notifications.NtfyTopic
	if topic == "" {
		return nil
	}
	if !strings.HasPrefix(topic, "http://") && !strings.HasPrefix(topic, "https://") {
		return fmt.Errorf("notifications.ntfy_topic %q must be a full ntfy URL", topic)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format %q must be console or json", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q must be debug, info, warn, or error", c.Logging.Level)
	}
	return nil
}
