package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validateLLM(); err != nil {
		return err
	}
	if err := c.validateEndpoints(); err != nil {
		return err
	}
	if err := c.validateTimeouts(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateStorage() error {
	switch c.Storage.Backend {
	case storageBackendSQLite, storageBackendFile, storageBackendMemory:
	default:
		return fmt.Errorf("storage.backend must be one of sqlite, file, memory (got %q)", c.Storage.Backend)
	}
	if strings.TrimSpace(c.Storage.RecordKey) == "" {
		return errors.New("storage.record_key must be set")
	}
	if c.Storage.Backend != storageBackendMemory && strings.TrimSpace(c.Paths.DataDir) == "" {
		return errors.New("paths.data_dir must be set for persistent storage")
	}
	return nil
}

func (c *Config) validateLLM() error {
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return errors.New("llm.temperature must be between 0 and 2")
	}
	if c.LLM.RetryAttempts < 1 {
		return errors.New("llm.retry_attempts must be >= 1")
	}
	return nil
}

func (c *Config) validateEndpoints() error {
	endpoints := []struct {
		key      string
		value    string
		optional bool
	}{
		{key: "llm.base_url", value: c.LLM.BaseURL},
		{key: "transcript.captions_base_url", value: c.Transcript.CaptionsBaseURL},
		{key: "metadata.oembed_url", value: c.Metadata.OEmbedURL},
		{key: "transcript.webhook_url", value: c.Transcript.WebhookURL, optional: true},
	}
	for _, endpoint := range endpoints {
		if endpoint.optional && endpoint.value == "" {
			continue
		}
		if err := validateHTTPURL(endpoint.value); err != nil {
			return fmt.Errorf("%s: %w", endpoint.key, err)
		}
	}
	return nil
}

func (c *Config) validateTimeouts() error {
	return ensurePositiveMap(map[string]int{
		"llm.timeout_seconds":           c.LLM.TimeoutSeconds,
		"transcript.timeout_seconds":    c.Transcript.TimeoutSeconds,
		"metadata.timeout_seconds":      c.Metadata.TimeoutSeconds,
		"notifications.request_timeout": c.Notifications.RequestTimeout,
	})
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error (got %q)", c.Logging.Level)
	}
}

func validateHTTPURL(raw string) error {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("url must use http or https (got %q)", raw)
	}
	if parsed.Host == "" {
		return fmt.Errorf("url must include a host (got %q)", raw)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
