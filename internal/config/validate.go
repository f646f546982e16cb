package config

import (
	"errors"
	"fmt"
	"net/mail"
)

// Validate ensures the configuration is usable. Settings only the worker
// needs, such as the queue URL, are checked by the preflight package so that
// offline commands keep working without them.
func (c *Config) Validate() error {
	if err := c.validateQueue(); err != nil {
		return err
	}
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validateManifest(); err != nil {
		return err
	}
	if err := c.validateEmail(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateQueue() error {
	if c.Queue.ReceiveWaitSeconds < 0 || c.Queue.ReceiveWaitSeconds > maxReceiveWaitSeconds {
		return fmt.Errorf("queue.receive_wait_seconds must be between 0 and %d", maxReceiveWaitSeconds)
	}
	return nil
}

func (c *Config) validateStorage() error {
	if c.Storage.PartSizeMiB < minPartSizeMiB {
		return fmt.Errorf("storage.part_size_mib must be at least %d", minPartSizeMiB)
	}
	if c.Storage.Concurrency <= 0 {
		return errors.New("storage.concurrency must be positive")
	}
	return nil
}

func (c *Config) validateManifest() error {
	switch c.Manifest.Schema {
	case "v1", "v2":
		return nil
	default:
		return fmt.Errorf("manifest.schema must be one of v1, v2 (got %q)", c.Manifest.Schema)
	}
}

func (c *Config) validateEmail() error {
	if c.Email.Source == "" {
		return nil
	}
	if _, err := mail.ParseAddress(c.Email.Source); err != nil {
		return fmt.Errorf("email.source must be a valid address: %w", err)
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.ErrorRetryInterval <= 0 {
		return errors.New("workflow.error_retry_interval must be positive (seconds)")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "auto", "console", "json":
	default:
		return fmt.Errorf("logging.format must be one of auto, console, json (got %q)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error (got %q)", c.Logging.Level)
	}
	return nil
}
