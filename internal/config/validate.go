package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateDaemon(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateDaemon() error {
	if c.Daemon.SocketPath == "" {
		return errors.New("daemon.socket_path must be set")
	}
	if c.Daemon.ConnectTimeoutSeconds < 0 {
		return errors.New("daemon.connect_timeout_seconds must not be negative")
	}
	if c.Daemon.ResponseTimeoutSeconds < 0 {
		return errors.New("daemon.response_timeout_seconds must not be negative")
	}
	if c.Daemon.MaxResponseBytes < minResponseBytes {
		return fmt.Errorf("daemon.max_response_bytes must be at least %d", minResponseBytes)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q (use console or json)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
