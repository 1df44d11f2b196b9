package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizeDaemon(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeDaemon() error {
	if value, ok := os.LookupEnv("HAWA_LAUNCHER_SOCKET"); ok && strings.TrimSpace(value) != "" {
		c.Daemon.SocketPath = value
	}
	c.Daemon.SocketPath = strings.TrimSpace(c.Daemon.SocketPath)
	if c.Daemon.SocketPath == "" {
		c.Daemon.SocketPath = defaultSocketPath
	}
	var err error
	if c.Daemon.SocketPath, err = expandPath(c.Daemon.SocketPath); err != nil {
		return fmt.Errorf("daemon.socket_path: %w", err)
	}
	if c.Daemon.ConnectTimeoutSeconds == 0 {
		c.Daemon.ConnectTimeoutSeconds = defaultConnectTimeoutSeconds
	}
	if c.Daemon.ResponseTimeoutSeconds == 0 {
		c.Daemon.ResponseTimeoutSeconds = defaultResponseTimeoutSeconds
	}
	if c.Daemon.MaxResponseBytes == 0 {
		c.Daemon.MaxResponseBytes = defaultMaxResponseBytes
	}
	return nil
}

func (c *Config) normalizeLogging() {
	if value, ok := os.LookupEnv("HAWA_LOG_LEVEL"); ok && strings.TrimSpace(value) != "" {
		c.Logging.Level = value
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
