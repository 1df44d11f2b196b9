package main

import (
	"io"
	"log/slog"
	"strings"
	"sync"

	"hawarun/internal/config"
	"hawarun/internal/ipc"
	"hawarun/internal/logging"
)

type commandContext struct {
	flags *rootFlags

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	log        *slog.Logger
	logErr     error
}

func newCommandContext(flags *rootFlags) *commandContext {
	return &commandContext{flags: flags}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		path := strings.TrimSpace(c.flags.config)
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = &configError{err: err}
			return
		}
		if c.flags.verbose {
			cfg.Logging.Level = "debug"
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// logger builds the invocation logger writing to w. Every record carries a
// fresh request id so client logs can be matched with the daemon's. When the
// configuration cannot be loaded the logger falls back to the default
// console settings.
func (c *commandContext) logger(w io.Writer) (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		requestID := logging.NewRequestID()
		cfg, err := c.ensureConfig()
		if err != nil {
			level := "warn"
			if c.flags.verbose {
				level = "debug"
			}
			c.log, c.logErr = logging.New(logging.Options{Level: level, Output: w, RequestID: requestID})
			return
		}
		logger, err := logging.NewFromConfig(cfg, w, requestID)
		if err != nil {
			c.logErr = &configError{err: err}
			return
		}
		c.log = logger
	})
	return c.log, c.logErr
}

func (c *commandContext) socketPath() string {
	if socket := strings.TrimSpace(c.flags.socket); socket != "" {
		if expanded, err := config.ExpandPath(socket); err == nil {
			return expanded
		}
		return socket
	}
	if c.config != nil {
		return c.config.Daemon.SocketPath
	}
	return ipc.DefaultSocketPath
}

func (c *commandContext) clientOptions(logger *slog.Logger) ipc.Options {
	opts := ipc.Options{
		SocketPath: c.socketPath(),
		Logger:     logger,
	}
	if c.config != nil {
		opts.ConnectTimeout = c.config.ConnectTimeout()
		opts.ResponseTimeout = c.config.ResponseTimeout()
		opts.MaxResponseBytes = c.config.Daemon.MaxResponseBytes
	}
	if c.flags.timeout > 0 {
		opts.ResponseTimeout = c.flags.timeout
	}
	return opts
}
