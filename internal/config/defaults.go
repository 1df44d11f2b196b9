package config

const (
	defaultSocketPath             = "/run/Hawa/game-launcher.sock"
	defaultConnectTimeoutSeconds  = 3
	defaultResponseTimeoutSeconds = 3
	defaultMaxResponseBytes       = 64 * 1024
	defaultLogFormat              = "console"
	defaultLogLevel               = "warn"

	minResponseBytes = 1024
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Daemon: Daemon{
			SocketPath:             defaultSocketPath,
			ConnectTimeoutSeconds:  defaultConnectTimeoutSeconds,
			ResponseTimeoutSeconds: defaultResponseTimeoutSeconds,
			MaxResponseBytes:       defaultMaxResponseBytes,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
