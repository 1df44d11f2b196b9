package testsupport

import (
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"hawarun/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a validated default config whose socket lives in a
// per-test temp directory. Options run after the defaults are applied.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	cfg := config.Default()
	cfg.Daemon.SocketPath = filepath.Join(t.TempDir(), "launcher.sock")
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	return &cfg
}

// WithSocket points the config at an existing socket path.
func WithSocket(path string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Daemon.SocketPath = path
	}
}

// WithResponseTimeout overrides the reply deadline in whole seconds.
func WithResponseTimeout(seconds int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Daemon.ResponseTimeoutSeconds = seconds
	}
}

// WriteConfig encodes cfg as TOML into a temp file and returns its path.
func WriteConfig(t testing.TB, cfg *config.Config) string {
	t.Helper()

	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("encode config: %v", err)
	}
	return WriteFile(t, filepath.Join(t.TempDir(), "launcher.toml"), data)
}
