package config

import "testing"

// SetSystemConfigPath points the system-wide fallback at path for one test.
func SetSystemConfigPath(t testing.TB, path string) {
	t.Helper()
	previous := systemConfigPath
	systemConfigPath = path
	t.Cleanup(func() { systemConfigPath = previous })
}
