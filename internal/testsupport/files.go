package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteManifest writes body to dir/manifest.xml, creating dir as needed, and
// returns the manifest path.
func WriteManifest(t testing.TB, dir, body string) string {
	t.Helper()
	return WriteFile(t, filepath.Join(dir, "manifest.xml"), []byte(body))
}

// WriteFile writes data to path, creating parent directories.
func WriteFile(t testing.TB, path string, data []byte) string {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// ShortTempDir returns a temp directory with a short path. Unix socket paths
// are limited to about 100 bytes, which t.TempDir can exceed.
func ShortTempDir(t testing.TB) string {
	t.Helper()

	dir, err := os.MkdirTemp("", "hawa")
	if err != nil {
		t.Fatalf("mkdir temp: %v", err)
	}
	t.Cleanup(func() {
		_ = os.RemoveAll(dir)
	})
	return dir
}
