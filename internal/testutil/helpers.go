// Package testutil builds in-memory served roots for tests.
package testutil

import (
	"path"
	"testing"

	"github.com/spf13/afero"
)

// RootDir is where CreateTestRoot places the served files inside the
// backing filesystem. Anything written outside of it is unreachable through
// the returned root.
const RootDir = "/srv/www"

// CreateTestRoot returns a read-only root confined to RootDir together with
// the backing filesystem, so tests can plant files outside the root.
func CreateTestRoot(t *testing.T, files map[string]string) (root afero.Fs, backing afero.Fs) {
	t.Helper()
	backing = afero.NewMemMapFs()
	if err := backing.MkdirAll(RootDir, 0755); err != nil {
		t.Fatalf("Failed to create root: %v", err)
	}
	for name, content := range files {
		WriteFile(t, backing, path.Join(RootDir, name), []byte(content))
	}
	root = afero.NewReadOnlyFs(afero.NewBasePathFs(backing, RootDir))
	return root, backing
}

// WriteFile writes data to name, creating parent directories as needed.
func WriteFile(t *testing.T, fs afero.Fs, name string, data []byte) {
	t.Helper()
	if err := fs.MkdirAll(path.Dir(name), 0755); err != nil {
		t.Fatalf("Failed to create directory for %s: %v", name, err)
	}
	if err := afero.WriteFile(fs, name, data, 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
}

// Mkdir creates an empty directory.
func Mkdir(t *testing.T, fs afero.Fs, name string) {
	t.Helper()
	if err := fs.MkdirAll(name, 0755); err != nil {
		t.Fatalf("Failed to create directory %s: %v", name, err)
	}
}
