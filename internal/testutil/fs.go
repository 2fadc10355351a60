package testutil

import (
	"testing"

	"github.com/spf13/afero"
)

// NewMemFs returns an in-memory filesystem holding files, keyed by path.
func NewMemFs(t testing.TB, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	WriteFiles(t, fs, files)
	return fs
}

// WriteFiles writes every file into fs, creating parent directories.
func WriteFiles(t testing.TB, fs afero.Fs, files map[string]string) {
	t.Helper()
	for name, content := range files {
		if err := afero.WriteFile(fs, name, []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
}

// Exists reports whether path exists on fs.
func Exists(t testing.TB, fs afero.Fs, path string) bool {
	t.Helper()
	ok, err := afero.Exists(fs, path)
	if err != nil {
		t.Fatalf("failed to stat %s: %v", path, err)
	}
	return ok
}
