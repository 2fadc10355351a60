package generate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// outputMode is the mode of newly created outputs. Existing outputs keep
// their mode.
const outputMode os.FileMode = 0o644

type pendingFile struct {
	path string
	data string
	temp string

	// previous destination contents, restored if a later rename fails
	existed bool
	prev    []byte
	mode    os.FileMode
}

// writeAll stages every file next to its destination and renames them into
// place only once all of them were written. On failure every staged file is
// removed and destinations that were already replaced get their previous
// contents back.
func (g *Generator) writeAll(files []pendingFile) (err error) {
	defer func() {
		if err == nil {
			return
		}
		for _, f := range files {
			if f.temp != "" {
				_ = g.fs.Remove(f.temp)
			}
		}
	}()

	for i := range files {
		if err := g.stage(&files[i]); err != nil {
			return err
		}
	}

	for i := range files {
		f := &files[i]
		if err := g.fs.Rename(f.temp, f.path); err != nil {
			err = fmt.Errorf("failed to write %s: %w", f.path, err)
			return errors.Join(err, g.restore(files[:i]))
		}
		f.temp = ""
		g.logger.Debug("wrote file", "path", f.path, "bytes", len(f.data))
	}
	return nil
}

// stage writes f into a temporary file beside its destination and records
// what the destination held before.
func (g *Generator) stage(f *pendingFile) error {
	dir := filepath.Dir(f.path)
	if err := g.fs.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	f.mode = outputMode
	if info, err := g.fs.Stat(f.path); err == nil {
		prev, err := afero.ReadFile(g.fs, f.path)
		if err != nil {
			return fmt.Errorf("failed to read existing %s: %w", f.path, err)
		}
		f.existed = true
		f.prev = prev
		f.mode = info.Mode().Perm()
	}

	tmp, err := afero.TempFile(g.fs, dir, "."+filepath.Base(f.path)+".*")
	if err != nil {
		return fmt.Errorf("failed to stage %s: %w", f.path, err)
	}
	f.temp = tmp.Name()
	if _, err := tmp.WriteString(f.data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write %s: %w", f.path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", f.path, err)
	}
	// temporary files are created owner-only
	if err := g.fs.Chmod(f.temp, f.mode); err != nil {
		return fmt.Errorf("failed to set mode of %s: %w", f.path, err)
	}
	return nil
}

// restore puts back what the destinations of already renamed files held
// before the run.
func (g *Generator) restore(renamed []pendingFile) error {
	var errs []error
	for _, f := range renamed {
		if !f.existed {
			if err := g.fs.Remove(f.path); err != nil {
				errs = append(errs, fmt.Errorf("failed to remove %s: %w", f.path, err))
			}
			continue
		}
		if err := afero.WriteFile(g.fs, f.path, f.prev, f.mode); err != nil {
			errs = append(errs, fmt.Errorf("failed to restore %s: %w", f.path, err))
		}
	}
	return errors.Join(errs...)
}
