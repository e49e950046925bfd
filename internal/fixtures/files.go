package fixtures

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"
)

// Files runs file tasks for specs against a filesystem
type Files struct {
	fs afero.Fs
}

// NewFiles creates Files on fs
func NewFiles(fs afero.Fs) *Files {
	return &Files{fs: fs}
}

// NewOsFiles creates Files on the OS filesystem
func NewOsFiles() *Files {
	return NewFiles(afero.NewOsFs())
}

// ReadOrCreateFile returns the content of path. A missing file is created with
// defaultContent and nil is returned.
func (f *Files) ReadOrCreateFile(path, defaultContent string) ([]byte, error) {
	data, err := afero.ReadFile(f.fs, path)
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if err := f.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create dir for %s: %w", path, err)
	}
	if err := afero.WriteFile(f.fs, path, []byte(defaultContent), 0o644); err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	return nil, nil
}

// DeleteFile removes path. Missing files are not an error.
func (f *Files) DeleteFile(path string) error {
	if err := f.fs.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", path, err)
	}
	return nil
}

// ClearFolder empties folder recursively, creating it when missing
func (f *Files) ClearFolder(folder string) error {
	exists, err := afero.DirExists(f.fs, folder)
	if err != nil {
		return fmt.Errorf("stat %s: %w", folder, err)
	}
	if !exists {
		if err := f.fs.MkdirAll(folder, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", folder, err)
		}
		return nil
	}

	entries, err := afero.ReadDir(f.fs, folder)
	if err != nil {
		return fmt.Errorf("read %s: %w", folder, err)
	}
	for _, e := range entries {
		if err := f.fs.RemoveAll(filepath.Join(folder, e.Name())); err != nil {
			return fmt.Errorf("remove %s: %w", e.Name(), err)
		}
	}
	return nil
}

// ListFiles returns the names of the regular files in folder, sorted
func (f *Files) ListFiles(folder string) ([]string, error) {
	entries, err := afero.ReadDir(f.fs, folder)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", folder, err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
