package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// DatasetSuffixes are the file name endings recognized as dataset files
var DatasetSuffixes = []string{".dataset.yaml", ".dataset.yml", ".dataset.json"}

// Scanner scans a fixtures folder for dataset files
type Scanner struct {
	fs       afero.Fs
	skipDirs map[string]bool
}

// NewScanner creates a new Scanner on the OS filesystem with the given directories to skip
func NewScanner(skipDirs []string) *Scanner {
	return NewScannerFs(afero.NewOsFs(), skipDirs)
}

// NewScannerFs is NewScanner on an arbitrary filesystem
func NewScannerFs(fs afero.Fs, skipDirs []string) *Scanner {
	skipMap := make(map[string]bool)
	for _, dir := range skipDirs {
		skipMap[dir] = true
	}
	return &Scanner{fs: fs, skipDirs: skipMap}
}

// IsDataset reports whether name is a dataset file name
func IsDataset(name string) bool {
	for _, suffix := range DatasetSuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

// Scan finds all dataset files under root, in lexical order
func (s *Scanner) Scan(root string) ([]string, error) {
	var datasets []string

	root = filepath.Clean(root)
	info, err := s.fs.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("fixtures path does not exist: %s", root)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("fixtures path is not a directory: %s", root)
	}

	err = afero.Walk(s.fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			if path == root {
				return nil
			}
			name := info.Name()
			// Skip hidden directories (starting with .)
			if strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			if s.skipDirs[name] {
				return filepath.SkipDir
			}
			return nil
		}

		if IsDataset(info.Name()) {
			datasets = append(datasets, path)
		}
		return nil
	})

	return datasets, err
}
