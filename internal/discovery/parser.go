package discovery

import (
	"fmt"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"e2ekit/internal/domain"
	"e2ekit/internal/dsl"
)

// EntrySummary is a dataset entry without its payload
type EntrySummary struct {
	Title string      `yaml:"title"`
	Mode  domain.Mode `yaml:"mode,omitempty"`
}

// Parser reads dataset files
type Parser struct {
	fs afero.Fs
}

// NewParser creates a new Parser on the OS filesystem
func NewParser() *Parser {
	return NewParserFs(afero.NewOsFs())
}

// NewParserFs is NewParser on an arbitrary filesystem
func NewParserFs(fs afero.Fs) *Parser {
	return &Parser{fs: fs}
}

// FindEntries lists the entries of a dataset file without decoding their data
func (p *Parser) FindEntries(filePath string) ([]EntrySummary, error) {
	var entries []EntrySummary
	if err := decode(p.fs, filePath, &entries); err != nil {
		return nil, err
	}
	for i, e := range entries {
		if e.Title == "" {
			return nil, fmt.Errorf("error reading file %s: entry %d has no title", filePath, i)
		}
	}
	return entries, nil
}

// LoadDataset decodes a dataset file into typed entries. YAML and JSON files
// are both accepted.
func LoadDataset[T any](fs afero.Fs, filePath string) ([]dsl.Entry[T], error) {
	var entries []dsl.Entry[T]
	if err := decode(fs, filePath, &entries); err != nil {
		return nil, err
	}
	for i, e := range entries {
		if e.Title == "" {
			return nil, fmt.Errorf("error reading file %s: entry %d has no title", filePath, i)
		}
	}
	return entries, nil
}

func decode(fs afero.Fs, filePath string, out any) error {
	content, err := afero.ReadFile(fs, filePath)
	if err != nil {
		return fmt.Errorf("error reading file %s: %w", filePath, err)
	}
	if err := yaml.Unmarshal(content, out); err != nil {
		return fmt.Errorf("error parsing file %s: %w", filePath, err)
	}
	return nil
}
