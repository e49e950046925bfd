package discovery

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"e2ekit/internal/domain"
)

type credentials struct {
	Username string `yaml:"username" json:"username"`
	Valid    bool   `yaml:"valid" json:"valid"`
}

func TestParser_FindEntries(t *testing.T) {
	fs := afero.NewMemMapFs()
	content := `
- title: valid admin
  data: {username: admin, valid: true}
- title: locked user
  mode: skip
  data: {username: locked}
- title: focus
  mode: only
`
	require.NoError(t, afero.WriteFile(fs, "/fx/users.dataset.yaml", []byte(content), 0o644))

	entries, err := NewParserFs(fs).FindEntries("/fx/users.dataset.yaml")
	require.NoError(t, err)
	assert.Equal(t, []EntrySummary{
		{Title: "valid admin"},
		{Title: "locked user", Mode: domain.ModeSkip},
		{Title: "focus", Mode: domain.ModeOnly},
	}, entries)
}

func TestParser_Errors(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/fx/bad-mode.dataset.yaml", []byte("- title: x\n  mode: sometimes\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/fx/no-title.dataset.yaml", []byte("- data: 1\n"), 0o644))
	p := NewParserFs(fs)

	_, err := p.FindEntries("/fx/missing.dataset.yaml")
	assert.Error(t, err)
	_, err = p.FindEntries("/fx/bad-mode.dataset.yaml")
	assert.Error(t, err)
	_, err = p.FindEntries("/fx/no-title.dataset.yaml")
	assert.ErrorContains(t, err, "entry 0 has no title")
}

func TestLoadDataset(t *testing.T) {
	fs := afero.NewMemMapFs()
	json := `[
  {"title": "admin", "data": {"username": "admin", "valid": true}},
  {"title": "guest", "mode": "skip", "data": {"username": "guest"}}
]`
	require.NoError(t, afero.WriteFile(fs, "/fx/users.dataset.json", []byte(json), 0o644))

	entries, err := LoadDataset[credentials](fs, "/fx/users.dataset.json")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, credentials{Username: "admin", Valid: true}, entries[0].Data)
	assert.Equal(t, domain.ModeSkip, entries[1].Mode)
	assert.Equal(t, "guest", entries[1].Data.Username)
}
