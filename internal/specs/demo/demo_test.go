package demo

import (
	"context"
	"path/filepath"
	"testing"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"e2ekit/internal/config"
	"e2ekit/internal/domain"
	"e2ekit/internal/execution"
)

func setup(t *testing.T) (*execution.Catalog, *config.Config, afero.Fs) {
	t.Helper()
	cfg := config.New()
	cfg.ProjectPath = "/project"
	cfg.Retries = 0
	cfg.BaseURLs = config.BaseURLs{API: "http://localhost:8080/api", App: "http://localhost:3000"}
	cfg.Users = map[string]config.User{"admin": {Username: "admin@example.test", Password: "admin"}}

	fs := afero.NewMemMapFs()
	c := execution.NewCatalog()
	Register(c, cfg, fs)
	return c, cfg, fs
}

func run(t *testing.T, c *execution.Catalog, cfg *config.Config, name string) domain.SuiteResult {
	t.Helper()
	def, ok := c.Get(name)
	require.True(t, ok, "suite %s not registered", name)
	log, _ := logtest.NewNullLogger()
	return execution.NewRunner(cfg, execution.WithLogger(log)).Run(context.Background(), def, 1)
}

func TestRegister(t *testing.T) {
	c, _, _ := setup(t)
	assert.Equal(t, []string{"accounts", "catalog", "checkout", "downloads"}, c.Names())
}

func TestSuitesPass(t *testing.T) {
	c, cfg, _ := setup(t)
	for _, name := range c.Names() {
		t.Run(name, func(t *testing.T) {
			res := run(t, c, cfg, name)
			require.NoError(t, res.Error)
			for _, u := range res.Units {
				assert.NotEqual(t, domain.StatusFailed, u.Status, "%s: %v", u.Title, u.Error)
			}
		})
	}
}

func TestAccounts_SkipsUsersWithoutProfileUsers(t *testing.T) {
	c, cfg, _ := setup(t)
	cfg.Users = nil

	res := run(t, c, cfg, "accounts")
	require.Len(t, res.Units, 2)
	assert.Equal(t, "Accounts > @ID:C1|environment has base urls", res.Units[0].Title)
	assert.Equal(t, domain.StatusPassed, res.Units[0].Status)
	assert.Equal(t, "Accounts > Users > @ID:C2,C3|admin credentials are configured", res.Units[1].Title)
	assert.Equal(t, domain.StatusSkipped, res.Units[1].Status)
}

func TestAccounts_FailsWithoutBaseURLs(t *testing.T) {
	c, cfg, _ := setup(t)
	cfg.BaseURLs = config.BaseURLs{}

	res := run(t, c, cfg, "accounts")
	assert.Equal(t, domain.StatusFailed, res.Units[0].Status)
	assert.False(t, res.Success())
}

func TestCatalog_LogsCases(t *testing.T) {
	c, cfg, _ := setup(t)
	res := run(t, c, cfg, "catalog")
	require.Len(t, res.Units, 4)

	var messages []string
	for _, s := range res.Units[0].Steps {
		messages = append(messages, s.Message)
	}
	assert.Equal(t, []string{"UPC has twelve digits and a check digit", "UPC check digit validates"}, messages)
	assert.Equal(t, "Catalog > @ID:C20,C21|generated UPCs are valid", res.Units[0].Title)
}

func TestCheckout_UsesDataset(t *testing.T) {
	c, cfg, fs := setup(t)
	path := filepath.Join(cfg.GetFixturesPath(), ProductsDataset)
	require.NoError(t, fs.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, afero.WriteFile(fs, path, []byte(`
- title: one notebook
  data: {name: Notebook, quantity: 1, upc: "0360002914520"}
- title: broken
  mode: skip
  data: {name: Broken, quantity: 0}
`), 0o644))

	res := run(t, c, cfg, "checkout")
	require.Len(t, res.Units, 1)
	assert.Equal(t, domain.StatusPassed, res.Units[0].Status, "%v", res.Units[0].Error)

	var entries []string
	for _, s := range res.Units[0].Steps {
		if s.Fields["entry"] != nil {
			entries = append(entries, s.Message)
		}
	}
	assert.Equal(t, []string{"one notebook"}, entries)
}

func TestCheckout_InvalidEntryFails(t *testing.T) {
	c, cfg, fs := setup(t)
	path := filepath.Join(cfg.GetFixturesPath(), ProductsDataset)
	require.NoError(t, fs.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, afero.WriteFile(fs, path, []byte(`
- title: nothing
  data: {name: Empty, quantity: 0}
`), 0o644))

	res := run(t, c, cfg, "checkout")
	require.Len(t, res.Units, 1)
	require.Error(t, res.Units[0].Error)
	assert.Equal(t, "Empty: quantity must be positive, got 0", res.Units[0].Error.Error())
}

func TestCheckout_BrokenDatasetFailsSuite(t *testing.T) {
	c, cfg, fs := setup(t)
	path := filepath.Join(cfg.GetFixturesPath(), ProductsDataset)
	require.NoError(t, fs.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, afero.WriteFile(fs, path, []byte(`- data: {name: Untitled}`), 0o644))

	res := run(t, c, cfg, "checkout")
	require.Error(t, res.Error)
	assert.Contains(t, res.Error.Error(), "has no title")
}

func TestDownloads_CleansUp(t *testing.T) {
	c, cfg, fs := setup(t)
	res := run(t, c, cfg, "downloads")
	require.Len(t, res.Units, 1)
	require.Equal(t, domain.StatusPassed, res.Units[0].Status, "%v", res.Units[0].Error)

	exists, err := afero.Exists(fs, filepath.Join(cfg.GetDownloadsPath(), "report.csv"))
	require.NoError(t, err)
	assert.False(t, exists)
}
