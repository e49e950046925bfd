package commands

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"e2ekit/internal/cli"
	"e2ekit/internal/config"
	"e2ekit/internal/domain"
	"e2ekit/internal/dsl"
	"e2ekit/internal/execution"
	"e2ekit/internal/storage"
)

func init() {
	color.NoColor = true
}

type fakeViewer struct {
	viewed *domain.TestResultsOutput
}

func (v *fakeViewer) View(results *domain.TestResultsOutput) error {
	v.viewed = results
	return nil
}

type harness struct {
	cfg  *config.Config
	fs   afero.Fs
	out  *bytes.Buffer
	cmds *Commands
	runs map[string]int
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	cfg := config.New()
	cfg.ProjectPath = "/project"
	cfg.Retries = 0
	cfg.Processors = 2

	h := &harness{cfg: cfg, fs: afero.NewMemMapFs(), out: &bytes.Buffer{}, runs: map[string]int{}}
	catalog := execution.NewCatalog()
	catalog.MustAdd("cart", func(s *execution.Suite) {
		dsl.TestCase(s, dsl.Case{IDs: "C10", Title: "adds an item", Test: h.unit("C10", nil)})
		dsl.TestCase(s, dsl.Case{IDs: "C11", Title: "removes an item", Test: h.unit("C11", errors.New("item still in cart"))})
	})
	catalog.MustAdd("login", func(s *execution.Suite) {
		s.Describe("Login", func() {
			dsl.TestCase(s, dsl.Case{IDs: []string{"C1", "C2"}, Title: "signs in", Test: h.unit("C1", nil)})
			dsl.TestCase(s, dsl.Case{Title: "shows the banner", Mode: domain.ModeSkip, Test: h.unit("banner", nil)})
		})
	})

	log, _ := logtest.NewNullLogger()
	h.cmds = NewCommands(cfg, catalog, log, h.fs, h.out)
	h.cmds.Run.progress = false
	return h
}

func (h *harness) unit(name string, err error) dsl.Body {
	return func(ctx context.Context) error {
		h.runs[name]++
		return err
	}
}

func newFlags() *cli.Flags {
	return &cli.Flags{Retries: -1}
}

func command() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	return cmd
}

func TestRunCommand_Execute(t *testing.T) {
	h := newHarness(t)
	downloads := h.cfg.GetDownloadsPath()
	require.NoError(t, h.fs.MkdirAll(downloads, 0o755))
	require.NoError(t, afero.WriteFile(h.fs, filepath.Join(downloads, "old.csv"), []byte("x"), 0o644))

	err := h.cmds.Run.Execute(command(), nil)
	require.ErrorIs(t, err, ErrTestsFailed)

	assert.Equal(t, 1, h.runs["C10"])
	assert.Equal(t, 1, h.runs["C11"])
	assert.Equal(t, 1, h.runs["C1"])
	assert.Zero(t, h.runs["banner"])

	exists, err := afero.Exists(h.fs, filepath.Join(downloads, "old.csv"))
	require.NoError(t, err)
	assert.False(t, exists, "downloads folder should be cleared before the run")

	output, err := storage.NewJSONStorageFs(h.cfg, h.fs).Load()
	require.NoError(t, err)
	assert.NotEmpty(t, output.Meta.RunID)
	assert.Equal(t, 2, output.Meta.TotalSuites)
	assert.Equal(t, 1, output.Meta.FailedSuites)
	assert.Equal(t, 1, output.Meta.SkippedUnits)
	require.Len(t, output.Details, 1)
	assert.Equal(t, "C11", output.Details[0].CaseID)
	assert.Equal(t, "item still in cart", output.Details[0].Message)

	assert.Contains(t, h.out.String(), "cart")
	assert.Contains(t, h.out.String(), "item still in cart")
}

func TestRunCommand_Grep(t *testing.T) {
	h := newHarness(t)
	h.cfg.Flags.Grep = "@ID:C1"

	require.NoError(t, h.cmds.Run.Execute(command(), nil))
	assert.Equal(t, 1, h.runs["C1"])
	assert.Zero(t, h.runs["C10"])
	assert.Zero(t, h.runs["C11"])
}

func TestRunCommand_NoSuites(t *testing.T) {
	h := newHarness(t)
	h.cfg.Flags.NameFilter = "checkout*"

	require.NoError(t, h.cmds.Run.Execute(command(), nil))
	assert.Contains(t, h.out.String(), "No suites to execute")
}

func TestRunCommand_OnlyFailed(t *testing.T) {
	h := newHarness(t)
	require.ErrorIs(t, h.cmds.Run.Execute(command(), nil), ErrTestsFailed)

	h.runs = map[string]int{}
	h.cfg.Flags.OnlyFailed = true
	require.ErrorIs(t, h.cmds.Run.Execute(command(), nil), ErrTestsFailed)

	assert.Equal(t, map[string]int{"C11": 1}, h.runs)
}

func TestRunCommand_OnlyFailedWithoutResults(t *testing.T) {
	h := newHarness(t)
	h.cfg.Flags.OnlyFailed = true
	assert.Error(t, h.cmds.Run.Execute(command(), nil))
}

func TestRunCommand_OpenFaills(t *testing.T) {
	h := newHarness(t)
	viewer := &fakeViewer{}
	h.cmds.Run.viewer = viewer
	h.cfg.Flags.OpenFaills = true

	require.ErrorIs(t, h.cmds.Run.Execute(command(), nil), ErrTestsFailed)
	require.NotNil(t, viewer.viewed)
	assert.Len(t, viewer.viewed.Details, 1)
}

func TestRunCommand_MetricsFile(t *testing.T) {
	h := newHarness(t)
	h.cfg.Flags.NameFilter = "login"
	h.cfg.Flags.MetricsFile = filepath.Join(t.TempDir(), "metrics", "e2e.prom")

	require.NoError(t, h.cmds.Run.Execute(command(), nil))
	exists, err := afero.Exists(afero.NewOsFs(), h.cfg.Flags.MetricsFile)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestRunCommand_Cancelled(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cmd := &cobra.Command{}
	cmd.SetContext(ctx)

	err := h.cmds.Run.Execute(cmd, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestListCommand_Execute(t *testing.T) {
	h := newHarness(t)
	h.cfg.Flags.TestCases = true

	require.NoError(t, h.cmds.List.Execute(command(), nil))
	out := h.out.String()
	assert.Contains(t, out, "Found 2 suite(s)")
	assert.Contains(t, out, "@ID:C11|removes an item")
	assert.Contains(t, out, "[skip]")
	assert.NotContains(t, out, "[F]")
	assert.Empty(t, h.runs, "listing must not run units")
}

func TestListCommand_MarksLastFailures(t *testing.T) {
	h := newHarness(t)
	require.ErrorIs(t, h.cmds.Run.Execute(command(), nil), ErrTestsFailed)
	h.out.Reset()

	h.cfg.Flags.TestCases = true
	require.NoError(t, h.cmds.List.Execute(command(), nil))
	assert.Contains(t, h.out.String(), "[F]")
}

func TestListCommand_GrepHidesEmptySuites(t *testing.T) {
	h := newHarness(t)
	h.cfg.Flags.Grep = "*item*"

	require.NoError(t, h.cmds.List.Execute(command(), nil))
	assert.Contains(t, h.out.String(), "Found 1 suite(s)")
	assert.NotContains(t, h.out.String(), "login")
}

func TestDatasetsCommand_Execute(t *testing.T) {
	h := newHarness(t)
	root := h.cfg.GetFixturesPath()
	require.NoError(t, h.fs.MkdirAll(filepath.Join(root, "login"), 0o755))
	require.NoError(t, afero.WriteFile(h.fs, filepath.Join(root, "login", "users.dataset.yaml"), []byte(`
- title: admin signs in
  data: {user: admin}
- title: viewer signs in
  mode: skip
  data: {user: viewer}
`), 0o644))
	require.NoError(t, afero.WriteFile(h.fs, filepath.Join(root, "broken.dataset.yaml"), []byte(`- data: {}`), 0o644))

	require.NoError(t, h.cmds.Datasets.Execute(command(), nil))
	out := h.out.String()
	assert.Contains(t, out, "Found 2 dataset file(s)")
	assert.Contains(t, out, filepath.Join("login", "users.dataset.yaml"))
	assert.Contains(t, out, "viewer signs in [skip]")
	assert.Contains(t, out, "has no title")
}

func TestDatasetsCommand_Empty(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.fs.MkdirAll(h.cfg.GetFixturesPath(), 0o755))

	require.NoError(t, h.cmds.Datasets.Execute(command(), nil))
	assert.Contains(t, h.out.String(), "No datasets found")
}

func TestFaillsCommand_Execute(t *testing.T) {
	h := newHarness(t)
	viewer := &fakeViewer{}
	h.cmds.Faills.viewer = viewer

	assert.Error(t, h.cmds.Faills.Execute(command(), nil), "no results saved yet")

	require.ErrorIs(t, h.cmds.Run.Execute(command(), nil), ErrTestsFailed)
	require.NoError(t, h.cmds.Faills.Execute(command(), nil))
	require.NotNil(t, viewer.viewed)
	assert.Equal(t, "C11", viewer.viewed.Details[0].CaseID)
}

func TestRegister(t *testing.T) {
	h := newHarness(t)
	root := &cobra.Command{Use: "e2ekit"}
	f := newFlags()
	h.cmds.Register(root, f, h.cfg)

	for _, name := range []string{"run", "list", "datasets", "faills", "db"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}
	initCmd, _, err := root.Find([]string{"db", "init"})
	require.NoError(t, err)
	assert.Equal(t, "init", initCmd.Name())
	assert.Equal(t, -1, f.Retries)
}

func TestPrepare_Verbose(t *testing.T) {
	h := newHarness(t)
	h.cfg.ProjectPath = t.TempDir()
	f := newFlags()
	f.Verbose = true
	f.Environment = "dev"
	f.Retries = 3

	require.NoError(t, h.cmds.prepare(f, h.cfg)(command(), nil))
	assert.Equal(t, logrus.DebugLevel, h.cmds.log.GetLevel())
	assert.Equal(t, "dev", h.cfg.Environment)
	assert.Equal(t, 3, h.cfg.Retries)
}
