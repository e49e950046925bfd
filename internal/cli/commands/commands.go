package commands

import (
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"e2ekit/internal/cli"
	"e2ekit/internal/config"
	"e2ekit/internal/discovery"
	"e2ekit/internal/execution"
	"e2ekit/internal/fixtures"
	"e2ekit/internal/parser"
	"e2ekit/internal/resultsdb"
	"e2ekit/internal/storage"
	"e2ekit/internal/ui"
)

// Commands holds all CLI commands
type Commands struct {
	Run      *RunCommand
	List     *ListCommand
	Datasets *DatasetsCommand
	Faills   *FaillsCommand
	DB       *DBCommand

	log *logrus.Logger
}

// NewCommands creates all commands with dependencies. Files are read and
// written through fs.
func NewCommands(cfg *config.Config, catalog *execution.Catalog, log *logrus.Logger, fs afero.Fs, out io.Writer) *Commands {
	// Initialize dependencies
	scanner := discovery.NewScannerFs(fs, cfg.PathsToIgnore)
	filter := discovery.NewFilter()
	datasetParser := discovery.NewParserFs(fs)
	resultParser := parser.NewResultParser()
	jsonStorage := storage.NewJSONStorageFs(cfg, fs)
	formatter := ui.NewFormatter(cfg, jsonStorage, out)
	errorViewer := ui.NewErrorViewer(jsonStorage, out)
	files := fixtures.NewFiles(fs)
	publisher := resultsdb.NewPublisher(cfg, log)

	return &Commands{
		Run: &RunCommand{
			config:    cfg,
			catalog:   catalog,
			filter:    filter,
			parser:    resultParser,
			storage:   jsonStorage,
			formatter: formatter,
			viewer:    errorViewer,
			files:     files,
			publisher: publisher,
			log:       log,
			out:       out,
			progress:  true,
		},
		List:     NewListCommand(cfg, catalog, filter, jsonStorage, formatter, out),
		Datasets: NewDatasetsCommand(cfg, scanner, datasetParser, formatter, out),
		Faills:   NewFaillsCommand(jsonStorage, errorViewer),
		DB:       NewDBCommand(cfg, publisher, out),
		log:      log,
	}
}

// prepare loads the configuration for the parsed flags into cfg.
func (c *Commands) prepare(flags *cli.Flags, cfg *config.Config) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if flags.Verbose {
			c.log.SetLevel(logrus.DebugLevel)
		}
		loaded, err := config.Load(flags.ToConfigFlags(), config.Environ(cfg.ProjectPath), c.log)
		if err != nil {
			return err
		}
		loaded.ProjectPath = cfg.ProjectPath
		*cfg = *loaded
		return nil
	}
}

// Register registers all commands with cobra
func (c *Commands) Register(rootCmd *cobra.Command, flags *cli.Flags, cfg *config.Config) {
	rootCmd.PersistentFlags().StringVarP(&cfg.ProjectPath, "project", "C", config.DefaultProjectPath, "Project directory holding .env, fixtures and storage")
	rootCmd.PersistentFlags().StringVarP(&flags.Environment, "env", "e", "", "Environment profile to run against (default from E2E_ENVIRONMENT or stg)")
	rootCmd.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "Log debug output")
	flags.Retries = -1

	// Run command
	runCmd := &cobra.Command{
		Use:          "run",
		Short:        "Run end-to-end suites in parallel",
		Long:         "Run the registered suites on parallel workers, one unit at a time per suite, under a per-unit timeout",
		RunE:         c.Run.Execute,
		PreRunE:      c.prepare(flags, cfg),
		SilenceUsage: true,
	}
	runCmd.Flags().IntVarP(&flags.Processors, "processors", "p", 0, "Number of suites to run in parallel (default 4)")
	runCmd.Flags().StringVarP(&flags.NameFilter, "filter", "f", "", "Filter suites by name pattern (supports wildcards, e.g., 'login*' or '*cart*')")
	runCmd.Flags().StringVarP(&flags.Grep, "grep", "g", "", "Run only units whose title matches (wildcards, substrings or '@ID:C1,C2')")
	runCmd.Flags().IntVar(&flags.TestTimeout, "test-timeout", 0, "Max runtime of a unit in minutes (default 5)")
	runCmd.Flags().BoolVar(&flags.NoTestTimeout, "no-test-timeout", false, "Disable the unit and suite timeouts")
	runCmd.Flags().IntVar(&flags.Retries, "retries", -1, "Extra attempts for a failing unit (default 1)")
	runCmd.Flags().BoolVar(&flags.FailFast, "fail-fast", false, "Stop on first failure")
	runCmd.Flags().BoolVar(&flags.OnlyFailed, "failed", false, "Run only units that failed in the last run (from storage/test-results.json)")
	runCmd.Flags().BoolVar(&flags.OpenFaills, "open-faills", false, "Open the faills viewer when the run finishes with failures")
	runCmd.Flags().BoolVar(&flags.Publish, "publish", false, "Publish results to the MySQL results database")
	runCmd.Flags().StringVar(&flags.MetricsFile, "metrics-file", "", "Write Prometheus metrics to this file")
	rootCmd.AddCommand(runCmd)

	// List command
	listCmd := &cobra.Command{
		Use:     "list",
		Short:   "List registered suites",
		Long:    "List the registered suites and, optionally, their units without running them",
		RunE:    c.List.Execute,
		PreRunE: c.prepare(flags, cfg),
	}
	listCmd.Flags().StringVarP(&flags.NameFilter, "filter", "f", "", "Filter suites by name pattern (supports wildcards, e.g., 'login*' or '*cart*')")
	listCmd.Flags().StringVarP(&flags.Grep, "grep", "g", "", "Show only units whose title matches")
	listCmd.Flags().BoolVarP(&flags.TestCases, "test-cases", "c", false, "List units of every suite")
	rootCmd.AddCommand(listCmd)

	// Datasets command
	datasetsCmd := &cobra.Command{
		Use:     "datasets",
		Short:   "List dataset files and their entries",
		RunE:    c.Datasets.Execute,
		PreRunE: c.prepare(flags, cfg),
	}
	rootCmd.AddCommand(datasetsCmd)

	// Faills command
	faillsCmd := &cobra.Command{
		Use:     "faills",
		Short:   "View test failures interactively",
		Long:    "Display test failures from the last test run in an interactive viewer",
		RunE:    c.Faills.Execute,
		PreRunE: c.prepare(flags, cfg),
	}
	rootCmd.AddCommand(faillsCmd)

	// DB command
	dbCmd := &cobra.Command{
		Use:   "db",
		Short: "Manage the results database",
	}
	dbCmd.AddCommand(&cobra.Command{
		Use:     "init",
		Short:   "Create the results database and tables",
		RunE:    c.DB.Init,
		PreRunE: c.prepare(flags, cfg),
	})
	rootCmd.AddCommand(dbCmd)
}
