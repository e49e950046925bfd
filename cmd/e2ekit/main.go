package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"e2ekit/internal/cli"
	"e2ekit/internal/cli/commands"
	"e2ekit/internal/config"
	"e2ekit/internal/execution"
	"e2ekit/internal/specs/demo"
)

var version = "dev"

func main() {
	// Create root command
	rootCmd := &cobra.Command{
		Use:     "e2ekit",
		Short:   "End-to-end suite runner",
		Long:    `Run ID-tagged end-to-end test suites in parallel, with per-unit timeouts, data-driven groups and a failure viewer.`,
		Version: version,
		// errors are printed below, test failures already have a report
		SilenceErrors: true,
	}

	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Create initial config with defaults
	cfg := config.New()

	// Create flags struct (will be populated by command flags)
	var flags cli.Flags

	fs := afero.NewOsFs()
	catalog := execution.NewCatalog()
	demo.Register(catalog, cfg, fs)

	// Create commands with dependencies
	cmds := commands.NewCommands(cfg, catalog, log, fs, os.Stdout)

	// Register all commands
	cmds.Register(rootCmd, &flags, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Execute root command
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, commands.ErrTestsFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		stop()
		os.Exit(1)
	}
}
