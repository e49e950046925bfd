package commands

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"e2ekit/internal/config"
	"e2ekit/internal/resultsdb"
)

// DBCommand handles the db commands
type DBCommand struct {
	config    *config.Config
	publisher *resultsdb.Publisher
	out       io.Writer
}

// NewDBCommand creates a new DBCommand
func NewDBCommand(cfg *config.Config, publisher *resultsdb.Publisher, out io.Writer) *DBCommand {
	return &DBCommand{config: cfg, publisher: publisher, out: out}
}

// Init creates the results database and tables
func (dc *DBCommand) Init(cmd *cobra.Command, args []string) error {
	if err := dc.publisher.EnsureSchema(cmd.Context()); err != nil {
		return fmt.Errorf("failed to prepare results database: %w", err)
	}
	s := dc.publisher.Settings()
	fmt.Fprintln(dc.out, color.GreenString("✓ Results database %s ready on %s:%s", s.Database, s.Host, s.Port))
	return nil
}
