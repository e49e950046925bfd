package commands

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"e2ekit/internal/config"
	"e2ekit/internal/discovery"
	"e2ekit/internal/ui"
)

// DatasetsCommand handles the datasets command
type DatasetsCommand struct {
	config    *config.Config
	scanner   *discovery.Scanner
	parser    *discovery.Parser
	formatter *ui.Formatter
	out       io.Writer
}

// NewDatasetsCommand creates a new DatasetsCommand
func NewDatasetsCommand(cfg *config.Config, scanner *discovery.Scanner, parser *discovery.Parser, formatter *ui.Formatter, out io.Writer) *DatasetsCommand {
	return &DatasetsCommand{
		config:    cfg,
		scanner:   scanner,
		parser:    parser,
		formatter: formatter,
		out:       out,
	}
}

// Execute runs the command
func (dc *DatasetsCommand) Execute(cmd *cobra.Command, args []string) error {
	root := dc.config.GetFixturesPath()
	files, err := dc.scanner.Scan(root)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Fprintln(dc.out, color.YellowString("No datasets found"))
		return nil
	}

	listings := make([]ui.DatasetListing, 0, len(files))
	for _, file := range files {
		entries, err := dc.parser.FindEntries(file)
		path, relErr := filepath.Rel(root, file)
		if relErr != nil {
			path = file
		}
		listings = append(listings, ui.DatasetListing{Path: path, Entries: entries, Err: err})
	}

	dc.formatter.PrintDatasets(listings)
	return nil
}
