package commands

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"e2ekit/internal/config"
	"e2ekit/internal/discovery"
	"e2ekit/internal/execution"
	"e2ekit/internal/storage"
	"e2ekit/internal/ui"
)

// ListCommand handles the list command
type ListCommand struct {
	config    *config.Config
	catalog   *execution.Catalog
	filter    *discovery.Filter
	storage   storage.Storage
	formatter *ui.Formatter
	out       io.Writer
}

// NewListCommand creates a new ListCommand
func NewListCommand(
	cfg *config.Config,
	catalog *execution.Catalog,
	filter *discovery.Filter,
	st storage.Storage,
	formatter *ui.Formatter,
	out io.Writer,
) *ListCommand {
	return &ListCommand{
		config:    cfg,
		catalog:   catalog,
		filter:    filter,
		storage:   st,
		formatter: formatter,
		out:       out,
	}
}

// Execute runs the command
func (lc *ListCommand) Execute(cmd *cobra.Command, args []string) error {
	names := lc.filter.FilterByName(lc.catalog.Names(), lc.config.Flags.NameFilter)
	defs, err := lc.catalog.Definitions(names)
	if err != nil {
		return err
	}
	keep := lc.filter.Grep(lc.config.Flags.Grep)

	var suites []ui.SuiteListing
	for _, def := range defs {
		suite, err := execution.Build(def)
		if err != nil {
			return err
		}
		listing := ui.SuiteListing{Name: def.Name}
		for _, u := range suite.Units() {
			if keep == nil || keep(u.Title()) {
				listing.Units = append(listing.Units, ui.UnitListing{Title: u.Title(), Mode: u.Mode()})
			}
		}
		if keep != nil && len(listing.Units) == 0 {
			continue
		}
		suites = append(suites, listing)
	}

	if len(suites) == 0 {
		fmt.Fprintln(lc.out, color.YellowString("No suites found"))
		return nil
	}

	lc.formatter.PrintSuiteList(suites, lc.config.Flags.TestCases, lc.failedCases())
	return nil
}

// failedCases returns the unresolved failed case ids of the last run, if any.
func (lc *ListCommand) failedCases() map[string]struct{} {
	output, err := lc.storage.Load()
	if err != nil {
		return nil
	}
	failed := make(map[string]struct{})
	for _, f := range output.Details {
		if f.CaseID != "" && !f.Resolved {
			failed[f.CaseID] = struct{}{}
		}
	}
	return failed
}
