package ui

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"e2ekit/internal/config"
	"e2ekit/internal/discovery"
	"e2ekit/internal/domain"
	"e2ekit/internal/storage"
	"e2ekit/internal/title"
)

// Formatter formats and displays output
type Formatter struct {
	config  *config.Config
	storage storage.Storage
	out     io.Writer
}

// NewFormatter creates a new Formatter writing to out
func NewFormatter(cfg *config.Config, store storage.Storage, out io.Writer) *Formatter {
	return &Formatter{
		config:  cfg,
		storage: store,
		out:     out,
	}
}

// PrintMetaStats reads and displays meta statistics from the JSON results file
func (f *Formatter) PrintMetaStats() error {
	output, err := f.storage.Load()
	if err != nil {
		return err
	}
	meta := output.Meta

	t := table.NewWriter()
	t.SetOutputMirror(f.out)
	t.SetTitle("Test Execution Statistics")
	t.AppendHeader(table.Row{"METRIC", "VALUE"})
	t.SetColumnConfigs([]table.ColumnConfig{{Name: "VALUE", Align: text.AlignRight}})
	t.AppendRows([]table.Row{
		{"Run", meta.RunID},
		{"Environment", meta.Environment},
		{"Total Suites", meta.TotalSuites},
		{"Failed Suites", meta.FailedSuites},
		{"Total Units", meta.TotalUnits},
		{"Passed Units", meta.PassedUnits},
		{"Failed Units", meta.FailedUnits},
		{"Skipped Units", meta.SkippedUnits},
		{"Failed Test Cases", meta.FailedTestCases},
		{"Duration", fmt.Sprintf("%.2fs", meta.DurationSeconds)},
		{"Workers", meta.Workers},
		{"Timestamp", meta.Timestamp},
	})
	t.SetStyle(table.StyleRounded)
	t.Render()

	fmt.Fprintln(f.out)
	if meta.FailedSuites == 0 && meta.FailedUnits == 0 {
		fmt.Fprintln(f.out, color.GreenString("✓ All tests passed!"))
		return nil
	}
	fmt.Fprintln(f.out, color.RedString("✗ %d suite(s) failed with %d test case failure(s)", meta.FailedSuites, meta.FailedTestCases))
	fmt.Fprintln(f.out)
	f.printFailedTestsTree(output.Details)
	return nil
}

// PrintSuiteTable prints one row per suite of a finished run
func (f *Formatter) PrintSuiteTable(results []domain.SuiteResult, duration time.Duration) {
	t := table.NewWriter()
	t.SetOutputMirror(f.out)
	t.SetTitle("Suites")
	t.AppendHeader(table.Row{"SUITE", "WORKER", "DURATION", "UNITS", "PASSED", "FAILED", "SKIPPED", "STATUS"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "SUITE", WidthMax: 80, WidthMaxEnforcer: text.WrapSoft},
		{Name: "DURATION", Align: text.AlignRight},
		{Name: "UNITS", Align: text.AlignRight},
		{Name: "PASSED", Align: text.AlignRight},
		{Name: "FAILED", Align: text.AlignRight},
		{Name: "SKIPPED", Align: text.AlignRight},
	})

	var units, passed, failed, skipped int
	allPassed := true
	for _, r := range results {
		p, fl, s := r.Counts()
		units += len(r.Units)
		passed += p
		failed += fl
		skipped += s
		status := "PASS"
		if !r.Success() {
			status = "FAIL"
			allPassed = false
		}
		t.AppendRow(table.Row{r.Name, r.WorkerID, r.Duration.Round(time.Millisecond), len(r.Units), p, fl, s, status})
	}

	overall := "PASS"
	if !allPassed {
		overall = "FAIL"
	}
	t.AppendFooter(table.Row{"TOTAL", "", duration.Round(time.Millisecond), units, passed, failed, skipped, overall})

	if allPassed {
		t.SetStyle(table.StyleColoredBlackOnGreenWhite)
	} else {
		t.SetStyle(table.StyleColoredBlackOnRedWhite)
	}
	if color.NoColor {
		t.SetStyle(table.StyleDefault)
	}
	t.Render()
}

// printFailedTestsTree prints failures grouped by suite, then unit title
func (f *Formatter) printFailedTestsTree(failures []domain.TestFailure) {
	if len(failures) == 0 {
		return
	}

	bySuite := make(map[string][]domain.TestFailure)
	for _, failure := range failures {
		bySuite[failure.Suite] = append(bySuite[failure.Suite], failure)
	}
	suites := make([]string, 0, len(bySuite))
	for s := range bySuite {
		suites = append(suites, s)
	}
	sort.Strings(suites)

	for i, suite := range suites {
		lastSuite := i == len(suites)-1
		fmt.Fprintln(f.out, color.CyanString("%s%s", branch(lastSuite), suite))

		// failures of one multi-id unit share its title
		var titles []string
		byTitle := make(map[string][]domain.TestFailure)
		for _, failure := range bySuite[suite] {
			if _, ok := byTitle[failure.Title]; !ok {
				titles = append(titles, failure.Title)
			}
			byTitle[failure.Title] = append(byTitle[failure.Title], failure)
		}

		for j, t := range titles {
			lastTitle := j == len(titles)-1
			prefix := indent(lastSuite)
			name := t
			if name == "" {
				name = "(suite)"
			}
			fmt.Fprintln(f.out, prefix+branch(lastTitle)+color.YellowString(name))

			group := byTitle[t]
			msg := group[0].Message
			if first, _, ok := strings.Cut(msg, "\n"); ok {
				msg = first
			}
			marker := ""
			if group[0].TimedOut {
				marker = " " + color.MagentaString("[timeout]")
			}
			fmt.Fprintln(f.out, prefix+indent(lastTitle)+branch(true)+color.RedString(msg)+marker)
		}
	}
}

func branch(last bool) string {
	if last {
		return "└── "
	}
	return "├── "
}

func indent(last bool) string {
	if last {
		return "    "
	}
	return "│   "
}

// UnitListing is a registered unit as shown by the list command
type UnitListing struct {
	Title string
	Mode  domain.Mode
}

// SuiteListing is a suite as shown by the list command
type SuiteListing struct {
	Name  string
	Units []UnitListing
}

// PrintSuiteList prints suites, optionally with their units.
// failedCases is optional; units tagged with a case id in this set are marked with [F] in red (from last run).
func (f *Formatter) PrintSuiteList(suites []SuiteListing, showUnits bool, failedCases map[string]struct{}) {
	fmt.Fprintln(f.out, color.GreenString("Found %d suite(s):\n", len(suites)))

	for i, suite := range suites {
		lastSuite := i == len(suites)-1
		fmt.Fprintln(f.out, color.CyanString("%s%s", branch(lastSuite), suite.Name)+suiteMarker(suite, failedCases))
		if !showUnits {
			continue
		}

		if len(suite.Units) == 0 {
			fmt.Fprintln(f.out, indent(lastSuite)+branch(true)+color.RedString("(no units registered)"))
		}
		for j, u := range suite.Units {
			line := color.YellowString(u.Title)
			if u.Mode != domain.ModeNone && u.Mode != "" {
				line += " " + color.BlueString("[%s]", u.Mode)
			}
			if failed(u.Title, failedCases) {
				line += " " + color.RedString("[F]")
			}
			fmt.Fprintln(f.out, indent(lastSuite)+branch(j == len(suite.Units)-1)+line)
		}

		// Add spacing between suites (except for the last one)
		if !lastSuite {
			fmt.Fprintln(f.out)
		}
	}
}

func suiteMarker(suite SuiteListing, failedCases map[string]struct{}) string {
	for _, u := range suite.Units {
		if failed(u.Title, failedCases) {
			return " " + color.RedString("[F]")
		}
	}
	return ""
}

func failed(unitTitle string, failedCases map[string]struct{}) bool {
	if len(failedCases) == 0 {
		return false
	}
	for _, id := range title.CaseIDs(unitTitle) {
		if _, ok := failedCases[id]; ok {
			return true
		}
	}
	return false
}

// DatasetListing is a dataset file and its entries
type DatasetListing struct {
	Path    string
	Entries []discovery.EntrySummary
	Err     error
}

// PrintDatasets prints dataset files and the entries a group would run from each
func (f *Formatter) PrintDatasets(datasets []DatasetListing) {
	fmt.Fprintln(f.out, color.GreenString("Found %d dataset file(s):\n", len(datasets)))

	for i, ds := range datasets {
		last := i == len(datasets)-1
		fmt.Fprintln(f.out, color.CyanString("%s%s", branch(last), ds.Path))
		if ds.Err != nil {
			fmt.Fprintln(f.out, indent(last)+branch(true)+color.RedString("%v", ds.Err))
			continue
		}
		for j, e := range ds.Entries {
			line := color.YellowString(e.Title)
			if e.Mode != domain.ModeNone && e.Mode != "" {
				line += " " + color.BlueString("[%s]", e.Mode)
			}
			fmt.Fprintln(f.out, indent(last)+branch(j == len(ds.Entries)-1)+line)
		}
	}
}
