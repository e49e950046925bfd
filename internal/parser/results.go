package parser

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/acarl005/stripansi"

	"e2ekit/internal/domain"
	"e2ekit/internal/title"
	"e2ekit/internal/watchdog"
)

// ResultParser extracts failures from unit results using the @ID title tags
type ResultParser struct{}

// NewResultParser creates a new ResultParser
func NewResultParser() *ResultParser {
	return &ResultParser{}
}

// ParseFailure returns one failure per case id of a failed unit. Untagged units
// produce a single failure with an empty case id. Non-failed units produce none.
func (p *ResultParser) ParseFailure(result domain.UnitResult) []domain.TestFailure {
	if result.Status != domain.StatusFailed {
		return nil
	}

	base := domain.TestFailure{
		Suite:    result.Suite,
		Title:    result.Title,
		Message:  message(result.Error),
		Steps:    steps(result.Steps),
		Attempts: result.Attempts,
	}
	var timeout *watchdog.TimeoutExceededError
	base.TimedOut = errors.As(result.Error, &timeout)

	ids := title.CaseIDs(result.Title)
	if len(ids) == 0 {
		return []domain.TestFailure{base}
	}
	failures := make([]domain.TestFailure, 0, len(ids))
	for _, id := range ids {
		f := base
		f.CaseID = id
		failures = append(failures, f)
	}
	return failures
}

// ParseSuite returns the failures of every unit, plus one for a suite-level error.
func (p *ResultParser) ParseSuite(result domain.SuiteResult) []domain.TestFailure {
	var failures []domain.TestFailure
	for _, u := range result.Units {
		failures = append(failures, p.ParseFailure(u)...)
	}
	if result.Error != nil {
		failures = append(failures, domain.TestFailure{
			Suite:   result.Name,
			Message: message(result.Error),
		})
	}
	return failures
}

// ParseTestCounts counts passed and failed test cases of a suite.
// A unit counts once per case id, or once if untagged. Skipped units are not counted.
func (p *ResultParser) ParseTestCounts(result domain.SuiteResult) (passed, failed int) {
	for _, u := range result.Units {
		n := len(title.CaseIDs(u.Title))
		if n == 0 {
			n = 1
		}
		switch u.Status {
		case domain.StatusPassed:
			passed += n
		case domain.StatusFailed:
			failed += n
		}
	}
	return passed, failed
}

func message(err error) string {
	if err == nil {
		return ""
	}
	return strings.TrimSpace(stripansi.Strip(err.Error()))
}

func steps(in []domain.Step) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, s := range in {
		line := stripansi.Strip(s.Message)
		if len(s.Fields) > 0 {
			keys := make([]string, 0, len(s.Fields))
			for k := range s.Fields {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				line += fmt.Sprintf(" %s=%v", k, s.Fields[k])
			}
		}
		out = append(out, line)
	}
	return out
}

var _ Parser = (*ResultParser)(nil)
