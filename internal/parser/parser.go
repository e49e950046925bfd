package parser

import "e2ekit/internal/domain"

// Parser turns suite results into per-case failures
type Parser interface {
	ParseFailure(result domain.UnitResult) []domain.TestFailure
	ParseSuite(result domain.SuiteResult) []domain.TestFailure
	ParseTestCounts(result domain.SuiteResult) (passed, failed int)
}
