package cli

import "e2ekit/internal/config"

// Flags holds command-line flags
type Flags struct {
	Processors    int
	NameFilter    string
	Grep          string
	Environment   string
	TestTimeout   int
	NoTestTimeout bool
	Retries       int
	FailFast      bool
	OnlyFailed    bool
	OpenFaills    bool
	TestCases     bool
	Publish       bool
	MetricsFile   string
	Verbose       bool
}

// ToConfigFlags converts CLI flags to config flags
func (f *Flags) ToConfigFlags() config.Flags {
	return config.Flags{
		Processors:    f.Processors,
		NameFilter:    f.NameFilter,
		Grep:          f.Grep,
		Environment:   f.Environment,
		TestTimeout:   f.TestTimeout,
		NoTestTimeout: f.NoTestTimeout,
		Retries:       f.Retries,
		FailFast:      f.FailFast,
		OnlyFailed:    f.OnlyFailed,
		OpenFaills:    f.OpenFaills,
		TestCases:     f.TestCases,
		Publish:       f.Publish,
		MetricsFile:   f.MetricsFile,
		Verbose:       f.Verbose,
	}
}
