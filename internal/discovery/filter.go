package discovery

import (
	"path/filepath"
	"strings"

	"e2ekit/internal/title"
)

// Filter selects suites by name and units by title
type Filter struct{}

// NewFilter creates a new Filter
func NewFilter() *Filter {
	return &Filter{}
}

// FilterByName filters suite names by pattern using wildcard matching.
// Supports patterns like "login*" or "*checkout*"; patterns without wildcards match substrings.
func (f *Filter) FilterByName(names []string, pattern string) []string {
	if pattern == "" {
		return names
	}

	var filtered []string
	for _, name := range names {
		if match(pattern, name) {
			filtered = append(filtered, name)
		}
	}
	return filtered
}

// Grep returns a predicate over full unit titles, nil for an empty pattern.
// "@ID:C12" and "@ID:C1,C2" patterns match units tagged with one of those case ids.
func (f *Filter) Grep(pattern string) func(title string) bool {
	if pattern == "" {
		return nil
	}
	if ids, ok := caseIDs(pattern); ok {
		return func(t string) bool {
			for _, id := range title.CaseIDs(t) {
				if ids[id] {
					return true
				}
			}
			return false
		}
	}
	return func(t string) bool {
		return match(pattern, t)
	}
}

// caseIDs parses "@ID:C1,C2" patterns into a set.
func caseIDs(pattern string) (map[string]bool, bool) {
	rest, ok := strings.CutPrefix(pattern, "@ID:")
	if !ok || strings.ContainsAny(rest, "*?|") {
		return nil, false
	}
	ids := make(map[string]bool)
	for _, id := range strings.Split(rest, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids[id] = true
		}
	}
	return ids, len(ids) > 0
}

func match(pattern, s string) bool {
	// filepath.Match supports * and ? wildcards
	if matched, err := filepath.Match(pattern, s); err == nil && matched {
		return true
	}

	if !strings.ContainsAny(pattern, "*?") {
		return strings.Contains(s, pattern)
	}

	// Titles contain separators filepath.Match will not cross, so fall back to
	// requiring every literal part in order.
	if !strings.Contains(pattern, "*") {
		return false
	}
	rest := s
	hasPart := false
	for _, part := range strings.Split(pattern, "*") {
		if part == "" {
			continue
		}
		hasPart = true
		i := strings.Index(rest, part)
		if i < 0 {
			return false
		}
		rest = rest[i+len(part):]
	}
	return hasPart
}
