// Package dsl registers ID-tagged, optionally data-driven test units with a
// test runtime.
package dsl

import (
	"context"

	"e2ekit/internal/domain"
	"e2ekit/internal/title"
)

// Body is the code of a test unit. It should return once ctx is cancelled.
type Body func(ctx context.Context) error

// Registrar is the registration side of a test runtime.
type Registrar interface {
	Register(title string, body Body, mode domain.Mode)
}

// Case describes a single test unit.
type Case struct {
	IDs       any // string, integer or a (nested) slice of those
	Title     string
	Mode      domain.Mode
	Test      Body
	Condition func() bool // evaluated at registration time
}

// TestCase registers exactly one unit for c.
func TestCase(r Registrar, c Case) {
	r.Register(title.Build(c.IDs, c.Title), c.Test, resolveMode(c.Mode, c.Condition))
}

func resolveMode(mode domain.Mode, condition func() bool) domain.Mode {
	switch {
	case mode.IsOnly():
		return domain.ModeOnly
	case mode.IsSkip():
		return domain.ModeSkip
	case condition != nil && !condition():
		return domain.ModeSkip
	}
	return domain.ModeNone
}
