package dsl

import (
	"context"
	"fmt"

	"e2ekit/internal/domain"
	"e2ekit/internal/steplog"
)

// Entry is one titled payload of a data-driven group.
type Entry[T any] struct {
	Title string      `yaml:"title" json:"title"`
	Mode  domain.Mode `yaml:"mode,omitempty" json:"mode,omitempty"`
	Data  T           `yaml:"data" json:"data"`
}

// Group describes a unit that runs Test once per dataset entry.
type Group[T any] struct {
	IDs       any
	Title     string
	Mode      domain.Mode
	Condition func() bool
	Data      []Entry[T]
	Test      func(ctx context.Context, entry Entry[T]) error
}

// EmptyDatasetError is returned by a group unit whose dataset has no entries.
type EmptyDatasetError struct {
	Title string
}

func (e *EmptyDatasetError) Error() string {
	return fmt.Sprintf("test group %q needs at least one dataset entry", e.Title)
}

// Resolve returns the entries a group actually runs: the entries marked only
// when there is at least one, otherwise every entry not marked skip. Order is
// preserved.
func Resolve[T any](entries []Entry[T]) []Entry[T] {
	var only, rest []Entry[T]
	for _, e := range entries {
		switch {
		case e.Mode.IsOnly():
			only = append(only, e)
		case !e.Mode.IsSkip():
			rest = append(rest, e)
		}
	}
	if len(only) > 0 {
		return only
	}
	return rest
}

// TestGroup registers one unit that runs g.Test over the resolved dataset, one
// entry after the other. The first failing entry aborts the remaining ones and
// its error is returned as-is.
func TestGroup[T any](r Registrar, g Group[T]) {
	body := func(ctx context.Context) error {
		if len(g.Data) < 1 {
			return &EmptyDatasetError{Title: g.Title}
		}

		log := steplog.FromContext(ctx)
		run := Resolve(g.Data)
		if len(run) == 0 {
			log.Step("All dataset entries are skipped", map[string]any{"entries": len(g.Data)})
			return nil
		}

		for i, entry := range run {
			if ctx.Err() != nil {
				return context.Cause(ctx)
			}
			log.Step(entry.Title, map[string]any{
				"entry": i + 1,
				"of":    len(run),
				"mode":  entry.Mode.String(),
			})
			if err := g.Test(ctx, entry); err != nil {
				return err
			}
		}
		return nil
	}

	TestCase(r, Case{
		IDs:       g.IDs,
		Title:     g.Title,
		Mode:      g.Mode,
		Test:      body,
		Condition: g.Condition,
	})
}
