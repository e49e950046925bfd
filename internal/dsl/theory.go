package dsl

import (
	"context"

	"e2ekit/internal/domain"
	"e2ekit/internal/title"
)

// Iteration is one data point of a theory.
type Iteration[T any] struct {
	IDs   any
	Title string
	Data  T
}

// Theory registers one unit per iteration, all sharing the same body and modifier.
func Theory[T any](r Registrar, iterations []Iteration[T], body func(ctx context.Context, data T) error, mode domain.Mode) {
	for _, it := range iterations {
		data := it.Data
		r.Register(title.Build(it.IDs, it.Title), func(ctx context.Context) error {
			return body(ctx, data)
		}, resolveMode(mode, nil))
	}
}
