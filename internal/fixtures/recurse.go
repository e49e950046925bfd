package fixtures

import (
	"context"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"

	"e2ekit/internal/steplog"
)

// RecurseOptions bound Recurse. Zero values use the defaults.
type RecurseOptions struct {
	Limit int           // max attempts, default 4
	Delay time.Duration // pause between attempts, default 300ms
	Clock clock.Clock
	Log   string // step logged after each attempt, empty for none
}

// RecurseLimitError is wrapped by Recurse when check never passed
type RecurseLimitError struct {
	Attempts int
}

func (e *RecurseLimitError) Error() string {
	return fmt.Sprintf("max number of iterations reached (%d)", e.Attempts)
}

func (o RecurseOptions) withDefaults() RecurseOptions {
	if o.Limit <= 0 {
		o.Limit = 4
	}
	if o.Delay <= 0 {
		o.Delay = 300 * time.Millisecond
	}
	if o.Clock == nil {
		o.Clock = clock.New()
	}
	return o
}

// Recurse runs action until check accepts its result, action fails, the
// attempt limit is hit, or ctx is done.
func Recurse[T any](ctx context.Context, action func(ctx context.Context) (T, error), check func(T) bool, opts RecurseOptions) (T, error) {
	opts = opts.withDefaults()
	log := steplog.FromContext(ctx)

	var last T
	for i := 1; i <= opts.Limit; i++ {
		v, err := action(ctx)
		if err != nil {
			return v, err
		}
		last = v
		if opts.Log != "" {
			log.Step(opts.Log, map[string]any{"attempt": i})
		}
		if check(v) {
			return v, nil
		}
		if i == opts.Limit {
			break
		}

		t := opts.Clock.Timer(opts.Delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return last, context.Cause(ctx)
		case <-t.C:
		}
	}
	return last, &RecurseLimitError{Attempts: opts.Limit}
}

// Iterate runs action for every item in order, pausing delay between items.
func Iterate[A any](ctx context.Context, items []A, action func(ctx context.Context, item A) error, opts RecurseOptions) error {
	opts = opts.withDefaults()
	log := steplog.FromContext(ctx)
	for i, item := range items {
		if i > 0 {
			t := opts.Clock.Timer(opts.Delay)
			select {
			case <-ctx.Done():
				t.Stop()
				return context.Cause(ctx)
			case <-t.C:
			}
		}
		if err := action(ctx, item); err != nil {
			return err
		}
		msg := opts.Log
		if msg == "" {
			msg = "Performed iteration"
		}
		log.Step(msg, map[string]any{"item": i + 1, "of": len(items)})
	}
	return nil
}
