package fixtures

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"e2ekit/internal/steplog"
)

func TestRecurse(t *testing.T) {
	fast := RecurseOptions{Delay: time.Millisecond}

	t.Run("stops when check passes", func(t *testing.T) {
		calls := 0
		v, err := Recurse(context.Background(), func(context.Context) (int, error) {
			calls++
			return calls, nil
		}, func(n int) bool { return n == 3 }, fast)
		require.NoError(t, err)
		assert.Equal(t, 3, v)
	})

	t.Run("limit", func(t *testing.T) {
		opts := fast
		opts.Limit = 2
		v, err := Recurse(context.Background(), func(context.Context) (string, error) {
			return "pending", nil
		}, func(s string) bool { return s == "done" }, opts)

		var limitErr *RecurseLimitError
		require.ErrorAs(t, err, &limitErr)
		assert.Equal(t, 2, limitErr.Attempts)
		assert.Equal(t, "pending", v)
	})

	t.Run("action error", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := Recurse(context.Background(), func(context.Context) (int, error) {
			return 0, boom
		}, func(int) bool { return true }, fast)
		assert.Same(t, boom, err)
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		_, err := Recurse(ctx, func(context.Context) (int, error) {
			cancel()
			return 0, nil
		}, func(int) bool { return false }, RecurseOptions{Delay: time.Hour})
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("logs attempts", func(t *testing.T) {
		rec := steplog.NewRecorder(nil)
		ctx := steplog.WithLogger(context.Background(), rec)
		opts := fast
		opts.Log = "Polled export"
		_, err := Recurse(ctx, func(context.Context) (bool, error) { return true, nil }, func(b bool) bool { return b }, opts)
		require.NoError(t, err)
		require.Len(t, rec.Steps(), 1)
		assert.Equal(t, "Polled export", rec.Steps()[0].Message)
	})
}

func TestIterate(t *testing.T) {
	rec := steplog.NewRecorder(nil)
	ctx := steplog.WithLogger(context.Background(), rec)

	var seen []string
	err := Iterate(ctx, []string{"a", "b", "c"}, func(_ context.Context, s string) error {
		seen = append(seen, s)
		if s == "b" {
			return errors.New("stop at b")
		}
		return nil
	}, RecurseOptions{Delay: time.Millisecond})

	assert.EqualError(t, err, "stop at b")
	assert.Equal(t, []string{"a", "b"}, seen)
	require.Len(t, rec.Steps(), 1)
	assert.Equal(t, "Performed iteration", rec.Steps()[0].Message)
	assert.Equal(t, map[string]any{"item": 1, "of": 3}, rec.Steps()[0].Fields)
}
