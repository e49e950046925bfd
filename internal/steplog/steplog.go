// Package steplog records human-readable progress steps for running test units.
package steplog

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"e2ekit/internal/domain"
)

// Logger consumes a step message together with structured extras.
type Logger interface {
	Step(msg string, fields map[string]any)
}

// LogrusLogger writes steps to a logrus logger at info level.
type LogrusLogger struct {
	log logrus.FieldLogger
}

// New returns a Logger backed by log.
func New(log logrus.FieldLogger) *LogrusLogger {
	return &LogrusLogger{log: log}
}

// Step logs msg with fields.
func (l *LogrusLogger) Step(msg string, fields map[string]any) {
	l.log.WithFields(logrus.Fields(fields)).Info(msg)
}

// Recorder keeps every step it sees and forwards it to the next logger.
type Recorder struct {
	next Logger
	now  func() time.Time

	mu    sync.Mutex
	steps []domain.Step
}

// NewRecorder creates a Recorder forwarding to next, which may be nil.
func NewRecorder(next Logger) *Recorder {
	return &Recorder{next: next, now: time.Now}
}

// Step records and forwards a step.
func (r *Recorder) Step(msg string, fields map[string]any) {
	r.mu.Lock()
	r.steps = append(r.steps, domain.Step{Message: msg, Fields: fields, At: r.now()})
	r.mu.Unlock()
	if r.next != nil {
		r.next.Step(msg, fields)
	}
}

// Steps returns a copy of the recorded steps.
func (r *Recorder) Steps() []domain.Step {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Step(nil), r.steps...)
}

// Reset drops recorded steps, e.g. before a retry.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.steps = nil
	r.mu.Unlock()
}

type ctxKey struct{}

// WithLogger attaches l to ctx.
func WithLogger(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the Logger attached to ctx, falling back to the
// standard logrus logger.
func FromContext(ctx context.Context) Logger {
	if l, ok := ctx.Value(ctxKey{}).(Logger); ok && l != nil {
		return l
	}
	return New(logrus.StandardLogger())
}
