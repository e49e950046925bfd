// Package watchdog fails the currently running test unit when it outlives its
// configured maximum runtime.
package watchdog

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"
)

// DefaultLimit is the maximum runtime of a unit when none is configured.
const DefaultLimit = 5 * time.Minute

// Unit is a running test unit as seen by the watchdog.
type Unit interface {
	// ID identifies the unit. Retries of the same unit share the ID.
	ID() string
	// Done reports whether the current attempt reached a terminal state.
	Done() bool
	// Fail aborts the current attempt with err.
	Fail(err error)
}

// Tracker reports the unit the runtime is executing right now, or nil.
type Tracker interface {
	Current() Unit
}

// Watchdog owns the timer table for one test runtime.
type Watchdog struct {
	tracker  Tracker
	clock    clock.Clock
	limit    time.Duration
	disabled bool
	log      logrus.FieldLogger
	onFire   func(Unit, error)

	mu     sync.Mutex
	timers map[string]*armed
}

// armed is one entry of the timer table. Its address identifies the arming,
// so a callback can tell whether it was superseded.
type armed struct {
	timer     *clock.Timer
	startedAt time.Time
}

// Option configures a Watchdog
type Option func(*Watchdog)

// WithClock replaces the wall clock, mostly for tests.
func WithClock(c clock.Clock) Option {
	return func(w *Watchdog) { w.clock = c }
}

// WithLimit sets the maximum runtime. Non-positive values keep the default.
func WithLimit(d time.Duration) Option {
	return func(w *Watchdog) {
		if d > 0 {
			w.limit = d
		}
	}
}

// WithDisabled turns Arm into a no-op (the global no-timeout override).
func WithDisabled(disabled bool) Option {
	return func(w *Watchdog) { w.disabled = disabled }
}

// WithLogger sets the logger used to report fired timers.
func WithLogger(log logrus.FieldLogger) Option {
	return func(w *Watchdog) { w.log = log }
}

// WithOnFire registers a callback invoked right before a unit is failed.
func WithOnFire(fn func(Unit, error)) Option {
	return func(w *Watchdog) { w.onFire = fn }
}

// New creates a Watchdog for the runtime behind tracker.
func New(tracker Tracker, opts ...Option) *Watchdog {
	w := &Watchdog{
		tracker: tracker,
		clock:   clock.New(),
		limit:   DefaultLimit,
		log:     logrus.StandardLogger(),
		timers:  make(map[string]*armed),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Limit returns the configured maximum runtime.
func (w *Watchdog) Limit() time.Duration {
	return w.limit
}

// Arm starts watching u. Any pending timer, whether it belongs to u or to an
// older unit, is cancelled first.
func (w *Watchdog) Arm(u Unit) {
	if w.disabled {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.stopLocked()

	id := u.ID()
	a := &armed{startedAt: w.clock.Now()}
	a.timer = w.clock.AfterFunc(w.limit, func() {
		w.fire(u, id, a)
	})
	w.timers[id] = a
}

// Disarm cancels the timer armed for u, if any.
func (w *Watchdog) Disarm(u Unit) {
	w.mu.Lock()
	defer w.mu.Unlock()

	id := u.ID()
	if a, ok := w.timers[id]; ok {
		a.timer.Stop()
		delete(w.timers, id)
	}
}

// Stop cancels every pending timer.
func (w *Watchdog) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopLocked()
}

// Pending returns the number of armed timers.
func (w *Watchdog) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.timers)
}

func (w *Watchdog) stopLocked() {
	for id, a := range w.timers {
		a.timer.Stop()
		delete(w.timers, id)
	}
}

func (w *Watchdog) fire(u Unit, id string, a *armed) {
	w.mu.Lock()
	if current, ok := w.timers[id]; !ok || current != a {
		// superseded or disarmed while this callback was in flight
		w.mu.Unlock()
		return
	}
	delete(w.timers, id)
	w.mu.Unlock()

	running := w.tracker.Current()
	if running == nil || running.ID() != id {
		return
	}
	if u.Done() {
		return
	}
	elapsed := w.clock.Now().Sub(a.startedAt)
	if elapsed < w.limit {
		return
	}

	err := &TimeoutExceededError{Unit: id, Limit: w.limit}
	w.log.WithFields(logrus.Fields{
		"unit":    id,
		"limit":   w.limit,
		"elapsed": elapsed,
	}).Warn("test unit exceeded its max runtime")
	if w.onFire != nil {
		w.onFire(u, err)
	}
	u.Fail(err)
}
