package execution

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"e2ekit/internal/domain"
	"e2ekit/internal/dsl"
	"e2ekit/internal/steplog"
	"e2ekit/internal/watchdog"
)

// TitleSeparator joins describe blocks and unit titles into a full title.
const TitleSeparator = " > "

// Unit is one registered test body of a suite.
type Unit struct {
	id    string
	title string
	body  dsl.Body
	mode  domain.Mode

	mu      sync.Mutex
	attempt int
	done    bool
	cancel  context.CancelCauseFunc
}

// ID identifies the unit inside its suite. Retries keep the ID.
func (u *Unit) ID() string { return u.id }

// Title returns the full title, describe path included.
func (u *Unit) Title() string { return u.title }

// Mode returns the run modifier the unit was registered with.
func (u *Unit) Mode() domain.Mode { return u.mode }

// Attempt returns the 1-based number of the current or last attempt.
func (u *Unit) Attempt() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.attempt
}

// Done reports whether the current attempt has settled.
func (u *Unit) Done() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.done
}

// Fail aborts the running attempt with err. It is a no-op once the attempt settled.
func (u *Unit) Fail(err error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.done || u.cancel == nil {
		return
	}
	u.cancel(err)
}

func (u *Unit) begin(n int, cancel context.CancelCauseFunc) {
	u.mu.Lock()
	u.attempt = n
	u.done = false
	u.cancel = cancel
	u.mu.Unlock()
}

func (u *Unit) settle() {
	u.mu.Lock()
	u.done = true
	u.cancel = nil
	u.mu.Unlock()
}

// Suite collects units registered by a suite definition and runs them one at a time.
type Suite struct {
	name    string
	log     logrus.FieldLogger
	retries int
	bail    bool

	path   []string
	units  []*Unit
	before []func(*Unit)
	after  []func(*Unit)

	mu      sync.Mutex
	current *Unit
}

// SuiteOption configures a Suite
type SuiteOption func(*Suite)

// WithRetries sets how many times a failing unit is re-run.
func WithRetries(n int) SuiteOption {
	return func(s *Suite) {
		if n >= 0 {
			s.retries = n
		}
	}
}

// WithBail skips the remaining units after the first failure.
func WithBail(bail bool) SuiteOption {
	return func(s *Suite) { s.bail = bail }
}

// WithSuiteLogger sets the logger step logs are forwarded to.
func WithSuiteLogger(log logrus.FieldLogger) SuiteOption {
	return func(s *Suite) {
		if log != nil {
			s.log = log
		}
	}
}

// NewSuite creates an empty suite.
func NewSuite(name string, opts ...SuiteOption) *Suite {
	s := &Suite{name: name, log: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the suite name
func (s *Suite) Name() string { return s.name }

// Describe groups the units registered by fn under name.
func (s *Suite) Describe(name string, fn func()) {
	s.path = append(s.path, name)
	defer func() { s.path = s.path[:len(s.path)-1] }()
	fn()
}

// Register implements dsl.Registrar.
func (s *Suite) Register(title string, body dsl.Body, mode domain.Mode) {
	full := strings.Join(append(append([]string(nil), s.path...), title), TitleSeparator)
	s.units = append(s.units, &Unit{
		id:    fmt.Sprintf("%s#%d", s.name, len(s.units)),
		title: full,
		body:  body,
		mode:  mode,
	})
}

// OnBeforeRun adds a hook called before every attempt of every unit.
func (s *Suite) OnBeforeRun(fn func(*Unit)) { s.before = append(s.before, fn) }

// OnAfterRun adds a hook called after every attempt settled.
func (s *Suite) OnAfterRun(fn func(*Unit)) { s.after = append(s.after, fn) }

// Units returns the registered units in registration order.
func (s *Suite) Units() []*Unit {
	return append([]*Unit(nil), s.units...)
}

// Current implements watchdog.Tracker.
func (s *Suite) Current() watchdog.Unit {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	return s.current
}

func (s *Suite) setCurrent(u *Unit) {
	s.mu.Lock()
	s.current = u
	s.mu.Unlock()
}

// Run executes the selected units sequentially and returns one result per unit.
// keep drops units by full title when non-nil. Units marked only exclude the rest.
func (s *Suite) Run(ctx context.Context, keep func(title string) bool) []domain.UnitResult {
	units := s.selected(keep)
	results := make([]domain.UnitResult, 0, len(units))

	bailed := false
	for _, u := range units {
		if bailed || ctx.Err() != nil || u.mode.IsSkip() {
			results = append(results, domain.UnitResult{Suite: s.name, Title: u.title, Status: domain.StatusSkipped})
			continue
		}
		res := s.runUnit(ctx, u)
		results = append(results, res)
		if res.Status == domain.StatusFailed && s.bail {
			bailed = true
		}
	}
	return results
}

func (s *Suite) selected(keep func(string) bool) []*Unit {
	var kept, only []*Unit
	for _, u := range s.units {
		if keep != nil && !keep(u.title) {
			continue
		}
		kept = append(kept, u)
		if u.mode.IsOnly() {
			only = append(only, u)
		}
	}
	if len(only) > 0 {
		return only
	}
	return kept
}

func (s *Suite) runUnit(ctx context.Context, u *Unit) domain.UnitResult {
	log := s.log.WithFields(logrus.Fields{"suite": s.name, "unit": u.title})
	rec := steplog.NewRecorder(steplog.New(log))
	res := domain.UnitResult{Suite: s.name, Title: u.title}

	for n := 1; n <= s.retries+1; n++ {
		rec.Reset()
		start := time.Now()
		err := s.attempt(ctx, u, n, rec)
		res.Duration += time.Since(start)
		res.Attempts = n
		res.Error = err
		if err == nil || ctx.Err() != nil {
			break
		}
		if n <= s.retries {
			log.WithError(err).WithField("attempt", n).Warn("Unit failed, retrying")
		}
	}

	res.Steps = rec.Steps()
	res.Status = domain.StatusPassed
	if res.Error != nil {
		res.Status = domain.StatusFailed
	}
	return res
}

// attempt runs the body once. It returns as soon as the attempt context is
// cancelled, even if the body keeps running.
func (s *Suite) attempt(ctx context.Context, u *Unit, n int, rec *steplog.Recorder) error {
	actx, cancel := context.WithCancelCause(steplog.WithLogger(ctx, rec))
	defer cancel(nil)

	u.begin(n, cancel)
	s.setCurrent(u)
	for _, fn := range s.before {
		fn(u)
	}

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("panic: %v", r)
			}
		}()
		done <- u.body(actx)
	}()

	var err error
	select {
	case err = <-done:
		if err != nil && actx.Err() != nil {
			err = context.Cause(actx)
		}
	case <-actx.Done():
		err = context.Cause(actx)
	}

	u.settle()
	s.setCurrent(nil)
	for _, fn := range s.after {
		fn(u)
	}
	return err
}
