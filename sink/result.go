package sink

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/billrob/xunit/engine"
	"github.com/billrob/xunit/host"
	"github.com/billrob/xunit/types"
)

var _ engine.ExecutionEvents = (*ResultSink)(nil)

// ResultSink consumes the execution event stream for one Run. For every
// terminal event it writes one progress line and one structured
// TestFinished notification to the host listener, and folds the outcome
// into the running aggregate state. Listener calls happen synchronously on
// the goroutine delivering the engine event.
type ResultSink struct {
	listener host.Listener
	expected int
	latch    *latch

	mu       sync.Mutex
	state    types.RunState
	finished int
}

// NewResultSink creates a result sink seeded with the caller's running
// state. expected is the number of cases handed to the engine; it only
// feeds the progress counter.
func NewResultSink(listener host.Listener, expected int, initial types.RunState) *ResultSink {
	if listener == nil {
		listener = host.NewNopListener()
	}
	return &ResultSink{
		listener: listener,
		expected: expected,
		latch:    newLatch(),
		state:    initial,
	}
}

// OnTestStarting implements the engine.ExecutionEvents interface.
func (s *ResultSink) OnTestStarting(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.latch.fired() {
		return
	}
	s.listener.WriteLine(fmt.Sprintf("START %s", name), host.CategoryInfo)
}

// OnTestPassed implements the engine.ExecutionEvents interface.
func (s *ResultSink) OnTestPassed(name string, duration time.Duration) {
	s.finish(name, types.OutcomePass, duration, nil,
		fmt.Sprintf("PASS %s (%s)", name, duration.Round(time.Millisecond)), host.CategoryInfo)
}

// OnTestFailed implements the engine.ExecutionEvents interface.
func (s *ResultSink) OnTestFailed(name string, duration time.Duration, failure types.Failure) {
	s.finish(name, types.OutcomeFail, duration, &failure,
		fmt.Sprintf("FAIL %s (%s): %s", name, duration.Round(time.Millisecond), failure.Message), host.CategoryError)
}

// OnTestSkipped implements the engine.ExecutionEvents interface.
func (s *ResultSink) OnTestSkipped(name string, reason string) {
	s.finish(name, types.OutcomeSkip, 0,
		nil, fmt.Sprintf("SKIP %s: %s", name, reason), host.CategoryWarning)
}

func (s *ResultSink) finish(name string, outcome types.Outcome, duration time.Duration, failure *types.Failure, line string, category host.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.latch.fired() {
		return
	}

	s.finished++
	if s.expected > 0 {
		line = fmt.Sprintf("[%d/%d] %s", s.finished, s.expected, line)
	}
	s.listener.WriteLine(line, category)
	s.listener.TestFinished(name, outcome, duration, failure)

	s.state = types.Aggregate(s.state, types.StateForOutcome(outcome))
}

// OnComplete signals the end of the execution stream.
func (s *ResultSink) OnComplete() {
	s.latch.fire()
}

// Wait blocks until the engine signals completion.
func (s *ResultSink) Wait() {
	s.latch.wait()
}

// WaitContext blocks until completion or until ctx expires.
func (s *ResultSink) WaitContext(ctx context.Context) error {
	return s.latch.waitContext(ctx)
}

// State returns the running aggregate. Monotonic at all times; final once
// completion has been signaled.
func (s *ResultSink) State() types.RunState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Finished returns how many terminal events have been folded in.
func (s *ResultSink) Finished() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finished
}

// Close releases the sink, firing the latch so no waiter leaks. Idempotent.
func (s *ResultSink) Close() error {
	s.latch.fire()
	return nil
}
