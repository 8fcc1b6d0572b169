package sink

import (
	"context"
	"sync"

	"github.com/billrob/xunit/engine"
	"github.com/billrob/xunit/types"
)

var _ engine.DiscoveryEvents = (*DiscoverySink)(nil)

// DiscoverySink accumulates discovered test cases in delivery order.
// No dedup: the sequence is exactly the event stream up to completion.
type DiscoverySink struct {
	latch *latch

	// mu guards cases; events arrive on engine goroutines
	mu    sync.Mutex
	cases []types.TestCase
}

// NewDiscoverySink creates an empty discovery sink.
func NewDiscoverySink() *DiscoverySink {
	return &DiscoverySink{latch: newLatch()}
}

// OnDiscovered appends one discovered case. Events arriving after the
// completion signal are ignored.
func (s *DiscoverySink) OnDiscovered(tc types.TestCase) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.latch.fired() {
		return
	}
	s.cases = append(s.cases, tc)
}

// OnComplete signals the end of the discovery stream. Signaled exactly once
// even if the engine calls it repeatedly.
func (s *DiscoverySink) OnComplete() {
	s.latch.fire()
}

// Wait blocks until the engine signals completion.
func (s *DiscoverySink) Wait() {
	s.latch.wait()
}

// WaitContext blocks until completion or until ctx expires.
func (s *DiscoverySink) WaitContext(ctx context.Context) error {
	return s.latch.waitContext(ctx)
}

// Results returns the accumulated cases. Only valid after completion.
func (s *DiscoverySink) Results() []types.TestCase {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.TestCase, len(s.cases))
	copy(out, s.cases)
	return out
}

// Close releases the sink. It fires the latch so no waiter is left blocked
// when a session is torn down mid-operation. Idempotent.
func (s *DiscoverySink) Close() error {
	s.latch.fire()
	return nil
}
