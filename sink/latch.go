// Package sink contains the collectors that bridge the engine's
// asynchronous event streams into blocking reads. Each sink accumulates
// events delivered on engine goroutines and exposes a one-shot completion
// latch; accumulated results are only valid to read after the latch fires.
package sink

import (
	"context"
	"sync"
)

// latch is a one-shot completion signal. fire is safe to call any number of
// times from any goroutine; the channel closes exactly once.
type latch struct {
	once sync.Once
	done chan struct{}
}

func newLatch() *latch {
	return &latch{done: make(chan struct{})}
}

func (l *latch) fire() {
	l.once.Do(func() { close(l.done) })
}

// fired reports whether the latch has already been signaled.
func (l *latch) fired() bool {
	select {
	case <-l.done:
		return true
	default:
		return false
	}
}

// wait blocks until the latch fires. If the producer never signals
// completion this blocks forever; callers that need a bound use waitContext.
func (l *latch) wait() {
	<-l.done
}

func (l *latch) waitContext(ctx context.Context) error {
	select {
	case <-l.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
