// Package engine defines the boundary to the external test-framework
// execution engine. The engine is a black box: it accepts a filter or a set
// of serialized test cases, delivers discovery or execution events to the
// provided sink on its own goroutines, and signals completion through the
// sink exactly once.
package engine

import (
	"io"
	"time"

	"github.com/billrob/xunit/types"
)

// DiscoverySettings restricts what a Find call reports.
type DiscoverySettings struct {
	// ClassName, when non-empty, restricts discovery to the exact
	// fully-qualified class. Empty means the whole assembly.
	ClassName string
}

// ExecutionOptions carries the engine-level execution defaults for a session.
type ExecutionOptions struct {
	DiagnosticMessages bool
	MaxParallelThreads int
}

// DiscoveryEvents receives the discovery stream for one Find call.
type DiscoveryEvents interface {
	OnDiscovered(tc types.TestCase)
	OnComplete()
}

// ExecutionEvents receives the execution stream for one Execute call.
// Terminal per-test events are passed/failed/skipped; OnTestStarting is
// informational only.
type ExecutionEvents interface {
	OnTestStarting(name string)
	OnTestPassed(name string, duration time.Duration)
	OnTestFailed(name string, duration time.Duration, failure types.Failure)
	OnTestSkipped(name string, reason string)
	OnComplete()
}

// Engine drives a single test assembly. Find and Execute are fire-and-forget:
// a nil error means the engine accepted the request and will eventually call
// OnComplete on the sink, even if the stream produces zero events or is
// truncated by an internal failure. A non-nil error means the call itself
// failed and no events will be delivered.
type Engine interface {
	Find(sink DiscoveryEvents, settings DiscoverySettings) error
	Execute(serialized []string, sink ExecutionEvents, opts ExecutionOptions) error
	io.Closer
}
