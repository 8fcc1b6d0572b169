// Package xunit bridges an IDE-hosted test runner UI to an external
// test-framework execution engine. A session is bound to one target
// assembly: the orchestrator discovers test cases, optionally filters them
// by class or method, drives execution, streams progress to the host
// listener, and returns a monotonic aggregate run state.
//
// All public operations are blocking. The engine delivers its discovery and
// execution events asynchronously on its own goroutines; each operation
// hands the engine a fresh sink and waits on the sink's one-shot completion
// latch before reading results.
package xunit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/billrob/xunit/config"
	"github.com/billrob/xunit/engine"
	"github.com/billrob/xunit/host"
	"github.com/billrob/xunit/metrics"
	"github.com/billrob/xunit/selector"
	"github.com/billrob/xunit/sink"
	"github.com/billrob/xunit/types"
)

// Config holds configuration for creating a new test runner session.
type Config struct {
	AssemblyPath string
	Engine       engine.Engine     // may be nil; operations then fail with ErrNotInitialized
	Listener     host.Listener     // defaults to a no-op listener
	Resolver     selector.Resolver // defaults to selector.KeyResolver
	Settings     *config.Config    // defaults to config.Default()
	Log          *slog.Logger
}

// TestRunner is the session façade over one assembly and one engine.
// Operations are sequential: the runner is not designed for concurrent
// overlapping calls against the same session.
type TestRunner struct {
	assemblyPath string
	engine       engine.Engine
	listener     host.Listener
	resolver     selector.Resolver
	settings     *config.Config
	log          *slog.Logger
	disposer     *Disposer
	sessionID    string
	disposed     bool
	tracer       trace.Tracer
}

// New creates a test runner session. The engine handle and every sink
// created later are registered for disposal; DisposeAsync releases them all.
func New(cfg Config) (*TestRunner, error) {
	if cfg.AssemblyPath == "" {
		return nil, fmt.Errorf("assembly path is required")
	}
	if cfg.Listener == nil {
		cfg.Listener = host.NewNopListener()
	}
	if cfg.Resolver == nil {
		cfg.Resolver = selector.KeyResolver{}
	}
	if cfg.Settings == nil {
		cfg.Settings = config.Default()
	}
	if cfg.Log == nil {
		cfg.Log = slog.Default()
		cfg.Log.Error("No logger provided, using default")
	}

	r := &TestRunner{
		assemblyPath: cfg.AssemblyPath,
		engine:       cfg.Engine,
		listener:     cfg.Listener,
		resolver:     cfg.Resolver,
		settings:     cfg.Settings,
		log:          cfg.Log,
		disposer:     NewDisposer(),
		sessionID:    uuid.New().String(),
		tracer:       otel.Tracer("xunit bridge"),
	}
	if cfg.Engine != nil {
		r.disposer.Add(cfg.Engine)
	}

	cfg.Log.Debug("New test runner session",
		"session_id", r.sessionID,
		"assembly", cfg.AssemblyPath,
		"verbosity", cfg.Settings.Verbosity)
	return r, nil
}

// SessionID returns the identifier attached to this session's logs and
// metrics.
func (r *TestRunner) SessionID() string {
	return r.sessionID
}

func (r *TestRunner) guard() error {
	if r.disposed {
		return ErrAlreadyDisposed
	}
	if r.engine == nil {
		return ErrNotInitialized
	}
	return nil
}

// Discover returns the test cases the engine finds in the assembly,
// restricted to the given class when non-nil. The returned error reports
// misuse only; an engine failure is logged as one error line to the host
// listener and yields an empty sequence so a bad assembly never crashes the
// host.
func (r *TestRunner) Discover(class *types.Class) ([]types.TestCase, error) {
	return r.discover(context.Background(), class)
}

func (r *TestRunner) discover(ctx context.Context, class *types.Class) ([]types.TestCase, error) {
	if err := r.guard(); err != nil {
		return nil, err
	}

	_, span := r.tracer.Start(ctx, "discover")
	defer span.End()

	s := sink.NewDiscoverySink()
	r.disposer.Add(s)

	settings := selector.DiscoveryFilter(class)
	r.log.Debug("Discovering tests", "session_id", r.sessionID, "class", settings.ClassName)

	if err := r.engine.Find(s, settings); err != nil {
		r.listener.WriteLine(fmt.Sprintf("Error discovering tests: %v", err), host.CategoryError)
		r.log.Error("Engine find call failed", "session_id", r.sessionID, "error", err)
		metrics.RecordErrorDetails("discover", err)
		return []types.TestCase{}, nil
	}

	s.Wait()
	cases := s.Results()
	metrics.RecordDiscovery(r.sessionID, len(cases))
	r.log.Debug("Discovery complete", "session_id", r.sessionID, "cases", len(cases))
	return cases, nil
}

// Run executes the given cases and returns the aggregate state folded onto
// initial. A nil slice means "discover everything first"; an empty non-nil
// slice runs nothing and returns initial unchanged. Engine failures follow
// the same fail-soft policy as Discover and yield RunStateError.
func (r *TestRunner) Run(cases []types.TestCase, initial types.RunState) (types.RunState, error) {
	return r.run(context.Background(), cases, initial)
}

func (r *TestRunner) run(ctx context.Context, cases []types.TestCase, initial types.RunState) (types.RunState, error) {
	if err := r.guard(); err != nil {
		return initial, err
	}

	ctx, span := r.tracer.Start(ctx, "run")
	defer span.End()

	if cases == nil {
		discovered, err := r.discover(ctx, nil)
		if err != nil {
			return initial, err
		}
		cases = discovered
	}
	if len(cases) == 0 {
		r.log.Debug("No cases to run", "session_id", r.sessionID)
		return initial, nil
	}

	runID := uuid.New().String()
	rs := sink.NewResultSink(&meteredListener{
		inner:     r.listener,
		sessionID: r.sessionID,
		runID:     runID,
	}, len(cases), initial)
	r.disposer.Add(rs)

	serialized := make([]string, len(cases))
	for i, tc := range cases {
		serialized[i] = tc.Serialized
	}

	r.log.Debug("Running tests", "session_id", r.sessionID, "run_id", runID, "cases", len(cases))
	if err := r.engine.Execute(serialized, rs, r.settings.ExecutionOptions()); err != nil {
		r.listener.WriteLine(fmt.Sprintf("Error running tests: %v", err), host.CategoryError)
		r.log.Error("Engine execute call failed", "session_id", r.sessionID, "run_id", runID, "error", err)
		metrics.RecordErrorDetails("run", err)
		return types.RunStateError, nil
	}

	rs.Wait()
	state := rs.State()
	metrics.RecordRunState(r.sessionID, state)
	r.log.Debug("Run complete", "session_id", r.sessionID, "run_id", runID, "state", state)
	return state, nil
}

// RunClass runs every case discovered for the class, then recurses into its
// nested classes in declaration order, threading the running aggregate
// through each call. The result is the max over the class's own tests and
// all descendant classes.
func (r *TestRunner) RunClass(class *types.Class, initial types.RunState) (types.RunState, error) {
	return r.runClass(context.Background(), class, initial)
}

func (r *TestRunner) runClass(ctx context.Context, class *types.Class, initial types.RunState) (types.RunState, error) {
	if err := r.guard(); err != nil {
		return initial, err
	}
	if class == nil {
		return initial, fmt.Errorf("class is required")
	}

	ctx, span := r.tracer.Start(ctx, "run class")
	defer span.End()

	cases, err := r.discover(ctx, class)
	if err != nil {
		return initial, err
	}

	state := initial
	if len(cases) > 0 {
		state, err = r.run(ctx, cases, state)
		if err != nil {
			return initial, err
		}
	}

	for _, nested := range class.Nested {
		state, err = r.runClass(ctx, nested, state)
		if err != nil {
			return initial, err
		}
	}
	return state, nil
}

// RunMethod discovers the cases of the method's declaring class, filters
// them down to the ones matching the method identity (an open generic
// definition matches all of its discovered instantiations), and runs just
// that subset. No match runs nothing.
func (r *TestRunner) RunMethod(method types.Method, initial types.RunState) (types.RunState, error) {
	if err := r.guard(); err != nil {
		return initial, err
	}
	if method.ClassName == "" || method.Name == "" {
		return initial, fmt.Errorf("method identity is incomplete: %q", method.String())
	}

	ctx, span := r.tracer.Start(context.Background(), "run method")
	defer span.End()

	cases, err := r.discover(ctx, &types.Class{Name: method.ClassName})
	if err != nil {
		return initial, err
	}

	matched := selector.MatchMethodCases(cases, method, r.resolver)
	if len(matched) == 0 {
		r.log.Debug("No cases match method", "session_id", r.sessionID, "method", method.String())
		return initial, nil
	}
	return r.run(ctx, matched, initial)
}

// DisposeAsync tears the session down, releasing the engine handle and every
// sink created during the session exactly once. Disposing twice is a misuse
// error.
func (r *TestRunner) DisposeAsync() error {
	if r.disposed {
		return ErrAlreadyDisposed
	}
	r.disposed = true

	r.log.Debug("Disposing session", "session_id", r.sessionID, "resources", r.disposer.Len())
	return r.disposer.Close()
}

var _ host.Listener = (*meteredListener)(nil)

// meteredListener forwards host notifications unchanged and records a
// per-test metric for each terminal event.
type meteredListener struct {
	inner     host.Listener
	sessionID string
	runID     string
}

func (m *meteredListener) WriteLine(text string, category host.Category) {
	m.inner.WriteLine(text, category)
}

func (m *meteredListener) TestFinished(name string, outcome types.Outcome, duration time.Duration, failure *types.Failure) {
	metrics.RecordTestFinished(m.sessionID, m.runID, outcome)
	m.inner.TestFinished(name, outcome, duration, failure)
}
