package gotest

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/billrob/xunit/engine"
	"github.com/billrob/xunit/types"
)

// fakeBinary writes an executable that ignores its flags and replays the
// given output, standing in for a compiled test binary.
func fakeBinary(t *testing.T, output string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "calc.test")
	script := "#!/bin/sh\ncat <<'TRANSCRIPT'\n" + output + "TRANSCRIPT\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// collectingDiscovery records discovery events for the Find tests.
type collectingDiscovery struct {
	mu       sync.Mutex
	cases    []types.TestCase
	complete int
}

func (c *collectingDiscovery) OnDiscovered(tc types.TestCase) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cases = append(c.cases, tc)
}

func (c *collectingDiscovery) OnComplete() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.complete++
}

func (c *collectingDiscovery) completed() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.complete
}

func TestFind_ListsBinaryTests(t *testing.T) {
	list := "TestAdds\nTestSubtracts\nok  \texample/calc\t0.002s\n"
	e, err := New(fakeBinary(t, list), discardLogger())
	require.NoError(t, err)

	d := &collectingDiscovery{}
	require.NoError(t, e.Find(d, engine.DiscoverySettings{}))

	require.Eventually(t, func() bool { return d.completed() == 1 }, 5*time.Second, 10*time.Millisecond)
	require.Len(t, d.cases, 2)
	assert.Equal(t, "TestAdds", d.cases[0].ID)
	assert.Equal(t, "^TestSubtracts$", d.cases[1].Serialized)
}

// TestExecute_DeliversFramedBinaryOutput drives Execute against a binary
// emitting the framed verbose stream -test.v=test2json produces and checks
// that pass and fail events reach the sink rather than being dropped as
// unparseable.
func TestExecute_DeliversFramedBinaryOutput(t *testing.T) {
	transcript := "\x16=== RUN   TestAdds\n" +
		"    calc_test.go:42: expected 4, got 5\n" +
		"\x16--- FAIL: TestAdds (0.10s)\n" +
		"\x16=== RUN   TestSubtracts\n" +
		"\x16--- PASS: TestSubtracts (0.05s)\n" +
		"\x16FAIL\n" +
		"exit status 1\n"

	e, err := New(fakeBinary(t, transcript), discardLogger())
	require.NoError(t, err)

	sink := newCollectingSink()
	require.NoError(t, e.Execute([]string{"^TestAdds$", "^TestSubtracts$"}, sink, engine.ExecutionOptions{}))

	require.Eventually(t, func() bool { return sink.completed() == 1 }, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"TestAdds", "TestSubtracts"}, sink.started)
	assert.Equal(t, []string{"TestSubtracts"}, sink.passed)

	failure, ok := sink.failed["TestAdds"]
	require.True(t, ok)
	assert.Equal(t, "calc_test.go:42: expected 4, got 5", failure.Message)
}

func TestExecute_NoCasesCompletesImmediately(t *testing.T) {
	e, err := New(fakeBinary(t, ""), discardLogger())
	require.NoError(t, err)

	sink := newCollectingSink()
	require.NoError(t, e.Execute(nil, sink, engine.ExecutionOptions{}))

	require.Eventually(t, func() bool { return sink.completed() == 1 }, 5*time.Second, 10*time.Millisecond)
	assert.Empty(t, sink.started)
}
