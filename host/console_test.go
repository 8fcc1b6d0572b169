package host

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/billrob/xunit/types"
)

func newBufferedConsole() (*ConsoleListener, *bytes.Buffer) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return NewConsoleListener(log), &buf
}

func TestConsoleListener_WriteLineRoutesByCategory(t *testing.T) {
	c, buf := newBufferedConsole()

	c.WriteLine("all good", CategoryInfo)
	c.WriteLine("heads up", CategoryWarning)
	c.WriteLine("broken", CategoryError)

	out := buf.String()
	assert.Contains(t, out, "level=INFO")
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "level=ERROR")
	assert.Contains(t, out, "broken")
}

func TestConsoleListener_StripsAnsiCodes(t *testing.T) {
	c, buf := newBufferedConsole()

	c.WriteLine("\x1b[31mFAIL\x1b[0m TestAdds", CategoryError)

	assert.NotContains(t, buf.String(), "\x1b[31m")
	assert.Contains(t, buf.String(), "FAIL TestAdds")
}

func TestConsoleListener_CollectsFinishedTests(t *testing.T) {
	c, _ := newBufferedConsole()

	c.TestFinished("TestAdds", types.OutcomePass, 10*time.Millisecond, nil)
	c.TestFinished("TestSubtracts", types.OutcomeFail, time.Millisecond, &types.Failure{Message: "boom"})

	assert.Equal(t, 2, c.Finished())

	// Summary over the collected results must not panic for any state
	c.Summary(types.RunStateFailure)
}

func TestConsoleListener_NilLoggerDefaults(t *testing.T) {
	c := NewConsoleListener(nil)
	c.WriteLine("fine", CategoryInfo)
	assert.Zero(t, c.Finished())
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "✓ pass", outcomeString(types.OutcomePass))
	assert.Equal(t, "- skip", outcomeString(types.OutcomeSkip))
	assert.Equal(t, "✗ fail", outcomeString(types.OutcomeFail))
}
