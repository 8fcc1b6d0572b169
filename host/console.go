package host

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/acarl005/stripansi"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/billrob/xunit/types"
)

var _ Listener = (*ConsoleListener)(nil)

// finishedTest is one recorded TestFinished notification.
type finishedTest struct {
	name     string
	outcome  types.Outcome
	duration time.Duration
	failure  *types.Failure
}

// ConsoleListener renders bridge progress on the terminal: lines go through
// the structured logger, finished tests are collected for a summary table.
type ConsoleListener struct {
	log *slog.Logger

	mu       sync.Mutex
	finished []finishedTest
}

// NewConsoleListener creates a console listener backed by the given logger.
func NewConsoleListener(log *slog.Logger) *ConsoleListener {
	if log == nil {
		log = slog.Default()
	}
	return &ConsoleListener{log: log}
}

// WriteLine implements the Listener interface. Engine output may carry ANSI
// color codes; strip them so log files stay clean.
func (c *ConsoleListener) WriteLine(line string, category Category) {
	line = stripansi.Strip(line)
	switch category {
	case CategoryError:
		c.log.Error(line)
	case CategoryWarning:
		c.log.Warn(line)
	default:
		c.log.Info(line)
	}
}

// TestFinished implements the Listener interface.
func (c *ConsoleListener) TestFinished(name string, outcome types.Outcome, duration time.Duration, failure *types.Failure) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.finished = append(c.finished, finishedTest{
		name:     name,
		outcome:  outcome,
		duration: duration,
		failure:  failure,
	})
}

// Finished returns how many tests have been reported so far.
func (c *ConsoleListener) Finished() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.finished)
}

// Summary renders a results table for everything reported so far.
func (c *ConsoleListener) Summary(state types.RunState) {
	c.mu.Lock()
	finished := make([]finishedTest, len(c.finished))
	copy(finished, c.finished)
	c.mu.Unlock()

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle(fmt.Sprintf("Test Results (%s)", state))
	t.AppendHeader(table.Row{"Test", "Outcome", "Duration", "Failure"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Test", WidthMax: 60, WidthMaxEnforcer: text.WrapSoft},
		{Name: "Duration", Align: text.AlignRight},
		{Name: "Failure", WidthMax: 80, WidthMaxEnforcer: text.WrapSoft},
	})

	var passed, failed, skipped int
	var total time.Duration
	for _, f := range finished {
		failureMsg := ""
		if f.failure != nil {
			failureMsg = stripansi.Strip(f.failure.Message)
		}
		t.AppendRow(table.Row{f.name, outcomeString(f.outcome), formatDuration(f.duration), failureMsg})

		total += f.duration
		switch f.outcome {
		case types.OutcomePass:
			passed++
		case types.OutcomeFail:
			failed++
		case types.OutcomeSkip:
			skipped++
		}
	}

	switch state {
	case types.RunStateSuccess:
		t.SetStyle(table.StyleColoredBlackOnGreenWhite)
	case types.RunStateNoTests:
		t.SetStyle(table.StyleColoredBlackOnYellowWhite)
	default:
		t.SetStyle(table.StyleColoredBlackOnRedWhite)
	}

	t.AppendFooter(table.Row{
		fmt.Sprintf("TOTAL %d (%d passed, %d failed, %d skipped)", len(finished), passed, failed, skipped),
		state.String(),
		formatDuration(total),
		"",
	})
	t.Render()
}

// outcomeString returns a marked string for the outcome column
func outcomeString(o types.Outcome) string {
	switch o {
	case types.OutcomePass:
		return "✓ pass"
	case types.OutcomeSkip:
		return "- skip"
	default:
		return "✗ fail"
	}
}

// Helper function to format duration to seconds with 1 decimal place
func formatDuration(d time.Duration) string {
	return fmt.Sprintf("%.1fs", d.Seconds())
}
