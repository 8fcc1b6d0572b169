// Package gotest adapts a compiled Go test binary to the engine boundary so
// the bridge can treat it as a test assembly. Discovery shells out to the
// binary with -test.list; execution runs it with -test.v=test2json and
// converts the framed verbose stream into engine execution events. Top-level test
// functions play the role of classes, so class-restricted discovery maps to
// an exact name pattern.
package gotest

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"regexp"
	"strings"

	"github.com/billrob/xunit/engine"
	"github.com/billrob/xunit/types"
)

var _ engine.Engine = (*Engine)(nil)

var fileLineRegex = regexp.MustCompile(`\.go:\d+`)

// Output lines can exceed bufio's default 64 KiB token limit when a test
// dumps a large blob on one line; cap the scanner well above that.
const maxOutputLine = 4 * 1024 * 1024

// Engine drives one compiled test binary.
type Engine struct {
	binary string
	log    *slog.Logger
}

// New creates an engine for the given test binary path.
func New(binary string, log *slog.Logger) (*Engine, error) {
	if binary == "" {
		return nil, fmt.Errorf("test binary path is required")
	}
	if _, err := os.Stat(binary); err != nil {
		return nil, fmt.Errorf("test binary not found: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Engine{binary: binary, log: log}, nil
}

// Find implements the engine.Engine interface. The list subprocess runs on
// its own goroutine; completion is signaled through the sink even when the
// binary exits nonzero partway through.
func (e *Engine) Find(sink engine.DiscoveryEvents, settings engine.DiscoverySettings) error {
	pattern := "."
	if settings.ClassName != "" {
		pattern = "^" + regexp.QuoteMeta(settings.ClassName) + "$"
	}

	cmd := exec.Command(e.binary, "-test.list", pattern)
	out, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to open list pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start test binary: %w", err)
	}

	e.log.Debug("Listing tests", "binary", e.binary, "pattern", pattern)
	go func() {
		defer sink.OnComplete()

		scanner := bufio.NewScanner(out)
		scanner.Buffer(make([]byte, 0, 64*1024), maxOutputLine)
		var lines []string
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			e.log.Error("Reading list output failed", "binary", e.binary, "error", err)
		}
		if err := cmd.Wait(); err != nil {
			e.log.Error("List run ended with error", "binary", e.binary, "error", err)
		}

		for _, name := range parseListOutput([]byte(strings.Join(lines, "\n"))) {
			sink.OnDiscovered(e.testCase(name))
		}
	}()
	return nil
}

// Execute implements the engine.Engine interface. serialized holds the run
// patterns produced at discovery time; they are joined into one -test.run
// expression.
func (e *Engine) Execute(serialized []string, sink engine.ExecutionEvents, opts engine.ExecutionOptions) error {
	if len(serialized) == 0 {
		go sink.OnComplete()
		return nil
	}

	args := []string{
		"-test.v=test2json",
		"-test.run", strings.Join(serialized, "|"),
	}
	if opts.MaxParallelThreads > 0 {
		args = append(args, fmt.Sprintf("-test.parallel=%d", opts.MaxParallelThreads))
	}

	cmd := exec.Command(e.binary, args...)
	out, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to open output pipe: %w", err)
	}
	cmd.Stderr = cmd.Stdout
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start test binary: %w", err)
	}

	e.log.Debug("Executing tests", "binary", e.binary, "cases", len(serialized))
	go func() {
		defer sink.OnComplete()

		output := make(map[string]*strings.Builder)
		parser := &verboseParser{}
		scanner := bufio.NewScanner(out)
		scanner.Buffer(make([]byte, 0, 64*1024), maxOutputLine)
		for scanner.Scan() {
			event, ok := parser.parseLine(scanner.Text())
			if !ok {
				continue
			}
			e.deliver(event, output, sink)
		}
		if err := scanner.Err(); err != nil {
			e.log.Error("Reading test output failed", "binary", e.binary, "error", err)
		}
		if err := cmd.Wait(); err != nil {
			e.log.Debug("Test run ended with nonzero status", "binary", e.binary, "error", err)
		}
	}()
	return nil
}

func (e *Engine) deliver(event TestEvent, output map[string]*strings.Builder, sink engine.ExecutionEvents) {
	switch event.Action {
	case ActionRun:
		sink.OnTestStarting(event.Test)
	case ActionOutput:
		b, ok := output[event.Test]
		if !ok {
			b = &strings.Builder{}
			output[event.Test] = b
		}
		b.WriteString(event.Output)
	case ActionPass:
		sink.OnTestPassed(event.Test, elapsedDuration(event.Elapsed))
	case ActionFail:
		sink.OnTestFailed(event.Test, elapsedDuration(event.Elapsed), types.Failure{
			Message:    failureMessage(output[event.Test]),
			StackTrace: collectedOutput(output[event.Test]),
		})
	case ActionSkip:
		sink.OnTestSkipped(event.Test, failureMessage(output[event.Test]))
	}
}

// testCase builds the descriptor for one listed test function. The
// serialized form is the exact run pattern the binary accepts back.
func (e *Engine) testCase(name string) types.TestCase {
	return types.TestCase{
		ID:          name,
		DisplayName: name,
		ClassName:   name,
		MethodName:  name,
		Serialized:  "^" + regexp.QuoteMeta(name) + "$",
		Key: types.TestKey{
			Module:     e.binary,
			ClassName:  name,
			MethodName: name,
		},
	}
}

// Close implements the engine.Engine interface. The adapter holds no
// persistent process; per-operation subprocesses reap themselves.
func (e *Engine) Close() error {
	return nil
}

func collectedOutput(b *strings.Builder) string {
	if b == nil {
		return ""
	}
	return strings.TrimSpace(b.String())
}

// failureMessage picks the most useful single line from collected output:
// the first line mentioning a file:line location, else the first non-frame
// line.
func failureMessage(b *strings.Builder) string {
	out := collectedOutput(b)
	if out == "" {
		return ""
	}

	var fallback string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "=== ") || strings.HasPrefix(line, "--- ") {
			continue
		}
		if fallback == "" {
			fallback = line
		}
		if fileLineRegex.MatchString(line) {
			return line
		}
	}
	return fallback
}
