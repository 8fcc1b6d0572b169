package gotest

import (
	"bufio"
	"bytes"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Actions a test binary reports for an individual test function.
const (
	ActionRun    = "run"
	ActionPass   = "pass"
	ActionFail   = "fail"
	ActionSkip   = "skip"
	ActionOutput = "output"
)

// TestEvent is one per-test event decoded from the binary's output stream.
type TestEvent struct {
	Action  string
	Test    string
	Elapsed float64
	Output  string
}

// Under -test.v=test2json the testing package prefixes each of its own
// framing lines with ^V (0x16) so they can be told apart from test output.
// See https://cs.opensource.google/go/go/+/master:src/cmd/test2json/main.go
const frameMarker = '\x16'

var (
	runLineRegex    = regexp.MustCompile(`^=== (RUN|CONT|NAME)\s+(\S+)`)
	pauseLineRegex  = regexp.MustCompile(`^=== PAUSE\s+(\S+)`)
	resultLineRegex = regexp.MustCompile(`^\s*--- (PASS|FAIL|SKIP): (\S+) \((\d+(?:\.\d+)?)s\)`)
)

var resultActions = map[string]string{
	"PASS": ActionPass,
	"FAIL": ActionFail,
	"SKIP": ActionSkip,
}

// verboseParser converts the framed verbose text a test binary emits under
// -test.v=test2json into per-test events. Framed lines (=== RUN, --- PASS,
// ...) switch or finish the active test; unframed lines are output attributed
// to whichever test the stream last named.
type verboseParser struct {
	current string
}

// parseLine consumes one line of binary output and reports the event it
// carries, if any. Package-level framing (the trailing PASS/FAIL status and
// == PAUSE markers) produces no event.
func (p *verboseParser) parseLine(line string) (TestEvent, bool) {
	if len(line) > 0 && line[0] == frameMarker {
		return p.parseFramed(line[1:])
	}
	if p.current == "" {
		return TestEvent{}, false
	}
	return TestEvent{Action: ActionOutput, Test: p.current, Output: line + "\n"}, true
}

func (p *verboseParser) parseFramed(line string) (TestEvent, bool) {
	if m := runLineRegex.FindStringSubmatch(line); m != nil {
		p.current = m[2]
		if m[1] == "RUN" {
			return TestEvent{Action: ActionRun, Test: m[2]}, true
		}
		return TestEvent{}, false
	}
	if m := pauseLineRegex.FindStringSubmatch(line); m != nil {
		if p.current == m[1] {
			p.current = ""
		}
		return TestEvent{}, false
	}
	if m := resultLineRegex.FindStringSubmatch(line); m != nil {
		// Subtest detail lines follow their result header at an extra
		// indent, so keep attributing output to the finished test.
		p.current = m[2]
		elapsed, _ := strconv.ParseFloat(m[3], 64)
		return TestEvent{Action: resultActions[m[1]], Test: m[2], Elapsed: elapsed}, true
	}
	if line == "PASS" || line == "FAIL" {
		// Package verdict; anything after it is not test output.
		p.current = ""
	}
	return TestEvent{}, false
}

// parseListOutput extracts test names from `-test.list` output. The binary
// prints one name per line plus a trailing "ok" status line, which is not a
// test.
func parseListOutput(output []byte) []string {
	var names []string
	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "ok ") || strings.HasPrefix(line, "---") {
			continue
		}
		if !strings.HasPrefix(line, "Test") && !strings.HasPrefix(line, "Example") &&
			!strings.HasPrefix(line, "Benchmark") && !strings.HasPrefix(line, "Fuzz") {
			continue
		}
		names = append(names, line)
	}
	return names
}

// elapsedDuration converts the header's fractional seconds to a Duration.
func elapsedDuration(elapsed float64) time.Duration {
	return time.Duration(elapsed * float64(time.Second))
}
