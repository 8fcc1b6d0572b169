// Package types contains shared types used across the xunit bridge
package types

// RunState represents the aggregate outcome of a test run at any level of
// the result tree (single run, class, class plus nested classes).
//
// States are ordered so that aggregation is a plain max: a worse outcome
// always dominates. RunStateNoTests is the identity element.
type RunState int

// RunState enum values, in aggregation order
const (
	RunStateNoTests RunState = iota
	RunStateSuccess
	RunStateFailure
	RunStateError
)

// String implements the Stringer interface for RunState
func (s RunState) String() string {
	switch s {
	case RunStateNoTests:
		return "no tests"
	case RunStateSuccess:
		return "success"
	case RunStateFailure:
		return "failure"
	case RunStateError:
		return "error"
	default:
		return "unknown"
	}
}

// Aggregate combines two run states under the fixed total order.
// Aggregate(x, RunStateNoTests) == x for every x.
func Aggregate(a, b RunState) RunState {
	if b > a {
		return b
	}
	return a
}

// Outcome represents the reported result of a single executed test
type Outcome string

// Outcome enum values
const (
	OutcomePass Outcome = "pass"
	OutcomeFail Outcome = "fail"
	OutcomeSkip Outcome = "skip"
)

// String implements the Stringer interface for Outcome
func (o Outcome) String() string {
	return string(o)
}

// StateForOutcome maps a single test outcome onto the run-state order.
// A skipped test does not degrade the state of its class.
func StateForOutcome(o Outcome) RunState {
	switch o {
	case OutcomeFail:
		return RunStateFailure
	case OutcomePass, OutcomeSkip:
		return RunStateSuccess
	default:
		return RunStateNoTests
	}
}

// Failure carries the detail reported alongside a failed test
type Failure struct {
	Message    string
	StackTrace string
}
