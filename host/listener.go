// Package host defines the boundary to the IDE-hosted test runner UI.
// The bridge only ever pushes two things across it: human-readable progress
// lines and structured per-test finish notifications.
package host

import (
	"time"

	"github.com/billrob/xunit/types"
)

// Category classifies a progress line for the host UI.
type Category string

// Category enum values
const (
	CategoryInfo    Category = "info"
	CategoryWarning Category = "warning"
	CategoryError   Category = "error"
)

// String implements the Stringer interface for Category
func (c Category) String() string {
	return string(c)
}

// Listener receives progress from the bridge. Calls may arrive on the
// engine's event-delivery goroutines, not the caller's; implementations
// must be safe for that.
type Listener interface {
	// WriteLine delivers one human-readable progress line.
	WriteLine(text string, category Category)

	// TestFinished delivers the structured outcome of one executed test.
	// failure is non-nil only when outcome is OutcomeFail.
	TestFinished(name string, outcome types.Outcome, duration time.Duration, failure *types.Failure)
}

// nopListener provides a no-op implementation of Listener
type nopListener struct{}

// NewNopListener creates a listener that discards everything
func NewNopListener() Listener {
	return &nopListener{}
}

func (n *nopListener) WriteLine(text string, category Category) {}
func (n *nopListener) TestFinished(name string, outcome types.Outcome, duration time.Duration, failure *types.Failure) {
}
