package xunit

import (
	"errors"
	"io"
)

// Disposer tracks every disposable resource a session allocates and releases
// each one exactly once at teardown. Add is called only from the caller's
// goroutine during setup and Close only once at teardown; the type is not
// synchronized for concurrent use.
type Disposer struct {
	closers []io.Closer
	drained bool
}

// NewDisposer creates an empty disposal registry.
func NewDisposer() *Disposer {
	return &Disposer{}
}

// Add registers a resource for disposal. Nil resources are ignored.
func (d *Disposer) Add(c io.Closer) {
	if c == nil {
		return
	}
	d.closers = append(d.closers, c)
}

// Len returns the number of resources still registered.
func (d *Disposer) Len() int {
	return len(d.closers)
}

// Close releases every tracked resource in reverse registration order,
// continuing past individual failures so no later resource is leaked.
// Failures are joined into the returned error. A second Close is a no-op:
// each resource is released at most once.
func (d *Disposer) Close() error {
	if d.drained {
		return nil
	}
	d.drained = true

	var errs []error
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	d.closers = nil
	return errors.Join(errs...)
}
