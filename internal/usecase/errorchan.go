package usecase

import (
	"sync/atomic"
)

// ErrorChannel surfaces pipeline diagnostics (destination failures,
// disabled redaction rules) to the host application. Reporting is
// best-effort and never blocks: when the buffer is full the error is
// counted and discarded. Logging must never be able to crash or stall the
// application it serves.
type ErrorChannel struct {
	ch      chan error
	dropped atomic.Uint64
}

func NewErrorChannel(buffer int) *ErrorChannel {
	if buffer <= 0 {
		buffer = 64
	}
	return &ErrorChannel{ch: make(chan error, buffer)}
}

// C exposes the receive side for the host application.
func (e *ErrorChannel) C() <-chan error {
	return e.ch
}

// Report publishes an error without blocking. Reports are independent:
// simultaneous failures across destinations are all delivered as long as
// the buffer has room. Report only performs a channel send, and a full
// buffer drops rather than waits, so a consumer feeding errors back into
// the logging system cannot recurse or stall through here.
func (e *ErrorChannel) Report(err error) {
	if err == nil {
		return
	}

	select {
	case e.ch <- err:
	default:
		e.dropped.Add(1)
	}
}

// Dropped returns how many reports were discarded.
func (e *ErrorChannel) Dropped() uint64 {
	return e.dropped.Load()
}
