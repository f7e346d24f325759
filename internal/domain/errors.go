package domain

import (
	"errors"
	"fmt"
)

// Error taxonomy for the pipeline. Destination failures are isolated: an
// error from one destination is reported and counted but never propagates
// to other destinations or to the caller of Log.
var (
	// ErrInvalidConfiguration marks a rule or policy that fails
	// validation at load time.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrInitializationFailed marks a pipeline or destination that could
	// not be constructed from its configuration.
	ErrInitializationFailed = errors.New("initialization failed")

	// ErrDestinationNotFound is returned when an identifier does not
	// match any registered destination.
	ErrDestinationNotFound = errors.New("destination not found")

	// ErrDuplicateDestination is returned when a destination identifier
	// is already registered.
	ErrDuplicateDestination = errors.New("duplicate destination")

	// ErrSerializationFailed marks an entry that cannot be converted to a
	// destination's wire format.
	ErrSerializationFailed = errors.New("serialization failed")

	// ErrWriteTimeout marks a destination write abandoned because it
	// exceeded its deadline. The entry is dropped for that destination
	// only and never retried.
	ErrWriteTimeout = errors.New("destination write timed out")

	// ErrRotationFailed marks a retention enforcement failure local to a
	// destination.
	ErrRotationFailed = errors.New("rotation failed")
)

// DestinationError wraps a failure from a single destination so the error
// channel can attribute it.
type DestinationError struct {
	Identifier string
	Op         string // "write", "flush", "rotate"
	Err        error
}

func (e *DestinationError) Error() string {
	return fmt.Sprintf("destination %s: %s: %v", e.Identifier, e.Op, e.Err)
}

func (e *DestinationError) Unwrap() error {
	return e.Err
}

// RedactionError reports a redaction rule disabled at runtime, for
// example because its pattern never compiled.
type RedactionError struct {
	RuleID string
	Err    error
}

func (e *RedactionError) Error() string {
	return fmt.Sprintf("redaction rule %s disabled: %v", e.RuleID, e.Err)
}

func (e *RedactionError) Unwrap() error {
	return e.Err
}
