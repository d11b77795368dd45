package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across packages.
var (
	// ErrUnknownFlag is returned when a feature flag name is not registered.
	ErrUnknownFlag = errors.New("unknown feature flag")

	// ErrInvalidImplementation is returned when an implementation is outside
	// the flag's enumerated set.
	ErrInvalidImplementation = errors.New("invalid implementation")

	// ErrInvalidRequestShape is returned when a flag update body carries
	// unrecognised properties or wrong types.
	ErrInvalidRequestShape = errors.New("invalid request shape")

	// ErrFeatureDisabled is returned when a dispatch targets a disabled feature.
	ErrFeatureDisabled = errors.New("feature is disabled")

	// ErrUnknownImplementation is returned when a resolved implementation has
	// no mapped upstream endpoint. This is a configuration error, never a
	// silent no-op.
	ErrUnknownImplementation = errors.New("no endpoint mapped for implementation")
)

// ValidationError reports malformed or missing client input.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// NewValidationError creates a ValidationError with the given message.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// IsValidationError reports whether err is a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// InvalidTransitionError reports a pipeline operation attempted from a
// stage that does not satisfy its precondition.
type InvalidTransitionError struct {
	Stage     Stage
	Operation string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition: cannot %s from stage %q", e.Operation, e.Stage)
}

// PersistenceError reports a failed durable write. The in-memory state may
// already be mutated when this is returned.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failed: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// UpstreamErrorKind classifies a normalized upstream failure.
type UpstreamErrorKind int

const (
	// UpstreamBadStatus means the upstream responded with a non-success status.
	UpstreamBadStatus UpstreamErrorKind = iota
	// UpstreamUnreachable means no response was received from the upstream.
	UpstreamUnreachable
	// UpstreamRequestFailed means the request could not be constructed locally.
	UpstreamRequestFailed
)

// UpstreamError is the normalized form of any upstream failure.
type UpstreamError struct {
	Kind       UpstreamErrorKind
	StatusCode int
	Message    string
	// Detail carries the low-level diagnostic. It is only populated in a
	// development-style configuration.
	Detail string
}

func (e *UpstreamError) Error() string {
	if e.Kind == UpstreamBadStatus {
		return fmt.Sprintf("upstream error (%d): %s", e.StatusCode, e.Message)
	}
	return e.Message
}
