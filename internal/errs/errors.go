// Package errs defines the error taxonomy shared by chart components.
//
// Configuration errors are returned to the caller: a duplicate registration,
// an operation on an unknown name, an unknown type identifier. Corruption
// errors mean an internal invariant broke; they are raised with panic and are
// not meant to be recovered.
package errs

import (
	"github.com/pkg/errors"
)

// Sentinel errors wrapped by ConfigurationError.
var (
	// ErrDuplicate is returned when a name is registered twice.
	ErrDuplicate = errors.New("already registered")

	// ErrUnknown is returned when an operation names something that was never registered.
	ErrUnknown = errors.New("not registered")

	// ErrInvalid is returned for malformed identifiers or arguments.
	ErrInvalid = errors.New("invalid")
)

// ConfigurationError reports a caller mistake detected at the call site.
type ConfigurationError struct {
	// Op is the operation that failed, e.g. "add tool".
	Op string

	// Subject is the name the operation was about.
	Subject string

	// Err is the underlying sentinel.
	Err error
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	if e.Subject == "" {
		return e.Op + ": " + e.Err.Error()
	}
	return e.Op + " " + e.Subject + ": " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// Configuration builds a ConfigurationError.
func Configuration(op, subject string, err error) *ConfigurationError {
	return &ConfigurationError{Op: op, Subject: subject, Err: err}
}

// CorruptionError reports a broken internal invariant.
type CorruptionError struct {
	// Component is the subsystem whose state is corrupt.
	Component string

	// Detail describes the inconsistency.
	Detail string
}

// Error implements the error interface.
func (e *CorruptionError) Error() string {
	return "corrupt " + e.Component + " state: " + e.Detail
}

// Corrupt panics with a CorruptionError.
func Corrupt(component, detail string) {
	panic(&CorruptionError{Component: component, Detail: detail})
}

// IsConfiguration reports whether err is or wraps a ConfigurationError.
func IsConfiguration(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// IsCorruption reports whether err is or wraps a CorruptionError.
func IsCorruption(err error) bool {
	var ce *CorruptionError
	return errors.As(err, &ce)
}
