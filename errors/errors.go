// Package errors provides error handling for the pipeline engine.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - Marker-based error classification
//
// The engine distinguishes three error classes:
//   - ConfigError: missing or malformed configuration, fatal at startup
//   - DefinitionError: malformed pipeline file, wiring mismatch or missing
//     required parameter, aborts the current batch before any component runs
//   - ExecutionError: a component or chunk failed at runtime, isolated to
//     that component and its successors
//
// Usage:
//
//	if err := doSomething(); err != nil {
//	    return errors.Wrap(err, "failed to do something")
//	}
//
//	if errors.IsDefinitionError(err) {
//	    // abort the batch, keep the queue intact
//	}
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is            = crdb.Is
	As            = crdb.As
	Unwrap        = crdb.Unwrap
	Mark          = crdb.Mark
	CombineErrors = crdb.CombineErrors
)

// Sentinel markers for the engine's error taxonomy. They are attached with
// errors.Mark so that wrapping never loses the classification.
var (
	// ErrConfig marks missing or malformed configuration.
	ErrConfig = New("configuration error")

	// ErrDefinition marks a malformed or inconsistent pipeline definition.
	ErrDefinition = New("pipeline definition error")

	// ErrExecution marks a runtime failure of a component or chunk.
	ErrExecution = New("pipeline execution error")
)

// ConfigErrorf creates a new error marked as a configuration error.
func ConfigErrorf(format string, args ...interface{}) error {
	return Mark(Newf(format, args...), ErrConfig)
}

// DefinitionErrorf creates a new error marked as a definition error.
func DefinitionErrorf(format string, args ...interface{}) error {
	return Mark(Newf(format, args...), ErrDefinition)
}

// ExecutionErrorf creates a new error marked as an execution error.
func ExecutionErrorf(format string, args ...interface{}) error {
	return Mark(Newf(format, args...), ErrExecution)
}

// WrapConfig wraps err with context and marks it as a configuration error.
func WrapConfig(err error, msg string) error {
	return Mark(Wrap(err, msg), ErrConfig)
}

// WrapDefinition wraps err with context and marks it as a definition error.
func WrapDefinition(err error, msg string) error {
	return Mark(Wrap(err, msg), ErrDefinition)
}

// WrapExecution wraps err with context and marks it as an execution error.
func WrapExecution(err error, msg string) error {
	return Mark(Wrap(err, msg), ErrExecution)
}

// IsConfigError checks if an error is or wraps ErrConfig.
func IsConfigError(err error) bool {
	return err != nil && Is(err, ErrConfig)
}

// IsDefinitionError checks if an error is or wraps ErrDefinition.
func IsDefinitionError(err error) bool {
	return err != nil && Is(err, ErrDefinition)
}

// IsExecutionError checks if an error is or wraps ErrExecution.
func IsExecutionError(err error) bool {
	return err != nil && Is(err, ErrExecution)
}
