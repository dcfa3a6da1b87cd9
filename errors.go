package squire

import (
	"errors"
	"fmt"

	"github.com/squiredb/squire/internal/sqlitec"
)

// Sentinel errors. All of them are recoverable result values; squire
// never panics on caller input.
var (
	// ErrThreadingUnsupported is returned by ConnectionBuilder.Open when
	// the requested threading mode is stronger than the one compiled
	// into the linked engine.
	ErrThreadingUnsupported = errors.New("squire: requested threading mode is not compiled into the engine")

	// ErrConnectionClosed is returned by every operation on a closed
	// Connection.
	ErrConnectionClosed = errors.New("squire: connection is closed")

	// ErrStatementClosed is returned by every operation on a finalized
	// Statement.
	ErrStatementClosed = errors.New("squire: statement is finalized")

	// ErrNoRows is returned by Fetch and FetchRecord when the statement
	// produces no row at all.
	ErrNoRows = errors.New("squire: query returned no rows")

	// ErrExtraRows is returned by Fetch and FetchRecord when the caller
	// asked for a single-row result but more rows were available.
	ErrExtraRows = errors.New("squire: query returned more than one row")
)

// EngineError preserves a native engine result code and message
// verbatim, for diagnostics.
type EngineError struct {
	// Code is the (possibly extended) native result code.
	Code int
	// Message is the engine's error message, unmodified.
	Message string
	// Offset is the byte offset into the SQL text where a prepare-time
	// syntax error was detected, or -1 when not applicable.
	Offset int
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("squire: %s (%d)", e.Message, e.Code)
}

// OpenError reports a failure to open a Connection.
type OpenError struct{ Err error }

func (e *OpenError) Error() string { return "squire: failed to open connection: " + e.Err.Error() }
func (e *OpenError) Unwrap() error { return e.Err }

// PrepareError reports a failure to compile SQL text into a Statement.
// For syntax errors the wrapped *EngineError carries the byte offset of
// the first offending token.
type PrepareError struct{ Err error }

func (e *PrepareError) Error() string { return "squire: failed to prepare statement: " + e.Err.Error() }
func (e *PrepareError) Unwrap() error { return e.Err }

// StepError reports an engine failure while advancing a Statement, e.g.
// a constraint violation or a busy/locked database. The wrapped
// *EngineError preserves the native code so callers can decide to retry.
type StepError struct{ Err error }

func (e *StepError) Error() string { return "squire: failed to step statement: " + e.Err.Error() }
func (e *StepError) Unwrap() error { return e.Err }

// ArityError reports a positional bind with the wrong number of values.
type ArityError struct {
	Expected int
	Got      int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("squire: cannot bind %d values to a statement with %d parameters", e.Got, e.Expected)
}

// UnknownParameterError reports a supplied named value with no matching
// placeholder in the SQL text.
type UnknownParameterError struct{ Name string }

func (e *UnknownParameterError) Error() string {
	return fmt.Sprintf("squire: statement has no parameter named %q", e.Name)
}

// MissingParameterError reports a declared placeholder with no supplied
// value.
type MissingParameterError struct{ Name string }

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("squire: no value supplied for parameter %q", e.Name)
}

// UnsupportedTypeError reports an application value with no defined
// mapping onto the engine's storage classes.
type UnsupportedTypeError struct{ Type string }

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("squire: cannot bind value of unsupported type %s", e.Type)
}

// NullColumnError reports a NULL column read into a non-optional
// target.
type NullColumnError struct{ Column string }

func (e *NullColumnError) Error() string {
	return fmt.Sprintf("squire: column %q is NULL", e.Column)
}

// TypeMismatchError reports a column whose storage class cannot be
// losslessly coerced into the target type.
type TypeMismatchError struct {
	Column   string
	Expected Type
	Actual   Type
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("squire: column %q holds %s, expected %s", e.Column, e.Actual.Value, e.Expected.Value)
}

// OverflowError reports a column value that does not fit the target
// type without losing precision.
type OverflowError struct{ Column string }

func (e *OverflowError) Error() string {
	return fmt.Sprintf("squire: value of column %q overflows the target type", e.Column)
}

// MissingColumnError reports a mapped record field with no
// corresponding result column and no optional marker.
type MissingColumnError struct{ Field string }

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("squire: no result column for field %q", e.Field)
}

// engineError converts an internal engine error into the public
// *EngineError, preserving code, message, and offset.
func engineError(err error) error {
	var ce *sqlitec.Error
	if errors.As(err, &ce) {
		return &EngineError{Code: ce.Code, Message: ce.Message, Offset: ce.Offset}
	}
	return err
}
