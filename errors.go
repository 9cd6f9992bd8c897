// Package hecdss provides typed, validated access to records held in a
// hydrologic time-series archive: regular and irregular time series and
// paired-data tables addressed by six-part pathnames.
//
// The archive itself (file layout, locking, compression, record encoding) is
// owned by an Engine. This package turns the engine's raw buffers into
// TimeSeries and PairedData values with checked shape invariants, and turns
// the engine's last-error side channel into a typed *Error. Every call into
// an engine runs inside one process-wide critical section so that the
// (call, query last error) pair is never interleaved with another call.
//
// The store subpackage is a pure-Go engine backed by a single append-only
// file. Any other engine, for example a binding to the native library,
// plugs in through the same interface.
package hecdss

import (
	"errors"
	"fmt"
)

// Sentinel errors for structural failures detected by this package. Engine
// failures are reported as *Error instead. Callers use errors.Is.
var (
	ErrLengthMismatch     = errors.New("length does not match record size")
	ErrCapacityMismatch   = errors.New("buffer does not match record capacity")
	ErrInvalidPathname    = errors.New("invalid pathname")
	ErrInvalidInterval    = errors.New("invalid interval")
	ErrInvalidGranularity = errors.New("invalid time granularity")
	ErrInvalidDateTime    = errors.New("invalid date/time")
	ErrIntervalNotSet     = errors.New("interval not set on regular series")
	ErrStartTimeNotSet    = errors.New("start time not set on regular series")
	ErrMissingInterval    = errors.New("pathname E part does not carry an interval")
	ErrNoPathname         = errors.New("record has no pathname")
	ErrWrongKind          = errors.New("operation not valid for this series kind")
	ErrOutOfRange         = errors.New("bound out of range")
	ErrClosed             = errors.New("session is closed")
	ErrEngineMismatch     = errors.New("sessions use different engines")
)

// RangeError reports a paired-data slice bound outside the record's extent.
type RangeError struct {
	Bound string // row_start, row_end, col_start or col_end
	Value int
	Min   int
	Max   int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s = %d outside valid range [%d, %d]", e.Bound, e.Value, e.Min, e.Max)
}

func (e *RangeError) Unwrap() error {
	return ErrOutOfRange
}
