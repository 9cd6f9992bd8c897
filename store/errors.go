// Package store is a pure-Go archive engine for hecdss backed by a single
// append-only JSONL file.
//
// Every record is one JSON line. The file starts with a fixed-size header,
// followed by a squeezed region of current records sorted by ID, followed
// by a sparse region that collects new writes in arrival order. Lookups
// binary-search the squeezed region and scan the sparse region linearly,
// optionally skipping it through a bloom filter. Superseded and deleted
// records are retired in place by patching their type byte; Squeeze
// rewrites the file without them.
//
// Failures follow the engine contract: calls return a non-zero status and
// leave a categorised native error for LastError.
package store

import (
	"errors"
	"fmt"

	"github.com/jpl-au/hecdss"
)

// Internal sentinel errors. They are classified into native errors at the
// engine boundary.
var (
	ErrNotFound      = errors.New("record not found")
	ErrCorruptHeader = errors.New("corrupt header")
	ErrCorruptRecord = errors.New("corrupt record")
	ErrDecompress    = errors.New("decompression failed")
	ErrTooLarge      = errors.New("record exceeds maximum size")
)

// failure is a native error waiting to be reported.
type failure struct {
	category int
	kind     hecdss.ErrorKind
	msg      string
}

func (f *failure) Error() string {
	return fmt.Sprintf("%s: %s", f.kind, f.msg)
}

func (f *failure) native() hecdss.NativeError {
	return hecdss.NativeError{Category: f.category, Code: int(f.kind), Message: f.msg}
}

func fail(category int, kind hecdss.ErrorKind, format string, args ...any) *failure {
	return &failure{category: category, kind: kind, msg: fmt.Sprintf(format, args...)}
}

func accessFail(kind hecdss.ErrorKind, format string, args ...any) *failure {
	return fail(hecdss.CategoryAccess, kind, format, args...)
}

func fileFail(kind hecdss.ErrorKind, format string, args ...any) *failure {
	return fail(hecdss.CategoryFile, kind, format, args...)
}

// classify maps an internal error onto a native one. kind is used for
// errors that have no more specific mapping.
func classify(err error, kind hecdss.ErrorKind) *failure {
	var f *failure
	switch {
	case errors.As(err, &f):
		return f
	case errors.Is(err, ErrNotFound):
		return fileFail(hecdss.RecordDoesNotExist, "%v", err)
	case errors.Is(err, ErrCorruptHeader):
		return fileFail(hecdss.InvalidFileHeader, "%v", err)
	case errors.Is(err, ErrCorruptRecord), errors.Is(err, ErrDecompress):
		return fileFail(hecdss.InvalidRecordHeader, "%v", err)
	case errors.Is(err, ErrTooLarge):
		return fileFail(hecdss.ArraySpaceExhausted, "%v", err)
	}
	return fileFail(kind, "%v", err)
}
