// Engine error classification.
//
// Engines report failures through a last-error side channel rather than
// return values. After each engine call the session reads that channel and
// Translate turns it into a Report: group OK when the native category is
// none or warning, otherwise a group from the category and a kind from the
// native code table. A failed Report becomes an *Error for the caller and
// is never kept for a later call.
package hecdss

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorGroup is the broad class of an engine failure.
type ErrorGroup int

const (
	GroupOK ErrorGroup = iota
	GroupAccess
	GroupFile
	GroupMemory
	GroupUnknown
)

var groupNames = [...]string{"OK", "ACCESS", "FILE", "MEMORY", "UNKNOWN"}

func (g ErrorGroup) String() string {
	if g < 0 || int(g) >= len(groupNames) {
		return fmt.Sprintf("ErrorGroup(%d)", int(g))
	}
	return groupNames[g]
}

// Native error categories as reported in NativeError.Category.
const (
	CategoryNone    = 0
	CategoryWarning = 1
	CategoryAccess  = 2
	CategoryFile    = 3
	CategoryMemory  = 4
)

// ErrorKind is the specific engine failure. Its numeric value is the
// native error code.
type ErrorKind int

const (
	StatusOK ErrorKind = iota
	InvalidFileVersion
	IncompatibleVersion
	IncompatibleVersion6
	InvalidFileName
	NoExclusiveAccess
	UnableToAccessFile
	UnableToWriteFile
	UnableToCreateFile
	NoWritePermission
	NoPermission
	WriteOnReadOnly
	InvalidDSSFile
	InvalidAddress
	InvalidNumberToRead
	InvalidNumberToWrite
	WriteError
	ReadError
	ReadBeyondEOF
	InvalidFileHeader
	TruncatedFile
	InvalidHeaderParameter
	DamagedFile
	ClosedFile
	EmptyFile
	IfltabCorrupt
	KeyCorrupt
	KeyValue
	Key3Location
	CannotLockFile
	CannotLockExclusive
	CannotLockMultiUser
	CannotSqueeze
	InvalidBinStatus
	CannotAllocateMemory
	InvalidParameter
	InvalidNumber
	IncompatibleCall
	NonEmptyFile
	BinSizeConflict
	DifferentRecordType
	WrongRecordType
	NoUndeleteWithReclaim
	ArraySpaceExhausted
	BothNoteKindsUsed
	NoDataGiven
	NoDataRead
	NoTimeWindow
	InvalidDateTime
	InvalidInterval
	TimesNotAscending
	DifferentProfileNumber
	RecordDoesNotExist
	RecordAlreadyExists
	InvalidPathname
	InvalidRecordHeader
	ArrayTooSmall
	NotOpened
	FileDoesNotExist
	FileExists
	NullFilename
	NullPathname
	NullArgument
	NullArray
	UndefinedError
)

// kindNames is indexed by native code.
var kindNames = [...]string{
	"STATUS_OK",
	"INVALID_FILE_VERSION",
	"INCOMPATIBLE_VERSION",
	"INCOMPATIBLE_VERSION_6",
	"INVALID_FILE_NAME",
	"NO_EXCLUSIVE_ACCESS",
	"UNABLE_TO_ACCESS_FILE",
	"UNABLE_TO_WRITE_FILE",
	"UNABLE_TO_CREATE_FILE",
	"NO_WRITE_PERMISSION",
	"NO_PERMISSION",
	"WRITE_ON_READ_ONLY",
	"INVALID_DSS_FILE",
	"INVALID_ADDRESS",
	"INVALID_NUMBER_TO_READ",
	"INVALID_NUMBER_TO_WRITE",
	"WRITE_ERROR",
	"READ_ERROR",
	"READ_BEYOND_EOF",
	"INVALID_FILE_HEADER",
	"TRUNCATED_FILE",
	"INVALID_HEADER_PARAMETER",
	"DAMAGED_FILE",
	"CLOSED_FILE",
	"EMPTY_FILE",
	"IFLTAB_CORRUPT",
	"KEY_CORRUPT",
	"KEY_VALUE",
	"KEY3_LOCATION",
	"CANNOT_LOCK_FILE",
	"CANNOT_LOCK_EXCLUSIVE",
	"CANNOT_LOCK_MULTI_USER",
	"CANNOT_SQUEEZE",
	"INVALID_BIN_STATUS",
	"CANNOT_ALLOCATE_MEMORY",
	"INVALID_PARAMETER",
	"INVALID_NUMBER",
	"INCOMPATIBLE_CALL",
	"NON_EMPTY_FILE",
	"BIN_SIZE_CONFLICT",
	"DIFFERENT_RECORD_TYPE",
	"WRONG_RECORD_TYPE",
	"NO_UNDELETE_WITH_RECLAIM",
	"ARRAY_SPACE_EXHAUSTED",
	"BOTH_NOTE_KINDS_USED",
	"NO_DATA_GIVEN",
	"NO_DATA_READ",
	"NO_TIME_WINDOW",
	"INVALID_DATE_TIME",
	"INVALID_INTERVAL",
	"TIMES_NOT_ASCENDING",
	"DIFFERENT_PROFILE_NUMBER",
	"RECORD_DOES_NOT_EXIST",
	"RECORD_ALREADY_EXISTS",
	"INVALID_PATHNAME",
	"INVALID_RECORD_HEADER",
	"ARRAY_TOO_SMALL",
	"NOT_OPENED",
	"FILE_DOES_NOT_EXIST",
	"FILE_EXISTS",
	"NULL_FILENAME",
	"NULL_PATHNAME",
	"NULL_ARGUMENT",
	"NULL_ARRAY",
	"UNDEFINED_ERROR",
}

// KindFromCode maps a native error code to its kind. Codes outside the
// table map to UndefinedError.
func KindFromCode(code int) ErrorKind {
	if code < 0 || code >= len(kindNames) {
		return UndefinedError
	}
	return ErrorKind(code)
}

func (k ErrorKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
	return kindNames[k]
}

// NativeError is the raw content of an engine's last-error channel.
type NativeError struct {
	Category int
	Code     int
	Message  string
}

// Report is a classified engine outcome.
type Report struct {
	Group   ErrorGroup
	Kind    ErrorKind
	Message string
}

func cleanReport() Report {
	return Report{Group: GroupOK, Kind: StatusOK, Message: "No Error."}
}

// Translate classifies a native error. None and warning categories are OK.
func Translate(ne NativeError) Report {
	r := cleanReport()
	switch ne.Category {
	case CategoryNone, CategoryWarning:
		return r
	case CategoryAccess:
		r.Group = GroupAccess
	case CategoryFile:
		r.Group = GroupFile
	case CategoryMemory:
		r.Group = GroupMemory
	default:
		r.Group = GroupUnknown
	}
	r.Kind = KindFromCode(ne.Code)
	r.Message = strings.TrimRight(ne.Message, "\x00 \n")
	return r
}

// OK reports whether the report is clean.
func (r Report) OK() bool {
	return r.Group == GroupOK
}

// Err returns nil for a clean report and an *Error for op otherwise.
func (r Report) Err(op string) error {
	if r.OK() {
		return nil
	}
	return &Error{Op: op, Group: r.Group, Kind: r.Kind, Message: r.Message}
}

// Error is an engine failure surfaced to the caller.
type Error struct {
	Op      string
	Group   ErrorGroup
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("hecdss: %s: %s (%s)", e.Op, e.Kind, e.Group)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Is matches a target *Error by kind, or by group when the target leaves
// kind at StatusOK.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != StatusOK {
		return t.Kind == e.Kind
	}
	return t.Group == e.Group
}

// KindOf returns the kind of an engine error, StatusOK for nil and
// UndefinedError for errors that did not come from an engine.
func KindOf(err error) ErrorKind {
	if err == nil {
		return StatusOK
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return UndefinedError
}

// GroupOf returns the group of an engine error, GroupOK for nil and
// GroupUnknown for errors that did not come from an engine.
func GroupOf(err error) ErrorGroup {
	if err == nil {
		return GroupOK
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Group
	}
	return GroupUnknown
}

// check converts the outcome of one engine call. A clean report with a
// non-zero status is still a failure: the engine returned one without
// saying why.
func check(op string, status int, ne NativeError) error {
	r := Translate(ne)
	if err := r.Err(op); err != nil {
		return err
	}
	if status != 0 {
		return &Error{
			Op:      op,
			Group:   GroupUnknown,
			Kind:    UndefinedError,
			Message: fmt.Sprintf("engine returned status %d with no error report", status),
		}
	}
	return nil
}

// wrapIO classifies a failure that did not pass through an engine.
func wrapIO(op string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{Op: op, Group: GroupUnknown, Kind: UndefinedError, Message: err.Error()}
}
