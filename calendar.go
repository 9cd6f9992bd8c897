// Calendar time model.
//
// A Time is a count of Granularity units since midnight of a julian base
// date. Julian days count from the archive epoch, 31 December 1899 (day 0),
// so 1 January 1900 is day 1. Two Times are only directly addable when they
// share granularity and base; Equal and Compare go through the absolute
// second count so that differently based values still compare correctly.
//
// Parsing and rendering of date strings belong to the engine, so they take
// a Calendar. Failures are logged at debug level and returned as
// ErrInvalidDateTime; callers normally treat them as "no value".
package hecdss

import (
	"cmp"
	"fmt"
	"log/slog"
	"sync/atomic"
)

// Granularity is the unit, in seconds, in which a Time's Value is counted.
type Granularity int

// The four granularities the archive understands.
const (
	Second Granularity = 1
	Minute Granularity = 60
	Hour   Granularity = 3600
	Day    Granularity = 86400
)

// DefaultGranularity applies when a Time is built with a zero Granularity.
const DefaultGranularity = Minute

// Buffer capacities for rendered dates and times, terminator included.
const (
	DateBufferSize     = 13
	TimeBufferSize     = 10
	LongDateBufferSize = 20
)

// UndefinedJulian is the julian day a Calendar returns for an unparseable date.
const UndefinedJulian = -2147483647

// Date format codes understood by JulianToDate.
const (
	DateFormatUpper    = 4   // 01JAN2020
	DateFormatMixed    = 104 // 01Jan2020
	DateFormatLong     = 1   // January 1, 2020
	DateFormatShort    = 2   // Jan 1, 2020
	DateFormatDayFirst = 3   // 1 January 2020
	DateFormatISO      = 9   // 2020-01-01
)

const secondsPerDay = 86400

// Calendar is the engine's date/time primitive set. It is stateless: none
// of these calls touch the last-error side channel.
type Calendar interface {
	// ParseDateTime returns the julian day and seconds past midnight for a
	// free-form date/time string. A non-zero status means failure.
	ParseDateTime(text string) (julian, seconds, status int)
	// FormatDateTime renders value units of granularity seconds past
	// midnight of base into date and time strings of at most dateSize-1
	// and timeSize-1 bytes.
	FormatDateTime(value, granularity, base, dateSize, timeSize int) (date, clock string, status int)
	// DateToJulian returns UndefinedJulian when text is not a date.
	DateToJulian(text string) int
	// JulianToDate renders days in the given format code.
	JulianToDate(days, format, size int) (string, int)
}

var pkgLogger atomic.Pointer[slog.Logger]

// SetLogger replaces the logger used by package-level helpers that have no
// session to log through. A nil logger restores slog.Default.
func SetLogger(l *slog.Logger) {
	pkgLogger.Store(l)
}

func logger() *slog.Logger {
	if l := pkgLogger.Load(); l != nil {
		return l
	}
	return slog.Default()
}

// GranularityFromSeconds validates a granularity reported as a second count.
func GranularityFromSeconds(seconds int) (Granularity, error) {
	switch g := Granularity(seconds); g {
	case Second, Minute, Hour, Day:
		return g, nil
	}
	return 0, fmt.Errorf("%w: %d seconds", ErrInvalidGranularity, seconds)
}

func (g Granularity) valid() bool {
	_, err := GranularityFromSeconds(int(g))
	return err == nil
}

// Seconds returns the length of one unit.
func (g Granularity) Seconds() int {
	return int(g)
}

func (g Granularity) String() string {
	switch g {
	case Second:
		return "second"
	case Minute:
		return "minute"
	case Hour:
		return "hour"
	case Day:
		return "day"
	}
	return fmt.Sprintf("Granularity(%d)", int(g))
}

// Time is a timestamp counted in Granularity units from midnight of the
// julian day Base.
type Time struct {
	Value       int
	Granularity Granularity
	Base        int
}

// NewTime builds a Time. A zero granularity selects DefaultGranularity and
// base 0 is the archive epoch.
func NewTime(value int, g Granularity, base int) (Time, error) {
	if g == 0 {
		g = DefaultGranularity
	}
	if _, err := GranularityFromSeconds(int(g)); err != nil {
		return Time{}, err
	}
	return Time{Value: value, Granularity: g, Base: base}, nil
}

// ParseTime parses text with the calendar and returns a Time based on the
// parsed day. Seconds are divided down to g, dropping any remainder.
func ParseTime(cal Calendar, text string, g Granularity) (Time, error) {
	julian, seconds, err := parseDateTime(cal, text)
	if err != nil {
		return Time{}, err
	}
	return newParsedTime(julian, seconds, julian, g)
}

// ParseTimeAt parses text and expresses it relative to the julian day base.
func ParseTimeAt(cal Calendar, text string, base int, g Granularity) (Time, error) {
	julian, seconds, err := parseDateTime(cal, text)
	if err != nil {
		return Time{}, err
	}
	return newParsedTime(julian, seconds, base, g)
}

func parseDateTime(cal Calendar, text string) (int, int, error) {
	julian, seconds, status := cal.ParseDateTime(text)
	if status != 0 {
		logger().Debug("parse date/time failed", "text", text, "status", status)
		return 0, 0, fmt.Errorf("%w: %q (status %d)", ErrInvalidDateTime, text, status)
	}
	return julian, seconds, nil
}

func newParsedTime(julian, seconds, base int, g Granularity) (Time, error) {
	if g == 0 {
		g = DefaultGranularity
	}
	if _, err := GranularityFromSeconds(int(g)); err != nil {
		return Time{}, err
	}
	total := (julian-base)*secondsPerDay + seconds
	return Time{Value: total / int(g), Granularity: g, Base: base}, nil
}

// Format renders the time as date and clock strings through the calendar,
// bounded by DateBufferSize and TimeBufferSize.
func (t Time) Format(cal Calendar) (date, clock string, err error) {
	date, clock, status := cal.FormatDateTime(t.Value, int(t.Granularity), t.Base, DateBufferSize, TimeBufferSize)
	if status != 0 {
		logger().Debug("format date/time failed", "time", t.String(), "status", status)
		return "", "", fmt.Errorf("%w: %s (status %d)", ErrInvalidDateTime, t, status)
	}
	return bounded(date, DateBufferSize), bounded(clock, TimeBufferSize), nil
}

// AddSeconds advances the time by n seconds, truncated toward zero to whole
// units of the time's granularity. A time with an invalid granularity is
// returned unchanged.
func (t Time) AddSeconds(n int) Time {
	if !t.Granularity.valid() {
		return t
	}
	t.Value += n / int(t.Granularity)
	return t
}

// check reports a granularity other than second, minute, hour or day.
func (t Time) check() error {
	_, err := GranularityFromSeconds(int(t.Granularity))
	return err
}

// Add advances the time by n units of unit, truncated to whole units of the
// time's own granularity.
func (t Time) Add(n int, unit Granularity) Time {
	return t.AddSeconds(n * int(unit))
}

// Seconds returns the absolute number of seconds since the archive epoch.
func (t Time) Seconds() int64 {
	return int64(t.Base)*secondsPerDay + int64(t.Value)*int64(t.Granularity)
}

// Julian returns the julian day the time falls on.
func (t Time) Julian() int {
	return int(floorDiv(t.Seconds(), secondsPerDay))
}

// SecondsOfDay returns the seconds past midnight of Julian.
func (t Time) SecondsOfDay() int {
	s := t.Seconds()
	return int(s - floorDiv(s, secondsPerDay)*secondsPerDay)
}

// Rebase expresses the time relative to base in units of g. Any remainder
// below one unit of g is dropped. An invalid g falls back to seconds.
func (t Time) Rebase(base int, g Granularity) Time {
	if !g.valid() {
		g = Second
	}
	offset := t.Seconds() - int64(base)*secondsPerDay
	return Time{Value: int(floorDiv(offset, int64(g))), Granularity: g, Base: base}
}

// Equal reports whether t and u denote the same instant.
func (t Time) Equal(u Time) bool {
	return t.Seconds() == u.Seconds()
}

// Compare orders t and u by instant.
func (t Time) Compare(u Time) int {
	return cmp.Compare(t.Seconds(), u.Seconds())
}

func (t Time) String() string {
	return fmt.Sprintf("%d %ss from day %d", t.Value, t.Granularity, t.Base)
}

// DateToJulian converts a date string to its julian day.
func DateToJulian(cal Calendar, text string) (int, error) {
	days := cal.DateToJulian(text)
	if days == UndefinedJulian {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDateTime, text)
	}
	return days, nil
}

// JulianToDate renders a julian day with one of the DateFormat codes.
func JulianToDate(cal Calendar, days, format int) (string, error) {
	date, status := cal.JulianToDate(days, format, LongDateBufferSize)
	if status != 0 {
		return "", fmt.Errorf("%w: day %d format %d (status %d)", ErrInvalidDateTime, days, format, status)
	}
	return bounded(date, LongDateBufferSize), nil
}

// bounded trims s to what fits a terminated buffer of size bytes.
func bounded(s string, size int) string {
	if len(s) > size-1 {
		return s[:size-1]
	}
	return s
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
