// Sampling intervals for regular time series.
//
// Counted intervals carry a positive multiple of second, minute, hour or
// day. Named intervals (week, month, semi-month, tri-month, year) have
// fixed nominal second counts used by the archive; they are not calendar
// exact and are kept that way for compatibility with stored records.
//
// Text form: "<n><Unit>" for counted intervals ("1Hour", "15Minute") and
// the bare name for named ones ("Week", "Semi-Month"). Units are matched
// case-insensitively.
package hecdss

import (
	"fmt"
	"strconv"
	"strings"
)

// IntervalKind selects the variant of an Interval.
type IntervalKind int

const (
	IntervalSecond IntervalKind = iota + 1
	IntervalMinute
	IntervalHour
	IntervalDay
	IntervalWeek
	IntervalMonth
	IntervalSemiMonth
	IntervalTriMonth
	IntervalYear
)

// Interval is the spacing between samples of a regular series. The zero
// value is not a valid interval.
type Interval struct {
	kind  IntervalKind
	count int
}

// Named intervals.
var (
	Week      = Interval{kind: IntervalWeek}
	Month     = Interval{kind: IntervalMonth}
	SemiMonth = Interval{kind: IntervalSemiMonth}
	TriMonth  = Interval{kind: IntervalTriMonth}
	Year      = Interval{kind: IntervalYear}
)

// Seconds returns an interval of n seconds.
func Seconds(n int) Interval { return Interval{kind: IntervalSecond, count: n} }

// Minutes returns an interval of n minutes.
func Minutes(n int) Interval { return Interval{kind: IntervalMinute, count: n} }

// Hours returns an interval of n hours.
func Hours(n int) Interval { return Interval{kind: IntervalHour, count: n} }

// Days returns an interval of n days.
func Days(n int) Interval { return Interval{kind: IntervalDay, count: n} }

type intervalUnit struct {
	kind    IntervalKind
	name    string
	seconds int
}

// Counted units multiply seconds by the count; named units use seconds as is.
var (
	countedUnits = []intervalUnit{
		{IntervalSecond, "Second", 1},
		{IntervalMinute, "Minute", 60},
		{IntervalHour, "Hour", 3600},
		{IntervalDay, "Day", 86400},
	}
	namedUnits = []intervalUnit{
		{IntervalWeek, "Week", 604800},
		{IntervalMonth, "Month", 2592000},
		{IntervalSemiMonth, "Semi-Month", 1296000},
		{IntervalTriMonth, "Tri-Month", 864000},
		{IntervalYear, "Year", 31536000},
	}
)

func unitOf(kind IntervalKind) (intervalUnit, bool) {
	for _, u := range countedUnits {
		if u.kind == kind {
			return u, true
		}
	}
	for _, u := range namedUnits {
		if u.kind == kind {
			return u, false
		}
	}
	return intervalUnit{}, false
}

// Kind returns the interval variant.
func (iv Interval) Kind() IntervalKind {
	return iv.kind
}

// Count returns the multiple of a counted interval, or 1 for a named one.
func (iv Interval) Count() int {
	if _, counted := unitOf(iv.kind); counted {
		return iv.count
	}
	return 1
}

// IsZero reports whether iv is the unset zero value.
func (iv Interval) IsZero() bool {
	return iv.kind == 0
}

// Seconds returns the interval length: exact for counted intervals,
// nominal for named ones.
func (iv Interval) Seconds() int {
	u, counted := unitOf(iv.kind)
	if counted {
		return u.seconds * iv.count
	}
	return u.seconds
}

// valid reports whether iv is a named interval or a positive multiple of a
// counted unit.
func (iv Interval) valid() bool {
	u, counted := unitOf(iv.kind)
	if counted {
		return iv.count > 0
	}
	return u.seconds > 0
}

// MarshalText implements encoding.TextMarshaler.
func (iv Interval) MarshalText() ([]byte, error) {
	if !iv.valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInterval, iv)
	}
	return []byte(iv.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (iv *Interval) UnmarshalText(text []byte) error {
	parsed, err := ParseInterval(string(text))
	if err != nil {
		return err
	}
	*iv = parsed
	return nil
}

func (iv Interval) String() string {
	u, counted := unitOf(iv.kind)
	if counted {
		return strconv.Itoa(iv.count) + u.name
	}
	return u.name
}

// ParseInterval parses the canonical text form. A leading integer must be
// followed by Second, Minute, Hour or Day; without one the text must name
// Week, Month, Semi-Month, Tri-Month or Year.
func ParseInterval(text string) (Interval, error) {
	s := strings.TrimSpace(text)
	digits := 0
	for digits < len(s) && s[digits] >= '0' && s[digits] <= '9' {
		digits++
	}
	unit := s[digits:]

	if digits > 0 {
		n, err := strconv.Atoi(s[:digits])
		if err != nil || n <= 0 {
			return Interval{}, fmt.Errorf("%w: %q", ErrInvalidInterval, text)
		}
		for _, u := range countedUnits {
			if strings.EqualFold(unit, u.name) {
				return Interval{kind: u.kind, count: n}, nil
			}
		}
		return Interval{}, fmt.Errorf("%w: %q", ErrInvalidInterval, text)
	}

	for _, u := range namedUnits {
		if strings.EqualFold(unit, u.name) {
			return Interval{kind: u.kind}, nil
		}
	}
	return Interval{}, fmt.Errorf("%w: %q", ErrInvalidInterval, text)
}

// IntervalFromSeconds picks an interval for a second count reported by an
// engine. Named nominal values win over counted ones, then the largest
// counted unit that divides seconds evenly.
func IntervalFromSeconds(seconds int) (Interval, error) {
	if seconds <= 0 {
		return Interval{}, fmt.Errorf("%w: %d seconds", ErrInvalidInterval, seconds)
	}
	for _, u := range namedUnits {
		if u.seconds == seconds {
			return Interval{kind: u.kind}, nil
		}
	}
	for i := len(countedUnits) - 1; i >= 0; i-- {
		u := countedUnits[i]
		if seconds%u.seconds == 0 {
			return Interval{kind: u.kind, count: seconds / u.seconds}, nil
		}
	}
	return Interval{}, fmt.Errorf("%w: %d seconds", ErrInvalidInterval, seconds)
}
