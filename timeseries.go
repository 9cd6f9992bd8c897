// Time-series records.
//
// A regular series stores only its start time and interval; every sample
// time is implied by position and expanded on request. An irregular series
// carries one explicit time per value, and the two slices always have the
// same length: every setter that could break that is checked.
package hecdss

import "fmt"

// SeriesKind distinguishes regular from irregular series. The numeric
// values match the archive's record flag.
type SeriesKind int

const (
	Irregular SeriesKind = -1
	Regular   SeriesKind = 1
)

// KindFromInterval classifies a series by its interval in seconds as
// reported by an engine: non-positive means irregular.
func KindFromInterval(seconds int) SeriesKind {
	if seconds <= 0 {
		return Irregular
	}
	return Regular
}

func (k SeriesKind) String() string {
	if k == Regular {
		return "regular"
	}
	return "irregular"
}

// TimeSeries is a regular or irregular series of values.
type TimeSeries struct {
	kind     SeriesKind
	pathname Pathname
	hasPath  bool
	values   []float64
	unit     Unit
	dtype    DataType

	// regular
	start    Time
	hasStart bool
	interval Interval

	// irregular
	times []Time
}

// NewTimeSeries allocates a series of n zero values. An irregular series
// also gets n zero times; a regular series has no start time or interval
// until they are set.
func NewTimeSeries(kind SeriesKind, n int) *TimeSeries {
	if kind != Regular {
		kind = Irregular
	}
	n = max(n, 0)
	ts := &TimeSeries{kind: kind, values: make([]float64, n)}
	if kind == Irregular {
		ts.times = make([]Time, n)
		for i := range ts.times {
			ts.times[i] = Time{Granularity: DefaultGranularity}
		}
	}
	return ts
}

// Kind returns Regular or Irregular.
func (ts *TimeSeries) Kind() SeriesKind { return ts.kind }

// Len returns the number of values.
func (ts *TimeSeries) Len() int { return len(ts.values) }

// Values returns the value buffer. Elements may be modified in place.
func (ts *TimeSeries) Values() []float64 { return ts.values }

// SetValues copies v into the series. v must have exactly Len elements.
func (ts *TimeSeries) SetValues(v []float64) error {
	if len(v) != len(ts.values) {
		return fmt.Errorf("set values: %w: got %d, want %d", ErrLengthMismatch, len(v), len(ts.values))
	}
	copy(ts.values, v)
	return nil
}

// SetTimes assigns sample times. A regular series keeps only times[0] as
// its start time. An irregular series needs exactly Len times.
func (ts *TimeSeries) SetTimes(times []Time) error {
	if ts.kind == Regular {
		if len(times) == 0 {
			return fmt.Errorf("set times: %w: regular series needs a start time", ErrLengthMismatch)
		}
		if err := times[0].check(); err != nil {
			return fmt.Errorf("set times: start: %w", err)
		}
		ts.start = times[0]
		ts.hasStart = true
		return nil
	}
	if len(times) != len(ts.values) {
		return fmt.Errorf("set times: %w: got %d, want %d", ErrLengthMismatch, len(times), len(ts.values))
	}
	for i, t := range times {
		if err := t.check(); err != nil {
			return fmt.Errorf("set times: time %d: %w", i, err)
		}
	}
	copy(ts.times, times)
	return nil
}

// StartTime returns the start of a regular series, or the first time of a
// non-empty irregular one.
func (ts *TimeSeries) StartTime() (Time, bool) {
	if ts.kind == Regular {
		return ts.start, ts.hasStart
	}
	if len(ts.times) == 0 {
		return Time{}, false
	}
	return ts.times[0], true
}

// Times returns the sample times. For a regular series without expand it
// returns only the start time; with expand it returns one time per value,
// stepping by the interval. Irregular series ignore expand.
func (ts *TimeSeries) Times(expand bool) ([]Time, error) {
	if ts.kind == Irregular {
		out := make([]Time, len(ts.times))
		copy(out, ts.times)
		return out, nil
	}
	if !ts.hasStart {
		return nil, ErrStartTimeNotSet
	}
	if err := ts.start.check(); err != nil {
		return nil, err
	}
	if !expand {
		return []Time{ts.start}, nil
	}
	if ts.interval.IsZero() {
		return nil, ErrIntervalNotSet
	}
	if !ts.interval.valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInterval, ts.interval)
	}

	step := ts.interval.Seconds()
	out := make([]Time, len(ts.values))
	t := ts.start
	for i := range out {
		out[i] = t
		t = t.AddSeconds(step)
	}
	return out, nil
}

// Interval returns the sampling interval of a regular series.
func (ts *TimeSeries) Interval() (Interval, bool) {
	return ts.interval, !ts.interval.IsZero()
}

// SetInterval sets the interval of a regular series and, if the series has
// a pathname, rewrites its E part to match.
func (ts *TimeSeries) SetInterval(iv Interval) error {
	if ts.kind != Regular {
		return fmt.Errorf("set interval: %w: %s", ErrWrongKind, ts.kind)
	}
	if !iv.valid() {
		return fmt.Errorf("set interval: %w: %s", ErrInvalidInterval, iv)
	}
	ts.interval = iv
	if ts.hasPath {
		ts.pathname.E = iv.String()
	}
	return nil
}

// Pathname returns the series address, if one has been set.
func (ts *TimeSeries) Pathname() (Pathname, bool) {
	return ts.pathname, ts.hasPath
}

// SetPathname sets the series address.
func (ts *TimeSeries) SetPathname(p Pathname) {
	ts.pathname = p
	ts.hasPath = true
}

// Unit returns the value unit.
func (ts *TimeSeries) Unit() Unit { return ts.unit }

// SetUnit records the unit label, keeping unrecognised text verbatim.
func (ts *TimeSeries) SetUnit(s string) { ts.unit = ParseUnit(s) }

// Type returns the data type.
func (ts *TimeSeries) Type() DataType { return ts.dtype }

// SetType records the data type label, keeping unrecognised text verbatim.
func (ts *TimeSeries) SetType(s string) { ts.dtype = ParseDataType(s) }
