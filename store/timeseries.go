package store

import (
	"strings"
	"sync"

	"github.com/jpl-au/hecdss"
)

var tsPool = sync.Pool{
	New: func() any { return new(hecdss.TSStruct) },
}

// NewTSStruct returns a cleared buffer addressed to path.
func (e *Engine) NewTSStruct(path string) *hecdss.TSStruct {
	ts := tsPool.Get().(*hecdss.TSStruct)
	ts.Reset()
	ts.Pathname = path
	return ts
}

// FreeTimeSeries returns ts to the pool. ts must not be used afterwards.
func (e *Engine) FreeTimeSeries(ts *hecdss.TSStruct) {
	if ts == nil {
		return
	}
	ts.Reset()
	tsPool.Put(ts)
}

// checkPath validates a record pathname.
func checkPath(path string) *failure {
	if strings.TrimSpace(path) == "" {
		return fileFail(hecdss.NullPathname, "empty pathname")
	}
	if _, err := hecdss.ParsePathname(path); err != nil {
		return fileFail(hecdss.InvalidPathname, "%v", err)
	}
	return nil
}

// RetrieveTimeSeries fills ts from the record at ts.Pathname.
func (e *Engine) RetrieveTimeSeries(h hecdss.Handle, ts *hecdss.TSStruct, flags hecdss.ReadFlags) int {
	e.begin()
	a, f := e.archive(h)
	if f != nil {
		return e.report("retrieve time series", f)
	}
	if f := checkPath(ts.Pathname); f != nil {
		return e.report("retrieve time series", f)
	}
	if err := a.readLock(); err != nil {
		return e.report("retrieve time series", classify(err, hecdss.CannotLockFile))
	}
	defer a.readUnlock()

	_, rec, err := a.find(ts.Pathname)
	if err != nil {
		return e.report("retrieve time series", classify(err, hecdss.ReadError))
	}
	if rec.Kind != KindRegular && rec.Kind != KindIrregular {
		return e.report("retrieve time series", fileFail(hecdss.WrongRecordType, "%s is %s", ts.Pathname, rec.Kind))
	}

	var p seriesPayload
	if err := a.payload(rec, &p); err != nil {
		return e.report("retrieve time series", classify(err, hecdss.ReadError))
	}
	if flags.TrimMissing {
		p = trimMissing(p)
	}

	ts.NumberValues = len(p.Values)
	ts.DoubleValues = append(ts.DoubleValues[:0], p.Values...)
	ts.Units = p.Units
	ts.Type = p.Type
	ts.GranularitySeconds = p.Granularity

	if rec.Kind == KindRegular {
		ts.IntervalSeconds = p.Interval
		ts.StartJulianDate = p.Julian
		ts.StartTimeSeconds = p.Seconds
		return 0
	}
	ts.IntervalSeconds = 0
	ts.JulianBaseDate = p.Julian
	ts.Times = append(ts.Times[:0], p.Times...)
	return 0
}

// trimMissing drops missing samples from both ends. A regular series has
// its start moved forward by the samples dropped at the front.
func trimMissing(p seriesPayload) seriesPayload {
	lo, hi := 0, len(p.Values)
	for lo < hi && hecdss.IsMissing(p.Values[lo]) {
		lo++
	}
	for hi > lo && hecdss.IsMissing(p.Values[hi-1]) {
		hi--
	}

	p.Values = p.Values[lo:hi]
	if p.Times != nil {
		p.Times = p.Times[lo:hi]
		return p
	}
	start := int64(p.Julian)*secondsPerDay + int64(p.Seconds) + int64(lo)*int64(p.Interval)
	p.Julian = int(floorDiv(start, secondsPerDay))
	p.Seconds = int(start - int64(p.Julian)*secondsPerDay)
	return p
}

// StoreTimeSeries writes ts. Series with Times are irregular; otherwise
// the interval comes from the pathname's E part.
func (e *Engine) StoreTimeSeries(h hecdss.Handle, ts *hecdss.TSStruct, flags hecdss.WriteFlags) int {
	e.begin()
	a, f := e.archive(h)
	if f != nil {
		return e.report("store time series", f)
	}

	kind, p, f := e.encodeSeries(ts)
	if f != nil {
		return e.report("store time series", f)
	}

	if err := a.writeLock(); err != nil {
		return e.report("store time series", classify(err, hecdss.CannotLockExclusive))
	}
	defer a.writeUnlock()

	if err := a.put(ts.Pathname, kind, p, flags.NoOverwrite); err != nil {
		return e.report("store time series", classify(err, hecdss.WriteError))
	}
	return 0
}

func (e *Engine) encodeSeries(ts *hecdss.TSStruct) (string, *seriesPayload, *failure) {
	if f := checkPath(ts.Pathname); f != nil {
		return "", nil, f
	}
	n := ts.NumberValues
	if n <= 0 {
		return "", nil, fileFail(hecdss.NoDataGiven, "%s: no values", ts.Pathname)
	}

	p := &seriesPayload{Units: ts.Units, Type: ts.Type, Granularity: ts.GranularitySeconds}
	if p.Granularity == 0 {
		p.Granularity = int(hecdss.DefaultGranularity)
	}
	if _, err := hecdss.GranularityFromSeconds(p.Granularity); err != nil {
		return "", nil, fileFail(hecdss.InvalidParameter, "%v", err)
	}

	switch {
	case len(ts.DoubleValues) >= n:
		p.Values = append([]float64(nil), ts.DoubleValues[:n]...)
	case len(ts.FloatValues) >= n:
		p.Values = make([]float64, n)
		for i, v := range ts.FloatValues[:n] {
			p.Values[i] = float64(v)
		}
	default:
		return "", nil, fileFail(hecdss.InvalidNumberToWrite, "%s: %d values declared, %d given",
			ts.Pathname, n, max(len(ts.DoubleValues), len(ts.FloatValues)))
	}

	if len(ts.Times) > 0 {
		if len(ts.Times) < n {
			return "", nil, fileFail(hecdss.InvalidNumberToWrite, "%s: %d times for %d values", ts.Pathname, len(ts.Times), n)
		}
		for i := 1; i < n; i++ {
			if ts.Times[i] <= ts.Times[i-1] {
				return "", nil, fileFail(hecdss.TimesNotAscending, "%s: time %d not after time %d", ts.Pathname, i, i-1)
			}
		}
		p.Julian = ts.JulianBaseDate
		if ts.BaseDate != "" {
			j := e.DateToJulian(ts.BaseDate)
			if j == hecdss.UndefinedJulian {
				return "", nil, fileFail(hecdss.InvalidDateTime, "base date %q", ts.BaseDate)
			}
			p.Julian = j
		}
		p.Times = append([]int(nil), ts.Times[:n]...)
		return KindIrregular, p, nil
	}

	path, _ := hecdss.ParsePathname(ts.Pathname)
	iv, err := path.Interval()
	if err != nil {
		return "", nil, fileFail(hecdss.InvalidInterval, "%v", err)
	}
	p.Interval = iv.Seconds()

	julian, seconds, status := e.ParseDateTime(ts.StartDate + " " + ts.StartTime)
	if status != 0 {
		return "", nil, fileFail(hecdss.InvalidDateTime, "start %q %q", ts.StartDate, ts.StartTime)
	}
	p.Julian, p.Seconds = julian, seconds
	return KindRegular, p, nil
}
