package hecdss

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel/metric"
)

// engineMu serialises every engine call in the process together with the
// LastError query that follows it. It also guards Session.handle.
var engineMu sync.Mutex

// Config holds session options. Zero values select defaults.
type Config struct {
	// Logger receives session events. Defaults to slog.Default.
	Logger *slog.Logger
	// Meter creates the engine call instruments. Defaults to the global
	// meter provider.
	Meter metric.Meter
}

// Session is one open archive. Its methods may be called from several
// goroutines; engine calls are serialised process-wide.
type Session struct {
	engine  Engine
	path    string
	id      ulid.ULID
	version int
	handle  Handle

	log     *slog.Logger
	metrics *engineMetrics
}

// Open opens the archive at path through engine. On failure no engine
// handle is left open.
func Open(engine Engine, path string, cfg Config) (*Session, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	m, err := newEngineMetrics(cfg.Meter)
	if err != nil {
		return nil, wrapIO("open", fmt.Errorf("metrics: %w", err))
	}

	s := &Session{
		engine:  engine,
		path:    path,
		id:      ulid.Make(),
		metrics: m,
	}
	s.log = cfg.Logger.With("session", s.id.String(), "file", path)

	start := time.Now()
	engineMu.Lock()
	h, status := engine.Open(path)
	err = check("open", status, engine.LastError(h))
	if err != nil {
		if h != NoHandle {
			engine.Close(h)
		}
	} else {
		s.handle = h
		s.version = engine.Version(h)
	}
	engineMu.Unlock()
	m.record("open", err, time.Since(start))

	if err != nil {
		s.log.Warn("open failed", "group", GroupOf(err).String(), "kind", KindOf(err).String())
		return nil, err
	}
	s.log.Debug("archive opened", "version", s.version)
	return s, nil
}

// ID returns the session identifier used in log records.
func (s *Session) ID() string { return s.id.String() }

// Path returns the archive path the session was opened with.
func (s *Session) Path() string { return s.path }

// Version returns the archive format version reported at open.
func (s *Session) Version() int { return s.version }

// Calendar returns the engine's calendar, serialised with other engine
// calls.
func (s *Session) Calendar() Calendar { return lockedCalendar{s.engine} }

// Close releases the engine handle. Closing twice is a no-op.
func (s *Session) Close() error {
	start := time.Now()
	engineMu.Lock()
	h := s.handle
	if h == NoHandle {
		engineMu.Unlock()
		return nil
	}
	s.handle = NoHandle
	status := s.engine.Close(h)
	err := check("close", status, s.engine.LastError(h))
	engineMu.Unlock()

	s.metrics.record("close", err, time.Since(start))
	s.log.Debug("archive closed")
	return err
}

// do runs one engine call and its LastError query under engineMu.
func (s *Session) do(op string, fn func(h Handle) int) error {
	start := time.Now()
	engineMu.Lock()
	h := s.handle
	if h == NoHandle {
		engineMu.Unlock()
		return fmt.Errorf("%s: %w", op, ErrClosed)
	}
	status := fn(h)
	err := check(op, status, s.engine.LastError(h))
	engineMu.Unlock()

	s.metrics.record(op, err, time.Since(start))
	if err != nil {
		s.log.Warn("engine call failed", "op", op,
			"group", GroupOf(err).String(), "kind", KindOf(err).String())
	}
	return err
}

func (s *Session) free(raw *TSStruct) {
	engineMu.Lock()
	s.engine.FreeTimeSeries(raw)
	engineMu.Unlock()
}

// ReadTimeSeries retrieves the series at p.
func (s *Session) ReadTimeSeries(p Pathname, flags ReadFlags) (*TimeSeries, error) {
	var raw *TSStruct
	err := s.do("read time series", func(h Handle) int {
		raw = s.engine.NewTSStruct(p.String())
		return s.engine.RetrieveTimeSeries(h, raw, flags)
	})
	if raw != nil {
		defer s.free(raw)
	}
	if err != nil {
		return nil, err
	}
	return assembleTimeSeries(p, raw)
}

func assembleTimeSeries(p Pathname, raw *TSStruct) (*TimeSeries, error) {
	n := raw.NumberValues
	kind := KindFromInterval(raw.IntervalSeconds)
	ts := NewTimeSeries(kind, n)
	ts.SetPathname(p)
	ts.SetUnit(raw.Units)
	ts.SetType(raw.Type)

	switch {
	case len(raw.DoubleValues) >= n && len(raw.DoubleValues) > 0:
		copy(ts.values, raw.DoubleValues[:n])
	case len(raw.FloatValues) >= n:
		for i := range ts.values {
			ts.values[i] = float64(raw.FloatValues[i])
		}
	default:
		return nil, fmt.Errorf("read time series %s: %w: %d values reported, %d returned",
			p, ErrLengthMismatch, n, max(len(raw.DoubleValues), len(raw.FloatValues)))
	}

	g := DefaultGranularity
	if raw.GranularitySeconds != 0 {
		var err error
		if g, err = GranularityFromSeconds(raw.GranularitySeconds); err != nil {
			return nil, fmt.Errorf("read time series %s: %w", p, err)
		}
	}

	if kind == Regular {
		iv, err := p.Interval()
		if err != nil {
			if iv, err = IntervalFromSeconds(raw.IntervalSeconds); err != nil {
				return nil, fmt.Errorf("read time series %s: %w", p, err)
			}
		}
		ts.interval = iv
		ts.start = Time{Value: raw.StartTimeSeconds / int(g), Granularity: g, Base: raw.StartJulianDate}
		ts.hasStart = true
		return ts, nil
	}

	if len(raw.Times) < n {
		return nil, fmt.Errorf("read time series %s: %w: %d times for %d values", p, ErrLengthMismatch, len(raw.Times), n)
	}
	for i := range ts.times {
		ts.times[i] = Time{Value: raw.Times[i], Granularity: g, Base: raw.JulianBaseDate}
	}
	return ts, nil
}

// WriteTimeSeries stores ts at its pathname. A regular series needs a start
// time and an interval in the pathname's E part; the E part decides the
// stored interval.
func (s *Session) WriteTimeSeries(ts *TimeSeries, flags WriteFlags) error {
	p, ok := ts.Pathname()
	if !ok {
		return fmt.Errorf("write time series: %w", ErrNoPathname)
	}
	raw, err := s.encodeTimeSeries(p, ts)
	if err != nil {
		return err
	}
	return s.do("write time series", func(h Handle) int {
		return s.engine.StoreTimeSeries(h, raw, flags)
	})
}

func (s *Session) encodeTimeSeries(p Pathname, ts *TimeSeries) (*TSStruct, error) {
	cal := s.Calendar()
	raw := &TSStruct{
		Pathname:     p.String(),
		NumberValues: ts.Len(),
		Units:        ts.Unit().String(),
		Type:         ts.Type().String(),
	}

	if ts.Kind() == Regular {
		iv, err := p.Interval()
		if err != nil {
			return nil, fmt.Errorf("write time series: %w", err)
		}
		start, ok := ts.StartTime()
		if !ok {
			return nil, fmt.Errorf("write time series %s: %w", p, ErrStartTimeNotSet)
		}
		if err := start.check(); err != nil {
			return nil, fmt.Errorf("write time series %s: start: %w", p, err)
		}
		date, clock, err := start.Format(cal)
		if err != nil {
			return nil, fmt.Errorf("write time series %s: %w", p, err)
		}
		raw.StartDate, raw.StartTime = date, clock
		raw.IntervalSeconds = iv.Seconds()
		raw.GranularitySeconds = start.Granularity.Seconds()
		raw.FloatValues = make([]float32, ts.Len())
		for i, v := range ts.values {
			raw.FloatValues[i] = float32(v)
		}
		return raw, nil
	}

	raw.DoubleValues = append([]float64(nil), ts.values...)
	if len(ts.times) == 0 {
		return raw, nil
	}

	// All times share the base day of the first sample and the finest
	// granularity present.
	for i, t := range ts.times {
		if err := t.check(); err != nil {
			return nil, fmt.Errorf("write time series %s: time %d: %w", p, i, err)
		}
	}
	base := ts.times[0].Julian()
	g := ts.times[0].Granularity
	for _, t := range ts.times[1:] {
		g = min(g, t.Granularity)
	}
	raw.Times = make([]int, len(ts.times))
	for i, t := range ts.times {
		raw.Times[i] = t.Rebase(base, g).Value
	}
	raw.GranularitySeconds = g.Seconds()
	raw.JulianBaseDate = base

	date, err := JulianToDate(cal, base, DateFormatMixed)
	if err != nil {
		return nil, fmt.Errorf("write time series %s: %w", p, err)
	}
	raw.BaseDate = date
	return raw, nil
}

// Range selects a 1-based inclusive block of a paired-data record.
type Range struct {
	RowStart, RowEnd int
	ColStart, ColEnd int
}

// ReadPairedData retrieves the paired-data record at p, or the block r of
// it when r is not nil. Bounds are checked against the record's extent
// before anything is retrieved.
func (s *Session) ReadPairedData(p Pathname, r *Range) (*PairedData, error) {
	raw := &PDStruct{Pathname: p.String()}

	if r != nil {
		var rows, cols int
		err := s.do("paired data extent", func(h Handle) int {
			var status int
			rows, cols, status = s.engine.PairedDataExtent(h, raw.Pathname)
			return status
		})
		if err != nil {
			return nil, err
		}
		if err := r.check(rows, cols); err != nil {
			return nil, fmt.Errorf("read paired data %s: %w", p, err)
		}
		raw.StartRow, raw.EndRow = r.RowStart, r.RowEnd
		raw.StartCol, raw.EndCol = r.ColStart, r.ColEnd
	}

	err := s.do("read paired data", func(h Handle) int {
		return s.engine.RetrievePairedData(h, raw)
	})
	if err != nil {
		return nil, err
	}
	return assemblePairedData(p, raw)
}

func (r *Range) check(rows, cols int) error {
	bounds := []struct {
		name   string
		value  int
		extent int
	}{
		{"row_start", r.RowStart, rows},
		{"row_end", r.RowEnd, rows},
		{"col_start", r.ColStart, cols},
		{"col_end", r.ColEnd, cols},
	}
	for _, b := range bounds {
		if b.value < 1 || b.value > b.extent {
			return &RangeError{Bound: b.name, Value: b.value, Min: 1, Max: b.extent}
		}
	}
	if r.RowEnd < r.RowStart {
		return &RangeError{Bound: "row_end", Value: r.RowEnd, Min: r.RowStart, Max: rows}
	}
	if r.ColEnd < r.ColStart {
		return &RangeError{Bound: "col_end", Value: r.ColEnd, Min: r.ColStart, Max: cols}
	}
	return nil
}

func assemblePairedData(p Pathname, raw *PDStruct) (*PairedData, error) {
	rows, cols := raw.NumberOrdinates, raw.NumberCurves
	pd := NewPairedData(rows, cols)
	pd.SetPathname(p)
	if err := pd.SetIndex(raw.Ordinates); err != nil {
		return nil, fmt.Errorf("read paired data %s: %w", p, err)
	}
	if err := pd.SetColumns(raw.Values); err != nil {
		return nil, fmt.Errorf("read paired data %s: %w", p, err)
	}

	// Malformed label buffers are truncated rather than rejected.
	if labels := splitLabels(raw.Labels); len(labels) > 0 {
		pd.headers = labels[:min(len(labels), cols)]
	}

	pd.SetIndexUnit(raw.IndependentUnits)
	pd.SetIndexType(raw.IndependentType)
	pd.SetColumnUnit(raw.DependentUnits)
	pd.SetColumnType(raw.DependentType)
	return pd, nil
}

func splitLabels(buf []byte) []string {
	buf = bytes.TrimRight(buf, "\x00")
	if len(buf) == 0 {
		return nil
	}
	parts := strings.Split(string(buf), "\x00")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func joinLabels(headers []string) []byte {
	if len(headers) == 0 {
		return nil
	}
	var b bytes.Buffer
	for _, h := range headers {
		b.WriteString(h)
		b.WriteByte(0)
	}
	return b.Bytes()
}

// WritePairedData stores pd at its pathname.
func (s *Session) WritePairedData(pd *PairedData, flags WriteFlags) error {
	p, ok := pd.Pathname()
	if !ok {
		return fmt.Errorf("write paired data: %w", ErrNoPathname)
	}
	raw := &PDStruct{
		Pathname:         p.String(),
		NumberOrdinates:  pd.Rows(),
		NumberCurves:     pd.Cols(),
		Ordinates:        append([]float64(nil), pd.Index()...),
		Values:           pd.Flatten(),
		Labels:           joinLabels(pd.Headers()),
		IndependentUnits: pd.IndexUnit().String(),
		IndependentType:  pd.IndexType().String(),
		DependentUnits:   pd.ColumnUnit().String(),
		DependentType:    pd.ColumnType().String(),
	}
	return s.do("write paired data", func(h Handle) int {
		return s.engine.StorePairedData(h, raw, flags)
	})
}

// Copy duplicates the record at from into dst under the pathname to. A nil
// dst copies within s. Both sessions must use the same engine.
func (s *Session) Copy(dst *Session, from, to Pathname) error {
	if dst == nil {
		dst = s
	}
	if dst.engine != s.engine {
		return fmt.Errorf("copy record: %w", ErrEngineMismatch)
	}
	return s.do("copy record", func(h Handle) int {
		// dst.handle is guarded by the same lock. A closed destination
		// reaches the engine as NoHandle and fails there.
		return s.engine.CopyRecord(h, dst.handle, from.String(), to.String())
	})
}

// Catalog lists the pathnames of all current records. Entries that do not
// parse as pathnames are logged and skipped.
func (s *Session) Catalog() ([]Pathname, error) {
	var entries []string
	err := s.do("catalog", func(h Handle) int {
		var status int
		entries, status = s.engine.Catalog(h)
		return status
	})
	if err != nil {
		return nil, err
	}

	out := make([]Pathname, 0, len(entries))
	for _, e := range entries {
		p, err := ParsePathname(e)
		if err != nil {
			s.log.Warn("skipping catalog entry", "entry", e, "err", err)
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// Exists reports whether a current record is stored at p.
func (s *Session) Exists(p Pathname) (bool, error) {
	paths, err := s.Catalog()
	if err != nil {
		return false, err
	}
	want := p.String()
	for _, q := range paths {
		if strings.EqualFold(q.String(), want) {
			return true, nil
		}
	}
	return false, nil
}

// Delete removes the record at p.
func (s *Session) Delete(p Pathname) error {
	return s.do("delete record", func(h Handle) int {
		return s.engine.DeleteRecord(h, p.String())
	})
}

// Squeeze rewrites the archive without deleted or superseded records.
func (s *Session) Squeeze() error {
	return s.do("squeeze", func(h Handle) int {
		return s.engine.Squeeze(h)
	})
}

// lockedCalendar runs calendar calls under engineMu.
type lockedCalendar struct {
	e Engine
}

func (c lockedCalendar) ParseDateTime(text string) (int, int, int) {
	engineMu.Lock()
	defer engineMu.Unlock()
	return c.e.ParseDateTime(text)
}

func (c lockedCalendar) FormatDateTime(value, granularity, base, dateSize, timeSize int) (string, string, int) {
	engineMu.Lock()
	defer engineMu.Unlock()
	return c.e.FormatDateTime(value, granularity, base, dateSize, timeSize)
}

func (c lockedCalendar) DateToJulian(text string) int {
	engineMu.Lock()
	defer engineMu.Unlock()
	return c.e.DateToJulian(text)
}

func (c lockedCalendar) JulianToDate(days, format, size int) (string, int) {
	engineMu.Lock()
	defer engineMu.Unlock()
	return c.e.JulianToDate(days, format, size)
}
