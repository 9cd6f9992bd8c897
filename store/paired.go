package store

import (
	"bytes"
	"strings"

	"github.com/jpl-au/hecdss"
)

func (a *archive) paired(path string) (*pairedPayload, error) {
	_, rec, err := a.find(path)
	if err != nil {
		return nil, err
	}
	if rec.Kind != KindPaired {
		return nil, fileFail(hecdss.WrongRecordType, "%s is %s", path, rec.Kind)
	}
	var p pairedPayload
	if err := a.payload(rec, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// PairedDataExtent returns the full row and column count of a record.
func (e *Engine) PairedDataExtent(h hecdss.Handle, path string) (rows, cols, status int) {
	e.begin()
	a, f := e.archive(h)
	if f != nil {
		return 0, 0, e.report("paired data extent", f)
	}
	if f := checkPath(path); f != nil {
		return 0, 0, e.report("paired data extent", f)
	}
	if err := a.readLock(); err != nil {
		return 0, 0, e.report("paired data extent", classify(err, hecdss.CannotLockFile))
	}
	defer a.readUnlock()

	p, err := a.paired(path)
	if err != nil {
		return 0, 0, e.report("paired data extent", classify(err, hecdss.ReadError))
	}
	return p.Rows, p.Cols, 0
}

// RetrievePairedData fills pd with the block selected by its Start/End
// bounds. Zero bounds select the full extent.
func (e *Engine) RetrievePairedData(h hecdss.Handle, pd *hecdss.PDStruct) int {
	e.begin()
	a, f := e.archive(h)
	if f != nil {
		return e.report("retrieve paired data", f)
	}
	if f := checkPath(pd.Pathname); f != nil {
		return e.report("retrieve paired data", f)
	}
	if err := a.readLock(); err != nil {
		return e.report("retrieve paired data", classify(err, hecdss.CannotLockFile))
	}
	defer a.readUnlock()

	p, err := a.paired(pd.Pathname)
	if err != nil {
		return e.report("retrieve paired data", classify(err, hecdss.ReadError))
	}

	r0, r1 := bounds(pd.StartRow, pd.EndRow, p.Rows)
	c0, c1 := bounds(pd.StartCol, pd.EndCol, p.Cols)
	if r0 < 1 || r1 > p.Rows || r1 < r0 || c0 < 1 || c1 > p.Cols || c1 < c0 {
		return e.report("retrieve paired data", fileFail(hecdss.InvalidParameter,
			"rows %d-%d cols %d-%d outside %dx%d", r0, r1, c0, c1, p.Rows, p.Cols))
	}

	rows, cols := r1-r0+1, c1-c0+1
	pd.NumberOrdinates = rows
	pd.NumberCurves = cols
	pd.Ordinates = append(pd.Ordinates[:0], p.Ordinates[r0-1:r1]...)
	pd.Values = pd.Values[:0]
	for c := c0 - 1; c < c1; c++ {
		col := p.Values[c*p.Rows : (c+1)*p.Rows]
		pd.Values = append(pd.Values, col[r0-1:r1]...)
	}

	pd.Labels = pd.Labels[:0]
	if len(p.Labels) > 0 {
		var b bytes.Buffer
		for c := c0 - 1; c < c1 && c < len(p.Labels); c++ {
			b.WriteString(p.Labels[c])
			b.WriteByte(0)
		}
		pd.Labels = append(pd.Labels, b.Bytes()...)
	}

	pd.IndependentUnits = p.IndependentUnits
	pd.IndependentType = p.IndependentType
	pd.DependentUnits = p.DependentUnits
	pd.DependentType = p.DependentType
	return 0
}

func bounds(start, end, extent int) (int, int) {
	if start == 0 {
		start = 1
	}
	if end == 0 {
		end = extent
	}
	return start, end
}

// StorePairedData writes pd.
func (e *Engine) StorePairedData(h hecdss.Handle, pd *hecdss.PDStruct, flags hecdss.WriteFlags) int {
	e.begin()
	a, f := e.archive(h)
	if f != nil {
		return e.report("store paired data", f)
	}
	if f := checkPath(pd.Pathname); f != nil {
		return e.report("store paired data", f)
	}

	rows, cols := pd.NumberOrdinates, pd.NumberCurves
	if rows <= 0 || cols <= 0 {
		return e.report("store paired data", fileFail(hecdss.NoDataGiven, "%s: %dx%d", pd.Pathname, rows, cols))
	}
	if len(pd.Ordinates) != rows || len(pd.Values) != rows*cols {
		return e.report("store paired data", fileFail(hecdss.InvalidNumberToWrite,
			"%s: %d ordinates and %d values for %dx%d", pd.Pathname, len(pd.Ordinates), len(pd.Values), rows, cols))
	}

	p := &pairedPayload{
		Rows:             rows,
		Cols:             cols,
		Ordinates:        append([]float64(nil), pd.Ordinates...),
		Values:           append([]float64(nil), pd.Values...),
		IndependentUnits: pd.IndependentUnits,
		IndependentType:  pd.IndependentType,
		DependentUnits:   pd.DependentUnits,
		DependentType:    pd.DependentType,
	}
	if labels := bytes.TrimRight(pd.Labels, "\x00"); len(labels) > 0 {
		p.Labels = strings.Split(string(labels), "\x00")
	}

	if err := a.writeLock(); err != nil {
		return e.report("store paired data", classify(err, hecdss.CannotLockExclusive))
	}
	defer a.writeUnlock()

	if err := a.put(pd.Pathname, KindPaired, p, flags.NoOverwrite); err != nil {
		return e.report("store paired data", classify(err, hecdss.WriteError))
	}
	return 0
}
