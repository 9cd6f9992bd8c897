// Paired-data records.
//
// A paired-data record is a table: one index (ordinate) column of Rows
// values and Cols value columns (curves) of the same length, optionally
// labelled by one header per column. Flat buffers exchanged with an engine
// are column-major: all of column 0, then all of column 1, and so on.
package hecdss

import "fmt"

// PairedData is a table of Cols curves over a shared index column.
type PairedData struct {
	pathname Pathname
	hasPath  bool
	rows     int
	cols     int
	index    []float64
	columns  [][]float64
	headers  []string

	indexUnit  Unit
	indexType  DataType
	columnUnit Unit
	columnType DataType
}

// NewPairedData allocates a zeroed table of rows by cols.
func NewPairedData(rows, cols int) *PairedData {
	rows, cols = max(rows, 0), max(cols, 0)
	pd := &PairedData{
		rows:    rows,
		cols:    cols,
		index:   make([]float64, rows),
		columns: make([][]float64, cols),
	}
	for i := range pd.columns {
		pd.columns[i] = make([]float64, rows)
	}
	return pd
}

// Rows returns the length of the index and of every column.
func (pd *PairedData) Rows() int { return pd.rows }

// Cols returns the number of value columns.
func (pd *PairedData) Cols() int { return pd.cols }

// Index returns the index column. Elements may be modified in place.
func (pd *PairedData) Index() []float64 { return pd.index }

// SetIndex copies v into the index column. v must have Rows elements.
func (pd *PairedData) SetIndex(v []float64) error {
	if len(v) != pd.rows {
		return fmt.Errorf("set index: %w: got %d, want %d", ErrCapacityMismatch, len(v), pd.rows)
	}
	copy(pd.index, v)
	return nil
}

// Columns returns the value columns. Elements may be modified in place.
func (pd *PairedData) Columns() [][]float64 { return pd.columns }

// Column returns column i, or nil if i is out of range.
func (pd *PairedData) Column(i int) []float64 {
	if i < 0 || i >= pd.cols {
		return nil
	}
	return pd.columns[i]
}

// SetColumns distributes a column-major buffer of Rows*Cols values over
// the columns.
func (pd *PairedData) SetColumns(flat []float64) error {
	if len(flat) != pd.rows*pd.cols {
		return fmt.Errorf("set columns: %w: got %d, want %d", ErrCapacityMismatch, len(flat), pd.rows*pd.cols)
	}
	for c := range pd.columns {
		copy(pd.columns[c], flat[c*pd.rows:(c+1)*pd.rows])
	}
	return nil
}

// Flatten returns the columns as one column-major buffer.
func (pd *PairedData) Flatten() []float64 {
	flat := make([]float64, 0, pd.rows*pd.cols)
	for _, col := range pd.columns {
		flat = append(flat, col...)
	}
	return flat
}

// Headers returns the column headers, or nil if there are none.
func (pd *PairedData) Headers() []string { return pd.headers }

// SetHeaders sets one header per column. A nil slice removes the headers.
func (pd *PairedData) SetHeaders(headers []string) error {
	if headers == nil {
		pd.headers = nil
		return nil
	}
	if len(headers) != pd.cols {
		return fmt.Errorf("set headers: %w: got %d, want %d", ErrCapacityMismatch, len(headers), pd.cols)
	}
	pd.headers = append([]string(nil), headers...)
	return nil
}

// Pathname returns the record address, if one has been set.
func (pd *PairedData) Pathname() (Pathname, bool) { return pd.pathname, pd.hasPath }

// SetPathname sets the record address.
func (pd *PairedData) SetPathname(p Pathname) {
	pd.pathname = p
	pd.hasPath = true
}

// IndexUnit returns the unit of the index column.
func (pd *PairedData) IndexUnit() Unit { return pd.indexUnit }

// IndexType returns the data type of the index column.
func (pd *PairedData) IndexType() DataType { return pd.indexType }

// ColumnUnit returns the unit shared by the value columns.
func (pd *PairedData) ColumnUnit() Unit { return pd.columnUnit }

// ColumnType returns the data type shared by the value columns.
func (pd *PairedData) ColumnType() DataType { return pd.columnType }

// SetIndexUnit parses s as the index unit.
func (pd *PairedData) SetIndexUnit(s string) { pd.indexUnit = ParseUnit(s) }

// SetIndexType parses s as the index data type.
func (pd *PairedData) SetIndexType(s string) { pd.indexType = ParseDataType(s) }

// SetColumnUnit parses s as the value column unit.
func (pd *PairedData) SetColumnUnit(s string) { pd.columnUnit = ParseUnit(s) }

// SetColumnType parses s as the value column data type.
func (pd *PairedData) SetColumnType(s string) { pd.columnType = ParseDataType(s) }
