package hecdss

import "math"

// Handle identifies an open archive inside an engine. The zero value is
// never a valid handle.
type Handle int64

// NoHandle is returned by Open on failure.
const NoHandle Handle = 0

// Missing marks an absent sample. Engines also use UndefinedValue and
// UndefinedFlag as missing markers.
const (
	Missing        = -math.MaxFloat32
	UndefinedValue = -901.0
	UndefinedFlag  = -902.0
)

// IsMissing reports whether v is one of the missing-value markers.
func IsMissing(v float64) bool {
	return v == Missing || v == UndefinedValue || v == UndefinedFlag
}

// ReadFlags adjust a time-series retrieve.
type ReadFlags struct {
	// TrimMissing drops missing samples from both ends of the series.
	TrimMissing bool
}

// WriteFlags adjust a store.
type WriteFlags struct {
	// NoOverwrite fails with RecordAlreadyExists if the record is present.
	NoOverwrite bool
}

// TSStruct is the buffer exchanged with an engine for one time series. A
// retrieve fills it; a store reads it. Regular series use StartDate and
// StartTime on store and StartJulianDate/StartTimeSeconds on retrieve.
// Irregular series carry Times in GranularitySeconds units from
// JulianBaseDate (retrieve) or BaseDate (store).
type TSStruct struct {
	Pathname string

	FloatValues  []float32
	DoubleValues []float64
	Times        []int
	NumberValues int

	Units string
	Type  string

	IntervalSeconds    int
	GranularitySeconds int

	JulianBaseDate   int
	StartJulianDate  int
	StartTimeSeconds int

	StartDate string
	StartTime string
	BaseDate  string
}

// Reset clears ts for reuse.
func (ts *TSStruct) Reset() {
	*ts = TSStruct{
		FloatValues:  ts.FloatValues[:0],
		DoubleValues: ts.DoubleValues[:0],
		Times:        ts.Times[:0],
	}
}

// PDStruct is the buffer exchanged with an engine for one paired-data
// record. Values are column-major. Labels are NUL-separated column headers.
// The Start/End bounds are 1-based and inclusive; zero means the full
// extent.
type PDStruct struct {
	Pathname string

	StartRow, EndRow int
	StartCol, EndCol int

	NumberOrdinates int
	NumberCurves    int
	Ordinates       []float64
	Values          []float64
	Labels          []byte

	IndependentUnits string
	IndependentType  string
	DependentUnits   string
	DependentType    string
}

// Engine is the archive primitive set a Session drives. Each call returns
// a status where non-zero means failure and leaves details for LastError.
// Engines need not be safe for concurrent use: sessions serialise every
// call together with its LastError query.
type Engine interface {
	Calendar

	Open(path string) (Handle, int)
	Close(h Handle) int
	Version(h Handle) int

	NewTSStruct(path string) *TSStruct
	RetrieveTimeSeries(h Handle, ts *TSStruct, flags ReadFlags) int
	StoreTimeSeries(h Handle, ts *TSStruct, flags WriteFlags) int
	FreeTimeSeries(ts *TSStruct)

	PairedDataExtent(h Handle, path string) (rows, cols, status int)
	RetrievePairedData(h Handle, pd *PDStruct) int
	StorePairedData(h Handle, pd *PDStruct, flags WriteFlags) int

	CopyRecord(from, to Handle, fromPath, toPath string) int
	Catalog(h Handle) ([]string, int)
	DeleteRecord(h Handle, path string) int
	Squeeze(h Handle) int

	// LastError returns the outcome of the most recent call on h. A zero
	// handle asks for the engine-wide state, used after a failed Open.
	LastError(h Handle) NativeError
}
