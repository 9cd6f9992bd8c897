// Record layout.
//
// Records are single-line JSON with idx first so that the type, ID and
// timestamp sit at fixed byte offsets and can be read without parsing.
package store

import (
	"time"

	json "github.com/goccy/go-json"
)

// Record type markers.
const (
	TypeCurrent = 2 // live record
	TypeRetired = 3 // superseded or deleted
)

// Record kinds.
const (
	KindRegular   = "RTS"
	KindIrregular = "ITS"
	KindPaired    = "PD"
)

// MinRecordSize is the shortest line that carries the fixed-offset fields.
// Format: {"idx":N,"_id":"XXXXXXXXXXXXXXXX","_ts":NNNNNNNNNNNNN
const MinRecordSize = 53

// Fixed offsets within a record line.
const (
	typeOffset = 7
	idStart    = 16
	idEnd      = 32
	tsStart    = 40
	tsEnd      = 53
)

// Record is one stored archive record.
type Record struct {
	Type      int    `json:"idx"` // TypeCurrent or TypeRetired
	ID        string `json:"_id"` // 16 hex chars
	Timestamp int64  `json:"_ts"` // unix milliseconds
	Pathname  string `json:"_p"`
	Kind      string `json:"_k"`
	Data      string `json:"_d"` // encoded payload
}

// seriesPayload is the decoded _d of a time-series record. Julian is the
// start day of a regular series and the base day of an irregular one.
type seriesPayload struct {
	Units       string    `json:"u,omitempty"`
	Type        string    `json:"t,omitempty"`
	Interval    int       `json:"i,omitempty"`
	Granularity int       `json:"g"`
	Julian      int       `json:"j"`
	Seconds     int       `json:"s,omitempty"`
	Values      []float64 `json:"v"`
	Times       []int     `json:"tm,omitempty"`
}

// pairedPayload is the decoded _d of a paired-data record. Values are
// column-major.
type pairedPayload struct {
	Rows             int       `json:"r"`
	Cols             int       `json:"c"`
	Ordinates        []float64 `json:"o"`
	Values           []float64 `json:"v"`
	Labels           []string  `json:"l,omitempty"`
	IndependentUnits string    `json:"iu,omitempty"`
	IndependentType  string    `json:"it,omitempty"`
	DependentUnits   string    `json:"du,omitempty"`
	DependentType    string    `json:"dt,omitempty"`
}

// Result locates a record line found by a scan.
type Result struct {
	Offset int64
	Length int
	Data   []byte
	ID     string
}

// Entry is the fixed-offset metadata of a record, used by squeeze.
type Entry struct {
	ID     string
	TS     int64
	Type   int
	SrcOff int64
	Length int
}

func decode(data []byte) (*Record, error) {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, ErrCorruptRecord
	}
	return &r, nil
}

// valid reports whether a line can hold a record.
func valid(line []byte) bool {
	return len(line) >= MinRecordSize && line[0] == '{'
}

func recordType(line []byte) int {
	return int(line[typeOffset] - '0')
}

func recordID(line []byte) string {
	return string(line[idStart:idEnd])
}

// pathname decodes only the _p field of a record line.
func pathname(line []byte) string {
	var head struct {
		Pathname string `json:"_p"`
	}
	if err := json.Unmarshal(line, &head); err != nil {
		return ""
	}
	return head.Pathname
}

func now() int64 {
	return time.Now().UnixMilli()
}
