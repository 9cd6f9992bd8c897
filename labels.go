// Unit and data-type labels.
//
// Both are open categories: a handful of tokens are recognised
// case-insensitively and everything else is kept verbatim, so reading and
// writing a record never loses a label this package does not know.
package hecdss

import "strings"

type label struct {
	code int
	text string
}

func lookup(table []label, s string) label {
	lower := strings.ToLower(s)
	for _, l := range table {
		if strings.ToLower(l.text) == lower {
			return l
		}
	}
	return label{text: s}
}

// Unit is a measurement unit label.
type Unit struct {
	l label
}

// Recognised units.
var (
	Inch       = Unit{label{1, "inch"}}
	Feet       = Unit{label{2, "feet"}}
	Millimeter = Unit{label{3, "mm"}}
	Meter      = Unit{label{4, "meter"}}
	CFS        = Unit{label{5, "cfs"}}
	CMS        = Unit{label{6, "cms"}}
)

var units = []label{Inch.l, Feet.l, Millimeter.l, Meter.l, CFS.l, CMS.l}

// ParseUnit maps s to a recognised unit or keeps it as given.
func ParseUnit(s string) Unit {
	return Unit{lookup(units, s)}
}

// Known reports whether the unit is one of the recognised tokens.
func (u Unit) Known() bool { return u.l.code != 0 }

// String returns the canonical token, or the original text if unrecognised.
func (u Unit) String() string { return u.l.text }

// DataType describes how values relate to their timestamps.
type DataType struct {
	l label
}

// Recognised data types.
var (
	PerAverage        = DataType{label{1, "PER-AVER"}}
	PerCumulative     = DataType{label{2, "PER-CUM"}}
	InstantValue      = DataType{label{3, "INST-VAL"}}
	InstantCumulative = DataType{label{4, "INST-CUM"}}
)

var dataTypes = []label{PerAverage.l, PerCumulative.l, InstantValue.l, InstantCumulative.l}

// ParseDataType maps s to a recognised data type or keeps it as given.
func ParseDataType(s string) DataType {
	return DataType{lookup(dataTypes, s)}
}

// Known reports whether the type is one of the recognised tokens.
func (t DataType) Known() bool { return t.l.code != 0 }

// String returns the canonical token, or the original text if unrecognised.
func (t DataType) String() string { return t.l.text }
