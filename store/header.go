// File header.
//
// The header is HeaderSize bytes of JSON padded with spaces and terminated
// by a newline. The dirty flag sits at a fixed byte so it can be toggled
// without re-encoding.
package store

import (
	"bytes"
	"os"

	json "github.com/goccy/go-json"
)

// HeaderSize is the fixed size of the header in bytes.
const HeaderSize = 128

// FormatVersion is the only header version this engine reads and writes.
const FormatVersion = 7

// dirtyOffset is the byte of the _e value: {"_v":7,"_e":X
const dirtyOffset = 13

// Header is the archive metadata at the start of the file.
type Header struct {
	Version     int   `json:"_v"`   // FormatVersion
	Error       int   `json:"_e"`   // 0=clean, 1=dirty
	Algorithm   int   `json:"_alg"` // ID hash algorithm
	Compression int   `json:"_c"`   // payload codec
	Timestamp   int64 `json:"_ts"`  // unix milliseconds when written
	Squeezed    int64 `json:"_s"`   // end of the sorted region, 0 if none
	Count       int   `json:"_n"`   // records in the sorted region
}

func header(f *os.File) (*Header, error) {
	buf := make([]byte, HeaderSize)
	if _, err := f.ReadAt(buf, 0); err != nil {
		return nil, ErrCorruptHeader
	}

	var hdr Header
	if err := json.Unmarshal(bytes.TrimSpace(buf), &hdr); err != nil {
		return nil, ErrCorruptHeader
	}
	return &hdr, nil
}

func dirty(w *os.File, v bool) error {
	b := byte('0')
	if v {
		b = '1'
	}
	_, err := w.WriteAt([]byte{b}, dirtyOffset)
	return err
}

// encode serialises the header to exactly HeaderSize bytes.
func (h *Header) encode() ([]byte, error) {
	data, err := json.Marshal(h)
	if err != nil {
		return nil, err
	}
	if len(data) > HeaderSize-1 {
		return nil, ErrCorruptHeader
	}

	buf := bytes.Repeat([]byte{' '}, HeaderSize)
	copy(buf, data)
	buf[HeaderSize-1] = '\n'
	return buf, nil
}
