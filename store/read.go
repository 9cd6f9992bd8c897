// Record boundary and line access. Everything reads through ReadAt in
// fixed chunks, so lookups sharing the reader never move its offset.
package store

import (
	"bytes"
	"errors"
	"io"
	"os"
)

const chunk = 4096

// line returns the record starting at offset, without its newline. The
// last record may lack one.
func line(f *os.File, offset int64) ([]byte, error) {
	var out []byte
	buf := make([]byte, chunk)
	for pos := offset; ; {
		n, err := f.ReadAt(buf, pos)
		if i := bytes.IndexByte(buf[:n], '\n'); i >= 0 {
			return append(out, buf[:i]...), nil
		}
		out = append(out, buf[:n]...)
		if errors.Is(err, io.EOF) {
			if len(out) == 0 {
				return nil, io.EOF
			}
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		pos += int64(n)
	}
}

// nextLine returns the start of the first record beginning after offset
// and before end, or -1.
func nextLine(f *os.File, offset, end int64) (int64, error) {
	buf := make([]byte, chunk)
	for pos := offset; pos < end; {
		n, err := f.ReadAt(buf[:min(int64(chunk), end-pos)], pos)
		if i := bytes.IndexByte(buf[:n], '\n'); i >= 0 {
			if next := pos + int64(i) + 1; next < end {
				return next, nil
			}
			return -1, nil
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return -1, nil
			}
			return -1, err
		}
		pos += int64(n)
	}
	return -1, nil
}

// lineStart returns the start of the record containing the byte at pos,
// never earlier than floor.
func lineStart(f *os.File, pos, floor int64) (int64, error) {
	buf := make([]byte, chunk)
	for pos > floor {
		from := max(floor, pos-chunk)
		n := int(pos - from)
		if _, err := f.ReadAt(buf[:n], from); err != nil {
			return floor, err
		}
		if i := bytes.LastIndexByte(buf[:n], '\n'); i >= 0 {
			return from + int64(i) + 1, nil
		}
		pos = from
	}
	return floor, nil
}

func size(f *os.File) (int64, error) {
	info, err := f.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
