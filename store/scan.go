// Scan strategies for the two-region layout.
//
//   - scan: binary search over the squeezed region, aligning each midpoint
//     to the next record boundary.
//   - group: scan, then widen the hit to every neighbour sharing its ID.
//     Different pathnames can hash to the same ID.
//   - sparse: linear pass over records appended since the last squeeze.
//   - scanm: fixed-offset metadata extraction for squeeze and catalog.
package store

import (
	"bufio"
	"cmp"
	"io"
	"os"
	"strconv"
)

func scan(f *os.File, id string, start, end int64) *Result {
	if start >= end {
		return nil
	}

	mid := start + (end-start)/2
	var pivot *Result
	if next, _ := nextLine(f, mid, end); next >= 0 {
		if data, err := line(f, next); err == nil && valid(data) {
			pivot = &Result{next, len(data), data, recordID(data)}
		}
	}
	if pivot == nil {
		pivot = scanBack(f, mid+1, start)
	}
	if pivot == nil {
		return nil
	}

	switch {
	case id == pivot.ID:
		return pivot
	case id < pivot.ID:
		return scan(f, id, start, pivot.Offset)
	default:
		return scan(f, id, pivot.Offset+int64(pivot.Length)+1, end)
	}
}

// scanBack returns the last valid record starting before pos, used when
// no record boundary follows the midpoint within range.
func scanBack(f *os.File, pos, start int64) *Result {
	for pos > start {
		ls, err := lineStart(f, pos-1, start)
		if err != nil {
			return nil
		}
		if data, err := line(f, ls); err == nil && valid(data) {
			return &Result{ls, len(data), data, recordID(data)}
		}
		pos = ls
	}
	return nil
}

// group returns every record in [start, end) with the given ID, in file
// order.
func group(f *os.File, id string, start, end int64) []Result {
	hit := scan(f, id, start, end)
	if hit == nil {
		return nil
	}

	first := hit.Offset
	for first > start {
		prev, err := lineStart(f, first-1, start)
		if err != nil {
			break
		}
		data, err := line(f, prev)
		if err != nil || !valid(data) || recordID(data) != id {
			break
		}
		first = prev
	}

	var results []Result
	for pos := first; pos < end; {
		data, err := line(f, pos)
		if err != nil || len(data) == 0 {
			break
		}
		if valid(data) {
			if recordID(data) != id {
				break
			}
			results = append(results, Result{pos, len(data), data, id})
		}
		pos += int64(len(data)) + 1
	}
	return results
}

// sparse returns the records in [start, end) of type recordType whose ID
// matches id, in file order. An empty id matches everything.
func sparse(f *os.File, id string, start, end int64, recordType int, maxRecord int) []Result {
	var results []Result
	if start >= end {
		return nil
	}

	scanner := bufio.NewScanner(io.NewSectionReader(f, start, end-start))
	scanner.Buffer(make([]byte, 64*1024), maxRecord)
	offset := start

	for scanner.Scan() {
		data := scanner.Bytes()
		length := len(data)

		if valid(data) && recordTypeMatches(data, recordType) {
			if rid := recordID(data); id == "" || rid == id {
				dataCopy := make([]byte, length) // scanner reuses its buffer
				copy(dataCopy, data)
				results = append(results, Result{offset, length, dataCopy, rid})
			}
		}
		offset += int64(length) + 1
	}
	return results
}

func recordTypeMatches(data []byte, t int) bool {
	return t == 0 || recordType(data) == t
}

// scanm extracts fixed-offset metadata for records of recordType in
// [start, end). Pass 0 for all types.
func scanm(f *os.File, start, end int64, recordType int, maxRecord int) []Entry {
	var entries []Entry
	if start >= end {
		return nil
	}

	scanner := bufio.NewScanner(io.NewSectionReader(f, start, end-start))
	scanner.Buffer(make([]byte, 64*1024), maxRecord)
	offset := start

	for scanner.Scan() {
		ln := scanner.Bytes()
		length := len(ln)

		if valid(ln) && recordTypeMatches(ln, recordType) {
			ts, _ := strconv.ParseInt(string(ln[tsStart:tsEnd]), 10, 64)
			entries = append(entries, Entry{
				ID:     recordID(ln),
				TS:     ts,
				Type:   int(ln[typeOffset] - '0'),
				SrcOff: offset,
				Length: length,
			})
		}
		offset += int64(length) + 1
	}
	return entries
}

func byIDThenTS(a, b Entry) int {
	if c := cmp.Compare(a.ID, b.ID); c != 0 {
		return c
	}
	return cmp.Compare(a.TS, b.TS)
}
