// Squeeze rewrites the archive with only current records, sorted by ID,
// restoring binary search over the whole file.
//
// The output goes to a .tmp file that is synced and then renamed over the
// original, so a crash mid-rewrite leaves the original intact and at worst
// an orphaned .tmp, which the next open removes before repairing. Repair
// is the same rewrite run at open time; it skips unreadable lines instead
// of failing.
package store

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
	json "github.com/goccy/go-json"

	"github.com/jpl-au/hecdss"
)

// Squeeze removes retired records from h.
func (e *Engine) Squeeze(h hecdss.Handle) int {
	e.begin()
	a, f := e.archive(h)
	if f != nil {
		return e.report("squeeze", f)
	}
	if err := a.writeLock(); err != nil {
		return e.report("squeeze", classify(err, hecdss.CannotLockExclusive))
	}
	defer a.writeUnlock()

	before := a.tail
	if err := a.rebuild(false); err != nil {
		return e.report("squeeze", fileFail(hecdss.CannotSqueeze, "%v", err))
	}
	a.log.Info("archive squeezed",
		"records", a.header.Count,
		"size", humanize.Bytes(uint64(a.tail)),
		"reclaimed", humanize.Bytes(uint64(max(before-a.tail, 0))))
	return 0
}

// rebuild is called with the write lock held.
func (a *archive) rebuild(salvage bool) error {
	end, err := size(a.reader)
	if err != nil {
		return fmt.Errorf("squeeze: stat: %w", err)
	}

	entries := scanm(a.reader, HeaderSize, end, TypeCurrent, a.config.MaxRecordSize)
	slices.SortFunc(entries, byIDThenTS)

	// A crash between append and retire can leave two current records for
	// one pathname; the newer one wins.
	var out [][]byte
	slot := map[string]int{}
	for _, en := range entries {
		data, err := line(a.reader, en.SrcOff)
		if err == nil && !json.Valid(data) {
			err = ErrCorruptRecord
		}
		if err != nil {
			if salvage {
				continue
			}
			return fmt.Errorf("squeeze: read record at %d: %w", en.SrcOff, err)
		}
		key := strings.ToUpper(pathname(data))
		if i, ok := slot[key]; ok {
			out[i] = data
			continue
		}
		slot[key] = len(out)
		out = append(out, data)
	}

	tmpName := a.name + ".tmp"
	tmp, err := a.root.Create(tmpName)
	if err != nil {
		return fmt.Errorf("squeeze: create temp: %w", err)
	}
	if _, err := tmp.Write(make([]byte, HeaderSize)); err != nil {
		tmp.Close()
		return fmt.Errorf("squeeze: write header placeholder: %w", err)
	}

	ow := &offsetWriter{w: tmp, off: HeaderSize}
	for _, data := range out {
		if _, err := ow.Write(append(data, '\n')); err != nil {
			tmp.Close()
			return fmt.Errorf("squeeze: write record: %w", err)
		}
	}

	hdr := Header{
		Version:     FormatVersion,
		Algorithm:   a.header.Algorithm,
		Compression: a.header.Compression,
		Timestamp:   now(),
		Squeezed:    ow.off,
		Count:       len(out),
	}
	hdrBytes, err := hdr.encode()
	if err != nil {
		tmp.Close()
		return fmt.Errorf("squeeze: encode header: %w", err)
	}
	if _, err := tmp.WriteAt(hdrBytes, 0); err != nil {
		tmp.Close()
		return fmt.Errorf("squeeze: write header: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("squeeze: sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("squeeze: close temp: %w", err)
	}

	// Drain in-flight locks before the descriptors go away.
	a.lock.setFile(nil)
	a.reader.Close()
	a.writer.Close()

	if err := a.root.Rename(tmpName, a.name); err != nil {
		return fmt.Errorf("squeeze: rename: %w", err)
	}
	reader, err := a.root.OpenFile(a.name, os.O_RDONLY, 0644)
	if err != nil {
		return fmt.Errorf("squeeze: reopen reader: %w", err)
	}
	writer, err := a.root.OpenFile(a.name, os.O_RDWR, 0644)
	if err != nil {
		reader.Close()
		return fmt.Errorf("squeeze: reopen writer: %w", err)
	}
	parsed, err := header(reader)
	if err != nil {
		reader.Close()
		writer.Close()
		return fmt.Errorf("squeeze: read header: %w", err)
	}

	a.reader = reader
	a.writer = writer
	a.lock.setFile(writer)
	a.header = parsed
	a.tail = ow.off
	if a.bloom != nil {
		a.bloom.Reset()
	}
	return nil
}

// offsetWriter turns WriteAt into sequential writes while tracking the
// position, so the header can be backfilled at offset 0 afterwards.
type offsetWriter struct {
	w   io.WriterAt
	off int64
}

func (ow *offsetWriter) Write(p []byte) (int, error) {
	n, err := ow.w.WriteAt(p, ow.off)
	ow.off += int64(n)
	return n, err
}
