package store

import (
	"slices"

	json "github.com/goccy/go-json"

	"github.com/jpl-au/hecdss"
)

// Catalog lists the pathnames of all current records in h, sorted.
func (e *Engine) Catalog(h hecdss.Handle) ([]string, int) {
	e.begin()
	a, f := e.archive(h)
	if f != nil {
		return nil, e.report("catalog", f)
	}
	if err := a.readLock(); err != nil {
		return nil, e.report("catalog", classify(err, hecdss.CannotLockFile))
	}
	defer a.readUnlock()

	end, err := size(a.reader)
	if err != nil {
		return nil, e.report("catalog", classify(err, hecdss.ReadError))
	}

	var paths []string
	for _, r := range sparse(a.reader, "", HeaderSize, end, TypeCurrent, a.config.MaxRecordSize) {
		if p := pathname(r.Data); p != "" {
			paths = append(paths, p)
		}
	}
	slices.Sort(paths)
	return slices.Compact(paths), 0
}

// DeleteRecord retires the record at path.
func (e *Engine) DeleteRecord(h hecdss.Handle, path string) int {
	e.begin()
	a, f := e.archive(h)
	if f != nil {
		return e.report("delete record", f)
	}
	if f := checkPath(path); f != nil {
		return e.report("delete record", f)
	}
	if err := a.writeLock(); err != nil {
		return e.report("delete record", classify(err, hecdss.CannotLockExclusive))
	}
	defer a.writeUnlock()

	old, _, err := a.find(path)
	if err != nil {
		return e.report("delete record", classify(err, hecdss.ReadError))
	}
	a.markDirty()
	if err := a.retire(old.Offset); err != nil {
		return e.report("delete record", classify(err, hecdss.WriteError))
	}
	return 0
}

// CopyRecord duplicates fromPath in the archive from as toPath in the
// archive to. The payload is re-encoded for the destination's codec.
func (e *Engine) CopyRecord(from, to hecdss.Handle, fromPath, toPath string) int {
	e.begin()
	src, f := e.archive(from)
	if f != nil {
		return e.report("copy record", f)
	}
	dst, f := e.archive(to)
	if f != nil {
		return e.report("copy record", f)
	}
	if f := checkPath(fromPath); f != nil {
		return e.report("copy record", f)
	}
	if f := checkPath(toPath); f != nil {
		return e.report("copy record", f)
	}

	kind, doc, err := src.export(fromPath)
	if err != nil {
		return e.report("copy record", classify(err, hecdss.ReadError))
	}

	if err := dst.writeLock(); err != nil {
		return e.report("copy record", classify(err, hecdss.CannotLockExclusive))
	}
	defer dst.writeUnlock()

	if err := dst.put(toPath, kind, doc, false); err != nil {
		return e.report("copy record", classify(err, hecdss.WriteError))
	}
	return 0
}

// export returns the kind and decoded payload of the record at path. The
// read lock is released before returning so the caller may write to the
// same archive.
func (a *archive) export(path string) (string, json.RawMessage, error) {
	if err := a.readLock(); err != nil {
		return "", nil, err
	}
	defer a.readUnlock()

	_, rec, err := a.find(path)
	if err != nil {
		return "", nil, err
	}
	doc, err := decompress(rec.Data, a.header.Compression)
	if err != nil {
		return "", nil, err
	}
	return rec.Kind, json.RawMessage(doc), nil
}
