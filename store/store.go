package store

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	json "github.com/goccy/go-json"

	"github.com/jpl-au/hecdss"
)

// Config holds engine options. Zero values select defaults. HashAlgorithm
// and Compression only apply to archives this engine creates; existing
// archives keep the values in their header.
type Config struct {
	HashAlgorithm int  // 1=xxHash3, 2=FNV1a, 3=Blake2b
	Compression   int  // 1=zstd, 2=lz4
	ReadBuffer    int  // scanner buffer (default 64KB)
	MaxRecordSize int  // largest single record (default 16MB)
	SyncWrites    bool // fsync after every write
	DisableBloom  bool // always scan the sparse region
	Logger        *slog.Logger
}

func (c *Config) defaults() {
	if c.HashAlgorithm == 0 {
		c.HashAlgorithm = AlgXXHash3
	}
	if c.Compression == 0 {
		c.Compression = CompressZstd
	}
	if c.ReadBuffer == 0 {
		c.ReadBuffer = 64 * 1024
	}
	if c.MaxRecordSize == 0 {
		c.MaxRecordSize = 16 * 1024 * 1024
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Engine implements hecdss.Engine over store archives. Each call clears
// and then sets the engine-wide last error.
type Engine struct {
	config Config
	log    *slog.Logger

	mu   sync.Mutex
	next hecdss.Handle
	open map[hecdss.Handle]*archive
	last hecdss.NativeError
}

var _ hecdss.Engine = (*Engine)(nil)

// New returns an engine with no archives open.
func New(config Config) *Engine {
	config.defaults()
	return &Engine{
		config: config,
		log:    config.Logger,
		open:   make(map[hecdss.Handle]*archive),
	}
}

// LastError returns the outcome of the most recent call.
func (e *Engine) LastError(hecdss.Handle) hecdss.NativeError {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.last
}

// begin clears the last error at the start of a call.
func (e *Engine) begin() {
	e.mu.Lock()
	e.last = hecdss.NativeError{}
	e.mu.Unlock()
}

// report records f as the last error and returns a failing status.
func (e *Engine) report(op string, f *failure) int {
	if f == nil {
		return 0
	}
	e.mu.Lock()
	e.last = f.native()
	e.mu.Unlock()
	e.log.Debug("engine call failed", "op", op, "kind", f.kind.String(), "msg", f.msg)
	return -1
}

func (e *Engine) archive(h hecdss.Handle) (*archive, *failure) {
	e.mu.Lock()
	defer e.mu.Unlock()
	a, ok := e.open[h]
	if !ok {
		return nil, accessFail(hecdss.NotOpened, "handle %d is not open", h)
	}
	return a, nil
}

// Open opens or creates the archive at path. The directory must exist.
func (e *Engine) Open(path string) (hecdss.Handle, int) {
	e.begin()
	a, f := openArchive(path, e.config)
	if f != nil {
		return hecdss.NoHandle, e.report("open", f)
	}

	e.mu.Lock()
	e.next++
	h := e.next
	e.open[h] = a
	e.mu.Unlock()

	e.log.Debug("archive opened", "path", path, "handle", int64(h))
	return h, 0
}

// Close releases h.
func (e *Engine) Close(h hecdss.Handle) int {
	e.begin()
	e.mu.Lock()
	a, ok := e.open[h]
	delete(e.open, h)
	e.mu.Unlock()
	if !ok {
		return e.report("close", accessFail(hecdss.NotOpened, "handle %d is not open", h))
	}
	if err := a.close(); err != nil {
		return e.report("close", classify(err, hecdss.WriteError))
	}
	return 0
}

// Version returns the header version of h, or 0 if h is not open.
func (e *Engine) Version(h hecdss.Handle) int {
	a, f := e.archive(h)
	if f != nil {
		return 0
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.header.Version
}

// archive is one open file.
type archive struct {
	root   *os.Root
	name   string
	reader *os.File
	writer *os.File
	lock   *fileLock
	header *Header
	config Config
	tail   int64
	bloom  *bloom
	log    *slog.Logger

	mu sync.RWMutex
}

func openArchive(path string, config Config) (*archive, *failure) {
	if strings.TrimSpace(path) == "" {
		return nil, accessFail(hecdss.NullFilename, "empty file name")
	}

	dir, name := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	root, err := os.OpenRoot(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, accessFail(hecdss.UnableToCreateFile, "%s: directory does not exist", path)
		}
		return nil, accessFail(hecdss.UnableToAccessFile, "%v", err)
	}

	if _, err := root.Stat(name); errors.Is(err, fs.ErrNotExist) {
		if f := create(root, name, config); f != nil {
			root.Close()
			return nil, f
		}
	}

	reader, err := root.OpenFile(name, os.O_RDONLY, 0644)
	if err != nil {
		root.Close()
		return nil, accessFail(hecdss.UnableToAccessFile, "%v", err)
	}
	writer, err := root.OpenFile(name, os.O_RDWR, 0644)
	if err != nil {
		reader.Close()
		root.Close()
		if errors.Is(err, fs.ErrPermission) {
			return nil, accessFail(hecdss.NoWritePermission, "%v", err)
		}
		return nil, accessFail(hecdss.UnableToAccessFile, "%v", err)
	}

	hdr, err := header(reader)
	if err == nil && hdr.Version != FormatVersion {
		err = fileFail(hecdss.IncompatibleVersion, "%s: version %d, want %d", path, hdr.Version, FormatVersion)
	}
	if err == nil && (!validAlgorithm(hdr.Algorithm) || !validCompression(hdr.Compression)) {
		err = fileFail(hecdss.InvalidHeaderParameter, "%s: algorithm %d compression %d", path, hdr.Algorithm, hdr.Compression)
	}
	if err != nil {
		reader.Close()
		writer.Close()
		root.Close()
		return nil, classify(err, hecdss.InvalidFileHeader)
	}

	tail, _ := size(writer)
	a := &archive{
		root:   root,
		name:   name,
		reader: reader,
		writer: writer,
		lock:   &fileLock{f: writer},
		header: hdr,
		config: config,
		tail:   tail,
		log:    config.Logger.With("file", path),
	}

	// Crash detection: a leftover .tmp or a dirty header.
	_, tmpErr := root.Stat(name + ".tmp")
	if tmpErr == nil || hdr.Error == 1 {
		if tmpErr == nil {
			root.Remove(name + ".tmp")
		}
		a.log.Warn("archive was not closed cleanly, repairing")
		if err := a.lock.Lock(LockExclusive); err == nil {
			a.mu.Lock()
			err = a.rebuild(true)
			a.mu.Unlock()
			a.lock.Unlock()
			if err != nil {
				a.log.Error("repair failed", "err", err)
			}
		}
	}

	if !config.DisableBloom {
		sparse := scanm(a.reader, a.sparseStart(), a.tail, 0, config.MaxRecordSize)
		a.bloom = newBloom(len(sparse))
		for _, en := range sparse {
			a.bloom.Add(en.ID)
		}
	}
	return a, nil
}

func create(root *os.Root, name string, config Config) *failure {
	file, err := root.Create(name)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return accessFail(hecdss.NoWritePermission, "%v", err)
		}
		return accessFail(hecdss.UnableToCreateFile, "%v", err)
	}
	defer file.Close()

	hdr := Header{
		Version:     FormatVersion,
		Algorithm:   config.HashAlgorithm,
		Compression: config.Compression,
		Timestamp:   now(),
	}
	buf, err := hdr.encode()
	if err != nil {
		return fileFail(hecdss.InvalidFileHeader, "%v", err)
	}
	if _, err := file.Write(buf); err != nil {
		return accessFail(hecdss.UnableToWriteFile, "%v", err)
	}
	if err := file.Sync(); err != nil {
		return accessFail(hecdss.UnableToWriteFile, "%v", err)
	}
	return nil
}

func (a *archive) close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.lock.setFile(nil)
	if a.header.Error == 1 {
		a.header.Error = 0
		dirty(a.writer, false)
		a.writer.Sync()
	}

	return errors.Join(a.reader.Close(), a.writer.Close(), a.root.Close())
}

// sparseStart is where appends since the last squeeze begin.
func (a *archive) sparseStart() int64 {
	if a.header.Squeezed == 0 {
		return HeaderSize
	}
	return a.header.Squeezed
}

// readLock and writeLock pair the in-process mutex with the OS lock.
// Another process may have appended since the last call, so the tail is
// refreshed.
func (a *archive) readLock() error {
	a.mu.RLock()
	if err := a.lock.Lock(LockShared); err != nil {
		a.mu.RUnlock()
		return fail(hecdss.CategoryAccess, hecdss.CannotLockFile, "%v", err)
	}
	return nil
}

func (a *archive) readUnlock() {
	a.lock.Unlock()
	a.mu.RUnlock()
}

func (a *archive) writeLock() error {
	a.mu.Lock()
	if err := a.lock.Lock(LockExclusive); err != nil {
		a.mu.Unlock()
		return fail(hecdss.CategoryAccess, hecdss.CannotLockExclusive, "%v", err)
	}
	if n, err := size(a.writer); err == nil {
		if a.bloom != nil && n > a.tail {
			for _, en := range scanm(a.reader, a.tail, n, 0, a.config.MaxRecordSize) {
				a.bloom.Add(en.ID)
			}
		}
		a.tail = n
	}
	return nil
}

func (a *archive) writeUnlock() {
	a.lock.Unlock()
	a.mu.Unlock()
}

// find returns the current record for path. The sparse region is newer
// and is searched first, newest to oldest.
func (a *archive) find(path string) (*Result, *Record, error) {
	id := hash(path, a.header.Algorithm)
	end, err := size(a.reader)
	if err != nil {
		return nil, nil, err
	}

	// The bloom filter covers [sparseStart, tail). Anything past tail was
	// appended through another handle and is always scanned.
	from := a.sparseStart()
	if a.bloom != nil && !a.bloom.Contains(id) {
		from = max(a.tail, from)
	}
	if from < end {
		results := sparse(a.reader, id, from, end, TypeCurrent, a.config.MaxRecordSize)
		for i := len(results) - 1; i >= 0; i-- {
			if rec, ok := match(results[i].Data, path); ok {
				return &results[i], rec, nil
			}
		}
	}

	for _, r := range group(a.reader, id, HeaderSize, a.header.Squeezed) {
		if recordType(r.Data) != TypeCurrent {
			continue
		}
		if rec, ok := match(r.Data, path); ok {
			return &r, rec, nil
		}
	}
	return nil, nil, ErrNotFound
}

func match(data []byte, path string) (*Record, bool) {
	rec, err := decode(data)
	if err != nil || !strings.EqualFold(rec.Pathname, path) {
		return nil, false
	}
	return rec, true
}

// put appends payload as the current record for path and retires any
// previous one. Called with the write lock held.
func (a *archive) put(path, kind string, payload any, noOverwrite bool) error {
	old, _, err := a.find(path)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	if old != nil && noOverwrite {
		return fileFail(hecdss.RecordAlreadyExists, "%s", path)
	}

	doc, err := json.Marshal(payload)
	if err != nil {
		return fileFail(hecdss.WriteError, "encode %s: %v", path, err)
	}
	data, err := compress(doc, a.header.Compression)
	if err != nil {
		return fileFail(hecdss.WriteError, "compress %s: %v", path, err)
	}

	rec := &Record{
		Type:      TypeCurrent,
		ID:        hash(path, a.header.Algorithm),
		Timestamp: now(),
		Pathname:  path,
		Kind:      kind,
		Data:      data,
	}
	if _, err := a.append(rec); err != nil {
		return err
	}
	if a.bloom != nil {
		a.bloom.Add(rec.ID)
	}

	if old != nil {
		return a.retire(old.Offset)
	}
	return nil
}

// payload decodes the _d of rec into v.
func (a *archive) payload(rec *Record, v any) error {
	doc, err := decompress(rec.Data, a.header.Compression)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(doc, v); err != nil {
		return ErrCorruptRecord
	}
	return nil
}
