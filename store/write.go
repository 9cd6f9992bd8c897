// Write primitives for the append-only file.
//
// Records are appended at the tail. The first write after open sets the
// dirty flag so that a crash before Close triggers repair on the next open.
package store

import (
	json "github.com/goccy/go-json"

	"github.com/jpl-au/hecdss"
)

// markDirty sets the dirty flag on the first modification after open.
func (a *archive) markDirty() {
	if a.header.Error == 0 {
		a.header.Error = 1
		dirty(a.writer, true)
	}
}

func (a *archive) raw(ln []byte) (int64, error) {
	a.markDirty()

	offset := a.tail
	data := append(ln, '\n')
	if _, err := a.writer.WriteAt(data, offset); err != nil {
		return 0, fileFail(hecdss.WriteError, "%v", err)
	}
	a.tail += int64(len(data))

	if a.config.SyncWrites {
		a.writer.Sync()
	}
	return offset, nil
}

func (a *archive) append(rec *Record) (int64, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return 0, err
	}
	if len(data) > a.config.MaxRecordSize {
		return 0, ErrTooLarge
	}
	return a.raw(data)
}

// retire marks the record at offset as superseded by patching its type
// byte.
func (a *archive) retire(offset int64) error {
	return a.writeAt(offset+typeOffset, []byte{'0' + TypeRetired})
}

func (a *archive) writeAt(offset int64, data []byte) error {
	if _, err := a.writer.WriteAt(data, offset); err != nil {
		return err
	}
	if a.config.SyncWrites {
		a.writer.Sync()
	}
	return nil
}
