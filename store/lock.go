// OS file locks for cross-process coordination.
//
// fileLock holds its mutex across the lock syscall so that Fd() cannot race
// with Close on the same *os.File. setFile(nil) drains an in-flight lock
// and turns later calls into no-ops until a new file is set.
package store

import (
	"os"
	"sync"
)

// LockMode selects shared (read) or exclusive (write) locking.
type LockMode int

const (
	LockShared LockMode = iota
	LockExclusive
)

type fileLock struct {
	mu sync.Mutex
	f  *os.File
}

func (l *fileLock) Lock(mode LockMode) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.f == nil {
		return nil
	}
	return l.lock(mode)
}

func (l *fileLock) Unlock() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.f == nil {
		return nil
	}
	return l.unlock()
}

func (l *fileLock) setFile(f *os.File) {
	l.mu.Lock()
	l.f = f
	l.mu.Unlock()
}
