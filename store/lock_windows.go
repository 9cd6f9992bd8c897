//go:build windows

package store

import "golang.org/x/sys/windows"

func (l *fileLock) lock(mode LockMode) error {
	var flags uint32
	if mode == LockExclusive {
		flags |= windows.LOCKFILE_EXCLUSIVE_LOCK
	}
	ol := new(windows.Overlapped)
	return windows.LockFileEx(windows.Handle(l.f.Fd()), flags, 0, 0xFFFFFFFF, 0xFFFFFFFF, ol)
}

func (l *fileLock) unlock() error {
	ol := new(windows.Overlapped)
	return windows.UnlockFileEx(windows.Handle(l.f.Fd()), 0, 0xFFFFFFFF, 0xFFFFFFFF, ol)
}
