//go:build unix

package store

import (
	"testing"
	"time"

	"github.com/jpl-au/hecdss"
)

func TestExclusiveLockBlocksSecondHandle(t *testing.T) {
	e, h1, path := openTestEngine(t, quietConfig())

	// flock is per open file description, so a second handle on the same
	// file contends like another process would.
	h2, status := e.Open(path)
	if status != 0 {
		t.Fatalf("second open: %+v", e.LastError(h2))
	}
	defer e.Close(h2)

	a1, _ := e.archive(h1)
	a2, _ := e.archive(h2)

	if err := a1.lock.Lock(LockExclusive); err != nil {
		t.Fatalf("lock: %v", err)
	}

	done := make(chan struct{})
	go func() {
		if err := a2.lock.Lock(LockExclusive); err != nil {
			t.Errorf("second lock: %v", err)
		}
		a2.lock.Unlock()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("second handle acquired the lock while the first held it")
	case <-time.After(100 * time.Millisecond):
	}

	a1.lock.Unlock()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("second handle did not acquire the lock after release")
	}
}

func TestSharedLocksCoexist(t *testing.T) {
	e, h1, path := openTestEngine(t, quietConfig())
	h2, status := e.Open(path)
	if status != 0 {
		t.Fatalf("second open: %+v", e.LastError(h2))
	}
	defer e.Close(h2)

	a1, _ := e.archive(h1)
	a2, _ := e.archive(h2)

	if err := a1.lock.Lock(LockShared); err != nil {
		t.Fatalf("lock: %v", err)
	}
	defer a1.lock.Unlock()

	done := make(chan struct{})
	go func() {
		a2.lock.Lock(LockShared)
		a2.lock.Unlock()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("shared lock blocked behind another shared lock")
	}
}

func TestLockAfterSetFileNil(t *testing.T) {
	var l fileLock
	if err := l.Lock(LockExclusive); err != nil {
		t.Errorf("Lock with no file = %v, want nil", err)
	}
	if err := l.Unlock(); err != nil {
		t.Errorf("Unlock with no file = %v, want nil", err)
	}
}

func TestWritesVisibleAcrossHandles(t *testing.T) {
	e, h1, path := openTestEngine(t, quietConfig())
	h2, status := e.Open(path)
	if status != 0 {
		t.Fatalf("second open: %+v", e.LastError(h2))
	}
	defer e.Close(h2)

	storeRegular(t, e, h1, "/A/B/C//1Day/F/", []float32{42})
	ts := retrieve(t, e, h2, "/A/B/C//1Day/F/", hecdss.ReadFlags{})
	defer e.FreeTimeSeries(ts)
	if ts.DoubleValues[0] != 42 {
		t.Errorf("value = %v, want 42", ts.DoubleValues[0])
	}
}
