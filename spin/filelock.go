package spin

import (
	"fmt"
	"os"
	"runtime"
	"sync/atomic"
	"unsafe"

	"github.com/joshuapare/memkit/internal/mmfile"
)

// FileSize is the backing file layout: two adjacent 64-bit words at
// offset zero, process slot first, thread slot second.
const FileSize = 16

// FileLock is a spin lock shareable across operating-system processes.
// Its state is two words in a shared mapping of a file: the process
// slot holds the claiming process id, the thread slot the claiming
// handle id. Both sentinel-zero means unlocked.
type FileLock struct {
	path  string
	unmap func() error
	proc  *uint64
	thr   *uint64
	pid   uint64
}

// OpenFileLock creates (or reuses) the backing file at path and maps
// it. Failure to create or map the file is a hard error: a
// cross-process lock with no durable storage is meaningless.
func OpenFileLock(path string) (*FileLock, error) {
	return openFileLockAs(path, uint64(os.Getpid()))
}

// openFileLockAs exists so tests can simulate distinct process
// identities against the same backing file.
func openFileLockAs(path string, pid uint64) (*FileLock, error) {
	data, unmap, err := mmfile.MapShared(path, FileSize)
	if err != nil {
		return nil, fmt.Errorf("spin: open file lock %s: %w", path, err)
	}
	return &FileLock{
		path:  path,
		unmap: unmap,
		proc:  (*uint64)(unsafe.Pointer(&data[0])),
		thr:   (*uint64)(unsafe.Pointer(&data[8])),
		pid:   pid,
	}, nil
}

// Path returns the backing file path.
func (l *FileLock) Path() string { return l.path }

// Acquire claims the lock for h: first the process slot, then the
// thread slot. A handle that already holds both slots returns
// immediately. The two-step claim distinguishes a foreign process
// holding the lock from a sibling handle inside this process.
func (l *FileLock) Acquire(h *Handle, barge bool) {
	if l.IsHeldBy(h) {
		return
	}
	// Another process may hold it, or a sibling handle in this process
	// does; either way the wait is on the process slot.
	for !atomic.CompareAndSwapUint64(l.proc, Unlocked, l.pid) {
		if !barge {
			runtime.Gosched()
		}
	}
	for !atomic.CompareAndSwapUint64(l.thr, Unlocked, h.id) {
		if !barge {
			runtime.Gosched()
		}
	}
}

// Release drops the lock only when both slots match this process and
// handle. The thread slot clears first, then the process slot, so a
// partially-released lock is never claimable at the wrong granularity.
func (l *FileLock) Release(h *Handle) {
	if atomic.LoadUint64(l.proc) != l.pid || atomic.LoadUint64(l.thr) != h.id {
		return
	}
	atomic.StoreUint64(l.thr, Unlocked)
	atomic.StoreUint64(l.proc, Unlocked)
}

// IsLocked reports whether any process currently claims the lock. Both
// slots are consulted: a claim in either means an acquisition is in
// progress or complete.
func (l *FileLock) IsLocked() bool {
	return atomic.LoadUint64(l.proc) != Unlocked || atomic.LoadUint64(l.thr) != Unlocked
}

// IsHeldBy reports whether this process and handle hold the lock.
func (l *FileLock) IsHeldBy(h *Handle) bool {
	return atomic.LoadUint64(l.proc) == l.pid && atomic.LoadUint64(l.thr) == h.id
}

// Holder returns the raw slot values: the claiming process id and
// handle id, both zero when unlocked.
func (l *FileLock) Holder() (pid, tid uint64) {
	return atomic.LoadUint64(l.proc), atomic.LoadUint64(l.thr)
}

// Do runs task under the lock, mirroring Handle.Do semantics: the lock
// releases on every exit path unless it was already held on entry.
func (l *FileLock) Do(h *Handle, task func() error) error {
	if l.IsHeldBy(h) {
		return task()
	}
	l.Acquire(h, false)
	defer l.Release(h)
	return task()
}

// Close unmaps the backing file. A held lock is not cleared: the file
// is the durable lock state and other processes may still be spinning
// on it.
func (l *FileLock) Close() error {
	return l.unmap()
}
