package spin

import (
	"runtime"
	"sync/atomic"
	"unsafe"

	"github.com/joshuapare/memkit/mem"
)

const (
	// Unlocked is the sentinel value of a free lock word.
	Unlocked uint64 = 0

	// CellSize is the size in bytes of an in-process lock cell.
	CellSize = 8
)

var nextHandleID atomic.Uint64

// Handle is a locking identity. Ids are unique and nonzero for the life
// of the process.
type Handle struct {
	id uint64
}

// NewHandle returns a fresh locking identity.
func NewHandle() *Handle {
	return &Handle{id: nextHandleID.Add(1)}
}

// ID returns the handle's numeric identity.
func (h *Handle) ID() uint64 { return h.id }

// NewCell allocates a zeroed (unlocked) lock cell from the arena and
// returns its address.
func NewCell(a *mem.Arena) (uintptr, error) {
	return a.Alloc(CellSize)
}

func word(addr uintptr) *uint64 {
	return (*uint64)(unsafe.Pointer(addr))
}

// Acquire takes the lock at addr, spinning until it succeeds. If the
// handle already holds the lock the call returns immediately; there is
// no re-entrancy counter to deepen. With barge set the loop busy-spins
// between attempts; otherwise it yields the processor. Barging is
// reserved for a small number of latency-critical callers since it
// starves other runnable goroutines.
func (h *Handle) Acquire(addr uintptr, barge bool) {
	w := word(addr)
	if atomic.LoadUint64(w) == h.id {
		return // already held by me
	}
	for !atomic.CompareAndSwapUint64(w, Unlocked, h.id) {
		if !barge {
			runtime.Gosched()
		}
	}
}

// Release drops the lock at addr if this handle holds it. Releasing a
// lock held by another handle, or not held at all, has no effect.
func (h *Handle) Release(addr uintptr) {
	atomic.CompareAndSwapUint64(word(addr), h.id, Unlocked)
}

// IsLocked reports whether any handle currently holds the lock at addr.
func IsLocked(addr uintptr) bool {
	return atomic.LoadUint64(word(addr)) != Unlocked
}

// IsHeld reports whether this handle currently holds the lock at addr.
func (h *Handle) IsHeld(addr uintptr) bool {
	return atomic.LoadUint64(word(addr)) == h.id
}

// Do runs task under the lock at addr and releases it on every exit
// path, including a panic inside task. If the handle already held the
// lock on entry it stays held afterwards, so an outer critical section
// is never released early.
func (h *Handle) Do(addr uintptr, task func() error) error {
	if h.IsHeld(addr) {
		return task()
	}
	h.Acquire(addr, false)
	defer h.Release(addr)
	return task()
}
