package mem

import (
	"sync"
	"sync/atomic"
)

// record describes one outstanding allocation.
type record struct {
	size     int // bytes handed to the native allocator (after rounding)
	overhead int // bytes beyond the caller's request
}

// tracker is the concurrent allocation bookkeeping for one arena.
//
// The record map and the running totals are updated with independent
// atomic operations, in that order on insert and removal. Readers may
// briefly observe a record the totals do not yet reflect; each counter
// is individually consistent. No lock guards the pair.
type tracker struct {
	enabled bool

	records  sync.Map // uintptr -> record
	bytes    atomic.Int64
	overhead atomic.Int64
	count    atomic.Int64

	// untrackedFrees counts frees of addresses with no live record:
	// double frees and foreign addresses. They resolve to a no-op but
	// stay observable here.
	untrackedFrees atomic.Int64
}

func newTracker(enabled bool) *tracker {
	return &tracker{enabled: enabled}
}

// add records a new live allocation.
func (t *tracker) add(addr uintptr, size, overhead int) {
	if !t.enabled {
		return
	}
	t.records.Store(addr, record{size: size, overhead: overhead})
	t.bytes.Add(int64(size))
	t.overhead.Add(int64(overhead))
	t.count.Add(1)
}

// remove retires a live allocation, if present.
func (t *tracker) remove(addr uintptr) {
	if !t.enabled {
		return
	}
	v, ok := t.records.LoadAndDelete(addr)
	if !ok {
		return
	}
	rec := v.(record)
	t.bytes.Add(-int64(rec.size))
	t.overhead.Add(-int64(rec.overhead))
	t.count.Add(-1)
}

// sizeOf reports the tracked size of addr, or false when tracking is
// disabled or the address has no live record.
func (t *tracker) sizeOf(addr uintptr) (int, bool) {
	if !t.enabled {
		return 0, false
	}
	v, ok := t.records.Load(addr)
	if !ok {
		return 0, false
	}
	return v.(record).size, true
}

func (t *tracker) noteUntrackedFree() {
	t.untrackedFrees.Add(1)
}
