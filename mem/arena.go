package mem

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/joshuapare/memkit/internal/mmfile"
)

// Runtime debug flag for allocation logging - controlled by MEMKIT_LOG_ALLOC env var.
var logAlloc = os.Getenv("MEMKIT_LOG_ALLOC") != ""

// region is one live backing mapping.
type region struct {
	data  []byte
	unmap func() error
}

// Arena is an independent off-heap allocator instance.
//
// Every allocation is backed by its own private anonymous mapping. The
// arena keeps a region registry (always on, independent of tracking) so
// Free and Realloc can locate the backing mapping and so a duplicate or
// foreign free degrades to a counted no-op instead of corrupting state.
//
// All methods are safe for concurrent use.
type Arena struct {
	opts Options

	regions sync.Map // uintptr -> *region
	track   *tracker
	rec     *reclaimer

	closed atomic.Bool
}

// New constructs an arena and starts its reclamation worker.
func New(opts Options) *Arena {
	opts = opts.normalized()
	a := &Arena{
		opts:  opts,
		track: newTracker(opts.Tracking),
	}
	a.rec = newReclaimer(a, opts.QueueDepth, opts.Logger)
	return a
}

// Alloc allocates size bytes of off-heap memory and returns its address.
// Allocation failure is a hard error and is never retried.
func (a *Arena) Alloc(size int) (uintptr, error) {
	return a.alloc(size, false)
}

// AllocAligned allocates size bytes rounded up to the next power of two,
// when alignment is enabled and size is within the configured ceiling.
// Otherwise it behaves exactly like Alloc.
func (a *Arena) AllocAligned(size int) (uintptr, error) {
	return a.alloc(size, true)
}

func (a *Arena) alloc(size int, aligned bool) (uintptr, error) {
	if size <= 0 {
		return 0, fmt.Errorf("%w: %d", ErrBadSize, size)
	}
	if a.closed.Load() {
		return 0, ErrClosed
	}
	want, overhead := size, 0
	if aligned && a.opts.Alignment {
		want, overhead = alignedSize(size, a.opts.AlignCeiling)
	}
	data, unmap, err := mmfile.MapAnon(want)
	if err != nil {
		return 0, fmt.Errorf("mem: alloc %d bytes: %w", want, err)
	}
	addr := uintptr(unsafe.Pointer(&data[0]))
	a.regions.Store(addr, &region{data: data, unmap: unmap})
	a.track.add(addr, want, overhead)
	if logAlloc {
		a.opts.Logger.Debug("alloc", "component", "mem.arena", "addr", addr, "size", want, "overhead", overhead)
	}
	return addr, nil
}

// Realloc resizes the block at addr to size bytes, possibly moving it.
// The returned address may differ from addr; the old address is retired.
func (a *Arena) Realloc(addr uintptr, size int) (uintptr, error) {
	return a.realloc(addr, size, false)
}

// ReallocAligned is Realloc with AllocAligned sizing for the new block.
func (a *Arena) ReallocAligned(addr uintptr, size int) (uintptr, error) {
	return a.realloc(addr, size, true)
}

func (a *Arena) realloc(addr uintptr, size int, aligned bool) (uintptr, error) {
	if size <= 0 {
		return 0, fmt.Errorf("%w: %d", ErrBadSize, size)
	}
	v, ok := a.regions.Load(addr)
	if !ok {
		return 0, fmt.Errorf("%w: %#x", ErrUnknownAddress, addr)
	}
	old := v.(*region)

	newAddr, err := a.alloc(size, aligned)
	if err != nil {
		return 0, err
	}
	nv, _ := a.regions.Load(newAddr)
	copy(nv.(*region).data, old.data)

	// Retire the old block. Record removal and counter updates ride the
	// normal free path, so a concurrent stats reader sees the usual
	// counter-level consistency.
	a.Free(addr)
	return newAddr, nil
}

// Free releases the block at addr. Freeing an address with no live
// region, including a second free of the same address, is a no-op that
// only bumps the untracked-free counter.
func (a *Arena) Free(addr uintptr) {
	v, ok := a.regions.LoadAndDelete(addr)
	if !ok {
		a.track.noteUntrackedFree()
		return
	}
	r := v.(*region)
	a.track.remove(addr)
	if logAlloc {
		a.opts.Logger.Debug("free", "component", "mem.arena", "addr", addr, "size", len(r.data))
	}
	_ = r.unmap()
}

// SizeOf reports the tracked size of the block at addr. It returns
// false when tracking is disabled or the address is unknown; this is a
// best-effort diagnostic, not a safety check.
func (a *Arena) SizeOf(addr uintptr) (int, bool) {
	return a.track.sizeOf(addr)
}

// Bytes returns the first n bytes of the block at addr as a slice over
// the backing memory. Writes through the slice write the block.
func (a *Arena) Bytes(addr uintptr, n int) ([]byte, error) {
	v, ok := a.regions.Load(addr)
	if !ok {
		return nil, fmt.Errorf("%w: %#x", ErrUnknownAddress, addr)
	}
	r := v.(*region)
	if n < 0 || n > len(r.data) {
		return nil, fmt.Errorf("%w: %d bytes requested of a %d byte block", ErrBadSize, n, len(r.data))
	}
	return r.data[:n], nil
}

// Close stops the reclamation worker and releases every live region.
// The arena is unusable afterwards; Close is idempotent.
func (a *Arena) Close() error {
	if !a.closed.CompareAndSwap(false, true) {
		return nil
	}
	a.rec.stop()
	a.regions.Range(func(key, _ any) bool {
		a.Free(key.(uintptr))
		return true
	})
	return nil
}
