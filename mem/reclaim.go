package mem

import (
	"log/slog"
	"runtime"
	"slices"
	"sync/atomic"
)

// reclaimer is the single background worker that frees the address sets
// of owners the runtime reported unreachable. It never blocks the
// allocator: events arrive over a buffered channel and registration is
// fire-and-forget once the startup gate is open.
type reclaimer struct {
	arena  *Arena
	log    *slog.Logger
	events chan []uintptr

	started chan struct{} // closed once the worker is running
	quit    chan struct{}
	done    chan struct{}

	pending atomic.Int64
}

func newReclaimer(a *Arena, depth int, logger *slog.Logger) *reclaimer {
	r := &reclaimer{
		arena:   a,
		log:     logger,
		events:  make(chan []uintptr, depth),
		started: make(chan struct{}),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go r.run()
	return r
}

func (r *reclaimer) run() {
	close(r.started)
	defer close(r.done)
	for {
		select {
		case addrs := <-r.events:
			r.reclaim(addrs)
		case <-r.quit:
			// Drain what is already queued, then exit. Anything still
			// live is released by Arena.Close.
			for {
				select {
				case addrs := <-r.events:
					r.reclaim(addrs)
				default:
					return
				}
			}
		}
	}
}

func (r *reclaimer) reclaim(addrs []uintptr) {
	for _, addr := range addrs {
		if addr == 0 {
			continue
		}
		r.arena.Free(addr)
	}
	r.pending.Add(-1)
	r.log.Debug("reclaimed unreachable owner", "component", "mem.reclaimer", "addrs", addrs)
}

// enqueue delivers an owner's captured address set to the worker. Runs
// on the runtime's cleanup goroutine, so blocking here is acceptable;
// a closed arena swallows the event since Close releases everything.
func (r *reclaimer) enqueue(addrs []uintptr) {
	r.pending.Add(1)
	select {
	case r.events <- addrs:
	case <-r.quit:
		r.pending.Add(-1)
	}
}

func (r *reclaimer) stop() {
	close(r.quit)
	<-r.done
}

// Registration covers an owner's address snapshot for automatic
// reclamation. Release frees the snapshot early and detaches the
// automatic path; otherwise the addresses are freed when the owner
// becomes unreachable.
type Registration struct {
	arena    *Arena
	addrs    []uintptr
	cleanup  runtime.Cleanup
	released atomic.Bool
}

// Register attaches owner to a snapshot of addrs for automatic
// reclamation. The snapshot is taken now; addresses the owner acquires
// later are not covered. The call blocks until the arena's reclamation
// worker has completed startup, so no registration made during process
// bootstrap can be lost.
//
// When the last reference to owner disappears, the worker frees every
// address in the snapshot. The returned Registration allows an explicit
// early release; either path frees each address at most once.
func Register[T any](a *Arena, owner *T, addrs ...uintptr) (*Registration, error) {
	if owner == nil {
		return nil, ErrNilOwner
	}
	if a.closed.Load() {
		return nil, ErrClosed
	}
	<-a.rec.started

	snapshot := slices.Clone(addrs)
	reg := &Registration{arena: a, addrs: snapshot}
	// The cleanup argument is the snapshot, never the owner, so the
	// registration does not keep the owner reachable.
	reg.cleanup = runtime.AddCleanup(owner, a.rec.enqueue, snapshot)
	return reg, nil
}

// Release frees the registered snapshot immediately and cancels the
// automatic reclamation. Calling Release more than once is a no-op.
func (r *Registration) Release() {
	if !r.released.CompareAndSwap(false, true) {
		return
	}
	r.cleanup.Stop()
	for _, addr := range r.addrs {
		if addr == 0 {
			continue
		}
		r.arena.Free(addr)
	}
}
