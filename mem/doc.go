// Package mem manages raw memory outside the Go heap.
//
// # Overview
//
// An Arena hands out addresses of off-heap memory blocks, tracks the
// outstanding allocations and their aggregate totals, and reclaims the
// blocks of owners that became unreachable without an explicit free.
// Blocks are backed by private anonymous mappings, so they are invisible
// to the Go garbage collector and never move.
//
// # Key Types
//
//   - Arena: an independent allocator instance with its own tracking
//     state and reclamation worker
//   - Options: construction-time configuration (tracking, alignment,
//     alignment ceiling), immutable after New
//   - Stats: a point-in-time snapshot of the aggregate counters
//   - Registration: a handle covering an owner's address set for
//     automatic reclamation
//
// # Basic Use
//
//	a := mem.New(mem.DefaultOptions())
//	defer a.Close()
//
//	addr, err := a.Alloc(256)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	buf, _ := a.Bytes(addr, 256)
//	copy(buf, payload)
//	a.Free(addr)
//
// # Tracking Model
//
// The tracker's record map and its running totals are updated with
// independent atomic operations. A concurrent stats reader may observe a
// record whose bytes are not yet reflected in the totals; the counters
// are each individually consistent, but the pair is deliberately not a
// single transaction. This keeps the allocate/free hot path free of any
// broad lock.
//
// # Automatic Reclamation
//
// Register attaches an owner object to a snapshot of addresses. When the
// owner becomes unreachable, a single background worker frees every
// address in the snapshot. The snapshot is taken at registration time;
// addresses the owner acquires later are not covered. Explicit release
// and automatic reclamation are both safe: each address is freed at most
// once.
package mem
