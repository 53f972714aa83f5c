package mem

// Stats is a point-in-time snapshot of an arena's aggregate counters.
//
// TotalBytes and OverheadBytes equal the sums over all live allocation
// records, up to the documented relaxation between the record map and
// the counters. Allocations equals the live record count.
type Stats struct {
	// TotalBytes is the sum of all live allocation sizes, including
	// alignment rounding.
	TotalBytes int64

	// OverheadBytes is the sum of all live alignment overheads.
	OverheadBytes int64

	// Allocations is the number of live allocation records.
	Allocations int64

	// PendingReclaims is the number of owner-reclaimed events received
	// but not yet fully processed by the reclamation worker.
	PendingReclaims int64

	// ReclaimQueueDepth is the current backlog of the reclaim event
	// queue.
	ReclaimQueueDepth int

	// UntrackedFrees counts frees that found no live record (double
	// frees or foreign addresses). Always zero in a correct program.
	UntrackedFrees int64
}

// Stats returns the current counter snapshot.
func (a *Arena) Stats() Stats {
	return Stats{
		TotalBytes:        a.track.bytes.Load(),
		OverheadBytes:     a.track.overhead.Load(),
		Allocations:       a.track.count.Load(),
		PendingReclaims:   a.rec.pending.Load(),
		ReclaimQueueDepth: len(a.rec.events),
		UntrackedFrees:    a.track.untrackedFrees.Load(),
	}
}
