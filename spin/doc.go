// Package spin implements mutual-exclusion locks that live directly in
// raw memory cells.
//
// # Overview
//
// A lock's entire state is one 64-bit word at an address, typically
// obtained from a mem.Arena. The word holds either the unlocked
// sentinel (zero) or the id of the Handle currently allowed past it.
// Acquisition is a compare-and-swap loop; there is no OS mutex, no
// fairness, no timeout and no cancellation. Spin locks suit only very
// short critical sections.
//
// # Identity
//
// Go does not expose goroutine identity, so ownership is an explicit
// Handle value: a unique nonzero id the caller holds and presents on
// every operation. One handle per locking context; handles must not be
// shared between goroutines that contend with each other.
//
// # Cross-Process Locks
//
// FileLock extends the same discipline over two adjacent words in a
// shared file mapping: a process slot and a thread slot. The two-step
// claim distinguishes "another process holds it" from "another handle
// in my own process holds it". The backing file is the lock's durable
// state; if it cannot be created or mapped, construction fails hard.
package spin
