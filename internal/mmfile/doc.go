// Package mmfile provides platform-specific memory-mapping helpers.
//
// Two mapping kinds are exposed:
//
//   - MapAnon: private anonymous read-write mappings, used by the arena
//     allocator to obtain memory outside the Go heap
//   - MapShared: shared file-backed read-write mappings, used by the
//     cross-process spin lock so independent processes observe the same
//     lock words
//
// On Unix both are real mmap(2) mappings. Elsewhere MapAnon degrades to
// a heap-backed slice and MapShared reports ErrSharedUnsupported.
package mmfile

import "errors"

// ErrSharedUnsupported is returned where shared file mappings are not
// available; a cross-process lock cannot be emulated without them.
var ErrSharedUnsupported = errors.New("mmfile: shared file mappings unsupported on this platform")
