//go:build !unix

package mmfile

import "errors"

// MapAnon falls back to a heap-backed slice when mmap is not available.
// The slice stays reachable through the caller's region registry, so its
// address remains valid until released.
func MapAnon(n int) ([]byte, func() error, error) {
	if n <= 0 {
		return nil, nil, errors.New("mmfile: bad anonymous mapping size")
	}
	return make([]byte, n), func() error { return nil }, nil
}

// MapShared is unavailable without a real shared mapping.
func MapShared(path string, n int) ([]byte, func() error, error) {
	return nil, nil, ErrSharedUnsupported
}
