//go:build unix

package mmfile

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// MapAnon returns a private anonymous read-write mapping of n bytes.
// The mapping is zero-filled and lives outside the Go heap.
func MapAnon(n int) ([]byte, func() error, error) {
	if n <= 0 {
		return nil, nil, fmt.Errorf("mmfile: bad anonymous mapping size %d", n)
	}
	data, err := unix.Mmap(-1, 0, n,
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, nil, fmt.Errorf("mmfile: anonymous mmap of %d bytes: %w", n, err)
	}
	return data, unmapOnce(data), nil
}

// MapShared maps the first n bytes of the file at path read-write and
// shared, creating and extending the file as needed. Writes through the
// returned slice are visible to every process mapping the same file.
func MapShared(path string, n int) ([]byte, func() error, error) {
	if n <= 0 {
		return nil, nil, fmt.Errorf("mmfile: bad shared mapping size %d", n)
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close() // safe before return; mapping keeps pages alive

	info, err := f.Stat()
	if err != nil {
		return nil, nil, err
	}
	if info.Size() < int64(n) {
		if err := f.Truncate(int64(n)); err != nil {
			return nil, nil, fmt.Errorf("mmfile: extend %s to %d bytes: %w", path, n, err)
		}
	}
	data, err := unix.Mmap(int(f.Fd()), 0, n,
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_SHARED)
	if err != nil {
		return nil, nil, fmt.Errorf("mmfile: shared mmap of %s: %w", path, err)
	}
	return data, unmapOnce(data), nil
}

func unmapOnce(data []byte) func() error {
	return func() error {
		if data == nil {
			return nil
		}
		err := unix.Munmap(data)
		if errors.Is(err, unix.EINVAL) {
			// Treat double-unmap as no-op for callers.
			return nil
		}
		return err
	}
}
