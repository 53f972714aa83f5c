package mem

import "math/bits"

// nextPow2 returns the smallest power of two >= n. n must be positive
// and small enough that the result does not overflow int.
func nextPow2(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}

// alignedSize returns the rounded allocation size and the alignment
// overhead for a request of size bytes under the given ceiling.
func alignedSize(size, ceiling int) (rounded, overhead int) {
	if size > ceiling {
		return size, 0
	}
	rounded = nextPow2(size)
	return rounded, rounded - size
}
