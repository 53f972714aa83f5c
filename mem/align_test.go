package mem

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNextPow2(t *testing.T) {
	cases := []struct {
		in, want int
	}{
		{1, 1},
		{2, 2},
		{3, 4},
		{4, 4},
		{5, 8},
		{100, 128},
		{128, 128},
		{129, 256},
		{4095, 4096},
		{4097, 8192},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, nextPow2(tc.in), "nextPow2(%d)", tc.in)
	}
}

func TestNextPow2IsSmallest(t *testing.T) {
	for n := 1; n <= 1<<14; n++ {
		p := nextPow2(n)
		require.GreaterOrEqual(t, p, n)
		require.Zero(t, p&(p-1), "%d is not a power of two", p)
		if p > 1 {
			require.Less(t, p/2, n, "%d is not the smallest pow2 >= %d", p, n)
		}
	}
}

func TestAlignedSize(t *testing.T) {
	rounded, overhead := alignedSize(100, DefaultAlignCeiling)
	require.Equal(t, 128, rounded)
	require.Equal(t, 28, overhead)

	// above the ceiling: exact sizing
	rounded, overhead = alignedSize(DefaultAlignCeiling+1, DefaultAlignCeiling)
	require.Equal(t, DefaultAlignCeiling+1, rounded)
	require.Zero(t, overhead)

	// exact powers of two carry no overhead
	rounded, overhead = alignedSize(4096, DefaultAlignCeiling)
	require.Equal(t, 4096, rounded)
	require.Zero(t, overhead)
}
