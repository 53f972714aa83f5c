package mem

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestArena(t *testing.T, opts Options) *Arena {
	t.Helper()
	a := New(opts)
	t.Cleanup(func() { require.NoError(t, a.Close()) })
	return a
}

func TestAllocSizeOf(t *testing.T) {
	a := newTestArena(t, DefaultOptions())

	addr, err := a.Alloc(100)
	require.NoError(t, err)
	require.NotZero(t, addr)

	size, ok := a.SizeOf(addr)
	require.True(t, ok)
	require.Equal(t, 100, size)

	s := a.Stats()
	require.EqualValues(t, 100, s.TotalBytes)
	require.EqualValues(t, 0, s.OverheadBytes)
	require.EqualValues(t, 1, s.Allocations)
}

func TestAllocAlignedScenario(t *testing.T) {
	a := newTestArena(t, DefaultOptions())

	// 100 rounds to 128 with 28 bytes of overhead
	addr, err := a.AllocAligned(100)
	require.NoError(t, err)

	size, ok := a.SizeOf(addr)
	require.True(t, ok)
	require.Equal(t, 128, size)

	s := a.Stats()
	require.EqualValues(t, 128, s.TotalBytes)
	require.EqualValues(t, 28, s.OverheadBytes)

	// plain Alloc of the same size: exact, no overhead
	addr2, err := a.Alloc(100)
	require.NoError(t, err)
	size, ok = a.SizeOf(addr2)
	require.True(t, ok)
	require.Equal(t, 100, size)
	require.EqualValues(t, 28, a.Stats().OverheadBytes)
}

func TestAllocAlignedAboveCeiling(t *testing.T) {
	opts := DefaultOptions()
	opts.AlignCeiling = 256
	a := newTestArena(t, opts)

	addr, err := a.AllocAligned(300)
	require.NoError(t, err)

	size, ok := a.SizeOf(addr)
	require.True(t, ok)
	require.Equal(t, 300, size)
	require.EqualValues(t, 0, a.Stats().OverheadBytes)
}

func TestAllocAlignedDisabled(t *testing.T) {
	opts := DefaultOptions()
	opts.Alignment = false
	a := newTestArena(t, opts)

	addr, err := a.AllocAligned(100)
	require.NoError(t, err)

	size, ok := a.SizeOf(addr)
	require.True(t, ok)
	require.Equal(t, 100, size)
}

func TestAllocBadSize(t *testing.T) {
	a := newTestArena(t, DefaultOptions())

	_, err := a.Alloc(0)
	require.ErrorIs(t, err, ErrBadSize)
	_, err = a.Alloc(-5)
	require.ErrorIs(t, err, ErrBadSize)
}

func TestBytePatternRoundTrip(t *testing.T) {
	a := newTestArena(t, DefaultOptions())

	const size = 1000
	addr, err := a.Alloc(size)
	require.NoError(t, err)

	buf, err := a.Bytes(addr, size)
	require.NoError(t, err)
	for i := range buf {
		buf[i] = byte(i % 251)
	}

	again, err := a.Bytes(addr, size)
	require.NoError(t, err)
	for i := range again {
		require.Equal(t, byte(i%251), again[i], "offset %d", i)
	}
}

func TestBytesBounds(t *testing.T) {
	a := newTestArena(t, DefaultOptions())

	addr, err := a.Alloc(64)
	require.NoError(t, err)

	_, err = a.Bytes(addr, 65)
	require.ErrorIs(t, err, ErrBadSize)
	_, err = a.Bytes(addr, -1)
	require.ErrorIs(t, err, ErrBadSize)
	_, err = a.Bytes(addr+1, 8)
	require.ErrorIs(t, err, ErrUnknownAddress)
}

func TestFreeIdempotent(t *testing.T) {
	a := newTestArena(t, DefaultOptions())

	addr, err := a.Alloc(100)
	require.NoError(t, err)
	require.EqualValues(t, 100, a.Stats().TotalBytes)

	a.Free(addr)
	s := a.Stats()
	require.EqualValues(t, 0, s.TotalBytes)
	require.EqualValues(t, 0, s.Allocations)
	require.EqualValues(t, 0, s.UntrackedFrees)

	// second free: no crash, no double decrement, observable
	a.Free(addr)
	s = a.Stats()
	require.EqualValues(t, 0, s.TotalBytes)
	require.EqualValues(t, 0, s.Allocations)
	require.EqualValues(t, 1, s.UntrackedFrees)
}

func TestFreeForeignAddress(t *testing.T) {
	a := newTestArena(t, DefaultOptions())

	a.Free(0xdeadbeef)
	s := a.Stats()
	require.EqualValues(t, 0, s.TotalBytes)
	require.EqualValues(t, 1, s.UntrackedFrees)
}

func TestReallocMovesAndRetires(t *testing.T) {
	a := newTestArena(t, DefaultOptions())

	addr, err := a.Alloc(128)
	require.NoError(t, err)
	buf, err := a.Bytes(addr, 128)
	require.NoError(t, err)
	for i := range buf {
		buf[i] = byte(i)
	}

	newAddr, err := a.Realloc(addr, 512)
	require.NoError(t, err)

	// contents survive up to the old size
	out, err := a.Bytes(newAddr, 512)
	require.NoError(t, err)
	for i := 0; i < 128; i++ {
		require.Equal(t, byte(i), out[i], "offset %d", i)
	}

	// old address is retired
	_, ok := a.SizeOf(addr)
	if addr != newAddr {
		require.False(t, ok)
		_, err = a.Bytes(addr, 1)
		require.ErrorIs(t, err, ErrUnknownAddress)
	}

	s := a.Stats()
	require.EqualValues(t, 512, s.TotalBytes)
	require.EqualValues(t, 1, s.Allocations)
}

func TestReallocShrinkKeepsPrefix(t *testing.T) {
	a := newTestArena(t, DefaultOptions())

	addr, err := a.Alloc(256)
	require.NoError(t, err)
	buf, err := a.Bytes(addr, 256)
	require.NoError(t, err)
	for i := range buf {
		buf[i] = byte(i)
	}

	newAddr, err := a.Realloc(addr, 64)
	require.NoError(t, err)
	out, err := a.Bytes(newAddr, 64)
	require.NoError(t, err)
	for i := range out {
		require.Equal(t, byte(i), out[i])
	}
	require.EqualValues(t, 64, a.Stats().TotalBytes)
}

func TestReallocAligned(t *testing.T) {
	a := newTestArena(t, DefaultOptions())

	addr, err := a.Alloc(100)
	require.NoError(t, err)

	newAddr, err := a.ReallocAligned(addr, 200)
	require.NoError(t, err)

	size, ok := a.SizeOf(newAddr)
	require.True(t, ok)
	require.Equal(t, 256, size)
	require.EqualValues(t, 56, a.Stats().OverheadBytes)
}

func TestReallocUnknownAddress(t *testing.T) {
	a := newTestArena(t, DefaultOptions())

	_, err := a.Realloc(0x1234, 64)
	require.ErrorIs(t, err, ErrUnknownAddress)
}

func TestTrackingDisabled(t *testing.T) {
	opts := DefaultOptions()
	opts.Tracking = false
	a := newTestArena(t, opts)

	addr, err := a.Alloc(100)
	require.NoError(t, err)

	_, ok := a.SizeOf(addr)
	require.False(t, ok)

	s := a.Stats()
	require.EqualValues(t, 0, s.TotalBytes)
	require.EqualValues(t, 0, s.Allocations)

	// memory itself still works
	buf, err := a.Bytes(addr, 100)
	require.NoError(t, err)
	buf[0] = 0x7f
	a.Free(addr)
}

func TestConcurrentAllocFree(t *testing.T) {
	a := newTestArena(t, DefaultOptions())

	const (
		workers = 16
		rounds  = 200
		size    = 64
	)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				addr, err := a.Alloc(size)
				if err != nil {
					t.Error(err)
					return
				}
				a.Free(addr)
			}
		}()
	}
	wg.Wait()

	s := a.Stats()
	require.EqualValues(t, 0, s.TotalBytes)
	require.EqualValues(t, 0, s.OverheadBytes)
	require.EqualValues(t, 0, s.Allocations)
	require.EqualValues(t, 0, s.UntrackedFrees)
}

func TestClosedArenaRejectsAlloc(t *testing.T) {
	a := New(DefaultOptions())

	addr, err := a.Alloc(32)
	require.NoError(t, err)

	require.NoError(t, a.Close())
	require.NoError(t, a.Close()) // idempotent

	_, err = a.Alloc(32)
	require.ErrorIs(t, err, ErrClosed)

	// Close released everything
	_, err = a.Bytes(addr, 1)
	require.ErrorIs(t, err, ErrUnknownAddress)
}
