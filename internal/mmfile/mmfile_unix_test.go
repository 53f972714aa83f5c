//go:build unix

package mmfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMapAnonUnix(t *testing.T) {
	data, cleanup, err := MapAnon(4096)
	require.NoError(t, err)
	require.Len(t, data, 4096)

	// zero-filled
	for _, b := range data {
		require.Zero(t, b)
	}

	data[0] = 0xde
	data[4095] = 0xef
	require.Equal(t, byte(0xde), data[0])
	require.Equal(t, byte(0xef), data[4095])

	require.NoError(t, cleanup())
	// double unmap is a no-op
	require.NoError(t, cleanup())
}

func TestMapAnonBadSize(t *testing.T) {
	_, _, err := MapAnon(0)
	require.Error(t, err)
	_, _, err = MapAnon(-1)
	require.Error(t, err)
}

func TestMapSharedCreatesAndExtends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lock.bin")

	data, cleanup, err := MapShared(path, 16)
	require.NoError(t, err)
	require.Len(t, data, 16)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.EqualValues(t, 16, info.Size())

	data[3] = 0x42
	require.NoError(t, cleanup())

	// second mapping sees the write through the file
	again, cleanup2, err := MapShared(path, 16)
	require.NoError(t, err)
	defer func() { require.NoError(t, cleanup2()) }()
	require.Equal(t, byte(0x42), again[3])
}

func TestMapSharedVisibleAcrossMappings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lock.bin")

	a, cleanupA, err := MapShared(path, 16)
	require.NoError(t, err)
	defer func() { require.NoError(t, cleanupA()) }()

	b, cleanupB, err := MapShared(path, 16)
	require.NoError(t, err)
	defer func() { require.NoError(t, cleanupB()) }()

	a[7] = 0x99
	require.Equal(t, byte(0x99), b[7])
}

func TestMapSharedBadPath(t *testing.T) {
	_, _, err := MapShared(filepath.Join(t.TempDir(), "no", "such", "dir", "f"), 16)
	require.Error(t, err)
}
