package rc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBytesLifecycle(t *testing.T) {
	ca := &countingAllocator{}
	SetAllocator(ca)
	defer SetAllocator(nil)

	b := AllocBytes(64)
	require.Equal(t, 64, b.Len())
	require.Equal(t, int32(1), b.NumRef())

	data := b.Bytes()
	require.Len(t, data, 64)
	for i := range data {
		// Fresh buffers are zeroed.
		require.Zero(t, data[i])
	}
	copy(data, "hello")

	b.Retain()
	require.Equal(t, int32(2), b.NumRef())
	b.Release()
	require.Equal(t, int64(0), ca.frees.Load())

	b.Release()
	assert.Equal(t, int64(1), ca.allocs.Load())
	assert.Equal(t, int64(1), ca.frees.Load())
}

func TestBytesOfRecoversOwner(t *testing.T) {
	b := AllocBytes(32)
	data := b.Bytes()
	data[0] = 0xAB

	owner := BytesOf(data)
	require.Equal(t, b, owner)
	require.Equal(t, int32(1), owner.NumRef())

	// Reslicing keeps the first byte in place.
	owner = BytesOf(data[:8])
	require.Equal(t, b, owner)

	owner.Release()
}

func TestBytesZeroValue(t *testing.T) {
	var b Bytes
	assert.True(t, b.IsNil())
	assert.Equal(t, 0, b.Len())
	assert.Nil(t, b.Bytes())
	assert.Equal(t, int32(0), b.NumRef())
	b.Release() // no-op

	assert.True(t, BytesOf(nil).IsNil())
}

func TestBytesEmptyBuffer(t *testing.T) {
	b := AllocBytes(0)
	require.False(t, b.IsNil())
	require.Equal(t, 0, b.Len())
	require.Nil(t, b.Bytes())
	b.Release()
}
