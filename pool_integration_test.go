package rc

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moontrade/rc/pool"
)

// The freelist allocator slots in behind the factories: a released object's
// block is recycled for the next same-class allocation.
func TestPooledAllocator(t *testing.T) {
	resetThing()
	a := pool.New(16)
	SetAllocator(a)
	defer func() {
		SetAllocator(nil)
		a.Close()
	}()

	h := Adopt(New[thing]())
	first := h.Get()
	h.Release()
	require.Equal(t, int64(1), atomic.LoadInt64(&thingFinalized))

	h = Adopt(New[thing]())
	assert.Same(t, first, h.Get())
	// Recycled blocks come back zeroed.
	assert.Equal(t, int64(0), h.Get().value)
	assert.Equal(t, int32(1), h.NumRef())
	h.Release()

	assert.Equal(t, int64(1), a.Hits.Load())
}

func TestPooledAllocatorArray(t *testing.T) {
	resetCells()
	a := pool.New(16)
	SetAllocator(a)
	defer func() {
		SetAllocator(nil)
		a.Close()
	}()

	head := NewArray[cell](4)
	elems := Elems(head)
	for i := range elems {
		elems[i].id = int64(i + 1)
	}
	h := Adopt(head)
	h.Release()

	cellMu.Lock()
	require.Equal(t, []int64{1, 2, 3, 4}, cellSeen)
	cellMu.Unlock()

	// Same-size array lands on the recycled block.
	head2 := NewArray[cell](4)
	assert.Same(t, head, head2)
	h = Adopt(head2)
	h.Release()
}
