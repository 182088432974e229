package rc

import (
	"strconv"
	"sync/atomic"
)

// SharedHeader is the concurrent counterpart of Header for objects whose
// handles cross goroutines. Only the counter changes — it is mutated
// atomically — the rest of the protocol is identical. Construction is still
// single threaded: fully initialize the object before sharing it.
type SharedHeader struct {
	refs  int32
	shape uint32
}

// IncRef adds one reference.
//
// Precondition: the calling goroutine already holds a valid reference, and
// that reference was published to it through a synchronized channel (channel
// send, mutex, or a release/acquire atomic). The counter update itself
// publishes nothing about the object's contents; the increment is sound only
// because the reference's existence proves a prior happens-before edge.
func (h *SharedHeader) IncRef() {
	atomic.AddInt32(&h.refs, 1)
}

// DecRef drops one reference and returns the remaining count. When releases
// race, exactly one goroutine observes zero; the atomic decrement orders
// every holder's prior writes before that goroutine runs the finalizer, so
// the finalizer sees all collaborators' writes.
func (h *SharedHeader) DecRef() int32 {
	n := atomic.AddInt32(&h.refs, -1)
	if n < 0 {
		panic("rc: release below zero: " + strconv.Itoa(int(n)))
	}
	return n
}

// NumRef returns the current reference count. The value is a snapshot and
// may be stale by the time it is read.
func (h *SharedHeader) NumRef() int32 { return atomic.LoadInt32(&h.refs) }

// Len reports the number of elements in the owning allocation.
func (h *SharedHeader) Len() int { return int(h.shape & countMask) }

// IsArray reports whether the block was allocated with the Array shape.
func (h *SharedHeader) IsArray() bool { return h.shape&shapeArray != 0 }
