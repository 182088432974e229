// Package rc provides intrusive reference-counted lifetime management for
// off-heap objects. Blocks are carved from the process heap (malloc) rather
// than the Go heap, so reclamation is deterministic: the release that brings
// an object's count to zero finalizes it and frees its block immediately,
// with no tracing, no collector pauses and no cycle detection.
//
// A managed type embeds Header (or SharedHeader when handles cross
// goroutines) as its first field and must be pointer-free — the collector
// never sees these blocks. Allocation shape is chosen at the call site:
// New produces a single Scalar instance, NewArray a contiguous run reclaimed
// as one unit. Ref and SharedRef are scoped owning handles that keep the
// count balanced across clone, assign, move and release.
package rc

import "strconv"

// Finalizer is implemented by managed types that need cleanup before their
// block is reclaimed. For Array blocks it runs once per element.
type Finalizer interface {
	Finalize()
}

// FinalizerFn is a function literal that is a finalizer.
type FinalizerFn func()

// Finalize calls the function literal as a finalizer.
func (fn FinalizerFn) Finalize() { fn() }

// shape word: low 30 bits element count, bit 30 array shape, bit 31 shared
// counter. Written once at allocation, immutable afterwards.
const (
	shapeArray  uint32 = 1 << 30
	shapeShared uint32 = 1 << 31
	countMask          = shapeArray - 1
)

// Header is the intrusive reference count for objects owned by a single
// goroutine at a time. Managed types embed it as their first field:
//
//	type Node struct {
//		rc.Header
//		Value int64
//	}
//
// The count starts at zero; the first handle that adopts the object performs
// the first increment. Not safe for concurrent use — see SharedHeader.
type Header struct {
	refs  int32
	shape uint32
}

// IncRef adds one reference. The caller must already hold a valid reference
// or be adopting a freshly allocated object.
func (h *Header) IncRef() {
	h.refs++
}

// DecRef drops one reference and returns the remaining count. The caller
// that observes zero owns the destruction and must reclaim the object with
// Free; handles do this automatically.
func (h *Header) DecRef() int32 {
	h.refs--
	if h.refs < 0 {
		panic("rc: release below zero: " + strconv.Itoa(int(h.refs)))
	}
	return h.refs
}

// NumRef returns the current reference count.
func (h *Header) NumRef() int32 { return h.refs }

// Len reports the number of elements in the owning allocation: 1 for Scalar
// objects, the allocation count for Array blocks.
func (h *Header) Len() int { return int(h.shape & countMask) }

// IsArray reports whether the block was allocated with the Array shape.
func (h *Header) IsArray() bool { return h.shape&shapeArray != 0 }

func (h *Header) isShared() bool { return h.shape&shapeShared != 0 }
