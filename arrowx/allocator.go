// Package arrowx bridges Apache Arrow to rc-managed memory: an Arrow
// allocator whose buffers are refcounted off-heap blocks, so Arrow builders
// and arrays compute over memory the Go collector never traces.
package arrowx

import (
	"github.com/moontrade/rc"
)

// Allocator implements arrow/memory.Allocator over rc.Bytes. Every Allocate
// pins a fresh buffer with a count of one; Free releases it. Arrow's own
// buffer refcounting sits on top and drives these calls.
type Allocator struct{}

func (Allocator) Allocate(size int) []byte {
	if size < 1 {
		return nil
	}
	return rc.AllocBytes(size).Bytes()
}

func (a Allocator) Reallocate(size int, b []byte) []byte {
	if len(b) < 1 {
		return a.Allocate(size)
	}
	if size < 1 {
		rc.BytesOf(b).Release()
		return nil
	}
	nb := rc.AllocBytes(size)
	copy(nb.Bytes(), b)
	rc.BytesOf(b).Release()
	return nb.Bytes()
}

func (Allocator) Free(b []byte) {
	if cap(b) == 0 {
		return
	}
	rc.BytesOf(b).Release()
}
