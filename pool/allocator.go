// Package pool provides a size-classed freelist over malloc for the rc
// core: blocks released by refcounted objects are cached per power-of-two
// class and handed back to the next allocation of the same class, cutting
// malloc traffic for workloads that churn many small objects.
package pool

import (
	"strconv"
	"unsafe"

	logger "github.com/moontrade/log"
	"github.com/moontrade/rc/pkg/counter"
	"github.com/moontrade/rc/pkg/pmath"
	"github.com/moontrade/rc/pkg/spinlock"
	"github.com/moontrade/unsafe/memory"
)

const (
	minClassBits = 3  // 8 bytes
	maxClassBits = 16 // 64KB
	numClasses   = maxClassBits - minClassBits + 1
	maxClassSize = 1 << maxClassBits
)

// Stats counts allocator activity.
type Stats struct {
	Hits     counter.Counter // allocations served from a freelist
	Misses   counter.Counter // allocations that fell through to malloc
	Cached   counter.Counter // frees absorbed into a freelist
	Frees    counter.Counter // frees passed through to malloc
	Retained counter.Counter // bytes currently cached
}

type class struct {
	mu   spinlock.Mutex
	free []unsafe.Pointer
	size uintptr
	max  int
}

// Allocator implements rc.Allocator. Requests above 64KB bypass the
// freelists entirely; everything else is rounded up to its power-of-two
// class. The zero value is not usable — construct with New.
type Allocator struct {
	Stats
	classes [numClasses]class
}

// New creates an Allocator caching at most maxPerClass blocks per size
// class. maxPerClass <= 0 selects the default of 256.
func New(maxPerClass int) *Allocator {
	if maxPerClass <= 0 {
		maxPerClass = 256
	}
	a := &Allocator{}
	for i := range a.classes {
		a.classes[i].size = 1 << uint(minClassBits+i)
		a.classes[i].max = maxPerClass
	}
	return a
}

func classIndex(size uintptr) int {
	if size == 0 || size > maxClassSize {
		return -1
	}
	idx := pmath.PowerOf2Index(int(size)) - minClassBits
	if idx < 0 {
		idx = 0
	}
	return idx
}

// Alloc returns a zeroed block of at least size bytes.
func (a *Allocator) Alloc(size uintptr) unsafe.Pointer {
	ci := classIndex(size)
	if ci < 0 {
		a.Misses.Incr()
		return rawAlloc(size)
	}
	c := &a.classes[ci]
	c.mu.Lock()
	if n := len(c.free); n > 0 {
		p := c.free[n-1]
		c.free = c.free[:n-1]
		c.mu.Unlock()
		a.Hits.Incr()
		a.Retained.Sub(int64(c.size))
		memclrNoHeapPointers(p, c.size)
		return p
	}
	c.mu.Unlock()
	a.Misses.Incr()
	return rawAlloc(c.size)
}

// Free returns a block allocated with the same size. Blocks are cached up to
// the class limit, then released to malloc.
func (a *Allocator) Free(ptr unsafe.Pointer, size uintptr) {
	ci := classIndex(size)
	if ci >= 0 {
		c := &a.classes[ci]
		c.mu.Lock()
		if len(c.free) < c.max {
			c.free = append(c.free, ptr)
			c.mu.Unlock()
			a.Cached.Incr()
			a.Retained.Add(int64(c.size))
			return
		}
		c.mu.Unlock()
	}
	a.Frees.Incr()
	memory.Free(memory.Pointer(uintptr(ptr)))
}

// Close releases every cached block back to malloc. The allocator remains
// usable afterwards; its freelists simply start empty again.
func (a *Allocator) Close() {
	released := 0
	var bytes int64
	for i := range a.classes {
		c := &a.classes[i]
		c.mu.Lock()
		for _, p := range c.free {
			memory.Free(memory.Pointer(uintptr(p)))
			bytes += int64(c.size)
		}
		released += len(c.free)
		c.free = nil
		c.mu.Unlock()
	}
	a.Retained.Sub(bytes)
	if released > 0 {
		logger.Debug("pool: released %d cached blocks, %d bytes", released, bytes)
	}
}

func rawAlloc(size uintptr) unsafe.Pointer {
	p := unsafe.Pointer(uintptr(memory.Alloc(size)))
	if p == nil {
		panic("pool: out of memory: " + strconv.FormatUint(uint64(size), 10) + " bytes")
	}
	memclrNoHeapPointers(p, size)
	return p
}
