package rc

import (
	"reflect"
	"strconv"
	"unsafe"

	"github.com/moontrade/rc/pkg/counter"
	"github.com/moontrade/rc/pkg/spinlock"
	"github.com/moontrade/unsafe/memory"
)

// Allocator supplies and reclaims the raw blocks that back managed objects.
// Alloc must return zeroed, max-aligned memory; Free receives the same size
// the block was requested with.
type Allocator interface {
	Alloc(size uintptr) unsafe.Pointer
	Free(ptr unsafe.Pointer, size uintptr)
}

// Malloc allocates straight from the process heap. It is the default
// Allocator.
type Malloc struct{}

func (Malloc) Alloc(size uintptr) unsafe.Pointer {
	p := unsafe.Pointer(uintptr(memory.Alloc(size)))
	if p == nil {
		panic("rc: out of memory: " + strconv.FormatUint(uint64(size), 10) + " bytes")
	}
	memclrNoHeapPointers(p, size)
	return p
}

func (Malloc) Free(ptr unsafe.Pointer, size uintptr) {
	_ = size
	memory.Free(memory.Pointer(uintptr(ptr)))
}

var allocator Allocator = Malloc{}

// SetAllocator swaps the block source for subsequent allocations. Live
// blocks must be released through the allocator that produced them, so swap
// only at quiet points. Passing nil restores Malloc.
func SetAllocator(a Allocator) {
	if a == nil {
		a = Malloc{}
	}
	allocator = a
}

// Stats counts allocation activity across every shape and counter mode.
var Stats struct {
	Allocs    counter.Counter
	Frees     counter.Counter
	Finalizes counter.Counter
	Live      counter.Counter
}

type headerKind uint8

const (
	kindPlain headerKind = iota + 1
	kindShared
)

var (
	headerType       = reflect.TypeOf(Header{})
	sharedHeaderType = reflect.TypeOf(SharedHeader{})

	layoutMu spinlock.Mutex
	layouts  = make(map[reflect.Type]headerKind)
)

// layoutOf enforces the block layout contract for T once per type: a struct
// with the matching header as its first field and no Go pointers anywhere,
// since the collector never traces these blocks.
func layoutOf[T any](want headerKind) reflect.Type {
	var v T
	t := reflect.TypeOf(v)
	layoutMu.Lock()
	k, ok := layouts[t]
	layoutMu.Unlock()
	if !ok {
		k = classify(t)
		layoutMu.Lock()
		layouts[t] = k
		layoutMu.Unlock()
	}
	if k != want {
		if want == kindPlain {
			panic("rc: " + t.String() + " embeds rc.SharedHeader; allocate with NewShared or NewSharedArray")
		}
		panic("rc: " + t.String() + " embeds rc.Header; allocate with New or NewArray")
	}
	return t
}

func classify(t reflect.Type) headerKind {
	if t.Kind() != reflect.Struct || t.NumField() == 0 {
		panic("rc: " + t.String() + " must be a struct embedding rc.Header or rc.SharedHeader as its first field")
	}
	var k headerKind
	switch t.Field(0).Type {
	case headerType:
		k = kindPlain
	case sharedHeaderType:
		k = kindShared
	default:
		panic("rc: " + t.String() + " must embed rc.Header or rc.SharedHeader as its first field")
	}
	if ptrdataOf(t) != 0 {
		panic("rc: " + t.String() + " contains Go pointers and cannot live off-heap")
	}
	return k
}

// New allocates one Scalar-shaped T with a zero reference count. The object
// becomes owned when the first handle adopts it.
func New[T any]() *T {
	return allocBlock[T](kindPlain, 1, 0)
}

// NewShared is New with a concurrent counter; adopt with AdoptShared.
func NewShared[T any]() *T {
	return allocBlock[T](kindShared, 1, shapeShared)
}

// NewArray allocates a contiguous run of n zeroed instances in one block and
// returns the first element. The single counter lives in the first element's
// header; the whole run is reclaimed as one unit when it reaches zero.
func NewArray[T any](n int) *T {
	return allocBlock[T](kindPlain, n, shapeArray)
}

// NewSharedArray is NewArray with a concurrent counter.
func NewSharedArray[T any](n int) *T {
	return allocBlock[T](kindShared, n, shapeArray|shapeShared)
}

func allocBlock[T any](want headerKind, n int, flags uint32) *T {
	if n < 1 {
		panic("rc: allocation count must be positive: " + strconv.Itoa(n))
	}
	if uint64(n) > uint64(countMask) {
		panic("rc: allocation count too large: " + strconv.Itoa(n))
	}
	t := layoutOf[T](want)
	var z T
	size := unsafe.Sizeof(z) * uintptr(n)
	p := allocator.Alloc(size)
	h := (*Header)(p)
	h.shape = uint32(n) | flags
	Stats.Allocs.Incr()
	Stats.Live.Incr()
	if leakTracking() {
		trackAlloc(p, t.String(), size, n)
	}
	return (*T)(p)
}

// NewWith allocates a Scalar T and runs ctor on it. A ctor error frees the
// block without finalization and is returned unmodified; this is the one
// recoverable error channel in the package.
func NewWith[T any](ctor func(*T) error) (*T, error) {
	obj := New[T]()
	if err := ctor(obj); err != nil {
		discard(obj)
		return nil, err
	}
	return obj, nil
}

// NewSharedWith is NewWith with a concurrent counter.
func NewSharedWith[T any](ctor func(*T) error) (*T, error) {
	obj := NewShared[T]()
	if err := ctor(obj); err != nil {
		discard(obj)
		return nil, err
	}
	return obj, nil
}

// Free reclaims the block that backs obj. It is the destruction hook: the
// caller that observed DecRef return zero invokes it exactly once — handles
// do this automatically. Array blocks run every element's finalizer, first
// element first, then release the whole run with a single allocator call.
func Free[T any](obj *T) {
	h := (*Header)(unsafe.Pointer(obj))
	n := h.Len()
	var z T
	stride := unsafe.Sizeof(z)
	if _, ok := any(obj).(Finalizer); ok {
		base := unsafe.Pointer(obj)
		for i := 0; i < n; i++ {
			any((*T)(unsafe.Add(base, stride*uintptr(i)))).(Finalizer).Finalize()
			Stats.Finalizes.Incr()
		}
	}
	trackFree(unsafe.Pointer(obj))
	Stats.Frees.Incr()
	Stats.Live.Decr()
	allocator.Free(unsafe.Pointer(obj), stride*uintptr(n))
}

// discard frees a block without running finalizers. Used when a constructor
// fails before any handle adopted the object.
func discard[T any](obj *T) {
	h := (*Header)(unsafe.Pointer(obj))
	var z T
	size := unsafe.Sizeof(z) * uintptr(h.Len())
	trackFree(unsafe.Pointer(obj))
	Stats.Frees.Incr()
	Stats.Live.Decr()
	allocator.Free(unsafe.Pointer(obj), size)
}

// Elems returns the full element run of an Array block as a slice. head must
// be the pointer returned by NewArray or NewSharedArray; the slice is only
// valid while the block is live.
func Elems[T any](head *T) []T {
	h := (*Header)(unsafe.Pointer(head))
	return unsafe.Slice(head, h.Len())
}
