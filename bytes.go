package rc

import (
	"strconv"
	"unsafe"
)

// byteBlock is the header of a refcounted byte buffer: one off-heap block
// holding the header followed by cap data bytes.
type byteBlock struct {
	SharedHeader
	cap int32
	_   int32
}

const byteBlockSize = unsafe.Sizeof(byteBlock{})

// Bytes is a refcounted off-heap byte buffer. AllocBytes returns it with a
// count of one; Retain and Release follow the usual protocol, and the
// release that reaches zero frees the block. The counter is shared, so
// buffers may be retained and released across goroutines.
type Bytes struct {
	b *byteBlock
}

// AllocBytes allocates a zeroed buffer of n bytes with a count of one.
func AllocBytes(n int) Bytes {
	if n < 0 || uint64(n) > uint64(countMask) {
		panic("rc: invalid buffer size: " + strconv.Itoa(n))
	}
	size := byteBlockSize + uintptr(n)
	p := allocator.Alloc(size)
	blk := (*byteBlock)(p)
	blk.shape = uint32(n) | shapeArray | shapeShared
	blk.cap = int32(n)
	blk.IncRef()
	Stats.Allocs.Incr()
	Stats.Live.Incr()
	if leakTracking() {
		trackAlloc(p, "rc.Bytes", size, n)
	}
	return Bytes{b: blk}
}

// BytesOf recovers the owning buffer from a data slice previously returned
// by Bytes. The slice may have been resliced as long as its first byte is
// still the buffer's first byte.
func BytesOf(data []byte) Bytes {
	if cap(data) == 0 {
		return Bytes{}
	}
	p := unsafe.Add(unsafe.Pointer(&data[:1][0]), -int(byteBlockSize))
	return Bytes{b: (*byteBlock)(p)}
}

// Retain adds one reference. SharedHeader.IncRef's precondition applies.
func (b Bytes) Retain() {
	b.b.IncRef()
}

// Release drops one reference; the release that reaches zero frees the
// block. Releasing the zero Bytes is a no-op.
func (b Bytes) Release() {
	if b.b == nil {
		return
	}
	if b.b.DecRef() == 0 {
		size := byteBlockSize + uintptr(b.b.cap)
		trackFree(unsafe.Pointer(b.b))
		Stats.Frees.Incr()
		Stats.Live.Decr()
		allocator.Free(unsafe.Pointer(b.b), size)
	}
}

// Bytes returns the buffer's data. The slice is valid only while the buffer
// is live; it aliases off-heap memory and must not be retained past the
// final Release.
func (b Bytes) Bytes() []byte {
	if b.b == nil || b.b.cap == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Add(unsafe.Pointer(b.b), byteBlockSize)), int(b.b.cap))
}

// Len returns the buffer's size in bytes.
func (b Bytes) Len() int {
	if b.b == nil {
		return 0
	}
	return int(b.b.cap)
}

// NumRef returns a snapshot of the buffer's reference count.
func (b Bytes) NumRef() int32 {
	if b.b == nil {
		return 0
	}
	return b.b.NumRef()
}

// IsNil reports whether this is the zero Bytes.
func (b Bytes) IsNil() bool { return b.b == nil }
