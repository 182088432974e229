package rc

import "unsafe"

// SharedRef is Ref for SharedHeader-counted objects. The handle itself is
// not a synchronization point: each goroutine works with its own SharedRef
// (typically a Clone), and only the counter updates are atomic. When
// releases race, exactly one of them reclaims the object.
type SharedRef[T any] struct {
	obj *T
}

// AdoptShared wraps a shared-counted object and performs an increment. A nil
// obj yields an empty handle. The object must be fully constructed before
// its handles are distributed across goroutines.
func AdoptShared[T any](obj *T) SharedRef[T] {
	if obj != nil {
		sharedHeader(obj).IncRef()
	}
	return SharedRef[T]{obj: obj}
}

func sharedHeader[T any](obj *T) *SharedHeader {
	h := (*SharedHeader)(unsafe.Pointer(obj))
	if h.shape&shapeShared == 0 {
		panic("rc: plain-counted object adopted by rc.SharedRef; use rc.Ref")
	}
	return h
}

func releaseShared[T any](obj *T) {
	if (*SharedHeader)(unsafe.Pointer(obj)).DecRef() == 0 {
		Free(obj)
	}
}

// Clone copies the handle, incrementing the owned object. IncRef's
// precondition applies: the clone must be taken by a goroutine that already
// holds this handle legitimately.
func (r *SharedRef[T]) Clone() SharedRef[T] {
	if r.obj != nil {
		(*SharedHeader)(unsafe.Pointer(r.obj)).IncRef()
	}
	return SharedRef[T]{obj: r.obj}
}

// Set replaces the owned object: obj is incremented before the previous
// object is released. Setting the object the handle already owns is a no-op.
func (r *SharedRef[T]) Set(obj *T) {
	if r.obj == obj {
		return
	}
	if obj != nil {
		sharedHeader(obj).IncRef()
	}
	old := r.obj
	r.obj = obj
	if old != nil {
		releaseShared(old)
	}
}

// Assign is copy assignment from another handle. Self-assignment changes no
// counter and releases nothing.
func (r *SharedRef[T]) Assign(other *SharedRef[T]) {
	if r == other {
		return
	}
	r.Set(other.obj)
}

// Move transfers ownership out of r without touching the counter, leaving r
// empty.
func (r *SharedRef[T]) Move() SharedRef[T] {
	obj := r.obj
	r.obj = nil
	return SharedRef[T]{obj: obj}
}

// MoveFrom is move assignment: r releases what it owned, takes other's
// object without a counter update and leaves other empty.
func (r *SharedRef[T]) MoveFrom(other *SharedRef[T]) {
	if r == other {
		return
	}
	obj := other.obj
	other.obj = nil
	old := r.obj
	r.obj = obj
	if old != nil {
		releaseShared(old)
	}
}

// Release drops this handle's ownership and empties it. The release that
// brings the count to zero reclaims the object via Free; when handles
// release concurrently exactly one observes the zero transition.
func (r *SharedRef[T]) Release() {
	obj := r.obj
	if obj == nil {
		return
	}
	r.obj = nil
	releaseShared(obj)
}

// Get returns the owned object, or nil for an empty handle.
func (r *SharedRef[T]) Get() *T { return r.obj }

// IsNil reports whether the handle is empty.
func (r *SharedRef[T]) IsNil() bool { return r.obj == nil }

// NumRef returns a snapshot of the owned object's count, or zero for an
// empty handle.
func (r *SharedRef[T]) NumRef() int32 {
	if r.obj == nil {
		return 0
	}
	return (*SharedHeader)(unsafe.Pointer(r.obj)).NumRef()
}
