package rc

import "unsafe"

// Ref is a scoped owning handle over a Header-counted object. Handles keep
// the reference count equal to the number of live non-empty handles: Adopt
// and Clone increment, Release decrements, Move transfers without touching
// the counter. Copying the struct directly bypasses the counter — use the
// methods. The zero value is an empty handle.
//
// Dereferencing an empty handle's Get result is the caller's contract
// violation, exactly as with a raw pointer.
type Ref[T any] struct {
	obj *T
}

// Adopt wraps a freshly allocated (or otherwise valid) object and performs
// an increment. A nil obj yields an empty handle. Adopting an object that
// was allocated with a shared counter panics.
func Adopt[T any](obj *T) Ref[T] {
	if obj != nil {
		plainHeader(obj).IncRef()
	}
	return Ref[T]{obj: obj}
}

func plainHeader[T any](obj *T) *Header {
	h := (*Header)(unsafe.Pointer(obj))
	if h.isShared() {
		panic("rc: shared-counted object adopted by rc.Ref; use rc.SharedRef")
	}
	return h
}

func releasePlain[T any](obj *T) {
	if (*Header)(unsafe.Pointer(obj)).DecRef() == 0 {
		Free(obj)
	}
}

// Clone copies the handle, incrementing the owned object. Cloning an empty
// handle yields another empty handle.
func (r *Ref[T]) Clone() Ref[T] {
	if r.obj != nil {
		(*Header)(unsafe.Pointer(r.obj)).IncRef()
	}
	return Ref[T]{obj: r.obj}
}

// Set replaces the owned object: obj is incremented before the previous
// object is released. Setting the object the handle already owns is a no-op.
func (r *Ref[T]) Set(obj *T) {
	if r.obj == obj {
		return
	}
	if obj != nil {
		plainHeader(obj).IncRef()
	}
	old := r.obj
	r.obj = obj
	if old != nil {
		releasePlain(old)
	}
}

// Assign is copy assignment from another handle. Self-assignment changes no
// counter and releases nothing.
func (r *Ref[T]) Assign(other *Ref[T]) {
	if r == other {
		return
	}
	r.Set(other.obj)
}

// Move transfers ownership out of r without touching the counter, leaving r
// empty.
func (r *Ref[T]) Move() Ref[T] {
	obj := r.obj
	r.obj = nil
	return Ref[T]{obj: obj}
}

// MoveFrom is move assignment: r releases what it owned, takes other's
// object without a counter update and leaves other empty. Moving a handle
// into itself is a no-op.
func (r *Ref[T]) MoveFrom(other *Ref[T]) {
	if r == other {
		return
	}
	obj := other.obj
	other.obj = nil
	old := r.obj
	r.obj = obj
	if old != nil {
		releasePlain(old)
	}
}

// Release drops this handle's ownership and empties it. The release that
// brings the count to zero reclaims the object via Free. Releasing an empty
// handle is a no-op, so a handle never decrements twice for one ownership.
func (r *Ref[T]) Release() {
	obj := r.obj
	if obj == nil {
		return
	}
	r.obj = nil
	releasePlain(obj)
}

// Get returns the owned object, or nil for an empty handle. The pointer is
// valid only while at least one handle owns the object.
func (r *Ref[T]) Get() *T { return r.obj }

// IsNil reports whether the handle is empty.
func (r *Ref[T]) IsNil() bool { return r.obj == nil }

// NumRef returns the owned object's count, or zero for an empty handle.
func (r *Ref[T]) NumRef() int32 {
	if r.obj == nil {
		return 0
	}
	return (*Header)(unsafe.Pointer(r.obj)).NumRef()
}
