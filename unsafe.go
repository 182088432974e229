package rc

import (
	"reflect"
	"unsafe"
)

// memclrNoHeapPointers clears n bytes starting at ptr. Safe here because the
// layout contract guarantees blocks are pointer-free.
//
//go:linkname memclrNoHeapPointers runtime.memclrNoHeapPointers
func memclrNoHeapPointers(ptr unsafe.Pointer, n uintptr)

// ptrdataOf returns the number of leading bytes of t that can contain
// pointers. Zero means the collector has nothing to trace in a value of t.
func ptrdataOf(t reflect.Type) uintptr {
	typ := (*emptyInterface)(unsafe.Pointer(&t))
	return typ.value.ptrdata
}

// emptyInterface is the header for an interface{} value.
type emptyInterface struct {
	typ   unsafe.Pointer
	value *rtype
}

type rtype struct {
	size    uintptr
	ptrdata uintptr
}
