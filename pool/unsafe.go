package pool

import "unsafe"

// memclrNoHeapPointers clears n bytes starting at ptr. Cached blocks never
// hold Go pointers, so the pointer-free variant is safe.
//
//go:linkname memclrNoHeapPointers runtime.memclrNoHeapPointers
func memclrNoHeapPointers(ptr unsafe.Pointer, n uintptr)
