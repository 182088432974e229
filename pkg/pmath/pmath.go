package pmath

import "math/bits"

// CeilToPowerOf2 rounds size up to the nearest power of two.
// Sizes below 2 round to 2 and negative sizes are undefined.
func CeilToPowerOf2(size int) int {
	if size < 2 {
		return 2
	}
	size--
	size |= size >> 1
	size |= size >> 2
	size |= size >> 4
	size |= size >> 8
	size |= size >> 16
	size |= size >> 32
	size++
	return size
}

// PowerOf2Index returns log2 of CeilToPowerOf2(size).
func PowerOf2Index(size int) int {
	return bits.TrailingZeros64(uint64(CeilToPowerOf2(size)))
}

func IsPowerOf2(size int) bool {
	return size > 0 && size&(size-1) == 0
}
