// File: internal/arena/sizeclass.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Size-class ladder shared by the arena bins and the thread caches.
// Classes 0..61 are linear (48..1024 step 16); the rest are geometric with
// four steps per power of two. The last class collects everything larger.

package arena

import "math/bits"

const (
	// NumClasses is the number of bins and thread-cache buckets.
	NumClasses = 128

	smallClasses = 62
	smallMax     = MinBlock + (smallClasses-1)*Align // 1024
	lastClass    = NumClasses - 1
)

var classSizes = func() (t [NumClasses]uintptr) {
	for c := 0; c < NumClasses; c++ {
		if c < smallClasses {
			t[c] = MinBlock + uintptr(c)*Align
			continue
		}
		j := c - (smallClasses - 1)
		k := 10 + j/4
		t[c] = uintptr(1)<<k + uintptr(j%4)<<(k-2)
	}
	return
}()

// ClassSize is the smallest block size indexed by class c.
func ClassSize(c int) uintptr {
	return classSizes[c]
}

// FloorClass is the largest class whose size does not exceed size.
// A free block of that size lives in this bin.
func FloorClass(size uintptr) int {
	if size <= smallMax {
		if size < MinBlock {
			return 0
		}
		return int((size - MinBlock) / Align)
	}
	k := bits.Len64(uint64(size)) - 1
	sub := int((size - uintptr(1)<<k) >> (k - 2))
	c := smallClasses - 1 + (k-10)*4 + sub
	if c > lastClass {
		return lastClass
	}
	return c
}

// CeilClass is the smallest class whose size is at least size; every block
// of that class satisfies the request. Requests above the largest class map
// to the last class, which is searched first-fit.
func CeilClass(size uintptr) int {
	c := FloorClass(size)
	if classSizes[c] < size && c < lastClass {
		c++
	}
	return c
}
