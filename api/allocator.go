// File: api/allocator.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Canonical allocation surface shared by pools and thread handles.

package api

// Allocator serves variable-sized blocks out of a managed heap.
// Blocks are returned as slices whose len is the requested size and whose
// cap is the usable size of the block.
type Allocator interface {
	Malloc(n int) ([]byte, error)
	Calloc(count, size int) ([]byte, error)
	Realloc(b []byte, n int) ([]byte, error)
	Free(b []byte)
	Memalign(align, n int) ([]byte, error)
}

// BatchAllocator reserves several independent blocks in one critical section.
// The returned slice of blocks is owned by the caller separately from the
// blocks themselves: freeing the blocks does not affect the slice, and
// dropping the slice does not free the blocks.
type BatchAllocator interface {
	IndependentCalloc(n, size int, chunks [][]byte) ([][]byte, error)
	IndependentComalloc(sizes []int, chunks [][]byte) ([][]byte, error)
}

// Tunable exposes introspection and runtime tuning of a pool.
type Tunable interface {
	Stats() Stats
	Tune(param Param, value int) error
	Trim(pad int) bool
	Footprint() int64
}
