// File: facade/facade.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Package-level allocation functions backed by the process-wide pool.
// Blocks of any managed pool may be passed to Free, Realloc and Blksize;
// the owning pool is found through the block's back-reference.

package facade

import (
	"github.com/momentics/hioload-mem/api"
	"github.com/momentics/hioload-mem/pool"
)

// Malloc allocates n bytes from the default pool.
func Malloc(n int) ([]byte, error) {
	return pool.Default().Malloc(n)
}

// Calloc allocates count*size zeroed bytes from the default pool.
func Calloc(count, size int) ([]byte, error) {
	return pool.Default().Calloc(count, size)
}

// Realloc resizes b inside the pool that owns it. A nil b allocates from
// the default pool.
func Realloc(b []byte, n int) ([]byte, error) {
	return ownerOf(b).Realloc(b, n)
}

// Free releases b to the pool that owns it.
func Free(b []byte) {
	if b == nil {
		return
	}
	ownerOf(b).Free(b)
}

// Memalign allocates n bytes aligned to align from the default pool.
func Memalign(align, n int) ([]byte, error) {
	return pool.Default().Memalign(align, n)
}

// IndependentCalloc allocates n zeroed blocks of size bytes in one step.
func IndependentCalloc(n, size int, chunks [][]byte) ([][]byte, error) {
	return pool.Default().IndependentCalloc(n, size, chunks)
}

// IndependentComalloc allocates one block per entry of sizes in one step.
func IndependentComalloc(sizes []int, chunks [][]byte) ([][]byte, error) {
	return pool.Default().IndependentComalloc(sizes, chunks)
}

// Blksize is the usable size of the live block b.
func Blksize(b []byte) int {
	return pool.Blksize(b)
}

// SetTag attaches v to the default pool.
func SetTag(v any) {
	pool.Default().SetTag(v)
}

// Owner reports the pool and tag of a live block.
func Owner(b []byte) (*pool.Pool, any, bool) {
	return pool.Owner(b)
}

func Stats() api.Stats {
	return pool.Default().Stats()
}

func Tune(param api.Param, value int) error {
	return pool.Default().Tune(param, value)
}

func Trim(pad int) bool {
	return pool.Default().Trim(pad)
}

func Footprint() int64 {
	return pool.Default().Footprint()
}

// LogStats writes the default pool's statistics at info level.
func LogStats() {
	pool.Default().LogStats()
}

// Shutdown destroys the default pool. Call it once, at process exit.
func Shutdown() error {
	return pool.ShutdownDefault()
}

// ownerOf falls back to the default pool, whose entry points report
// invalid and freed pointers.
func ownerOf(b []byte) *pool.Pool {
	if b != nil {
		if p, _, ok := pool.Owner(b); ok {
			return p
		}
	}
	return pool.Default()
}
