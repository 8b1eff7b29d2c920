// Package pool
// Author: momentics <momentics@gmail.com>
//
// Multi-threaded pool allocator for hioload-mem.
// Every Pool owns a boundary-tag central arena guarded by a per-pool lock and
// a registry of thread caches that serve small blocks without taking it.
// Blocks carry a compact back-reference to their pool, so Free, Realloc,
// Blksize and Owner resolve the owning pool from the address alone.
//
// Goroutines doing sustained work against one pool should bind a cache with
// Pool.Thread; the Pool methods borrow an idle cache per call instead.
// See pool.go, malloc.go, threadcache.go and batch.go for details.
package pool
