// File: pool/thread.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pool

// Thread binds one thread cache of a pool to the calling goroutine.
// A Thread must not be used from more than one goroutine at a time; call
// Release when the goroutine is done with the pool.
type Thread struct {
	pool     *Pool
	cache    *threadCache
	disabled bool
}

// Thread returns a handle whose cache serves this goroutine exclusively.
// The cache is taken on the first call made while caching is enabled; as
// long as the pool runs its maximum number of caches the handle works
// uncached and retries on later calls.
func (p *Pool) Thread() *Thread {
	p.checkLive()
	t := &Thread{pool: p}
	t.attach()
	return t
}

// attach binds a cache to the handle if it has none and caching is on.
func (t *Thread) attach() *threadCache {
	if t.cache == nil && !t.disabled && t.pool.cacheLimit.Load() != 0 {
		t.cache = t.pool.depot.get()
	}
	return t.cache
}

// Pool returns the pool the handle allocates from.
func (t *Thread) Pool() *Pool {
	return t.pool
}

func (t *Thread) Malloc(n int) ([]byte, error) {
	t.pool.checkLive()
	return t.pool.malloc(t.attach(), n)
}

func (t *Thread) Calloc(count, size int) ([]byte, error) {
	t.pool.checkLive()
	return t.pool.calloc(t.attach(), count, size)
}

func (t *Thread) Realloc(b []byte, n int) ([]byte, error) {
	t.pool.checkLive()
	return t.pool.realloc(t.attach(), b, n)
}

func (t *Thread) Free(b []byte) {
	if len(b) == 0 && cap(b) == 0 {
		return
	}
	t.pool.checkLive()
	t.pool.free(t.attach(), b)
}

func (t *Thread) Memalign(align, n int) ([]byte, error) {
	t.pool.checkLive()
	return t.pool.memalign(align, n)
}

// DisableCache flushes the handle's cached blocks back to the central arena
// and stops caching for the rest of the handle's life.
func (t *Thread) DisableCache() {
	t.disabled = true
	if t.cache == nil {
		return
	}
	t.pool.checkLive()
	t.pool.flush(t.cache)
	t.pool.depot.discard()
	t.cache = nil
}

// CacheDisabled reports whether DisableCache was called on the handle.
func (t *Thread) CacheDisabled() bool {
	return t.disabled
}

// Release returns the handle's cache to the pool for reuse by other
// goroutines. The handle must not be used afterwards.
func (t *Thread) Release() {
	tc := t.cache
	t.cache = nil
	if tc == nil || t.pool.destroyed.Load() {
		return
	}
	t.pool.giveBack(tc)
}
