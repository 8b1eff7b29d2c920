// File: pool/threadcache.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Per-thread block cache. A cache is owned by exactly one goroutine at a
// time, either bound to a Thread or borrowed from the depot for one call,
// so its buckets are touched without synchronization.

package pool

import (
	"sync/atomic"

	"github.com/momentics/hioload-mem/internal/arena"
	"github.com/momentics/hioload-mem/internal/concurrency"
	"golang.org/x/sys/cpu"
)

type threadCache struct {
	_     cpu.CacheLinePad
	bins  [arena.NumClasses]arena.List
	bytes uintptr
	_     cpu.CacheLinePad
}

func (tc *threadCache) pop(class int) uintptr {
	p := tc.bins[class].Pop()
	if p != 0 {
		tc.bytes -= arena.SizeOf(p)
	}
	return p
}

func (tc *threadCache) push(p, size uintptr) {
	tc.bins[arena.FloorClass(size)].Push(p)
	tc.bytes += size
}

// drain empties every bucket, handing each block to fn.
func (tc *threadCache) drain(fn func(p uintptr)) {
	for c := range tc.bins {
		for p := tc.bins[c].Pop(); p != 0; p = tc.bins[c].Pop() {
			fn(p)
		}
	}
	tc.bytes = 0
}

// depot holds idle caches between calls. live counts every cache created
// and not yet discarded, idle or bound.
type depot struct {
	idle  *concurrency.LockFreeQueue[*threadCache]
	limit int32
	live  atomic.Int32
}

// newDepot sizes the depot for threads goroutines. The hint never raises
// the limit above concurrency.MaxThreadCaches; 0 selects the safety cap.
func newDepot(threads int) *depot {
	limit := threads
	if limit <= 0 {
		limit = concurrency.SafetyCap()
	}
	if limit > concurrency.MaxThreadCaches {
		limit = concurrency.MaxThreadCaches
	}
	d := &depot{
		idle:  concurrency.NewLockFreeQueue[*threadCache](limit),
		limit: int32(limit),
	}
	for i := 0; i < min(threads, limit); i++ {
		d.idle.Enqueue(new(threadCache))
		d.live.Add(1)
	}
	return d
}

// get returns an idle cache, a new one while under the limit, or nil.
func (d *depot) get() *threadCache {
	if tc, ok := d.idle.Dequeue(); ok {
		return tc
	}
	for {
		n := d.live.Load()
		if n >= d.limit {
			return nil
		}
		if d.live.CompareAndSwap(n, n+1) {
			return new(threadCache)
		}
	}
}

func (d *depot) put(tc *threadCache) bool {
	return d.idle.Enqueue(tc)
}

func (d *depot) discard() {
	d.live.Add(-1)
}
