// File: api/stats.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

// Stats is a point-in-time snapshot of a pool's accounting counters.
// All fields are maintained incrementally; taking a snapshot never walks the heap.
type Stats struct {
	Footprint    int64 // bytes currently obtained from the backing store
	MaxFootprint int64 // high-water mark of Footprint
	InUse        int64 // usable bytes of live blocks
	Blocks       int64 // live blocks
	Cached       int64 // bytes parked in thread caches
	Free         int64 // free bytes indexed by the central arena
	Segments     int
	ThreadCaches int

	CentralAllocs uint64 // allocations served under the pool lock
	CacheHits     uint64 // allocations served from a thread cache
}

// Map flattens the snapshot for control-plane consumers.
func (s Stats) Map() map[string]any {
	return map[string]any{
		"footprint":      s.Footprint,
		"max_footprint":  s.MaxFootprint,
		"in_use":         s.InUse,
		"blocks":         s.Blocks,
		"cached":         s.Cached,
		"free":           s.Free,
		"segments":       s.Segments,
		"thread_caches":  s.ThreadCaches,
		"central_allocs": s.CentralAllocs,
		"cache_hits":     s.CacheHits,
	}
}
