// File: pool/stats.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pool

import (
	"github.com/momentics/hioload-mem/api"
	"github.com/sirupsen/logrus"
)

// Stats returns the pool counters. Cost is independent of heap size.
func (p *Pool) Stats() api.Stats {
	p.lock.Lock()
	s := api.Stats{
		Footprint:    p.arena.Footprint(),
		MaxFootprint: p.arena.MaxFootprint(),
		Free:         p.arena.FreeBytes(),
		Segments:     p.arena.Segments(),
	}
	p.lock.Unlock()
	s.InUse = p.inUse.Load()
	s.Blocks = p.blocks.Load()
	s.Cached = p.cached.Load()
	s.ThreadCaches = int(p.depot.live.Load())
	s.CentralAllocs = p.centralAllocs.Load()
	s.CacheHits = p.cacheHits.Load()
	return s
}

// Footprint is the number of bytes p currently holds from the backing
// store, used or not.
func (p *Pool) Footprint() int64 {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.arena.Footprint()
}

// LogStats writes the current counters to the pool logger at info level.
func (p *Pool) LogStats() {
	p.log.WithFields(logrus.Fields(p.Stats().Map())).Info("pool statistics")
}

// Locked reports whether the pool lock is currently held.
func (p *Pool) Locked() bool {
	return p.lock.IsLocked()
}
