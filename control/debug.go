// control/debug.go
// Author: momentics <momentics@gmail.com>
//
// Runtime debug probes for allocator inspection.

package control

import (
	"sync"

	"github.com/momentics/hioload-mem/api"
)

// DebugProbes holds registered probe functions.
type DebugProbes struct {
	mu     sync.RWMutex
	probes map[string]func() any
}

// NewDebugProbes creates a probe registry.
func NewDebugProbes() *DebugProbes {
	return &DebugProbes{
		probes: make(map[string]func() any),
	}
}

// RegisterProbe inserts a named debug hook, replacing any previous one.
func (dp *DebugProbes) RegisterProbe(name string, fn func() any) {
	dp.mu.Lock()
	defer dp.mu.Unlock()
	dp.probes[name] = fn
}

// DumpState returns output of all probes.
func (dp *DebugProbes) DumpState() map[string]any {
	dp.mu.RLock()
	defer dp.mu.RUnlock()
	out := make(map[string]any, len(dp.probes))
	for k, fn := range dp.probes {
		out[k] = fn()
	}
	return out
}

// Inspectable is a pool that exposes its identity and lock state.
type Inspectable interface {
	StatsSource
	ID() uint32
	Locked() bool
}

// RegisterPoolProbes adds probes describing p under the "pool." prefix.
func RegisterPoolProbes(dp *DebugProbes, p Inspectable) {
	dp.RegisterProbe("pool.id", func() any { return p.ID() })
	dp.RegisterProbe("pool.locked", func() any { return p.Locked() })
	dp.RegisterProbe("pool.fragmentation", func() any {
		return fragmentation(p.Stats())
	})
}

// fragmentation is the share of the footprint that is neither in use nor cached.
func fragmentation(s api.Stats) float64 {
	if s.Footprint == 0 {
		return 0
	}
	idle := s.Footprint - s.InUse - s.Cached
	if idle < 0 {
		idle = 0
	}
	return float64(idle) / float64(s.Footprint)
}

var _ api.Debug = (*DebugProbes)(nil)
