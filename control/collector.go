// control/collector.go
// Author: momentics <momentics@gmail.com>
//
// Prometheus collector reading pool statistics at scrape time.

package control

import (
	"strconv"
	"sync"

	"github.com/momentics/hioload-mem/api"
	"github.com/prometheus/client_golang/prometheus"
)

// IdentifiedSource is a stats source with a stable pool id.
type IdentifiedSource interface {
	StatsSource
	ID() uint32
}

type statDesc struct {
	desc  *prometheus.Desc
	kind  prometheus.ValueType
	value func(api.Stats) float64
}

// PoolCollector exports the statistics of a set of pools.
type PoolCollector struct {
	mu    sync.RWMutex
	pools map[uint32]IdentifiedSource
	stats []statDesc
}

// NewPoolCollector creates a collector for pools; more can be added later.
func NewPoolCollector(pools ...IdentifiedSource) *PoolCollector {
	gauge := func(name, help string, v func(api.Stats) float64) statDesc {
		return statDesc{
			desc:  prometheus.NewDesc(prometheus.BuildFQName("hioload", "mem", name), help, []string{"pool"}, nil),
			kind:  prometheus.GaugeValue,
			value: v,
		}
	}
	counter := func(name, help string, v func(api.Stats) float64) statDesc {
		d := gauge(name, help, v)
		d.kind = prometheus.CounterValue
		return d
	}
	c := &PoolCollector{
		pools: make(map[uint32]IdentifiedSource),
		stats: []statDesc{
			gauge("footprint_bytes", "Bytes held from the backing store",
				func(s api.Stats) float64 { return float64(s.Footprint) }),
			gauge("max_footprint_bytes", "High-water mark of the footprint",
				func(s api.Stats) float64 { return float64(s.MaxFootprint) }),
			gauge("in_use_bytes", "Usable bytes of live blocks",
				func(s api.Stats) float64 { return float64(s.InUse) }),
			gauge("blocks", "Live blocks",
				func(s api.Stats) float64 { return float64(s.Blocks) }),
			gauge("cached_bytes", "Bytes parked in thread caches",
				func(s api.Stats) float64 { return float64(s.Cached) }),
			gauge("free_bytes", "Free bytes indexed by the central arena",
				func(s api.Stats) float64 { return float64(s.Free) }),
			gauge("segments", "Mapped segments",
				func(s api.Stats) float64 { return float64(s.Segments) }),
			gauge("thread_caches", "Thread caches alive",
				func(s api.Stats) float64 { return float64(s.ThreadCaches) }),
			counter("central_allocs_total", "Allocations served under the pool lock",
				func(s api.Stats) float64 { return float64(s.CentralAllocs) }),
			counter("cache_hits_total", "Allocations served from a thread cache",
				func(s api.Stats) float64 { return float64(s.CacheHits) }),
		},
	}
	for _, p := range pools {
		c.Add(p)
	}
	return c
}

// Add starts exporting p.
func (c *PoolCollector) Add(p IdentifiedSource) {
	c.mu.Lock()
	c.pools[p.ID()] = p
	c.mu.Unlock()
}

// Remove stops exporting the pool with the given id.
func (c *PoolCollector) Remove(id uint32) {
	c.mu.Lock()
	delete(c.pools, id)
	c.mu.Unlock()
}

// Describe implements prometheus.Collector.
func (c *PoolCollector) Describe(ch chan<- *prometheus.Desc) {
	for _, s := range c.stats {
		ch <- s.desc
	}
}

// Collect implements prometheus.Collector.
func (c *PoolCollector) Collect(ch chan<- prometheus.Metric) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for id, p := range c.pools {
		stats := p.Stats()
		label := strconv.FormatUint(uint64(id), 10)
		for _, s := range c.stats {
			ch <- prometheus.MustNewConstMetric(s.desc, s.kind, s.value(stats), label)
		}
	}
}

var _ prometheus.Collector = (*PoolCollector)(nil)
