// control/metrics.go
// Author: momentics <momentics@gmail.com>
//
// Sampled pool statistics plus free-form runtime values.

package control

import (
	"sync"
	"time"

	"github.com/momentics/hioload-mem/api"
)

// StatsSource is anything that can report pool statistics.
type StatsSource interface {
	Stats() api.Stats
}

// MetricsRegistry holds the last sampled statistics and custom values.
type MetricsRegistry struct {
	mu      sync.RWMutex
	metrics map[string]any
	updated time.Time
}

// NewMetricsRegistry creates an empty registry.
func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{
		metrics: make(map[string]any),
	}
}

// Set sets or updates a metric key.
func (mr *MetricsRegistry) Set(key string, value any) {
	mr.mu.Lock()
	mr.metrics[key] = value
	mr.updated = time.Now()
	mr.mu.Unlock()
}

// Sample copies the current statistics of src into the registry.
func (mr *MetricsRegistry) Sample(src StatsSource) {
	stats := src.Stats().Map()
	mr.mu.Lock()
	for k, v := range stats {
		mr.metrics["pool."+k] = v
	}
	mr.updated = time.Now()
	mr.mu.Unlock()
}

// Updated is the time of the last Set or Sample.
func (mr *MetricsRegistry) Updated() time.Time {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	return mr.updated
}

// GetSnapshot returns the latest metrics.
func (mr *MetricsRegistry) GetSnapshot() map[string]any {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	out := make(map[string]any, len(mr.metrics))
	for k, v := range mr.metrics {
		out[k] = v
	}
	return out
}
