// File: pool/metrics.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Prometheus counters for pool events. Gauges derived from Stats are
// exported by control.PoolCollector at scrape time instead.

package pool

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics is shared by every pool built with the same registerer.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	SegmentsMapped   *prometheus.CounterVec
	SegmentsReleased *prometheus.CounterVec
	BytesMapped      *prometheus.CounterVec
	BytesReleased    *prometheus.CounterVec
	OutOfMemory      *prometheus.CounterVec
	CacheFlushes     *prometheus.CounterVec
}

// NewMetrics registers the pool counters with reg; nil reg disables metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return nil
	}
	counter := func(name, help string) *prometheus.CounterVec {
		return promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "hioload",
			Subsystem: "mem",
			Name:      name,
			Help:      help,
		}, []string{"pool"})
	}
	return &Metrics{
		SegmentsMapped:   counter("segments_mapped_total", "Segments obtained from the backing store"),
		SegmentsReleased: counter("segments_released_total", "Segments returned to the backing store"),
		BytesMapped:      counter("bytes_mapped_total", "Bytes obtained from the backing store"),
		BytesReleased:    counter("bytes_released_total", "Bytes returned to the backing store"),
		OutOfMemory:      counter("out_of_memory_total", "Allocations that failed for lack of backing memory"),
		CacheFlushes:     counter("cache_flushes_total", "Thread caches flushed back to the central arena"),
	}
}

func poolLabel(id uint32) string {
	return strconv.FormatUint(uint64(id), 10)
}

func (m *Metrics) outOfMemory(id uint32) {
	if m == nil {
		return
	}
	m.OutOfMemory.WithLabelValues(poolLabel(id)).Inc()
}

func (m *Metrics) cacheFlush(id uint32) {
	if m == nil {
		return
	}
	m.CacheFlushes.WithLabelValues(poolLabel(id)).Inc()
}

// segmentObserver forwards arena segment events to the counters.
type segmentObserver struct {
	m     *Metrics
	label string
}

func (m *Metrics) observer(id uint32) *segmentObserver {
	if m == nil {
		return nil
	}
	return &segmentObserver{m: m, label: poolLabel(id)}
}

func (o *segmentObserver) SegmentMapped(bytes int) {
	o.m.SegmentsMapped.WithLabelValues(o.label).Inc()
	o.m.BytesMapped.WithLabelValues(o.label).Add(float64(bytes))
}

func (o *segmentObserver) SegmentReleased(bytes int) {
	o.m.SegmentsReleased.WithLabelValues(o.label).Inc()
	o.m.BytesReleased.WithLabelValues(o.label).Add(float64(bytes))
}
