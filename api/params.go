// File: api/params.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Enumerated tuning knobs accepted by Tune.

package api

import "fmt"

// Param identifies a runtime tuning parameter.
type Param int

const (
	// ParamTrimThreshold is the free byte count above which wholly free
	// segments are returned to the backing store on free.
	ParamTrimThreshold Param = iota + 1
	// ParamGranularity is the minimum size of a newly mapped segment.
	ParamGranularity
	// ParamMmapThreshold is the request size served by a dedicated segment.
	ParamMmapThreshold
	// ParamGrowthFactor multiplies a missing request when sizing a new segment.
	ParamGrowthFactor
	// ParamThreadCacheMax is the largest request a thread cache will hold.
	ParamThreadCacheMax
	// ParamThreadCacheBytes caps the bytes a single thread cache may pin.
	ParamThreadCacheBytes
)

var paramNames = map[Param]string{
	ParamTrimThreshold:    "trim_threshold",
	ParamGranularity:      "granularity",
	ParamMmapThreshold:    "mmap_threshold",
	ParamGrowthFactor:     "growth_factor",
	ParamThreadCacheMax:   "thread_cache_max",
	ParamThreadCacheBytes: "thread_cache_bytes",
}

func (p Param) String() string {
	if s, ok := paramNames[p]; ok {
		return s
	}
	return fmt.Sprintf("param(%d)", int(p))
}

// ParseParam resolves a config key such as "trim_threshold".
func ParseParam(name string) (Param, bool) {
	for p, s := range paramNames {
		if s == name {
			return p, true
		}
	}
	return 0, false
}

// Params lists every known tuning parameter in id order.
func Params() []Param {
	return []Param{
		ParamTrimThreshold,
		ParamGranularity,
		ParamMmapThreshold,
		ParamGrowthFactor,
		ParamThreadCacheMax,
		ParamThreadCacheBytes,
	}
}
