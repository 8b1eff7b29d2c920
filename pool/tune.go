// File: pool/tune.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Runtime tuning and trimming.

package pool

import (
	"github.com/hashicorp/go-multierror"
	"github.com/momentics/hioload-mem/api"
	"github.com/momentics/hioload-mem/internal/arena"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	maxGranularity    = 1 << 40
	minMmapThreshold  = 4 << 10
	maxGrowthFactor   = 64
	maxThreadCacheMax = 1 << 20
)

// checkParam validates value for param without touching any pool.
func checkParam(param api.Param, value int64) error {
	bad := func(bound string) error {
		return errors.Wrapf(api.ErrInvalidArgument, "%s = %d: %s", param, value, bound)
	}
	switch param {
	case api.ParamTrimThreshold:
		if value < 0 {
			return bad("must not be negative")
		}
	case api.ParamGranularity:
		if value < arena.Granule || value > maxGranularity {
			return bad("out of range")
		}
	case api.ParamMmapThreshold:
		if value < minMmapThreshold || value > arena.MaxRequest {
			return bad("out of range")
		}
	case api.ParamGrowthFactor:
		if value < 1 || value > maxGrowthFactor {
			return bad("out of range")
		}
	case api.ParamThreadCacheMax:
		if value < 0 || value > maxThreadCacheMax {
			return bad("out of range")
		}
	case api.ParamThreadCacheBytes:
		if value < 0 {
			return bad("must not be negative")
		}
	default:
		return errors.Wrapf(api.ErrUnknownParam, "param %d", int(param))
	}
	return nil
}

// Tune sets a tuning parameter. Unknown parameters report
// api.ErrUnknownParam and invalid values api.ErrInvalidArgument; in both
// cases nothing changes.
func (p *Pool) Tune(param api.Param, value int) error {
	p.checkLive()
	if err := checkParam(param, int64(value)); err != nil {
		return err
	}
	p.lock.Lock()
	p.set(param, int64(value))
	p.lock.Unlock()
	p.logTuned(param, value)
	return nil
}

// TuneAll applies several parameters at once. Every value is checked
// first; if any is rejected the returned error lists each problem and
// no parameter changes.
func (p *Pool) TuneAll(settings map[api.Param]int) error {
	p.checkLive()
	var result *multierror.Error
	for param, value := range settings {
		if err := checkParam(param, int64(value)); err != nil {
			result = multierror.Append(result, err)
		}
	}
	if err := result.ErrorOrNil(); err != nil {
		return err
	}
	p.lock.Lock()
	for param, value := range settings {
		p.set(param, int64(value))
	}
	p.lock.Unlock()
	for param, value := range settings {
		p.logTuned(param, value)
	}
	return nil
}

// set stores an already checked value. Caller holds p.lock.
func (p *Pool) set(param api.Param, v int64) {
	switch param {
	case api.ParamThreadCacheMax:
		p.setCacheMax(v)
	case api.ParamThreadCacheBytes:
		p.cacheBytes.Store(uintptr(v))
	case api.ParamTrimThreshold:
		p.arena.TrimThreshold = uintptr(v)
	case api.ParamGranularity:
		p.arena.Granularity = uintptr(v)
	case api.ParamMmapThreshold:
		p.arena.MmapThreshold = uintptr(v)
	case api.ParamGrowthFactor:
		p.arena.GrowthFactor = uintptr(v)
	}
}

func (p *Pool) logTuned(param api.Param, value int) {
	p.log.WithFields(logrus.Fields{
		"param": param.String(),
		"value": value,
	}).Debug("tuned")
}

// Setting returns the current value of a tuning parameter.
func (p *Pool) Setting(param api.Param) (int64, error) {
	switch param {
	case api.ParamThreadCacheMax:
		return p.cacheMax.Load(), nil
	case api.ParamThreadCacheBytes:
		return int64(p.cacheBytes.Load()), nil
	}
	p.lock.Lock()
	defer p.lock.Unlock()
	switch param {
	case api.ParamTrimThreshold:
		return int64(p.arena.TrimThreshold), nil
	case api.ParamGranularity:
		return int64(p.arena.Granularity), nil
	case api.ParamMmapThreshold:
		return int64(p.arena.MmapThreshold), nil
	case api.ParamGrowthFactor:
		return int64(p.arena.GrowthFactor), nil
	}
	return 0, errors.Wrapf(api.ErrUnknownParam, "param %d", int(param))
}

func (p *Pool) setCacheMax(v int64) {
	p.cacheMax.Store(v)
	if v == 0 {
		p.cacheLimit.Store(0)
		return
	}
	need, _ := arena.Need(uintptr(v))
	p.cacheLimit.Store(arena.ClassSize(arena.CeilClass(need)))
}

// Trim flushes idle thread caches, then returns wholly free segments and
// trailing free pages to the backing store while keeping at least pad
// free bytes. It reports whether any memory was released.
func (p *Pool) Trim(pad int) bool {
	p.checkLive()
	if pad < 0 {
		pad = 0
	}
	for i, n := 0, p.depot.idle.Len(); i < n; i++ {
		tc, ok := p.depot.idle.Dequeue()
		if !ok {
			break
		}
		p.flush(tc)
		p.giveBack(tc)
	}
	p.lock.Lock()
	released := p.arena.Trim(uintptr(pad))
	p.lock.Unlock()
	if released {
		p.log.WithField("pad", pad).Debug("trimmed")
	}
	return released
}
