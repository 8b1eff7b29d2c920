// File: pool/pool.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Pool lifecycle and tag handling.

package pool

import (
	"sync/atomic"

	"github.com/momentics/hioload-mem/api"
	"github.com/momentics/hioload-mem/internal/arena"
	"github.com/momentics/hioload-mem/internal/backing"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sys/cpu"
)

// Pool is an independently managed heap with its own arena, lock, thread
// caches and tag.
type Pool struct {
	id      uint32
	log     logrus.FieldLogger
	metrics *Metrics
	lock    api.Locker
	arena   *arena.Arena // guarded by lock
	depot   *depot

	cacheMax   atomic.Int64
	cacheLimit atomic.Uintptr // largest cacheable block, 0 disables caching
	cacheBytes atomic.Uintptr

	tag       atomic.Pointer[tagBox]
	destroyed atomic.Bool

	_             cpu.CacheLinePad
	inUse         atomic.Int64
	blocks        atomic.Int64
	cached        atomic.Int64
	centralAllocs atomic.Uint64
	cacheHits     atomic.Uint64
}

type tagBox struct {
	v any
}

// Create builds a pool with default settings, eagerly reserving capacity
// bytes and sizing the cache registry for threads goroutines.
func Create(capacity int64, threads int) (*Pool, error) {
	cfg := DefaultConfig()
	cfg.Capacity = capacity
	cfg.Threads = threads
	return New(cfg)
}

// New builds a pool from cfg. A nil cfg means DefaultConfig().
func New(cfg *Config) (*Pool, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "pool config")
	}
	log := cfg.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	lock := cfg.Locker
	if lock == nil {
		if cfg.SpinLock {
			lock = new(SpinLock)
		} else {
			lock = new(Mutex)
		}
	}
	src := cfg.Backing
	if src == nil {
		src = backing.New()
	}
	src = backing.Limited(src, cfg.Limit)

	p := &Pool{
		metrics: cfg.Metrics,
		lock:    lock,
		depot:   newDepot(cfg.Threads),
	}
	register(p)
	p.log = log.WithField("pool", p.id)

	var obs arena.Observer
	if o := p.metrics.observer(p.id); o != nil {
		obs = o
	}
	p.arena = arena.New(p.id, src, arena.Params{
		Granularity:   uintptr(cfg.Granularity),
		MmapThreshold: uintptr(cfg.MmapThreshold),
		TrimThreshold: uintptr(cfg.TrimThreshold),
		GrowthFactor:  uintptr(cfg.GrowthFactor),
	}, p.log, obs)
	p.setCacheMax(cfg.ThreadCacheMax)
	p.cacheBytes.Store(uintptr(cfg.ThreadCacheBytes))

	if err := p.arena.Reserve(uintptr(cfg.Capacity)); err != nil {
		unregister(p)
		p.metrics.outOfMemory(p.id)
		p.log.WithError(err).Warn("eager reservation failed")
		return nil, errors.Wrapf(err, "create pool with capacity %d", cfg.Capacity)
	}
	p.log.WithFields(logrus.Fields{
		"capacity": cfg.Capacity,
		"threads":  cfg.Threads,
	}).Debug("pool created")
	return p, nil
}

// ID is the compact identifier stored in every block header of p.
func (p *Pool) ID() uint32 {
	return p.id
}

// SetTag attaches v to the pool; Owner returns it for any live block.
func (p *Pool) SetTag(v any) {
	p.tag.Store(&tagBox{v: v})
}

// Tag returns the value most recently passed to SetTag.
func (p *Pool) Tag() any {
	if b := p.tag.Load(); b != nil {
		return b.v
	}
	return nil
}

// Destroy releases every segment and drops every thread cache. Blocks of p
// become invalid. The caller must ensure no other goroutine is using p.
func (p *Pool) Destroy() error {
	if !p.destroyed.CompareAndSwap(false, true) {
		return errors.Wrapf(api.ErrPoolDestroyed, "destroy pool %d", p.id)
	}
	unregister(p)
	if !p.lock.TryLock() {
		p.log.Warn("destroying pool while its lock is held")
		p.lock.Lock()
	}
	defer p.lock.Unlock()

	for {
		if _, ok := p.depot.idle.Dequeue(); !ok {
			break
		}
		p.depot.discard()
	}
	footprint := p.arena.Footprint()
	err := p.arena.Release()
	p.cached.Store(0)
	p.log.WithField("footprint", footprint).Info("pool destroyed")
	if err != nil {
		return errors.Wrapf(err, "destroy pool %d", p.id)
	}
	return nil
}

func (p *Pool) checkLive() {
	if p.destroyed.Load() {
		panic(api.NewError(api.ErrCodePoolDestroyed, "pool is destroyed").
			WithContext("pool", p.id))
	}
}

var (
	_ api.Allocator      = (*Pool)(nil)
	_ api.BatchAllocator = (*Pool)(nil)
	_ api.Tunable        = (*Pool)(nil)
)
