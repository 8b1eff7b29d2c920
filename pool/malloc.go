// File: pool/malloc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Allocation paths shared by Pool and Thread. A nil cache sends every
// request straight to the central arena.

package pool

import (
	"math"
	"math/bits"

	"github.com/momentics/hioload-mem/api"
	"github.com/momentics/hioload-mem/internal/arena"
	"github.com/pkg/errors"
)

// Malloc returns a block of n bytes; cap of the result is the usable size.
func (p *Pool) Malloc(n int) ([]byte, error) {
	p.checkLive()
	tc := p.borrow()
	defer p.giveBack(tc)
	return p.malloc(tc, n)
}

// Calloc returns a zeroed block of count*size bytes.
func (p *Pool) Calloc(count, size int) ([]byte, error) {
	p.checkLive()
	tc := p.borrow()
	defer p.giveBack(tc)
	return p.calloc(tc, count, size)
}

// Realloc resizes b to n bytes, preserving its contents up to the smaller
// size. Realloc(nil, n) allocates; Realloc(b, 0) frees b and returns nil.
// On failure b is left untouched.
func (p *Pool) Realloc(b []byte, n int) ([]byte, error) {
	p.checkLive()
	tc := p.borrow()
	defer p.giveBack(tc)
	return p.realloc(tc, b, n)
}

// Free returns b to the pool. Freeing nil is a no-op; freeing a block of
// another pool, a freed block or a foreign address panics.
func (p *Pool) Free(b []byte) {
	if arena.Addr(b) == 0 {
		return
	}
	p.checkLive()
	tc := p.borrow()
	defer p.giveBack(tc)
	p.free(tc, b)
}

// Memalign returns a block of n bytes whose address is a multiple of align,
// which must be a power of two.
func (p *Pool) Memalign(align, n int) ([]byte, error) {
	p.checkLive()
	return p.memalign(align, n)
}

func (p *Pool) borrow() *threadCache {
	if p.cacheLimit.Load() == 0 {
		return nil
	}
	return p.depot.get()
}

func (p *Pool) giveBack(tc *threadCache) {
	if tc == nil {
		return
	}
	if !p.depot.put(tc) {
		p.flush(tc)
		p.depot.discard()
	}
}

// flush returns every block parked in tc to the central arena.
func (p *Pool) flush(tc *threadCache) {
	if tc.bytes == 0 {
		return
	}
	n := int64(tc.bytes)
	p.lock.Lock()
	tc.drain(p.arena.Free)
	p.lock.Unlock()
	p.cached.Add(-n)
	p.metrics.cacheFlush(p.id)
}

func (p *Pool) need(n int, op string) (uintptr, error) {
	if n < 0 {
		return 0, errors.Wrapf(api.ErrInvalidArgument, "%s %d bytes", op, n)
	}
	need, ok := arena.Need(uintptr(n))
	if !ok {
		return 0, p.oom(errors.Wrapf(api.ErrOutOfMemory, "%s %d bytes", op, n))
	}
	return need, nil
}

func (p *Pool) malloc(tc *threadCache, n int) ([]byte, error) {
	need, err := p.need(n, "malloc")
	if err != nil {
		return nil, err
	}
	if tc != nil && need <= p.cacheLimit.Load() {
		c := arena.CeilClass(need)
		if a := tc.pop(c); a != 0 {
			p.cached.Add(-int64(arena.SizeOf(a)))
			arena.MarkLive(a)
			p.cacheHits.Add(1)
			return p.hand(a, n), nil
		}
		need = arena.ClassSize(c)
	}

	p.lock.Lock()
	a, err := p.arena.Alloc(need)
	p.lock.Unlock()
	if err != nil {
		return nil, p.oom(errors.Wrapf(err, "malloc %d bytes", n))
	}
	p.centralAllocs.Add(1)
	return p.hand(a, n), nil
}

func (p *Pool) calloc(tc *threadCache, count, size int) ([]byte, error) {
	if count < 0 || size < 0 {
		return nil, errors.Wrapf(api.ErrInvalidArgument, "calloc %d x %d bytes", count, size)
	}
	hi, n := bits.Mul64(uint64(count), uint64(size))
	if hi != 0 || n > math.MaxInt {
		return nil, p.oom(errors.Wrapf(api.ErrOutOfMemory, "calloc %d x %d bytes overflows", count, size))
	}
	b, err := p.malloc(tc, int(n))
	if err != nil {
		return nil, err
	}
	clear(b)
	return b, nil
}

func (p *Pool) realloc(tc *threadCache, b []byte, n int) ([]byte, error) {
	a := arena.Addr(b)
	if a == 0 {
		return p.malloc(tc, n)
	}
	if n == 0 {
		p.free(tc, b)
		return nil, nil
	}
	p.validate(a, "realloc")
	need, err := p.need(n, "realloc")
	if err != nil {
		return nil, err
	}
	usable := arena.Usable(a)
	if arena.Real(a) == a {
		if size := arena.SizeOf(a); need <= size && size-need < arena.MinBlock {
			return arena.Bytes(a, usable)[:n], nil
		}
		p.lock.Lock()
		ok := p.arena.Resize(a, need)
		p.lock.Unlock()
		if ok {
			grown := arena.Usable(a)
			p.inUse.Add(int64(grown) - int64(usable))
			return arena.Bytes(a, grown)[:n], nil
		}
	}

	nb, err := p.malloc(tc, n)
	if err != nil {
		return nil, err
	}
	copy(nb, arena.Bytes(a, usable))
	p.free(tc, b)
	return nb, nil
}

func (p *Pool) free(tc *threadCache, b []byte) {
	a := arena.Addr(b)
	if a == 0 {
		return
	}
	p.validate(a, "free")
	p.inUse.Add(-int64(arena.Usable(a)))
	p.blocks.Add(-1)

	if tc != nil && arena.Cacheable(a) {
		size := arena.SizeOf(a)
		if size <= p.cacheLimit.Load() && tc.bytes+size <= p.cacheBytes.Load() {
			arena.MarkCached(a)
			tc.push(a, size)
			p.cached.Add(int64(size))
			return
		}
	}
	p.lock.Lock()
	p.arena.Free(a)
	p.lock.Unlock()
}

func (p *Pool) memalign(align, n int) ([]byte, error) {
	if align <= 0 || align&(align-1) != 0 || align > 1<<30 {
		return nil, errors.Wrapf(api.ErrInvalidArgument, "memalign to %d", align)
	}
	if n < 0 {
		return nil, errors.Wrapf(api.ErrInvalidArgument, "memalign %d bytes", n)
	}
	if uintptr(n) > arena.MaxRequest {
		return nil, p.oom(errors.Wrapf(api.ErrOutOfMemory, "memalign %d bytes", n))
	}
	p.lock.Lock()
	a, err := p.arena.AllocAligned(uintptr(align), uintptr(n))
	p.lock.Unlock()
	if err != nil {
		return nil, p.oom(errors.Wrapf(err, "memalign %d bytes to %d", n, align))
	}
	p.centralAllocs.Add(1)
	return p.hand(a, n), nil
}

// hand accounts a freshly live block and exposes it to the caller.
func (p *Pool) hand(a uintptr, n int) []byte {
	usable := arena.Usable(a)
	p.inUse.Add(int64(usable))
	p.blocks.Add(1)
	return arena.Bytes(a, usable)[:n]
}

// validate panics unless a is a live block of p.
func (p *Pool) validate(a uintptr, op string) {
	owner, st, ok := arena.Lookup(a)
	switch {
	case !ok:
		panic(pointerError(api.ErrCodeInvalidPointer, op, a, "pointer not owned by a managed pool").
			WithContext("pool", p.id))
	case st == arena.StateCached:
		panic(pointerError(api.ErrCodeDoubleFree, op, a, "block already freed").
			WithContext("pool", p.id))
	case owner != p.id:
		panic(pointerError(api.ErrCodeForeignPointer, op, a, "block belongs to another pool").
			WithContext("pool", p.id).
			WithContext("owner", owner))
	}
}

func (p *Pool) oom(err error) error {
	p.metrics.outOfMemory(p.id)
	p.log.WithError(err).Warn("allocation failed")
	return err
}
