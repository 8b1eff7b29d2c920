// File: internal/arena/arena.go
// Package arena implements the boundary-tag central heap behind every pool.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// An Arena is not safe for concurrent use. The owning pool serializes every
// method call except the package-level address helpers, which only read
// headers and may run concurrently with arena operations.

package arena

import (
	"math/bits"
	"unsafe"

	"github.com/hashicorp/go-multierror"
	"github.com/momentics/hioload-mem/api"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Params are the tunable growth and release knobs of an arena.
type Params struct {
	Granularity   uintptr // minimum regular segment size
	MmapThreshold uintptr // block size served by a dedicated segment
	TrimThreshold uintptr // free bytes above which empty segments are released on free
	GrowthFactor  uintptr // new segment size relative to the missing block
}

// Observer receives segment lifecycle events.
type Observer interface {
	SegmentMapped(bytes int)
	SegmentReleased(bytes int)
}

// Arena is a segregated-fit heap over segments from a backing store.
type Arena struct {
	Params

	owner uint32
	src   api.BackingStore
	log   logrus.FieldLogger
	obs   Observer

	bins   [NumClasses]uintptr
	bitmap [NumClasses / 64]uint64

	segs     *segment
	nsegs    int
	nregular int

	free         uintptr
	footprint    int64
	maxFootprint int64
	dirty        bool
}

// New creates an empty arena whose blocks carry owner as back-reference.
func New(owner uint32, src api.BackingStore, p Params, log logrus.FieldLogger, obs Observer) *Arena {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Arena{
		Params: p,
		owner:  owner,
		src:    src,
		log:    log,
		obs:    obs,
	}
}

func link(h uintptr) *[2]uintptr {
	return (*[2]uintptr)(unsafe.Pointer(h + HeaderSize))
}

func (a *Arena) insert(h uintptr) {
	size := hdr(h).size()
	c := FloorClass(size)
	l := link(h)
	l[0], l[1] = a.bins[c], 0
	if a.bins[c] != 0 {
		link(a.bins[c])[1] = h
	}
	a.bins[c] = h
	a.bitmap[c>>6] |= 1 << (c & 63)
	a.free += size
}

func (a *Arena) unlink(h uintptr) {
	size := hdr(h).size()
	c := FloorClass(size)
	l := link(h)
	next, prev := l[0], l[1]
	if prev != 0 {
		link(prev)[0] = next
	} else {
		a.bins[c] = next
	}
	if next != 0 {
		link(next)[1] = prev
	}
	if a.bins[c] == 0 {
		a.bitmap[c>>6] &^= 1 << (c & 63)
	}
	a.free -= size
}

func (a *Arena) nonEmptyFrom(c int) int {
	for i := c >> 6; i < len(a.bitmap); i++ {
		m := a.bitmap[i]
		if i == c>>6 {
			m &= ^uint64(0) << (c & 63)
		}
		if m != 0 {
			return i<<6 + bits.TrailingZeros64(m)
		}
	}
	return -1
}

// findFit returns a free block of at least need bytes, still binned.
func (a *Arena) findFit(need uintptr) uintptr {
	c := a.nonEmptyFrom(CeilClass(need))
	if c < 0 {
		return 0
	}
	if c < lastClass {
		return a.bins[c]
	}
	for h := a.bins[lastClass]; h != 0; h = link(h)[0] {
		if hdr(h).size() >= need {
			return h
		}
	}
	return 0
}

// Alloc returns the payload address of a live block of at least need bytes
// (a size obtained from Need).
func (a *Arena) Alloc(need uintptr) (uintptr, error) {
	if need >= a.MmapThreshold {
		return a.allocHuge(need)
	}
	h := a.findFit(need)
	if h == 0 {
		if err := a.grow(need); err != nil {
			return 0, err
		}
		if h = a.findFit(need); h == 0 {
			return 0, errors.Errorf("arena: no fit for %d bytes after growth", need)
		}
	}
	a.unlink(h)
	a.carve(h, need)
	return h + HeaderSize, nil
}

func (a *Arena) grow(need uintptr) error {
	size := need*a.GrowthFactor + HeaderSize
	if size < a.Granularity {
		size = a.Granularity
	}
	s, err := a.mapSegment(roundUp(size, Granule), false)
	if err != nil {
		return errors.Wrapf(err, "grow arena for %d bytes", need)
	}
	a.freeSpan(s)
	return nil
}

func (a *Arena) allocHuge(need uintptr) (uintptr, error) {
	s, err := a.mapSegment(roundUp(need+HeaderSize, Granule), true)
	if err != nil {
		return 0, errors.Wrapf(err, "dedicated segment for %d bytes", need)
	}
	h := s.start
	hh := hdr(h)
	hh.prevSize = 0
	hh.set(s.sentinel()-h, flagInUse|flagPrevInUse|flagHuge)
	hh.owner = a.owner
	hh.aux = 0
	hh.magic = liveMagic(h + HeaderSize)
	hdr(s.sentinel()).setFlag(flagPrevInUse)
	return h + HeaderSize, nil
}

// carve marks the unbinned free block h live, splitting off a free
// remainder when it is large enough to stand alone.
func (a *Arena) carve(h, need uintptr) {
	hh := hdr(h)
	size := hh.size()
	prev := hh.flags() & flagPrevInUse
	if size-need >= MinBlock {
		hh.set(need, flagInUse|prev)
		a.splitFree(h+need, size-need)
	} else {
		hh.set(size, flagInUse|prev)
		hdr(h + size).setFlag(flagPrevInUse)
	}
	hh.owner = a.owner
	hh.aux = 0
	hh.magic = liveMagic(h + HeaderSize)
	a.dirty = true
}

// splitFree formats r as a free block whose predecessor is live and whose
// successor already records a free predecessor.
func (a *Arena) splitFree(r, size uintptr) {
	rh := hdr(r)
	rh.set(size, flagPrevInUse)
	rh.owner = a.owner
	rh.magic = 0
	hdr(r + size).prevSize = uint64(size)
	a.insert(r)
}

// Free returns the block at payload address p (or an aligned shim into it)
// to the bins, coalescing with free neighbours.
func (a *Arena) Free(p uintptr) {
	h := p - HeaderSize
	if sh := hdr(h); sh.flags()&flagShim != 0 {
		sh.magic = 0
		h = p - uintptr(sh.aux) - HeaderSize
	}
	hh := hdr(h)
	if hh.flags()&flagHuge != 0 {
		hh.magic = 0
		if err := a.releaseSegment(segmentOf(h)); err != nil {
			a.log.WithError(err).Warn("release dedicated segment")
		}
		return
	}
	hh.magic = 0
	size := hh.size()
	if hh.flags()&flagPrevInUse == 0 {
		prev := h - uintptr(hh.prevSize)
		a.unlink(prev)
		size += hdr(prev).size()
		h = prev
	}
	if next := h + size; hdr(next).flags()&flagInUse == 0 {
		a.unlink(next)
		size += hdr(next).size()
	}
	hdr(h).set(size, flagPrevInUse)
	end := hdr(h + size)
	end.prevSize = uint64(size)
	end.clearFlag(flagPrevInUse)
	a.insert(h)
	a.releaseIfEmpty(h, size)
}

func (a *Arena) releaseIfEmpty(h, size uintptr) {
	if a.free <= a.TrimThreshold || a.nregular <= 1 {
		return
	}
	s := segmentOf(h)
	if s == nil || s.start != h || h+size != s.sentinel() {
		return
	}
	a.unlink(h)
	if err := a.releaseSegment(s); err != nil {
		a.log.WithError(err).Warn("release empty segment")
	}
}

// Resize tries to fit the block at p to need bytes without moving it.
// Shrinking succeeds unless it would move a dedicated block below the mmap
// threshold; growing succeeds only by absorbing a free successor.
// p must not be an aligned shim.
func (a *Arena) Resize(p, need uintptr) bool {
	h := p - HeaderSize
	hh := hdr(h)
	size, fl := hh.size(), hh.flags()
	if fl&flagHuge != 0 {
		return need <= size && need >= a.MmapThreshold
	}
	if need <= size {
		if size-need >= MinBlock {
			hh.set(need, fl)
			r := h + need
			rh := hdr(r)
			rh.set(size-need, flagInUse|flagPrevInUse)
			rh.magic = 0
			a.Free(r + HeaderSize)
		}
		return true
	}
	next := h + size
	nh := hdr(next)
	if nh.flags()&flagInUse != 0 || size+nh.size() < need {
		return false
	}
	total := size + nh.size()
	a.unlink(next)
	if total-need >= MinBlock {
		hh.set(need, fl)
		a.splitFree(h+need, total-need)
	} else {
		hh.set(total, fl)
		hdr(h + total).setFlag(flagPrevInUse)
	}
	a.dirty = true
	return true
}

// AllocAligned returns a payload address aligned to align (a power of two)
// with at least n usable bytes. Misaligned blocks get a shim header in
// front of the aligned address recording the offset to the real block.
func (a *Arena) AllocAligned(align, n uintptr) (uintptr, error) {
	if align <= Align {
		need, ok := Need(n)
		if !ok {
			return 0, errors.Wrapf(api.ErrOutOfMemory, "request of %d bytes", n)
		}
		return a.Alloc(need)
	}
	need, ok := Need(n + align + HeaderSize)
	if !ok {
		return 0, errors.Wrapf(api.ErrOutOfMemory, "aligned request of %d bytes", n)
	}
	p, err := a.Alloc(need)
	if err != nil {
		return 0, err
	}
	if p%align == 0 {
		return p, nil
	}
	q := roundUp(p+HeaderSize, align)
	sh := hdr(q - HeaderSize)
	sh.prevSize = 0
	sh.set(0, flagShim|flagInUse)
	sh.owner = a.owner
	sh.aux = uint64(q - p)
	sh.magic = liveMagic(q)
	return q, nil
}

// Reserve maps a regular segment able to hold capacity bytes up front.
func (a *Arena) Reserve(capacity uintptr) error {
	if capacity == 0 {
		return nil
	}
	s, err := a.mapSegment(roundUp(capacity+2*HeaderSize, Granule), false)
	if err != nil {
		return errors.Wrapf(err, "reserve %d bytes", capacity)
	}
	a.freeSpan(s)
	return nil
}

// Release unmaps every segment. The arena must not be used afterwards.
func (a *Arena) Release() error {
	var result *multierror.Error
	for s := a.segs; s != nil; {
		next := s.next
		if err := a.releaseSegment(s); err != nil {
			result = multierror.Append(result, err)
		}
		s = next
	}
	a.bins = [NumClasses]uintptr{}
	a.bitmap = [NumClasses / 64]uint64{}
	a.free = 0
	return result.ErrorOrNil()
}

// Footprint is the number of bytes currently mapped from the backing store.
func (a *Arena) Footprint() int64 { return a.footprint }

// MaxFootprint is the high-water mark of Footprint.
func (a *Arena) MaxFootprint() int64 { return a.maxFootprint }

// FreeBytes is the total size of binned free blocks, headers included.
func (a *Arena) FreeBytes() int64 { return int64(a.free) }

// Segments is the number of live segments, dedicated ones included.
func (a *Arena) Segments() int { return a.nsegs }
