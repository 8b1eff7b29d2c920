// File: internal/arena/segment.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package arena

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// segment is one granule-aligned mapping laid out as
// [block][block]...[sentinel header].
type segment struct {
	region     []byte // exactly as returned by the backing store
	start, end uintptr
	owner      uint32
	huge       bool
	prev, next *segment
}

func (s *segment) sentinel() uintptr {
	return s.end - HeaderSize
}

func (s *segment) span() uintptr {
	return s.end - s.start
}

func roundUp(n, to uintptr) uintptr {
	return (n + to - 1) &^ (to - 1)
}

// mapSegment obtains size usable bytes aligned to Granule. The first block
// covers everything up to the sentinel and is left to the caller to format.
func (a *Arena) mapSegment(size uintptr, huge bool) (*segment, error) {
	region, err := a.src.Map(int(size + Granule))
	if err != nil {
		return nil, errors.Wrapf(err, "map segment of %d bytes", size)
	}
	base := Addr(region)
	s := &segment{
		region: region,
		start:  roundUp(base, Granule),
		owner:  a.owner,
		huge:   huge,
	}
	s.end = s.start + size

	sen := hdr(s.sentinel())
	sen.set(0, flagInUse)
	sen.owner = a.owner
	sen.magic = 0

	s.next = a.segs
	if a.segs != nil {
		a.segs.prev = s
	}
	a.segs = s
	a.nsegs++
	if !huge {
		a.nregular++
	}
	a.footprint += int64(len(region))
	if a.footprint > a.maxFootprint {
		a.maxFootprint = a.footprint
	}
	registerSegment(s)

	a.log.WithFields(logrus.Fields{
		"bytes": len(region),
		"huge":  huge,
	}).Debug("mapped segment")
	if a.obs != nil {
		a.obs.SegmentMapped(len(region))
	}
	return s, nil
}

// releaseSegment unlinks s and returns its mapping. Free blocks inside s
// must already be out of the bins.
func (a *Arena) releaseSegment(s *segment) error {
	if s.prev != nil {
		s.prev.next = s.next
	} else {
		a.segs = s.next
	}
	if s.next != nil {
		s.next.prev = s.prev
	}
	s.prev, s.next = nil, nil
	a.nsegs--
	if !s.huge {
		a.nregular--
	}
	unregisterSegment(s)
	n := len(s.region)
	a.footprint -= int64(n)

	a.log.WithFields(logrus.Fields{
		"bytes": n,
		"huge":  s.huge,
	}).Debug("released segment")
	if a.obs != nil {
		a.obs.SegmentReleased(n)
	}
	if err := a.src.Unmap(s.region); err != nil {
		return errors.Wrapf(err, "release segment of %d bytes", n)
	}
	return nil
}

// freeSpan formats the whole of a fresh regular segment as one free block.
func (a *Arena) freeSpan(s *segment) {
	h := s.start
	size := s.sentinel() - h
	hh := hdr(h)
	hh.prevSize = 0
	hh.set(size, flagPrevInUse)
	hh.owner = a.owner
	hh.magic = 0
	hdr(s.sentinel()).prevSize = uint64(size)
	a.insert(h)
}
