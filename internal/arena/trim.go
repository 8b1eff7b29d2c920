// File: internal/arena/trim.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package arena

import (
	"os"
)

var pageSize = uintptr(os.Getpagesize())

// Trim returns wholly free segments to the backing store while keeping at
// least pad free bytes, then decommits the pages under each segment's
// trailing free block. It reports whether any memory was released.
func (a *Arena) Trim(pad uintptr) bool {
	released := false
	for s := a.segs; s != nil; {
		next := s.next
		if !s.huge {
			h := s.start
			hh := hdr(h)
			size := hh.size()
			if hh.flags()&flagInUse == 0 && h+size == s.sentinel() && a.free >= pad+size {
				a.unlink(h)
				if err := a.releaseSegment(s); err != nil {
					a.log.WithError(err).Warn("trim segment")
				}
				released = true
			}
		}
		s = next
	}
	if a.dirty {
		if a.decommit(pad) {
			released = true
		}
		a.dirty = false
	}
	return released
}

func (a *Arena) decommit(pad uintptr) bool {
	if a.free <= pad {
		return false
	}
	budget := a.free - pad
	released := false
	for s := a.segs; s != nil && budget >= pageSize; s = s.next {
		if s.huge {
			continue
		}
		sen := hdr(s.sentinel())
		if sen.flags()&flagPrevInUse != 0 {
			continue
		}
		h := s.sentinel() - uintptr(sen.prevSize)
		lo := roundUp(h+HeaderSize+2*8, pageSize)
		hi := s.sentinel() &^ (pageSize - 1)
		if hi <= lo {
			continue
		}
		if hi-lo > budget {
			lo = (hi - budget + pageSize - 1) &^ (pageSize - 1)
			if hi <= lo {
				continue
			}
		}
		base := Addr(s.region)
		ok, err := a.src.Decommit(s.region[lo-base : hi-base])
		if err != nil {
			a.log.WithError(err).Warn("decommit trailing pages")
			continue
		}
		if ok {
			budget -= hi - lo
			released = true
		}
	}
	return released
}
