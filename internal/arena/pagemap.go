// File: internal/arena/pagemap.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Process-wide map from 64 KiB granules to the segment covering them.
// Lookups are lock-free so any goroutine can validate an address without
// knowing which pool, if any, owns it.

package arena

import "sync"

const (
	granuleShift = 16
	// Granule is the alignment and size quantum of every segment.
	Granule = 1 << granuleShift
)

var pages sync.Map // granule index -> *segment

func registerSegment(s *segment) {
	for g := s.start >> granuleShift; g < s.end>>granuleShift; g++ {
		pages.Store(g, s)
	}
}

func unregisterSegment(s *segment) {
	for g := s.start >> granuleShift; g < s.end>>granuleShift; g++ {
		pages.CompareAndDelete(g, s)
	}
}

func segmentOf(p uintptr) *segment {
	v, ok := pages.Load(p >> granuleShift)
	if !ok {
		return nil
	}
	return v.(*segment)
}

// State is the lifecycle state of a block observed through Lookup.
type State uint8

const (
	StateLive State = iota + 1
	StateCached
)

// Lookup validates a payload address and returns the owner id recorded in
// its header. Addresses outside every segment, misaligned addresses and
// addresses whose header cookie does not match all report false.
func Lookup(p uintptr) (owner uint32, st State, ok bool) {
	if p == 0 || p%Align != 0 {
		return 0, 0, false
	}
	s := segmentOf(p)
	if s == nil || p < s.start+HeaderSize || p >= s.end-HeaderSize {
		return 0, 0, false
	}
	ha := p - HeaderSize
	h := hdr(ha)
	switch h.magic {
	case liveMagic(p):
		st = StateLive
	case cachedMagic(p):
		st = StateCached
	default:
		return 0, 0, false
	}
	if h.owner != s.owner {
		return 0, 0, false
	}
	if h.flags()&flagShim != 0 {
		r := p - uintptr(h.aux)
		if h.aux == 0 || r < s.start+HeaderSize || hdr(r-HeaderSize).magic != liveMagic(r) {
			return 0, 0, false
		}
		ha = r - HeaderSize
		h = hdr(ha)
	}
	if sz := h.size(); sz < MinBlock || ha+sz > s.end-HeaderSize || h.flags()&flagInUse == 0 {
		return 0, 0, false
	}
	return s.owner, st, true
}
