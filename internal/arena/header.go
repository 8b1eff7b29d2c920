// File: internal/arena/header.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Boundary-tag block header.
//
//	+0  prevSize  size of the preceding block, valid only while it is free
//	+8  head      block size | flags, atomically accessed
//	+16 owner     compact pool id
//	+20 magic     address-derived cookie encoding live/cached state
//	+24 aux       payload offset from an aligned shim back to the real block
//	+32 payload   (free blocks keep their list links here)

package arena

import (
	"sync/atomic"
	"unsafe"
)

const (
	// Align is the payload alignment guaranteed for every block.
	Align = 16
	// HeaderSize is the per-block overhead in front of the payload.
	HeaderSize = 32
	// MinBlock is the smallest block: a header plus two list links.
	MinBlock = HeaderSize + 2*8

	// MaxRequest bounds a single request so size arithmetic cannot wrap.
	MaxRequest = 1 << 46
)

const (
	flagInUse     = 1 << 0
	flagPrevInUse = 1 << 1
	flagShim      = 1 << 2
	flagHuge      = 1 << 3
	flagMask      = Align - 1

	cachedXor = 0xA5A5A5A4
)

type header struct {
	prevSize uint64
	head     atomic.Uint64
	owner    uint32
	magic    uint32
	aux      uint64
}

func hdr(h uintptr) *header {
	return (*header)(unsafe.Pointer(h))
}

func (h *header) size() uintptr {
	return uintptr(h.head.Load() &^ flagMask)
}

func (h *header) flags() uint64 {
	return h.head.Load() & flagMask
}

func (h *header) set(size uintptr, flags uint64) {
	h.head.Store(uint64(size) | flags)
}

func (h *header) setFlag(f uint64) {
	h.head.Or(f)
}

func (h *header) clearFlag(f uint64) {
	h.head.And(^f)
}

// liveMagic is odd for every address, so a zeroed header never validates.
func liveMagic(p uintptr) uint32 {
	x := uint64(p>>4) * 0x9E3779B97F4A7C15
	return uint32(x>>32) | 1
}

func cachedMagic(p uintptr) uint32 {
	return liveMagic(p) ^ cachedXor
}

// Need converts a request of n payload bytes into a block size.
// It reports false when n is too large to ever be satisfied.
func Need(n uintptr) (uintptr, bool) {
	if n > MaxRequest {
		return 0, false
	}
	s := (n + HeaderSize + Align - 1) &^ (Align - 1)
	if s < MinBlock {
		s = MinBlock
	}
	return s, true
}

// Bytes exposes size bytes starting at payload address p.
func Bytes(p, size uintptr) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(p)), size)
}

// Addr returns the payload address of a block slice, or 0 for nil.
func Addr(b []byte) uintptr {
	if cap(b) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(unsafe.SliceData(b)))
}
