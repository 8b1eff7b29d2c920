// File: internal/arena/block.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Header accessors usable without the pool lock. Callers must already have
// validated p through Lookup and must own the block.

package arena

import "unsafe"

// Real resolves an aligned shim address to the payload of its block.
func Real(p uintptr) uintptr {
	if h := hdr(p - HeaderSize); h.flags()&flagShim != 0 {
		return p - uintptr(h.aux)
	}
	return p
}

// Usable is the number of bytes available at p, which may be a shim.
func Usable(p uintptr) uintptr {
	r := Real(p)
	return r - HeaderSize + hdr(r-HeaderSize).size() - p
}

// SizeOf is the block size (header included) of the block at real payload p.
func SizeOf(p uintptr) uintptr {
	return hdr(p - HeaderSize).size()
}

// Cacheable reports whether the block at p may be parked in a thread
// cache: dedicated segments and aligned shims always go back to the arena.
func Cacheable(p uintptr) bool {
	return hdr(p-HeaderSize).flags()&(flagShim|flagHuge) == 0
}

// MarkCached flags the live block at p as parked in a thread cache.
func MarkCached(p uintptr) {
	hdr(p - HeaderSize).magic = cachedMagic(p)
}

// MarkLive flags a cached block at p as handed out again.
func MarkLive(p uintptr) {
	hdr(p - HeaderSize).magic = liveMagic(p)
}

// List is an intrusive LIFO of cached blocks linked through their payload.
type List struct {
	head uintptr
	n    int
}

// Push links the block at payload p on top of the list.
func (l *List) Push(p uintptr) {
	*(*uintptr)(unsafe.Pointer(p)) = l.head
	l.head = p
	l.n++
}

// Pop unlinks the most recently pushed block, or returns 0.
func (l *List) Pop() uintptr {
	p := l.head
	if p == 0 {
		return 0
	}
	l.head = *(*uintptr)(unsafe.Pointer(p))
	l.n--
	return p
}

// Len is the number of blocks in the list.
func (l *List) Len() int {
	return l.n
}
