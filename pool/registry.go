// File: pool/registry.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Process-wide pool registry resolving block back-references.

package pool

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/momentics/hioload-mem/api"
	"github.com/momentics/hioload-mem/internal/arena"
)

var (
	registry sync.Map // uint32 -> *Pool
	lastID   atomic.Uint32
)

func register(p *Pool) {
	p.id = lastID.Add(1)
	registry.Store(p.id, p)
}

func unregister(p *Pool) {
	registry.CompareAndDelete(p.id, p)
}

func lookup(id uint32) *Pool {
	v, ok := registry.Load(id)
	if !ok {
		return nil
	}
	return v.(*Pool)
}

// Owner resolves the pool that owns the live block b and that pool's tag.
// Addresses not handed out by any live pool report false.
func Owner(b []byte) (*Pool, any, bool) {
	owner, st, ok := arena.Lookup(arena.Addr(b))
	if !ok || st != arena.StateLive {
		return nil, nil, false
	}
	p := lookup(owner)
	if p == nil {
		return nil, nil, false
	}
	return p, p.Tag(), true
}

// Blksize is the usable size of the live block b, which may exceed the
// size originally requested. It panics if b is not a live block.
func Blksize(b []byte) int {
	poolOf(b, "blksize")
	return int(arena.Usable(arena.Addr(b)))
}

// poolOf resolves the owning pool of b or panics with a diagnostic.
func poolOf(b []byte, op string) *Pool {
	a := arena.Addr(b)
	owner, st, ok := arena.Lookup(a)
	if ok && st == arena.StateCached {
		panic(pointerError(api.ErrCodeDoubleFree, op, a, "block already freed"))
	}
	var p *Pool
	if ok {
		p = lookup(owner)
	}
	if p == nil {
		panic(pointerError(api.ErrCodeInvalidPointer, op, a, "pointer not owned by a managed pool"))
	}
	return p
}

func pointerError(code api.ErrorCode, op string, addr uintptr, msg string) *api.Error {
	return api.NewError(code, op+": "+msg).
		WithContext("addr", fmt.Sprintf("%#x", addr))
}
