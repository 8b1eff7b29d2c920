// File: pool/batch.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Multi-block allocation under a single lock acquisition.

package pool

import (
	"github.com/momentics/hioload-mem/api"
	"github.com/pkg/errors"
)

// IndependentCalloc allocates n zeroed, independently freeable blocks of
// size bytes each. If chunks has room for n entries the results are stored
// there and chunks[:n] is returned; otherwise a new slice is allocated.
// The slice and the blocks are owned separately. The call is all-or-nothing:
// on failure no block stays allocated and chunks entries are reset to nil.
func (p *Pool) IndependentCalloc(n, size int, chunks [][]byte) ([][]byte, error) {
	p.checkLive()
	if n < 0 || size < 0 {
		return nil, errors.Wrapf(api.ErrInvalidArgument, "independent calloc %d x %d bytes", n, size)
	}
	return p.batch(n, func(int) int { return size }, true, chunks)
}

// IndependentComalloc allocates one independently freeable block per entry
// of sizes. Contents are not zeroed. Result and failure semantics match
// IndependentCalloc.
func (p *Pool) IndependentComalloc(sizes []int, chunks [][]byte) ([][]byte, error) {
	p.checkLive()
	for i, s := range sizes {
		if s < 0 {
			return nil, errors.Wrapf(api.ErrInvalidArgument, "independent comalloc element %d of %d bytes", i, s)
		}
	}
	return p.batch(len(sizes), func(i int) int { return sizes[i] }, false, chunks)
}

func (p *Pool) batch(n int, sizeOf func(int) int, zero bool, chunks [][]byte) ([][]byte, error) {
	needs := make([]uintptr, n)
	for i := range needs {
		need, err := p.need(sizeOf(i), "batch element")
		if err != nil {
			return nil, err
		}
		needs[i] = need
	}

	addrs := make([]uintptr, n)
	p.lock.Lock()
	for i, need := range needs {
		a, err := p.arena.Alloc(need)
		if err != nil {
			for _, done := range addrs[:i] {
				p.arena.Free(done)
			}
			p.lock.Unlock()
			clear(chunks[:min(len(chunks), n)])
			return nil, p.oom(errors.Wrapf(err, "batch element %d of %d", i, n))
		}
		addrs[i] = a
	}
	p.lock.Unlock()
	p.centralAllocs.Add(uint64(n))

	out := chunks
	if len(out) >= n {
		out = out[:n]
	} else {
		out = make([][]byte, n)
	}
	for i, a := range addrs {
		b := p.hand(a, sizeOf(i))
		if zero {
			clear(b)
		}
		out[i] = b
	}
	return out, nil
}

