// File: pool/lock.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Lock capabilities accepted through Config.Locker.

package pool

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/momentics/hioload-mem/api"
)

// Mutex adapts sync.Mutex to api.Locker.
type Mutex struct {
	mu   sync.Mutex
	held atomic.Bool
}

func (m *Mutex) Lock() {
	m.mu.Lock()
	m.held.Store(true)
}

func (m *Mutex) Unlock() {
	m.held.Store(false)
	m.mu.Unlock()
}

func (m *Mutex) TryLock() bool {
	if !m.mu.TryLock() {
		return false
	}
	m.held.Store(true)
	return true
}

func (m *Mutex) IsLocked() bool {
	return m.held.Load()
}

// SpinLock is a test-and-test-and-set lock for very short critical sections.
// It yields the processor after a bounded number of failed spins.
type SpinLock struct {
	state atomic.Uint32
}

const spinsBeforeYield = 64

func (l *SpinLock) Lock() {
	for spins := 0; ; spins++ {
		if l.state.Load() == 0 && l.state.CompareAndSwap(0, 1) {
			return
		}
		if spins >= spinsBeforeYield {
			runtime.Gosched()
			spins = 0
		}
	}
}

func (l *SpinLock) Unlock() {
	l.state.Store(0)
}

func (l *SpinLock) TryLock() bool {
	return l.state.CompareAndSwap(0, 1)
}

func (l *SpinLock) IsLocked() bool {
	return l.state.Load() != 0
}

var (
	_ api.Locker = (*Mutex)(nil)
	_ api.Locker = (*SpinLock)(nil)
)
