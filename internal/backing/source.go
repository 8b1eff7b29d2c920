// File: internal/backing/source.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package backing

import (
	"sync/atomic"

	"github.com/momentics/hioload-mem/api"
	"github.com/pkg/errors"
)

// New returns the platform anonymous-mapping store.
func New() api.BackingStore {
	return anonymous{}
}

// limited caps the number of bytes mapped through an underlying store.
type limited struct {
	src    api.BackingStore
	limit  int64
	mapped atomic.Int64
}

// Limited wraps src so that at most limit bytes are mapped at once.
// Requests beyond the limit fail with api.ErrOutOfMemory.
func Limited(src api.BackingStore, limit int64) api.BackingStore {
	if limit <= 0 {
		return src
	}
	return &limited{src: src, limit: limit}
}

func (l *limited) Map(size int) ([]byte, error) {
	if size <= 0 {
		return nil, errors.Wrapf(api.ErrInvalidArgument, "map %d bytes", size)
	}
	for {
		cur := l.mapped.Load()
		if cur+int64(size) > l.limit {
			return nil, errors.Wrapf(api.ErrOutOfMemory,
				"map %d bytes: limit %d, mapped %d", size, l.limit, cur)
		}
		if l.mapped.CompareAndSwap(cur, cur+int64(size)) {
			break
		}
	}
	b, err := l.src.Map(size)
	if err != nil {
		l.mapped.Add(-int64(size))
		return nil, err
	}
	return b, nil
}

func (l *limited) Unmap(region []byte) error {
	n := len(region)
	if err := l.src.Unmap(region); err != nil {
		return err
	}
	l.mapped.Add(-int64(n))
	return nil
}

func (l *limited) Decommit(region []byte) (bool, error) {
	return l.src.Decommit(region)
}

// Mapped reports the bytes currently mapped through a Limited store, or -1
// for stores that do not track it.
func Mapped(src api.BackingStore) int64 {
	if l, ok := src.(*limited); ok {
		return l.mapped.Load()
	}
	return -1
}
