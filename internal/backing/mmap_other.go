//go:build !linux && !darwin

// File: internal/backing/mmap_other.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package backing

import (
	"github.com/edsrzf/mmap-go"
	"github.com/momentics/hioload-mem/api"
	"github.com/pkg/errors"
)

type anonymous struct{}

func (anonymous) Map(size int) ([]byte, error) {
	if size <= 0 {
		return nil, errors.Wrapf(api.ErrInvalidArgument, "map %d bytes", size)
	}
	m, err := mmap.MapRegion(nil, size, mmap.RDWR, mmap.ANON, 0)
	if err != nil {
		return nil, errors.Wrapf(api.ErrOutOfMemory, "mmap %d bytes: %v", size, err)
	}
	return m, nil
}

func (anonymous) Unmap(region []byte) error {
	m := mmap.MMap(region)
	if err := m.Unmap(); err != nil {
		return errors.Wrapf(err, "munmap %d bytes", len(region))
	}
	return nil
}

// Decommit is unsupported here; pages stay committed until Unmap.
func (anonymous) Decommit([]byte) (bool, error) {
	return false, nil
}
