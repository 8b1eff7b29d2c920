//go:build linux || darwin

// File: internal/backing/mmap_unix.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package backing

import (
	"github.com/momentics/hioload-mem/api"
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

type anonymous struct{}

func (anonymous) Map(size int) ([]byte, error) {
	if size <= 0 {
		return nil, errors.Wrapf(api.ErrInvalidArgument, "map %d bytes", size)
	}
	b, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, errors.Wrapf(api.ErrOutOfMemory, "mmap %d bytes: %v", size, err)
	}
	return b, nil
}

func (anonymous) Unmap(region []byte) error {
	if err := unix.Munmap(region); err != nil {
		return errors.Wrapf(err, "munmap %d bytes", len(region))
	}
	return nil
}

func (anonymous) Decommit(region []byte) (bool, error) {
	if len(region) == 0 {
		return false, nil
	}
	if err := unix.Madvise(region, unix.MADV_DONTNEED); err != nil {
		return false, errors.Wrapf(err, "madvise %d bytes", len(region))
	}
	return true, nil
}
