// File: api/backing.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

// BackingStore supplies raw memory to pool arenas.
type BackingStore interface {
	// Map returns a zeroed, writable region of exactly size bytes.
	Map(size int) ([]byte, error)

	// Unmap releases a region previously returned by Map. The slice must be
	// the one Map returned, not a subslice.
	Unmap(region []byte) error

	// Decommit tells the OS the pages of region may be dropped while the
	// address range stays reserved. It reports whether anything was released.
	Decommit(region []byte) (bool, error)
}
