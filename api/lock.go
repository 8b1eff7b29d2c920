// File: api/lock.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

// Locker is the lock capability guarding a pool's central arena.
// Implementations must be usable from their zero value or from the
// constructor that returned them, i.e. initially unlocked.
type Locker interface {
	Lock()
	Unlock()
	TryLock() bool
	IsLocked() bool
}
