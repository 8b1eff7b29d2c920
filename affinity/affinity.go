// File: affinity/affinity.go
// Author: momentics <momentics@gmail.com>
//
// Platform-neutral API for CPU affinity. Platform-specific implementations are located
// in separate files guarded by build tags.

package affinity

import "runtime"

// SetAffinity pins the current OS thread to a given logical CPU on supported platforms.
// The caller must hold the thread with runtime.LockOSThread.
// On unsupported platforms returns an error.
func SetAffinity(cpuID int) error {
	return setAffinityPlatform(cpuID)
}

// Pin locks the calling goroutine to its OS thread and binds that thread to
// cpuID modulo the CPU count. The goroutine should exit without unlocking so
// the runtime discards the pinned thread.
func Pin(cpuID int) error {
	runtime.LockOSThread()
	return SetAffinity(cpuID % runtime.NumCPU())
}
