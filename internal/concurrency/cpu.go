// File: internal/concurrency/cpu.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package concurrency

import "runtime"

// NumCPUs returns the number of logical CPUs.
func NumCPUs() int {
	return runtime.NumCPU()
}

// MaxThreadCaches is the most thread caches a single pool keeps alive,
// whatever thread count it was created for.
const MaxThreadCaches = 1024

// SafetyCap bounds how many concurrent thread caches a pool creates when no
// thread count was given up front.
func SafetyCap() int {
	n := 4 * NumCPUs()
	if n < 16 {
		n = 16
	}
	if n > MaxThreadCaches {
		n = MaxThreadCaches
	}
	return n
}
