// Package api
// Author: momentics <momentics@gmail.com>
//
// Public contracts of hioload-mem: the allocation surface, statistics,
// tuning parameters, lock and backing-store capabilities, and errors.
package api
