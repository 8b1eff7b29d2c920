// Package control
// Author: momentics <momentics@gmail.com>
//
// Runtime tuning, metrics export and debug introspection for hioload-mem pools.
//
// Provides concurrent-safe state handling primitives including:
//   - Validated config updates with reload listeners
//   - Sampled pool statistics and a Prometheus collector
//   - Debug probe registration and state export
//
// This package is cross-platform and build-tag-partitioned as needed.
package control
