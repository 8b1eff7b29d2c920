// File: internal/concurrency/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Lock-free primitives shared by pools: a bounded MPMC queue used as the
// idle thread-cache depot, and CPU-count helpers sizing it.
package concurrency
