// File: pool/default.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Process-wide default pool.

package pool

import (
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

var (
	defaultOnce sync.Once
	defaultPool atomic.Pointer[Pool]
)

// Default returns the process-wide pool, creating it on first use from
// DefaultConfig and HIOLOAD_MEM_* overrides.
func Default() *Pool {
	defaultOnce.Do(func() {
		cfg := DefaultConfig()
		if err := FromEnv(cfg); err != nil {
			logrus.WithError(err).Warn("default pool: ignoring environment overrides")
			cfg = DefaultConfig()
		}
		p, err := New(cfg)
		if err != nil {
			logrus.WithError(err).Warn("default pool: reserving lazily")
			cfg.Capacity = 0
			if p, err = New(cfg); err != nil {
				panic(err)
			}
		}
		defaultPool.Store(p)
	})
	return defaultPool.Load()
}

// ShutdownDefault destroys the default pool if it was ever created.
// Call it once at process exit; the default pool is not recreated.
func ShutdownDefault() error {
	p := defaultPool.Load()
	if p == nil {
		return nil
	}
	return p.Destroy()
}
