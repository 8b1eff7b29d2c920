// control/config.go
// Author: momentics <momentics@gmail.com>
//
// Thread-safe configuration store with validated updates and reload propagation.

package control

import (
	"sync"
)

// ApplyFunc validates and applies a config update before it is stored.
// Returning an error leaves the store unchanged.
type ApplyFunc func(update map[string]any) error

// ConfigStore is a key/value map with snapshot reads and listener support.
type ConfigStore struct {
	mu        sync.RWMutex
	apply     ApplyFunc
	config    map[string]any
	listeners []func()
}

// NewConfigStore initializes an empty store; apply may be nil.
func NewConfigStore(apply ApplyFunc) *ConfigStore {
	return &ConfigStore{
		apply:  apply,
		config: make(map[string]any),
	}
}

// GetSnapshot returns a copy of all config values.
func (cs *ConfigStore) GetSnapshot() map[string]any {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	out := make(map[string]any, len(cs.config))
	for k, v := range cs.config {
		out[k] = v
	}
	return out
}

// SetConfig applies and merges newCfg, then notifies listeners in
// registration order on the calling goroutine.
func (cs *ConfigStore) SetConfig(newCfg map[string]any) error {
	cs.mu.Lock()
	if cs.apply != nil {
		if err := cs.apply(newCfg); err != nil {
			cs.mu.Unlock()
			return err
		}
	}
	for k, v := range newCfg {
		cs.config[k] = v
	}
	listeners := append([]func(){}, cs.listeners...)
	cs.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
	return nil
}

// OnReload registers a listener hook called after each successful update.
func (cs *ConfigStore) OnReload(fn func()) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.listeners = append(cs.listeners, fn)
}
