// File: pool/config.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Pool construction parameters and environment overrides.

package pool

import (
	"os"
	"strconv"

	"github.com/momentics/hioload-mem/api"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Config holds construction parameters for a Pool.
type Config struct {
	// Capacity is reserved eagerly from the backing store; 0 reserves lazily.
	Capacity int64
	// Threads pre-sizes the thread-cache registry, capped at
	// concurrency.MaxThreadCaches; 0 grows on demand up to
	// an internal safety cap.
	Threads int
	// Limit caps the bytes mapped from the backing store; 0 is unlimited.
	Limit int64

	Granularity      int64
	TrimThreshold    int64
	MmapThreshold    int64
	GrowthFactor     int
	ThreadCacheMax   int64
	ThreadCacheBytes int64

	// SpinLock selects SpinLock over the default mutex when Locker is nil.
	SpinLock bool
	Locker   api.Locker

	Backing api.BackingStore
	Logger  logrus.FieldLogger
	Metrics *Metrics
}

// DefaultConfig returns a configuration with sane defaults.
func DefaultConfig() *Config {
	return &Config{
		Granularity:      1 << 20,
		TrimThreshold:    2 << 20,
		MmapThreshold:    1 << 20,
		GrowthFactor:     2,
		ThreadCacheMax:   8 << 10,
		ThreadCacheBytes: 512 << 10,
		Logger:           logrus.StandardLogger(),
	}
}

// Validate checks every field and returns the first problem found.
func (c *Config) Validate() error {
	if c.Capacity < 0 {
		return errors.Wrapf(api.ErrInvalidArgument, "capacity %d", c.Capacity)
	}
	if c.Threads < 0 {
		return errors.Wrapf(api.ErrInvalidArgument, "threads %d", c.Threads)
	}
	if c.Limit < 0 {
		return errors.Wrapf(api.ErrInvalidArgument, "limit %d", c.Limit)
	}
	for param, v := range c.params() {
		if err := checkParam(param, v); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) params() map[api.Param]int64 {
	return map[api.Param]int64{
		api.ParamTrimThreshold:    c.TrimThreshold,
		api.ParamGranularity:      c.Granularity,
		api.ParamMmapThreshold:    c.MmapThreshold,
		api.ParamGrowthFactor:     int64(c.GrowthFactor),
		api.ParamThreadCacheMax:   c.ThreadCacheMax,
		api.ParamThreadCacheBytes: c.ThreadCacheBytes,
	}
}

// FromEnv overrides cfg with HIOLOAD_MEM_* environment variables.
func FromEnv(cfg *Config) error {
	ints := []struct {
		name string
		dst  *int64
	}{
		{"HIOLOAD_MEM_CAPACITY", &cfg.Capacity},
		{"HIOLOAD_MEM_LIMIT", &cfg.Limit},
		{"HIOLOAD_MEM_GRANULARITY", &cfg.Granularity},
		{"HIOLOAD_MEM_TRIM_THRESHOLD", &cfg.TrimThreshold},
		{"HIOLOAD_MEM_MMAP_THRESHOLD", &cfg.MmapThreshold},
		{"HIOLOAD_MEM_THREAD_CACHE_MAX", &cfg.ThreadCacheMax},
		{"HIOLOAD_MEM_THREAD_CACHE_BYTES", &cfg.ThreadCacheBytes},
	}
	for _, e := range ints {
		if v := os.Getenv(e.name); v != "" {
			asInt, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return errors.Wrapf(err, "parse %s as int", e.name)
			}
			*e.dst = asInt
		}
	}

	if v := os.Getenv("HIOLOAD_MEM_THREADS"); v != "" {
		asInt, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrapf(err, "parse HIOLOAD_MEM_THREADS as int")
		}
		cfg.Threads = asInt
	}

	if v := os.Getenv("HIOLOAD_MEM_GROWTH_FACTOR"); v != "" {
		asInt, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrapf(err, "parse HIOLOAD_MEM_GROWTH_FACTOR as int")
		}
		cfg.GrowthFactor = asInt
	}

	if enabled(os.Getenv("HIOLOAD_MEM_SPINLOCK")) {
		cfg.SpinLock = true
	}

	return cfg.Validate()
}

func enabled(value string) bool {
	switch value {
	case "on", "1", "true", "enabled":
		return true
	}
	return false
}
