package pool_test

import (
	"testing"

	"github.com/momentics/hioload-mem/api"
	"github.com/momentics/hioload-mem/pool"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	require.NoError(t, pool.DefaultConfig().Validate())
}

func TestValidateRejectsBadValues(t *testing.T) {
	for name, mutate := range map[string]func(*pool.Config){
		"capacity":     func(c *pool.Config) { c.Capacity = -1 },
		"threads":      func(c *pool.Config) { c.Threads = -1 },
		"limit":        func(c *pool.Config) { c.Limit = -1 },
		"granularity":  func(c *pool.Config) { c.Granularity = 1 },
		"growth":       func(c *pool.Config) { c.GrowthFactor = 1000 },
		"thread cache": func(c *pool.Config) { c.ThreadCacheMax = 1 << 30 },
	} {
		cfg := pool.DefaultConfig()
		mutate(cfg)
		err := cfg.Validate()
		assert.True(t, errors.Is(err, api.ErrInvalidArgument), name)

		_, err = pool.New(cfg)
		assert.Error(t, err, name)
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("HIOLOAD_MEM_CAPACITY", "4194304")
	t.Setenv("HIOLOAD_MEM_THREADS", "6")
	t.Setenv("HIOLOAD_MEM_LIMIT", "67108864")
	t.Setenv("HIOLOAD_MEM_GRANULARITY", "2097152")
	t.Setenv("HIOLOAD_MEM_TRIM_THRESHOLD", "0")
	t.Setenv("HIOLOAD_MEM_MMAP_THRESHOLD", "524288")
	t.Setenv("HIOLOAD_MEM_GROWTH_FACTOR", "3")
	t.Setenv("HIOLOAD_MEM_THREAD_CACHE_MAX", "4096")
	t.Setenv("HIOLOAD_MEM_THREAD_CACHE_BYTES", "65536")
	t.Setenv("HIOLOAD_MEM_SPINLOCK", "on")

	cfg := pool.DefaultConfig()
	require.NoError(t, pool.FromEnv(cfg))
	assert.Equal(t, int64(4<<20), cfg.Capacity)
	assert.Equal(t, 6, cfg.Threads)
	assert.Equal(t, int64(64<<20), cfg.Limit)
	assert.Equal(t, int64(2<<20), cfg.Granularity)
	assert.Zero(t, cfg.TrimThreshold)
	assert.Equal(t, int64(512<<10), cfg.MmapThreshold)
	assert.Equal(t, 3, cfg.GrowthFactor)
	assert.Equal(t, int64(4096), cfg.ThreadCacheMax)
	assert.Equal(t, int64(65536), cfg.ThreadCacheBytes)
	assert.True(t, cfg.SpinLock)

	p, err := pool.New(cfg)
	require.NoError(t, err)
	defer p.Destroy()
	assert.GreaterOrEqual(t, p.Footprint(), int64(4<<20))
	assert.Equal(t, 6, p.Stats().ThreadCaches)
}

func TestFromEnvParseErrors(t *testing.T) {
	for _, name := range []string{
		"HIOLOAD_MEM_CAPACITY",
		"HIOLOAD_MEM_THREADS",
		"HIOLOAD_MEM_GROWTH_FACTOR",
	} {
		t.Run(name, func(t *testing.T) {
			t.Setenv(name, "lots")
			err := pool.FromEnv(pool.DefaultConfig())
			require.Error(t, err)
			assert.Contains(t, err.Error(), name)
		})
	}
}

func TestFromEnvValidates(t *testing.T) {
	t.Setenv("HIOLOAD_MEM_GROWTH_FACTOR", "0")
	err := pool.FromEnv(pool.DefaultConfig())
	assert.True(t, errors.Is(err, api.ErrInvalidArgument))
}
