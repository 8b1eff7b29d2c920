package pool_test

import (
	"os"
	"os/exec"
	"sync"
	"testing"

	"github.com/momentics/hioload-mem/api"
	"github.com/momentics/hioload-mem/pool"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsCreatedOnce(t *testing.T) {
	const workers = 32
	var (
		wg    sync.WaitGroup
		start = make(chan struct{})
		pools = make([]*pool.Pool, workers)
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			pools[i] = pool.Default()
		}(i)
	}
	close(start)
	wg.Wait()

	for _, p := range pools {
		require.NotNil(t, p)
		assert.Same(t, pools[0], p)
	}
}

const shutdownChildEnv = "HIOLOAD_MEM_SHUTDOWN_CHILD"

// The default pool cannot be recreated, so teardown runs in a child process.
func TestShutdownDefault(t *testing.T) {
	if os.Getenv(shutdownChildEnv) == "1" {
		shutdownDefaultChild(t)
		return
	}
	cmd := exec.Command(os.Args[0], "-test.run=^TestShutdownDefault$", "-test.v")
	cmd.Env = append(os.Environ(), shutdownChildEnv+"=1")
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, string(out))
	assert.Contains(t, string(out), "--- PASS: TestShutdownDefault")
}

func shutdownDefaultChild(t *testing.T) {
	require.NoError(t, pool.ShutdownDefault(), "nothing created yet")

	p := pool.Default()
	b, err := p.Malloc(64)
	require.NoError(t, err)
	_ = b

	require.NoError(t, pool.ShutdownDefault())
	err = pool.ShutdownDefault()
	assert.True(t, errors.Is(err, api.ErrPoolDestroyed))

	assert.Same(t, p, pool.Default(), "never recreated")
	assert.Equal(t, api.ErrCodePoolDestroyed, panicCode(func() { _, _ = pool.Default().Malloc(8) }))
}
