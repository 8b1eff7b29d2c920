package facade_test

import (
	"os"
	"os/exec"
	"sync"
	"testing"

	"github.com/momentics/hioload-mem/api"
	"github.com/momentics/hioload-mem/facade"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const childEnv = "HIOLOAD_MEM_FACADE_CHILD"

// runChild re-runs the named test in a fresh process, where the default
// pool has not been created yet.
func runChild(t *testing.T, name string) bool {
	if os.Getenv(childEnv) == name {
		return true
	}
	cmd := exec.Command(os.Args[0], "-test.run=^"+name+"$", "-test.v")
	cmd.Env = append(os.Environ(), childEnv+"="+name)
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, string(out))
	assert.Contains(t, string(out), "--- PASS: "+name)
	return false
}

func TestConcurrentFirstUse(t *testing.T) {
	if !runChild(t, "TestConcurrentFirstUse") {
		return
	}
	const workers = 32
	var (
		wg     sync.WaitGroup
		start  = make(chan struct{})
		blocks = make([][]byte, workers)
		errs   = make([]error, workers)
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			blocks[i], errs[i] = facade.Malloc(64 + i)
		}(i)
	}
	close(start)
	wg.Wait()

	first, _, ok := facade.Owner(blocks[0])
	require.True(t, ok)
	for i, b := range blocks {
		require.NoError(t, errs[i])
		p, _, ok := facade.Owner(b)
		require.True(t, ok)
		assert.Same(t, first, p)
	}
	assert.Equal(t, int64(workers), facade.Stats().Blocks)
	for _, b := range blocks {
		facade.Free(b)
	}
}

func TestShutdown(t *testing.T) {
	if !runChild(t, "TestShutdown") {
		return
	}
	b, err := facade.Malloc(32)
	require.NoError(t, err)
	_ = b

	require.NoError(t, facade.Shutdown())
	assert.True(t, errors.Is(facade.Shutdown(), api.ErrPoolDestroyed))

	assertDestroyedPanic(t, func() { _, _ = facade.Malloc(8) })
	assertDestroyedPanic(t, func() { _, _ = facade.Calloc(1, 8) })
	assertDestroyedPanic(t, func() { facade.Trim(0) })
}

func assertDestroyedPanic(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		e, ok := r.(*api.Error)
		if assert.True(t, ok, "panic value %v", r) {
			assert.Equal(t, api.ErrCodePoolDestroyed, e.Code)
		}
	}()
	fn()
}
