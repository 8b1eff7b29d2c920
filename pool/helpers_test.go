package pool_test

import (
	"testing"
	"unsafe"

	"github.com/momentics/hioload-mem/api"
	"github.com/momentics/hioload-mem/pool"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

func newPool(t *testing.T, mutate func(*pool.Config)) *pool.Pool {
	t.Helper()
	cfg := pool.DefaultConfig()
	cfg.Logger, _ = test.NewNullLogger()
	if mutate != nil {
		mutate(cfg)
	}
	p, err := pool.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Destroy() })
	return p
}

func addr(b []byte) uintptr {
	return uintptr(unsafe.Pointer(unsafe.SliceData(b)))
}

func fill(b []byte, v byte) {
	for i := range b {
		b[i] = v
	}
}

func allEqual(b []byte, v byte) bool {
	for _, x := range b {
		if x != v {
			return false
		}
	}
	return true
}

// panicCode runs fn and returns the code of the *api.Error it panics with.
func panicCode(fn func()) (code api.ErrorCode) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(*api.Error); ok {
				code = e.Code
				return
			}
			code = api.ErrCodeInternal
		}
	}()
	fn()
	return api.ErrCodeOK
}
