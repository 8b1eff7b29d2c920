package adapters_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/momentics/hioload-mem/adapters"
	"github.com/momentics/hioload-mem/api"
	"github.com/momentics/hioload-mem/pool"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPool(t *testing.T) *pool.Pool {
	t.Helper()
	logger, _ := test.NewNullLogger()
	cfg := pool.DefaultConfig()
	cfg.Logger = logger
	p, err := pool.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Destroy() })
	return p
}

func TestControlAdapterBasic(t *testing.T) {
	p := newPool(t)
	ctrl := adapters.NewControlAdapter(p)

	cfg := ctrl.GetConfig()
	assert.Equal(t, int64(2<<20), cfg["trim_threshold"])
	assert.Equal(t, int64(2), cfg["growth_factor"])

	called := false
	ctrl.OnReload(func() { called = true })
	require.NoError(t, ctrl.SetConfig(map[string]any{"k": 1, "trim_threshold": 4 << 20}))
	assert.True(t, called)

	cfg = ctrl.GetConfig()
	assert.Equal(t, 1, cfg["k"])
	assert.Equal(t, int64(4<<20), cfg["trim_threshold"])
	v, err := p.Setting(api.ParamTrimThreshold)
	require.NoError(t, err)
	assert.Equal(t, int64(4<<20), v)
}

func TestControlAdapterRejects(t *testing.T) {
	p := newPool(t)
	ctrl := adapters.NewControlAdapter(p)

	err := ctrl.SetConfig(map[string]any{"growth_factor": "fast", "trim_threshold": 1 << 20})
	require.Error(t, err)
	assert.ErrorIs(t, err, api.ErrInvalidArgument)
	v, _ := p.Setting(api.ParamTrimThreshold)
	assert.Equal(t, int64(2<<20), v, "nothing applied on conversion failure")
	assert.Equal(t, int64(2), ctrl.GetConfig()["growth_factor"])

	err = ctrl.SetConfig(map[string]any{"growth_factor": 1000})
	assert.ErrorIs(t, err, api.ErrInvalidArgument)

	require.NoError(t, ctrl.SetConfig(map[string]any{"growth_factor": 4.0}))
	assert.Equal(t, int64(4), ctrl.GetConfig()["growth_factor"])
}

func TestControlAdapterRejectsWholeUpdate(t *testing.T) {
	p := newPool(t)
	ctrl := adapters.NewControlAdapter(p)
	reloads := 0
	ctrl.OnReload(func() { reloads++ })

	err := ctrl.SetConfig(map[string]any{"granularity": 4 << 20, "growth_factor": 1000})
	require.Error(t, err)
	assert.ErrorIs(t, err, api.ErrInvalidArgument)
	v, err := p.Setting(api.ParamGranularity)
	require.NoError(t, err)
	assert.Equal(t, int64(1<<20), v)
	assert.Equal(t, int64(1<<20), ctrl.GetConfig()["granularity"])
	assert.Zero(t, reloads)
}

func TestControlAdapterValueTypes(t *testing.T) {
	p := newPool(t)
	ctrl := adapters.NewControlAdapter(p)

	for _, v := range []any{int32(3), int64(5), uint64(6), json.Number("7"), "8"} {
		require.NoError(t, ctrl.SetConfig(map[string]any{"growth_factor": v}), "%T", v)
	}
	assert.Equal(t, int64(8), ctrl.GetConfig()["growth_factor"])

	for _, v := range []any{uint64(math.MaxUint64), json.Number("1.5"), 2.5, true} {
		err := ctrl.SetConfig(map[string]any{"growth_factor": v})
		assert.ErrorIs(t, err, api.ErrInvalidArgument, "%T", v)
	}
	assert.Equal(t, int64(8), ctrl.GetConfig()["growth_factor"])
}

func TestControlAdapterStats(t *testing.T) {
	p := newPool(t)
	ctrl := adapters.NewControlAdapter(p)

	b, err := p.Malloc(100)
	require.NoError(t, err)
	defer p.Free(b)

	ctrl.RegisterDebugProbe("custom", func() any { return "ok" })
	stats := ctrl.Stats()
	assert.Positive(t, stats["pool.footprint"])
	assert.Equal(t, "ok", stats["debug.custom"])
	assert.Equal(t, p.ID(), stats["debug.pool.id"])
	assert.Equal(t, false, stats["debug.pool.locked"])
}
