package pool_test

import (
	"sort"
	"testing"

	"github.com/momentics/hioload-mem/api"
	"github.com/momentics/hioload-mem/pool"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndependentComalloc(t *testing.T) {
	p := newPool(t, nil)
	sizes := []int{8, 16, 4096}
	blocks, err := p.IndependentComalloc(sizes, nil)
	require.NoError(t, err)
	require.Len(t, blocks, 3)

	type span struct{ lo, hi uintptr }
	var spans []span
	for i, b := range blocks {
		require.Len(t, b, sizes[i])
		assert.GreaterOrEqual(t, pool.Blksize(b), sizes[i])
		fill(b, byte(i+1))
		spans = append(spans, span{addr(b), addr(b) + uintptr(cap(b))})
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].lo < spans[j].lo })
	for i := 1; i < len(spans); i++ {
		assert.LessOrEqual(t, spans[i-1].hi, spans[i].lo, "blocks overlap")
	}
	for i, b := range blocks {
		assert.True(t, allEqual(b, byte(i+1)))
	}

	// Each block is freed on its own, in any order.
	p.Free(blocks[1])
	p.Free(blocks[2])
	p.Free(blocks[0])
	assert.Zero(t, p.Stats().Blocks)
}

func TestIndependentCallocZeroesAndUsesChunks(t *testing.T) {
	p := newPool(t, func(c *pool.Config) { c.ThreadCacheMax = 0 })
	dirty, err := p.Malloc(600)
	require.NoError(t, err)
	fill(dirty, 0xEE)
	p.Free(dirty)

	chunks := make([][]byte, 8)
	blocks, err := p.IndependentCalloc(5, 100, chunks)
	require.NoError(t, err)
	require.Len(t, blocks, 5)
	assert.Same(t, &chunks[0], &blocks[0], "results are stored in the caller's array")
	assert.Equal(t, addr(dirty), addr(blocks[0]))
	for _, b := range blocks {
		assert.Len(t, b, 100)
		assert.True(t, allEqual(b, 0))
	}
	for _, b := range blocks {
		p.Free(b)
	}
	// The array outlives its elements.
	assert.Len(t, chunks, 8)
}

func TestBatchIsAllOrNothing(t *testing.T) {
	p := newPool(t, func(c *pool.Config) { c.Limit = 8 << 20 })
	base := p.Stats()

	chunks := make([][]byte, 3)
	blocks, err := p.IndependentComalloc([]int{8, 16, 64 << 20}, chunks)
	require.Error(t, err)
	assert.True(t, errors.Is(err, api.ErrOutOfMemory))
	assert.Nil(t, blocks)
	for _, c := range chunks {
		assert.Nil(t, c)
	}

	s := p.Stats()
	assert.Equal(t, base.InUse, s.InUse)
	assert.Equal(t, base.Blocks, s.Blocks)

	_, err = p.IndependentComalloc([]int{8, 1 << 50}, nil)
	assert.True(t, errors.Is(err, api.ErrOutOfMemory))
	_, err = p.IndependentComalloc([]int{8, -1}, nil)
	assert.True(t, errors.Is(err, api.ErrInvalidArgument))
	_, err = p.IndependentCalloc(-1, 8, nil)
	assert.True(t, errors.Is(err, api.ErrInvalidArgument))
	assert.Equal(t, base.Blocks, p.Stats().Blocks)
}

func TestBatchUsesOneCentralRound(t *testing.T) {
	p := newPool(t, nil)
	before := p.Stats().CentralAllocs
	blocks, err := p.IndependentCalloc(64, 32, nil)
	require.NoError(t, err)
	assert.Equal(t, before+64, p.Stats().CentralAllocs)
	assert.Equal(t, int64(64), p.Stats().Blocks)
	for _, b := range blocks {
		p.Free(b)
	}
}
