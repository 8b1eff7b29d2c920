package backing_test

import (
	"testing"

	"github.com/momentics/hioload-mem/api"
	"github.com/momentics/hioload-mem/internal/backing"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapIsZeroedAndWritable(t *testing.T) {
	src := backing.New()
	b, err := src.Map(1 << 16)
	require.NoError(t, err)
	require.Len(t, b, 1<<16)
	for i := range b {
		if b[i] != 0 {
			t.Fatalf("byte %d not zero", i)
		}
	}
	b[0], b[len(b)-1] = 1, 2
	require.NoError(t, src.Unmap(b))
}

func TestMapRejectsNonPositive(t *testing.T) {
	_, err := backing.New().Map(0)
	assert.True(t, errors.Is(err, api.ErrInvalidArgument))
}

func TestLimited(t *testing.T) {
	src := backing.Limited(backing.New(), 3<<16)
	a, err := src.Map(2 << 16)
	require.NoError(t, err)
	assert.Equal(t, int64(2<<16), backing.Mapped(src))

	_, err = src.Map(2 << 16)
	require.Error(t, err)
	assert.True(t, errors.Is(err, api.ErrOutOfMemory))
	assert.Equal(t, int64(2<<16), backing.Mapped(src))

	require.NoError(t, src.Unmap(a))
	assert.Equal(t, int64(0), backing.Mapped(src))

	b, err := src.Map(3 << 16)
	require.NoError(t, err)
	require.NoError(t, src.Unmap(b))
}

func TestLimitedZeroIsUnlimited(t *testing.T) {
	src := backing.New()
	assert.Equal(t, src, backing.Limited(src, 0))
	assert.Equal(t, int64(-1), backing.Mapped(src))
}

func TestDecommitKeepsMapping(t *testing.T) {
	src := backing.New()
	b, err := src.Map(4 << 16)
	require.NoError(t, err)
	for i := range b {
		b[i] = 0xAB
	}
	_, err = src.Decommit(b[1<<16 : 3<<16])
	require.NoError(t, err)
	b[1<<16] = 7
	assert.Equal(t, byte(7), b[1<<16])
	require.NoError(t, src.Unmap(b))
}
