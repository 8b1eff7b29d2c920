package arena

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassSizesIncrease(t *testing.T) {
	assert.Equal(t, uintptr(MinBlock), ClassSize(0))
	assert.Equal(t, uintptr(1024), ClassSize(smallClasses-1))
	for c := 1; c < NumClasses; c++ {
		assert.Greater(t, ClassSize(c), ClassSize(c-1), "class %d", c)
		assert.Zero(t, ClassSize(c)%Align, "class %d", c)
	}
}

func TestFloorAndCeilBracket(t *testing.T) {
	for size := uintptr(MinBlock); size < 1<<22; size += Align * 7 {
		f := FloorClass(size)
		c := CeilClass(size)
		assert.LessOrEqual(t, ClassSize(f), size)
		if f < lastClass {
			assert.Greater(t, ClassSize(f+1), size)
		}
		assert.GreaterOrEqual(t, ClassSize(c), size)
		assert.LessOrEqual(t, c-f, 1)
	}
}

func TestExactClassSizes(t *testing.T) {
	for c := 0; c < NumClasses; c++ {
		assert.Equal(t, c, FloorClass(ClassSize(c)))
		assert.Equal(t, c, CeilClass(ClassSize(c)))
	}
}

func TestHugeSizesUseLastClass(t *testing.T) {
	assert.Equal(t, lastClass, FloorClass(1<<40))
	assert.Equal(t, lastClass, CeilClass(1<<40))
}
