package concurrency

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueFIFOAndBounds(t *testing.T) {
	q := NewLockFreeQueue[int](3)
	require.Equal(t, 4, q.Cap())
	for i := 0; i < 4; i++ {
		require.True(t, q.Enqueue(i))
	}
	assert.False(t, q.Enqueue(99))
	assert.Equal(t, 4, q.Len())
	for i := 0; i < 4; i++ {
		v, ok := q.Dequeue()
		require.True(t, ok)
		assert.Equal(t, i, v)
	}
	_, ok := q.Dequeue()
	assert.False(t, ok)
}

func TestQueueCapacityIsBounded(t *testing.T) {
	q := NewLockFreeQueue[int](int(^uint(0) >> 1))
	assert.Equal(t, MaxQueueCapacity, q.Cap())
	assert.Equal(t, 2, NewLockFreeQueue[int](0).Cap())
}

func TestQueueConcurrent(t *testing.T) {
	const producers, perProducer = 8, 2000
	q := NewLockFreeQueue[int](64)
	var wg sync.WaitGroup
	var mu sync.Mutex
	seen := make(map[int]bool)
	done := make(chan struct{})

	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				for !q.Enqueue(p*perProducer + i) {
				}
			}
		}(p)
	}
	var cwg sync.WaitGroup
	for c := 0; c < 4; c++ {
		cwg.Add(1)
		go func() {
			defer cwg.Done()
			for {
				v, ok := q.Dequeue()
				if ok {
					mu.Lock()
					seen[v] = true
					mu.Unlock()
					continue
				}
				select {
				case <-done:
					if q.Len() == 0 {
						return
					}
				default:
				}
			}
		}()
	}
	wg.Wait()
	close(done)
	cwg.Wait()
	assert.Len(t, seen, producers*perProducer)
}

func TestSafetyCap(t *testing.T) {
	c := SafetyCap()
	assert.GreaterOrEqual(t, c, 16)
	assert.LessOrEqual(t, c, MaxThreadCaches)
}
