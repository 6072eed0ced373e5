package chunkload

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConcurrencyLimit(t *testing.T) {
	c := NewCoordinator[string](Config{MaxConcurrentLoads: 2, ReloadLoaded: true}, nil)

	var active, maxActive int32

	var wg sync.WaitGroup

	for _, id := range []string{"c0", "c1", "c2"} {
		wg.Add(1)

		go func(id string) {
			defer wg.Done()

			_, err := c.LoadChunk(id, func() (string, error) {
				n := atomic.AddInt32(&active, 1)

				for {
					old := atomic.LoadInt32(&maxActive)
					if n <= old || atomic.CompareAndSwapInt32(&maxActive, old, n) {
						break
					}
				}

				time.Sleep(time.Millisecond * 50)
				atomic.AddInt32(&active, -1)

				return id, nil
			})
			assert.Nil(t, err)
		}(id)
	}

	wg.Wait()

	assert.LessOrEqual(t, atomic.LoadInt32(&maxActive), int32(2))

	for _, id := range []string{"c0", "c1", "c2"} {
		assert.True(t, c.IsLoaded(id))
	}

	status := c.GetStatus()
	assert.Equal(t, 3, status.Loaded)
	assert.Equal(t, 0, status.Active)
	assert.Equal(t, 0, status.Queued)
}

func TestInFlightDeduplication(t *testing.T) {
	c := NewCoordinator[int](Config{MaxConcurrentLoads: 4, ReloadLoaded: true}, nil)

	var calls int32

	began := make(chan struct{})

	var wg sync.WaitGroup

	results := make([]int, 3)

	for idx := 0; idx < 3; idx++ {
		wg.Add(1)

		go func(idx int) {
			defer wg.Done()

			v, err := c.LoadChunk("same", func() (int, error) {
				close(began)
				atomic.AddInt32(&calls, 1)
				time.Sleep(time.Millisecond * 50)

				return 42, nil
			})
			assert.Nil(t, err)

			results[idx] = v
		}(idx)

		if idx == 0 {
			<-began
		}
	}

	wg.Wait()

	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
	assert.Equal(t, []int{42, 42, 42}, results)
}

func TestReloadLoaded(t *testing.T) {
	c := NewCoordinator[int](Config{MaxConcurrentLoads: 2, ReloadLoaded: true}, nil)

	var calls int32

	loader := func() (int, error) {
		return int(atomic.AddInt32(&calls, 1)), nil
	}

	v, err := c.LoadChunk("c", loader)
	require.Nil(t, err)
	assert.Equal(t, 1, v)

	// completed ids still re-invoke the loader in reload mode
	v, err = c.LoadChunk("c", loader)
	require.Nil(t, err)
	assert.Equal(t, 2, v)
}

func TestMemoize(t *testing.T) {
	c := NewCoordinator[int](Config{MaxConcurrentLoads: 2, ReloadLoaded: false}, nil)

	var calls int32

	loader := func() (int, error) {
		return int(atomic.AddInt32(&calls, 1)), nil
	}

	v, err := c.LoadChunk("c", loader)
	require.Nil(t, err)
	assert.Equal(t, 1, v)

	v, err = c.LoadChunk("c", loader)
	require.Nil(t, err)
	assert.Equal(t, 1, v)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestLoadErrorNotMarkedLoaded(t *testing.T) {
	c := NewCoordinator[int](Config{MaxConcurrentLoads: 2, ReloadLoaded: false}, nil)

	_, err := c.LoadChunk("bad", func() (int, error) {
		return 0, assert.AnError
	})
	assert.NotNil(t, err)
	assert.False(t, c.IsLoaded("bad"))

	v, err := c.LoadChunk("bad", func() (int, error) {
		return 7, nil
	})
	require.Nil(t, err)
	assert.Equal(t, 7, v)
}

func TestReset(t *testing.T) {
	c := NewCoordinator[int](Config{MaxConcurrentLoads: 2}, nil)

	_, err := c.LoadChunk("c", func() (int, error) { return 1, nil })
	require.Nil(t, err)
	require.True(t, c.IsLoaded("c"))

	c.Reset()
	assert.False(t, c.IsLoaded("c"))
	assert.Equal(t, 0, c.GetStatus().Loaded)
}
