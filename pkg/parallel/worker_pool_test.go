package parallel

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerPool_ExecuteFunc(t *testing.T) {
	pool := NewWorkerPool[int, int](DefaultPoolConfig().WithMetrics())

	inputs := []int{1, 2, 3, 4, 5}
	results := pool.ExecuteFunc(context.Background(), inputs, func(ctx context.Context, input int) (int, error) {
		return input * 2, nil
	})

	require.Len(t, results, len(inputs))
	for i, r := range results {
		assert.NoError(t, r.Error)
		assert.Equal(t, inputs[i], r.Input)
		assert.Equal(t, inputs[i]*2, r.Result)
	}

	m := pool.Metrics()
	assert.Equal(t, int64(5), m.TotalTasks)
	assert.Equal(t, int64(5), m.CompletedTasks)
	assert.Zero(t, m.FailedTasks)
}

func TestWorkerPool_Empty(t *testing.T) {
	pool := NewWorkerPool[int, int](PoolConfig{})
	assert.Nil(t, pool.ExecuteFunc(context.Background(), nil, func(ctx context.Context, input int) (int, error) {
		return input, nil
	}))
}

func TestWorkerPool_BoundedConcurrency(t *testing.T) {
	var running, peak atomic.Int32
	pool := NewWorkerPool[int, struct{}](PoolConfig{MaxWorkers: 2})

	inputs := make([]int, 10)
	pool.ExecuteFunc(context.Background(), inputs, func(ctx context.Context, _ int) (struct{}, error) {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		running.Add(-1)
		return struct{}{}, nil
	})

	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestWorkerPool_Timeout(t *testing.T) {
	pool := NewWorkerPool[int, int](PoolConfig{MaxWorkers: 1}.WithTimeout(20 * time.Millisecond))

	inputs := []int{0, 1, 2, 3}
	results := pool.ExecuteFunc(context.Background(), inputs, func(ctx context.Context, input int) (int, error) {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(time.Second):
			return input, nil
		}
	})

	require.Len(t, results, 4)
	for _, r := range results {
		assert.ErrorIs(t, r.Error, context.DeadlineExceeded)
	}
}

func TestMap(t *testing.T) {
	out, err := Map(context.Background(), []string{"a", "bb", "ccc"}, DefaultPoolConfig(),
		func(ctx context.Context, s string) (int, error) { return len(s), nil })
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, out)
}

func TestMap_FirstError(t *testing.T) {
	boom := errors.New("boom")
	var calls atomic.Int32

	_, err := Map(context.Background(), make([]int, 50), PoolConfig{MaxWorkers: 1},
		func(ctx context.Context, _ int) (int, error) {
			calls.Add(1)
			return 0, boom
		})

	assert.ErrorIs(t, err, boom)
	assert.Less(t, calls.Load(), int32(50))
}

func TestMap_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Map(ctx, []int{1, 2}, DefaultPoolConfig(), func(ctx context.Context, i int) (int, error) {
		return i, nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}
