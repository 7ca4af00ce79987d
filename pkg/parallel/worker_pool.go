// Package parallel runs independent units of work on a bounded pool of goroutines.
package parallel

import (
	"context"
	"runtime"
	"sync"
	"time"
)

// ============================================================================
// Worker Pool Configuration
// ============================================================================

// PoolConfig configures the worker pool behavior.
type PoolConfig struct {
	// MaxWorkers is the maximum number of concurrent workers.
	// Default: min(runtime.NumCPU(), 8)
	MaxWorkers int

	// TaskBufferSize is the buffer size for the task channel.
	// Default: MaxWorkers * 2
	TaskBufferSize int

	// Timeout is the maximum time for the entire operation.
	// Default: 0 (no timeout)
	Timeout time.Duration

	// CollectMetrics enables collection of execution metrics.
	CollectMetrics bool
}

// DefaultPoolConfig returns a default pool configuration.
func DefaultPoolConfig() PoolConfig {
	workers := runtime.NumCPU()
	if workers > 8 {
		workers = 8
	}
	if workers < 2 {
		workers = 2
	}
	return PoolConfig{
		MaxWorkers:     workers,
		TaskBufferSize: workers * 2,
	}
}

// WithWorkers returns a new config with the specified number of workers.
func (c PoolConfig) WithWorkers(n int) PoolConfig {
	c.MaxWorkers = n
	return c
}

// WithTimeout returns a new config with the specified timeout.
func (c PoolConfig) WithTimeout(d time.Duration) PoolConfig {
	c.Timeout = d
	return c
}

// WithMetrics returns a new config with metrics collection enabled.
func (c PoolConfig) WithMetrics() PoolConfig {
	c.CollectMetrics = true
	return c
}

// ============================================================================
// Execution Metrics
// ============================================================================

// PoolMetrics holds execution statistics.
type PoolMetrics struct {
	TotalTasks     int64
	CompletedTasks int64
	FailedTasks    int64
	TotalDuration  time.Duration
	MaxTaskTime    time.Duration
}

// ============================================================================
// Worker Pool
// ============================================================================

// TaskResult holds the result of one task.
type TaskResult[T any, R any] struct {
	Input    T
	Result   R
	Error    error
	Duration time.Duration
}

// WorkerPool runs a function over a slice of inputs.
type WorkerPool[T any, R any] struct {
	config  PoolConfig
	metrics PoolMetrics
	mu      sync.Mutex
}

// NewWorkerPool creates a new worker pool with the given configuration.
func NewWorkerPool[T any, R any](config PoolConfig) *WorkerPool[T, R] {
	if config.MaxWorkers <= 0 {
		config.MaxWorkers = DefaultPoolConfig().MaxWorkers
	}
	if config.TaskBufferSize <= 0 {
		config.TaskBufferSize = config.MaxWorkers * 2
	}
	return &WorkerPool[T, R]{config: config}
}

// ExecuteFunc runs fn for every input. Results are returned in input order.
// Inputs not started before ctx is done get ctx.Err() as their error.
func (p *WorkerPool[T, R]) ExecuteFunc(ctx context.Context, inputs []T, fn func(ctx context.Context, input T) (R, error)) []TaskResult[T, R] {
	if len(inputs) == 0 {
		return nil
	}
	start := time.Now()

	if p.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.config.Timeout)
		defer cancel()
	}

	results := make([]TaskResult[T, R], len(inputs))
	started := make([]bool, len(inputs))
	taskCh := make(chan int, p.config.TaskBufferSize)

	var wg sync.WaitGroup
	for i := 0; i < min(p.config.MaxWorkers, len(inputs)); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range taskCh {
				if ctx.Err() != nil {
					continue
				}
				started[idx] = true
				taskStart := time.Now()
				result, err := fn(ctx, inputs[idx])
				results[idx] = TaskResult[T, R]{
					Input:    inputs[idx],
					Result:   result,
					Error:    err,
					Duration: time.Since(taskStart),
				}
				if p.config.CollectMetrics {
					p.updateMetrics(results[idx].Duration, err)
				}
			}
		}()
	}

submit:
	for i := range inputs {
		select {
		case <-ctx.Done():
			break submit
		case taskCh <- i:
		}
	}
	close(taskCh)
	wg.Wait()

	for i := range results {
		if !started[i] {
			results[i] = TaskResult[T, R]{Input: inputs[i], Error: ctx.Err()}
		}
	}

	if p.config.CollectMetrics {
		p.mu.Lock()
		p.metrics.TotalDuration = time.Since(start)
		p.mu.Unlock()
	}
	return results
}

func (p *WorkerPool[T, R]) updateMetrics(duration time.Duration, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.metrics.TotalTasks++
	if err != nil {
		p.metrics.FailedTasks++
	} else {
		p.metrics.CompletedTasks++
	}
	if duration > p.metrics.MaxTaskTime {
		p.metrics.MaxTaskTime = duration
	}
}

// Metrics returns the current execution metrics.
func (p *WorkerPool[T, R]) Metrics() PoolMetrics {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.metrics
}

// ============================================================================
// Map
// ============================================================================

// Map applies fn to every input and returns the results in input order.
// The first error cancels the remaining work and is returned.
func Map[T any, R any](ctx context.Context, inputs []T, config PoolConfig, fn func(ctx context.Context, input T) (R, error)) ([]R, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var once sync.Once
	var firstErr error
	pool := NewWorkerPool[T, R](config)
	results := pool.ExecuteFunc(ctx, inputs, func(ctx context.Context, input T) (R, error) {
		r, err := fn(ctx, input)
		if err != nil {
			once.Do(func() {
				firstErr = err
				cancel()
			})
		}
		return r, err
	})

	if firstErr != nil {
		return nil, firstErr
	}
	out := make([]R, len(results))
	for i, r := range results {
		if r.Error != nil {
			return nil, r.Error
		}
		out[i] = r.Result
	}
	return out, nil
}
