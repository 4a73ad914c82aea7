// Copyright 2024 The Authors (see AUTHORS file)
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package workerpool runs named jobs in parallel with bounded concurrency.
package workerpool

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// ErrStopped is the error returned when the pool is stopped.
var ErrStopped = fmt.Errorf("worker pool is stopped")

// Void is a convenience struct for jobs that do not return values.
type Void struct{}

// WorkFunc executes one job. The context is canceled when the pool stops on
// an error or when the context given to [New] is done.
type WorkFunc[T any] func(ctx context.Context) (T, error)

// Pool runs jobs in parallel. It is safe for concurrent use, but see the
// method documentation for more specific semantics.
type Pool[T any] struct {
	size int64
	sem  *semaphore.Weighted

	ctx    context.Context //nolint:containedctx // Shared by all jobs.
	cancel context.CancelFunc

	i           atomic.Int64
	results     []*result[T]
	resultsLock sync.Mutex

	stopOnError bool
	stopped     atomic.Bool
}

// result is the internal result representation. It is primarily used to
// maintain results ordering.
type result[T any] struct {
	idx    int64
	result *Result[T]
}

// Result is the outcome of one job.
type Result[T any] struct {
	Name  string
	Value T
	Error error
}

// Config is the pool configuration.
type Config struct {
	// Concurrency is the maximum number of jobs to run in parallel. Values
	// below 1 default to the number of CPUs.
	Concurrency int64

	// StopOnError stops the pool from accepting new jobs after the first
	// error and cancels the context of jobs in flight.
	StopOnError bool
}

// New creates a pool whose jobs run with a context derived from ctx. Jobs
// start in the order they are enqueued, but may finish in any order.
func New[T any](ctx context.Context, c *Config) *Pool[T] {
	if c == nil {
		c = new(Config)
	}

	concurrency := c.Concurrency
	if concurrency < 1 {
		concurrency = int64(runtime.NumCPU())
	}
	if concurrency < 1 {
		concurrency = 1
	}

	ctx, cancel := context.WithCancel(ctx)
	p := &Pool[T]{
		size:        concurrency,
		sem:         semaphore.NewWeighted(concurrency),
		ctx:         ctx,
		cancel:      cancel,
		results:     make([]*result[T], 0, concurrency),
		stopOnError: c.StopOnError,
	}
	p.i.Store(-1)
	return p
}

// Do enqueues a job called name. If every worker is busy, it blocks until one
// is free or ctx is done. It returns once the job is scheduled.
//
// It returns an error, also recorded as the job's result, when:
//
//   - The pool was stopped by [Pool.Done] or by an earlier error with
//     StopOnError. The error is [ErrStopped].
//   - ctx is done before a worker is free.
//
// Never call Do from within a job; it can deadlock.
func (p *Pool[T]) Do(ctx context.Context, name string, fn WorkFunc[T]) error {
	i := p.i.Add(1)

	if p.stopped.Load() {
		p.appendResult(i, name, *new(T), ErrStopped)
		return ErrStopped
	}

	if err := p.sem.Acquire(ctx, 1); err != nil {
		err := fmt.Errorf("failed to acquire semaphore: %w", err)
		p.appendResult(i, name, *new(T), err)
		return err
	}

	// The pool may have stopped while waiting for the semaphore.
	if p.stopped.Load() {
		p.sem.Release(1)
		p.appendResult(i, name, *new(T), ErrStopped)
		return ErrStopped
	}

	go func() {
		defer p.sem.Release(1)
		t, err := fn(p.ctx)
		if err != nil && p.stopOnError {
			p.stopped.Store(true)
			p.cancel()
		}
		p.appendResult(i, name, t, err)
	}()

	return nil
}

// Done stops the pool, waits for every job in flight and returns all results
// in the order the jobs were enqueued.
//
// The error is non-nil if ctx is done first, or if any job failed. In the
// latter case it joins every job error, each prefixed with the job name.
// Individual errors are still available on each result.
func (p *Pool[T]) Done(ctx context.Context) ([]*Result[T], error) {
	if err := p.sem.Acquire(ctx, p.size); err != nil {
		return nil, fmt.Errorf("failed to wait for jobs to finish: %w", err)
	}
	defer p.sem.Release(p.size)

	p.stopped.Store(true)
	p.cancel()

	p.resultsLock.Lock()
	defer p.resultsLock.Unlock()

	final := make([]*Result[T], len(p.results))
	for _, v := range p.results {
		final[v.idx] = v.result
	}

	var merr error
	for _, v := range final {
		if v.Error != nil {
			merr = errors.Join(merr, fmt.Errorf("%s: %w", v.Name, v.Error))
		}
	}
	return final, merr
}

func (p *Pool[T]) appendResult(i int64, name string, value T, err error) {
	p.resultsLock.Lock()
	defer p.resultsLock.Unlock()

	p.results = append(p.results, &result[T]{
		idx: i,
		result: &Result[T]{
			Name:  name,
			Value: value,
			Error: err,
		},
	})
}
