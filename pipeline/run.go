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

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/KernelPryanic/dagger-utilities-library/logging"
	"github.com/KernelPryanic/dagger-utilities-library/pipe"
	"github.com/KernelPryanic/dagger-utilities-library/timeutil"
	"github.com/KernelPryanic/dagger-utilities-library/workerpool"
)

// DefaultRetryBase is the first delay between retries of a failed step. Each
// later delay doubles.
const DefaultRetryBase = time.Second

// This file implements the "functional options" pattern.

type runConfig struct {
	concurrency int64
	retryBase   time.Duration
}

// RunOption sets a configuration option for [Plan.Run].
type RunOption func(*runConfig) *runConfig

// WithConcurrency overrides the concurrency of the plan.
func WithConcurrency(n int64) RunOption {
	return func(c *runConfig) *runConfig {
		c.concurrency = n
		return c
	}
}

// WithRetryBase overrides [DefaultRetryBase]. Non-positive values are ignored.
func WithRetryBase(d time.Duration) RunOption {
	return func(c *runConfig) *runConfig {
		if d > 0 {
			c.retryBase = d
		}
		return c
	}
}

// JobResult is the outcome of one job.
type JobResult struct {
	Stage  string
	Job    string
	Result *pipe.Result
	Err    error
}

// Run executes the plan with exec. Stages run in order and the jobs of a stage
// run concurrently. A job whose command fails to execute is retried with
// exponential backoff up to its retry count; other errors are not retried.
//
// The first stage with a failed job stops the pipeline once all its jobs have
// finished. The returned error joins every job error of that stage. The
// results of every job started so far are returned either way.
func (p *Plan) Run(ctx context.Context, exec pipe.Executor, opts ...RunOption) ([]*JobResult, error) {
	conf := &runConfig{
		concurrency: p.Concurrency,
		retryBase:   DefaultRetryBase,
	}
	for _, opt := range opts {
		conf = opt(conf)
	}

	logger := logging.FromContext(ctx)
	start := time.Now()

	var results []*JobResult
	for _, st := range p.Stages {
		stageResults, err := runStage(ctx, exec, st, conf)
		results = append(results, stageResults...)
		if err != nil {
			logger.ErrorContext(ctx, "pipeline failed",
				"stage", st.Name,
				"duration", timeutil.HumanDuration(time.Since(start)))
			return results, fmt.Errorf("stage %q: %w", st.Name, err)
		}
	}

	logger.InfoContext(ctx, "pipeline finished",
		"stages", len(p.Stages),
		"duration", timeutil.HumanDuration(time.Since(start)))
	return results, nil
}

func runStage(ctx context.Context, exec pipe.Executor, st *PlannedStage, conf *runConfig) ([]*JobResult, error) {
	logger := logging.FromContext(ctx).With("stage", st.Name)
	logger.InfoContext(ctx, "stage started",
		"jobs", len(st.Jobs))
	start := time.Now()

	pool := workerpool.New[*pipe.Result](ctx, &workerpool.Config{
		Concurrency: conf.concurrency,
	})
	for _, job := range st.Jobs {
		jobLogger := logger.With("job", job.Name)
		if err := pool.Do(ctx, job.Name, func(ctx context.Context) (*pipe.Result, error) {
			return runJob(logging.WithLogger(ctx, jobLogger), exec, job, conf.retryBase)
		}); err != nil {
			// The failure is recorded as the job's result.
			break
		}
	}

	// Wait for jobs in flight even if ctx is done; they observe the
	// cancellation through the pool's context.
	poolResults, err := pool.Done(context.WithoutCancel(ctx))

	out := make([]*JobResult, 0, len(poolResults))
	for _, r := range poolResults {
		out = append(out, &JobResult{
			Stage:  st.Name,
			Job:    r.Name,
			Result: r.Value,
			Err:    r.Error,
		})
	}
	if err != nil {
		return out, err //nolint:wrapcheck // Errors already name their job.
	}

	logger.InfoContext(ctx, "stage finished",
		"duration", timeutil.HumanDuration(time.Since(start)))
	return out, nil
}

func runJob(ctx context.Context, exec pipe.Executor, job *Job, base time.Duration) (*pipe.Result, error) {
	logger := logging.FromContext(ctx)
	if len(job.Argv) == 0 {
		return nil, fmt.Errorf("job has no command")
	}
	p := pipe.New(job.Argv[0], job.Argv[1:]...)

	backoff := retry.WithMaxRetries(job.Retries, retry.NewExponential(base))

	var attempt int
	var res *pipe.Result
	if err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		r, err := p.Run(ctx, exec, job.Workdir)
		res = r
		if err == nil {
			return nil
		}

		var execErr *pipe.ExecError
		if errors.As(err, &execErr) && ctx.Err() == nil {
			if uint64(attempt) <= job.Retries {
				logger.WarnContext(ctx, "job failed; will retry",
					"attempt", attempt,
					"error", err)
			}
			return retry.RetryableError(err)
		}
		return err
	}); err != nil {
		return res, err //nolint:wrapcheck // Want passthrough
	}
	return res, nil
}
