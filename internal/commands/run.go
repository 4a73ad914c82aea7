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

package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"

	"github.com/KernelPryanic/dagger-utilities-library/cli"
	"github.com/KernelPryanic/dagger-utilities-library/container"
	"github.com/KernelPryanic/dagger-utilities-library/logging"
	"github.com/KernelPryanic/dagger-utilities-library/pipe"
	"github.com/KernelPryanic/dagger-utilities-library/pipeline"
	"github.com/KernelPryanic/dagger-utilities-library/run"
	"github.com/KernelPryanic/dagger-utilities-library/timeutil"
	"github.com/KernelPryanic/dagger-utilities-library/tools"
)

var _ cli.Command = (*RunCommand)(nil)

// RunCommand runs a pipeline file.
type RunCommand struct {
	cli.BaseCommand

	logger *slog.Logger

	// testExecutor, if set, replaces the configured executor.
	testExecutor pipe.Executor

	flagConfig      string
	flagExecutor    string
	flagImage       string
	flagWorkdir     string
	flagConcurrency int64
	flagTimeout     time.Duration
	flagRetryBase   time.Duration
	flagDryRun      bool
	flagMounts      []string
	flagEnv         []string
}

func (c *RunCommand) Desc() string {
	return "Run a pipeline"
}

func (c *RunCommand) Help() string {
	return `
Usage: {{ COMMAND }} [options] FILE

  Compiles the pipeline in FILE and runs it. Stages run one after another and
  the steps of a stage run concurrently. Settings are read from the -config
  file, then from DUL_ environment variables, then from flags.

` + c.Flags().Help()
}

func (c *RunCommand) PredictArgs() complete.Predictor {
	return predict.Files("*.y*ml")
}

func (c *RunCommand) Flags() *cli.FlagSet {
	set := c.NewFlagSet()

	f := set.NewSection("RUN OPTIONS")
	f.StringVar(&cli.StringVar{
		Name:    "config",
		Aliases: []string{"c"},
		Example: "dul.yaml",
		Predict: predict.Files("*.y*ml"),
		Target:  &c.flagConfig,
		Usage:   "Path to a YAML file with run settings.",
	})
	f.EnumVar(&cli.EnumVar{
		Name:    "executor",
		Aliases: []string{"e"},
		Values:  pipeline.Executors,
		Target:  &c.flagExecutor,
		Usage:   "Where steps are executed.",
	})
	f.StringVar(&cli.StringVar{
		Name:    "workdir",
		Example: "/src",
		Predict: predict.Dirs("*"),
		Target:  &c.flagWorkdir,
		Usage:   "Working directory of steps that do not set one.",
	})
	f.Int64Var(&cli.Int64Var{
		Name:    "concurrency",
		Example: "4",
		Target:  &c.flagConcurrency,
		Usage:   "Maximum number of steps of a stage running at once.",
	})
	f.DurationVar(&cli.DurationVar{
		Name:    "timeout",
		Example: "30m",
		Target:  &c.flagTimeout,
		Usage:   "Maximum duration of the whole pipeline.",
	})
	f.DurationVar(&cli.DurationVar{
		Name:    "retry-base",
		Example: "5s",
		Target:  &c.flagRetryBase,
		Usage:   "First delay between retries of a failed step. Later delays double.",
	})
	f.BoolVar(&cli.BoolVar{
		Name:   "dry-run",
		Target: &c.flagDryRun,
		Usage:  "Print the commands instead of executing them.",
	})

	f = set.NewSection("EXECUTION OPTIONS")
	f.StringVar(&cli.StringVar{
		Name:    "image",
		Example: "alpine:3.19",
		Target:  &c.flagImage,
		Usage:   "Image of the container executor.",
	})
	f.StringSliceVar(&cli.StringSliceVar{
		Name:    "mount",
		Example: "/host/src:/src",
		Target:  &c.flagMounts,
		Usage:   "Host path to mount into the container, as HOST:CONTAINER. Repeatable.",
	})
	f.StringSliceVar(&cli.StringSliceVar{
		Name:    "env",
		Example: "TF_IN_AUTOMATION=1",
		Target:  &c.flagEnv,
		Usage:   "Environment variable for every step, as KEY=VALUE. Repeatable.",
	})

	set.NewSection("GENERAL OPTIONS").LogLevelVar(&cli.LogLevelVar{
		Logger: c.logger,
	})

	set.AfterParse(func(existingErr error) error {
		if existingErr != nil {
			return nil
		}
		if got := len(set.Args()); got != 1 {
			return fmt.Errorf("expected exactly one argument, the pipeline file, got %d", got)
		}
		for _, e := range c.flagEnv {
			if !strings.Contains(e, "=") {
				return fmt.Errorf("-env %q must be KEY=VALUE", e)
			}
		}
		return nil
	})

	return set
}

func (c *RunCommand) Run(ctx context.Context, args []string) error {
	c.logger = logging.FromContext(ctx)

	f := c.Flags()
	if err := f.Parse(args); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}

	cfg, err := c.config(ctx)
	if err != nil {
		return err
	}

	p, err := pipeline.ParseFile(f.Arg(0))
	if err != nil {
		return err //nolint:wrapcheck // Already names the file.
	}
	cfg.Apply(p)

	plan, err := p.Compile(tools.Registry())
	if err != nil {
		return fmt.Errorf("failed to compile pipeline: %w", err)
	}

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	exec, closeFn, err := c.executor(ctx, cfg, p)
	if err != nil {
		return err
	}
	defer closeFn()

	start := time.Now()
	results, err := plan.Run(ctx, exec, pipeline.WithRetryBase(cfg.RetryBase))
	c.summarize(ctx, results)
	if err != nil {
		return fmt.Errorf("pipeline failed after %s: %w", timeutil.HumanDuration(time.Since(start)), err)
	}
	return nil
}

// config merges the config file, the environment and the flags.
func (c *RunCommand) config(ctx context.Context) (*pipeline.Config, error) {
	cfg, err := pipeline.LoadConfig(ctx, c.flagConfig, envLookuper(c.LookupEnv))
	if err != nil {
		return nil, err //nolint:wrapcheck // Want passthrough
	}

	if c.flagExecutor != "" {
		cfg.Executor = c.flagExecutor
	}
	if c.flagImage != "" {
		cfg.Image = c.flagImage
	}
	if c.flagWorkdir != "" {
		cfg.Workdir = c.flagWorkdir
	}
	if c.flagConcurrency != 0 {
		cfg.Concurrency = c.flagConcurrency
	}
	if c.flagTimeout != 0 {
		cfg.Timeout = c.flagTimeout
	}
	if c.flagRetryBase != 0 {
		cfg.RetryBase = c.flagRetryBase
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	return cfg, nil
}

// executor returns the executor for cfg and a function releasing it.
func (c *RunCommand) executor(ctx context.Context, cfg *pipeline.Config, p *pipeline.Pipeline) (pipe.Executor, func(), error) {
	noop := func() {}

	switch {
	case c.testExecutor != nil:
		return c.testExecutor, noop, nil
	case c.flagDryRun:
		return pipe.ExecutorFunc(func(_ context.Context, argv []string, workdir string) (*pipe.Result, error) {
			if workdir != "" {
				fmt.Fprintf(c.Stdout(), "(cd %s && %s)\n", pipe.Quote([]string{workdir}), pipe.Quote(argv))
			} else {
				fmt.Fprintln(c.Stdout(), pipe.Quote(argv))
			}
			return &pipe.Result{}, nil
		}), noop, nil
	}

	switch cfg.Executor {
	case pipeline.ExecutorContainer:
		if p.Image == "" {
			return nil, nil, fmt.Errorf("the container executor requires an image, set one with -image or in the pipeline")
		}
		opts := []container.Option{
			container.WithWorkdir(p.Workdir),
			container.WithMounts(c.flagMounts...),
			container.WithEnv(c.flagEnv...),
		}
		if cfg.Timeout > 0 {
			opts = append(opts, container.WithKillAfter(cfg.Timeout+time.Minute))
		}
		e, err := container.Start(ctx, p.Image, opts...)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to start container: %w", err)
		}
		return e, func() {
			if err := e.Close(); err != nil {
				c.logger.WarnContext(ctx, "failed to remove container", "error", err)
			}
		}, nil
	default:
		return &run.Executor{
			Env:    c.flagEnv,
			Stdout: c.Stdout(),
			Stderr: c.Stderr(),
		}, noop, nil
	}
}

func (c *RunCommand) summarize(ctx context.Context, results []*pipeline.JobResult) {
	for _, r := range results {
		if r.Err != nil {
			c.logger.ErrorContext(ctx, "job failed",
				"stage", r.Stage,
				"job", r.Job,
				"error", r.Err)
			continue
		}
		c.logger.InfoContext(ctx, "job succeeded",
			"stage", r.Stage,
			"job", r.Job)
	}
}
