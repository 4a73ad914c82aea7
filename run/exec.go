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

// Package run executes tool command lines as local processes. [Start] is the
// low-level entrypoint configured with functional options; [Executor] adapts
// it to the pipe.Executor interface used by pipelines.
package run

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/KernelPryanic/dagger-utilities-library/logging"
)

// DefaultRunTimeout is how long commands wait if the context doesn't have a
// deadline. Builds and terraform applies routinely take minutes.
const DefaultRunTimeout = 30 * time.Minute

// DefaultWaitDelay is how long after context cancellation a process is killed
// if it has not exited. See exec.Cmd.WaitDelay.
const DefaultWaitDelay = time.Second

// Option configures a process started by [Start].
type Option func(c *procConfig) *procConfig

type procConfig struct {
	workdir   string
	stdin     io.Reader
	stdout    io.Writer
	stderr    io.Writer
	waitDelay time.Duration

	allowEnv []string
	denyEnv  []string
	extraEnv []string
}

// WithWorkdir runs the process in dir. Empty means the current directory.
func WithWorkdir(dir string) Option {
	return func(c *procConfig) *procConfig {
		c.workdir = dir
		return c
	}
}

// WithStdin connects r to the standard input of the process.
func WithStdin(r io.Reader) Option {
	return func(c *procConfig) *procConfig {
		c.stdin = r
		return c
	}
}

// WithOutput directs the standard output and error of the process. A nil
// writer discards that stream.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(c *procConfig) *procConfig {
		c.stdout = stdout
		c.stderr = stderr
		return c
	}
}

// WithEnvFilter filters the inherited environment with glob patterns. Keys
// must match one of allow, if any are given, and none of deny.
func WithEnvFilter(allow, deny []string) Option {
	return func(c *procConfig) *procConfig {
		c.allowEnv = allow
		c.denyEnv = deny
		return c
	}
}

// WithEnv adds KEY=VALUE pairs after the inherited environment, overriding
// inherited keys. It can be given more than once.
func WithEnv(vars ...string) Option {
	return func(c *procConfig) *procConfig {
		c.extraEnv = append(c.extraEnv, vars...)
		return c
	}
}

// WithWaitDelay sets the grace period between context cancellation and the
// process being killed. Non-positive values are ignored.
func WithWaitDelay(d time.Duration) Option {
	return func(c *procConfig) *procConfig {
		if d > 0 {
			c.waitDelay = d
		}
		return c
	}
}

// Start runs argv to completion and returns its exit code. A process that
// exits non-zero is not an error; the error is set only when the process
// could not be started or was killed because ctx ended. The code is -1 when
// no exit status is available.
//
// If ctx has no deadline, [DefaultRunTimeout] is applied. No shell is
// involved unless argv[0] is one.
func Start(ctx context.Context, argv []string, opts ...Option) (int, error) {
	logger := logging.FromContext(ctx)

	if len(argv) == 0 {
		return -1, errors.New("no command to run")
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultRunTimeout)
		defer cancel()
	}

	cfg := &procConfig{waitDelay: DefaultWaitDelay}
	for _, opt := range opts {
		cfg = opt(cfg)
	}

	// #nosec G204 -- Running tool command lines is the purpose of this package.
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = cfg.workdir
	cmd.Stdin = cfg.stdin
	cmd.Stdout = cfg.stdout
	cmd.Stderr = cfg.stderr
	cmd.WaitDelay = cfg.waitDelay
	if len(cfg.allowEnv) > 0 || len(cfg.denyEnv) > 0 || len(cfg.extraEnv) > 0 {
		cmd.Env = environ(os.Environ(), cfg.allowEnv, cfg.denyEnv, cfg.extraEnv)
	}

	logger.DebugContext(ctx, "starting process",
		"argv", argv,
		"workdir", cfg.workdir,
		"custom_env", cmd.Env != nil)

	err := cmd.Run()
	code := -1
	if cmd.ProcessState != nil {
		code = cmd.ProcessState.ExitCode()
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		logger.DebugContext(ctx, "process exited", "exit_code", code)
		return code, nil
	case errors.As(err, &exitErr) && ctx.Err() == nil:
		logger.DebugContext(ctx, "process exited non-zero", "exit_code", code)
		return code, nil
	case ctx.Err() != nil:
		return code, fmt.Errorf("process killed: %w", ctx.Err())
	default:
		return code, fmt.Errorf("failed to run %q: %w", argv[0], err)
	}
}

// environ builds the environment of a child process. The extra pairs are
// appended after filtering, so they always win.
func environ(inherited, allow, deny, extra []string) []string {
	out := make([]string, 0, len(inherited)+len(extra))
	for _, kv := range inherited {
		key, _, _ := strings.Cut(kv, "=")
		if len(allow) > 0 && !globMatch(key, allow) {
			continue
		}
		if globMatch(key, deny) {
			continue
		}
		out = append(out, kv)
	}
	return append(out, extra...)
}

func globMatch(s string, patterns []string) bool {
	for _, p := range patterns {
		if p == "*" {
			return true
		}
		if ok, _ := filepath.Match(p, s); ok {
			return true
		}
	}
	return false
}
