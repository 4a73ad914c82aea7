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

// Package container executes commands inside an ephemeral Docker container.
//
// [Start] pulls an image, starts a container that idles until it is closed,
// and returns an [Executor] that runs each command with "docker exec". Docker
// must be reachable through the usual environment (DOCKER_HOST or the default
// socket).
package container

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"

	dockertest "github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"github.com/KernelPryanic/dagger-utilities-library/logging"
	"github.com/KernelPryanic/dagger-utilities-library/pipe"
)

var _ pipe.Executor = (*Executor)(nil)

// Executor runs commands in a running container. It is safe for concurrent
// use; each command is a separate exec.
type Executor struct {
	pool     *dockertest.Pool
	resource *dockertest.Resource
	conf     *config
	image    string

	closeOnce sync.Once
	closeErr  error
}

// Start starts a container from image. The returned Executor must be closed,
// which removes the container.
func Start(ctx context.Context, image string, opts ...Option) (*Executor, error) {
	logger := logging.FromContext(ctx).With("image", image)
	conf := buildConfig(opts...)

	repo, tag := SplitImage(image)
	if repo == "" {
		return nil, fmt.Errorf("container: invalid image %q", image)
	}

	pool, err := dockertest.NewPool(conf.endpoint)
	if err != nil {
		return nil, fmt.Errorf("dockertest.NewPool(): %w", err)
	}

	logger.DebugContext(ctx, "starting container")
	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: repo,
		Tag:        tag,
		Env:        conf.env,
		Mounts:     conf.mounts,
		WorkingDir: conf.workdir,
		User:       conf.user,
		Entrypoint: []string{"tail"},
		Cmd:        []string{"-f", "/dev/null"},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		return nil, fmt.Errorf("pool.RunWithOptions() failed starting container: %w%s", err, startHint(err, tag))
	}

	e := &Executor{
		pool:     pool,
		resource: resource,
		conf:     conf,
		image:    image,
	}
	if err := resource.Expire(uint(conf.killAfter.Seconds())); err != nil {
		return nil, closeOnError(fmt.Errorf("resource.Expire(): %w", err), e)
	}

	logger.InfoContext(ctx, "container started",
		"container_id", e.ID())
	return e, nil
}

// ID returns the container ID.
func (e *Executor) ID() string {
	if e.resource == nil || e.resource.Container == nil {
		return ""
	}
	return e.resource.Container.ID
}

// Image returns the image the container was started from.
func (e *Executor) Image() string {
	return e.image
}

// Execute runs argv in the container. A non-empty workdir is entered with a
// POSIX shell before the command is exec'd, so the image must provide "sh".
//
// Docker exec cannot be interrupted once started: when ctx is done, Execute
// returns immediately and the command keeps running until the container is
// closed.
func (e *Executor) Execute(ctx context.Context, argv []string, workdir string) (*pipe.Result, error) {
	if len(argv) == 0 {
		return nil, fmt.Errorf("container: must provide at least one argument (the command)")
	}
	if err := ctx.Err(); err != nil {
		return nil, &pipe.ExecError{Argv: argv, ExitCode: -1, Err: err}
	}

	logger := logging.FromContext(ctx)
	cmd := wrapWorkdir(argv, workdir)
	logger.DebugContext(ctx, "docker exec",
		"container_id", e.ID(),
		"cmd", cmd)

	type outcome struct {
		code int
		err  error
	}
	var stdout, stderr syncBuffer
	done := make(chan outcome, 1)
	go func() {
		code, err := e.resource.Exec(cmd, dockertest.ExecOptions{
			Env:    e.conf.env,
			StdOut: &stdout,
			StdErr: &stderr,
		})
		done <- outcome{code: code, err: err}
	}()

	var out outcome
	select {
	case <-ctx.Done():
		out = outcome{code: -1, err: ctx.Err()}
	case out = <-done:
	}

	res := &pipe.Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: out.code,
	}
	if out.err != nil || out.code != 0 {
		if out.err != nil && out.code == 0 {
			res.ExitCode = -1
		}
		return res, &pipe.ExecError{
			Argv:     argv,
			ExitCode: res.ExitCode,
			Stdout:   res.Stdout,
			Stderr:   res.Stderr,
			Err:      out.err,
		}
	}
	return res, nil
}

// Close stops and removes the container. It is safe to call more than once.
func (e *Executor) Close() error {
	e.closeOnce.Do(func() {
		if err := e.pool.Purge(e.resource); err != nil {
			e.closeErr = fmt.Errorf("failed stopping docker container: %w", err)
		}
	})
	return e.closeErr
}

// SplitImage splits an image reference into repository and tag. The tag
// defaults to "latest"; digests are kept on the repository side.
func SplitImage(image string) (string, string) {
	image = strings.TrimSpace(image)
	if image == "" {
		return "", ""
	}
	if strings.Contains(image, "@") {
		return image, ""
	}

	// A colon after the last slash is a tag, anything before it is a registry
	// port.
	slash := strings.LastIndex(image, "/")
	if i := strings.LastIndex(image, ":"); i > slash {
		return image[:i], image[i+1:]
	}
	return image, "latest"
}

// wrapWorkdir returns the command to exec for argv in workdir.
func wrapWorkdir(argv []string, workdir string) []string {
	if workdir == "" {
		return argv
	}
	out := make([]string, 0, len(argv)+5)
	out = append(out, "sh", "-c", `cd "$1" && shift && exec "$@"`, "sh", workdir)
	return append(out, argv...)
}

func startHint(err error, tag string) string {
	switch msg := err.Error(); {
	case strings.Contains(msg, "no such file"):
		return ". Is docker installed and running?"
	case strings.Contains(msg, "permission denied"):
		return `. Add your user to the "docker" group to create containers without sudo`
	case strings.Contains(msg, "404"):
		return fmt.Sprintf(". Probably the requested tag %q does not exist as a Docker image", tag)
	default:
		return ""
	}
}

func closeOnError(err error, e *Executor) error {
	if cerr := e.Close(); cerr != nil {
		return fmt.Errorf("%w (cleanup: %v)", err, cerr) //nolint:errorlint // Primary error wins
	}
	return err
}

// syncBuffer is a bytes.Buffer that can be read while docker writes to it.
type syncBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Write(p) //nolint:wrapcheck // Want passthrough
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.String()
}
