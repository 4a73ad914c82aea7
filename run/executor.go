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

package run

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/KernelPryanic/dagger-utilities-library/pipe"
)

var _ pipe.Executor = (*Executor)(nil)

// Executor runs commands as local processes. The zero value inherits the
// environment and only captures output.
type Executor struct {
	// Env is added to the inherited environment, as KEY=VALUE pairs.
	Env []string

	// AllowedEnv and DeniedEnv filter the inherited environment with glob
	// patterns. See [WithEnvFilter].
	AllowedEnv []string
	DeniedEnv  []string

	// Stdout and Stderr, when set, receive the process output as it is
	// produced, in addition to it being captured in the result.
	Stdout io.Writer
	Stderr io.Writer

	// Timeout bounds each command. Zero means [DefaultRunTimeout] unless the
	// context already has a deadline.
	Timeout time.Duration
}

// Execute runs argv in workdir. A process that cannot start or exits non-zero
// yields a [*pipe.ExecError].
func (e *Executor) Execute(ctx context.Context, argv []string, workdir string) (*pipe.Result, error) {
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	opts := []Option{
		WithWorkdir(workdir),
		WithOutput(tee(&stdout, e.Stdout), tee(&stderr, e.Stderr)),
		WithEnv(e.Env...),
	}
	if len(e.AllowedEnv) > 0 || len(e.DeniedEnv) > 0 {
		opts = append(opts, WithEnvFilter(e.AllowedEnv, e.DeniedEnv))
	}

	code, err := Start(ctx, argv, opts...)
	res := &pipe.Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: code,
	}
	if err != nil || code != 0 {
		return res, &pipe.ExecError{
			Argv:     argv,
			ExitCode: code,
			Stdout:   res.Stdout,
			Stderr:   res.Stderr,
			Err:      err,
		}
	}
	return res, nil
}

func tee(buf *bytes.Buffer, w io.Writer) io.Writer {
	if w == nil {
		return buf
	}
	return io.MultiWriter(buf, w)
}
