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

package pipe

import (
	"context"
	"fmt"
	"strings"
)

// Executor runs a compiled command line. argv[0] is the binary. workdir, when
// not empty, is applied before the process starts.
//
// Implementations should return an [*ExecError] when the process exits
// non-zero, and must honor ctx cancellation.
type Executor interface {
	Execute(ctx context.Context, argv []string, workdir string) (*Result, error)
}

// ExecutorFunc adapts a function to the [Executor] interface.
type ExecutorFunc func(ctx context.Context, argv []string, workdir string) (*Result, error)

// Execute calls f.
func (f ExecutorFunc) Execute(ctx context.Context, argv []string, workdir string) (*Result, error) {
	return f(ctx, argv, workdir)
}

// Result is the outcome of a finished process.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// ExecError reports a process that could not run or exited non-zero. It is
// distinct from the compilation errors in package args.
type ExecError struct {
	Argv     []string
	ExitCode int
	Stdout   string
	Stderr   string

	// Err is the underlying error, if any.
	Err error
}

func (e *ExecError) Error() string {
	var b strings.Builder
	if e.ExitCode != 0 {
		fmt.Fprintf(&b, "command %q exited non-zero (%d)", e.Argv, e.ExitCode)
	} else {
		fmt.Fprintf(&b, "command %q failed", e.Argv)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %s", e.Err)
	}
	if e.Stderr != "" {
		fmt.Fprintf(&b, "\nstderr:\n%s", e.Stderr)
	}
	return b.String()
}

func (e *ExecError) Unwrap() error {
	return e.Err
}
