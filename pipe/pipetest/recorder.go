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

// Package pipetest provides test doubles for the pipe package.
package pipetest

import (
	"context"
	"slices"
	"sync"

	"github.com/KernelPryanic/dagger-utilities-library/pipe"
)

var _ pipe.Executor = (*Recorder)(nil)

// Call is one invocation seen by a [Recorder].
type Call struct {
	Argv    []string
	Workdir string
}

// Recorder is a [pipe.Executor] that records every call instead of running
// anything. Respond, if set, decides the outcome of each call; otherwise every
// call succeeds with an empty result. It is safe for concurrent use.
type Recorder struct {
	Respond func(argv []string, workdir string) (*pipe.Result, error)

	mu    sync.Mutex
	calls []Call
}

// Execute records the call.
func (r *Recorder) Execute(ctx context.Context, argv []string, workdir string) (*pipe.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err //nolint:wrapcheck // Want passthrough
	}

	r.mu.Lock()
	r.calls = append(r.calls, Call{Argv: slices.Clone(argv), Workdir: workdir})
	r.mu.Unlock()

	if r.Respond != nil {
		return r.Respond(argv, workdir)
	}
	return &pipe.Result{}, nil
}

// Calls returns the recorded calls in the order they were made.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.calls)
}

// Argvs returns the argv of every recorded call.
func (r *Recorder) Argvs() [][]string {
	calls := r.Calls()
	out := make([][]string, 0, len(calls))
	for _, c := range calls {
		out = append(out, c.Argv)
	}
	return out
}
