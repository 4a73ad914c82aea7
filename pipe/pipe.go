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

// Package pipe accumulates the command line of one tool invocation.
//
// A [Pipe] starts from the tool name and grows as sub-commands are invoked on
// it. Each call compiles one [args.Schema] and appends the result, so calling
// two sub-commands in a row yields the tokens of the first followed by the
// tokens of the second, never interleaved. Hierarchical sub-commands (for
// example "docker login azure") are built on a [Pipe.Branch], which copies
// the parent's tokens so parent and child never share state.
//
// The first error encountered is sticky: later calls are no-ops, and
// [Pipe.Args] and [Pipe.Run] report it. This keeps fluent chains readable:
//
//	argv, err := pipe.New("apk").
//	  Append("add").
//	  Compile(addSchema, opts).
//	  Args()
package pipe

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/KernelPryanic/dagger-utilities-library/args"
	"github.com/KernelPryanic/dagger-utilities-library/logging"
	"github.com/KernelPryanic/dagger-utilities-library/timeutil"
)

// Pipe is a builder for a single command line. It is not safe for concurrent
// use; each pipeline step owns its Pipe.
type Pipe struct {
	tool   string
	tokens []string
	err    error
}

// New creates a Pipe whose first token is tool, followed by tokens.
func New(tool string, tokens ...string) *Pipe {
	p := &Pipe{
		tool:   tool,
		tokens: make([]string, 0, 1+len(tokens)),
	}
	if tool == "" {
		p.err = errors.New("pipe: tool name is required")
		return p
	}
	p.tokens = append(p.tokens, tool)
	p.tokens = append(p.tokens, tokens...)
	return p
}

// Tool returns the name of the tool this pipe invokes.
func (p *Pipe) Tool() string {
	return p.tool
}

// Append adds raw tokens.
func (p *Pipe) Append(tokens ...string) *Pipe {
	if p.err != nil {
		return p
	}
	p.tokens = append(p.tokens, tokens...)
	return p
}

// Compile compiles params against schema and appends the tokens.
func (p *Pipe) Compile(schema *args.Schema, params any) *Pipe {
	if p.err != nil {
		return p
	}
	toks, err := schema.Compile(params)
	if err != nil {
		return p.Fail(err)
	}
	p.tokens = append(p.tokens, toks...)
	return p
}

// Invoke appends cmd's tokens, params compiled against cmd's schema, and extra
// on the side cmd declares.
func (p *Pipe) Invoke(cmd *Command, params any, extra ...string) *Pipe {
	if p.err != nil {
		return p
	}
	toks, err := cmd.Compile(params, extra)
	if err != nil {
		return p.Fail(err)
	}
	p.tokens = append(p.tokens, toks...)
	return p
}

// Branch returns a new Pipe holding a copy of p's tokens followed by tokens.
// Changes to the branch never affect p, and changes to p after the branch
// never affect the branch. A failed pipe yields a failed branch.
func (p *Pipe) Branch(tokens ...string) *Pipe {
	b := &Pipe{
		tool:   p.tool,
		tokens: make([]string, 0, len(p.tokens)+len(tokens)),
		err:    p.err,
	}
	b.tokens = append(b.tokens, p.tokens...)
	b.tokens = append(b.tokens, tokens...)
	return b
}

// Fail records err unless an error was already recorded.
func (p *Pipe) Fail(err error) *Pipe {
	if p.err == nil && err != nil {
		p.err = fmt.Errorf("%s: %w", p.tool, err)
	}
	return p
}

// Err returns the first error recorded on the pipe.
func (p *Pipe) Err() error {
	return p.err
}

// Args returns a copy of the accumulated tokens, starting with the tool name.
func (p *Pipe) Args() ([]string, error) {
	if p.err != nil {
		return nil, p.err
	}
	return slices.Clone(p.tokens), nil
}

// String renders the command line with each token quoted where needed. It is
// for display only: the executors never go through a shell.
func (p *Pipe) String() string {
	return Quote(p.tokens)
}

// Run executes the pipe with exec. A non-zero exit is always reported as an
// [*ExecError], even if the executor returned no error.
func (p *Pipe) Run(ctx context.Context, exec Executor, workdir string) (*Result, error) {
	argv, err := p.Args()
	if err != nil {
		return nil, err
	}

	logger := logging.FromContext(ctx).With("tool", p.tool)
	logger.InfoContext(ctx, "executing command",
		"args", argv,
		"workdir", workdir)

	start := time.Now()
	res, err := exec.Execute(ctx, argv, workdir)
	took := timeutil.HumanDuration(time.Since(start))
	if err != nil {
		logger.ErrorContext(ctx, "command failed",
			"error", err,
			"duration", took)
		return res, err
	}
	if res == nil {
		res = &Result{}
	}
	if res.ExitCode != 0 {
		err := &ExecError{
			Argv:     argv,
			ExitCode: res.ExitCode,
			Stdout:   res.Stdout,
			Stderr:   res.Stderr,
		}
		logger.ErrorContext(ctx, "command exited non-zero",
			"exit_code", res.ExitCode,
			"duration", took)
		return res, err
	}

	logger.DebugContext(ctx, "command finished",
		"duration", took)
	return res, nil
}

// Quote joins tokens for display, quoting those that contain whitespace,
// quotes or are empty.
func Quote(tokens []string) string {
	parts := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if t == "" || strings.ContainsAny(t, " \t\n\"'\\$`") {
			t = strconv.Quote(t)
		}
		parts = append(parts, t)
	}
	return strings.Join(parts, " ")
}
