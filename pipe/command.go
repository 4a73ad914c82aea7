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
	"fmt"
	"reflect"
	"slices"

	"github.com/KernelPryanic/dagger-utilities-library/args"
)

// Placement is where a command puts caller-supplied extra arguments relative
// to its compiled flags.
type Placement int

const (
	// ExtraAfter appends extra arguments after the compiled flags.
	ExtraAfter Placement = iota

	// ExtraBefore inserts extra arguments between the command tokens and the
	// compiled flags.
	ExtraBefore
)

func (p Placement) String() string {
	switch p {
	case ExtraAfter:
		return "after"
	case ExtraBefore:
		return "before"
	default:
		return "Placement(" + fmt.Sprint(int(p)) + ")"
	}
}

// Command describes one sub-command of a tool.
type Command struct {
	// Name identifies the command in pipeline files and help output.
	Name string

	// Tokens are emitted when the command is invoked. A nil slice means
	// []string{Name}; an empty one means the command only contributes flags.
	Tokens []string

	// Help is a one-line description.
	Help string

	// Schema declares the command's parameters. A nil schema accepts none.
	Schema *args.Schema

	// Check, if set, validates parameters beyond what the schema expresses,
	// such as "one of these two is required". It runs before compilation.
	Check func(vals args.Values) error

	// Extra is the placement of extra arguments.
	Extra Placement

	// Commands are nested sub-commands reachable only after this one, such as
	// "azure" after "login".
	Commands []*Command
}

// Argv returns the tokens emitted for the command itself.
func (c *Command) Argv() []string {
	if c.Tokens != nil {
		return slices.Clone(c.Tokens)
	}
	return []string{c.Name}
}

// Lookup finds a nested sub-command by name.
func (c *Command) Lookup(name string) (*Command, bool) {
	return lookup(c.Commands, name)
}

// Compile returns the command tokens followed by the compiled params, with
// extra placed according to c.Extra. Extra arguments carried by params (see
// [Extra]) come before extra.
func (c *Command) Compile(params any, extra []string) ([]string, error) {
	vals, err := args.Bag(params)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.Name, err)
	}
	if c.Check != nil {
		if err := c.Check(vals); err != nil {
			return nil, fmt.Errorf("%s: %w", c.Name, err)
		}
	}
	compiled, err := c.Schema.Process(vals)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.Name, err)
	}

	return append(c.Argv(), c.Extra.place(compiled, withExtra(params, extra))...), nil
}

// place orders compiled flags and extra arguments.
func (p Placement) place(compiled, extra []string) []string {
	out := make([]string, 0, len(compiled)+len(extra))
	if p == ExtraBefore {
		out = append(out, extra...)
		return append(out, compiled...)
	}
	out = append(out, compiled...)
	return append(out, extra...)
}

// Tool describes a command-line tool: its top-level options and the
// sub-commands it accepts.
type Tool struct {
	// Name identifies the tool in pipeline files and help output.
	Name string

	// Binary is the first token of every invocation. Defaults to Name.
	Binary string

	// Help is a one-line description.
	Help string

	// Schema declares the tool's global options, emitted right after Name.
	Schema *args.Schema

	// Extra is the placement of extra arguments passed with the global options.
	Extra Placement

	// Commands are the top-level sub-commands.
	Commands []*Command
}

// Lookup finds a top-level sub-command by name.
func (t *Tool) Lookup(name string) (*Command, bool) {
	return lookup(t.Commands, name)
}

// Bin returns the binary the tool runs.
func (t *Tool) Bin() string {
	if t.Binary != "" {
		return t.Binary
	}
	return t.Name
}

// New starts a pipe for the tool with the given global options. Extra
// arguments carried by params (see [Extra]) come before extra.
func (t *Tool) New(params any, extra ...string) *Pipe {
	p := New(t.Bin())
	compiled, err := t.Schema.Compile(params)
	if err != nil {
		return p.Fail(err)
	}
	return p.Append(t.Extra.place(compiled, withExtra(params, extra))...)
}

// Invocation is a request to invoke a named sub-command.
type Invocation struct {
	Name   string
	Params any
	Extra  []string
}

// Compose builds a pipe from data: global options followed by a chain of
// invocations. Each invocation is resolved among the nested sub-commands of
// the previous one first, and then among the tool's top-level sub-commands.
// A nested match branches the pipe; a top-level match extends it in place.
func (t *Tool) Compose(global any, extra []string, invocations ...Invocation) *Pipe {
	p := t.New(global, extra...)

	var prev *Command
	for _, inv := range invocations {
		if p.Err() != nil {
			return p
		}

		if prev != nil {
			if cmd, ok := prev.Lookup(inv.Name); ok {
				p = p.Branch().Invoke(cmd, inv.Params, inv.Extra...)
				prev = cmd
				continue
			}
		}

		cmd, ok := t.Lookup(inv.Name)
		if !ok {
			return p.Fail(fmt.Errorf("unknown command %q", inv.Name))
		}
		p.Invoke(cmd, inv.Params, inv.Extra...)
		prev = cmd
	}
	return p
}

// Extra carries arguments an options struct does not model. Embed it in
// options structs; [Command.Compile] places its Args like any other extra
// arguments.
type Extra struct {
	Args []string `arg:"-"`
}

// ExtraArgs returns the carried arguments.
func (e Extra) ExtraArgs() []string {
	return e.Args
}

type extraCarrier interface {
	ExtraArgs() []string
}

// withExtra prepends the extra arguments carried by params to extra.
func withExtra(params any, extra []string) []string {
	c, ok := params.(extraCarrier)
	if !ok {
		return extra
	}
	if rv := reflect.ValueOf(params); rv.Kind() == reflect.Pointer && rv.IsNil() {
		return extra
	}

	carried := c.ExtraArgs()
	if len(carried) == 0 {
		return extra
	}
	out := make([]string, 0, len(carried)+len(extra))
	out = append(out, carried...)
	return append(out, extra...)
}

func lookup(cmds []*Command, name string) (*Command, bool) {
	for _, c := range cmds {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}
