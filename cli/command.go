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

package cli

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/mattn/go-isatty"
)

// commandPlaceholder is replaced with the full command name in help output.
const commandPlaceholder = "{{ COMMAND }}"

// Command is a command or subcommand. Most methods have default
// implementations on [BaseCommand].
type Command interface {
	// Desc is a one-line description, shorter than 50 characters.
	Desc() string

	// Help is the long-form help. The string "{{ COMMAND }}" is replaced with
	// the full command name.
	Help() string

	// Hidden hides the command from help output.
	Hidden() bool

	// Run executes the command.
	Run(ctx context.Context, args []string) error

	Stdout() io.Writer
	SetStdout(w io.Writer)

	Stderr() io.Writer
	SetStderr(w io.Writer)

	Stdin() io.Reader
	SetStdin(r io.Reader)

	// SetLookupEnv sets the function used to read environment variables.
	SetLookupEnv(fn LookupEnvFunc)
}

// CommandFactory returns a new instance of a command. Commands are only built
// when they are run, or listed in help.
type CommandFactory func() Command

var _ Command = (*RootCommand)(nil)

// RootCommand is a collection of subcommands.
type RootCommand struct {
	BaseCommand

	// Name is the binary name for top-level commands, or the subcommand name.
	Name string

	Description string

	// Hide hides the whole group from help output.
	Hide bool

	// Version is printed by -version. Subcommands inherit it.
	Version string

	Commands map[string]CommandFactory
}

// Desc returns the description.
func (r *RootCommand) Desc() string {
	return r.Description
}

// Hidden reports whether the group is hidden.
func (r *RootCommand) Hidden() bool {
	return r.Hide
}

// Help lists the visible subcommands.
func (r *RootCommand) Help() string {
	var b strings.Builder

	longest := 0
	names := r.names()
	for _, name := range names {
		if l := len(name); l > longest {
			longest = l
		}
	}

	fmt.Fprintf(&b, "Usage: %s COMMAND\n\n", r.Name)
	for _, name := range names {
		cmd := r.Commands[name]()
		if cmd == nil || cmd.Hidden() {
			continue
		}
		fmt.Fprintf(&b, "  %-*s%s\n", longest+4, name, cmd.Desc())
	}
	return strings.TrimRight(b.String(), "\n")
}

func (r *RootCommand) names() []string {
	names := make([]string, 0, len(r.Commands))
	for name := range r.Commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Run prints help or the version, or delegates to a subcommand.
func (r *RootCommand) Run(ctx context.Context, args []string) error {
	var name string
	if len(args) > 0 {
		name, args = args[0], args[1:]
	}

	switch name {
	case "", "-h", "-help", "--help":
		fmt.Fprintln(r.Stderr(), r.Help())
		return nil
	case "-v", "-version", "--version":
		fmt.Fprintln(r.Stderr(), r.Version)
		return nil
	}

	factory, ok := r.Commands[name]
	if !ok {
		return fmt.Errorf("unknown command %q: run \"%s -help\" for a list of commands", name, r.Name)
	}
	cmd := factory()
	if cmd == nil {
		return fmt.Errorf("unknown command %q", name)
	}

	cmd.SetStdin(r.stdin)
	cmd.SetStdout(r.stdout)
	cmd.SetStderr(r.stderr)
	cmd.SetLookupEnv(r.lookupEnv)

	if sub, ok := cmd.(*RootCommand); ok {
		sub.Name = r.Name + " " + sub.Name
		sub.Version = r.Version
		return sub.Run(ctx, args)
	}

	if err := cmd.Run(ctx, args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			help := strings.ReplaceAll(cmd.Help(), commandPlaceholder, r.Name+" "+name)
			fmt.Fprintln(cmd.Stderr(), strings.TrimSpace(help))
			return nil
		}
		return err //nolint:wrapcheck // Bubble exactly as-is.
	}
	return nil
}

// BaseCommand is embedded by every command. It holds the streams and the
// environment lookup function.
type BaseCommand struct {
	stdout, stderr io.Writer
	stdin          io.Reader
	lookupEnv      LookupEnvFunc
}

// Hidden reports false.
func (c *BaseCommand) Hidden() bool {
	return false
}

// Stdout returns the stdout stream, os.Stdout by default.
func (c *BaseCommand) Stdout() io.Writer {
	if v := c.stdout; v != nil {
		return v
	}
	return os.Stdout
}

// SetStdout sets the stdout stream.
func (c *BaseCommand) SetStdout(w io.Writer) {
	c.stdout = w
}

// Stderr returns the stderr stream, os.Stderr by default.
func (c *BaseCommand) Stderr() io.Writer {
	if v := c.stderr; v != nil {
		return v
	}
	return os.Stderr
}

// SetStderr sets the stderr stream.
func (c *BaseCommand) SetStderr(w io.Writer) {
	c.stderr = w
}

// Stdin returns the stdin stream, os.Stdin by default.
func (c *BaseCommand) Stdin() io.Reader {
	if v := c.stdin; v != nil {
		return v
	}
	return os.Stdin
}

// SetStdin sets the stdin stream.
func (c *BaseCommand) SetStdin(r io.Reader) {
	c.stdin = r
}

// SetLookupEnv sets the function used to read environment variables. A nil
// function restores [os.LookupEnv].
func (c *BaseCommand) SetLookupEnv(fn LookupEnvFunc) {
	c.lookupEnv = fn
}

// LookupEnv reads an environment variable.
func (c *BaseCommand) LookupEnv(key string) (string, bool) {
	if c.lookupEnv != nil {
		return c.lookupEnv(key)
	}
	return os.LookupEnv(key)
}

// NewFlagSet creates a flag set bound to the command's environment lookup.
func (c *BaseCommand) NewFlagSet(opts ...Option) *FlagSet {
	opts = append([]Option{WithLookupEnv(c.LookupEnv)}, opts...)
	return NewFlagSet(opts...)
}

// StdoutIsTerminal reports whether stdout is an interactive terminal.
func (c *BaseCommand) StdoutIsTerminal() bool {
	f, ok := c.Stdout().(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

// Pipe replaces the streams with new buffers and returns them. It is meant
// for tests.
func (c *BaseCommand) Pipe() (stdin, stdout, stderr *bytes.Buffer) {
	stdin = bytes.NewBuffer(nil)
	stdout = bytes.NewBuffer(nil)
	stderr = bytes.NewBuffer(nil)
	c.stdin = stdin
	c.stdout = stdout
	c.stderr = stderr
	return
}
