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

// Package apk builds command lines for the Alpine package manager.
package apk

import (
	"github.com/KernelPryanic/dagger-utilities-library/args"
	"github.com/KernelPryanic/dagger-utilities-library/pipe"
)

var (
	addCmd = &pipe.Command{
		Name: "add",
		Help: "Install packages",
		Schema: args.NewSchema(
			args.Param("update", args.Flag("--update")),
			args.Param("no_cache", args.Flag("--no-cache")),
			args.Param("upgrade", args.Flag("--upgrade")),
			args.Param("allow_untrusted", args.Flag("--allow-untrusted")),
			args.Param("quiet", args.Flag("--quiet")),
			args.Param("repositories", args.Repeat("--repository")),
			args.Param("virtual", args.Once("--virtual")),
			args.Required("packages", args.Positional(args.Variadic())),
		),
	}

	delCmd = &pipe.Command{
		Name: "del",
		Help: "Remove packages",
		Schema: args.NewSchema(
			args.Param("update", args.Flag("--update")),
			args.Param("no_cache", args.Flag("--no-cache")),
			args.Param("rdepends", args.Flag("--rdepends")),
			args.Param("quiet", args.Flag("--quiet")),
			args.Required("packages", args.Positional(args.Variadic())),
		),
	}
)

// Tool describes the apk command line.
var Tool = &pipe.Tool{
	Name:     "apk",
	Help:     "Alpine package manager",
	Commands: []*pipe.Command{addCmd, delCmd},
}

// AddOptions are the options of "apk add".
type AddOptions struct {
	pipe.Extra

	Update         bool     `arg:"update"`
	NoCache        bool     `arg:"no_cache"`
	Upgrade        bool     `arg:"upgrade"`
	AllowUntrusted bool     `arg:"allow_untrusted"`
	Quiet          bool     `arg:"quiet"`
	Repositories   []string `arg:"repositories"`
	Virtual        string   `arg:"virtual"`
	Packages       []string `arg:"packages"`
}

// DelOptions are the options of "apk del".
type DelOptions struct {
	pipe.Extra

	Update   bool     `arg:"update"`
	NoCache  bool     `arg:"no_cache"`
	RDepends bool     `arg:"rdepends"`
	Quiet    bool     `arg:"quiet"`
	Packages []string `arg:"packages"`
}

// CLI builds an apk command line.
type CLI struct {
	*pipe.Pipe
}

// New starts an apk command line.
func New() *CLI {
	return &CLI{Pipe: Tool.New(nil)}
}

// Add appends "add". At least one package is required.
func (c *CLI) Add(opts *AddOptions) *CLI {
	c.Invoke(addCmd, opts)
	return c
}

// Del appends "del". At least one package is required.
func (c *CLI) Del(opts *DelOptions) *CLI {
	c.Invoke(delCmd, opts)
	return c
}

// Install refreshes the index and installs packages without keeping a cache,
// the usual form in container builds.
func Install(packages ...string) *pipe.Pipe {
	return New().Add(&AddOptions{
		Update:   true,
		NoCache:  true,
		Packages: packages,
	}).Pipe
}

// Uninstall removes packages.
func Uninstall(packages ...string) *pipe.Pipe {
	return New().Del(&DelOptions{
		NoCache:  true,
		Packages: packages,
	}).Pipe
}
