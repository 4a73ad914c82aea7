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

// Package poetry builds command lines for the Poetry Python packaging tool.
package poetry

import (
	"fmt"

	"github.com/KernelPryanic/dagger-utilities-library/args"
	"github.com/KernelPryanic/dagger-utilities-library/pipe"
)

// BuildFormat is a distribution format.
type BuildFormat string

const (
	BuildFormatSdist BuildFormat = "sdist"
	BuildFormatWheel BuildFormat = "wheel"
)

func once(prefix string, opts ...args.Option) args.Kind {
	return args.Once(prefix, append(opts, args.Combined())...)
}

var (
	buildCmd = &pipe.Command{
		Name: "build",
		Help: "Build source and wheel archives",
		Schema: args.NewSchema(
			args.Param("format", once("--format", args.OneOf(BuildFormatSdist, BuildFormatWheel))),
			args.Param("output", once("--output")),
		),
	}

	configCmd = &pipe.Command{
		Name: "config",
		Help: "Manage configuration settings",
		Schema: args.NewSchema(
			args.Param("list", args.Flag("--list")),
			args.Param("unset", args.Flag("--unset")),
			args.Param("local", args.Flag("--local")),
			args.Param("key", args.Positional()),
			args.Param("value", args.Positional(args.Variadic())),
		),
		Check: func(vals args.Values) error {
			if !args.AnyPresent(vals, "list", "key") {
				return fmt.Errorf("%w: a key or --list is required", args.ErrMissingRequiredArgument)
			}
			return nil
		},
	}

	publishCmd = &pipe.Command{
		Name: "publish",
		Help: "Publish the package to a remote repository",
		Schema: args.NewSchema(
			args.Param("repository", once("--repository")),
			args.Param("username", once("--username")),
			args.Param("password", once("--password")),
			args.Param("cert", once("--cert")),
			args.Param("client_cert", once("--client-cert")),
			args.Param("build", args.Flag("--build")),
			args.Param("dry_run", args.Flag("--dry-run")),
			args.Param("skip_existing", args.Flag("--skip-existing")),
		),
	}

	installCmd = &pipe.Command{
		Name: "install",
		Help: "Install the project dependencies",
		Schema: args.NewSchema(
			args.Param("without", once("--without", args.Join(","))),
			args.Param("with", once("--with", args.Join(","))),
			args.Param("only", once("--only", args.Join(","))),
			args.Param("sync", args.Flag("--sync")),
			args.Param("no_root", args.Flag("--no-root")),
			args.Param("no_directory", args.Flag("--no-directory")),
			args.Param("extras", args.Repeat("--extras", args.Combined())),
			args.Param("all_extras", args.Flag("--all-extras")),
			args.Param("compile", args.Flag("--compile")),
			args.Param("dry_run", args.Flag("--dry-run")),
		),
	}

	lockCmd = &pipe.Command{
		Name: "lock",
		Help: "Lock the project dependencies",
		Schema: args.NewSchema(
			args.Param("no_update", args.Flag("--no-update")),
			args.Param("regenerate", args.Flag("--regenerate")),
		),
	}
)

// Tool describes the poetry command line.
var Tool = &pipe.Tool{
	Name: "poetry",
	Help: "Python packaging and dependency management",
	Schema: args.NewSchema(
		args.Param("quiet", args.Flag("--quiet")),
		args.Param("version", args.Flag("--version")),
		args.Param("ansi", args.Flag("--ansi")),
		args.Param("no_ansi", args.Flag("--no-ansi")),
		args.Param("no_interaction", args.Flag("--no-interaction")),
		args.Param("no_plugins", args.Flag("--no-plugins")),
		args.Param("no_cache", args.Flag("--no-cache")),
		args.Param("directory", once("--directory")),
		args.Param("verbose", args.Flag("--verbose")),
	),
	Commands: []*pipe.Command{buildCmd, configCmd, publishCmd, installCmd, lockCmd},
}

// Options are the global poetry options.
type Options struct {
	pipe.Extra

	Quiet         bool   `arg:"quiet"`
	Version       bool   `arg:"version"`
	ANSI          bool   `arg:"ansi"`
	NoANSI        bool   `arg:"no_ansi"`
	NoInteraction bool   `arg:"no_interaction"`
	NoPlugins     bool   `arg:"no_plugins"`
	NoCache       bool   `arg:"no_cache"`
	Directory     string `arg:"directory"`
	Verbose       bool   `arg:"verbose"`
}

// BuildOptions are the options of "poetry build".
type BuildOptions struct {
	pipe.Extra

	Format BuildFormat `arg:"format"`
	Output string      `arg:"output"`
}

// ConfigOptions are the options of "poetry config". Either Key or List is
// required.
type ConfigOptions struct {
	pipe.Extra

	List  bool     `arg:"list"`
	Unset bool     `arg:"unset"`
	Local bool     `arg:"local"`
	Key   string   `arg:"key"`
	Value []string `arg:"value"`
}

// PublishOptions are the options of "poetry publish".
type PublishOptions struct {
	pipe.Extra

	Repository   string `arg:"repository"`
	Username     string `arg:"username"`
	Password     string `arg:"password"`
	Cert         string `arg:"cert"`
	ClientCert   string `arg:"client_cert"`
	Build        bool   `arg:"build"`
	DryRun       bool   `arg:"dry_run"`
	SkipExisting bool   `arg:"skip_existing"`
}

// InstallOptions are the options of "poetry install".
type InstallOptions struct {
	pipe.Extra

	Without     []string `arg:"without"`
	With        []string `arg:"with"`
	Only        []string `arg:"only"`
	Sync        bool     `arg:"sync"`
	NoRoot      bool     `arg:"no_root"`
	NoDirectory bool     `arg:"no_directory"`
	Extras      []string `arg:"extras"`
	AllExtras   bool     `arg:"all_extras"`
	Compile     bool     `arg:"compile"`
	DryRun      bool     `arg:"dry_run"`
}

// LockOptions are the options of "poetry lock".
type LockOptions struct {
	pipe.Extra

	NoUpdate   bool `arg:"no_update"`
	Regenerate bool `arg:"regenerate"`
}

// CLI builds a poetry command line.
type CLI struct {
	*pipe.Pipe
}

// New starts a poetry command line.
func New(opts *Options) *CLI {
	return &CLI{Pipe: Tool.New(opts)}
}

// Build appends "build".
func (c *CLI) Build(opts *BuildOptions) *CLI {
	c.Invoke(buildCmd, opts)
	return c
}

// Config appends "config".
func (c *CLI) Config(opts *ConfigOptions) *CLI {
	c.Invoke(configCmd, opts)
	return c
}

// Publish appends "publish".
func (c *CLI) Publish(opts *PublishOptions) *CLI {
	c.Invoke(publishCmd, opts)
	return c
}

// Install appends "install".
func (c *CLI) Install(opts *InstallOptions) *CLI {
	c.Invoke(installCmd, opts)
	return c
}

// Lock appends "lock".
func (c *CLI) Lock(opts *LockOptions) *CLI {
	c.Invoke(lockCmd, opts)
	return c
}
