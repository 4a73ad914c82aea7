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

// Package pip builds command lines for the Python package installer.
package pip

import (
	"fmt"

	"github.com/KernelPryanic/dagger-utilities-library/args"
	"github.com/KernelPryanic/dagger-utilities-library/pipe"
)

var (
	installCmd = &pipe.Command{
		Name: "install",
		Help: "Install packages",
		Schema: args.NewSchema(
			args.Param("requirements", args.Repeat("--requirement")),
			args.Param("constraints", args.Repeat("--constraint")),
			args.Param("upgrade", args.Flag("--upgrade")),
			args.Param("no_cache_dir", args.Flag("--no-cache-dir")),
			args.Param("no_deps", args.Flag("--no-deps")),
			args.Param("user", args.Flag("--user")),
			args.Param("target", args.Once("--target")),
			args.Param("index_url", args.Once("--index-url")),
			args.Param("extra_index_urls", args.Repeat("--extra-index-url")),
			args.Param("packages", args.Positional(args.Variadic())),
		),
		Check: needPackages,
	}

	uninstallCmd = &pipe.Command{
		Name: "uninstall",
		Help: "Uninstall packages",
		Schema: args.NewSchema(
			args.Param("yes", args.Flag("--yes")),
			args.Param("requirements", args.Repeat("--requirement")),
			args.Param("packages", args.Positional(args.Variadic())),
		),
		Check: needPackages,
	}
)

// Tool describes the pip command line.
var Tool = &pipe.Tool{
	Name: "pip",
	Help: "Python package installer",
	Schema: args.NewSchema(
		args.Param("quiet", args.Flag("--quiet")),
		args.Param("verbose", args.Flag("--verbose")),
		args.Param("disable_pip_version_check", args.Flag("--disable-pip-version-check")),
	),
	Commands: []*pipe.Command{installCmd, uninstallCmd},
}

// ErrNoPackages is returned when neither packages nor requirement files are
// given.
var ErrNoPackages = fmt.Errorf("%w: no packages or requirement files passed", args.ErrMissingRequiredArgument)

func needPackages(vals args.Values) error {
	if !args.AnyPresent(vals, "packages", "requirements") {
		return ErrNoPackages
	}
	return nil
}

// Options are the global pip options.
type Options struct {
	pipe.Extra

	Quiet                  bool `arg:"quiet"`
	Verbose                bool `arg:"verbose"`
	DisablePipVersionCheck bool `arg:"disable_pip_version_check"`
}

// InstallOptions are the options of "pip install".
type InstallOptions struct {
	pipe.Extra

	Requirements   []string `arg:"requirements"`
	Constraints    []string `arg:"constraints"`
	Upgrade        bool     `arg:"upgrade"`
	NoCacheDir     bool     `arg:"no_cache_dir"`
	NoDeps         bool     `arg:"no_deps"`
	User           bool     `arg:"user"`
	Target         string   `arg:"target"`
	IndexURL       string   `arg:"index_url"`
	ExtraIndexURLs []string `arg:"extra_index_urls"`
	Packages       []string `arg:"packages"`
}

// UninstallOptions are the options of "pip uninstall".
type UninstallOptions struct {
	pipe.Extra

	Yes          bool     `arg:"yes"`
	Requirements []string `arg:"requirements"`
	Packages     []string `arg:"packages"`
}

// CLI builds a pip command line.
type CLI struct {
	*pipe.Pipe
}

// New starts a pip command line.
func New(opts *Options) *CLI {
	return &CLI{Pipe: Tool.New(opts)}
}

// Install appends "install". Packages or requirement files are required.
func (c *CLI) Install(opts *InstallOptions) *CLI {
	c.Invoke(installCmd, opts)
	return c
}

// Uninstall appends "uninstall". Packages or requirement files are required.
func (c *CLI) Uninstall(opts *UninstallOptions) *CLI {
	c.Invoke(uninstallCmd, opts)
	return c
}

// Install installs packages without keeping a download cache.
func Install(packages ...string) *pipe.Pipe {
	return New(nil).Install(&InstallOptions{
		NoCacheDir: true,
		Packages:   packages,
	}).Pipe
}

// Uninstall removes packages without prompting.
func Uninstall(packages ...string) *pipe.Pipe {
	return New(nil).Uninstall(&UninstallOptions{
		Yes:      true,
		Packages: packages,
	}).Pipe
}
