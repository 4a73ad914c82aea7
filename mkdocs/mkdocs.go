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

// Package mkdocs builds command lines for the MkDocs site generator.
package mkdocs

import (
	"github.com/KernelPryanic/dagger-utilities-library/args"
	"github.com/KernelPryanic/dagger-utilities-library/pipe"
)

// Theme is a built-in theme.
type Theme string

const (
	ThemeMkDocs      Theme = "mkdocs"
	ThemeReadTheDocs Theme = "readthedocs"
)

var (
	theme = args.Once("--theme", args.OneOf(ThemeMkDocs, ThemeReadTheDocs))

	buildCmd = &pipe.Command{
		Name: "build",
		Help: "Build the documentation",
		Schema: args.NewSchema(
			args.Param("clean", args.Flag("--clean")),
			args.Param("dirty", args.Flag("--dirty")),
			args.Param("config_file", args.Once("--config-file")),
			args.Param("strict", args.Flag("--strict")),
			args.Param("theme", theme),
			args.Param("use_directory_urls", args.Flag("--use-directory-urls")),
			args.Param("no_directory_urls", args.Flag("--no-directory-urls")),
			args.Param("site_dir", args.Once("--site-dir")),
		),
	}

	ghDeployCmd = &pipe.Command{
		Name: "gh-deploy",
		Help: "Deploy the documentation to GitHub pages",
		Schema: args.NewSchema(
			args.Param("clean", args.Flag("--clean")),
			args.Param("dirty", args.Flag("--dirty")),
			args.Param("message", args.Once("--message")),
			args.Param("remote_branch", args.Once("--remote-branch")),
			args.Param("remote_name", args.Once("--remote-name")),
			args.Param("force", args.Flag("--force")),
			args.Param("no_history", args.Flag("--no-history")),
			args.Param("ignore_version", args.Flag("--ignore-version")),
			args.Param("shell", args.Flag("--shell")),
			args.Param("config_file", args.Once("--config-file")),
			args.Param("strict", args.Flag("--strict")),
			args.Param("theme", theme),
			args.Param("use_directory_urls", args.Flag("--use-directory-urls")),
			args.Param("no_directory_urls", args.Flag("--no-directory-urls")),
			args.Param("site_dir", args.Once("--site-dir")),
		),
	}

	newCmd = &pipe.Command{
		Name: "new",
		Help: "Create a new project",
		Schema: args.NewSchema(
			args.Required("project_directory", args.Positional()),
		),
	}

	serveCmd = &pipe.Command{
		Name: "serve",
		Help: "Run the builtin development server",
		Schema: args.NewSchema(
			args.Param("dev_addr", args.Once("--dev-addr")),
			args.Param("no_livereload", args.Flag("--no-livereload")),
			args.Param("dirty", args.Flag("--dirty")),
			args.Param("config_file", args.Once("--config-file")),
			args.Param("strict", args.Flag("--strict")),
			args.Param("theme", theme),
			args.Param("watch", args.Repeat("--watch")),
		),
	}
)

// Tool describes the mkdocs command line.
var Tool = &pipe.Tool{
	Name: "mkdocs",
	Help: "Project documentation with Markdown",
	Schema: args.NewSchema(
		args.Param("quiet", args.Flag("--quiet")),
		args.Param("verbose", args.Flag("--verbose")),
	),
	Commands: []*pipe.Command{buildCmd, ghDeployCmd, newCmd, serveCmd},
}

// Options are the global mkdocs options.
type Options struct {
	pipe.Extra

	Quiet   bool `arg:"quiet"`
	Verbose bool `arg:"verbose"`
}

// BuildOptions are the options of "mkdocs build".
type BuildOptions struct {
	pipe.Extra

	Clean            bool   `arg:"clean"`
	Dirty            bool   `arg:"dirty"`
	ConfigFile       string `arg:"config_file"`
	Strict           bool   `arg:"strict"`
	Theme            Theme  `arg:"theme"`
	UseDirectoryURLs bool   `arg:"use_directory_urls"`
	NoDirectoryURLs  bool   `arg:"no_directory_urls"`
	SiteDir          string `arg:"site_dir"`
}

// GhDeployOptions are the options of "mkdocs gh-deploy".
type GhDeployOptions struct {
	pipe.Extra

	Clean            bool   `arg:"clean"`
	Dirty            bool   `arg:"dirty"`
	Message          string `arg:"message"`
	RemoteBranch     string `arg:"remote_branch"`
	RemoteName       string `arg:"remote_name"`
	Force            bool   `arg:"force"`
	NoHistory        bool   `arg:"no_history"`
	IgnoreVersion    bool   `arg:"ignore_version"`
	Shell            bool   `arg:"shell"`
	ConfigFile       string `arg:"config_file"`
	Strict           bool   `arg:"strict"`
	Theme            Theme  `arg:"theme"`
	UseDirectoryURLs bool   `arg:"use_directory_urls"`
	NoDirectoryURLs  bool   `arg:"no_directory_urls"`
	SiteDir          string `arg:"site_dir"`
}

// NewOptions are the options of "mkdocs new".
type NewOptions struct {
	pipe.Extra

	ProjectDirectory string `arg:"project_directory"`
}

// ServeOptions are the options of "mkdocs serve".
type ServeOptions struct {
	pipe.Extra

	DevAddr      string   `arg:"dev_addr"`
	NoLivereload bool     `arg:"no_livereload"`
	Dirty        bool     `arg:"dirty"`
	ConfigFile   string   `arg:"config_file"`
	Strict       bool     `arg:"strict"`
	Theme        Theme    `arg:"theme"`
	Watch        []string `arg:"watch"`
}

// CLI builds an mkdocs command line.
type CLI struct {
	*pipe.Pipe
}

// New starts an mkdocs command line.
func New(opts *Options) *CLI {
	return &CLI{Pipe: Tool.New(opts)}
}

// Build appends "build".
func (c *CLI) Build(opts *BuildOptions) *CLI {
	c.Invoke(buildCmd, opts)
	return c
}

// GhDeploy appends "gh-deploy".
func (c *CLI) GhDeploy(opts *GhDeployOptions) *CLI {
	c.Invoke(ghDeployCmd, opts)
	return c
}

// New appends "new". The project directory is required.
func (c *CLI) New(opts *NewOptions) *CLI {
	c.Invoke(newCmd, opts)
	return c
}

// Serve appends "serve".
func (c *CLI) Serve(opts *ServeOptions) *CLI {
	c.Invoke(serveCmd, opts)
	return c
}
