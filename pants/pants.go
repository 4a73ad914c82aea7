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

// Package pants builds command lines for the Pants build system.
//
// Goals chain on the same builder, so
//
//	pants.New(nil).Fmt(nil).Lint(nil)
//
// yields "./pants fmt lint".
package pants

import (
	"github.com/KernelPryanic/dagger-utilities-library/args"
	"github.com/KernelPryanic/dagger-utilities-library/curl"
	"github.com/KernelPryanic/dagger-utilities-library/pipe"
)

// SetupURL is the location of the pants launcher script.
const SetupURL = "https://static.pantsbuild.org/setup/pants"

// Formatter is a formatter backend.
type Formatter string

const (
	FormatterBlack        Formatter = "black"
	FormatterDocformatter Formatter = "docformatter"
	FormatterIsort        Formatter = "isort"
	FormatterYapf         Formatter = "yapf"
	FormatterAutoflake    Formatter = "autoflake"
	FormatterPyupgrade    Formatter = "pyupgrade"
	FormatterShfmt        Formatter = "shfmt"
)

// Linter is a linter backend.
type Linter string

const (
	LinterBandit     Linter = "bandit"
	LinterFlake8     Linter = "flake8"
	LinterPylint     Linter = "pylint"
	LinterShellcheck Linter = "shellcheck"
)

// BuildFormatter formats BUILD files.
type BuildFormatter string

const (
	BuildFormatterBlack BuildFormatter = "black"
	BuildFormatterYapf  BuildFormatter = "yapf"
)

// TestOutput is which test output is shown.
type TestOutput string

const (
	TestOutputAll    TestOutput = "all"
	TestOutputFailed TestOutput = "failed"
	TestOutputNone   TestOutput = "none"
)

// Dependents is how far changed targets are expanded to their dependents.
type Dependents string

const (
	DependentsNone       Dependents = "none"
	DependentsDirect     Dependents = "direct"
	DependentsTransitive Dependents = "transitive"
)

func once(prefix string, opts ...args.Option) args.Kind {
	return args.Once(prefix, append(opts, args.Combined())...)
}

var (
	fmtCmd = &pipe.Command{
		Name: "fmt",
		Help: "Autoformat source code",
		Schema: args.NewSchema(
			args.Param("only", args.Repeat("--only", args.Combined())),
		),
	}

	lintCmd = &pipe.Command{
		Name: "lint",
		Help: "Run linters",
		Schema: args.NewSchema(
			args.Param("only", args.Repeat("--only", args.Combined())),
			args.Param("skip_formatters", args.Flag("--skip-formatters")),
		),
	}

	packageCmd = &pipe.Command{
		Name: "package",
		Help: "Create a distributable package",
	}

	runCmd = &pipe.Command{
		Name: "run",
		Help: "Run an executable target",
		Schema: args.NewSchema(
			args.Param("args", once("--args")),
			args.Param("cleanup", once("--cleanup")),
			args.Param("debug_adapter", args.Flag("--debug-adapter")),
		),
	}

	testCmd = &pipe.Command{
		Name: "test",
		Help: "Run tests",
		Schema: args.NewSchema(
			args.Param("debug", args.Flag("--debug")),
			args.Param("debug_adapter", args.Flag("--debug-adapter")),
			args.Param("force", args.Flag("--force")),
			args.Param("output", once("--output", args.OneOf(TestOutputAll, TestOutputFailed, TestOutputNone))),
			args.Param("use_coverage", args.Flag("--use-coverage")),
			args.Param("open_coverage", args.Flag("--open-coverage")),
			args.Param("extra_env_vars", args.Repeat("--extra-env-vars", args.Combined())),
			args.Param("shard", once("--shard")),
			args.Param("timeouts", once("--timeouts")),
		),
	}

	checkCmd = &pipe.Command{
		Name: "check",
		Help: "Run type checking",
		Schema: args.NewSchema(
			args.Param("only", args.Repeat("--only", args.Combined())),
		),
	}

	updateBuildFilesCmd = &pipe.Command{
		Name: "update-build-files",
		Help: "Format and fix BUILD files",
		Schema: args.NewSchema(
			args.Param("check", args.Flag("--check")),
			args.Param("fmt", once("--fmt")),
			args.Param("formatter", once("--formatter", args.OneOf(BuildFormatterBlack, BuildFormatterYapf))),
			args.Param("fix_safe_deprecations", once("--fix-safe-deprecations")),
		),
	}

	// changedCmd restricts the goals to changed files. It is a set of global
	// options rather than a goal, so it emits no command token.
	changedCmd = &pipe.Command{
		Name:   "changed",
		Tokens: []string{},
		Help:   "Restrict goals to changed targets",
		Schema: args.NewSchema(
			args.Param("since", once("--changed-since")),
			args.Param("diffspec", once("--changed-diffspec")),
			args.Param("dependents", once("--changed-dependents",
				args.OneOf(DependentsNone, DependentsDirect, DependentsTransitive))),
		),
	}
)

// Tool describes the pants command line. Pants is run through the launcher
// script in the working directory.
var Tool = &pipe.Tool{
	Name:   "pants",
	Binary: "./pants",
	Help:   "Pants build system",
	Schema: args.NewSchema(
		args.Param("version", args.Flag("--version")),
		args.Param("targets", args.Positional(args.Variadic())),
	),
	Commands: []*pipe.Command{
		fmtCmd, lintCmd, packageCmd, runCmd, testCmd, checkCmd, updateBuildFilesCmd, changedCmd,
	},
}

// Options are the global pants options.
type Options struct {
	pipe.Extra

	Version bool `arg:"version"`

	// Targets are target specs, such as "::" or "src/python::".
	Targets []string `arg:"targets"`
}

// FmtOptions are the options of the fmt goal.
type FmtOptions struct {
	pipe.Extra

	Only []Formatter `arg:"only"`
}

// LintOptions are the options of the lint goal.
type LintOptions struct {
	pipe.Extra

	Only           []Linter `arg:"only"`
	SkipFormatters bool     `arg:"skip_formatters"`
}

// PackageOptions are the options of the package goal.
type PackageOptions struct {
	pipe.Extra
}

// RunOptions are the options of the run goal.
type RunOptions struct {
	pipe.Extra

	// Args are passed to the executable as a single string.
	Args         string `arg:"args"`
	Cleanup      *bool  `arg:"cleanup"`
	DebugAdapter bool   `arg:"debug_adapter"`
}

// TestOptions are the options of the test goal.
type TestOptions struct {
	pipe.Extra

	Debug        bool       `arg:"debug"`
	DebugAdapter bool       `arg:"debug_adapter"`
	Force        bool       `arg:"force"`
	Output       TestOutput `arg:"output"`
	UseCoverage  bool       `arg:"use_coverage"`
	OpenCoverage bool       `arg:"open_coverage"`
	ExtraEnvVars args.Pairs `arg:"extra_env_vars"`
	Shard        string     `arg:"shard"`
	Timeouts     *bool      `arg:"timeouts"`
}

// CheckOptions are the options of the check goal.
type CheckOptions struct {
	pipe.Extra

	Only []string `arg:"only"`
}

// UpdateBuildFilesOptions are the options of the update-build-files goal.
type UpdateBuildFilesOptions struct {
	pipe.Extra

	Check               bool           `arg:"check"`
	Fmt                 *bool          `arg:"fmt"`
	Formatter           BuildFormatter `arg:"formatter"`
	FixSafeDeprecations *bool          `arg:"fix_safe_deprecations"`
}

// ChangedOptions restrict goals to changed targets.
type ChangedOptions struct {
	pipe.Extra

	Since      string     `arg:"since"`
	Diffspec   string     `arg:"diffspec"`
	Dependents Dependents `arg:"dependents"`
}

// CLI builds a pants command line.
type CLI struct {
	*pipe.Pipe
}

// New starts a pants command line.
func New(opts *Options) *CLI {
	return &CLI{Pipe: Tool.New(opts)}
}

// Fmt appends the fmt goal.
func (c *CLI) Fmt(opts *FmtOptions) *CLI {
	c.Invoke(fmtCmd, opts)
	return c
}

// Lint appends the lint goal.
func (c *CLI) Lint(opts *LintOptions) *CLI {
	c.Invoke(lintCmd, opts)
	return c
}

// Package appends the package goal.
func (c *CLI) Package(opts *PackageOptions) *CLI {
	c.Invoke(packageCmd, opts)
	return c
}

// RunGoal appends the run goal. It is not named Run so that the embedded
// [pipe.Pipe.Run] still executes the command line.
func (c *CLI) RunGoal(opts *RunOptions) *CLI {
	c.Invoke(runCmd, opts)
	return c
}

// Test appends the test goal.
func (c *CLI) Test(opts *TestOptions) *CLI {
	c.Invoke(testCmd, opts)
	return c
}

// Check appends the check goal.
func (c *CLI) Check(opts *CheckOptions) *CLI {
	c.Invoke(checkCmd, opts)
	return c
}

// UpdateBuildFiles appends the update-build-files goal.
func (c *CLI) UpdateBuildFiles(opts *UpdateBuildFilesOptions) *CLI {
	c.Invoke(updateBuildFilesCmd, opts)
	return c
}

// Changed appends the --changed-* options.
func (c *CLI) Changed(opts *ChangedOptions) *CLI {
	c.Invoke(changedCmd, opts)
	return c
}

// Install downloads the pants launcher into the working directory.
func Install() pipe.Sequence {
	return pipe.Sequence{
		curl.Download(SetupURL, "./pants"),
		pipe.New("chmod", "+x", "./pants"),
	}
}
