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

// Package terraform builds command lines for Terraform and reads Terraform
// variable files into ordered "-var" parameters.
package terraform

import (
	"fmt"
	"slices"

	"github.com/KernelPryanic/dagger-utilities-library/args"
	"github.com/KernelPryanic/dagger-utilities-library/curl"
	"github.com/KernelPryanic/dagger-utilities-library/pipe"
)

// ReleasesURL is where Terraform release archives are downloaded from.
const ReleasesURL = "https://releases.hashicorp.com/terraform"

var (
	initCmd = &pipe.Command{
		Name: "init",
		Help: "Prepare a working directory",
		Schema: args.NewSchema(
			args.Param("backend", args.Once("-backend", args.Combined())),
			args.Param("backend_config", args.Repeat("-backend-config", args.Combined())),
			args.Param("input", args.Once("-input", args.Combined())),
			args.Param("lockfile", args.Once("-lockfile", args.Combined())),
			args.Param("migrate_state", args.Flag("-migrate-state")),
			args.Param("reconfigure", args.Flag("-reconfigure")),
			args.Param("upgrade", args.Flag("-upgrade")),
			args.Param("no_color", args.Flag("-no-color")),
		),
	}

	validateCmd = &pipe.Command{
		Name: "validate",
		Help: "Check whether the configuration is valid",
		Schema: args.NewSchema(
			args.Param("json", args.Flag("-json")),
			args.Param("no_color", args.Flag("-no-color")),
		),
	}

	// planEntries are shared by plan and apply.
	planEntries = []args.Entry{
		args.Param("destroy", args.Flag("-destroy")),
		args.Param("refresh_only", args.Flag("-refresh-only")),
		args.Param("refresh", args.Once("-refresh", args.Combined())),
		args.Param("targets", args.Repeat("-target", args.Combined())),
		args.Param("replace", args.Repeat("-replace", args.Combined())),
		args.Param("vars", args.Repeat("-var")),
		args.Param("var_files", args.Repeat("-var-file", args.Combined())),
		args.Param("input", args.Once("-input", args.Combined())),
		args.Param("lock", args.Once("-lock", args.Combined())),
		args.Param("lock_timeout", args.Once("-lock-timeout", args.Combined())),
		args.Param("parallelism", args.Once("-parallelism", args.Combined())),
		args.Param("no_color", args.Flag("-no-color")),
	}

	planCmd = &pipe.Command{
		Name: "plan",
		Help: "Show the changes required by the configuration",
		Schema: args.NewSchema(append(slices.Clone(planEntries), []args.Entry{
			args.Param("detailed_exitcode", args.Flag("-detailed-exitcode")),
			args.Param("out", args.Once("-out", args.Combined())),
		}...)...),
	}

	applyCmd = &pipe.Command{
		Name: "apply",
		Help: "Create or update infrastructure",
		Schema: args.NewSchema(append(slices.Clone(planEntries), []args.Entry{
			args.Param("auto_approve", args.Flag("-auto-approve")),
			args.Param("plan", args.Positional()),
		}...)...),
	}

	fmtCmd = &pipe.Command{
		Name: "fmt",
		Help: "Reformat configuration in the standard style",
		Schema: args.NewSchema(
			args.Param("check", args.Flag("-check")),
			args.Param("diff", args.Flag("-diff")),
			args.Param("recursive", args.Flag("-recursive")),
			args.Param("list", args.Once("-list", args.Combined())),
			args.Param("write", args.Once("-write", args.Combined())),
			args.Param("no_color", args.Flag("-no-color")),
			args.Param("targets", args.Positional(args.Variadic())),
		),
	}

	outputCmd = &pipe.Command{
		Name: "output",
		Help: "Show output values",
		Schema: args.NewSchema(
			args.Param("json", args.Flag("-json")),
			args.Param("raw", args.Flag("-raw")),
			args.Param("state", args.Once("-state", args.Combined())),
			args.Param("no_color", args.Flag("-no-color")),
			args.Param("name", args.Positional()),
		),
	}
)

// Tool describes the terraform command line.
var Tool = &pipe.Tool{
	Name: "terraform",
	Help: "Infrastructure as code",
	Schema: args.NewSchema(
		args.Param("chdir", args.Once("-chdir", args.Combined())),
	),
	Commands: []*pipe.Command{initCmd, validateCmd, planCmd, applyCmd, fmtCmd, outputCmd},
}

// Options are the global terraform options.
type Options struct {
	pipe.Extra

	// Chdir switches to the given directory before running the command.
	Chdir string `arg:"chdir"`
}

// InitOptions are the options of "terraform init".
type InitOptions struct {
	pipe.Extra

	Backend       *bool      `arg:"backend"`
	BackendConfig args.Pairs `arg:"backend_config"`
	Input         *bool      `arg:"input"`
	Lockfile      string     `arg:"lockfile"`
	MigrateState  bool       `arg:"migrate_state"`
	Reconfigure   bool       `arg:"reconfigure"`
	Upgrade       bool       `arg:"upgrade"`
	NoColor       bool       `arg:"no_color"`
}

// ValidateOptions are the options of "terraform validate".
type ValidateOptions struct {
	pipe.Extra

	JSON    bool `arg:"json"`
	NoColor bool `arg:"no_color"`
}

// PlanFlags are shared by plan and apply.
type PlanFlags struct {
	Destroy     bool       `arg:"destroy"`
	RefreshOnly bool       `arg:"refresh_only"`
	Refresh     *bool      `arg:"refresh"`
	Targets     []string   `arg:"targets"`
	Replace     []string   `arg:"replace"`
	Vars        args.Pairs `arg:"vars"`
	VarFiles    []string   `arg:"var_files"`
	Input       *bool      `arg:"input"`
	Lock        *bool      `arg:"lock"`
	LockTimeout string     `arg:"lock_timeout"`
	Parallelism int        `arg:"parallelism"`
	NoColor     bool       `arg:"no_color"`
}

// PlanOptions are the options of "terraform plan".
type PlanOptions struct {
	pipe.Extra
	PlanFlags

	DetailedExitCode bool   `arg:"detailed_exitcode"`
	Out              string `arg:"out"`
}

// ApplyOptions are the options of "terraform apply".
type ApplyOptions struct {
	pipe.Extra
	PlanFlags

	AutoApprove bool `arg:"auto_approve"`

	// Plan is a saved plan file to apply.
	Plan string `arg:"plan"`
}

// FmtOptions are the options of "terraform fmt".
type FmtOptions struct {
	pipe.Extra

	Check     bool     `arg:"check"`
	Diff      bool     `arg:"diff"`
	Recursive bool     `arg:"recursive"`
	List      *bool    `arg:"list"`
	Write     *bool    `arg:"write"`
	NoColor   bool     `arg:"no_color"`
	Targets   []string `arg:"targets"`
}

// OutputOptions are the options of "terraform output".
type OutputOptions struct {
	pipe.Extra

	JSON    bool   `arg:"json"`
	Raw     bool   `arg:"raw"`
	State   string `arg:"state"`
	NoColor bool   `arg:"no_color"`
	Name    string `arg:"name"`
}

// CLI builds a terraform command line.
type CLI struct {
	*pipe.Pipe
}

// New starts a terraform command line.
func New(opts *Options) *CLI {
	return &CLI{Pipe: Tool.New(opts)}
}

// Init appends "init".
func (c *CLI) Init(opts *InitOptions) *CLI {
	c.Invoke(initCmd, opts)
	return c
}

// Validate appends "validate".
func (c *CLI) Validate(opts *ValidateOptions) *CLI {
	c.Invoke(validateCmd, opts)
	return c
}

// Plan appends "plan".
func (c *CLI) Plan(opts *PlanOptions) *CLI {
	c.Invoke(planCmd, opts)
	return c
}

// Apply appends "apply".
func (c *CLI) Apply(opts *ApplyOptions) *CLI {
	c.Invoke(applyCmd, opts)
	return c
}

// Fmt appends "fmt".
func (c *CLI) Fmt(opts *FmtOptions) *CLI {
	c.Invoke(fmtCmd, opts)
	return c
}

// Output appends "output".
func (c *CLI) Output(opts *OutputOptions) *CLI {
	c.Invoke(outputCmd, opts)
	return c
}

// Format checks that every file under root is formatted.
func Format(root string) *pipe.Pipe {
	return New(nil).Fmt(&FmtOptions{
		Check:     true,
		Recursive: true,
		Targets:   []string{root},
	}).Pipe
}

// Install downloads the given release for linux/amd64 into /usr/bin.
func Install(version string) pipe.Sequence {
	if version == "" {
		return pipe.Sequence{
			pipe.New("terraform").Fail(fmt.Errorf("install: %w \"version\"", args.ErrMissingRequiredArgument)),
		}
	}

	url := fmt.Sprintf("%s/%s/terraform_%s_linux_amd64.zip", ReleasesURL, version, version)
	return pipe.Sequence{
		curl.Download(url, "terraform.zip"),
		pipe.New("unzip", "-o", "terraform.zip", "terraform"),
		pipe.New("chmod", "+x", "terraform"),
		pipe.New("mv", "terraform", "/usr/bin/"),
		pipe.New("rm", "terraform.zip"),
	}
}
