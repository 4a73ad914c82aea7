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

// Package tflint builds command lines for the TFLint Terraform linter.
package tflint

import (
	"fmt"

	"github.com/KernelPryanic/dagger-utilities-library/args"
	"github.com/KernelPryanic/dagger-utilities-library/curl"
	"github.com/KernelPryanic/dagger-utilities-library/pipe"
)

// Format is the output format.
type Format string

const (
	FormatDefault    Format = "default"
	FormatJSON       Format = "json"
	FormatCheckstyle Format = "checkstyle"
	FormatJUnit      Format = "junit"
	FormatCompact    Format = "compact"
	FormatSARIF      Format = "sarif"
)

// Formats lists the supported output formats.
var Formats = []Format{FormatDefault, FormatJSON, FormatCheckstyle, FormatJUnit, FormatCompact, FormatSARIF}

// Tool describes the tflint command line. TFLint has no sub-commands; every
// option is global and uses the "--flag=value" form.
var Tool = &pipe.Tool{
	Name:  "tflint",
	Help:  "Terraform linter",
	Extra: pipe.ExtraBefore,
	Schema: args.NewSchema(
		args.Param("version", args.Flag("--version")),
		args.Param("init", args.Flag("--init")),
		args.Param("format", args.Once("--format", args.Combined(), args.OneOf(Formats...))),
		args.Param("config", args.Once("--config", args.Combined())),
		args.Param("ignore_module", args.Repeat("--ignore-module", args.Combined())),
		args.Param("enable_rule", args.Repeat("--enable-rule", args.Combined())),
		args.Param("disable_rule", args.Repeat("--disable-rule", args.Combined())),
		args.Param("only", args.Repeat("--only", args.Combined())),
		args.Param("enable_plugin", args.Repeat("--enable-plugin", args.Combined())),
		args.Param("var_files", args.Repeat("--var-file", args.Combined())),
		args.Param("vars", args.Repeat("--var", args.Combined())),
		args.Param("call_module_type", args.Once("--call-module-type", args.Combined())),
		args.Param("chdir", args.Once("--chdir", args.Combined())),
		args.Param("recursive", args.Flag("--recursive")),
		args.Param("filter", args.Repeat("--filter", args.Combined())),
		args.Param("force", args.Flag("--force")),
		args.Param("minimum_failure_severity", args.Once("--minimum-failure-severity", args.Combined())),
		args.Param("color", args.Flag("--color")),
		args.Param("no_color", args.Flag("--no-color")),
		args.Param("target", args.Positional()),
	),
}

// Options are the tflint options.
type Options struct {
	pipe.Extra

	Version                bool       `arg:"version"`
	Init                   bool       `arg:"init"`
	Format                 Format     `arg:"format"`
	Config                 string     `arg:"config"`
	IgnoreModules          []string   `arg:"ignore_module"`
	EnableRules            []string   `arg:"enable_rule"`
	DisableRules           []string   `arg:"disable_rule"`
	Only                   []string   `arg:"only"`
	EnablePlugins          []string   `arg:"enable_plugin"`
	VarFiles               []string   `arg:"var_files"`
	Vars                   args.Pairs `arg:"vars"`
	CallModuleType         string     `arg:"call_module_type"`
	Chdir                  string     `arg:"chdir"`
	Recursive              bool       `arg:"recursive"`
	Filter                 []string   `arg:"filter"`
	Force                  bool       `arg:"force"`
	MinimumFailureSeverity string     `arg:"minimum_failure_severity"`
	Color                  bool       `arg:"color"`
	NoColor                bool       `arg:"no_color"`

	// Target is a file or directory to lint, for releases that still accept
	// one.
	Target string `arg:"target"`
}

// New builds a tflint command line.
func New(opts *Options) *pipe.Pipe {
	return Tool.New(opts)
}

// Install downloads the given release for linux/amd64 into /usr/bin.
func Install(version string) pipe.Sequence {
	if version == "" {
		return pipe.Sequence{
			pipe.New("tflint").Fail(fmt.Errorf("install: %w \"version\"", args.ErrMissingRequiredArgument)),
		}
	}

	url := fmt.Sprintf("https://github.com/terraform-linters/tflint/releases/download/v%s/tflint_linux_amd64.zip", version)
	return pipe.Sequence{
		curl.Download(url, "tflint.zip"),
		pipe.New("unzip", "-o", "tflint.zip", "tflint"),
		pipe.New("chmod", "+x", "tflint"),
		pipe.New("mv", "tflint", "/usr/bin/"),
		pipe.New("rm", "tflint.zip"),
	}
}
