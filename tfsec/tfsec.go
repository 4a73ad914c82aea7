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

// Package tfsec builds command lines for the tfsec Terraform security scanner.
package tfsec

import (
	"fmt"

	"github.com/KernelPryanic/dagger-utilities-library/args"
	"github.com/KernelPryanic/dagger-utilities-library/curl"
	"github.com/KernelPryanic/dagger-utilities-library/pipe"
)

// Theme is the code highlighting theme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Format is a report format. Several may be requested at once.
type Format string

const (
	FormatLovely     Format = "lovely"
	FormatJSON       Format = "json"
	FormatCSV        Format = "csv"
	FormatCheckstyle Format = "checkstyle"
	FormatJUnit      Format = "junit"
	FormatSARIF      Format = "sarif"
	FormatText       Format = "text"
	FormatMarkdown   Format = "markdown"
	FormatHTML       Format = "html"
	FormatGIF        Format = "gif"
)

// Formats lists the supported report formats.
var Formats = []Format{
	FormatLovely, FormatJSON, FormatCSV, FormatCheckstyle, FormatJUnit,
	FormatSARIF, FormatText, FormatMarkdown, FormatHTML, FormatGIF,
}

// Severity is a finding severity.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
)

func commaList() args.Option {
	return args.Join(",")
}

// Tool describes the tfsec command line. The scanned path comes first.
var Tool = &pipe.Tool{
	Name: "tfsec",
	Help: "Static analysis of Terraform code",
	Schema: args.NewSchema(
		args.Required("path", args.Positional()),
		args.Param("code_theme", args.Once("--code-theme", args.OneOf(ThemeLight, ThemeDark))),
		args.Param("concise_output", args.Flag("--concise-output")),
		args.Param("config_file", args.Once("--config-file")),
		args.Param("config_file_url", args.Once("--config-file-url")),
		args.Param("custom_check_dir", args.Once("--custom-check-dir")),
		args.Param("custom_check_url", args.Once("--custom-check-url")),
		args.Param("debug", args.Flag("--debug")),
		args.Param("disable_grouping", args.Flag("--disable-grouping")),
		args.Param("exclude", args.Once("--exclude", commaList())),
		args.Param("exclude_downloaded_modules", args.Flag("--exclude-downloaded-modules")),
		args.Param("exclude_ignores", args.Once("--exclude-ignores", commaList())),
		args.Param("exclude_paths", args.Repeat("--exclude-path")),
		args.Param("filter_results", args.Once("--filter-results", commaList())),
		args.Param("force_all_dirs", args.Flag("--force-all-dirs")),
		args.Param("format", args.Once("--format", commaList(), args.OneOf(Formats...))),
		args.Param("ignore_hcl_errors", args.Flag("--ignore-hcl-errors")),
		args.Param("include_ignored", args.Flag("--include-ignored")),
		args.Param("include_passed", args.Flag("--include-passed")),
		args.Param("migrate_ignores", args.Flag("--migrate-ignores")),
		args.Param("minimum_severity", args.Once("--minimum-severity",
			args.OneOf(SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow))),
		args.Param("no_code", args.Flag("--no-code")),
		args.Param("no_color", args.Flag("--no-color")),
		args.Param("no_ignores", args.Flag("--no-ignores")),
		args.Param("no_module_downloads", args.Flag("--no-module-downloads")),
		args.Param("out", args.Once("--out")),
		args.Param("print_rego_input", args.Flag("--print-rego-input")),
		args.Param("rego_only", args.Flag("--rego-only")),
		args.Param("rego_policy_dir", args.Once("--rego-policy-dir")),
		args.Param("run_statistics", args.Flag("--run-statistics")),
		args.Param("single_thread", args.Flag("--single-thread")),
		args.Param("soft_fail", args.Flag("--soft-fail")),
		args.Param("update", args.Flag("--update")),
		args.Param("var_files", args.Repeat("--var-file")),
		args.Param("verbose", args.Flag("--verbose")),
		args.Param("workspace", args.Once("--workspace")),
	),
}

// Options are the tfsec options.
type Options struct {
	pipe.Extra

	// Path is the directory to scan.
	Path string `arg:"path"`

	CodeTheme                Theme    `arg:"code_theme"`
	ConciseOutput            bool     `arg:"concise_output"`
	ConfigFile               string   `arg:"config_file"`
	ConfigFileURL            string   `arg:"config_file_url"`
	CustomCheckDir           string   `arg:"custom_check_dir"`
	CustomCheckURL           string   `arg:"custom_check_url"`
	Debug                    bool     `arg:"debug"`
	DisableGrouping          bool     `arg:"disable_grouping"`
	Exclude                  []string `arg:"exclude"`
	ExcludeDownloadedModules bool     `arg:"exclude_downloaded_modules"`
	ExcludeIgnores           []string `arg:"exclude_ignores"`
	ExcludePaths             []string `arg:"exclude_paths"`
	FilterResults            []string `arg:"filter_results"`
	ForceAllDirs             bool     `arg:"force_all_dirs"`
	Format                   []Format `arg:"format"`
	IgnoreHCLErrors          bool     `arg:"ignore_hcl_errors"`
	IncludeIgnored           bool     `arg:"include_ignored"`
	IncludePassed            bool     `arg:"include_passed"`
	MigrateIgnores           bool     `arg:"migrate_ignores"`
	MinimumSeverity          Severity `arg:"minimum_severity"`
	NoCode                   bool     `arg:"no_code"`
	NoColor                  bool     `arg:"no_color"`
	NoIgnores                bool     `arg:"no_ignores"`
	NoModuleDownloads        bool     `arg:"no_module_downloads"`
	Out                      string   `arg:"out"`
	PrintRegoInput           bool     `arg:"print_rego_input"`
	RegoOnly                 bool     `arg:"rego_only"`
	RegoPolicyDir            string   `arg:"rego_policy_dir"`
	RunStatistics            bool     `arg:"run_statistics"`
	SingleThread             bool     `arg:"single_thread"`
	SoftFail                 bool     `arg:"soft_fail"`
	Update                   bool     `arg:"update"`
	VarFiles                 []string `arg:"var_files"`
	Verbose                  bool     `arg:"verbose"`
	Workspace                string   `arg:"workspace"`
}

// New builds a tfsec command line. Extra arguments follow the compiled flags.
func New(opts *Options) *pipe.Pipe {
	return Tool.New(opts)
}

// Install downloads the given release for linux/amd64 into /usr/local/bin.
func Install(version string) pipe.Sequence {
	if version == "" {
		return pipe.Sequence{
			pipe.New("tfsec").Fail(fmt.Errorf("install: %w \"version\"", args.ErrMissingRequiredArgument)),
		}
	}

	url := fmt.Sprintf("https://github.com/aquasecurity/tfsec/releases/download/v%s/tfsec-linux-amd64", version)
	return pipe.Sequence{
		curl.Download(url, "tfsec"),
		pipe.New("chmod", "+x", "tfsec"),
		pipe.New("mv", "tfsec", "/usr/local/bin/"),
	}
}
