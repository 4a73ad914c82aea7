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

// Package docker builds command lines for the Docker CLI.
package docker

import (
	"github.com/KernelPryanic/dagger-utilities-library/args"
	"github.com/KernelPryanic/dagger-utilities-library/pipe"
)

// LogLevel is the daemon client log level.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
	LogLevelFatal LogLevel = "fatal"
)

// Progress is the build output style.
type Progress string

const (
	ProgressAuto  Progress = "auto"
	ProgressPlain Progress = "plain"
	ProgressTTY   Progress = "tty"
)

var (
	buildCmd = &pipe.Command{
		Name:  "build",
		Help:  "Build an image from a Dockerfile",
		Extra: pipe.ExtraBefore,
		Schema: args.NewSchema(
			args.Param("add_hosts", args.Repeat("--add-host")),
			args.Param("build_args", args.Repeat("--build-arg")),
			args.Param("cache_from", args.Repeat("--cache-from")),
			args.Param("disable_content_trust", args.Flag("--disable-content-trust")),
			args.Param("file", args.Once("--file")),
			args.Param("iidfile", args.Once("--iidfile")),
			args.Param("isolation", args.Once("--isolation")),
			args.Param("labels", args.Repeat("--label")),
			args.Param("network", args.Once("--network")),
			args.Param("no_cache", args.Flag("--no-cache")),
			args.Param("output", args.Once("--output")),
			args.Param("platform", args.Once("--platform")),
			args.Param("progress", args.Once("--progress", args.OneOf(ProgressAuto, ProgressPlain, ProgressTTY))),
			args.Param("pull", args.Flag("--pull")),
			args.Param("quiet", args.Flag("--quiet")),
			args.Param("secrets", args.Repeat("--secret")),
			args.Param("ssh", args.Once("--ssh")),
			args.Param("tags", args.Repeat("--tag")),
			args.Param("target", args.Once("--target")),
			args.Required("context", args.Positional()),
		),
	}

	pushCmd = &pipe.Command{
		Name:  "push",
		Help:  "Upload an image to a registry",
		Extra: pipe.ExtraBefore,
		Schema: args.NewSchema(
			args.Param("all_tags", args.Flag("--all-tags")),
			args.Param("disable_content_trust", args.Flag("--disable-content-trust")),
			args.Param("quiet", args.Flag("--quiet")),
			args.Required("name", args.Positional()),
		),
	}

	azureCmd = &pipe.Command{
		Name:  "azure",
		Help:  "Log in to Azure",
		Extra: pipe.ExtraBefore,
		Schema: args.NewSchema(
			args.Param("client_id", args.Once("--client-id")),
			args.Param("client_secret", args.Once("--client-secret")),
			args.Param("tenant_id", args.Once("--tenant-id")),
			args.Param("cloud_name", args.Once("--cloud-name")),
		),
	}

	loginCmd = &pipe.Command{
		Name:  "login",
		Help:  "Log in to a registry",
		Extra: pipe.ExtraBefore,
		Schema: args.NewSchema(
			args.Param("username", args.Once("--username")),
			args.Param("password", args.Once("--password")),
			args.Param("password_stdin", args.Flag("--password-stdin")),
			args.Param("server", args.Positional()),
		),
		Commands: []*pipe.Command{azureCmd},
	}
)

// Tool describes the docker command line.
var Tool = &pipe.Tool{
	Name:  "docker",
	Help:  "Docker client",
	Extra: pipe.ExtraBefore,
	Schema: args.NewSchema(
		args.Param("config", args.Once("--config")),
		args.Param("context", args.Once("--context")),
		args.Param("debug", args.Flag("--debug")),
		args.Param("hosts", args.Repeat("--host")),
		args.Param("log_level", args.Once("--log-level",
			args.OneOf(LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError, LogLevelFatal))),
		args.Param("tls", args.Flag("--tls")),
		args.Param("tlscacert", args.Once("--tlscacert")),
		args.Param("tlscert", args.Once("--tlscert")),
		args.Param("tlskey", args.Once("--tlskey")),
		args.Param("tlsverify", args.Flag("--tlsverify")),
		args.Param("version", args.Flag("--version")),
	),
	Commands: []*pipe.Command{buildCmd, pushCmd, loginCmd},
}

// Options are the global docker options.
type Options struct {
	pipe.Extra

	Config    string   `arg:"config"`
	Context   string   `arg:"context"`
	Debug     bool     `arg:"debug"`
	Hosts     []string `arg:"hosts"`
	LogLevel  LogLevel `arg:"log_level"`
	TLS       bool     `arg:"tls"`
	TLSCACert string   `arg:"tlscacert"`
	TLSCert   string   `arg:"tlscert"`
	TLSKey    string   `arg:"tlskey"`
	TLSVerify bool     `arg:"tlsverify"`
	Version   bool     `arg:"version"`
}

// BuildOptions are the options of "docker build".
type BuildOptions struct {
	pipe.Extra

	AddHosts            []string   `arg:"add_hosts"`
	BuildArgs           args.Pairs `arg:"build_args"`
	CacheFrom           []string   `arg:"cache_from"`
	DisableContentTrust bool       `arg:"disable_content_trust"`
	File                string     `arg:"file"`
	IIDFile             string     `arg:"iidfile"`
	Isolation           string     `arg:"isolation"`
	Labels              args.Pairs `arg:"labels"`
	Network             string     `arg:"network"`
	NoCache             bool       `arg:"no_cache"`
	Output              string     `arg:"output"`
	Platform            string     `arg:"platform"`
	Progress            Progress   `arg:"progress"`
	Pull                bool       `arg:"pull"`
	Quiet               bool       `arg:"quiet"`
	Secrets             []string   `arg:"secrets"`
	SSH                 string     `arg:"ssh"`
	Tags                []string   `arg:"tags"`
	Target              string     `arg:"target"`

	// Context is the build context path or URL.
	Context string `arg:"context"`
}

// PushOptions are the options of "docker push".
type PushOptions struct {
	pipe.Extra

	AllTags             bool   `arg:"all_tags"`
	DisableContentTrust bool   `arg:"disable_content_trust"`
	Quiet               bool   `arg:"quiet"`
	Name                string `arg:"name"`
}

// LoginOptions are the options of "docker login".
type LoginOptions struct {
	pipe.Extra

	Username      string `arg:"username"`
	Password      string `arg:"password"`
	PasswordStdin bool   `arg:"password_stdin"`
	Server        string `arg:"server"`
}

// AzureLoginOptions are the options of "docker login azure".
type AzureLoginOptions struct {
	pipe.Extra

	ClientID     string `arg:"client_id"`
	ClientSecret string `arg:"client_secret"`
	TenantID     string `arg:"tenant_id"`
	CloudName    string `arg:"cloud_name"`
}

// CLI builds a docker command line.
type CLI struct {
	*pipe.Pipe
}

// New starts a docker command line.
func New(opts *Options) *CLI {
	return &CLI{Pipe: Tool.New(opts)}
}

// Build appends "build". The build context is required.
func (c *CLI) Build(opts *BuildOptions) *CLI {
	c.Invoke(buildCmd, opts)
	return c
}

// Push appends "push". The image name is required.
func (c *CLI) Push(opts *PushOptions) *CLI {
	c.Invoke(pushCmd, opts)
	return c
}

// Login returns a nested builder for "docker login". The receiver is left
// unchanged.
func (c *CLI) Login(opts *LoginOptions) *LoginCLI {
	return &LoginCLI{Pipe: c.Branch().Invoke(loginCmd, opts)}
}

// LoginCLI builds a "docker login" command line.
type LoginCLI struct {
	*pipe.Pipe
}

// Azure appends "azure" to the login command.
func (c *LoginCLI) Azure(opts *AzureLoginOptions) *LoginCLI {
	c.Invoke(azureCmd, opts)
	return c
}
