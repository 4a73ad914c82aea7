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

// Package commands implements the dul subcommands.
package commands

import (
	"github.com/KernelPryanic/dagger-utilities-library/cli"
	"github.com/KernelPryanic/dagger-utilities-library/internal/version"
)

// RootCmd returns the dul command tree.
func RootCmd() *cli.RootCommand {
	return &cli.RootCommand{
		Name:    version.Name,
		Version: version.HumanVersion,
		Commands: map[string]cli.CommandFactory{
			"run": func() cli.Command {
				return &RunCommand{}
			},
			"compile": func() cli.Command {
				return &CompileCommand{}
			},
			"tools": func() cli.Command {
				return &ToolsCommand{}
			},
		},
	}
}

// envLookuper adapts a [cli.LookupEnvFunc] to envconfig.
type envLookuper cli.LookupEnvFunc

func (f envLookuper) Lookup(key string) (string, bool) {
	return f(key)
}
