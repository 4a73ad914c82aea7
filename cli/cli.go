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

// Package cli is a small framework for multi-command programs such as dul. A
// program starts with a [RootCommand] holding lazily constructed
// subcommands; a subcommand can itself be a [RootCommand], which nests CLIs
// ("dul tools show").
//
//	var rootCmd = func() *cli.RootCommand {
//	  return &cli.RootCommand{
//	    Name:    "dul",
//	    Version: "v0.1.0",
//	    Commands: map[string]cli.CommandFactory{
//	      "run": func() cli.Command {
//	        return &RunCommand{}
//	      },
//	    },
//	  }
//	}
//
// Commands declare their flags in sections on a [FlagSet]. Help output is
// generated from the sections, and the same flags drive shell completions,
// see [RootCommand.Completions].
package cli
