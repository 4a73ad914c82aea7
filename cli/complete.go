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

package cli

import (
	"github.com/posener/complete/v2"
)

// FlagProvider is implemented by commands with flags. The flags are used for
// completions.
type FlagProvider interface {
	Flags() *FlagSet
}

// ArgPredictor is implemented by commands that can predict their positional
// arguments.
type ArgPredictor interface {
	PredictArgs() complete.Predictor
}

// Completions builds the completion tree of r and every subcommand. Hidden
// commands are left out.
func (r *RootCommand) Completions() *complete.Command {
	out := &complete.Command{
		Sub: make(map[string]*complete.Command, len(r.Commands)),
	}
	for _, name := range r.names() {
		cmd := r.Commands[name]()
		if cmd == nil || cmd.Hidden() {
			continue
		}
		out.Sub[name] = completionsFor(cmd)
	}
	return out
}

func completionsFor(cmd Command) *complete.Command {
	if r, ok := cmd.(*RootCommand); ok {
		return r.Completions()
	}

	out := new(complete.Command)
	if f, ok := cmd.(FlagProvider); ok {
		out.Flags = f.Flags().Predictors()
	}
	if a, ok := cmd.(ArgPredictor); ok {
		out.Args = a.PredictArgs()
	}
	return out
}

// Complete answers a shell completion request for r and exits, if the process
// was started by the shell to complete. It also handles the COMP_INSTALL and
// COMP_UNINSTALL variables. Otherwise it returns without doing anything.
func Complete(r *RootCommand) {
	complete.Complete(r.Name, r.Completions())
}
