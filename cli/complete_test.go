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
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

type completeCommand struct {
	TestCommand
}

func (c *completeCommand) PredictArgs() complete.Predictor {
	return predict.Files("*.yaml")
}

func TestRootCommand_Completions(t *testing.T) {
	t.Parallel()

	root := &RootCommand{
		Name: "dul",
		Commands: map[string]CommandFactory{
			"run": func() Command { return &completeCommand{} },
			"tools": func() Command {
				return &RootCommand{
					Name: "tools",
					Commands: map[string]CommandFactory{
						"list": func() Command { return &TestCommand{} },
					},
				}
			},
			"hidden": func() Command { return &TestCommand{Hide: true} },
		},
	}

	got := root.Completions()

	subs := make([]string, 0, len(got.Sub))
	for name := range got.Sub {
		subs = append(subs, name)
	}
	sort.Strings(subs)
	if diff := cmp.Diff([]string{"run", "tools"}, subs); diff != "" {
		t.Errorf("subcommands (-want, +got):\n%s", diff)
	}

	run := got.Sub["run"]
	if _, ok := run.Flags["string"]; !ok {
		t.Errorf("expected run to complete -string, got %v", run.Flags)
	}
	if run.Args == nil {
		t.Errorf("expected run to predict arguments")
	}

	if _, ok := got.Sub["tools"].Sub["list"]; !ok {
		t.Errorf("expected nested tools list completions")
	}
	if got.Sub["tools"].Sub["list"].Args != nil {
		t.Errorf("expected no argument predictions for tools list")
	}

}
