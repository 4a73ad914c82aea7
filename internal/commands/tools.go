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

package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/kr/text"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"

	"github.com/KernelPryanic/dagger-utilities-library/args"
	"github.com/KernelPryanic/dagger-utilities-library/cli"
	"github.com/KernelPryanic/dagger-utilities-library/pipe"
	"github.com/KernelPryanic/dagger-utilities-library/tools"
)

var _ cli.Command = (*ToolsCommand)(nil)

// ToolsCommand describes the tool catalogue.
type ToolsCommand struct {
	cli.BaseCommand
}

func (c *ToolsCommand) Desc() string {
	return "List tools and their parameters"
}

func (c *ToolsCommand) Help() string {
	return `
Usage: {{ COMMAND }} [TOOL]

  Without arguments, lists the tools pipelines can use. With a tool name,
  prints its global parameters and sub-commands with their parameters.
`
}

func (c *ToolsCommand) PredictArgs() complete.Predictor {
	return predict.Set(tools.Registry().Names())
}

func (c *ToolsCommand) Flags() *cli.FlagSet {
	set := c.NewFlagSet()
	set.AfterParse(func(existingErr error) error {
		if existingErr != nil {
			return nil
		}
		if got := len(set.Args()); got > 1 {
			return fmt.Errorf("expected at most one argument, got %d", got)
		}
		return nil
	})
	return set
}

func (c *ToolsCommand) Run(ctx context.Context, argv []string) error {
	f := c.Flags()
	if err := f.Parse(argv); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}

	reg := tools.Registry()
	if f.Arg(0) == "" {
		listTools(c.Stdout(), reg)
		return nil
	}

	t, ok := reg.Lookup(f.Arg(0))
	if !ok {
		return fmt.Errorf("unknown tool %q, valid tools are %q", f.Arg(0), reg.Names())
	}
	describeTool(c.Stdout(), t)
	return nil
}

func listTools(w io.Writer, reg *pipe.Registry) {
	names := reg.Names()
	longest := 0
	for _, n := range names {
		longest = max(longest, len(n))
	}
	for _, n := range names {
		t, _ := reg.Lookup(n)
		fmt.Fprintf(w, "%-*s%s\n", longest+4, n, t.Help)
	}
}

func describeTool(w io.Writer, t *pipe.Tool) {
	fmt.Fprintf(w, "%s (%s)\n", t.Name, t.Bin())
	if t.Help != "" {
		fmt.Fprintf(w, "%s\n", text.Indent(t.Help, "  "))
	}

	if t.Schema.Len() > 0 {
		fmt.Fprintf(w, "\nGLOBAL PARAMETERS\n\n")
		fmt.Fprint(w, text.Indent(describeSchema(t.Schema), "  "))
	}

	if len(t.Commands) > 0 {
		fmt.Fprintf(w, "\nCOMMANDS\n\n")
		for _, cmd := range t.Commands {
			fmt.Fprint(w, text.Indent(describeCommand(cmd), "  "))
		}
	}
}

func describeCommand(cmd *pipe.Command) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s", cmd.Name)
	if cmd.Help != "" {
		fmt.Fprintf(&b, " - %s", cmd.Help)
	}
	b.WriteString("\n")

	if cmd.Schema.Len() > 0 {
		b.WriteString(text.Indent(describeSchema(cmd.Schema), "    "))
	}
	for _, sub := range cmd.Commands {
		b.WriteString(text.Indent(describeCommand(sub), "  "))
	}
	return b.String()
}

func describeSchema(s *args.Schema) string {
	entries := s.Entries()
	longest := 0
	for _, e := range entries {
		longest = max(longest, len(e.Name))
	}

	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, "%-*s%s", longest+2, e.Name, e.Kind)
		if e.Required {
			b.WriteString(" (required)")
		}
		b.WriteString("\n")
	}
	return b.String()
}
