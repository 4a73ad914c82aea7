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
	"log/slog"
	"strconv"
	"strings"

	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"

	"github.com/KernelPryanic/dagger-utilities-library/cli"
	"github.com/KernelPryanic/dagger-utilities-library/logging"
	"github.com/KernelPryanic/dagger-utilities-library/pipeline"
	"github.com/KernelPryanic/dagger-utilities-library/tools"
)

var _ cli.Command = (*CompileCommand)(nil)

// CompileCommand prints the command lines of a pipeline without running it.
type CompileCommand struct {
	cli.BaseCommand

	logger *slog.Logger
}

func (c *CompileCommand) Desc() string {
	return "Print the commands of a pipeline"
}

func (c *CompileCommand) Help() string {
	return `
Usage: {{ COMMAND }} [options] FILE

  Compiles the pipeline in FILE and prints one line per step: the stage and
  step names followed by the quoted tokens of its command line.

` + c.Flags().Help()
}

func (c *CompileCommand) PredictArgs() complete.Predictor {
	return predict.Files("*.y*ml")
}

func (c *CompileCommand) Flags() *cli.FlagSet {
	set := c.NewFlagSet()
	set.NewSection("GENERAL OPTIONS").LogLevelVar(&cli.LogLevelVar{
		Logger: c.logger,
	})
	set.AfterParse(func(existingErr error) error {
		if existingErr != nil {
			return nil
		}
		if got := len(set.Args()); got != 1 {
			return fmt.Errorf("expected exactly one argument, the pipeline file, got %d", got)
		}
		return nil
	})
	return set
}

func (c *CompileCommand) Run(ctx context.Context, args []string) error {
	c.logger = logging.FromContext(ctx)

	f := c.Flags()
	if err := f.Parse(args); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}

	p, err := pipeline.ParseFile(f.Arg(0))
	if err != nil {
		return err //nolint:wrapcheck // Already names the file.
	}
	plan, err := p.Compile(tools.Registry())
	if err != nil {
		return fmt.Errorf("failed to compile pipeline: %w", err)
	}

	for _, st := range plan.Stages {
		for _, job := range st.Jobs {
			quoted := make([]string, 0, len(job.Argv))
			for _, tok := range job.Argv {
				quoted = append(quoted, strconv.Quote(tok))
			}
			fmt.Fprintf(c.Stdout(), "%s/%s: %s\n", st.Name, job.Name, strings.Join(quoted, " "))
		}
	}
	return nil
}
