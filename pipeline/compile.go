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

package pipeline

import (
	"errors"
	"fmt"

	"github.com/KernelPryanic/dagger-utilities-library/pipe"
)

// Plan is a compiled pipeline, ready to run.
type Plan struct {
	Concurrency int64
	Stages      []*PlannedStage
}

// PlannedStage is a compiled stage.
type PlannedStage struct {
	Name string
	Jobs []*Job
}

// Job is a compiled step.
type Job struct {
	Stage   string
	Name    string
	Argv    []string
	Workdir string
	Retries uint64
}

// Compile resolves every step to a command line using the tools in reg.
// Sub-commands of a step are resolved among the nested sub-commands of the
// previous one first, then among the tool's top-level sub-commands. All
// failures are reported together, each naming its stage and step.
func (p *Pipeline) Compile(reg *pipe.Registry) (*Plan, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	plan := &Plan{
		Concurrency: p.Concurrency,
		Stages:      make([]*PlannedStage, 0, len(p.Stages)),
	}

	var merr error
	for _, st := range p.Stages {
		ps := &PlannedStage{
			Name: st.Name,
			Jobs: make([]*Job, 0, len(st.Steps)),
		}
		for _, step := range st.Steps {
			argv, err := step.compile(reg)
			if err != nil {
				merr = errors.Join(merr, fmt.Errorf("stage %q step %q: %w", st.Name, step.Name, err))
				continue
			}

			workdir := step.Workdir
			if workdir == "" {
				workdir = p.Workdir
			}
			ps.Jobs = append(ps.Jobs, &Job{
				Stage:   st.Name,
				Name:    step.Name,
				Argv:    argv,
				Workdir: workdir,
				Retries: step.Retries,
			})
		}
		plan.Stages = append(plan.Stages, ps)
	}
	if merr != nil {
		return nil, merr
	}
	return plan, nil
}

func (s *Step) compile(reg *pipe.Registry) ([]string, error) {
	tool, ok := reg.Lookup(s.Tool)
	if !ok {
		return nil, fmt.Errorf("unknown tool %q", s.Tool)
	}

	invs := make([]pipe.Invocation, 0, len(s.Commands))
	for _, c := range s.Commands {
		invs = append(invs, pipe.Invocation{
			Name:   c.Name,
			Params: c.Params.Values(),
			Extra:  c.Extra,
		})
	}

	argv, err := tool.Compose(s.Params.Values(), s.Extra, invs...).Args()
	if err != nil {
		return nil, err //nolint:wrapcheck // Already names the tool.
	}
	return argv, nil
}

// Argvs returns the command line of every job, in stage order.
func (p *Plan) Argvs() [][]string {
	var out [][]string
	for _, st := range p.Stages {
		for _, j := range st.Jobs {
			out = append(out, j.Argv)
		}
	}
	return out
}
