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

// Package pipeline runs declarative tool pipelines described in YAML.
//
// A pipeline is a list of stages run one after another. The steps of a stage
// run concurrently; each step is one tool invocation compiled through the
// tool's descriptors:
//
//	image: alpine:3.19
//	workdir: /src
//	stages:
//	  - name: check
//	    steps:
//	      - name: lint
//	        tool: tflint
//	        params: {format: json}
//	        retries: 2
package pipeline

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Pipeline is a parsed pipeline document.
type Pipeline struct {
	// Image is the container image used by the container executor.
	Image string `yaml:"image,omitempty"`

	// Workdir is the working directory of steps that do not set their own.
	Workdir string `yaml:"workdir,omitempty"`

	// Concurrency bounds the number of steps of one stage running at once.
	// Zero means the number of CPUs.
	Concurrency int64 `yaml:"concurrency,omitempty"`

	Stages []*Stage `yaml:"stages"`
}

// Stage is a group of steps that run concurrently.
type Stage struct {
	Name  string  `yaml:"name"`
	Steps []*Step `yaml:"steps"`
}

// Step is a single tool invocation.
type Step struct {
	Name string `yaml:"name"`
	Tool string `yaml:"tool"`

	// Params are the tool's global options.
	Params Params `yaml:"params,omitempty"`

	// Extra are arguments passed with the global options as is.
	Extra []string `yaml:"extra,omitempty"`

	// Commands is the chain of sub-commands to invoke.
	Commands []*Command `yaml:"commands,omitempty"`

	// Retries is how many times a step that fails to execute is retried.
	Retries uint64 `yaml:"retries,omitempty"`

	Workdir string `yaml:"workdir,omitempty"`
}

// Command is one sub-command of a step.
type Command struct {
	Name   string   `yaml:"name"`
	Params Params   `yaml:"params,omitempty"`
	Extra  []string `yaml:"extra,omitempty"`
}

// Parse decodes and validates a pipeline document. Unknown keys are errors.
func Parse(b []byte) (*Pipeline, error) {
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)

	var p Pipeline
	if err := dec.Decode(&p); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("pipeline is empty")
		}
		return nil, fmt.Errorf("failed to decode pipeline: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// ParseFile reads and parses the pipeline at path.
func ParseFile(path string) (*Pipeline, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pipeline: %w", err)
	}
	p, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Validate reports every structural problem of the pipeline at once. It does
// not resolve tools; see [Pipeline.Compile].
func (p *Pipeline) Validate() error {
	var merr error
	if p.Concurrency < 0 {
		merr = errors.Join(merr, fmt.Errorf("concurrency must be positive, got %d", p.Concurrency))
	}
	if len(p.Stages) == 0 {
		merr = errors.Join(merr, fmt.Errorf("at least one stage is required"))
	}

	stages := make(map[string]struct{}, len(p.Stages))
	for i, st := range p.Stages {
		if st == nil {
			merr = errors.Join(merr, fmt.Errorf("stage %d is empty", i))
			continue
		}

		where := fmt.Sprintf("stage %d", i)
		if st.Name == "" {
			merr = errors.Join(merr, fmt.Errorf("%s: name is required", where))
		} else {
			where = fmt.Sprintf("stage %q", st.Name)
			if _, ok := stages[st.Name]; ok {
				merr = errors.Join(merr, fmt.Errorf("%s: duplicate stage name", where))
			}
			stages[st.Name] = struct{}{}
		}
		if len(st.Steps) == 0 {
			merr = errors.Join(merr, fmt.Errorf("%s: at least one step is required", where))
		}

		steps := make(map[string]struct{}, len(st.Steps))
		for j, step := range st.Steps {
			if step == nil {
				merr = errors.Join(merr, fmt.Errorf("%s: step %d is empty", where, j))
				continue
			}
			if step.Name != "" {
				if _, ok := steps[step.Name]; ok {
					merr = errors.Join(merr, fmt.Errorf("%s step %q: duplicate step name", where, step.Name))
				}
				steps[step.Name] = struct{}{}
			}
			if err := step.validate(); err != nil {
				merr = errors.Join(merr, fmt.Errorf("%s %s: %w", where, step.label(j), err))
			}
		}
	}
	return merr
}

func (s *Step) validate() error {
	var merr error
	if s.Name == "" {
		merr = errors.Join(merr, fmt.Errorf("name is required"))
	}
	if s.Tool == "" {
		merr = errors.Join(merr, fmt.Errorf("tool is required"))
	}
	for i, c := range s.Commands {
		if c == nil || strings.TrimSpace(c.Name) == "" {
			merr = errors.Join(merr, fmt.Errorf("command %d: name is required", i))
		}
	}
	return merr
}

func (s *Step) label(i int) string {
	if s.Name == "" {
		return fmt.Sprintf("step %d", i)
	}
	return fmt.Sprintf("step %q", s.Name)
}
