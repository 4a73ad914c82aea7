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

package pipe

import (
	"context"
	"fmt"
)

// Sequence is an ordered list of pipes run one after another, such as the
// steps of an install recipe.
type Sequence []*Pipe

// Args returns the command line of every pipe.
func (s Sequence) Args() ([][]string, error) {
	out := make([][]string, 0, len(s))
	for i, p := range s {
		argv, err := p.Args()
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		out = append(out, argv)
	}
	return out, nil
}

// Run executes the pipes in order and stops at the first failure. Nothing is
// executed if any pipe failed to compile.
func (s Sequence) Run(ctx context.Context, exec Executor, workdir string) ([]*Result, error) {
	if _, err := s.Args(); err != nil {
		return nil, err
	}

	out := make([]*Result, 0, len(s))
	for i, p := range s {
		res, err := p.Run(ctx, exec, workdir)
		if err != nil {
			return out, fmt.Errorf("step %d: %w", i, err)
		}
		out = append(out, res)
	}
	return out, nil
}
