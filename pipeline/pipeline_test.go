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
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/KernelPryanic/dagger-utilities-library/testutil"
)

const testPipeline = `
image: alpine:3.19
workdir: /src
concurrency: 4
stages:
  - name: setup
    steps:
      - name: deps
        tool: apk
        commands: [{name: add, params: {packages: [curl, git], update: true}}]
  - name: check
    steps:
      - name: lint
        tool: tflint
        params: {format: json}
        retries: 2
        workdir: /src/infra
`

func TestParse(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		in      string
		want    *Pipeline
		wantErr string
	}{
		{
			name: "full",
			in:   testPipeline,
			want: &Pipeline{
				Image:       "alpine:3.19",
				Workdir:     "/src",
				Concurrency: 4,
				Stages: []*Stage{
					{
						Name: "setup",
						Steps: []*Step{{
							Name: "deps",
							Tool: "apk",
							Commands: []*Command{{
								Name: "add",
								Params: map[string]any{
									"packages": []any{"curl", "git"},
									"update":   true,
								},
							}},
						}},
					},
					{
						Name: "check",
						Steps: []*Step{{
							Name:    "lint",
							Tool:    "tflint",
							Params:  map[string]any{"format": "json"},
							Retries: 2,
							Workdir: "/src/infra",
						}},
					},
				},
			},
		},
		{
			name:    "empty",
			in:      "",
			wantErr: "pipeline is empty",
		},
		{
			name: "unknown_key",
			in: `
stages:
  - name: a
    step: []
`,
			wantErr: "field step not found",
		},
		{
			name:    "no_stages",
			in:      `image: alpine`,
			wantErr: "at least one stage is required",
		},
		{
			name: "invalid_step",
			in: `
stages:
  - name: a
    steps:
      - tool: apk
`,
			wantErr: `stage "a" step 0: name is required`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := Parse([]byte(tc.in))
			if diff := testutil.DiffErrString(err, tc.wantErr); diff != "" {
				t.Fatal(diff)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("Parse() (-want, +got):\n%s", diff)
			}
		})
	}
}

func TestParseFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "pipeline.yaml")
	if err := os.WriteFile(path, []byte(testPipeline), 0o600); err != nil {
		t.Fatal(err)
	}

	p, err := ParseFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := len(p.Stages), 2; got != want {
		t.Errorf("expected %d stages, got %d", want, got)
	}

	_, err = ParseFile(filepath.Join(dir, "missing.yaml"))
	if diff := testutil.DiffErrString(err, "failed to read pipeline"); diff != "" {
		t.Error(diff)
	}
}

func TestPipeline_Validate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		pipeline *Pipeline
		wantErrs []string
	}{
		{
			name: "valid",
			pipeline: &Pipeline{
				Stages: []*Stage{{
					Name:  "a",
					Steps: []*Step{{Name: "s", Tool: "apk"}},
				}},
			},
		},
		{
			name: "joins_all_problems",
			pipeline: &Pipeline{
				Concurrency: -1,
				Stages: []*Stage{
					{
						Name: "a",
						Steps: []*Step{
							{Name: "s", Tool: "apk"},
							{Name: "s", Tool: ""},
						},
					},
					{Name: "a"},
					{
						Steps: []*Step{{
							Name:     "t",
							Tool:     "apk",
							Commands: []*Command{{Name: " "}},
						}},
					},
					nil,
				},
			},
			wantErrs: []string{
				"concurrency must be positive, got -1",
				`stage "a" step "s": duplicate step name`,
				`stage "a" step "s": tool is required`,
				`stage "a": duplicate stage name`,
				`stage "a": at least one step is required`,
				"stage 2: name is required",
				`stage 2 step "t": command 0: name is required`,
				"stage 3 is empty",
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := tc.pipeline.Validate()
			if len(tc.wantErrs) == 0 {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			for _, want := range tc.wantErrs {
				if diff := testutil.DiffErrString(err, want); diff != "" {
					t.Error(diff)
				}
			}
		})
	}
}
