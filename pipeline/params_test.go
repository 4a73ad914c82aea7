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
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"github.com/KernelPryanic/dagger-utilities-library/args"
	"github.com/KernelPryanic/dagger-utilities-library/testutil"
)

func TestParams_UnmarshalYAML(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		in      string
		want    Params
		wantErr string
	}{
		{
			name: "scalars_keep_type",
			in:   `{cleanup: false, retries: 0, label: "", tag: v1, unset: null}`,
			want: Params{"cleanup": false, "retries": 0, "label": "", "tag": "v1", "unset": nil},
		},
		{
			name: "nested_mapping_keeps_order",
			in:   `{build_args: {ZED: "1", ALPHA: "2"}, tags: [b, a]}`,
			want: Params{
				"build_args": args.Pairs{{Key: "ZED", Value: "1"}, {Key: "ALPHA", Value: "2"}},
				"tags":       []any{"b", "a"},
			},
		},
		{
			name: "mapping_in_sequence",
			in:   `{items: [{b: 1, a: 2}]}`,
			want: Params{
				"items": []any{args.Pairs{{Key: "b", Value: 1}, {Key: "a", Value: 2}}},
			},
		},
		{
			name: "alias",
			in:   `{first: &env {Y: y, X: x}, second: *env}`,
			want: Params{
				"first":  args.Pairs{{Key: "Y", Value: "y"}, {Key: "X", Value: "x"}},
				"second": args.Pairs{{Key: "Y", Value: "y"}, {Key: "X", Value: "x"}},
			},
		},
		{
			name: "empty",
			in:   `{}`,
			want: Params{},
		},
		{
			name:    "duplicate",
			in:      `{tag: a, tag: b}`,
			wantErr: `duplicate parameter "tag"`,
		},
		{
			name:    "not_a_mapping",
			in:      `[a, b]`,
			wantErr: "params must be a mapping",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var got Params
			err := yaml.Unmarshal([]byte(tc.in), &got)
			if diff := testutil.DiffErrString(err, tc.wantErr); diff != "" {
				t.Fatal(diff)
			}
			if err != nil {
				return
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("params (-want, +got):\n%s", diff)
			}
		})
	}
}
