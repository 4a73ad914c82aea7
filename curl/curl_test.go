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

package curl

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/KernelPryanic/dagger-utilities-library/args"
	"github.com/KernelPryanic/dagger-utilities-library/pipe"
	"github.com/KernelPryanic/dagger-utilities-library/testutil"
)

func TestRequest(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		pipe    *pipe.Pipe
		want    []string
		wantErr string
	}{
		{
			name: "get",
			pipe: Get("https://example.com", nil),
			want: []string{"curl", "-X", "GET", "https://example.com"},
		},
		{
			name: "download",
			pipe: Download("https://example.com/tool.zip", "tool.zip"),
			want: []string{"curl", "-X", "GET", "-L", "-s", "-S", "-f", "-o", "tool.zip", "https://example.com/tool.zip"},
		},
		{
			name: "post_json",
			pipe: Post("https://api.example.com/items", &Options{
				Headers: args.Pairs{
					{Key: "Content-Type", Value: "application/json"},
					{Key: "Authorization", Value: "Bearer abc"},
				},
				Payload: map[string]any{"name": "x", "count": 2},
			}),
			want: []string{
				"curl", "-X", "POST",
				"-H", "Content-Type: application/json",
				"-H", "Authorization: Bearer abc",
				"-d", `{"count":2,"name":"x"}`,
				"https://api.example.com/items",
			},
		},
		{
			name: "raw_payload",
			pipe: Put("https://example.com", &Options{Payload: "a=b"}),
			want: []string{"curl", "-X", "PUT", "-d", "a=b", "https://example.com"},
		},
		{
			name: "delete_with_extra",
			pipe: Delete("https://example.com/1", &Options{
				Extra: pipe.Extra{Args: []string{"--retry", "3"}},
				Fail:  true,
			}),
			want: []string{"curl", "-X", "DELETE", "-f", "https://example.com/1", "--retry", "3"},
		},
		{
			name: "url_from_options",
			pipe: Patch("", &Options{URL: "https://example.com/2"}),
			want: []string{"curl", "-X", "PATCH", "https://example.com/2"},
		},
		{
			name:    "missing_url",
			pipe:    Get("", nil),
			wantErr: `curl: GET: missing required argument "url"`,
		},
		{
			name:    "unsupported_method",
			pipe:    Request("TRACE", "https://example.com", nil),
			wantErr: `unsupported method "TRACE"`,
		},
		{
			name:    "bad_payload",
			pipe:    Post("https://example.com", &Options{Payload: make(chan int)}),
			wantErr: "failed to encode payload",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := tc.pipe.Args()
			if diff := testutil.DiffErrString(err, tc.wantErr); diff != "" {
				t.Fatal(diff)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("args mismatch (-want, +got):\n%s", diff)
			}
		})
	}
}

func TestRequest_DoesNotModifyOptions(t *testing.T) {
	t.Parallel()

	opts := &Options{Silent: true}
	if _, err := Get("https://example.com", opts).Args(); err != nil {
		t.Fatal(err)
	}
	if opts.URL != "" {
		t.Errorf("expected options to be untouched, got URL %q", opts.URL)
	}
}

func TestRequest_UnsupportedMethodIsInvalidValue(t *testing.T) {
	t.Parallel()

	_, err := Request("TRACE", "https://example.com", nil).Args()
	if diff := testutil.DiffErrIs(err, args.ErrInvalidValue); diff != "" {
		t.Error(diff)
	}
}
