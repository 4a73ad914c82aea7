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

package run

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/KernelPryanic/dagger-utilities-library/testutil"
)

// These depend on a POSIX shell being available.
func TestStart(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		argv       []string
		opts       []Option
		wantOut    string
		wantErrOut string
		wantCode   int
		wantErr    string
	}{
		{
			name:    "stdout",
			argv:    []string{"echo", "foo", "bar   bazz"},
			wantOut: "foo bar   bazz\n",
		},
		{
			name:    "stdin",
			argv:    []string{"cat"},
			opts:    []Option{WithStdin(strings.NewReader("piped"))},
			wantOut: "piped",
		},
		{
			name:    "extra_env",
			argv:    []string{"sh", "-c", "echo $A$B"},
			opts:    []Option{WithEnv("A=1"), WithEnv("B=2")},
			wantOut: "12\n",
		},
		{
			name:    "denied_env",
			argv:    []string{"sh", "-c", "echo \"[$HOME]\""},
			opts:    []Option{WithEnvFilter(nil, []string{"HOME"})},
			wantOut: "[]\n",
		},
		{
			name:       "non_zero_is_not_an_error",
			argv:       []string{"sh", "-c", "echo nope >&2; exit 4"},
			wantErrOut: "nope\n",
			wantCode:   4,
		},
		{
			name:     "not_found",
			argv:     []string{"echoooocrapimistyped"},
			wantCode: -1,
			wantErr:  `failed to run "echoooocrapimistyped"`,
		},
		{
			name:     "empty",
			wantCode: -1,
			wantErr:  "no command to run",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var stdout, stderr bytes.Buffer
			opts := append([]Option{WithOutput(&stdout, &stderr)}, tc.opts...)

			code, err := Start(t.Context(), tc.argv, opts...)
			if diff := testutil.DiffErrString(err, tc.wantErr); diff != "" {
				t.Error(diff)
			}
			if got, want := code, tc.wantCode; got != want {
				t.Errorf("expected exit code %d to be %d", got, want)
			}
			if diff := cmp.Diff(tc.wantOut, stdout.String()); diff != "" {
				t.Errorf("stdout mismatch (-want, +got):\n%s", diff)
			}
			if diff := cmp.Diff(tc.wantErrOut, stderr.String()); diff != "" {
				t.Errorf("stderr mismatch (-want, +got):\n%s", diff)
			}
		})
	}
}

func TestStart_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	code, err := Start(ctx, []string{"sleep", "5"}, WithWaitDelay(time.Millisecond))
	if diff := testutil.DiffErrString(err, "context canceled"); diff != "" {
		t.Error(diff)
	}
	if got, want := code, -1; got != want {
		t.Errorf("expected exit code %d to be %d", got, want)
	}
}

func TestEnviron(t *testing.T) {
	t.Parallel()

	inherited := []string{"HOME=/root", "PATH=/bin", "AWS_KEY=x", "AWS_REGION=eu"}

	cases := []struct {
		name  string
		allow []string
		deny  []string
		extra []string
		want  []string
	}{
		{
			name: "inherit_all",
			want: inherited,
		},
		{
			name:  "allow",
			allow: []string{"AWS_*"},
			want:  []string{"AWS_KEY=x", "AWS_REGION=eu"},
		},
		{
			name:  "deny_wins",
			allow: []string{"*"},
			deny:  []string{"AWS_KEY"},
			want:  []string{"HOME=/root", "PATH=/bin", "AWS_REGION=eu"},
		},
		{
			name:  "extra_after_filter",
			deny:  []string{"PATH"},
			extra: []string{"PATH=/usr/bin", "TF_IN_AUTOMATION=1"},
			want:  []string{"HOME=/root", "AWS_KEY=x", "AWS_REGION=eu", "PATH=/usr/bin", "TF_IN_AUTOMATION=1"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := environ(inherited, tc.allow, tc.deny, tc.extra)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("environ mismatch (-want, +got):\n%s", diff)
			}
		})
	}
}
