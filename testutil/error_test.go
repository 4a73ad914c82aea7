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

package testutil

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestDiffErrString(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		msg      string
		err      error
		wantDiff string
	}{
		{
			name: "both_empty",
		},
		{
			name:     "unexpected_error",
			err:      fmt.Errorf("unknown tool %q", "make"),
			wantDiff: `got error "unknown tool \"make\"" but want <nil>`,
		},
		{
			name:     "missing_error",
			msg:      "missing required argument",
			wantDiff: `got error <nil> but want an error containing "missing required argument"`,
		},
		{
			name:     "mismatch",
			msg:      "unknown",
			err:      fmt.Errorf("invalid"),
			wantDiff: `got error "invalid" but want an error containing "unknown"`,
		},
		{
			name: "substring_match",
			msg:  `parameter "x"`,
			err:  fmt.Errorf(`add: unknown parameter "x"`),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got, want := DiffErrString(tc.err, tc.msg), tc.wantDiff; got != want {
				t.Errorf("DiffErrString(%v, %q): expected %q to be %q", tc.err, tc.msg, got, want)
			}
		})
	}
}

func TestDiffErrString_LongMessagesIncludeDiff(t *testing.T) {
	t.Parallel()

	got := DiffErrString(errors.New("apk: add: missing required argument"), "apk: del: missing required argument")
	if !strings.Contains(got, "diff was (-got,+want)") {
		t.Errorf("expected %q to include a diff", got)
	}
}

func TestDiffErrIs(t *testing.T) {
	t.Parallel()

	errSentinel := errors.New("sentinel")

	cases := []struct {
		name     string
		err      error
		want     error
		wantDiff string
	}{
		{
			name: "both_nil",
		},
		{
			name: "wrapped",
			err:  fmt.Errorf("add: %w", errSentinel),
			want: errSentinel,
		},
		{
			name:     "unexpected_error",
			err:      errSentinel,
			wantDiff: `got error "sentinel" but want <nil>`,
		},
		{
			name:     "missing_error",
			want:     errSentinel,
			wantDiff: `got error <nil> but want an error wrapping "sentinel"`,
		},
		{
			name:     "not_wrapped",
			err:      errors.New("other"),
			want:     errSentinel,
			wantDiff: `got error "other" but want an error wrapping "sentinel"`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got, want := DiffErrIs(tc.err, tc.want), tc.wantDiff; got != want {
				t.Errorf("DiffErrIs(%v, %v): expected %q to be %q", tc.err, tc.want, got, want)
			}
		})
	}
}
