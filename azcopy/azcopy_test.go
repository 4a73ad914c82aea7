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

package azcopy

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/KernelPryanic/dagger-utilities-library/args"
	"github.com/KernelPryanic/dagger-utilities-library/pipe"
	"github.com/KernelPryanic/dagger-utilities-library/pointer"
	"github.com/KernelPryanic/dagger-utilities-library/testutil"
)

func TestCLI(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		pipe    *pipe.Pipe
		want    []string
		wantErr string
	}{
		{
			name: "login_identity",
			pipe: New(&Options{OutputLevel: OutputLevelQuiet}).Login(&LoginOptions{
				Identity:         true,
				IdentityClientID: "abc",
			}).Pipe,
			want: []string{
				"azcopy", "--output-level=quiet",
				"login", "--identity", "--identity-client-id=abc",
			},
		},
		{
			name: "copy",
			pipe: New(nil).Copy(&CopyOptions{
				Extra:       pipe.Extra{Args: []string{"--log-level=ERROR"}},
				Source:      "site/",
				Destination: "https://acct.blob.core.windows.net/$web",
				BlobType:    BlobTypeBlockBlob,
				Metadata:    args.Pairs{{Key: "team", Value: "infra"}, {Key: "build", Value: 42}},
				Overwrite:   OverwriteIfSourceNewer,
				PutMD5:      true,
				Recursive:   true,
			}).Pipe,
			want: []string{
				"azcopy", "copy", "--log-level=ERROR",
				"site/", "https://acct.blob.core.windows.net/$web",
				"--blob-type=BlockBlob",
				"--metadata=team=infra;build=42",
				"--overwrite=ifSourceNewer",
				"--put-md5", "--recursive",
			},
		},
		{
			name: "sync_delete_destination",
			pipe: New(nil).Sync(&SyncOptions{
				Source:            "a",
				Destination:       "b",
				DeleteDestination: pointer.To(true),
				ExcludePattern:    []string{"*.tmp", "*.log"},
			}).Pipe,
			want: []string{
				"azcopy", "sync", "a", "b",
				"--delete-destination=true",
				"--exclude-pattern=*.tmp;*.log",
			},
		},
		{
			name: "remove",
			pipe: New(nil).Remove(&RemoveOptions{
				Target:          "https://acct.blob.core.windows.net/c/old",
				DeleteSnapshots: SnapshotRemovalInclude,
				Recursive:       true,
			}).Pipe,
			want: []string{
				"azcopy", "remove", "https://acct.blob.core.windows.net/c/old",
				"--delete-snapshots=include", "--recursive",
			},
		},
		{
			name:    "copy_requires_both_ends",
			pipe:    New(nil).Copy(&CopyOptions{Source: "a"}).Pipe,
			wantErr: `azcopy: copy: missing required argument "destination"`,
		},
		{
			name:    "invalid_overwrite",
			pipe:    New(nil).Copy(&CopyOptions{Source: "a", Destination: "b", Overwrite: "always"}).Pipe,
			wantErr: `"always" is not one of`,
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

func TestPairList(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		in      any
		want    string
		wantErr string
	}{
		{
			name: "map_sorted",
			in:   map[string]any{"b": "2", "a": 1},
			want: "a=1&b=2",
		},
		{
			name: "string_map",
			in:   map[string]string{"env": "prod"},
			want: "env=prod",
		},
		{
			name:    "scalar",
			in:      "env=prod",
			wantErr: "argument kind mismatch",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := pairList("&")(tc.in)
			if diff := testutil.DiffErrString(err, tc.wantErr); diff != "" {
				t.Fatal(diff)
			}
			if got != tc.want {
				t.Errorf("expected %q to be %q", got, tc.want)
			}
		})
	}
}

func TestCatalogue_CoversOptions(t *testing.T) {
	t.Parallel()

	// Every field of every options struct must be declared by its command;
	// compiling a zero value would otherwise fail with an unknown parameter.
	for _, tc := range []struct {
		cmd  *pipe.Command
		opts any
	}{
		{loginCmd, &LoginOptions{}},
		{copyCmd, &CopyOptions{Source: "a", Destination: "b"}},
		{syncCmd, &SyncOptions{Source: "a", Destination: "b"}},
		{removeCmd, &RemoveOptions{Target: "a"}},
	} {
		if _, err := tc.cmd.Compile(tc.opts, nil); err != nil {
			t.Errorf("%s: %v", tc.cmd.Name, err)
		}
	}
}
