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

package mkdocs

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/KernelPryanic/dagger-utilities-library/pipe"
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
			name: "build",
			pipe: New(&Options{Quiet: true}).Build(&BuildOptions{
				Extra:   pipe.Extra{Args: []string{"--no-strict"}},
				Clean:   true,
				Theme:   ThemeReadTheDocs,
				SiteDir: "public",
			}).Pipe,
			want: []string{
				"mkdocs", "--quiet",
				"build", "--clean", "--theme", "readthedocs", "--site-dir", "public", "--no-strict",
			},
		},
		{
			name: "gh_deploy",
			pipe: New(nil).GhDeploy(&GhDeployOptions{
				Message:    "Deployed {sha}",
				RemoteName: "origin",
				Force:      true,
			}).Pipe,
			want: []string{
				"mkdocs", "gh-deploy",
				"--message", "Deployed {sha}", "--remote-name", "origin", "--force",
			},
		},
		{
			name: "new",
			pipe: New(nil).New(&NewOptions{ProjectDirectory: "docs"}).Pipe,
			want: []string{"mkdocs", "new", "docs"},
		},
		{
			name: "serve",
			pipe: New(nil).Serve(&ServeOptions{
				DevAddr: "0.0.0.0:8000",
				Watch:   []string{"src", "theme"},
			}).Pipe,
			want: []string{
				"mkdocs", "serve",
				"--dev-addr", "0.0.0.0:8000", "--watch", "src", "--watch", "theme",
			},
		},
		{
			name:    "new_without_directory",
			pipe:    New(nil).New(nil).Pipe,
			wantErr: `mkdocs: new: missing required argument "project_directory"`,
		},
		{
			name:    "unknown_theme",
			pipe:    New(nil).Build(&BuildOptions{Theme: "material"}).Pipe,
			wantErr: `"material" is not one of`,
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
