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

package container

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/KernelPryanic/dagger-utilities-library/logging"
	"github.com/KernelPryanic/dagger-utilities-library/pipe"
	"github.com/KernelPryanic/dagger-utilities-library/testutil"
)

func TestSplitImage(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in       string
		wantRepo string
		wantTag  string
	}{
		{in: "alpine", wantRepo: "alpine", wantTag: "latest"},
		{in: "alpine:3.19", wantRepo: "alpine", wantTag: "3.19"},
		{in: "ghcr.io/org/tool:v1", wantRepo: "ghcr.io/org/tool", wantTag: "v1"},
		{in: "localhost:5000/tool", wantRepo: "localhost:5000/tool", wantTag: "latest"},
		{in: "localhost:5000/tool:2", wantRepo: "localhost:5000/tool", wantTag: "2"},
		{in: "alpine@sha256:abc", wantRepo: "alpine@sha256:abc", wantTag: ""},
		{in: " ", wantRepo: "", wantTag: ""},
	}

	for _, tc := range cases {
		repo, tag := SplitImage(tc.in)
		if repo != tc.wantRepo || tag != tc.wantTag {
			t.Errorf("SplitImage(%q) got (%q, %q) want (%q, %q)", tc.in, repo, tag, tc.wantRepo, tc.wantTag)
		}
	}
}

func TestWrapWorkdir(t *testing.T) {
	t.Parallel()

	argv := []string{"terraform", "init"}
	if diff := cmp.Diff(argv, wrapWorkdir(argv, "")); diff != "" {
		t.Errorf("expected argv unchanged (-want, +got):\n%s", diff)
	}

	want := []string{"sh", "-c", `cd "$1" && shift && exec "$@"`, "sh", "/src/infra", "terraform", "init"}
	if diff := cmp.Diff(want, wrapWorkdir(argv, "/src/infra")); diff != "" {
		t.Errorf("wrapped mismatch (-want, +got):\n%s", diff)
	}
}

func TestBuildConfig(t *testing.T) {
	t.Parallel()

	got := buildConfig(
		WithKillAfter(time.Minute),
		WithEnv("A=1"),
		WithEnv("B=2"),
		WithMounts("/host:/src"),
		WithWorkdir("/src"),
		WithEndpoint("unix:///var/run/docker.sock"),
		WithUser("1000"),
	)
	want := &config{
		killAfter: time.Minute,
		env:       []string{"A=1", "B=2"},
		mounts:    []string{"/host:/src"},
		workdir:   "/src",
		endpoint:  "unix:///var/run/docker.sock",
		user:      "1000",
	}
	if diff := cmp.Diff(want, got, cmp.AllowUnexported(config{})); diff != "" {
		t.Errorf("config mismatch (-want, +got):\n%s", diff)
	}

	if got := buildConfig().killAfter; got != time.Hour {
		t.Errorf("expected default kill after %s, got %s", time.Hour, got)
	}
}

func TestExecutor_Integration(t *testing.T) {
	t.Parallel()
	testutil.SkipIfNotIntegration(t)

	ctx := logging.WithLogger(t.Context(), logging.TestLogger(t))
	e, err := Start(ctx, "alpine:3.19", WithEnv("DUL_TEST=yes"), WithKillAfter(5*time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := e.Close(); err != nil {
			t.Errorf("failed to close: %v", err)
		}
	})

	res, err := pipe.New("sh", "-c", "echo $DUL_TEST; pwd").Run(ctx, e, "/tmp")
	if err != nil {
		t.Fatal(err)
	}
	if got, want := res.Stdout, "yes\n/tmp\n"; got != want {
		t.Errorf("expected %q to be %q", got, want)
	}

	_, err = pipe.New("sh", "-c", "exit 4").Run(ctx, e, "")
	var execErr *pipe.ExecError
	if !errors.As(err, &execErr) || execErr.ExitCode != 4 {
		t.Errorf("expected exit code 4, got %v", err)
	}
}
