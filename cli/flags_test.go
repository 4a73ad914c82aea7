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

package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/KernelPryanic/dagger-utilities-library/logging"
	"github.com/KernelPryanic/dagger-utilities-library/testutil"
)

func ptrTo[T any](v T) *T {
	return &v
}

func TestFlagSet_Help(t *testing.T) {
	t.Parallel()

	fs := NewFlagSet()

	sec1 := fs.NewSection("RUN OPTIONS")
	sec1.BoolVar(&BoolVar{
		Name:   "dry-run",
		Usage:  "Print commands instead of running them.",
		Target: ptrTo(false),
	})
	sec1.Int64Var(&Int64Var{
		Name:    "concurrency",
		Usage:   "Steps to run at once.",
		Default: 4,
		Hidden:  true,
		Target:  ptrTo(int64(0)),
	})

	sec2 := fs.NewSection("CONTAINER OPTIONS")
	sec2.StringVar(&StringVar{
		Name:    "image",
		Usage:   "Image to run steps in.",
		Aliases: []string{"i", "img"},
		Example: "alpine:3.19",
		Default: "alpine",
		EnvVar:  "DUL_IMAGE",
		Target:  ptrTo(""),
	})

	help := fs.Help()
	for _, want := range []string{
		"RUN OPTIONS",
		"    -dry-run\n",
		`-i, -img, -image="alpine:3.19"`,
		`Image to run steps in. The default value is "alpine".`,
		"DUL_IMAGE environment variable",
	} {
		if !strings.Contains(help, want) {
			t.Errorf("expected\n\n%s\n\nto include %q", help, want)
		}
	}
	if strings.Contains(help, "concurrency") {
		t.Errorf("expected\n\n%s\n\nto not include the hidden flag", help)
	}
}

func TestFlagSet_Parse(t *testing.T) {
	t.Parallel()

	type flags struct {
		dryRun      bool
		image       string
		executor    string
		concurrency int64
		timeout     time.Duration
		mounts      []string
	}

	cases := []struct {
		name    string
		args    []string
		env     map[string]string
		want    flags
		wantErr string
	}{
		{
			name: "defaults",
			want: flags{executor: "local", timeout: 30 * time.Minute},
		},
		{
			name: "all",
			args: []string{
				"-dry-run",
				"-image", "golang:1.24",
				"-executor", "container",
				"-concurrency", "8",
				"-timeout", "90s",
				"-mount", "/a:/a,/b:/b", "-mount", "/c:/c",
				"pipeline.yaml",
			},
			want: flags{
				dryRun:      true,
				image:       "golang:1.24",
				executor:    "container",
				concurrency: 8,
				timeout:     90 * time.Second,
				mounts:      []string{"/a:/a", "/b:/b", "/c:/c"},
			},
		},
		{
			name: "env",
			env: map[string]string{
				"DUL_EXECUTOR":    "container",
				"DUL_CONCURRENCY": "2",
				"DUL_TIMEOUT":     "not-a-duration",
			},
			want: flags{executor: "container", concurrency: 2, timeout: 30 * time.Minute},
		},
		{
			name:    "invalid_enum",
			args:    []string{"-executor", "ssh"},
			want:    flags{executor: "local", timeout: 30 * time.Minute},
			wantErr: `invalid value "ssh" for flag -executor: must be one of ["local" "container"]`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var got flags
			fs := NewFlagSet(WithLookupEnv(MapLookuper(tc.env)))
			f := fs.NewSection("OPTIONS")
			f.BoolVar(&BoolVar{Name: "dry-run", Target: &got.dryRun})
			f.StringVar(&StringVar{Name: "image", Target: &got.image})
			f.EnumVar(&EnumVar{
				Name:    "executor",
				Values:  []string{"local", "container"},
				Default: "local",
				EnvVar:  "DUL_EXECUTOR",
				Target:  &got.executor,
			})
			f.Int64Var(&Int64Var{Name: "concurrency", EnvVar: "DUL_CONCURRENCY", Target: &got.concurrency})
			f.DurationVar(&DurationVar{Name: "timeout", Default: 30 * time.Minute, EnvVar: "DUL_TIMEOUT", Target: &got.timeout})
			f.StringSliceVar(&StringSliceVar{Name: "mount", Target: &got.mounts})

			err := fs.Parse(tc.args)
			if diff := testutil.DiffErrString(err, tc.wantErr); diff != "" {
				t.Fatal(diff)
			}
			if diff := cmp.Diff(tc.want, got, cmp.AllowUnexported(flags{})); diff != "" {
				t.Errorf("parsed flags (-want, +got):\n%s", diff)
			}
		})
	}
}

func TestFlagSet_AfterParse(t *testing.T) {
	t.Parallel()

	var image string
	fs := NewFlagSet()
	fs.NewSection("OPTIONS").StringVar(&StringVar{Name: "image", Target: &image})

	var calls []string
	fs.AfterParse(func(existingErr error) error {
		calls = append(calls, "first")
		if image == "" {
			return fmt.Errorf("-image is required")
		}
		return nil
	})
	fs.AfterParse(func(existingErr error) error {
		calls = append(calls, "second")
		panic("boom")
	})

	err := fs.Parse([]string{"file.yaml"})
	for _, want := range []string{"-image is required", "panic: boom"} {
		if diff := testutil.DiffErrString(err, want); diff != "" {
			t.Error(diff)
		}
	}
	if diff := cmp.Diff([]string{"first", "second"}, calls); diff != "" {
		t.Errorf("calls (-want, +got):\n%s", diff)
	}
	if got, want := fs.Arg(0), "file.yaml"; got != want {
		t.Errorf("Arg(0) = %q, want %q", got, want)
	}
}

func TestFlag_Panics(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		v    *Var[string]
	}{
		{name: "target", v: &Var[string]{Name: "x"}},
		{name: "parser", v: &Var[string]{Name: "x", Target: ptrTo("")}},
		{name: "printer", v: &Var[string]{
			Name:   "x",
			Target: ptrTo(""),
			Parser: func(s string) (string, error) { return s, nil },
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			defer func() {
				r := recover()
				if r == nil || !strings.Contains(fmt.Sprint(r), "missing "+tc.name) {
					t.Errorf("expected panic about missing %s, got %v", tc.name, r)
				}
			}()
			Flag(NewFlagSet().NewSection("S"), tc.v)
		})
	}
}

func TestLogLevelVar(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	cases := []struct {
		name      string
		args      []string
		wantLevel slog.Level
		wantError string
	}{
		{
			name:      "keeps_logger_level",
			wantLevel: slog.LevelWarn,
		},
		{
			name:      "long",
			args:      []string{"-log-level", "debug"},
			wantLevel: slog.LevelDebug,
		},
		{
			name:      "short",
			args:      []string{"-l", "error"},
			wantLevel: slog.LevelError,
		},
		{
			name:      "invalid",
			args:      []string{"-log-level", "loud"},
			wantLevel: slog.LevelWarn,
			wantError: `invalid value "loud" for flag -log-level`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			logger := logging.New(io.Discard, slog.LevelWarn, logging.FormatJSON, false)

			set := NewFlagSet()
			set.NewSection("GENERAL OPTIONS").LogLevelVar(&LogLevelVar{Logger: logger})

			err := set.Parse(tc.args)
			if diff := testutil.DiffErrString(err, tc.wantError); diff != "" {
				t.Error(diff)
			}

			if !logger.Handler().Enabled(ctx, tc.wantLevel) {
				t.Errorf("expected handler to be enabled at %s", tc.wantLevel)
			}
			if logger.Handler().Enabled(ctx, tc.wantLevel-1) {
				t.Errorf("expected handler to be disabled below %s", tc.wantLevel)
			}
		})
	}
}
