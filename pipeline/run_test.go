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
	"context"
	"errors"
	"slices"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/KernelPryanic/dagger-utilities-library/logging"
	"github.com/KernelPryanic/dagger-utilities-library/pipe"
	"github.com/KernelPryanic/dagger-utilities-library/pipe/pipetest"
	"github.com/KernelPryanic/dagger-utilities-library/testutil"
)

func testPlan() *Plan {
	return &Plan{
		Stages: []*PlannedStage{
			{
				Name: "setup",
				Jobs: []*Job{
					{Stage: "setup", Name: "deps", Argv: []string{"apk", "add", "git"}, Workdir: "/src"},
				},
			},
			{
				Name: "check",
				Jobs: []*Job{
					{Stage: "check", Name: "lint", Argv: []string{"tflint"}, Retries: 2},
					{Stage: "check", Name: "fmt", Argv: []string{"terraform", "fmt", "-check"}},
				},
			},
			{
				Name: "publish",
				Jobs: []*Job{
					{Stage: "publish", Name: "push", Argv: []string{"docker", "push", "app"}},
				},
			},
		},
	}
}

func failOn(bin string, err error) func([]string, string) (*pipe.Result, error) {
	return func(argv []string, _ string) (*pipe.Result, error) {
		if argv[0] == bin {
			return &pipe.Result{ExitCode: 1}, err
		}
		return &pipe.Result{}, nil
	}
}

func TestPlan_Run(t *testing.T) {
	t.Parallel()

	ctx := logging.WithLogger(context.Background(), logging.TestLogger(t))
	rec := &pipetest.Recorder{}

	results, err := testPlan().Run(ctx, rec, WithConcurrency(2))
	if err != nil {
		t.Fatal(err)
	}

	calls := rec.Calls()
	if got, want := len(calls), 4; got != want {
		t.Fatalf("expected %d calls, got %d", want, got)
	}
	if diff := cmp.Diff(pipetest.Call{Argv: []string{"apk", "add", "git"}, Workdir: "/src"}, calls[0]); diff != "" {
		t.Errorf("first call (-want, +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"docker", "push", "app"}, calls[3].Argv); diff != "" {
		t.Errorf("last call (-want, +got):\n%s", diff)
	}

	// Jobs of one stage may run in any order; results keep enqueue order.
	got := make([]string, 0, len(results))
	for _, r := range results {
		got = append(got, r.Stage+"/"+r.Job)
		if r.Err != nil {
			t.Errorf("job %s failed: %v", r.Job, r.Err)
		}
	}
	want := []string{"setup/deps", "check/lint", "check/fmt", "publish/push"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("results (-want, +got):\n%s", diff)
	}
}

func TestPlan_Run_StageFailure(t *testing.T) {
	t.Parallel()

	ctx := logging.WithLogger(context.Background(), logging.TestLogger(t))
	rec := &pipetest.Recorder{
		Respond: failOn("terraform", &pipe.ExecError{Argv: []string{"terraform"}, ExitCode: 3}),
	}

	results, err := testPlan().Run(ctx, rec, WithRetryBase(time.Millisecond))
	if diff := testutil.DiffErrString(err, `stage "check": fmt: command ["terraform"] exited non-zero (3)`); diff != "" {
		t.Fatal(diff)
	}

	for _, c := range rec.Calls() {
		if c.Argv[0] == "docker" {
			t.Errorf("stage after the failed one ran: %q", c.Argv)
		}
	}
	if got, want := len(results), 3; got != want {
		t.Errorf("expected %d results, got %d", want, got)
	}
}

func TestPlan_Run_Retries(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		failures  int64
		err       error
		wantCalls int64
		wantErr   string
	}{
		{
			name:      "recovers",
			failures:  2,
			err:       &pipe.ExecError{Argv: []string{"tflint"}, ExitCode: 2},
			wantCalls: 3,
		},
		{
			name:      "exhausted",
			failures:  5,
			err:       &pipe.ExecError{Argv: []string{"tflint"}, ExitCode: 2},
			wantCalls: 3,
			wantErr:   `stage "check": lint: command ["tflint"] exited non-zero (2)`,
		},
		{
			name:      "not_retryable",
			failures:  5,
			err:       errors.New("executor is closed"),
			wantCalls: 1,
			wantErr:   "lint: executor is closed",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctx := logging.WithLogger(context.Background(), logging.TestLogger(t))

			var lintCalls atomic.Int64
			rec := &pipetest.Recorder{
				Respond: func(argv []string, _ string) (*pipe.Result, error) {
					if argv[0] != "tflint" {
						return &pipe.Result{}, nil
					}
					if lintCalls.Add(1) <= tc.failures {
						return &pipe.Result{ExitCode: 2}, tc.err
					}
					return &pipe.Result{Stdout: "ok"}, nil
				},
			}

			_, err := testPlan().Run(ctx, rec, WithRetryBase(time.Millisecond))
			if diff := testutil.DiffErrString(err, tc.wantErr); diff != "" {
				t.Error(diff)
			}
			if got, want := lintCalls.Load(), tc.wantCalls; got != want {
				t.Errorf("expected %d lint calls, got %d", want, got)
			}
		})
	}
}

func TestPlan_Run_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(logging.WithLogger(context.Background(), logging.TestLogger(t)))
	cancel()

	rec := &pipetest.Recorder{}
	_, err := testPlan().Run(ctx, rec)
	if err == nil {
		t.Fatal("expected an error")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if calls := rec.Calls(); len(calls) != 0 {
		t.Errorf("expected no calls, got %q", calls)
	}
}

func TestPlan_Run_Concurrency(t *testing.T) {
	t.Parallel()

	ctx := logging.WithLogger(context.Background(), logging.TestLogger(t))

	jobs := make([]*Job, 0, 6)
	for _, name := range []string{"a", "b", "c", "d", "e", "f"} {
		jobs = append(jobs, &Job{Stage: "s", Name: name, Argv: []string{"true", name}})
	}
	plan := &Plan{Stages: []*PlannedStage{{Name: "s", Jobs: jobs}}}

	var running, peak atomic.Int64
	rec := &pipetest.Recorder{
		Respond: func(argv []string, _ string) (*pipe.Result, error) {
			n := running.Add(1)
			defer running.Add(-1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			return &pipe.Result{}, nil
		},
	}

	if _, err := plan.Run(ctx, rec, WithConcurrency(2)); err != nil {
		t.Fatal(err)
	}
	if got := peak.Load(); got > 2 {
		t.Errorf("expected at most 2 jobs at once, got %d", got)
	}

	got := make([]string, 0, len(jobs))
	for _, c := range rec.Calls() {
		got = append(got, c.Argv[1])
	}
	slices.Sort(got)
	if diff := cmp.Diff([]string{"a", "b", "c", "d", "e", "f"}, got); diff != "" {
		t.Errorf("calls (-want, +got):\n%s", diff)
	}
}
