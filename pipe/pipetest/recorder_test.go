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

package pipetest

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/KernelPryanic/dagger-utilities-library/pipe"
)

func TestRecorder(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	errBoom := errors.New("boom")
	r := &Recorder{
		Respond: func(argv []string, workdir string) (*pipe.Result, error) {
			if argv[0] == "fail" {
				return nil, errBoom
			}
			return &pipe.Result{Stdout: workdir}, nil
		},
	}

	res, err := r.Execute(ctx, []string{"echo", "hi"}, "/src")
	if err != nil {
		t.Fatal(err)
	}
	if got, want := res.Stdout, "/src"; got != want {
		t.Errorf("expected %q to be %q", got, want)
	}

	if _, err := r.Execute(ctx, []string{"fail"}, ""); !errors.Is(err, errBoom) {
		t.Errorf("expected %v to be %v", err, errBoom)
	}

	want := []Call{
		{Argv: []string{"echo", "hi"}, Workdir: "/src"},
		{Argv: []string{"fail"}},
	}
	if diff := cmp.Diff(want, r.Calls()); diff != "" {
		t.Errorf("calls mismatch (-want, +got):\n%s", diff)
	}
}

func TestRecorder_Concurrent(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	r := new(Recorder)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := r.Execute(ctx, []string{"true"}, ""); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	if got, want := len(r.Argvs()), 20; got != want {
		t.Errorf("expected %d calls, got %d", want, got)
	}
}

func TestRecorder_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	r := new(Recorder)
	if _, err := r.Execute(ctx, []string{"true"}, ""); !errors.Is(err, context.Canceled) {
		t.Errorf("expected %v to be %v", err, context.Canceled)
	}
	if got := len(r.Calls()); got != 0 {
		t.Errorf("expected no calls, got %d", got)
	}
}
