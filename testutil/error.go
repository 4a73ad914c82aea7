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

// Package testutil contains helpers shared by the tests of this module.
package testutil

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/go-cmp/cmp"
)

// diffLen is the message length above which a failed match includes a diff.
const diffLen = 20

// DiffErrString returns an empty string if got's message contains want, or
// if both are empty. Otherwise it describes the mismatch. Long or multi-line
// messages get a diff appended.
func DiffErrString(got error, want string) string {
	switch {
	case got == nil && want == "":
		return ""
	case got == nil:
		return fmt.Sprintf("got error <nil> but want an error containing %q", want)
	case want == "":
		return fmt.Sprintf("got error %q but want <nil>", got.Error())
	}

	msg := got.Error()
	if strings.Contains(msg, want) {
		return ""
	}
	out := fmt.Sprintf("got error %q but want an error containing %q", msg, want)
	if len(want) >= diffLen && len(msg) >= diffLen || strings.Contains(want, "\n") && strings.Contains(msg, "\n") {
		out += fmt.Sprintf("; diff was (-got,+want):\n%s", cmp.Diff(msg, want))
	}
	return out
}

// DiffErrIs is like [DiffErrString] for sentinel errors. It returns an empty
// string if got wraps want, or if both are nil.
func DiffErrIs(got, want error) string {
	switch {
	case got == nil && want == nil:
		return ""
	case want == nil:
		return fmt.Sprintf("got error %q but want <nil>", got.Error())
	case got == nil:
		return fmt.Sprintf("got error <nil> but want an error wrapping %q", want.Error())
	case errors.Is(got, want):
		return ""
	default:
		return fmt.Sprintf("got error %q but want an error wrapping %q", got.Error(), want.Error())
	}
}
