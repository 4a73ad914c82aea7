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

package buildinfo

import (
	"strings"
	"testing"
)

func TestHuman(t *testing.T) {
	t.Parallel()

	if got, want := Human("dul", "v0.3.0", "abc123", "linux/amd64"), "dul v0.3.0 (abc123, linux/amd64)"; got != want {
		t.Errorf("Human() = %q, want %q", got, want)
	}
}

func TestDefaults(t *testing.T) {
	t.Parallel()

	if Version() == "" {
		t.Errorf("Version() is empty")
	}
	if Commit() == "" {
		t.Errorf("Commit() is empty")
	}
	if got := OSArch(); !strings.Contains(got, "/") {
		t.Errorf("OSArch() = %q, want OS/ARCH", got)
	}
}
