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

// Package buildinfo reads build information embedded by the Go toolchain, so
// a binary reports a useful version whether it was built from a release,
// installed with "go install" or built from a checkout.
//
// The values can still be overridden with -ldflags "-X".
package buildinfo

import (
	"runtime"
	"runtime/debug"
)

// Version returns the main module version, or "source" when the binary was
// built from a local checkout.
func Version() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		if v := info.Main.Version; v != "" && v != "(devel)" {
			return v
		}
	}
	return "source"
}

// Commit returns the VCS revision the binary was built from, or "HEAD".
func Commit() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" && setting.Value != "" {
				return setting.Value
			}
		}
	}
	return "HEAD"
}

// OSArch returns the platform, such as "linux/amd64".
func OSArch() string {
	return runtime.GOOS + "/" + runtime.GOARCH
}

// Human formats a version line: "NAME VERSION (COMMIT, OS/ARCH)".
func Human(name, version, commit, osArch string) string {
	return name + " " + version + " (" + commit + ", " + osArch + ")"
}
