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

// Package version holds the build information of dul.
package version

import (
	"github.com/KernelPryanic/dagger-utilities-library/buildinfo"
)

var (
	// Name is the binary name.
	Name = "dul"

	// Version is overridden by the release build.
	Version = buildinfo.Version()

	// Commit is the git sha.
	Commit = buildinfo.Commit()

	OSArch = buildinfo.OSArch()

	// HumanVersion is printed by -version.
	HumanVersion = buildinfo.Human(Name, Version, Commit, OSArch)
)
