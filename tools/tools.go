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

// Package tools registers the descriptor of every supported tool so that
// pipelines can refer to them by name.
package tools

import (
	"github.com/KernelPryanic/dagger-utilities-library/apk"
	"github.com/KernelPryanic/dagger-utilities-library/azcopy"
	"github.com/KernelPryanic/dagger-utilities-library/curl"
	"github.com/KernelPryanic/dagger-utilities-library/docker"
	"github.com/KernelPryanic/dagger-utilities-library/mkdocs"
	"github.com/KernelPryanic/dagger-utilities-library/pants"
	"github.com/KernelPryanic/dagger-utilities-library/pip"
	"github.com/KernelPryanic/dagger-utilities-library/pipe"
	"github.com/KernelPryanic/dagger-utilities-library/poetry"
	"github.com/KernelPryanic/dagger-utilities-library/terraform"
	"github.com/KernelPryanic/dagger-utilities-library/tflint"
	"github.com/KernelPryanic/dagger-utilities-library/tfsec"
)

// All returns the descriptors of every supported tool.
func All() []*pipe.Tool {
	return []*pipe.Tool{
		apk.Tool,
		azcopy.Tool,
		curl.Tool,
		docker.Tool,
		mkdocs.Tool,
		pants.Tool,
		pip.Tool,
		poetry.Tool,
		terraform.Tool,
		tflint.Tool,
		tfsec.Tool,
	}
}

// Registry returns a new registry holding every supported tool. Callers may
// register more.
func Registry() *pipe.Registry {
	return pipe.NewRegistry(All()...)
}
