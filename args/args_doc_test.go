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

package args_test

import (
	"fmt"

	"github.com/KernelPryanic/dagger-utilities-library/args"
)

type LogLevel string

const LogLevelInfo LogLevel = "info"

type InstallOptions struct {
	Update   bool     `arg:"update"`
	Level    LogLevel `arg:"log_level"`
	Output   string   `arg:"output"`
	Packages []string `arg:"packages"`
}

var installSchema = args.NewSchema(
	args.Param("update", args.Flag("--update")),
	args.Param("log_level", args.Once("--log-level", args.Combined())),
	args.Param("output", args.Once("--output")),
	args.Required("packages", args.Positional(args.Variadic())),
)

func ExampleSchema_Compile() {
	tokens, err := installSchema.Compile(&InstallOptions{
		Update:   true,
		Level:    LogLevelInfo,
		Packages: []string{"curl", "git"},
	})
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("%q\n", tokens)

	// Output:
	// ["--update" "--log-level=info" "curl" "git"]
}

func ExampleSchema_Process() {
	tokens, err := installSchema.Process(args.Values{
		"output":   "file.txt",
		"packages": []string{"curl"},
	})
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("%q\n", tokens)

	_, err = installSchema.Process(args.Values{"packages": []string{}})
	fmt.Println(err)

	// Output:
	// ["--output" "file.txt" "curl"]
	// missing required argument "packages"
}

func ExampleRepeat() {
	tags, _ := args.Repeat("--tag").Resolve([]string{"a", "b", "c"})
	vars, _ := args.Repeat("-var").Resolve(args.Pairs{
		{Key: "region", Value: "eu"},
		{Key: "count", Value: 2},
	})
	fmt.Printf("%q\n%q\n", tags, vars)

	// Output:
	// ["--tag" "a" "--tag" "b" "--tag" "c"]
	// ["-var" "region=eu" "-var" "count=2"]
}
