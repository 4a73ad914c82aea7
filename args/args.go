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

// Package args compiles named, typed, possibly-absent parameters into the
// ordered token list handed to an external command.
//
// A [Schema] owns one command level (the top-level flags of a tool, or the
// flags of one of its sub-commands). It is an ordered list of entries, each
// pairing a parameter name with a [Kind] that knows how to turn a single value
// into zero or more tokens:
//
//	var buildSchema = args.NewSchema(
//	  args.Param("file", args.Once("--file")),
//	  args.Param("no_cache", args.Flag("--no-cache")),
//	  args.Param("tags", args.Repeat("--tag")),
//	  args.Required("context", args.Positional()),
//	)
//
// Parameters are supplied as a typed struct whose fields carry an "arg" tag,
// or directly as [Values]:
//
//	type BuildOptions struct {
//	  File    string   `arg:"file"`
//	  NoCache bool     `arg:"no_cache"`
//	  Tags    []string `arg:"tags"`
//	  Context string   `arg:"context"`
//	}
//
//	tokens, err := buildSchema.Compile(&BuildOptions{Tags: []string{"a", "b"}, Context: "."})
//	// tokens == ["--tag", "a", "--tag", "b", "."]
//
// Output order is always the schema's declaration order, never the order in
// which the caller assembled its parameters.
package args

import "errors"

var (
	// ErrKindMismatch is returned when the shape of a supplied value (scalar,
	// sequence or mapping) does not match the kind declared for it.
	ErrKindMismatch = errors.New("argument kind mismatch")

	// ErrMissingRequiredArgument is returned when a required parameter is absent
	// or is an empty collection.
	ErrMissingRequiredArgument = errors.New("missing required argument")

	// ErrUnknownParameter is returned when a parameter is supplied that the
	// schema does not declare.
	ErrUnknownParameter = errors.New("unknown parameter")

	// ErrInvalidValue is returned when a value is outside of the set of values
	// the kind accepts.
	ErrInvalidValue = errors.New("invalid argument value")
)
