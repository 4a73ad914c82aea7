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

package terraform

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"

	"github.com/KernelPryanic/dagger-utilities-library/args"
)

// LoadVarFile reads a .tfvars (or .tfvars.json) file and returns its
// variables in file order, ready to be passed as "-var" parameters.
func LoadVarFile(path string) (args.Pairs, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read var file: %w", err)
	}
	return ParseVars(src, path)
}

// ParseVars parses variable definitions. Files ending in ".json" are parsed as
// JSON, everything else as native HCL syntax. Strings, numbers and booleans
// become their literal; collections are rendered in HCL syntax, which is what
// "-var" expects for complex values.
func ParseVars(src []byte, filename string) (args.Pairs, error) {
	parser := hclparse.NewParser()

	var file *hcl.File
	var diags hcl.Diagnostics
	if filepath.Ext(filename) == ".json" {
		file, diags = parser.ParseJSON(src, filename)
	} else {
		file, diags = parser.ParseHCL(src, filename)
	}
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, diags)
	}

	attrs, diags := file.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to read variables from %s: %w", filename, diags)
	}

	sorted := make([]*hcl.Attribute, 0, len(attrs))
	for _, attr := range attrs {
		sorted = append(sorted, attr)
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Range.Start.Byte < sorted[j].Range.Start.Byte
	})

	out := make(args.Pairs, 0, len(sorted))
	for _, attr := range sorted {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("variable %q: %w", attr.Name, diags)
		}
		s, err := varValue(val)
		if err != nil {
			return nil, fmt.Errorf("variable %q: %w", attr.Name, err)
		}
		out = append(out, args.Pair{Key: attr.Name, Value: s})
	}
	return out, nil
}

func varValue(v cty.Value) (string, error) {
	if !v.IsWhollyKnown() {
		return "", fmt.Errorf("value is not known")
	}
	if v.IsNull() {
		return "null", nil
	}

	switch v.Type() {
	case cty.String:
		return v.AsString(), nil
	case cty.Number:
		return v.AsBigFloat().Text('f', -1), nil
	case cty.Bool:
		return strconv.FormatBool(v.True()), nil
	}
	return string(hclwrite.TokensForValue(v).Bytes()), nil
}
