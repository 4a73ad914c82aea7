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

package logging

import (
	"fmt"
	"os"
	"strings"
)

// Format is the output format of a logger.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// FormatNames returns the supported format names.
func FormatNames() []string {
	return []string{string(FormatJSON), string(FormatText)}
}

// LookupFormat parses a format name, case-insensitively.
func LookupFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case FormatJSON, FormatText:
		return f, nil
	default:
		return "", fmt.Errorf("no such format %q, valid formats are %q", name, FormatNames())
	}
}

// LookupTarget resolves "stdout" or "stderr" to the matching file.
func LookupTarget(name string) (*os.File, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	default:
		return nil, fmt.Errorf("no such target %q, valid targets are %q", name, []string{"stdout", "stderr"})
	}
}
