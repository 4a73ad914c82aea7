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

package args

import (
	"errors"
	"fmt"
	"slices"
	"sort"
)

// Entry binds a parameter name to the kind that formats it.
type Entry struct {
	Name     string
	Kind     Kind
	Required bool
}

// String renders the entry for help output.
func (e Entry) String() string {
	if e.Required {
		return e.Name + " " + e.Kind.String() + " (required)"
	}
	return e.Name + " " + e.Kind.String()
}

// Param declares an optional parameter.
func Param(name string, kind Kind) Entry {
	return Entry{Name: name, Kind: kind}
}

// Required declares a parameter that must be present and, for sequences and
// mappings, non-empty.
func Required(name string, kind Kind) Entry {
	return Entry{Name: name, Kind: kind, Required: true}
}

// Schema is an ordered, immutable set of parameters for one command level.
// Declaration order is output order.
//
// The zero value and a nil *Schema are both valid empty schemas.
type Schema struct {
	entries []Entry
	index   map[string]int
}

// NewSchema creates a schema from entries. It panics on an empty or duplicate
// name, or on a nil kind.
func NewSchema(entries ...Entry) *Schema {
	s := &Schema{
		entries: make([]Entry, 0, len(entries)),
		index:   make(map[string]int, len(entries)),
	}
	for _, e := range entries {
		if e.Name == "" {
			panic("args: schema entry with empty name")
		}
		if e.Kind == nil {
			panic(fmt.Sprintf("args: schema entry %q has no kind", e.Name))
		}
		if _, ok := s.index[e.Name]; ok {
			panic(fmt.Sprintf("args: duplicate schema entry %q", e.Name))
		}
		s.index[e.Name] = len(s.entries)
		s.entries = append(s.entries, e)
	}
	return s
}

// Len returns the number of entries.
func (s *Schema) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

// Names returns the parameter names in declaration order.
func (s *Schema) Names() []string {
	if s == nil {
		return nil
	}
	out := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e.Name)
	}
	return out
}

// Entries returns a copy of the entries in declaration order.
func (s *Schema) Entries() []Entry {
	if s == nil {
		return nil
	}
	return slices.Clone(s.entries)
}

// Lookup returns the entry for name.
func (s *Schema) Lookup(name string) (Entry, bool) {
	if s == nil {
		return Entry{}, false
	}
	i, ok := s.index[name]
	if !ok {
		return Entry{}, false
	}
	return s.entries[i], true
}

// Compile converts params with [Bag] and processes the result.
func (s *Schema) Compile(params any) ([]string, error) {
	vals, err := Bag(params)
	if err != nil {
		return nil, err
	}
	return s.Process(vals)
}

// Process compiles vals into tokens. Every key in vals must be declared and
// every required entry must be present; both are checked before anything is
// formatted. Entries are then resolved in declaration order and their tokens
// concatenated. The result is never nil.
func (s *Schema) Process(vals Values) ([]string, error) {
	if err := s.check(vals); err != nil {
		return nil, err
	}

	out := make([]string, 0, 2*len(vals))
	if s == nil {
		return out, nil
	}
	for _, e := range s.entries {
		v, ok := vals[e.Name]
		if !ok || IsAbsent(v) {
			continue
		}
		toks, err := e.Kind.Resolve(v)
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", e.Name, err)
		}
		out = append(out, toks...)
	}
	return out, nil
}

func (s *Schema) check(vals Values) error {
	var merr error

	unknown := make([]string, 0, 1)
	for k := range vals {
		if _, ok := s.Lookup(k); !ok {
			unknown = append(unknown, k)
		}
	}
	sort.Strings(unknown)
	for _, k := range unknown {
		merr = errors.Join(merr, fmt.Errorf("%w %q", ErrUnknownParameter, k))
	}

	if s != nil {
		for _, e := range s.entries {
			if e.Required && isEmpty(vals[e.Name]) {
				merr = errors.Join(merr, fmt.Errorf("%w %q", ErrMissingRequiredArgument, e.Name))
			}
		}
	}
	return merr
}
