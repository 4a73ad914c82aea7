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

package pipeline

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/KernelPryanic/dagger-utilities-library/args"
)

var _ yaml.Unmarshaler = (*Params)(nil)

// Params are the parameters of a step or command, keyed by parameter name.
// Nested mappings decode to [args.Pairs] so repeated flags follow the order
// of the document rather than key order.
type Params map[string]any

// Values returns p as compiler input.
func (p Params) Values() args.Values {
	return args.Values(p)
}

// UnmarshalYAML implements [yaml.Unmarshaler].
func (p *Params) UnmarshalYAML(n *yaml.Node) error {
	n = resolveAlias(n)
	switch n.Kind {
	case yaml.ScalarNode:
		if n.Tag == "!!null" {
			*p = nil
			return nil
		}
	case yaml.MappingNode:
		out := make(Params, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			var key string
			if err := resolveAlias(n.Content[i]).Decode(&key); err != nil {
				return fmt.Errorf("line %d: parameter name: %w", n.Content[i].Line, err)
			}
			if _, ok := out[key]; ok {
				return fmt.Errorf("line %d: duplicate parameter %q", n.Content[i].Line, key)
			}
			v, err := decodeParam(n.Content[i+1])
			if err != nil {
				return fmt.Errorf("parameter %q: %w", key, err)
			}
			out[key] = v
		}
		*p = out
		return nil
	}
	return fmt.Errorf("line %d: params must be a mapping", n.Line)
}

// decodeParam decodes a parameter value. Mappings become [args.Pairs] in
// document order, sequences become []any and scalars get their YAML type.
func decodeParam(n *yaml.Node) (any, error) {
	n = resolveAlias(n)
	switch n.Kind {
	case yaml.MappingNode:
		out := make(args.Pairs, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			var key string
			if err := resolveAlias(n.Content[i]).Decode(&key); err != nil {
				return nil, fmt.Errorf("line %d: key: %w", n.Content[i].Line, err)
			}
			v, err := decodeParam(n.Content[i+1])
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", key, err)
			}
			out = append(out, args.Pair{Key: key, Value: v})
		}
		return out, nil
	case yaml.SequenceNode:
		out := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := decodeParam(c)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	default:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return v, nil
	}
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}
