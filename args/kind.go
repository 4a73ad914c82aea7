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
	"fmt"
	"reflect"
	"slices"
	"strings"
)

// Kind describes how one parameter value becomes zero or more tokens. The set
// of kinds is closed: use [Flag], [Positional], [Once] or [Repeat].
//
// A Kind only ever sees the value of its own parameter, and Resolve is pure:
// the same value always yields the same tokens.
type Kind interface {
	// Resolve formats v. An absent v yields no tokens.
	Resolve(v any) ([]string, error)

	// String describes the kind for help output, e.g. "once(--file)".
	String() string

	isKind()
}

// FormatFunc formats a whole parameter value into a single token.
type FormatFunc func(v any) (string, error)

// PairFormatFunc renders a single mapping entry for a [Repeat] kind.
type PairFormatFunc func(key, value string) string

// Option customizes how a kind formats its values. Options are fixed when the
// schema is built.
type Option func(o *options) *options

type options struct {
	combined   bool
	join       *string
	variadic   bool
	format     FormatFunc
	pairFormat PairFormatFunc
	oneOf      []string
}

// Combined makes [Once] and [Repeat] emit a single "prefix=value" token instead
// of the two tokens "prefix" "value".
func Combined() Option {
	return func(o *options) *options {
		o.combined = true
		return o
	}
}

// Join lets [Once] and [Positional] accept a sequence, joining the formatted
// elements with sep into a single value.
func Join(sep string) Option {
	return func(o *options) *options {
		o.join = &sep
		return o
	}
}

// Variadic lets [Positional] accept a sequence, emitting one token per
// element.
func Variadic() Option {
	return func(o *options) *options {
		o.variadic = true
		return o
	}
}

// Format replaces the default value formatting. For [Repeat] it is applied to
// each element (or each mapping value); otherwise it receives the whole value,
// whatever its shape.
func Format(fn FormatFunc) Option {
	return func(o *options) *options {
		o.format = fn
		return o
	}
}

// PairFormat changes how a [Repeat] kind renders mapping entries. The default
// is "key=value".
func PairFormat(fn PairFormatFunc) Option {
	return func(o *options) *options {
		o.pairFormat = fn
		return o
	}
}

// OneOf restricts formatted values to the given set. Values outside of it fail
// with [ErrInvalidValue].
func OneOf[T ~string](allowed ...T) Option {
	return func(o *options) *options {
		for _, v := range allowed {
			o.oneOf = append(o.oneOf, string(v))
		}
		return o
	}
}

// buildOptions applies opts and panics if the kind does not support one of
// them. Schemas are built at package initialization, so this surfaces as a
// programming error immediately.
func buildOptions(kind string, supported func(o *options) error, opts []Option) *options {
	o := new(options)
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		o = opt(o)
	}
	if err := supported(o); err != nil {
		panic(fmt.Sprintf("args: invalid %s options: %s", kind, err))
	}
	return o
}

// value formats a single value with the configured formatter and validates it
// against the allowed set.
func (o *options) value(v any) (string, error) {
	var s string
	var err error
	if o.format != nil {
		s, err = o.format(v)
	} else {
		s, err = Unwrap(v)
	}
	if err != nil {
		return "", err
	}

	if len(o.oneOf) > 0 && !slices.Contains(o.oneOf, s) {
		return "", fmt.Errorf("%w: %q is not one of %q", ErrInvalidValue, s, o.oneOf)
	}
	return s, nil
}

// joined formats every element of a sequence and joins them.
func (o *options) joined(elems []any) (string, error) {
	parts := make([]string, 0, len(elems))
	for _, e := range elems {
		if IsAbsent(e) {
			continue
		}
		s, err := o.value(e)
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, *o.join), nil
}

// emit renders a prefix/value pair.
func (o *options) emit(prefix, value string) []string {
	if o.combined {
		return []string{prefix + "=" + value}
	}
	return []string{prefix, value}
}

func mismatch(k Kind, s shape, v any) error {
	return fmt.Errorf("%w: %s does not accept a %s value (%T)", ErrKindMismatch, k, s, v)
}

var _ Kind = (*flagKind)(nil)

type flagKind struct {
	tokens []string
}

// Flag emits tokens when its value is true and nothing when it is false or
// absent. The value must be a boolean.
func Flag(tokens ...string) Kind {
	if len(tokens) == 0 {
		panic("args: flag requires at least one token")
	}
	return &flagKind{tokens: slices.Clone(tokens)}
}

func (k *flagKind) isKind() {}

func (k *flagKind) String() string {
	return "flag(" + strings.Join(k.tokens, " ") + ")"
}

func (k *flagKind) Resolve(v any) ([]string, error) {
	rv, s := classify(v)
	switch s {
	case shapeAbsent:
		return nil, nil
	case shapeScalar:
	default:
		return nil, mismatch(k, s, v)
	}

	if rv.Kind() != reflect.Bool {
		return nil, fmt.Errorf("%w: %s expects a boolean, got %T", ErrKindMismatch, k, v)
	}
	if !rv.Bool() {
		return nil, nil
	}
	return slices.Clone(k.tokens), nil
}

var _ Kind = (*positionalKind)(nil)

type positionalKind struct {
	opts *options
}

// Positional emits the formatted value with no prefix. Its position in the
// output is its position in the schema. With [Variadic] it emits one token
// per element of a sequence, with [Join] it joins a sequence into one token.
func Positional(opts ...Option) Kind {
	o := buildOptions("positional", func(o *options) error {
		switch {
		case o.combined:
			return fmt.Errorf("combined is not supported")
		case o.pairFormat != nil:
			return fmt.Errorf("pair format is not supported")
		case o.variadic && o.join != nil:
			return fmt.Errorf("variadic and join are mutually exclusive")
		}
		return nil
	}, opts)
	return &positionalKind{opts: o}
}

func (k *positionalKind) isKind() {}

func (k *positionalKind) String() string {
	switch {
	case k.opts.variadic:
		return "positional(...)"
	case k.opts.join != nil:
		return fmt.Sprintf("positional(join %q)", *k.opts.join)
	default:
		return "positional"
	}
}

func (k *positionalKind) Resolve(v any) ([]string, error) {
	rv, s := classify(v)
	if s == shapeAbsent {
		return nil, nil
	}

	if k.opts.format != nil && !k.opts.variadic {
		out, err := k.opts.value(v)
		if err != nil {
			return nil, err
		}
		return []string{out}, nil
	}

	switch s {
	case shapeScalar:
		out, err := k.opts.value(v)
		if err != nil {
			return nil, err
		}
		return []string{out}, nil
	case shapeSequence:
		switch {
		case k.opts.variadic:
			elems := elements(rv)
			out := make([]string, 0, len(elems))
			for _, e := range elems {
				if IsAbsent(e) {
					continue
				}
				tok, err := k.opts.value(e)
				if err != nil {
					return nil, err
				}
				out = append(out, tok)
			}
			return out, nil
		case k.opts.join != nil:
			out, err := k.opts.joined(elements(rv))
			if err != nil {
				return nil, err
			}
			return []string{out}, nil
		}
	}
	return nil, mismatch(k, s, v)
}

var _ Kind = (*onceKind)(nil)

type onceKind struct {
	prefix string
	opts   *options
}

// Once emits the prefix followed by the formatted value, or the single token
// "prefix=value" with [Combined].
func Once(prefix string, opts ...Option) Kind {
	o := buildOptions("once", func(o *options) error {
		switch {
		case o.variadic:
			return fmt.Errorf("variadic is not supported")
		case o.pairFormat != nil:
			return fmt.Errorf("pair format is not supported")
		}
		return nil
	}, opts)
	return &onceKind{prefix: prefix, opts: o}
}

func (k *onceKind) isKind() {}

func (k *onceKind) String() string {
	if k.opts.combined {
		return "once(" + k.prefix + "=)"
	}
	return "once(" + k.prefix + ")"
}

func (k *onceKind) Resolve(v any) ([]string, error) {
	rv, s := classify(v)
	if s == shapeAbsent {
		return nil, nil
	}

	var val string
	var err error
	switch {
	case k.opts.format != nil, s == shapeScalar:
		val, err = k.opts.value(v)
	case s == shapeSequence && k.opts.join != nil:
		val, err = k.opts.joined(elements(rv))
	default:
		return nil, mismatch(k, s, v)
	}
	if err != nil {
		return nil, err
	}
	return k.opts.emit(k.prefix, val), nil
}

var _ Kind = (*repeatKind)(nil)

type repeatKind struct {
	prefix string
	opts   *options
}

// Repeat emits one prefix/value pair per element of a sequence, in sequence
// order, or one prefix/"key=value" pair per entry of a mapping. Scalars are
// rejected.
func Repeat(prefix string, opts ...Option) Kind {
	o := buildOptions("repeat", func(o *options) error {
		switch {
		case o.variadic:
			return fmt.Errorf("variadic is not supported")
		case o.join != nil:
			return fmt.Errorf("join is not supported")
		}
		return nil
	}, opts)
	if o.pairFormat == nil {
		o.pairFormat = func(k, v string) string { return k + "=" + v }
	}
	return &repeatKind{prefix: prefix, opts: o}
}

func (k *repeatKind) isKind() {}

func (k *repeatKind) String() string {
	if k.opts.combined {
		return "repeat(" + k.prefix + "=)"
	}
	return "repeat(" + k.prefix + ")"
}

func (k *repeatKind) Resolve(v any) ([]string, error) {
	rv, s := classify(v)
	switch s {
	case shapeAbsent:
		return nil, nil
	case shapeSequence:
		elems := elements(rv)
		out := make([]string, 0, 2*len(elems))
		for _, e := range elems {
			if IsAbsent(e) {
				continue
			}
			val, err := k.opts.value(e)
			if err != nil {
				return nil, err
			}
			out = append(out, k.opts.emit(k.prefix, val)...)
		}
		return out, nil
	case shapeMapping:
		pairs, err := entries(rv)
		if err != nil {
			return nil, err
		}
		out := make([]string, 0, 2*len(pairs))
		for _, p := range pairs {
			val := ""
			if !IsAbsent(p.Value) {
				if val, err = k.opts.value(p.Value); err != nil {
					return nil, fmt.Errorf("key %q: %w", p.Key, err)
				}
			}
			out = append(out, k.opts.emit(k.prefix, k.opts.pairFormat(p.Key, val))...)
		}
		return out, nil
	default:
		return nil, mismatch(k, s, v)
	}
}
