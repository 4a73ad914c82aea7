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
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// Values is a bag of supplied parameters keyed by parameter name. A missing
// key, a nil value and a nil pointer, slice or map are absent and never
// produce tokens. Any other value is present, including false, 0 and "".
type Values map[string]any

// Valuer is implemented by enumerated values whose command-line token differs
// from their Go representation. String-typed enums do not need it: their
// underlying string is used as-is.
type Valuer interface {
	ArgValue() string
}

// Pair is a single entry of an ordered mapping.
type Pair struct {
	Key   string
	Value any
}

// Pairs is an insertion-ordered mapping. Use it instead of a Go map when the
// order of a [Repeat] fan-out matters.
type Pairs []Pair

// MarshalJSON encodes p as a JSON object with keys in order.
func (p Pairs) MarshalJSON() ([]byte, error) {
	if p == nil {
		return []byte("null"), nil
	}

	var b bytes.Buffer
	b.WriteByte('{')
	for i, pair := range p {
		if i > 0 {
			b.WriteByte(',')
		}
		k, err := json.Marshal(pair.Key)
		if err != nil {
			return nil, err //nolint:wrapcheck // Want passthrough
		}
		v, err := json.Marshal(pair.Value)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", pair.Key, err)
		}
		b.Write(k)
		b.WriteByte(':')
		b.Write(v)
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

// SortedPairs converts m into [Pairs] ordered by key.
func SortedPairs[V any](m map[string]V) Pairs {
	if m == nil {
		return nil
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(Pairs, 0, len(m))
	for _, k := range keys {
		out = append(out, Pair{Key: k, Value: m[k]})
	}
	return out
}

const tagName = "arg"

var pairsType = reflect.TypeOf(Pairs(nil))

// Bag converts params into [Values]. params may be nil, a [Values] (or
// map[string]any), or a struct or pointer to struct. Struct fields are mapped
// by their "arg" tag; untagged fields and fields tagged "-" are skipped, and
// untagged embedded structs are flattened into the parent. A non-pointer
// scalar field holding its zero value is left out, so typed options need a
// pointer (see the pointer package) to pass an explicit false, 0 or "".
func Bag(params any) (Values, error) {
	switch t := params.(type) {
	case nil:
		return Values{}, nil
	case Values:
		return copyValues(t), nil
	case map[string]any:
		return copyValues(t), nil
	}

	rv := reflect.ValueOf(params)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return Values{}, nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, fmt.Errorf("args: cannot build parameters from %T", params)
	}

	out := make(Values, rv.NumField())
	if err := collect(rv, out, make(map[string]struct{})); err != nil {
		return nil, err
	}
	return out, nil
}

func copyValues(in map[string]any) Values {
	out := make(Values, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// collect walks the fields of the struct value rv and stores tagged fields in
// out. seen tracks names across embedded structs, including fields left out
// for being zero.
func collect(rv reflect.Value, out Values, seen map[string]struct{}) error {
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		tag, tagged := field.Tag.Lookup(tagName)

		if field.Anonymous && !tagged {
			fv := rv.Field(i)
			if fv.Kind() == reflect.Pointer {
				if fv.IsNil() {
					continue
				}
				fv = fv.Elem()
			}
			if fv.Kind() == reflect.Struct {
				if err := collect(fv, out, seen); err != nil {
					return err
				}
			}
			continue
		}

		if !tagged || !field.IsExported() {
			continue
		}

		name, _, _ := strings.Cut(tag, ",")
		if name == "" || name == "-" {
			continue
		}
		if _, ok := seen[name]; ok {
			return fmt.Errorf("args: duplicate parameter %q on %s", name, rt)
		}
		seen[name] = struct{}{}

		fv := rv.Field(i)
		if isZeroScalar(fv) {
			continue
		}
		out[name] = fv.Interface()
	}
	return nil
}

// isZeroScalar reports whether the struct field fv is a non-pointer scalar
// holding its zero value.
func isZeroScalar(fv reflect.Value) bool {
	switch fv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Slice, reflect.Map:
		return false
	default:
		return fv.IsZero()
	}
}

// shape is the runtime structure of a supplied value.
type shape int

const (
	shapeAbsent shape = iota
	shapeScalar
	shapeSequence
	shapeMapping
)

func (s shape) String() string {
	switch s {
	case shapeAbsent:
		return "absent"
	case shapeScalar:
		return "scalar"
	case shapeSequence:
		return "sequence"
	case shapeMapping:
		return "mapping"
	default:
		return "unknown"
	}
}

// classify dereferences v and reports its shape. Only nil values are absent;
// zero-valued struct fields were already dropped by [Bag].
func classify(v any) (reflect.Value, shape) {
	if v == nil {
		return reflect.Value{}, shapeAbsent
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return reflect.Value{}, shapeAbsent
		}
		rv = rv.Elem()
	}

	if rv.Type() == pairsType {
		if rv.IsNil() {
			return reflect.Value{}, shapeAbsent
		}
		return rv, shapeMapping
	}

	switch rv.Kind() {
	case reflect.Slice:
		if rv.IsNil() {
			return reflect.Value{}, shapeAbsent
		}
		return rv, shapeSequence
	case reflect.Array:
		return rv, shapeSequence
	case reflect.Map:
		if rv.IsNil() {
			return reflect.Value{}, shapeAbsent
		}
		return rv, shapeMapping
	}

	return rv, shapeScalar
}

// IsAbsent reports whether v would be skipped entirely by a [Schema].
func IsAbsent(v any) bool {
	_, s := classify(v)
	return s == shapeAbsent
}

// isEmpty reports whether v is absent, an empty collection, an empty string
// or false.
func isEmpty(v any) bool {
	rv, s := classify(v)
	switch s {
	case shapeAbsent:
		return true
	case shapeSequence, shapeMapping:
		return rv.Len() == 0
	}
	switch rv.Kind() {
	case reflect.String:
		return rv.Len() == 0
	case reflect.Bool:
		return !rv.Bool()
	default:
		return false
	}
}

// Unwrap formats a scalar value as a single token. Enumerated values are
// unwrapped to their literal first: a [Valuer] returns ArgValue, and types
// whose underlying kind is string return that string (never a symbol name).
// Other types fall back to [fmt.Stringer], then to strconv formatting for
// booleans and numbers.
func Unwrap(v any) (string, error) {
	rv, s := classify(v)
	switch s {
	case shapeAbsent:
		return "", nil
	case shapeScalar:
		return formatScalar(rv)
	default:
		return "", fmt.Errorf("%w: cannot format %s value %T as a single token", ErrKindMismatch, s, v)
	}
}

func formatScalar(rv reflect.Value) (string, error) {
	if rv.CanInterface() {
		if v, ok := rv.Interface().(Valuer); ok {
			return v.ArgValue(), nil
		}
	}
	if rv.CanAddr() {
		if v, ok := rv.Addr().Interface().(Valuer); ok {
			return v.ArgValue(), nil
		}
	}

	if rv.Kind() == reflect.String {
		return rv.String(), nil
	}

	if rv.CanInterface() {
		if s, ok := rv.Interface().(fmt.Stringer); ok {
			return s.String(), nil
		}
	}

	switch rv.Kind() {
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), nil
	case reflect.Float32:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 32), nil
	case reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("%w: cannot format %s as a token", ErrKindMismatch, rv.Type())
	}
}

// elements returns the items of a sequence value.
func elements(rv reflect.Value) []any {
	out := make([]any, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		out = append(out, rv.Index(i).Interface())
	}
	return out
}

// entries returns the entries of a mapping value. [Pairs] keep their order, Go
// maps are sorted by key so output is deterministic.
func entries(rv reflect.Value) (Pairs, error) {
	if rv.Type() == pairsType {
		return rv.Interface().(Pairs), nil //nolint:forcetypeassert // checked above
	}

	if rv.Type().Key().Kind() != reflect.String {
		return nil, fmt.Errorf("%w: mapping keys must be strings, got %s", ErrKindMismatch, rv.Type().Key())
	}

	keys := make([]string, 0, rv.Len())
	for _, k := range rv.MapKeys() {
		keys = append(keys, k.String())
	}
	sort.Strings(keys)

	out := make(Pairs, 0, len(keys))
	for _, k := range keys {
		out = append(out, Pair{
			Key:   k,
			Value: rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key())).Interface(),
		})
	}
	return out, nil
}

// AnyPresent reports whether at least one of names is present and non-empty
// in vals. It is meant for cross-parameter checks such as "packages or a
// requirements file".
func AnyPresent(vals Values, names ...string) bool {
	for _, n := range names {
		if !isEmpty(vals[n]) {
			return true
		}
	}
	return false
}
