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

package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/kr/text"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"

	"github.com/KernelPryanic/dagger-utilities-library/logging"
	"github.com/KernelPryanic/dagger-utilities-library/timeutil"
)

const maxLineLength = 80

// LookupEnvFunc looks up an environment variable, like [os.LookupEnv].
type LookupEnvFunc = func(string) (string, bool)

// MapLookuper returns a [LookupEnvFunc] that reads from m instead of the
// environment.
func MapLookuper(m map[string]string) LookupEnvFunc {
	return func(s string) (string, bool) {
		v, ok := m[s]
		return v, ok
	}
}

// AfterParseFunc runs after flags are parsed. It receives the parse error, if
// any.
type AfterParseFunc func(existingErr error) error

// FlagSet holds the flags of a command, grouped in sections.
type FlagSet struct {
	flagSet         *flag.FlagSet
	sections        []*FlagSection
	lookupEnv       LookupEnvFunc
	afterParseFuncs []AfterParseFunc
}

// Option is an option to [NewFlagSet].
type Option func(fs *FlagSet) *FlagSet

// WithLookupEnv sets the function used to read the EnvVar of flags.
func WithLookupEnv(fn LookupEnvFunc) Option {
	return func(fs *FlagSet) *FlagSet {
		if fn != nil {
			fs.lookupEnv = fn
		}
		return fs
	}
}

// NewFlagSet creates an empty flag set.
func NewFlagSet(opts ...Option) *FlagSet {
	f := flag.NewFlagSet("", flag.ContinueOnError)
	f.Usage = func() {}
	f.SetOutput(io.Discard)

	fs := &FlagSet{
		flagSet:   f,
		lookupEnv: os.LookupEnv,
	}
	for _, opt := range opts {
		fs = opt(fs)
	}
	return fs
}

// FlagSection is a named group of flags. Groups only affect help output; all
// flags share one namespace.
type FlagSection struct {
	name      string
	flagNames []string

	flagSet   *flag.FlagSet
	lookupEnv LookupEnvFunc
}

// NewSection adds a section. Names are conventionally upper case ("RUN
// OPTIONS").
func (f *FlagSet) NewSection(name string) *FlagSection {
	fs := &FlagSection{
		name:      name,
		flagSet:   f.flagSet,
		lookupEnv: f.lookupEnv,
	}
	f.sections = append(f.sections, fs)
	return fs
}

// AfterParse registers fn to run at the end of [FlagSet.Parse], in
// registration order. Use it for cross-flag validation.
func (f *FlagSet) AfterParse(fn AfterParseFunc) {
	if fn != nil {
		f.afterParseFuncs = append(f.afterParseFuncs, fn)
	}
}

// Arg returns the i'th remaining argument.
func (f *FlagSet) Arg(i int) string {
	return f.flagSet.Arg(i)
}

// Args returns the arguments left after the flags.
func (f *FlagSet) Args() []string {
	return f.flagSet.Args()
}

// Lookup returns the named flag, or nil.
func (f *FlagSet) Lookup(name string) *flag.Flag {
	return f.flagSet.Lookup(name)
}

// Parse parses args and runs the [AfterParseFunc]s. All errors are joined.
func (f *FlagSet) Parse(args []string) error {
	merr := f.flagSet.Parse(args)

	for _, fn := range f.afterParseFuncs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					merr = errors.Join(merr, fmt.Errorf("panic: %v", r))
				}
			}()
			merr = errors.Join(merr, fn(merr))
		}()
	}
	return merr //nolint:wrapcheck // Want passthrough
}

// Help renders every section and its visible flags.
func (f *FlagSet) Help() string {
	var b strings.Builder

	for _, set := range f.sections {
		names := slices.Clone(set.flagNames)
		sort.Strings(names)

		fmt.Fprintf(&b, "%s\n\n", set.name)
		for _, name := range names {
			fl := set.flagSet.Lookup(name)
			v, ok := fl.Value.(Value)
			if !ok {
				panic(fmt.Sprintf("flag %q has unexpected type %T", name, fl.Value))
			}
			if v.Hidden() {
				continue
			}

			aliases := slices.Clone(v.Aliases())
			sort.Slice(aliases, func(i, j int) bool {
				return len(aliases[i]) < len(aliases[j])
			})
			all := make([]string, 0, len(aliases)+1)
			for _, a := range aliases {
				all = append(all, "-"+a)
			}
			all = append(all, "-"+fl.Name)

			if v.IsBoolFlag() {
				fmt.Fprintf(&b, "    %s\n", strings.Join(all, ", "))
			} else {
				fmt.Fprintf(&b, "    %s=%q\n", strings.Join(all, ", "), v.Example())
			}
			fmt.Fprintf(&b, "%s\n\n", wrapAtLengthWithPadding(fl.Usage, 8))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// Predictors returns the completion predictor of every flag, aliases
// included.
func (f *FlagSet) Predictors() map[string]complete.Predictor {
	out := make(map[string]complete.Predictor)
	f.flagSet.VisitAll(func(fl *flag.Flag) {
		if v, ok := fl.Value.(Value); ok && !v.Hidden() {
			out[fl.Name] = v.Predictor()
		}
	})
	return out
}

// Value is a [flag.Value] with the metadata used for help and completions.
type Value interface {
	flag.Value

	Get() any
	Aliases() []string

	// Example is a sample input shown in help, such as "alpine:3.19".
	Example() string

	Hidden() bool
	IsBoolFlag() bool
	Predictor() complete.Predictor
}

// ParserFunc parses a flag value.
type ParserFunc[T any] func(val string) (T, error)

// PrinterFunc prints a flag value.
type PrinterFunc[T any] func(cur T) string

// SetterFunc stores a parsed value. The default overwrites the target.
type SetterFunc[T any] func(cur *T, val T)

// Var declares a flag of any type. The typed helpers on [FlagSection] fill in
// Parser and Printer.
type Var[T any] struct {
	Name    string
	Aliases []string
	Usage   string
	Example string
	Default T
	Hidden  bool
	IsBool  bool

	// EnvVar, when set and present, overrides Default.
	EnvVar string

	Target *T

	Parser  ParserFunc[T]
	Printer PrinterFunc[T]
	Setter  SetterFunc[T]

	// Predict defaults to predicting nothing for boolean flags and something
	// for the others.
	Predict complete.Predictor
}

// Flag declares a flag on the section. It panics if the target, parser or
// printer is missing.
func Flag[T any](f *FlagSection, i *Var[T]) {
	switch {
	case i.Target == nil:
		panic(fmt.Sprintf("flag %q: missing target", i.Name))
	case i.Parser == nil:
		panic(fmt.Sprintf("flag %q: missing parser", i.Name))
	case i.Printer == nil:
		panic(fmt.Sprintf("flag %q: missing printer", i.Name))
	}

	predictor := i.Predict
	if predictor == nil {
		predictor = predict.Something
		if i.IsBool {
			predictor = predict.Nothing
		}
	}

	setter := i.Setter
	if setter == nil {
		setter = func(cur *T, val T) { *cur = val }
	}

	initial := i.Default
	if i.EnvVar != "" {
		if v, ok := f.lookupEnv(i.EnvVar); ok {
			if t, err := i.Parser(v); err == nil {
				initial = t
			}
		}
	}
	setter(i.Target, initial)

	example := i.Example
	if example == "" {
		example = fmt.Sprintf("%T", *new(T))
	}

	usage := i.Usage
	if v := i.Printer(i.Default); v != "" {
		usage += fmt.Sprintf(" The default value is %q.", v)
	}
	if i.EnvVar != "" {
		usage += fmt.Sprintf(" This option can also be set with the %s environment variable.", i.EnvVar)
	}

	fv := &flagValue[T]{
		target:    i.Target,
		hidden:    i.Hidden,
		isBool:    i.IsBool,
		example:   example,
		parser:    i.Parser,
		printer:   i.Printer,
		setter:    setter,
		predictor: predictor,
		aliases:   i.Aliases,
	}
	f.flagNames = append(f.flagNames, i.Name)
	f.flagSet.Var(fv, i.Name, usage)

	// Aliases are real flags without usage; help skips them.
	for _, alias := range i.Aliases {
		f.flagSet.Var(fv, alias, "")
	}
}

var _ Value = (*flagValue[any])(nil)

type flagValue[T any] struct {
	target  *T
	hidden  bool
	isBool  bool
	example string

	parser    ParserFunc[T]
	printer   PrinterFunc[T]
	setter    SetterFunc[T]
	predictor complete.Predictor
	aliases   []string
}

func (f *flagValue[T]) Set(s string) error {
	v, err := f.parser(s)
	if err != nil {
		return err
	}
	f.setter(f.target, v)
	return nil
}

func (f *flagValue[T]) Get() any                      { return *f.target }
func (f *flagValue[T]) Aliases() []string             { return f.aliases }
func (f *flagValue[T]) String() string                { return f.printer(*f.target) }
func (f *flagValue[T]) Example() string               { return f.example }
func (f *flagValue[T]) Hidden() bool                  { return f.hidden }
func (f *flagValue[T]) IsBoolFlag() bool              { return f.isBool }
func (f *flagValue[T]) Predictor() complete.Predictor { return f.predictor }

// BoolVar declares a boolean flag. Name flags so that false is the default
// (-dry-run, not -execute).
type BoolVar struct {
	Name    string
	Aliases []string
	Usage   string
	Default bool
	Hidden  bool
	EnvVar  string
	Target  *bool
}

// BoolVar declares a boolean flag.
func (f *FlagSection) BoolVar(i *BoolVar) {
	Flag(f, &Var[bool]{
		Name:    i.Name,
		Aliases: i.Aliases,
		Usage:   i.Usage,
		IsBool:  true,
		Default: i.Default,
		Hidden:  i.Hidden,
		EnvVar:  i.EnvVar,
		Target:  i.Target,
		Parser:  strconv.ParseBool,
		Printer: func(v bool) string {
			if !v {
				return ""
			}
			return "true"
		},
	})
}

// StringVar declares a string flag.
type StringVar struct {
	Name    string
	Aliases []string
	Usage   string
	Example string
	Default string
	Hidden  bool
	EnvVar  string
	Predict complete.Predictor
	Target  *string
}

// StringVar declares a string flag.
func (f *FlagSection) StringVar(i *StringVar) {
	Flag(f, &Var[string]{
		Name:    i.Name,
		Aliases: i.Aliases,
		Usage:   i.Usage,
		Example: i.Example,
		Default: i.Default,
		Hidden:  i.Hidden,
		EnvVar:  i.EnvVar,
		Predict: i.Predict,
		Target:  i.Target,
		Parser:  func(s string) (string, error) { return s, nil },
		Printer: func(v string) string { return v },
	})
}

// EnumVar declares a string flag restricted to a set of values, which are
// also its completions.
type EnumVar struct {
	Name    string
	Aliases []string
	Usage   string
	Default string
	Hidden  bool
	EnvVar  string
	Values  []string
	Target  *string
}

// EnumVar declares a string flag restricted to i.Values.
func (f *FlagSection) EnumVar(i *EnumVar) {
	if len(i.Values) == 0 {
		panic(fmt.Sprintf("flag %q: no values", i.Name))
	}

	Flag(f, &Var[string]{
		Name:    i.Name,
		Aliases: i.Aliases,
		Usage:   fmt.Sprintf("%s Valid values are %s.", i.Usage, strings.Join(i.Values, ", ")),
		Example: i.Values[len(i.Values)-1],
		Default: i.Default,
		Hidden:  i.Hidden,
		EnvVar:  i.EnvVar,
		Predict: predict.Set(i.Values),
		Target:  i.Target,
		Parser: func(s string) (string, error) {
			if !slices.Contains(i.Values, s) {
				return "", fmt.Errorf("must be one of %q", i.Values)
			}
			return s, nil
		},
		Printer: func(v string) string { return v },
	})
}

// Int64Var declares an integer flag.
type Int64Var struct {
	Name    string
	Aliases []string
	Usage   string
	Example string
	Default int64
	Hidden  bool
	EnvVar  string
	Target  *int64
}

// Int64Var declares an integer flag.
func (f *FlagSection) Int64Var(i *Int64Var) {
	Flag(f, &Var[int64]{
		Name:    i.Name,
		Aliases: i.Aliases,
		Usage:   i.Usage,
		Example: i.Example,
		Default: i.Default,
		Hidden:  i.Hidden,
		EnvVar:  i.EnvVar,
		Target:  i.Target,
		Parser:  func(s string) (int64, error) { return strconv.ParseInt(s, 10, 64) },
		Printer: func(v int64) string {
			if v == 0 {
				return ""
			}
			return strconv.FormatInt(v, 10)
		},
	})
}

// DurationVar declares a duration flag such as "30m".
type DurationVar struct {
	Name    string
	Aliases []string
	Usage   string
	Example string
	Default time.Duration
	Hidden  bool
	EnvVar  string
	Target  *time.Duration
}

// DurationVar declares a duration flag.
func (f *FlagSection) DurationVar(i *DurationVar) {
	Flag(f, &Var[time.Duration]{
		Name:    i.Name,
		Aliases: i.Aliases,
		Usage:   i.Usage,
		Example: i.Example,
		Default: i.Default,
		Hidden:  i.Hidden,
		EnvVar:  i.EnvVar,
		Predict: predict.Set{"30s", "5m", "30m", "1h"},
		Target:  i.Target,
		Parser:  time.ParseDuration,
		Printer: func(v time.Duration) string {
			if v == 0 {
				return ""
			}
			return timeutil.HumanDuration(v)
		},
	})
}

// StringSliceVar declares a repeatable flag. Each use may also carry a comma
// separated list; values accumulate.
type StringSliceVar struct {
	Name    string
	Aliases []string
	Usage   string
	Example string
	Default []string
	Hidden  bool
	EnvVar  string
	Predict complete.Predictor
	Target  *[]string
}

// StringSliceVar declares a repeatable flag.
func (f *FlagSection) StringSliceVar(i *StringSliceVar) {
	Flag(f, &Var[[]string]{
		Name:    i.Name,
		Aliases: i.Aliases,
		Usage:   i.Usage,
		Example: i.Example,
		Default: i.Default,
		Hidden:  i.Hidden,
		EnvVar:  i.EnvVar,
		Predict: i.Predict,
		Target:  i.Target,
		Parser: func(s string) ([]string, error) {
			out := make([]string, 0, 1)
			for _, part := range strings.Split(s, ",") {
				if p := strings.TrimSpace(part); p != "" {
					out = append(out, p)
				}
			}
			return out, nil
		},
		Printer: func(v []string) string { return strings.Join(v, ",") },
		Setter:  func(cur *[]string, val []string) { *cur = append(*cur, val...) },
	})
}

// LogLevelVar declares -log-level, which changes the level of Logger as soon
// as it is parsed. The default is the level Logger already has.
type LogLevelVar struct {
	Logger *slog.Logger
	EnvVar string
}

// LogLevelVar declares the -log-level flag.
func (f *FlagSection) LogLevelVar(i *LogLevelVar) {
	names := logging.LevelNames()
	def := currentLevel(i.Logger, names)

	// The level lives in the logger; the target only satisfies Flag.
	var level slog.Level
	Flag(f, &Var[slog.Level]{
		Name:    "log-level",
		Aliases: []string{"l"},
		Usage:   "Sets the logging verbosity. Valid values are " + strings.Join(names, ", ") + ".",
		Example: "debug",
		Default: def,
		EnvVar:  i.EnvVar,
		Predict: predict.Set(names),
		Target:  &level,
		Parser:  logging.LookupLevel,
		Printer: logging.LevelString,
		Setter: func(cur *slog.Level, val slog.Level) {
			*cur = val
			if i.Logger != nil {
				logging.SetLevel(i.Logger, val)
			}
		},
	})
}

// currentLevel returns the most verbose named level logger has enabled.
func currentLevel(logger *slog.Logger, names []string) slog.Level {
	if logger == nil {
		return slog.LevelInfo
	}
	for _, name := range names {
		l, err := logging.LookupLevel(name)
		if err == nil && logger.Handler().Enabled(context.Background(), l) {
			return l
		}
	}
	return slog.LevelInfo
}

// wrapAtLengthWithPadding wraps s at maxLineLength and indents every line by
// pad spaces.
func wrapAtLengthWithPadding(s string, pad int) string {
	wrapped := text.Wrap(s, maxLineLength-pad)
	lines := strings.Split(wrapped, "\n")
	for i, line := range lines {
		lines[i] = strings.Repeat(" ", pad) + line
	}
	return strings.Join(lines, "\n")
}
