// Copyright 2023 The Authors (see AUTHORS file)
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package logging is an opinionated structured logging library based on
// [log/slog].
//
// Command lines are logged at info, their outcome at debug, so a pipeline run
// at the default level shows what was executed without the noise.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"

	"github.com/KernelPryanic/dagger-utilities-library/timeutil"
)

// contextKey is a private string type to prevent collisions in the context map.
type contextKey string

// loggerKey points to the value in the context where the logger is stored.
const loggerKey = contextKey("logger")

// defaultLoggerOnce builds the default logger, which writes to stderr at the
// "info" level. Stdout is left to the commands being executed.
var defaultLoggerOnce = sync.OnceValue(func() *slog.Logger {
	return New(os.Stderr, LevelInfo, DefaultFormat(os.Stderr), false)
})

// New creates a new logger in the specified format that writes to w at the
// provided level. Use [SetLevel] to change the level after creation.
//
// If debug is true, the logging level is set to the lowest possible value
// (meaning all messages will be printed), and the output will include source
// information.
func New(w io.Writer, level slog.Level, format Format, debug bool) *slog.Logger {
	opts := &slog.HandlerOptions{
		ReplaceAttr: attrsEncoder(),
	}

	if debug {
		opts.AddSource = true
		level = math.MinInt
	}

	switch format {
	case FormatJSON:
		return slog.New(NewLevelHandler(level, slog.NewJSONHandler(w, opts)))
	case FormatText:
		return slog.New(NewLevelHandler(level, slog.NewTextHandler(w, opts)))
	default:
		panic(fmt.Sprintf("unknown log format %q", format))
	}
}

// DefaultFormat picks [FormatText] when f is a terminal and [FormatJSON]
// otherwise, such as on a CI runner.
func DefaultFormat(f *os.File) Format {
	if f != nil && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		return FormatText
	}
	return FormatJSON
}

// NewFromEnv creates a logger configured from the environment. It sources the
// following environment variables, first checking any with the prefix, then
// falling back to the global unprefixed value:
//
//   - LOG_LEVEL: string representation of the log level. It panics if no such log level exists.
//   - LOG_FORMAT: format in which to output logs (e.g. json, text). It panics if no such format exists.
//   - LOG_DEBUG: enable the most detailed debug logging. It panics iff the given value is not a valid boolean.
//   - LOG_TARGET: "stdout" or "stderr".
//
// Defaults for unset variables are customized with [Option] values like
// [WithDefaultLevel].
func NewFromEnv(envPrefix string, opts ...Option) *slog.Logger {
	logger, err := newFromEnv(envPrefix, opts...)
	if err != nil {
		panic(err)
	}
	return logger
}

// options is a holding structure for configurable options.
type options struct {
	level  slog.Level
	format *Format
	debug  bool
	target *os.File
	getenv func(s string) string
}

// Option represents a configuration function for the logger. It's primarily
// used with [NewFromEnv] to set defaults.
type Option func(o *options) *options

// WithDefaultLevel sets the default level of the logger if no value is set.
func WithDefaultLevel(l slog.Level) Option {
	return func(o *options) *options {
		o.level = l
		return o
	}
}

// WithDefaultFormat sets the default format of the logger if no value is set.
// Without it the format follows [DefaultFormat] for the target.
func WithDefaultFormat(f Format) Option {
	return func(o *options) *options {
		o.format = &f
		return o
	}
}

// WithDefaultDebug sets the default debug mode of the logger if no value is set.
func WithDefaultDebug(b bool) Option {
	return func(o *options) *options {
		o.debug = b
		return o
	}
}

// WithDefaultTarget sets the default output of the logger if no value is set.
// If you use something other than [os.Stdout] or [os.Stderr], the caller is
// responsible for closing the provided [os.File] handle.
func WithDefaultTarget(t *os.File) Option {
	return func(o *options) *options {
		o.target = t
		return o
	}
}

// WithGetenv overrides the function to get envvars. It's primarily used for
// testing.
func WithGetenv(f func(string) string) Option {
	return func(o *options) *options {
		o.getenv = f
		return o
	}
}

func newFromEnv(envPrefix string, opts ...Option) (*slog.Logger, error) {
	o := &options{
		level:  LevelInfo,
		target: os.Stderr,
		getenv: os.Getenv,
	}
	for _, opt := range opts {
		o = opt(o)
	}

	if k, v := multiGetenv(o.getenv, envPrefix+"LOG_LEVEL", "LOG_LEVEL"); v != "" {
		level, err := LookupLevel(v)
		if err != nil {
			return nil, fmt.Errorf("log level: invalid value for %s: %w", k, err)
		}
		o.level = level
	}

	if k, v := multiGetenv(o.getenv, envPrefix+"LOG_TARGET", "LOG_TARGET"); v != "" {
		target, err := LookupTarget(v)
		if err != nil {
			return nil, fmt.Errorf("log target: invalid value for %s: %w", k, err)
		}
		o.target = target
	}

	format := DefaultFormat(o.target)
	if o.format != nil {
		format = *o.format
	}
	if k, v := multiGetenv(o.getenv, envPrefix+"LOG_FORMAT", "LOG_FORMAT"); v != "" {
		f, err := LookupFormat(v)
		if err != nil {
			return nil, fmt.Errorf("log format: invalid value for %s: %w", k, err)
		}
		format = f
	}

	if k, v := multiGetenv(o.getenv, envPrefix+"LOG_DEBUG", "LOG_DEBUG"); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("log debug: invalid value for %s: %w", k, err)
		}
		o.debug = debug
	}

	return New(o.target, o.level, format, o.debug), nil
}

// multiGetenv returns the first non-empty environment variable among ss,
// along with its key.
func multiGetenv(f func(string) string, ss ...string) (string, string) {
	if len(ss) == 0 {
		return "", ""
	}

	for _, s := range ss {
		if v := strings.TrimSpace(f(s)); v != "" {
			return s, v
		}
	}
	return ss[0], ""
}

// SetLevel adjusts the level on the provided logger. The handler on the given
// logger must be a [LevelableHandler] or else this function panics. If you
// created a logger through this package, it will automatically satisfy that
// interface.
//
// This function is safe for concurrent use.
//
// It returns the provided logger for convenience and easier chaining.
func SetLevel(logger *slog.Logger, level slog.Level) *slog.Logger {
	if typ, ok := logger.Handler().(LevelableHandler); ok {
		typ.SetLevel(level)
		return logger
	}

	panic("handler is not capable of setting levels")
}

// DefaultLogger returns the process-wide default logger.
func DefaultLogger() *slog.Logger {
	return defaultLoggerOnce()
}

// WithLogger creates a new context with the provided logger attached.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext returns the logger stored in the context. If no such logger
// exists, a default logger is returned.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return logger
	}
	return DefaultLogger()
}

// attrsEncoder renders levels with this package's names and durations in
// their short human form.
func attrsEncoder() func([]string, slog.Attr) slog.Attr {
	return func(groups []string, a slog.Attr) slog.Attr {
		if a.Key == slog.LevelKey && len(groups) == 0 {
			if lvl, ok := a.Value.Any().(slog.Level); ok {
				a.Value = LevelSlogValue(lvl)
			}
		}

		if a.Value.Kind() == slog.KindDuration {
			a.Value = slog.StringValue(timeutil.HumanDuration(a.Value.Duration()))
		}

		return a
	}
}
