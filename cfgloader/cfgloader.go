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

// Package cfgloader loads configuration from YAML and environment variables.
package cfgloader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sethvargo/go-envconfig"
	"gopkg.in/yaml.v3"
)

// Validatable is implemented by configs that can check themselves.
type Validatable interface {
	Validate() error
}

// Defaultable is implemented by configs that fill in values no source set.
type Defaultable interface {
	SetDefaults()
}

type options struct {
	yamlBytes []byte
	yamlFile  string
	envPrefix string
	lookuper  envconfig.Lookuper
}

// Option is the config loading option type.
type Option func(*options) *options

// WithYAML instructs the loader to load config from the given yaml bytes.
func WithYAML(b []byte) Option {
	return func(o *options) *options {
		o.yamlBytes = b
		return o
	}
}

// WithFile instructs the loader to load config from the yaml file at path. It
// takes precedence over [WithYAML].
func WithFile(path string) Option {
	return func(o *options) *options {
		o.yamlFile = path
		return o
	}
}

// WithEnvPrefix instructs the loader to load config from env vars with the
// given prefix.
func WithEnvPrefix(prefix string) Option {
	return func(o *options) *options {
		o.envPrefix = prefix
		return o
	}
}

// WithLookuper instructs the loader to use the given lookuper to find env
// values.
func WithLookuper(lookuper envconfig.Lookuper) Option {
	return func(o *options) *options {
		o.lookuper = lookuper
		return o
	}
}

// Load loads config into cfg. The loading order is:
//
//  1. The existing values in cfg.
//  2. YAML, from a file or bytes. Unknown keys are rejected.
//  3. Env vars.
//  4. SetDefaults, if cfg is [Defaultable].
//
// Values loaded later overwrite earlier ones. Validate is called last if cfg
// is [Validatable].
//
// The config type needs yaml tags to load from yaml and [env tags] to load
// from env vars, e.g.
//
//	type Cfg struct {
//		Image string `yaml:"image,omitempty" env:"IMAGE,overwrite"`
//		Jobs  int    `yaml:"jobs,omitempty" env:"JOBS,overwrite,default=4"`
//	}
//
// [env tags]: https://github.com/sethvargo/go-envconfig
func Load(ctx context.Context, cfg any, opt ...Option) error {
	opts := &options{
		lookuper: envconfig.OsLookuper(),
	}
	for _, o := range opt {
		opts = o(opts)
	}

	b := opts.yamlBytes
	if opts.yamlFile != "" {
		var err error
		if b, err = os.ReadFile(opts.yamlFile); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}
	if b != nil {
		if err := decodeYAML(b, cfg); err != nil {
			return fmt.Errorf("failed to unmarshal yaml: %w", err)
		}
	}

	lookuper := opts.lookuper
	if opts.envPrefix != "" {
		lookuper = envconfig.PrefixLookuper(opts.envPrefix, lookuper)
	}
	if err := envconfig.ProcessWith(ctx, cfg, lookuper); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if d, ok := cfg.(Defaultable); ok {
		d.SetDefaults()
	}

	if v, ok := cfg.(Validatable); ok {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("config invalid: %w", err)
		}
	}
	return nil
}

// decodeYAML strictly decodes a single document. An empty document leaves cfg
// unchanged.
func decodeYAML(b []byte, cfg any) error {
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err //nolint:wrapcheck // Wrapped by the caller.
	}
	return nil
}
