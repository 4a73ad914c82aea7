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
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/sethvargo/go-envconfig"

	"github.com/KernelPryanic/dagger-utilities-library/cfgloader"
)

// EnvPrefix is the prefix of the environment variables read by [LoadConfig].
const EnvPrefix = "DUL_"

// Executor names.
const (
	ExecutorLocal     = "local"
	ExecutorContainer = "container"
)

// Executors lists the valid executor names.
var Executors = []string{ExecutorLocal, ExecutorContainer}

// Config controls how pipelines are run. Set values override the matching
// settings of the pipeline document.
type Config struct {
	Executor    string        `yaml:"executor,omitempty" env:"EXECUTOR,overwrite"`
	Image       string        `yaml:"image,omitempty" env:"IMAGE,overwrite"`
	Workdir     string        `yaml:"workdir,omitempty" env:"WORKDIR,overwrite"`
	Concurrency int64         `yaml:"concurrency,omitempty" env:"CONCURRENCY,overwrite"`
	Timeout     time.Duration `yaml:"timeout,omitempty" env:"TIMEOUT,overwrite"`
	RetryBase   time.Duration `yaml:"retry_base,omitempty" env:"RETRY_BASE,overwrite"`
}

// SetDefaults fills in the executor and retry base.
func (c *Config) SetDefaults() {
	if c.Executor == "" {
		c.Executor = ExecutorLocal
	}
	if c.RetryBase == 0 {
		c.RetryBase = DefaultRetryBase
	}
}

// Validate checks the config.
func (c *Config) Validate() error {
	var merr error
	if !slices.Contains(Executors, c.Executor) {
		merr = errors.Join(merr, fmt.Errorf("executor must be one of %q, got %q", Executors, c.Executor))
	}
	if c.Concurrency < 0 {
		merr = errors.Join(merr, fmt.Errorf("concurrency must be positive, got %d", c.Concurrency))
	}
	if c.Timeout < 0 {
		merr = errors.Join(merr, fmt.Errorf("timeout must be positive, got %s", c.Timeout))
	}
	if c.RetryBase < 0 {
		merr = errors.Join(merr, fmt.Errorf("retry base must be positive, got %s", c.RetryBase))
	}
	return merr
}

// LoadConfig loads the config from an optional YAML file and from DUL_
// environment variables, in that order. A nil lookuper reads the process
// environment.
func LoadConfig(ctx context.Context, file string, lookuper envconfig.Lookuper) (*Config, error) {
	opts := []cfgloader.Option{cfgloader.WithEnvPrefix(EnvPrefix)}
	if file != "" {
		opts = append(opts, cfgloader.WithFile(file))
	}
	if lookuper != nil {
		opts = append(opts, cfgloader.WithLookuper(lookuper))
	}

	var c Config
	if err := cfgloader.Load(ctx, &c, opts...); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &c, nil
}

// Apply overrides the settings of p with the values set in c.
func (c *Config) Apply(p *Pipeline) {
	if c.Image != "" {
		p.Image = c.Image
	}
	if c.Workdir != "" {
		p.Workdir = c.Workdir
	}
	if c.Concurrency > 0 {
		p.Concurrency = c.Concurrency
	}
}
