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

package container

import (
	"time"
)

// This file implements the "functional options" pattern.

type config struct {
	killAfter time.Duration
	env       []string
	mounts    []string
	workdir   string
	endpoint  string
	user      string
}

func buildConfig(opts ...Option) *config {
	c := &config{
		// Containers are told to kill themselves after this long in case Close
		// is never called, for example when the process is interrupted.
		killAfter: time.Hour,
	}
	for _, opt := range opts {
		c = opt(c)
	}
	return c
}

// Option sets a configuration option for [Start].
type Option func(*config) *config

// WithKillAfter overrides how long the container lives if it is never closed.
// It must be longer than the longest pipeline run against the container.
func WithKillAfter(d time.Duration) Option {
	return func(c *config) *config {
		c.killAfter = d
		return c
	}
}

// WithEnv sets environment variables, as KEY=VALUE pairs, for the container
// and every command executed in it.
func WithEnv(env ...string) Option {
	return func(c *config) *config {
		c.env = append(c.env, env...)
		return c
	}
}

// WithMounts bind-mounts host paths into the container, as "host:container"
// pairs.
func WithMounts(mounts ...string) Option {
	return func(c *config) *config {
		c.mounts = append(c.mounts, mounts...)
		return c
	}
}

// WithWorkdir sets the container's working directory, used by commands that
// do not request one.
func WithWorkdir(dir string) Option {
	return func(c *config) *config {
		c.workdir = dir
		return c
	}
}

// WithEndpoint connects to a specific Docker daemon instead of the one found
// in the environment.
func WithEndpoint(endpoint string) Option {
	return func(c *config) *config {
		c.endpoint = endpoint
		return c
	}
}

// WithUser runs the container and its commands as user, in any form docker
// accepts ("1000", "1000:1000", "nobody").
func WithUser(user string) Option {
	return func(c *config) *config {
		c.user = user
		return c
	}
}
