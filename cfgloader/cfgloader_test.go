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

package cfgloader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sethvargo/go-envconfig"

	"github.com/KernelPryanic/dagger-utilities-library/testutil"
)

type fakeCfg struct {
	StrVal string `yaml:"str_val,omitempty" env:"STR_VAL,overwrite,default=foo"`
}

type fakeCfgValidatable struct {
	StrVal string `yaml:"str_val,omitempty" env:"STR_VAL,overwrite,default=foo"`
	NumVal int    `yaml:"num_val,omitempty" env:"NUM_VAL,overwrite,default=1"`
}

func (c *fakeCfgValidatable) Validate() error {
	if c.StrVal == "fail_me" {
		return fmt.Errorf("StrVal cannot be 'fail_me'")
	}
	return nil
}

type fakeCfgDefaultable struct {
	StrVal string `yaml:"str_val,omitempty" env:"STR_VAL,overwrite"`
}

func (c *fakeCfgDefaultable) SetDefaults() {
	if c.StrVal == "" {
		c.StrVal = "bar"
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	cfgFile := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(cfgFile, []byte("str_val: from_file\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		opts    []Option
		input   any
		want    any
		wantErr string
	}{
		{
			name:  "no_option_set_default",
			opts:  []Option{},
			input: &fakeCfgValidatable{},
			want: &fakeCfgValidatable{
				StrVal: "foo",
				NumVal: 1,
			},
		},
		{
			name: "with_yaml",
			opts: []Option{WithYAML([]byte(`str_val: bar
num_val: 2`))},
			input: &fakeCfgValidatable{},
			want: &fakeCfgValidatable{
				StrVal: "bar",
				NumVal: 2,
			},
		},
		{
			name:  "with_empty_yaml",
			opts:  []Option{WithYAML([]byte(""))},
			input: &fakeCfgValidatable{},
			want: &fakeCfgValidatable{
				StrVal: "foo",
				NumVal: 1,
			},
		},
		{
			name:    "with_unknown_yaml_key",
			opts:    []Option{WithYAML([]byte(`str_vall: typo`))},
			input:   &fakeCfgValidatable{},
			wantErr: "field str_vall not found",
		},
		{
			name:  "with_file",
			opts:  []Option{WithYAML([]byte(`str_val: ignored`)), WithFile(cfgFile)},
			input: &fakeCfg{},
			want:  &fakeCfg{StrVal: "from_file"},
		},
		{
			name:    "with_missing_file",
			opts:    []Option{WithFile(filepath.Join(t.TempDir(), "missing.yaml"))},
			input:   &fakeCfg{},
			wantErr: "failed to read config file",
		},
		{
			name: "with_prefix_lookuper",
			opts: []Option{
				WithEnvPrefix("TEST_"),
				WithLookuper(envconfig.MapLookuper(map[string]string{
					"TEST_STR_VAL": "bar",
					"TEST_NUM_VAL": "2",
				})),
			},
			input: &fakeCfgValidatable{},
			want: &fakeCfgValidatable{
				StrVal: "bar",
				NumVal: 2,
			},
		},
		{
			name: "env_overwrites_yaml",
			opts: []Option{
				WithYAML([]byte(`num_val: 5`)),
				WithLookuper(envconfig.MapLookuper(map[string]string{
					"NUM_VAL": "7",
				})),
			},
			input: &fakeCfgValidatable{},
			want: &fakeCfgValidatable{
				StrVal: "foo",
				NumVal: 7,
			},
		},
		{
			name: "config_already_has_values",
			opts: []Option{},
			input: &fakeCfgValidatable{
				StrVal: "bar",
			},
			want: &fakeCfgValidatable{
				StrVal: "bar",
				NumVal: 1,
			},
		},
		{
			name: "validation_failure",
			opts: []Option{},
			input: &fakeCfgValidatable{
				StrVal: "fail_me",
			},
			wantErr: "StrVal cannot be 'fail_me'",
		},
		{
			name:  "set_defaults_with_initial_value_no_change",
			opts:  []Option{},
			input: &fakeCfgDefaultable{StrVal: "abc"},
			want:  &fakeCfgDefaultable{StrVal: "abc"},
		},
		{
			name:  "set_defaults",
			opts:  []Option{WithLookuper(envconfig.MapLookuper(nil))},
			input: &fakeCfgDefaultable{},
			want:  &fakeCfgDefaultable{StrVal: "bar"},
		},
		{
			name: "set_defaults_after_env",
			opts: []Option{WithLookuper(envconfig.MapLookuper(map[string]string{
				"STR_VAL": "xyz",
			}))},
			input: &fakeCfgDefaultable{},
			want:  &fakeCfgDefaultable{StrVal: "xyz"},
		},
		{
			name:  "not_validatable_defaultable_ok",
			input: &fakeCfg{},
			want:  &fakeCfg{StrVal: "foo"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := tc.input
			err := Load(context.Background(), got, tc.opts...)
			if diff := testutil.DiffErrString(err, tc.wantErr); diff != "" {
				t.Errorf("Load got unexpected err: %s", diff)
			}
			if err != nil {
				return
			}

			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("Loaded config (-want,+got):\n%s", diff)
			}
		})
	}
}
