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

package testutil

import (
	"fmt"
	"os"
	"strconv"
	"testing"
)

// IntegrationEnv is the environment variable that enables integration tests,
// such as the ones that start containers.
const IntegrationEnv = "TEST_INTEGRATION"

// IsIntegration reports whether IntegrationEnv is set to a true value.
func IsIntegration(tb testing.TB) bool {
	tb.Helper()
	isInteg, err := parseIntegration(os.Getenv(IntegrationEnv))
	if err != nil {
		tb.Fatal(err)
	}
	return isInteg
}

// SkipIfNotIntegration skips the test if [IsIntegration] returns false.
func SkipIfNotIntegration(tb testing.TB) {
	tb.Helper()
	if !IsIntegration(tb) {
		tb.Skipf("%s is not set, skipping integration test", IntegrationEnv)
	}
}

func parseIntegration(v string) (bool, error) {
	if v == "" {
		return false, nil
	}
	isInteg, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("failed to parse %s: %w", IntegrationEnv, err)
	}
	return isInteg, nil
}
