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

package logging

import (
	"io"
	"log/slog"
	"math"
	"strings"
	"testing"
)

// TestLogger creates a new logger for use in tests. Records go to tb.Log, so
// they only show up for failing tests or when run with verbose (-v). The
// level can be changed with [SetLevel].
func TestLogger(tb testing.TB) *slog.Logger {
	tb.Helper()

	encode := attrsEncoder()
	w := &testingWriter{tb}
	return slog.New(NewLevelHandler(LevelDebug, slog.NewTextHandler(w, &slog.HandlerOptions{
		AddSource: true,
		Level:     slog.Level(math.MinInt),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Test output already carries timestamps.
			if a.Key == slog.TimeKey && len(groups) == 0 {
				return slog.Attr{}
			}
			return encode(groups, a)
		},
	})))
}

var _ io.Writer = (*testingWriter)(nil)

type testingWriter struct {
	tb testing.TB
}

func (w *testingWriter) Write(b []byte) (int, error) {
	if testing.Verbose() {
		w.tb.Log(strings.TrimSuffix(string(b), "\n"))
	}
	return len(b), nil
}
