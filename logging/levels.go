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

package logging

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

// Levels understood by this package. Notice sits between info and warning and
// is used for pipeline progress that should survive a quieter log level.
const (
	LevelDebug    = slog.LevelDebug
	LevelInfo     = slog.LevelInfo
	LevelNotice   = slog.Level(2)
	LevelWarning  = slog.LevelWarn
	LevelError    = slog.LevelError
	LevelCritical = slog.Level(12)
)

var levelNames = map[slog.Level]string{
	LevelDebug:    "debug",
	LevelInfo:     "info",
	LevelNotice:   "notice",
	LevelWarning:  "warning",
	LevelError:    "error",
	LevelCritical: "critical",
}

// levelAliases maps accepted spellings to levels.
var levelAliases = map[string]slog.Level{
	"debug":    LevelDebug,
	"info":     LevelInfo,
	"notice":   LevelNotice,
	"warn":     LevelWarning,
	"warning":  LevelWarning,
	"error":    LevelError,
	"critical": LevelCritical,
}

// LookupLevel parses a level name, case-insensitively.
func LookupLevel(name string) (slog.Level, error) {
	if lvl, ok := levelAliases[strings.ToLower(strings.TrimSpace(name))]; ok {
		return lvl, nil
	}
	return 0, fmt.Errorf("no such level %q, valid levels are %q", name, LevelNames())
}

// LevelNames returns the canonical level names from most to least verbose.
func LevelNames() []string {
	lvls := make([]slog.Level, 0, len(levelNames))
	for l := range levelNames {
		lvls = append(lvls, l)
	}
	sort.Slice(lvls, func(i, j int) bool { return lvls[i] < lvls[j] })

	out := make([]string, 0, len(lvls))
	for _, l := range lvls {
		out = append(out, levelNames[l])
	}
	return out
}

// LevelString returns the name of l. Levels between named ones are rendered
// relative to the closest lower name, such as "info+1".
func LevelString(l slog.Level) string {
	if name, ok := levelNames[l]; ok {
		return name
	}

	base, name := slog.Level(0), ""
	found := false
	for lvl, n := range levelNames {
		if lvl < l && (!found || lvl > base) {
			base, name, found = lvl, n, true
		}
	}
	if !found {
		return fmt.Sprintf("%s%d", levelNames[LevelDebug], int(l-LevelDebug))
	}
	return fmt.Sprintf("%s+%d", name, int(l-base))
}

// LevelSlogValue is [LevelString] as a [slog.Value].
func LevelSlogValue(l slog.Level) slog.Value {
	return slog.StringValue(LevelString(l))
}

// LevelableHandler is a [slog.Handler] whose level can change after creation.
type LevelableHandler interface {
	slog.Handler
	SetLevel(level slog.Level)
}

var _ LevelableHandler = (*levelHandler)(nil)

// levelHandler wraps a handler with a level that can be changed at runtime.
type levelHandler struct {
	level   *slog.LevelVar
	handler slog.Handler
}

// NewLevelHandler wraps h so that records below level are dropped, and the
// level can later be changed with [SetLevel].
func NewLevelHandler(level slog.Level, h slog.Handler) LevelableHandler {
	var lv slog.LevelVar
	lv.Set(level)
	return &levelHandler{level: &lv, handler: h}
}

func (h *levelHandler) SetLevel(level slog.Level) {
	h.level.Set(level)
}

func (h *levelHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *levelHandler) Handle(ctx context.Context, r slog.Record) error {
	return h.handler.Handle(ctx, r) //nolint:wrapcheck // Want passthrough
}

func (h *levelHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelHandler{level: h.level, handler: h.handler.WithAttrs(attrs)}
}

func (h *levelHandler) WithGroup(name string) slog.Handler {
	return &levelHandler{level: h.level, handler: h.handler.WithGroup(name)}
}
