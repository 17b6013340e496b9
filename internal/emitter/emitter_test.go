// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MD Studio Contributors

package emitter_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdstudio/mdstudio/internal/emitter"
)

func TestEmitter_IndentsLines(t *testing.T) {
	e := emitter.New()
	e.EmitLine("if (x) {")
	e.Indent()
	e.EmitLine("y++;")
	e.Dedent()
	e.EmitLine("}")

	assert.Equal(t, []string{"if (x) {", "    y++;", "}"}, e.Lines())
}

func TestEmitter_DedentFloorsAtZero(t *testing.T) {
	e := emitter.New()
	e.Dedent()
	e.Dedent()
	assert.Equal(t, 0, e.Depth())

	e.EmitLine("a;")
	assert.Equal(t, []string{"a;"}, e.Lines())
}

func TestEmitter_IndentWidth(t *testing.T) {
	tests := []struct {
		name  string
		width int
		want  string
	}{
		{"two spaces", 2, "  x;"},
		{"eight spaces", 8, "        x;"},
		{"zero falls back to default", 0, "    x;"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := emitter.New(emitter.WithIndentWidth(tt.width))
			e.Indent()
			e.EmitLine("x;")
			assert.Equal(t, []string{tt.want}, e.Lines())
		})
	}
}

func TestEmitter_EmitCommentSplitsLines(t *testing.T) {
	e := emitter.New()
	e.Indent()
	e.EmitComment("first\n\nsecond  ")

	assert.Equal(t, []string{"    // first", "    //", "    // second"}, e.Lines())
}

func TestEmitter_EmitCommentTerminatesTrailingBackslash(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"trailing backslash", `save to C:\games\`, `// save to C:\games\.`},
		{"backslash before spaces", "path\\  \t", `// path\.`},
		{"inner backslash kept", `a\b`, `// a\b`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := emitter.New()
			e.Indent()
			e.EmitComment(tt.text)
			e.Dedent()
			e.EmitLine("}")

			assert.Equal(t, []string{"    " + tt.want, "}"}, e.Lines())
		})
	}
}

func TestEmitter_HeaderProjectStaysOneComment(t *testing.T) {
	e := emitter.New(emitter.WithHeader(emitter.Header{
		Tool:    "mdstudio",
		Project: "Quest\nint hacked;\\",
	}))

	out := e.Build()
	assert.Contains(t, out, "// Project: Quest int hacked;\\.\n")
	assert.NotContains(t, out, "\nint hacked;")
}

func TestEmitter_EmitBlankHasNoPadding(t *testing.T) {
	e := emitter.New()
	e.Indent()
	e.EmitBlank()
	assert.Equal(t, []string{""}, e.Lines())
}

func TestEmitter_CheckpointRollback(t *testing.T) {
	e := emitter.New()
	e.EmitLine("keep;")
	cp := e.Checkpoint()
	e.Indent()
	e.EmitLine("drop;")
	e.Indent()

	e.Rollback(cp)

	assert.Equal(t, []string{"keep;"}, e.Lines())
	assert.Equal(t, 0, e.Depth())
}

func TestEmitter_AppendReindents(t *testing.T) {
	inner := emitter.New()
	inner.EmitLine("a;")
	inner.EmitBlank()

	outer := emitter.New()
	outer.Indent()
	outer.Append(inner)

	assert.Equal(t, []string{"    a;", ""}, outer.Lines())
}

func TestEmitter_BuildWithHeader(t *testing.T) {
	e := emitter.New(emitter.WithHeader(emitter.Header{
		Tool:        "mdstudio",
		Version:     "1.2.3",
		Project:     "Demo",
		GeneratedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Includes:    []string{"<genesis.h>", `"resources.h"`},
	}))
	e.EmitLine("int x;")

	out := e.Build()

	require.True(t, strings.HasPrefix(out, "// ----"))
	assert.Contains(t, out, "// Generated by mdstudio 1.2.3\n")
	assert.Contains(t, out, "// Project: Demo\n")
	assert.Contains(t, out, "// Generated at: 2026-01-02T03:04:05Z\n")
	assert.Contains(t, out, "#include <genesis.h>\n#include \"resources.h\"\n")
	assert.True(t, strings.HasSuffix(out, "\nint x;\n"))
}

func TestEmitter_BuildWithoutHeader(t *testing.T) {
	e := emitter.New()
	e.EmitLine("a;")
	e.EmitLine("b;")
	assert.Equal(t, "a;\nb;\n", e.Build())
}

func TestEmitter_BuildIsDeterministic(t *testing.T) {
	build := func() string {
		e := emitter.New(emitter.WithHeader(emitter.Header{Tool: "t", GeneratedAt: time.Unix(0, 0)}))
		e.EmitComment("c")
		e.EmitLine("x;")
		return e.Build()
	}
	assert.Equal(t, build(), build())
}
