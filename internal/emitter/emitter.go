// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MD Studio Contributors

// Package emitter provides an indentation-aware line buffer for generated C source.
package emitter

import (
	"strings"
	"time"
)

// DefaultIndentWidth is the number of spaces per indent level.
const DefaultIndentWidth = 4

// Header describes the fixed block prepended by Build.
type Header struct {
	Tool        string
	Version     string
	Project     string
	GeneratedAt time.Time
	// Includes are emitted verbatim after the banner, e.g. "<genesis.h>".
	Includes []string
}

// Emitter accumulates generated lines.
// An Emitter is not safe for concurrent use; create one per compile run.
type Emitter struct {
	lines  []string
	depth  int
	unit   string
	header *Header
}

// Option configures an Emitter.
type Option func(*Emitter)

// WithIndentWidth sets the number of spaces per indent level.
// Values below 1 fall back to DefaultIndentWidth.
func WithIndentWidth(n int) Option {
	return func(e *Emitter) {
		if n < 1 {
			n = DefaultIndentWidth
		}
		e.unit = strings.Repeat(" ", n)
	}
}

// WithHeader sets the header block prepended by Build.
func WithHeader(h Header) Option {
	return func(e *Emitter) {
		e.header = &h
	}
}

// New creates an empty emitter.
func New(opts ...Option) *Emitter {
	e := &Emitter{unit: strings.Repeat(" ", DefaultIndentWidth)}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// EmitLine appends text at the current depth.
func (e *Emitter) EmitLine(text string) {
	e.lines = append(e.lines, e.pad()+text)
}

// EmitComment appends a line comment. Multi-line text becomes one comment per line.
func (e *Emitter) EmitComment(text string) {
	for _, line := range strings.Split(text, "\n") {
		line = commentLine(line)
		if line == "" {
			e.lines = append(e.lines, e.pad()+"//")
			continue
		}
		e.lines = append(e.lines, e.pad()+"// "+line)
	}
}

// commentLine trims trailing whitespace and terminates a trailing backslash,
// which C would otherwise splice with the following line.
func commentLine(line string) string {
	line = strings.TrimRight(line, " \t\r")
	if strings.HasSuffix(line, `\`) {
		line += "."
	}
	return line
}

// EmitBlank appends an empty line.
func (e *Emitter) EmitBlank() {
	e.lines = append(e.lines, "")
}

// Indent increases the depth by one level.
func (e *Emitter) Indent() {
	e.depth++
}

// Dedent decreases the depth by one level. Dedent at depth zero is a no-op.
func (e *Emitter) Dedent() {
	if e.depth > 0 {
		e.depth--
	}
}

// Depth returns the current indent depth.
func (e *Emitter) Depth() int {
	return e.depth
}

// SetDepth forces the indent depth, used to restore an unbalanced rule.
func (e *Emitter) SetDepth(depth int) {
	if depth < 0 {
		depth = 0
	}
	e.depth = depth
}

// Checkpoint marks the current buffer state.
type Checkpoint struct {
	lines int
	depth int
}

// Checkpoint captures the buffer length and depth.
func (e *Emitter) Checkpoint() Checkpoint {
	return Checkpoint{lines: len(e.lines), depth: e.depth}
}

// Rollback discards everything emitted after cp and restores its depth.
func (e *Emitter) Rollback(cp Checkpoint) {
	if cp.lines < len(e.lines) {
		e.lines = e.lines[:cp.lines]
	}
	e.depth = cp.depth
}

// Append copies lines from another emitter, re-indented at the current depth.
func (e *Emitter) Append(other *Emitter) {
	for _, line := range other.lines {
		if line == "" {
			e.lines = append(e.lines, "")
			continue
		}
		e.lines = append(e.lines, e.pad()+line)
	}
}

// Len returns the number of buffered lines.
func (e *Emitter) Len() int {
	return len(e.lines)
}

// Lines returns a copy of the buffered lines.
func (e *Emitter) Lines() []string {
	out := make([]string, len(e.lines))
	copy(out, e.lines)
	return out
}

// Build returns the header followed by the buffered lines, newline-terminated.
func (e *Emitter) Build() string {
	var b strings.Builder
	if e.header != nil {
		writeHeader(&b, e.header)
	}
	for _, line := range e.lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

func (e *Emitter) pad() string {
	return strings.Repeat(e.unit, e.depth)
}

const rule = "// ------------------------------------------------------------"

func writeHeader(b *strings.Builder, h *Header) {
	b.WriteString(rule + "\n")
	tool := h.Tool
	if h.Version != "" {
		tool += " " + h.Version
	}
	b.WriteString("// Generated by " + tool + "\n")
	if h.Project != "" {
		b.WriteString("// Project: " + commentLine(strings.ReplaceAll(h.Project, "\n", " ")) + "\n")
	}
	b.WriteString("// Generated at: " + h.GeneratedAt.UTC().Format(time.RFC3339) + "\n")
	b.WriteString("// Do not edit: this file is overwritten on every build.\n")
	b.WriteString(rule + "\n")
	if len(h.Includes) > 0 {
		b.WriteByte('\n')
		for _, inc := range h.Includes {
			b.WriteString("#include " + inc + "\n")
		}
	}
	b.WriteByte('\n')
}
