// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MD Studio Contributors

package builtin

import (
	"fmt"
	"strings"

	"github.com/mdstudio/mdstudio/internal/event"
	"github.com/mdstudio/mdstudio/internal/expr"
	"github.com/mdstudio/mdstudio/internal/naming"
	"github.com/mdstudio/mdstudio/internal/script"
)

var (
	comparisons = []string{"==", "!=", "<", "<=", ">", ">="}
	directions  = []string{"down", "up", "left", "right"}
	buttons     = []string{"a", "b", "c", "start", "up", "down", "left", "right", "x", "y", "z", "mode"}
)

func number(key string, lo, hi, def int) event.Field {
	return event.Field{Key: key, Type: event.TypeNumber, Range: &event.Range{Min: lo, Max: hi}, Default: def}
}

func text(key, def string) event.Field {
	return event.Field{Key: key, Type: event.TypeText, Default: def}
}

func boolean(key string, def bool) event.Field {
	return event.Field{Key: key, Type: event.TypeBoolean, Default: def}
}

func choice(key, def string, options ...string) event.Field {
	return event.Field{Key: key, Type: event.TypeSelect, Options: options, Default: def}
}

func ref(key string, kind event.RefKind) event.Field {
	return event.Field{Key: key, Type: event.TypeRef, Ref: kind}
}

func events(key string) event.Field {
	return event.Field{Key: key, Type: event.TypeEvents, SubScript: true}
}

// s16 bounds for variable values.
const (
	minValue = -32768
	maxValue = 32767
)

// dirConst maps a direction option to its generated constant.
func dirConst(dir string) string {
	return "DIR_" + strings.ToUpper(dir)
}

// buttonConst maps a button option to its SGDK mask.
func buttonConst(button string) string {
	return "BUTTON_" + strings.ToUpper(button)
}

// ifElse emits a conditional. The else block is omitted when no node in
// otherwise is enabled.
func ifElse(ctx event.Context, w event.Writer, cond string, then, otherwise []script.Node) error {
	w.EmitLine("if (" + cond + ") {")
	w.Indent()
	err := ctx.CompileEvents(then)
	w.Dedent()
	if err == nil && script.Enabled(otherwise) {
		w.EmitLine("} else {")
		w.Indent()
		err = ctx.CompileEvents(otherwise)
		w.Dedent()
	}
	w.EmitLine("}")
	return err
}

// yieldingLoop emits a loop whose body ends with a frame yield.
func yieldingLoop(ctx event.Context, w event.Writer, head string, body []script.Node) error {
	w.EmitLine(head)
	w.Indent()
	err := ctx.CompileEvents(body)
	w.EmitLine("SYS_doVBlankProcess();")
	w.Dedent()
	w.EmitLine("}")
	return err
}

// condition renders an authored expression. An expression that does not parse
// is replaced by 0 and annotated.
func condition(ctx event.Context, w event.Writer, src string) string {
	c, err := expr.Compile(src, ctx.Variable)
	if err != nil {
		w.EmitComment(fmt.Sprintf("invalid expression %q, using 0", src))
		return "(0)"
	}
	return c
}

// fadeOut emits a loop lowering brightness over exactly frames iterations.
func fadeOut(ctx event.Context, w event.Writer, frames int) {
	i := ctx.Local("fade")
	w.EmitLine(fmt.Sprintf("for (u16 %s = %d; %s > 0; %s--) {", i, frames, i, i))
	w.Indent()
	w.EmitLine(fmt.Sprintf("md_set_brightness(%s - 1, %d);", i, frames))
	w.EmitLine("SYS_doVBlankProcess();")
	w.Dedent()
	w.EmitLine("}")
}

// fadeIn emits a loop raising brightness over exactly frames iterations.
func fadeIn(ctx event.Context, w event.Writer, frames int) {
	i := ctx.Local("fade")
	w.EmitLine(fmt.Sprintf("for (u16 %s = 0; %s < %d; %s++) {", i, i, frames, i))
	w.Indent()
	w.EmitLine(fmt.Sprintf("md_set_brightness(%s + 1, %d);", i, frames))
	w.EmitLine("SYS_doVBlankProcess();")
	w.Dedent()
	w.EmitLine("}")
}

// cString folds text to the ASCII tile font and escapes it for a C literal.
func cString(s string) string {
	folded := naming.Fold(s)
	var b strings.Builder
	for _, r := range folded {
		switch {
		case r == '"' || r == '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case r == '\t':
			b.WriteByte(' ')
		case r < 0x20 || r > 0x7e:
			b.WriteByte('?')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// quote shortens free text for a summary comment.
func quote(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if r := []rune(s); len(r) > 40 {
		s = string(r[:37]) + "..."
	}
	return fmt.Sprintf("%q", s)
}
