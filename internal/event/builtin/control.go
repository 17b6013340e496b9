// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MD Studio Contributors

package builtin

import (
	"fmt"
	"strings"

	"github.com/mdstudio/mdstudio/internal/event"
	"github.com/mdstudio/mdstudio/internal/script"
)

func controlKinds() []event.Kind {
	return []event.Kind{
		{
			ID:          "if-variable-value",
			Description: "Compare a variable with a constant",
			Group:       "control",
			Fields: []event.Field{
				ref("variable", event.RefVariable),
				choice("operator", "==", comparisons...),
				number("value", minValue, maxValue, 0),
				events("true"),
				events("false"),
			},
			Emit: emitIfVariableValue,
		},
		{
			ID:          "if-variable-compare",
			Description: "Compare two variables",
			Group:       "control",
			Fields: []event.Field{
				ref("variableA", event.RefVariable),
				choice("operator", "==", comparisons...),
				ref("variableB", event.RefVariable),
				events("true"),
				events("false"),
			},
			Emit: emitIfVariableCompare,
		},
		{
			ID:          "if-expression",
			Description: "Branch on a math expression",
			Group:       "control",
			Fields: []event.Field{
				text("expression", "0"),
				events("true"),
				events("false"),
			},
			Emit: emitIfExpression,
		},
		{
			ID:          "if-button-pressed",
			Description: "Branch on joypad input",
			Group:       "control",
			Fields: []event.Field{
				choice("button", "a", buttons...),
				choice("mode", "held", "held", "pressed"),
				events("true"),
				events("false"),
			},
			Emit: emitIfButton,
		},
		{
			ID:          "if-actor-at",
			Description: "Branch on an actor standing on a tile",
			Group:       "control",
			Fields: []event.Field{
				ref("actor", event.RefActor),
				number("x", 0, 255, 0),
				number("y", 0, 255, 0),
				events("true"),
				events("false"),
			},
			Emit: emitIfActorAt,
		},
		{
			ID:          "variable-switch",
			Description: "Run the case whose value matches a variable",
			Group:       "control",
			Fields:      switchFields(),
			Emit:        emitVariableSwitch,
		},
		{
			ID:          "loop-forever",
			Description: "Repeat forever, yielding every frame",
			Group:       "control",
			Fields:      []event.Field{events("events")},
			Emit:        emitLoopForever,
		},
		{
			ID:          "loop-repeat",
			Description: "Repeat a fixed number of times",
			Group:       "control",
			Fields: []event.Field{
				number("times", 0, 65535, 1),
				events("events"),
			},
			Emit: emitLoopRepeat,
		},
		{
			ID:          "loop-while",
			Description: "Repeat while a variable is non-zero, yielding every frame",
			Group:       "control",
			Fields: []event.Field{
				ref("variable", event.RefVariable),
				events("events"),
			},
			Emit: emitLoopWhile,
		},
		{
			ID:          "loop-while-expression",
			Description: "Repeat while an expression holds, yielding every frame",
			Group:       "control",
			Fields: []event.Field{
				text("expression", "0"),
				events("events"),
			},
			Emit: emitLoopWhileExpression,
		},
		{
			ID:          "group",
			Description: "Group events under a label",
			Group:       "control",
			Fields: []event.Field{
				text("label", ""),
				events("events"),
			},
			Emit: emitGroup,
		},
		{
			ID:          "comment",
			Description: "Authoring note carried into the generated code",
			Group:       "control",
			Fields:      []event.Field{text("text", "")},
			Emit:        emitComment,
		},
		{
			ID:          "wait",
			Description: "Wait a number of frames or seconds",
			Group:       "control",
			Fields: []event.Field{
				number("duration", 0, 65535, 60),
				choice("units", "frames", "frames", "seconds"),
			},
			Emit: emitWait,
		},
		{
			ID:          "stop-script",
			Description: "Return from the current script",
			Group:       "control",
			Emit:        emitStopScript,
		},
	}
}

func emitIfVariableValue(args event.Args, ctx event.Context, w event.Writer) error {
	v := ctx.Variable(args.String("variable"))
	cond := fmt.Sprintf("%s %s %d", v, args.String("operator"), args.Int("value"))
	w.EmitComment("if " + cond)
	return ifElse(ctx, w, cond, args.Events("true"), args.Events("false"))
}

func emitIfVariableCompare(args event.Args, ctx event.Context, w event.Writer) error {
	a := ctx.Variable(args.String("variableA"))
	b := ctx.Variable(args.String("variableB"))
	cond := fmt.Sprintf("%s %s %s", a, args.String("operator"), b)
	w.EmitComment("if " + cond)
	return ifElse(ctx, w, cond, args.Events("true"), args.Events("false"))
}

func emitIfExpression(args event.Args, ctx event.Context, w event.Writer) error {
	src := args.String("expression")
	w.EmitComment("if " + quote(src))
	return ifElse(ctx, w, condition(ctx, w, src), args.Events("true"), args.Events("false"))
}

func emitIfButton(args event.Args, ctx event.Context, w event.Writer) error {
	button, mode := args.String("button"), args.String("mode")
	state := "joy_state"
	if mode == "pressed" {
		state = "joy_pressed"
	}
	w.EmitComment(fmt.Sprintf("if button %s is %s", button, mode))
	return ifElse(ctx, w, fmt.Sprintf("%s & %s", state, buttonConst(button)), args.Events("true"), args.Events("false"))
}

func emitIfActorAt(args event.Args, ctx event.Context, w event.Writer) error {
	a := ctx.Actor(args.String("actor"))
	x, y := args.Int("x"), args.Int("y")
	w.EmitComment(fmt.Sprintf("if %s is at (%d, %d)", a.Name, x, y))
	cond := fmt.Sprintf("%s / TILE_SIZE == %d && %s / TILE_SIZE == %d", a.X, x, a.Y, y)
	return ifElse(ctx, w, cond, args.Events("true"), args.Events("false"))
}

// maxSwitchCases is the number of case slots a variable-switch carries.
const maxSwitchCases = 16

func switchFields() []event.Field {
	fields := []event.Field{
		ref("variable", event.RefVariable),
		number("choices", 1, maxSwitchCases, 2),
	}
	for i := 0; i < maxSwitchCases; i++ {
		fields = append(fields,
			number(fmt.Sprintf("value%d", i), minValue, maxValue, i),
			events(fmt.Sprintf("case%d", i)),
		)
	}
	return append(fields, events("default"))
}

// emitVariableSwitch lowers the first choices case slots into a C switch.
// A case repeating an earlier value is skipped, and the default block is
// omitted when it holds no enabled node.
func emitVariableSwitch(args event.Args, ctx event.Context, w event.Writer) error {
	v := ctx.Variable(args.String("variable"))
	n := args.Int("choices")
	w.EmitComment(fmt.Sprintf("switch on %s (%d cases)", v, n))
	w.EmitLine("switch (" + v + ") {")
	w.Indent()
	seen := make(map[int]bool, n)
	var err error
	for i := 0; i < n && err == nil; i++ {
		value := args.Int(fmt.Sprintf("value%d", i))
		if seen[value] {
			w.EmitComment(fmt.Sprintf("case %d repeats value %d, skipped", i, value))
			continue
		}
		seen[value] = true
		err = switchCase(ctx, w, fmt.Sprintf("case %d: {", value), args.Events(fmt.Sprintf("case%d", i)))
	}
	if err == nil && script.Enabled(args.Events("default")) {
		err = switchCase(ctx, w, "default: {", args.Events("default"))
	}
	w.Dedent()
	w.EmitLine("}")
	return err
}

// switchCase emits one braced case body ending in break.
func switchCase(ctx event.Context, w event.Writer, label string, body []script.Node) error {
	w.EmitLine(label)
	w.Indent()
	err := ctx.CompileEvents(body)
	w.EmitLine("break;")
	w.Dedent()
	w.EmitLine("}")
	return err
}

func emitLoopForever(args event.Args, ctx event.Context, w event.Writer) error {
	w.EmitComment("loop forever")
	return yieldingLoop(ctx, w, "while (TRUE) {", args.Events("events"))
}

func emitLoopRepeat(args event.Args, ctx event.Context, w event.Writer) error {
	times := args.Int("times")
	w.EmitComment(fmt.Sprintf("repeat %d times", times))
	i := ctx.Local("loop")
	return event.CompileBlock(ctx, w, fmt.Sprintf("for (u16 %s = 0; %s < %d; %s++) {", i, i, times, i), args.Events("events"))
}

func emitLoopWhile(args event.Args, ctx event.Context, w event.Writer) error {
	v := ctx.Variable(args.String("variable"))
	w.EmitComment("loop while " + v)
	return yieldingLoop(ctx, w, "while ("+v+") {", args.Events("events"))
}

func emitLoopWhileExpression(args event.Args, ctx event.Context, w event.Writer) error {
	src := args.String("expression")
	w.EmitComment("loop while " + quote(src))
	return yieldingLoop(ctx, w, "while "+condition(ctx, w, src)+" {", args.Events("events"))
}

func emitGroup(args event.Args, ctx event.Context, w event.Writer) error {
	label := args.String("label")
	if label == "" {
		label = "events"
	}
	w.EmitComment("group " + quote(label))
	return event.CompileBlock(ctx, w, "{", args.Events("events"))
}

func emitComment(args event.Args, _ event.Context, w event.Writer) error {
	body := strings.TrimRight(args.String("text"), "\n")
	if body == "" {
		body = "(empty comment)"
	}
	w.EmitComment(body)
	return nil
}

func emitWait(args event.Args, ctx event.Context, w event.Writer) error {
	frames := args.Int("duration")
	if args.String("units") == "seconds" {
		frames *= 60
	}
	w.EmitComment(fmt.Sprintf("wait %d frames", frames))
	counter := "u16"
	if frames > 65535 {
		counter = "u32"
	}
	i := ctx.Local("wait")
	w.EmitLine(fmt.Sprintf("for (%s %s = 0; %s < %d; %s++) {", counter, i, i, frames, i))
	w.Indent()
	w.EmitLine("SYS_doVBlankProcess();")
	w.Dedent()
	w.EmitLine("}")
	return nil
}

func emitStopScript(_ event.Args, _ event.Context, w event.Writer) error {
	w.EmitComment("stop script")
	w.EmitLine("return;")
	return nil
}
