// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MD Studio Contributors

package builtin

import (
	"fmt"
	"strconv"

	"github.com/mdstudio/mdstudio/internal/event"
)

var mathOperations = []string{"set", "add", "sub", "mul", "div", "mod", "min", "max", "abs", "clamp"}

func variableKinds() []event.Kind {
	return []event.Kind{
		{
			ID:          "variable-set",
			Description: "Assign a constant to a variable",
			Group:       "variable",
			Fields: []event.Field{
				ref("variable", event.RefVariable),
				number("value", minValue, maxValue, 0),
			},
			Emit: emitVariableSet,
		},
		{
			ID:          "variable-inc",
			Description: "Add one to a variable",
			Group:       "variable",
			Fields:      []event.Field{ref("variable", event.RefVariable)},
			Emit:        emitVariableStep("++", "increment"),
		},
		{
			ID:          "variable-dec",
			Description: "Subtract one from a variable",
			Group:       "variable",
			Fields:      []event.Field{ref("variable", event.RefVariable)},
			Emit:        emitVariableStep("--", "decrement"),
		},
		{
			ID:          "variable-math",
			Description: "Apply an arithmetic operation to a variable",
			Group:       "variable",
			Fields: []event.Field{
				ref("variable", event.RefVariable),
				choice("operation", "set", mathOperations...),
				choice("operand", "value", "value", "variable"),
				number("value", minValue, maxValue, 0),
				ref("other", event.RefVariable),
				number("min", minValue, maxValue, 0),
				number("max", minValue, maxValue, 255),
			},
			Emit: emitVariableMath,
		},
		{
			ID:          "variable-random",
			Description: "Assign a random value in [min, min+range)",
			Group:       "variable",
			Fields: []event.Field{
				ref("variable", event.RefVariable),
				number("min", minValue, maxValue, 0),
				number("range", 1, maxValue, 10),
			},
			Emit: emitVariableRandom,
		},
		{
			ID:          "evaluate-expression",
			Description: "Assign the result of a math expression",
			Group:       "variable",
			Fields: []event.Field{
				ref("variable", event.RefVariable),
				text("expression", "0"),
			},
			Emit: emitEvaluateExpression,
		},
	}
}

func emitVariableSet(args event.Args, ctx event.Context, w event.Writer) error {
	v := ctx.Variable(args.String("variable"))
	value := args.Int("value")
	w.EmitComment(fmt.Sprintf("set %s to %d", v, value))
	w.EmitLine(fmt.Sprintf("%s = %d;", v, value))
	return nil
}

func emitVariableStep(op, verb string) event.EmitFunc {
	return func(args event.Args, ctx event.Context, w event.Writer) error {
		v := ctx.Variable(args.String("variable"))
		w.EmitComment(verb + " " + v)
		w.EmitLine(v + op + ";")
		return nil
	}
}

func emitVariableMath(args event.Args, ctx event.Context, w event.Writer) error {
	v := ctx.Variable(args.String("variable"))
	op := args.String("operation")

	rhs := strconv.Itoa(args.Int("value"))
	if args.String("operand") == "variable" {
		rhs = ctx.Variable(args.String("other"))
	}

	switch op {
	case "abs":
		w.EmitComment(fmt.Sprintf("%s = abs(%s)", v, v))
	case "clamp":
		w.EmitComment(fmt.Sprintf("clamp %s to %d..%d", v, args.Int("min"), args.Int("max")))
	default:
		w.EmitComment(fmt.Sprintf("%s %s %s", v, op, rhs))
	}

	switch op {
	case "set":
		w.EmitLine(fmt.Sprintf("%s = %s;", v, rhs))
	case "add":
		w.EmitLine(fmt.Sprintf("%s += %s;", v, rhs))
	case "sub":
		w.EmitLine(fmt.Sprintf("%s -= %s;", v, rhs))
	case "mul":
		w.EmitLine(fmt.Sprintf("%s *= %s;", v, rhs))
	case "div":
		w.EmitLine(fmt.Sprintf("if (%s != 0) %s /= %s;", rhs, v, rhs))
	case "mod":
		w.EmitLine(fmt.Sprintf("if (%s != 0) %s %%= %s;", rhs, v, rhs))
	case "min":
		w.EmitLine(fmt.Sprintf("if (%s > %s) %s = %s;", v, rhs, v, rhs))
	case "max":
		w.EmitLine(fmt.Sprintf("if (%s < %s) %s = %s;", v, rhs, v, rhs))
	case "abs":
		w.EmitLine(fmt.Sprintf("if (%s < 0) %s = -%s;", v, v, v))
	case "clamp":
		lo, hi := args.Int("min"), args.Int("max")
		if lo > hi {
			return fmt.Errorf("clamp bounds %d..%d are inverted", lo, hi)
		}
		w.EmitLine(fmt.Sprintf("if (%s < %d) %s = %d;", v, lo, v, lo))
		w.EmitLine(fmt.Sprintf("if (%s > %d) %s = %d;", v, hi, v, hi))
	}
	return nil
}

func emitVariableRandom(args event.Args, ctx event.Context, w event.Writer) error {
	v := ctx.Variable(args.String("variable"))
	lo, span := args.Int("min"), args.Int("range")
	w.EmitComment(fmt.Sprintf("%s = random in %d..%d", v, lo, lo+span-1))
	w.EmitLine(fmt.Sprintf("%s = %d + (random() %% %d);", v, lo, span))
	return nil
}

func emitEvaluateExpression(args event.Args, ctx event.Context, w event.Writer) error {
	v := ctx.Variable(args.String("variable"))
	src := args.String("expression")
	w.EmitComment(fmt.Sprintf("%s = %s", v, quote(src)))
	w.EmitLine(fmt.Sprintf("%s = (s16)%s;", v, condition(ctx, w, src)))
	return nil
}
