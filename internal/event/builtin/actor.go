// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MD Studio Contributors

package builtin

import (
	"fmt"

	"github.com/mdstudio/mdstudio/internal/event"
)

func actorKinds() []event.Kind {
	return []event.Kind{
		{
			ID:          "actor-move-to",
			Description: "Walk an actor to a tile, one pixel per frame",
			Group:       "actor",
			Fields: []event.Field{
				ref("actor", event.RefActor),
				number("x", 0, 255, 0),
				number("y", 0, 255, 0),
			},
			Emit: emitActorMoveTo,
		},
		{
			ID:          "actor-set-position",
			Description: "Place an actor on a tile immediately",
			Group:       "actor",
			Fields: []event.Field{
				ref("actor", event.RefActor),
				number("x", 0, 255, 0),
				number("y", 0, 255, 0),
			},
			Emit: emitActorSetPosition,
		},
		{
			ID:          "actor-set-direction",
			Description: "Turn an actor",
			Group:       "actor",
			Fields: []event.Field{
				ref("actor", event.RefActor),
				choice("direction", "down", directions...),
			},
			Emit: emitActorSetDirection,
		},
		{
			ID:          "actor-show",
			Description: "Make an actor visible",
			Group:       "actor",
			Fields:      []event.Field{ref("actor", event.RefActor)},
			Emit:        emitActorVisibility("VISIBLE"),
		},
		{
			ID:          "actor-hide",
			Description: "Hide an actor",
			Group:       "actor",
			Fields:      []event.Field{ref("actor", event.RefActor)},
			Emit:        emitActorVisibility("HIDDEN"),
		},
		{
			ID:          "actor-set-anim",
			Description: "Select an actor's sprite animation",
			Group:       "actor",
			Fields: []event.Field{
				ref("actor", event.RefActor),
				number("animation", 0, 31, 0),
			},
			Emit: emitActorSetAnim,
		},
	}
}

func emitActorMoveTo(args event.Args, ctx event.Context, w event.Writer) error {
	a := ctx.Actor(args.String("actor"))
	x, y := args.Int("x"), args.Int("y")
	w.EmitComment(fmt.Sprintf("move %s to (%d, %d)", a.Name, x, y))
	w.EmitLine(fmt.Sprintf("md_move_actor_to(&%s, &%s, %s, %d * TILE_SIZE, %d * TILE_SIZE);", a.X, a.Y, a.Sprite, x, y))
	return nil
}

func emitActorSetPosition(args event.Args, ctx event.Context, w event.Writer) error {
	a := ctx.Actor(args.String("actor"))
	x, y := args.Int("x"), args.Int("y")
	w.EmitComment(fmt.Sprintf("place %s at (%d, %d)", a.Name, x, y))
	w.EmitLine(fmt.Sprintf("%s = %d * TILE_SIZE;", a.X, x))
	w.EmitLine(fmt.Sprintf("%s = %d * TILE_SIZE;", a.Y, y))
	w.EmitLine(fmt.Sprintf("md_place_sprite(%s, %s, %s);", a.Sprite, a.X, a.Y))
	return nil
}

func emitActorSetDirection(args event.Args, ctx event.Context, w event.Writer) error {
	a := ctx.Actor(args.String("actor"))
	dir := args.String("direction")
	w.EmitComment(fmt.Sprintf("turn %s %s", a.Name, dir))
	w.EmitLine(fmt.Sprintf("%s = %s;", a.Dir, dirConst(dir)))
	w.EmitLine(fmt.Sprintf("md_face(%s, %s);", a.Sprite, a.Dir))
	return nil
}

func emitActorVisibility(visibility string) event.EmitFunc {
	return func(args event.Args, ctx event.Context, w event.Writer) error {
		a := ctx.Actor(args.String("actor"))
		verb := "show"
		if visibility == "HIDDEN" {
			verb = "hide"
		}
		w.EmitComment(verb + " " + a.Name)
		w.EmitLine(fmt.Sprintf("md_set_visible(%s, %s);", a.Sprite, visibility))
		return nil
	}
}

func emitActorSetAnim(args event.Args, ctx event.Context, w event.Writer) error {
	a := ctx.Actor(args.String("actor"))
	n := args.Int("animation")
	w.EmitComment(fmt.Sprintf("set %s animation %d", a.Name, n))
	w.EmitLine(fmt.Sprintf("md_set_anim(%s, %d);", a.Sprite, n))
	return nil
}
