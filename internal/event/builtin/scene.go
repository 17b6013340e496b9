// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MD Studio Contributors

package builtin

import (
	"fmt"

	"github.com/mdstudio/mdstudio/internal/event"
)

func sceneFields() []event.Field {
	return []event.Field{
		ref("sceneId", event.RefScene),
		number("x", 0, 255, 0),
		number("y", 0, 255, 0),
		choice("direction", "down", directions...),
		number("fadeFrames", 0, 255, 8),
	}
}

func sceneKinds() []event.Kind {
	return []event.Kind{
		{
			ID:          "scene-switch",
			Description: "Fade out, change scene, place the player and fade in",
			Group:       "scene",
			Fields:      sceneFields(),
			Emit:        emitSceneSwitch,
		},
		{
			ID:          "scene-push",
			Description: "Remember the current scene and player position, then switch",
			Group:       "scene",
			Fields:      sceneFields(),
			Emit:        emitScenePush,
		},
		{
			ID:          "scene-pop",
			Description: "Return to the most recently pushed scene",
			Group:       "scene",
			Fields:      []event.Field{number("fadeFrames", 0, 255, 8)},
			Emit:        emitScenePop,
		},
		{
			ID:          "scene-pop-all",
			Description: "Return to the first pushed scene and clear the scene stack",
			Group:       "scene",
			Fields:      []event.Field{number("fadeFrames", 0, 255, 8)},
			Emit:        emitScenePopAll,
		},
		{
			ID:          "screen-fade-out",
			Description: "Fade the screen to black",
			Group:       "screen",
			Fields:      []event.Field{number("frames", 0, 255, 16)},
			Emit:        emitFadeOut,
		},
		{
			ID:          "screen-fade-in",
			Description: "Fade the screen in from black",
			Group:       "screen",
			Fields:      []event.Field{number("frames", 0, 255, 16)},
			Emit:        emitFadeIn,
		},
		{
			ID:          "camera-shake",
			Description: "Shake the foreground plane",
			Group:       "screen",
			Fields: []event.Field{
				number("frames", 1, 255, 30),
				number("magnitude", 1, 16, 2),
			},
			Emit: emitCameraShake,
		},
	}
}

// sceneTarget resolves the destination constant, annotating unknown scenes.
func sceneTarget(args event.Args, ctx event.Context, w event.Writer) string {
	raw := args.String("sceneId")
	target, ok := ctx.Scene(raw)
	if !ok {
		w.EmitComment(fmt.Sprintf("unknown scene %q, using scene index 0", raw))
		return "0"
	}
	return target.Const
}

// switchScene emits the fade-out, swap, player reset and fade-in sequence.
func switchScene(args event.Args, ctx event.Context, w event.Writer, target string) {
	d := args.Int("fadeFrames")
	fadeOut(ctx, w, d)
	w.EmitLine(fmt.Sprintf("md_switch_scene(%s);", target))
	w.EmitLine(fmt.Sprintf("player_x = %d * TILE_SIZE;", args.Int("x")))
	w.EmitLine(fmt.Sprintf("player_y = %d * TILE_SIZE;", args.Int("y")))
	w.EmitLine(fmt.Sprintf("player_dir = %s;", dirConst(args.String("direction"))))
	w.EmitLine("md_place_player();")
	fadeIn(ctx, w, d)
}

func emitSceneSwitch(args event.Args, ctx event.Context, w event.Writer) error {
	w.EmitComment(fmt.Sprintf("switch to scene %s (fade %d frames)", args.String("sceneId"), args.Int("fadeFrames")))
	target := sceneTarget(args, ctx, w)
	switchScene(args, ctx, w, target)
	return nil
}

func emitScenePush(args event.Args, ctx event.Context, w event.Writer) error {
	w.EmitComment(fmt.Sprintf("push current scene and switch to %s", args.String("sceneId")))
	target := sceneTarget(args, ctx, w)
	w.EmitLine("md_push_scene();")
	switchScene(args, ctx, w, target)
	return nil
}

func emitScenePop(args event.Args, ctx event.Context, w event.Writer) error {
	d := args.Int("fadeFrames")
	w.EmitComment(fmt.Sprintf("return to previous scene (fade %d frames)", d))
	w.EmitLine("if (md_scene_stack_top > 0) {")
	w.Indent()
	fadeOut(ctx, w, d)
	w.EmitLine("md_pop_scene();")
	fadeIn(ctx, w, d)
	w.Dedent()
	w.EmitLine("}")
	return nil
}

func emitScenePopAll(args event.Args, ctx event.Context, w event.Writer) error {
	d := args.Int("fadeFrames")
	w.EmitComment(fmt.Sprintf("return to the first pushed scene (fade %d frames)", d))
	w.EmitLine("if (md_scene_stack_top > 0) {")
	w.Indent()
	fadeOut(ctx, w, d)
	w.EmitLine("md_pop_all_scenes();")
	fadeIn(ctx, w, d)
	w.Dedent()
	w.EmitLine("}")
	return nil
}

func emitFadeOut(args event.Args, ctx event.Context, w event.Writer) error {
	d := args.Int("frames")
	w.EmitComment(fmt.Sprintf("fade out over %d frames", d))
	fadeOut(ctx, w, d)
	return nil
}

func emitFadeIn(args event.Args, ctx event.Context, w event.Writer) error {
	d := args.Int("frames")
	w.EmitComment(fmt.Sprintf("fade in over %d frames", d))
	fadeIn(ctx, w, d)
	return nil
}

func emitCameraShake(args event.Args, ctx event.Context, w event.Writer) error {
	frames, magnitude := args.Int("frames"), args.Int("magnitude")
	w.EmitComment(fmt.Sprintf("shake camera for %d frames", frames))
	i := ctx.Local("shake")
	w.EmitLine(fmt.Sprintf("for (u16 %s = 0; %s < %d; %s++) {", i, i, frames, i))
	w.Indent()
	w.EmitLine(fmt.Sprintf("VDP_setHorizontalScroll(BG_A, (%s & 1) ? %d : -%d);", i, magnitude, magnitude))
	w.EmitLine("SYS_doVBlankProcess();")
	w.Dedent()
	w.EmitLine("}")
	w.EmitLine("VDP_setHorizontalScroll(BG_A, 0);")
	return nil
}
