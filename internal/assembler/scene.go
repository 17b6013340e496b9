// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MD Studio Contributors

package assembler

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/samber/oops"

	"github.com/mdstudio/mdstudio/internal/compiler"
	"github.com/mdstudio/mdstudio/internal/emitter"
	"github.com/mdstudio/mdstudio/internal/event"
	"github.com/mdstudio/mdstudio/internal/naming"
	"github.com/mdstudio/mdstudio/internal/project"
)

// sceneBuilder emits everything one scene contributes to the main unit.
type sceneBuilder struct {
	out    *emitter.Emitter
	run    *compiler.Run
	sym    *symbols
	scene  *project.Scene
	logger *slog.Logger
}

func (b *sceneBuilder) ident() string {
	return b.sym.sceneIdent(b.scene.ID)
}

func (b *sceneBuilder) build() error {
	sc := b.scene
	b.out.EmitComment(fmt.Sprintf("scene %s: %q (%dx%d tiles)", b.ident(), oneLine(sc.Name), sc.Width, sc.Height))
	b.out.EmitBlank()

	b.emitCollisions()
	b.emitTriggerState()
	if err := b.emitHooks(); err != nil {
		return err
	}
	b.emitInit()
	b.emitUpdate()
	return nil
}

func (b *sceneBuilder) collisionIdent() string {
	return "scene_" + b.ident() + "_collisions"
}

func (b *sceneBuilder) emitCollisions() {
	sc := b.scene
	if len(sc.Collisions) == 0 {
		return
	}
	e := b.out
	e.EmitLine(fmt.Sprintf("static const u8 %s[%d * %d] = {", b.collisionIdent(), sc.Width, sc.Height))
	e.Indent()
	for row := 0; row < sc.Height; row++ {
		cells := make([]string, sc.Width)
		for col := 0; col < sc.Width; col++ {
			cells[col] = strconv.Itoa(sc.Collisions[row*sc.Width+col] & 0xFF)
		}
		e.EmitLine(strings.Join(cells, ", ") + ",")
	}
	e.Dedent()
	e.EmitLine("};")
	e.EmitBlank()
}

func (b *sceneBuilder) triggerIdent(t project.Trigger) string {
	return "trigger_" + b.sym.ownerIdent(naming.Triggers, b.scene.ID, t.ID)
}

func (b *sceneBuilder) actorIdent(a project.Actor) string {
	return "actor_" + b.sym.ownerIdent(naming.Actors, b.scene.ID, a.ID)
}

func (b *sceneBuilder) emitTriggerState() {
	declared := false
	for _, t := range b.scene.Triggers {
		if t.Scripts.OnEnter == nil && t.Scripts.OnLeave == nil {
			continue
		}
		b.out.EmitLine(fmt.Sprintf("static bool %s_inside;", b.triggerIdent(t)))
		declared = true
	}
	if declared {
		b.out.EmitBlank()
	}
}

// emitHooks writes one function per declared hook. An empty hook produces
// an empty body; an undeclared hook produces nothing.
func (b *sceneBuilder) emitHooks() error {
	sc := b.scene
	for _, h := range sc.Scripts.Hooks() {
		scope := compiler.Scope{SceneID: sc.ID, OwnerKind: event.OwnerScene, OwnerID: sc.ID}
		if err := b.emitHook("scene_"+b.ident()+"_script_"+h.Name, scope, h); err != nil {
			return err
		}
	}
	for _, a := range sc.Actors {
		scope := compiler.Scope{SceneID: sc.ID, OwnerKind: event.OwnerActor, OwnerID: a.ID}
		for _, h := range a.Scripts.Hooks() {
			if err := b.emitHook(b.actorIdent(a)+"_"+h.Name, scope, h); err != nil {
				return oops.With("actor", a.ID).Wrap(err)
			}
		}
	}
	for _, t := range sc.Triggers {
		scope := compiler.Scope{SceneID: sc.ID, OwnerKind: event.OwnerTrigger, OwnerID: t.ID}
		for _, h := range t.Scripts.Hooks() {
			if err := b.emitHook(b.triggerIdent(t)+"_"+h.Name, scope, h); err != nil {
				return oops.With("trigger", t.ID).Wrap(err)
			}
		}
	}
	return nil
}

func (b *sceneBuilder) emitHook(fn string, scope compiler.Scope, h project.NamedHook) error {
	if h.Hook == nil {
		return nil
	}
	e := b.out
	e.EmitLine(fmt.Sprintf("static void %s(void)", fn))
	e.EmitLine("{")
	e.Indent()
	err := b.run.Compile(scope, *h.Hook)
	e.Dedent()
	e.EmitLine("}")
	e.EmitBlank()
	if err != nil {
		return oops.With("hook", h.Name).Wrap(err)
	}
	return nil
}

func (b *sceneBuilder) emitInit() {
	sc, e := b.scene, b.out
	e.EmitLine(fmt.Sprintf("void scene_%s_init(void)", b.ident()))
	e.EmitLine("{")
	e.Indent()

	e.EmitLine("VDP_clearPlane(BG_A, TRUE);")
	e.EmitLine("VDP_clearPlane(BG_B, TRUE);")
	if sc.Background != "" {
		img := b.sym.Resource(RefImage, sc.Background)
		e.EmitLine(fmt.Sprintf("VDP_drawImageEx(BG_B, &%s, TILE_ATTR_FULL(PAL0, FALSE, FALSE, FALSE, TILE_USER_INDEX), 0, 0, TRUE, DMA);", img))
	}
	if len(sc.Collisions) > 0 {
		e.EmitLine(fmt.Sprintf("md_collision_map = %s;", b.collisionIdent()))
	}
	e.EmitLine(fmt.Sprintf("md_map_width = %d;", sc.Width))
	e.EmitLine(fmt.Sprintf("md_map_height = %d;", sc.Height))

	if sc.Start != nil {
		e.EmitLine(fmt.Sprintf("player_x = %d * TILE_SIZE;", sc.Start.X))
		e.EmitLine(fmt.Sprintf("player_y = %d * TILE_SIZE;", sc.Start.Y))
		e.EmitLine(fmt.Sprintf("player_dir = %s;", dirConst(sc.Start.Direction)))
	}
	e.EmitLine("player_vy = 0;")
	if ps := b.sym.player; ps != "" {
		e.EmitLine(fmt.Sprintf("player_sprite = SPR_addSprite(&%s, player_x, player_y, TILE_ATTR(PAL1, TRUE, FALSE, FALSE));", ps))
	}
	e.EmitLine("md_place_player();")

	e.EmitLine(fmt.Sprintf("actor_count = %d;", len(sc.Actors)))
	for i, a := range sc.Actors {
		e.EmitComment(fmt.Sprintf("actor %s", b.actorIdent(a)))
		e.EmitLine(fmt.Sprintf("actor_x[%d] = %d * TILE_SIZE;", i, a.X))
		e.EmitLine(fmt.Sprintf("actor_y[%d] = %d * TILE_SIZE;", i, a.Y))
		e.EmitLine(fmt.Sprintf("actor_dir[%d] = %s;", i, dirConst(a.Direction)))
		if a.Sprite != "" {
			spr := b.sym.Resource(event.RefSprite, a.Sprite)
			e.EmitLine(fmt.Sprintf("actor_sprites[%d] = SPR_addSprite(&%s, actor_x[%d], actor_y[%d], TILE_ATTR(PAL%d, TRUE, FALSE, FALSE));", i, spr, i, i, a.Palette))
			e.EmitLine(fmt.Sprintf("md_face(actor_sprites[%d], actor_dir[%d]);", i, i))
		}
	}
	e.EmitLine("PAL_getColors(0, md_palette, 64);")

	for _, a := range sc.Actors {
		if a.Scripts.OnInit != nil {
			e.EmitLine(b.actorIdent(a) + "_init();")
		}
	}
	if sc.Scripts.OnInit != nil {
		e.EmitLine(fmt.Sprintf("scene_%s_script_init();", b.ident()))
	}

	e.Dedent()
	e.EmitLine("}")
	e.EmitBlank()
}

func (b *sceneBuilder) emitUpdate() {
	sc, e := b.scene, b.out
	e.EmitLine(fmt.Sprintf("void scene_%s_update(void)", b.ident()))
	e.EmitLine("{")
	e.Indent()
	e.EmitLine("md_read_input();")

	kind := sc.Type
	if kind == "" {
		kind = project.SceneTopDown
	}
	if !kind.Known() {
		e.EmitComment(fmt.Sprintf("unknown scene type %q, using %s", sc.Type, project.SceneTopDown))
		b.logger.Warn("unknown scene type", "scene", sc.ID, "type", sc.Type)
		kind = project.SceneTopDown
	}
	if kind != project.SceneLogo {
		e.EmitLine("if (!script_locked) {")
		e.Indent()
		emitSource(e, movement[kind])
		e.Dedent()
		e.EmitLine("}")
		b.emitClamp()
	}
	e.EmitLine("md_place_player();")

	for i, a := range sc.Actors {
		id := b.actorIdent(a)
		if a.Scripts.OnUpdate != nil {
			e.EmitLine(id + "_update();")
		}
		overlap := fmt.Sprintf("md_overlaps(player_x, player_y, actor_x[%d], actor_y[%d])", i, i)
		if a.Scripts.OnInteract != nil {
			e.EmitLine(fmt.Sprintf("if ((joy_pressed & BUTTON_A) && %s) %s_interact();", overlap, id))
		}
		if a.Scripts.OnHit != nil {
			e.EmitLine(fmt.Sprintf("if (%s) {", overlap))
			e.Indent()
			e.EmitLine("player_hit = TRUE;")
			e.EmitLine(id + "_hit();")
			e.Dedent()
			e.EmitLine("}")
		}
	}

	for _, t := range sc.Triggers {
		if t.Scripts.OnEnter == nil && t.Scripts.OnLeave == nil {
			continue
		}
		id := b.triggerIdent(t)
		e.EmitLine("{")
		e.Indent()
		e.EmitLine(fmt.Sprintf("bool inside = md_player_in_rect(%d * TILE_SIZE, %d * TILE_SIZE, %d * TILE_SIZE, %d * TILE_SIZE);", t.X, t.Y, t.Width, t.Height))
		if t.Scripts.OnEnter != nil {
			e.EmitLine(fmt.Sprintf("if (inside && !%s_inside) %s_enter();", id, id))
		}
		if t.Scripts.OnLeave != nil {
			e.EmitLine(fmt.Sprintf("if (!inside && %s_inside) %s_leave();", id, id))
		}
		e.EmitLine(fmt.Sprintf("%s_inside = inside;", id))
		e.Dedent()
		e.EmitLine("}")
	}

	if sc.Scripts.OnPlayerHit != nil {
		e.EmitLine(fmt.Sprintf("if (player_hit) scene_%s_script_player_hit();", b.ident()))
	}
	e.EmitLine("player_hit = FALSE;")

	e.Dedent()
	e.EmitLine("}")
	e.EmitBlank()
}

func (b *sceneBuilder) emitClamp() {
	sc, e := b.scene, b.out
	e.EmitLine("if (player_x < 0) player_x = 0;")
	e.EmitLine("if (player_y < 0) player_y = 0;")
	e.EmitLine(fmt.Sprintf("if (player_x > %d * TILE_SIZE) player_x = %d * TILE_SIZE;", sc.Width-1, sc.Width-1))
	e.EmitLine(fmt.Sprintf("if (player_y > %d * TILE_SIZE) player_y = %d * TILE_SIZE;", sc.Height-1, sc.Height-1))
}

// movement holds the control body per scene type.
var movement = map[project.SceneType]string{
	project.SceneTopDown: `s16 nx = player_x;
s16 ny = player_y;
if (joy_state & BUTTON_LEFT) { nx--; player_dir = DIR_LEFT; }
else if (joy_state & BUTTON_RIGHT) { nx++; player_dir = DIR_RIGHT; }
if (joy_state & BUTTON_UP) { ny--; player_dir = DIR_UP; }
else if (joy_state & BUTTON_DOWN) { ny++; player_dir = DIR_DOWN; }
if (!md_tile_solid(nx, ny)) {
	player_x = nx;
	player_y = ny;
}`,
	project.SceneAdventure: `if (joy_state & BUTTON_LEFT) { player_dir = DIR_LEFT; if (!md_tile_solid(player_x - 1, player_y)) player_x--; }
else if (joy_state & BUTTON_RIGHT) { player_dir = DIR_RIGHT; if (!md_tile_solid(player_x + 1, player_y)) player_x++; }
if (joy_state & BUTTON_UP) { player_dir = DIR_UP; if (!md_tile_solid(player_x, player_y - 1)) player_y--; }
else if (joy_state & BUTTON_DOWN) { player_dir = DIR_DOWN; if (!md_tile_solid(player_x, player_y + 1)) player_y++; }`,
	project.ScenePlatformer: `if (joy_state & BUTTON_LEFT) { player_dir = DIR_LEFT; if (!md_tile_solid(player_x - 1, player_y)) player_x--; }
else if (joy_state & BUTTON_RIGHT) { player_dir = DIR_RIGHT; if (!md_tile_solid(player_x + 1, player_y)) player_x++; }
if ((joy_pressed & BUTTON_A) && md_tile_solid(player_x, player_y + TILE_SIZE)) player_vy = -6;
if (player_vy < 4) player_vy++;
if (player_vy > 0 && md_tile_solid(player_x, player_y + TILE_SIZE)) player_vy = 0;
player_y += player_vy;`,
	project.SceneShmup: `if (joy_state & BUTTON_LEFT) player_x -= 2;
else if (joy_state & BUTTON_RIGHT) player_x += 2;
if (joy_state & BUTTON_UP) player_y -= 2;
else if (joy_state & BUTTON_DOWN) player_y += 2;`,
	project.ScenePointClick: `if (joy_state & BUTTON_LEFT) player_x -= 2;
else if (joy_state & BUTTON_RIGHT) player_x += 2;
if (joy_state & BUTTON_UP) player_y -= 2;
else if (joy_state & BUTTON_DOWN) player_y += 2;`,
}

func dirConst(dir string) string {
	switch dir {
	case "up", "left", "right":
		return "DIR_" + strings.ToUpper(dir)
	default:
		return "DIR_DOWN"
	}
}
