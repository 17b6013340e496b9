// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MD Studio Contributors

package assembler

import (
	"strings"

	"github.com/mdstudio/mdstudio/internal/emitter"
)

// Runtime support shared by every generated game. Tabs mark indent levels and
// are re-rendered with the configured indent width.
const runtimeGlobals = `u16 current_scene;

s16 player_x;
s16 player_y;
s16 player_vy;
u16 player_dir = DIR_DOWN;
Sprite* player_sprite;
bool player_hit;
bool script_locked;

Sprite* actor_sprites[MD_MAX_ACTORS];
s16 actor_x[MD_MAX_ACTORS];
s16 actor_y[MD_MAX_ACTORS];
u16 actor_dir[MD_MAX_ACTORS];
u16 actor_count;

u16 joy_state;
u16 joy_previous;
u16 joy_pressed;

u16 md_palette[64];
const u8* md_collision_map;
u16 md_map_width;
u16 md_map_height;

u16 md_scene_stack[MD_SCENE_STACK_SIZE];
s16 md_scene_stack_x[MD_SCENE_STACK_SIZE];
s16 md_scene_stack_y[MD_SCENE_STACK_SIZE];
u16 md_scene_stack_top;`

const runtimePrototypes = `void md_read_input(void);
void md_set_brightness(u16 level, u16 steps);
void md_place_sprite(Sprite* sprite, s16 x, s16 y);
void md_face(Sprite* sprite, u16 dir);
void md_set_visible(Sprite* sprite, SpriteVisibility visibility);
void md_set_anim(Sprite* sprite, u16 anim);
void md_place_player(void);
void md_move_actor_to(s16* x, s16* y, Sprite* sprite, s16 tx, s16 ty);
void md_wait_button(void);
bool md_tile_solid(s16 px, s16 py);
bool md_player_in_rect(s16 x, s16 y, s16 w, s16 h);
bool md_overlaps(s16 ax, s16 ay, s16 bx, s16 by);
s16 md_div(s16 a, s16 b);
s16 md_mod(s16 a, s16 b);
s16 md_rnd(s16 n);
void md_load_scene(u16 scene);
void md_switch_scene(u16 scene);
void md_push_scene(void);
void md_pop_scene(void);
void md_pop_all_scenes(void);`

const runtimeHelpers = `void md_read_input(void)
{
	joy_previous = joy_state;
	joy_state = JOY_readJoypad(JOY_1);
	joy_pressed = joy_state & ~joy_previous;
}

void md_set_brightness(u16 level, u16 steps)
{
	u16 faded[64];
	if (steps == 0) return;
	if (level > steps) level = steps;
	for (u16 i = 0; i < 64; i++) {
		u16 c = md_palette[i];
		u16 r = ((c & 0x00E) * level / steps) & 0x00E;
		u16 g = (((c >> 4) & 0x00E) * level / steps) & 0x00E;
		u16 b = (((c >> 8) & 0x00E) * level / steps) & 0x00E;
		faded[i] = r | (g << 4) | (b << 8);
	}
	PAL_setColors(0, faded, 64, CPU);
}

void md_place_sprite(Sprite* sprite, s16 x, s16 y)
{
	if (sprite) SPR_setPosition(sprite, x, y);
}

void md_face(Sprite* sprite, u16 dir)
{
	if (sprite) SPR_setHFlip(sprite, dir == DIR_LEFT);
}

void md_set_visible(Sprite* sprite, SpriteVisibility visibility)
{
	if (sprite) SPR_setVisibility(sprite, visibility);
}

void md_set_anim(Sprite* sprite, u16 anim)
{
	if (sprite) SPR_setAnim(sprite, anim);
}

void md_place_player(void)
{
	md_place_sprite(player_sprite, player_x, player_y);
	md_face(player_sprite, player_dir);
}

void md_move_actor_to(s16* x, s16* y, Sprite* sprite, s16 tx, s16 ty)
{
	while (*x != tx || *y != ty) {
		if (*x < tx) (*x)++;
		else if (*x > tx) (*x)--;
		if (*y < ty) (*y)++;
		else if (*y > ty) (*y)--;
		md_place_sprite(sprite, *x, *y);
		SPR_update();
		SYS_doVBlankProcess();
	}
}

void md_wait_button(void)
{
	do {
		SYS_doVBlankProcess();
		md_read_input();
	} while (!(joy_pressed & (BUTTON_A | BUTTON_B | BUTTON_C | BUTTON_START)));
}

bool md_tile_solid(s16 px, s16 py)
{
	if (!md_collision_map) return FALSE;
	if (px < 0 || py < 0) return TRUE;
	u16 tx = px / TILE_SIZE;
	u16 ty = py / TILE_SIZE;
	if (tx >= md_map_width || ty >= md_map_height) return TRUE;
	return md_collision_map[ty * md_map_width + tx] != 0;
}

bool md_player_in_rect(s16 x, s16 y, s16 w, s16 h)
{
	return player_x >= x && player_x < x + w && player_y >= y && player_y < y + h;
}

bool md_overlaps(s16 ax, s16 ay, s16 bx, s16 by)
{
	return abs(ax - bx) < 2 * TILE_SIZE && abs(ay - by) < 2 * TILE_SIZE;
}

s16 md_div(s16 a, s16 b)
{
	return b == 0 ? 0 : a / b;
}

s16 md_mod(s16 a, s16 b)
{
	return b == 0 ? 0 : a % b;
}

s16 md_rnd(s16 n)
{
	return n <= 0 ? 0 : (s16)(random() % n);
}

void md_switch_scene(u16 scene)
{
	current_scene = scene;
	md_load_scene(scene);
}

void md_push_scene(void)
{
	if (md_scene_stack_top >= MD_SCENE_STACK_SIZE) return;
	md_scene_stack[md_scene_stack_top] = current_scene;
	md_scene_stack_x[md_scene_stack_top] = player_x;
	md_scene_stack_y[md_scene_stack_top] = player_y;
	md_scene_stack_top++;
}

void md_pop_scene(void)
{
	if (md_scene_stack_top == 0) return;
	md_scene_stack_top--;
	md_switch_scene(md_scene_stack[md_scene_stack_top]);
	player_x = md_scene_stack_x[md_scene_stack_top];
	player_y = md_scene_stack_y[md_scene_stack_top];
	md_place_player();
}

void md_pop_all_scenes(void)
{
	if (md_scene_stack_top == 0) return;
	md_scene_stack_top = 1;
	md_pop_scene();
}`

// emitSource writes tab-indented C source through e, one tab per level
// relative to the current depth.
func emitSource(e *emitter.Emitter, src string) {
	base := e.Depth()
	for _, line := range strings.Split(src, "\n") {
		trimmed := strings.TrimLeft(line, "\t")
		if trimmed == "" {
			e.EmitBlank()
			continue
		}
		e.SetDepth(base + len(line) - len(trimmed))
		e.EmitLine(trimmed)
	}
	e.SetDepth(base)
}
