// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MD Studio Contributors

// Package compilertest provides helpers for testing emission rules.
package compilertest

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mdstudio/mdstudio/internal/compiler"
	"github.com/mdstudio/mdstudio/internal/emitter"
	"github.com/mdstudio/mdstudio/internal/event"
	"github.com/mdstudio/mdstudio/internal/naming"
	"github.com/mdstudio/mdstudio/internal/script"
)

// Symbols is an in-memory compiler.Symbols.
type Symbols struct {
	// Actors maps actor ids to their slot in the scene.
	Actors map[string]int
	// Scenes maps scene ids to dispatch indices.
	Scenes map[string]int
	// Declared records variables in first-use order.
	Declared []string
}

var _ compiler.Symbols = (*Symbols)(nil)

// NewSymbols creates symbols with a "hero" actor in slot 0 and scenes "town"
// and "cave" at indices 0 and 1.
func NewSymbols() *Symbols {
	return &Symbols{
		Actors: map[string]int{"hero": 0},
		Scenes: map[string]int{"town": 0, "cave": 1},
	}
}

// Variable returns var_<sanitized ref>.
func (s *Symbols) Variable(ref string) string {
	id := "var_" + naming.Sanitize(ref)
	for _, d := range s.Declared {
		if d == id {
			return id
		}
	}
	s.Declared = append(s.Declared, id)
	return id
}

// Actor returns the slot expressions for known actors and the player otherwise.
func (s *Symbols) Actor(_, ref string) event.ActorRef {
	slot, ok := s.Actors[ref]
	if !ok {
		return event.ActorRef{Name: "player", Sprite: "player_sprite", X: "player_x", Y: "player_y", Dir: "player_dir", Player: true}
	}
	return event.ActorRef{
		Name:   ref,
		Sprite: fmt.Sprintf("actor_sprites[%d]", slot),
		X:      fmt.Sprintf("actor_x[%d]", slot),
		Y:      fmt.Sprintf("actor_y[%d]", slot),
		Dir:    fmt.Sprintf("actor_dir[%d]", slot),
	}
}

// Scene resolves ids from Scenes.
func (s *Symbols) Scene(ref string) (event.SceneRef, bool) {
	idx, ok := s.Scenes[ref]
	if !ok {
		return event.SceneRef{}, false
	}
	return event.SceneRef{Name: ref, Index: idx, Const: "SCENE_" + strings.ToUpper(naming.Sanitize(ref))}, true
}

// Resource prefixes the sanitized name by kind.
func (s *Symbols) Resource(kind event.RefKind, name string) string {
	prefix := map[event.RefKind]string{event.RefMusic: "mus_", event.RefSound: "sfx_", event.RefSprite: "spr_"}[kind]
	return prefix + naming.Sanitize(name)
}

// SceneScope is the scope used by Compile.
var SceneScope = compiler.Scope{SceneID: "town", OwnerKind: event.OwnerScene, OwnerID: "town"}

// Compile lowers nodes with registry and returns the emitted lines.
func Compile(t *testing.T, registry *event.Registry, nodes ...script.Node) []string {
	t.Helper()
	out := emitter.New()
	run := compiler.New(registry).NewRun(out, NewSymbols())
	require.NoError(t, run.Compile(SceneScope, nodes))
	return out.Lines()
}

// Text joins lines for substring assertions.
func Text(lines []string) string {
	return strings.Join(lines, "\n")
}

// Node builds a node with args.
func Node(id, kind string, args map[string]any) script.Node {
	return script.Node{ID: id, Kind: kind, Args: args}
}

// Branch builds a node with args and child lists.
func Branch(id, kind string, args map[string]any, children map[string][]script.Node) script.Node {
	return script.Node{ID: id, Kind: kind, Args: args, Children: children}
}
