// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MD Studio Contributors

package assembler

import (
	"fmt"
	"strings"

	"github.com/mdstudio/mdstudio/internal/compiler"
	"github.com/mdstudio/mdstudio/internal/event"
	"github.com/mdstudio/mdstudio/internal/naming"
	"github.com/mdstudio/mdstudio/internal/project"
)

// RefImage is the resource kind of scene backgrounds.
const RefImage event.RefKind = "image"

var resourcePrefix = map[event.RefKind]string{
	event.RefSprite: "spr_",
	event.RefMusic:  "mus_",
	event.RefSound:  "sfx_",
	RefImage:        "img_",
}

// Resource is an externally linked symbol referenced by the main unit.
type Resource struct {
	Kind  event.RefKind
	Name  string
	Ident string
}

// Decl returns the extern declaration for the resource.
func (r Resource) Decl() string {
	switch r.Kind {
	case event.RefSprite:
		return fmt.Sprintf("extern const SpriteDefinition %s;", r.Ident)
	case RefImage:
		return fmt.Sprintf("extern const Image %s;", r.Ident)
	default:
		return fmt.Sprintf("extern const u8 %s[];", r.Ident)
	}
}

// Variable is a global script variable.
type Variable struct {
	Ident   string
	Default int
	// Implicit marks variables referenced by scripts but not declared in the project.
	Implicit bool
}

// symbols binds project entities to identifiers for one assembly.
// Scenes, actors, triggers and declared variables are bound up front in
// project order; implicit variables and resources are bound on first use.
type symbols struct {
	namer  *naming.Namer
	player string

	scenes   map[string]event.SceneRef
	actors   map[string]map[string]int
	varNames map[string]string

	vars      []Variable
	varIndex  map[string]int
	resources []Resource
	resIndex  map[string]int
}

var _ compiler.Symbols = (*symbols)(nil)

func newSymbols(p *project.Project) *symbols {
	s := &symbols{
		namer:    naming.New(),
		scenes:   make(map[string]event.SceneRef, len(p.Scenes)),
		actors:   make(map[string]map[string]int, len(p.Scenes)),
		varNames: make(map[string]string),
		varIndex: make(map[string]int),
		resIndex: make(map[string]int),
	}

	for i, sc := range p.Scenes {
		id := s.namer.Bind(naming.Scenes, sc.ID, displayName(sc.Name, sc.ID))
		s.scenes[sc.ID] = event.SceneRef{Name: id, Index: i, Const: "SCENE_" + strings.ToUpper(id)}

		slots := make(map[string]int, len(sc.Actors))
		for j, a := range sc.Actors {
			s.namer.Bind(naming.Actors, actorKey(sc.ID, a.ID), displayName(a.Name, a.ID))
			slots[a.ID] = j
		}
		s.actors[sc.ID] = slots
		for _, t := range sc.Triggers {
			s.namer.Bind(naming.Triggers, actorKey(sc.ID, t.ID), displayName(t.Name, t.ID))
		}
	}

	for _, v := range p.Variables {
		s.declare(v.ID, displayName(v.Name, v.ID), v.Default, false)
		if v.Name != "" {
			s.varNames[v.Name] = v.ID
		}
	}

	if p.Settings.PlayerSprite != "" {
		s.player = s.Resource(event.RefSprite, p.Settings.PlayerSprite)
	}
	for _, m := range p.Music {
		s.Resource(event.RefMusic, m)
	}
	for _, snd := range p.Sounds {
		s.Resource(event.RefSound, snd)
	}
	for _, sc := range p.Scenes {
		if sc.Background != "" {
			s.Resource(RefImage, sc.Background)
		}
		for _, a := range sc.Actors {
			if a.Sprite != "" {
				s.Resource(event.RefSprite, a.Sprite)
			}
		}
	}
	return s
}

func (s *symbols) declare(key, raw string, def int, implicit bool) string {
	ident := "var_" + s.namer.Bind(naming.Variables, key, raw)
	s.varIndex[key] = len(s.vars)
	s.vars = append(s.vars, Variable{Ident: ident, Default: def, Implicit: implicit})
	return ident
}

// Variable resolves a variable id, then a variable name, and otherwise
// declares the reference implicitly with a zero default.
func (s *symbols) Variable(ref string) string {
	ref = strings.Trim(strings.TrimSpace(ref), "$")
	if i, ok := s.varIndex[ref]; ok {
		return s.vars[i].Ident
	}
	if id, ok := s.varNames[ref]; ok {
		return s.vars[s.varIndex[id]].Ident
	}
	return s.declare(ref, ref, 0, true)
}

// Actor resolves an actor id within sceneID. Unknown actors are the player.
func (s *symbols) Actor(sceneID, ref string) event.ActorRef {
	slot, ok := s.actors[sceneID][ref]
	if !ok {
		return event.ActorRef{
			Name:   "player",
			Sprite: "player_sprite",
			X:      "player_x",
			Y:      "player_y",
			Dir:    "player_dir",
			Player: true,
		}
	}
	name, _ := s.namer.Lookup(naming.Actors, actorKey(sceneID, ref))
	return event.ActorRef{
		Name:   name,
		Sprite: fmt.Sprintf("actor_sprites[%d]", slot),
		X:      fmt.Sprintf("actor_x[%d]", slot),
		Y:      fmt.Sprintf("actor_y[%d]", slot),
		Dir:    fmt.Sprintf("actor_dir[%d]", slot),
	}
}

func (s *symbols) Scene(ref string) (event.SceneRef, bool) {
	sc, ok := s.scenes[ref]
	return sc, ok
}

// Resource returns the linker symbol for a named resource, recording it for
// the declarations unit on first use.
func (s *symbols) Resource(kind event.RefKind, name string) string {
	key := string(kind) + ":" + name
	if i, ok := s.resIndex[key]; ok {
		return s.resources[i].Ident
	}
	ident := s.namer.Bind(naming.Resources, key, resourcePrefix[kind]+name)
	s.resIndex[key] = len(s.resources)
	s.resources = append(s.resources, Resource{Kind: kind, Name: name, Ident: ident})
	return ident
}

func (s *symbols) sceneIdent(id string) string {
	return s.scenes[id].Name
}

func (s *symbols) ownerIdent(ns naming.Namespace, sceneID, id string) string {
	name, _ := s.namer.Lookup(ns, actorKey(sceneID, id))
	return name
}

func actorKey(sceneID, id string) string {
	return sceneID + "/" + id
}

func displayName(name, id string) string {
	if strings.TrimSpace(name) != "" {
		return name
	}
	return id
}
