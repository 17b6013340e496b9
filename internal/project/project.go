// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MD Studio Contributors

// Package project defines the in-memory project handed to the generator and
// loads it from YAML or JSON files.
package project

import (
	"github.com/mdstudio/mdstudio/internal/script"
)

// SceneType selects the movement body generated for a scene's update function.
type SceneType string

// Scene types.
const (
	SceneTopDown    SceneType = "topdown"
	ScenePlatformer SceneType = "platformer"
	SceneAdventure  SceneType = "adventure"
	SceneShmup      SceneType = "shmup"
	ScenePointClick SceneType = "pointandclick"
	SceneLogo       SceneType = "logo"
)

// Known reports whether t is a supported scene type.
func (t SceneType) Known() bool {
	switch t {
	case SceneTopDown, ScenePlatformer, SceneAdventure, SceneShmup, ScenePointClick, SceneLogo:
		return true
	}
	return false
}

// Project is a complete game description.
type Project struct {
	Format    string     `yaml:"format" json:"format" jsonschema:"description=Project file format version (semver)"`
	Name      string     `yaml:"name" json:"name" jsonschema:"minLength=1"`
	Settings  Settings   `yaml:"settings,omitempty" json:"settings,omitempty"`
	Variables []Variable `yaml:"variables,omitempty" json:"variables,omitempty"`
	Music     []string   `yaml:"music,omitempty" json:"music,omitempty" jsonschema:"description=Music resource names declared for linking"`
	Sounds    []string   `yaml:"sounds,omitempty" json:"sounds,omitempty" jsonschema:"description=Sound resource names declared for linking"`
	Scenes    []Scene    `yaml:"scenes" json:"scenes" jsonschema:"minItems=1"`
}

// Settings holds project-wide options.
type Settings struct {
	PlayerSprite string `yaml:"playerSprite,omitempty" json:"playerSprite,omitempty"`
	StartScene   string `yaml:"startScene,omitempty" json:"startScene,omitempty" jsonschema:"description=Scene id started first; defaults to the first scene"`
}

// Variable is a declared global variable.
type Variable struct {
	ID      string `yaml:"id" json:"id" jsonschema:"minLength=1"`
	Name    string `yaml:"name,omitempty" json:"name,omitempty"`
	Default int    `yaml:"default,omitempty" json:"default,omitempty" jsonschema:"minimum=-32768,maximum=32767"`
}

// Scene is one screen of the game. Positions are in tiles.
type Scene struct {
	ID         string       `yaml:"id" json:"id" jsonschema:"minLength=1"`
	Name       string       `yaml:"name" json:"name"`
	Type       SceneType    `yaml:"type,omitempty" json:"type,omitempty"`
	Width      int          `yaml:"width" json:"width" jsonschema:"minimum=1,maximum=1024"`
	Height     int          `yaml:"height" json:"height" jsonschema:"minimum=1,maximum=1024"`
	Background string       `yaml:"background,omitempty" json:"background,omitempty"`
	Collisions []int        `yaml:"collisions,omitempty" json:"collisions,omitempty" jsonschema:"description=Row-major width x height collision flags"`
	Start      *Start       `yaml:"start,omitempty" json:"start,omitempty"`
	Actors     []Actor      `yaml:"actors,omitempty" json:"actors,omitempty"`
	Triggers   []Trigger    `yaml:"triggers,omitempty" json:"triggers,omitempty"`
	Scripts    SceneScripts `yaml:"scripts,omitempty" json:"scripts,omitempty"`
}

// Start is the player's entry position in a scene.
type Start struct {
	X         int    `yaml:"x" json:"x" jsonschema:"minimum=0"`
	Y         int    `yaml:"y" json:"y" jsonschema:"minimum=0"`
	Direction string `yaml:"direction,omitempty" json:"direction,omitempty" jsonschema:"enum=down,enum=up,enum=left,enum=right"`
}

// SceneScripts are the scene-level hooks.
type SceneScripts struct {
	OnInit      script.Hook `yaml:"onInit,omitempty" json:"onInit,omitempty"`
	OnPlayerHit script.Hook `yaml:"onPlayerHit,omitempty" json:"onPlayerHit,omitempty"`
}

// Actor is a sprite placed in a scene.
type Actor struct {
	ID        string       `yaml:"id" json:"id" jsonschema:"minLength=1"`
	Name      string       `yaml:"name,omitempty" json:"name,omitempty"`
	Sprite    string       `yaml:"sprite,omitempty" json:"sprite,omitempty"`
	X         int          `yaml:"x" json:"x" jsonschema:"minimum=0"`
	Y         int          `yaml:"y" json:"y" jsonschema:"minimum=0"`
	Direction string       `yaml:"direction,omitempty" json:"direction,omitempty" jsonschema:"enum=down,enum=up,enum=left,enum=right"`
	Palette   int          `yaml:"palette,omitempty" json:"palette,omitempty" jsonschema:"minimum=0,maximum=3"`
	Scripts   ActorScripts `yaml:"scripts,omitempty" json:"scripts,omitempty"`
}

// ActorScripts are the actor hooks.
type ActorScripts struct {
	OnInit     script.Hook `yaml:"onInit,omitempty" json:"onInit,omitempty"`
	OnInteract script.Hook `yaml:"onInteract,omitempty" json:"onInteract,omitempty"`
	OnHit      script.Hook `yaml:"onHit,omitempty" json:"onHit,omitempty"`
	OnUpdate   script.Hook `yaml:"onUpdate,omitempty" json:"onUpdate,omitempty"`
}

// Trigger is a rectangular region that runs scripts when the player crosses it.
type Trigger struct {
	ID      string         `yaml:"id" json:"id" jsonschema:"minLength=1"`
	Name    string         `yaml:"name,omitempty" json:"name,omitempty"`
	X       int            `yaml:"x" json:"x" jsonschema:"minimum=0"`
	Y       int            `yaml:"y" json:"y" jsonschema:"minimum=0"`
	Width   int            `yaml:"width" json:"width" jsonschema:"minimum=1"`
	Height  int            `yaml:"height" json:"height" jsonschema:"minimum=1"`
	Scripts TriggerScripts `yaml:"scripts,omitempty" json:"scripts,omitempty"`
}

// TriggerScripts are the trigger hooks.
type TriggerScripts struct {
	OnEnter script.Hook `yaml:"onEnter,omitempty" json:"onEnter,omitempty"`
	OnLeave script.Hook `yaml:"onLeave,omitempty" json:"onLeave,omitempty"`
}

// NamedHook pairs a hook with its name for iteration.
type NamedHook struct {
	Name string
	Hook script.Hook
}

// Hooks returns the scene hooks in generation order.
func (s SceneScripts) Hooks() []NamedHook {
	return []NamedHook{{"init", s.OnInit}, {"player_hit", s.OnPlayerHit}}
}

// Hooks returns the actor hooks in generation order.
func (s ActorScripts) Hooks() []NamedHook {
	return []NamedHook{{"init", s.OnInit}, {"interact", s.OnInteract}, {"hit", s.OnHit}, {"update", s.OnUpdate}}
}

// Hooks returns the trigger hooks in generation order.
func (s TriggerScripts) Hooks() []NamedHook {
	return []NamedHook{{"enter", s.OnEnter}, {"leave", s.OnLeave}}
}

// EachHook calls fn for every declared hook in the project, in generation order.
func (p *Project) EachHook(fn func(owner string, h NamedHook) error) error {
	visit := func(owner string, hooks []NamedHook) error {
		for _, h := range hooks {
			if h.Hook == nil {
				continue
			}
			if err := fn(owner, h); err != nil {
				return err
			}
		}
		return nil
	}
	for i := range p.Scenes {
		s := &p.Scenes[i]
		if err := visit(s.ID, s.Scripts.Hooks()); err != nil {
			return err
		}
		for _, a := range s.Actors {
			if err := visit(s.ID+"/"+a.ID, a.Scripts.Hooks()); err != nil {
				return err
			}
		}
		for _, t := range s.Triggers {
			if err := visit(s.ID+"/"+t.ID, t.Scripts.Hooks()); err != nil {
				return err
			}
		}
	}
	return nil
}

// SceneIndex returns the dispatch index of the scene with id.
func (p *Project) SceneIndex(id string) (int, bool) {
	for i, s := range p.Scenes {
		if s.ID == id {
			return i, true
		}
	}
	return 0, false
}

// StartIndex returns the index of the scene the game starts in.
func (p *Project) StartIndex() int {
	if i, ok := p.SceneIndex(p.Settings.StartScene); ok {
		return i
	}
	return 0
}

// Nodes returns the total number of event nodes in the project.
func (p *Project) Nodes() int {
	total := 0
	_ = p.EachHook(func(_ string, h NamedHook) error {
		total += script.Count(*h.Hook)
		return nil
	})
	return total
}
