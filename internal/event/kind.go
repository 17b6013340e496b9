// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MD Studio Contributors

// Package event defines event kinds, their field schemas and the registry that
// maps kind ids to emission rules.
package event

import (
	"github.com/mdstudio/mdstudio/internal/script"
)

// FieldType is the value type of a field.
type FieldType string

// Field value types.
const (
	TypeNumber  FieldType = "number"
	TypeText    FieldType = "text"
	TypeBoolean FieldType = "boolean"
	TypeSelect  FieldType = "select"
	TypeRef     FieldType = "ref"
	TypeEvents  FieldType = "events"
)

// RefKind names the entity a reference field points at.
type RefKind string

// Reference targets.
const (
	RefActor    RefKind = "actor"
	RefScene    RefKind = "scene"
	RefSprite   RefKind = "sprite"
	RefVariable RefKind = "variable"
	RefMusic    RefKind = "music"
	RefSound    RefKind = "sound"
)

// Range bounds a number field, inclusive.
type Range struct {
	Min int `yaml:"min" json:"min"`
	Max int `yaml:"max" json:"max"`
}

// Contains reports whether v lies within the range.
func (r Range) Contains(v int) bool {
	return v >= r.Min && v <= r.Max
}

// Field describes one argument of an event kind.
type Field struct {
	Key       string    `yaml:"key" json:"key"`
	Label     string    `yaml:"label,omitempty" json:"label,omitempty"`
	Type      FieldType `yaml:"type" json:"type"`
	Ref       RefKind   `yaml:"ref,omitempty" json:"ref,omitempty"`
	Range     *Range    `yaml:"range,omitempty" json:"range,omitempty"`
	Options   []string  `yaml:"options,omitempty" json:"options,omitempty"`
	Default   any       `yaml:"default,omitempty" json:"default,omitempty"`
	SubScript bool      `yaml:"subScript,omitempty" json:"subScript,omitempty"`
}

// Writer is the output surface an emission rule may use.
type Writer interface {
	EmitLine(text string)
	EmitComment(text string)
	EmitBlank()
	Indent()
	Dedent()
}

// OwnerKind identifies what holds the script being compiled.
type OwnerKind string

// Script owners.
const (
	OwnerScene   OwnerKind = "scene"
	OwnerActor   OwnerKind = "actor"
	OwnerTrigger OwnerKind = "trigger"
)

// ActorRef holds the C expressions addressing an actor at runtime.
type ActorRef struct {
	Name   string
	Sprite string
	X      string
	Y      string
	Dir    string
	Player bool
}

// SceneRef identifies a scene by dispatch index and its index constant.
type SceneRef struct {
	Name  string
	Index int
	Const string
}

// Context is the compile state visible to an emission rule.
type Context interface {
	// SceneID is the id of the scene being compiled.
	SceneID() string
	OwnerKind() OwnerKind
	// OwnerID is the actor or trigger id, or the scene id for scene hooks.
	OwnerID() string
	// CompileEvents compiles a nested event list at the writer's current depth.
	CompileEvents(nodes []script.Node) error
	// Variable returns the C identifier for a variable reference, declaring it if unknown.
	Variable(ref string) string
	// Actor resolves an actor reference. Unknown or empty references address the player.
	Actor(ref string) ActorRef
	// Scene resolves a scene reference. ok is false when the reference is unknown.
	Scene(ref string) (SceneRef, bool)
	// Resource returns the C symbol for a music, sound or sprite asset name.
	Resource(kind RefKind, name string) string
	// Local returns a fresh local identifier unique within the compile run.
	Local(prefix string) string
}

// EmitFunc lowers one node into C statements.
// A returned error is recovered by the compiler: partial output is discarded
// and replaced with a comment.
type EmitFunc func(args Args, ctx Context, w Writer) error

// Kind is a registered event kind.
type Kind struct {
	ID          string
	Description string
	Group       string
	Fields      []Field
	Emit        EmitFunc
}

// Field returns the field with the given key.
func (k *Kind) Field(key string) (Field, bool) {
	for _, f := range k.Fields {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}

// CompileBlock emits open, the nested nodes one level deeper, then "}".
func CompileBlock(ctx Context, w Writer, open string, nodes []script.Node) error {
	w.EmitLine(open)
	w.Indent()
	err := ctx.CompileEvents(nodes)
	w.Dedent()
	w.EmitLine("}")
	return err
}
