// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MD Studio Contributors

// Package builtin registers the event kinds shipped with mdstudio.
package builtin

import (
	"github.com/mdstudio/mdstudio/internal/event"
)

// KnownKinds lists every built-in kind id. NewRegistry verifies the registry
// against it so a kind dropped from registration fails at startup.
var KnownKinds = []string{
	"if-variable-value",
	"if-variable-compare",
	"if-expression",
	"if-button-pressed",
	"if-actor-at",
	"variable-switch",
	"loop-forever",
	"loop-repeat",
	"loop-while",
	"loop-while-expression",
	"group",
	"comment",
	"wait",
	"stop-script",
	"scene-switch",
	"scene-push",
	"scene-pop",
	"scene-pop-all",
	"screen-fade-out",
	"screen-fade-in",
	"camera-shake",
	"actor-move-to",
	"actor-set-position",
	"actor-set-direction",
	"actor-show",
	"actor-hide",
	"actor-set-anim",
	"variable-set",
	"variable-inc",
	"variable-dec",
	"variable-math",
	"variable-random",
	"evaluate-expression",
	"music-play",
	"music-stop",
	"sound-play",
	"text-show",
	"script-lock",
	"script-unlock",
}

// Kinds returns the built-in kind definitions.
func Kinds() []event.Kind {
	var all []event.Kind
	all = append(all, controlKinds()...)
	all = append(all, sceneKinds()...)
	all = append(all, actorKinds()...)
	all = append(all, variableKinds()...)
	all = append(all, mediaKinds()...)
	return all
}

// Register adds the built-in kinds to r.
func Register(r *event.Registry) error {
	for _, k := range Kinds() {
		if err := r.Register(k); err != nil {
			return err
		}
	}
	return r.RequireKinds(KnownKinds...)
}

// NewRegistry returns an unfrozen registry holding the built-in kinds.
// It panics if a built-in kind is malformed or missing.
func NewRegistry() *event.Registry {
	r := event.NewRegistry()
	if err := Register(r); err != nil {
		panic(err)
	}
	return r
}
