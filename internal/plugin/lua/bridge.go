// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MD Studio Contributors

package lua

import (
	"sort"

	lua "github.com/yuin/gopher-lua"

	"github.com/mdstudio/mdstudio/internal/event"
)

// bridge exposes the compile state of one emit call to Lua as the md table.
type bridge struct {
	args event.Args
	ctx  event.Context
	w    event.Writer
	// err holds a failure from a nested compile; it takes precedence over the
	// Lua error it raised.
	err error
}

// table builds md. Functions are called with a dot (md.line("x")). local is
// a Lua keyword, so md.temp is provided alongside md["local"].
func (b *bridge) table(L *lua.LState) *lua.LTable {
	md := L.NewTable()
	fns := map[string]lua.LGFunction{
		"line":       b.line,
		"comment":    b.comment,
		"blank":      b.blank,
		"indent":     b.indent,
		"dedent":     b.dedent,
		"compile":    b.compile,
		"variable":   b.variable,
		"actor":      b.actor,
		"scene":      b.scene,
		"resource":   b.resource,
		"local":      b.local,
		"temp":       b.local,
		"scene_id":   b.sceneID,
		"owner_id":   b.ownerID,
		"owner_kind": b.ownerKind,
	}
	for name, fn := range fns {
		L.SetField(md, name, L.NewFunction(fn))
	}
	return md
}

func (b *bridge) line(L *lua.LState) int {
	b.w.EmitLine(L.CheckString(1))
	return 0
}

func (b *bridge) comment(L *lua.LState) int {
	b.w.EmitComment(L.CheckString(1))
	return 0
}

func (b *bridge) blank(*lua.LState) int {
	b.w.EmitBlank()
	return 0
}

func (b *bridge) indent(*lua.LState) int {
	b.w.Indent()
	return 0
}

func (b *bridge) dedent(*lua.LState) int {
	b.w.Dedent()
	return 0
}

// compile lowers the node's event list bound to slot at the current depth.
func (b *bridge) compile(L *lua.LState) int {
	slot := L.CheckString(1)
	if err := b.ctx.CompileEvents(b.args.Events(slot)); err != nil {
		b.err = err
		L.RaiseError("compile %s: %v", slot, err)
	}
	return 0
}

func (b *bridge) variable(L *lua.LState) int {
	L.Push(lua.LString(b.ctx.Variable(L.CheckString(1))))
	return 1
}

func (b *bridge) actor(L *lua.LState) int {
	a := b.ctx.Actor(L.OptString(1, ""))
	t := L.NewTable()
	L.SetField(t, "name", lua.LString(a.Name))
	L.SetField(t, "sprite", lua.LString(a.Sprite))
	L.SetField(t, "x", lua.LString(a.X))
	L.SetField(t, "y", lua.LString(a.Y))
	L.SetField(t, "dir", lua.LString(a.Dir))
	L.SetField(t, "player", lua.LBool(a.Player))
	L.Push(t)
	return 1
}

// scene returns the scene's index constant and true, or "0" and false when
// the reference is unknown.
func (b *bridge) scene(L *lua.LState) int {
	sc, ok := b.ctx.Scene(L.CheckString(1))
	if !ok {
		L.Push(lua.LString("0"))
		L.Push(lua.LFalse)
		return 2
	}
	L.Push(lua.LString(sc.Const))
	L.Push(lua.LTrue)
	return 2
}

func (b *bridge) resource(L *lua.LState) int {
	kind := event.RefKind(L.CheckString(1))
	L.Push(lua.LString(b.ctx.Resource(kind, L.CheckString(2))))
	return 1
}

func (b *bridge) local(L *lua.LState) int {
	L.Push(lua.LString(b.ctx.Local(L.OptString(1, "tmp"))))
	return 1
}

func (b *bridge) sceneID(L *lua.LState) int {
	L.Push(lua.LString(b.ctx.SceneID()))
	return 1
}

func (b *bridge) ownerID(L *lua.LState) int {
	L.Push(lua.LString(b.ctx.OwnerID()))
	return 1
}

func (b *bridge) ownerKind(L *lua.LState) int {
	L.Push(lua.LString(string(b.ctx.OwnerKind())))
	return 1
}

// argsTable converts resolved scalar fields. Event-list fields are reached
// through md.compile instead.
func argsTable(L *lua.LState, args event.Args) *lua.LTable {
	values := args.Values()
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	t := L.NewTable()
	for _, k := range keys {
		switch v := values[k].(type) {
		case int:
			L.SetField(t, k, lua.LNumber(v))
		case string:
			L.SetField(t, k, lua.LString(v))
		case bool:
			L.SetField(t, k, lua.LBool(v))
		}
	}
	L.SetField(t, "node_id", lua.LString(args.NodeID()))
	return t
}
