// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MD Studio Contributors

// Package lua runs event-kind plugins written in Lua.
package lua

import (
	"context"
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

type library struct {
	name string
	fn   lua.LGFunction
}

// sandboxLibraries are the only libraries a plugin state opens.
// os, io, debug, package and channel stay closed.
var sandboxLibraries = []library{
	{lua.BaseLibName, lua.OpenBase},
	{lua.TabLibName, lua.OpenTable},
	{lua.StringLibName, lua.OpenString},
	{lua.MathLibName, lua.OpenMath},
}

// blockedBaseFunctions reach the filesystem or compile arbitrary chunks.
var blockedBaseFunctions = []string{"dofile", "loadfile", "loadstring", "load"}

// State limits keep a runaway plugin from exhausting memory.
const (
	callStackSize = 256
	registrySize  = 1024 * 16
)

// StateFactory creates sandboxed Lua states.
type StateFactory struct {
	libraries []library
}

// NewStateFactory creates a new state factory.
func NewStateFactory() *StateFactory {
	return &StateFactory{libraries: sandboxLibraries}
}

// NewState creates a fresh state with only the sandbox libraries open. The
// state is bound to ctx, so cancelling ctx aborts a running script.
func (f *StateFactory) NewState(ctx context.Context) (*lua.LState, error) {
	L := lua.NewState(lua.Options{
		SkipOpenLibs:  true,
		CallStackSize: callStackSize,
		RegistrySize:  registrySize,
	})

	for _, lib := range f.libraries {
		if err := L.CallByParam(lua.P{
			Fn:      L.NewFunction(lib.fn),
			NRet:    0,
			Protect: true,
		}, lua.LString(lib.name)); err != nil {
			L.Close()
			return nil, fmt.Errorf("failed to open library %s: %w", lib.name, err)
		}
	}
	for _, fn := range blockedBaseFunctions {
		L.SetGlobal(fn, lua.LNil)
	}

	if ctx != nil {
		L.SetContext(ctx)
	}
	return L, nil
}
