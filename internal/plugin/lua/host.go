// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MD Studio Contributors

package lua

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/samber/oops"
	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"

	"github.com/mdstudio/mdstudio/internal/event"
	"github.com/mdstudio/mdstudio/internal/plugin"
)

var _ plugin.Host = (*Host)(nil)

// EmitFunction is the global every plugin entry must define:
// emit(kind, args, md).
const EmitFunction = "emit"

// DefaultEmitTimeout bounds a single emit call.
const DefaultEmitTimeout = 2 * time.Second

type luaPlugin struct {
	manifest *plugin.Manifest
	proto    *lua.FunctionProto
}

// Host runs Lua plugins. Entries are compiled once at load time; every emit
// call executes in a fresh sandboxed state.
type Host struct {
	factory *StateFactory
	timeout time.Duration
	logger  *slog.Logger
	plugins map[string]*luaPlugin
	mu      sync.RWMutex
	closed  bool
}

// Option configures a Host.
type Option func(*Host)

// WithEmitTimeout bounds each emit call. Non-positive values keep the default.
func WithEmitTimeout(d time.Duration) Option {
	return func(h *Host) {
		if d > 0 {
			h.timeout = d
		}
	}
}

// WithLogger sets the host's logger.
func WithLogger(l *slog.Logger) Option {
	return func(h *Host) {
		h.logger = l
	}
}

// NewHost creates a Lua plugin host.
func NewHost(opts ...Option) *Host {
	h := &Host{
		factory: NewStateFactory(),
		timeout: DefaultEmitTimeout,
		logger:  slog.Default(),
		plugins: make(map[string]*luaPlugin),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Load compiles the plugin entry, checks that it defines emit and returns the
// manifest's kinds bound to it.
func (h *Host) Load(ctx context.Context, manifest *plugin.Manifest, dir string) ([]event.Kind, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, plugin.ErrLoad(manifest.Name, "host is closed")
	}

	entry := manifest.LuaPlugin.Entry
	entryPath := filepath.Join(dir, entry)
	f, err := os.Open(filepath.Clean(entryPath))
	if err != nil {
		return nil, oops.Code(plugin.CodePluginLoad).
			With("plugin", manifest.Name).
			With("path", entryPath).
			Hint("failed to read entry file").
			Wrap(err)
	}
	defer func() { _ = f.Close() }()

	chunk, err := parse.Parse(f, entry)
	if err != nil {
		return nil, oops.Code(plugin.CodePluginLoad).
			With("plugin", manifest.Name).
			With("entry", entry).
			Hint("syntax error").
			Wrap(err)
	}
	proto, err := lua.Compile(chunk, entry)
	if err != nil {
		return nil, plugin.WrapLoad(manifest.Name, err)
	}

	if err := h.checkEntry(ctx, proto); err != nil {
		return nil, oops.Code(plugin.CodePluginLoad).
			With("plugin", manifest.Name).
			With("entry", entry).
			Wrap(err)
	}

	h.plugins[manifest.Name] = &luaPlugin{manifest: manifest, proto: proto}
	name := manifest.Name
	return manifest.EventKinds(func(kindID string) event.EmitFunc {
		return func(args event.Args, ctx event.Context, w event.Writer) error {
			return h.emit(name, kindID, args, ctx, w)
		}
	}), nil
}

// checkEntry runs the chunk once in a throwaway state.
func (h *Host) checkEntry(ctx context.Context, proto *lua.FunctionProto) error {
	runCtx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	L, err := h.factory.NewState(runCtx)
	if err != nil {
		return err
	}
	defer L.Close()

	L.Push(L.NewFunctionFromProto(proto))
	if err := L.PCall(0, 0, nil); err != nil {
		return err
	}
	if L.GetGlobal(EmitFunction).Type() != lua.LTFunction {
		return errors.New("entry does not define function " + EmitFunction)
	}
	return nil
}

// emit runs one emit call. A structural violation raised by a nested compile
// is returned as is so the compiler aborts; any other failure is a
// PLUGIN_EMIT error, which the compiler recovers from.
func (h *Host) emit(name, kindID string, args event.Args, cctx event.Context, w event.Writer) error {
	h.mu.RLock()
	p, ok := h.plugins[name]
	h.mu.RUnlock()
	if !ok {
		return emitError(name, kindID).New("plugin not loaded")
	}

	runCtx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	L, err := h.factory.NewState(runCtx)
	if err != nil {
		return emitError(name, kindID).Hint("failed to create state").Wrap(err)
	}
	defer L.Close()

	L.Push(L.NewFunctionFromProto(p.proto))
	if err := L.PCall(0, 0, nil); err != nil {
		return emitError(name, kindID).Hint("failed to load code").Wrap(err)
	}

	b := &bridge{args: args, ctx: cctx, w: w}
	err = L.CallByParam(lua.P{
		Fn:      L.GetGlobal(EmitFunction),
		NRet:    0,
		Protect: true,
	}, lua.LString(kindID), argsTable(L, args), b.table(L))
	if b.err != nil {
		return b.err
	}
	if err != nil {
		h.logger.Debug("plugin emit failed",
			"plugin", name,
			"kind", kindID,
			"node", args.NodeID(),
			"error", err)
		return emitError(name, kindID).Wrap(err)
	}
	return nil
}

func emitError(name, kindID string) oops.OopsErrorBuilder {
	return oops.Code(plugin.CodePluginEmit).
		With("plugin", name).
		With("kind", kindID)
}

// Plugins returns names of loaded plugins in sorted order.
func (h *Host) Plugins() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	names := make([]string, 0, len(h.plugins))
	for name := range h.plugins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Close shuts down the host. Kinds bound earlier fail with PLUGIN_EMIT afterwards.
func (h *Host) Close(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	h.plugins = map[string]*luaPlugin{}
	return nil
}
