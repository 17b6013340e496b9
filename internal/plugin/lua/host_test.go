// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MD Studio Contributors

package lua_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdstudio/mdstudio/internal/compiler"
	"github.com/mdstudio/mdstudio/internal/compiler/compilertest"
	"github.com/mdstudio/mdstudio/internal/emitter"
	"github.com/mdstudio/mdstudio/internal/event"
	"github.com/mdstudio/mdstudio/internal/event/builtin"
	"github.com/mdstudio/mdstudio/internal/plugin"
	pluginlua "github.com/mdstudio/mdstudio/internal/plugin/lua"
	"github.com/mdstudio/mdstudio/internal/script"
	"github.com/mdstudio/mdstudio/pkg/errutil"
)

const blinkLua = `
function emit(kind, args, md)
    local a = md.actor(args.actor)
    local i = md.temp("blink")
    md.comment(kind .. " x" .. args.times)
    md.line("for (u16 " .. i .. " = 0; " .. i .. " < " .. args.times .. "; " .. i .. "++) {")
    md.indent()
    md.line("md_set_visible(" .. a.sprite .. ", HIDDEN);")
    md.compile("body")
    md.dedent()
    md.line("}")
end
`

var blinkKind = plugin.KindSpec{
	ID:          "actor-blink",
	Description: "Blink an actor",
	Fields: []event.Field{
		{Key: "actor", Type: event.TypeRef, Ref: event.RefActor},
		{Key: "times", Type: event.TypeNumber, Range: &event.Range{Min: 1, Max: 10}, Default: 2},
		{Key: "body", Type: event.TypeEvents, SubScript: true},
	},
}

// writePlugin writes main.lua into a temp dir and returns a manifest for it.
func writePlugin(t *testing.T, code string, kinds ...plugin.KindSpec) (*plugin.Manifest, string) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.lua"), []byte(code), 0o600))
	return &plugin.Manifest{
		Name:      "test-plugin",
		Version:   "1.0.0",
		Type:      plugin.TypeLua,
		Kinds:     kinds,
		LuaPlugin: &plugin.LuaConfig{Entry: "main.lua"},
	}, dir
}

// loadRegistry loads the plugin into host and registers its kinds next to the built-ins.
func loadRegistry(t *testing.T, host *pluginlua.Host, code string, kinds ...plugin.KindSpec) *event.Registry {
	t.Helper()
	manifest, dir := writePlugin(t, code, kinds...)
	loaded, err := host.Load(context.Background(), manifest, dir)
	require.NoError(t, err)

	reg := builtin.NewRegistry()
	for _, k := range loaded {
		require.NoError(t, reg.Register(k))
	}
	reg.Freeze()
	return reg
}

func TestHost_Load(t *testing.T) {
	host := pluginlua.NewHost()
	manifest, dir := writePlugin(t, blinkLua, blinkKind)

	kinds, err := host.Load(context.Background(), manifest, dir)
	require.NoError(t, err)

	require.Len(t, kinds, 1)
	assert.Equal(t, "actor-blink", kinds[0].ID)
	assert.Equal(t, plugin.DefaultGroup, kinds[0].Group)
	assert.NotNil(t, kinds[0].Emit)
	assert.Equal(t, []string{"test-plugin"}, host.Plugins())
}

func TestHost_LoadFailures(t *testing.T) {
	tests := []struct {
		name  string
		code  string
		entry string
	}{
		{name: "missing entry file", code: blinkLua, entry: "missing.lua"},
		{name: "syntax error", code: "function emit(", entry: "main.lua"},
		{name: "no emit function", code: "function render() end", entry: "main.lua"},
		{name: "runtime error at load", code: "error('boom')", entry: "main.lua"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			manifest, dir := writePlugin(t, tt.code, blinkKind)
			manifest.LuaPlugin.Entry = tt.entry

			_, err := pluginlua.NewHost().Load(context.Background(), manifest, dir)
			require.Error(t, err)
			errutil.AssertErrorCode(t, err, plugin.CodePluginLoad)
			errutil.AssertErrorContext(t, err, "plugin", "test-plugin")
		})
	}
}

func TestHost_LoadAfterClose(t *testing.T) {
	host := pluginlua.NewHost()
	require.NoError(t, host.Close(context.Background()))

	manifest, dir := writePlugin(t, blinkLua, blinkKind)
	_, err := host.Load(context.Background(), manifest, dir)
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, plugin.CodePluginLoad)
}

func TestHost_EmitsThroughCompiler(t *testing.T) {
	reg := loadRegistry(t, pluginlua.NewHost(), blinkLua, blinkKind)

	lines := compilertest.Compile(t, reg, compilertest.Branch("b1", "actor-blink",
		map[string]any{"actor": "hero", "times": 3},
		map[string][]script.Node{"body": {compilertest.Node("n2", "variable-inc", map[string]any{"variable": "coins"})}}))

	assert.Equal(t, []string{
		"// actor-blink x3",
		"for (u16 blink_0 = 0; blink_0 < 3; blink_0++) {",
		"    md_set_visible(actor_sprites[0], HIDDEN);",
		"    // increment var_coins",
		"    var_coins++;",
		"}",
	}, lines)
}

func TestHost_ArgsUseResolvedDefaults(t *testing.T) {
	reg := loadRegistry(t, pluginlua.NewHost(), blinkLua, blinkKind)

	lines := compilertest.Compile(t, reg, compilertest.Node("b1", "actor-blink",
		map[string]any{"times": 99}))

	text := compilertest.Text(lines)
	assert.Contains(t, text, `actor-blink field "times"`)
	assert.Contains(t, text, "blink_0 < 2;")
	assert.Contains(t, text, "md_set_visible(player_sprite, HIDDEN);")
}

func TestHost_SceneLookup(t *testing.T) {
	code := `
function emit(kind, args, md)
    local c, ok = md.scene(args.target)
    md.line("md_switch_scene(" .. c .. "); /* " .. tostring(ok) .. " " .. md.scene_id() .. " " .. md.owner_kind() .. " */")
end
`
	kind := plugin.KindSpec{ID: "warp", Fields: []event.Field{{Key: "target", Type: event.TypeRef, Ref: event.RefScene}}}
	reg := loadRegistry(t, pluginlua.NewHost(), code, kind)

	lines := compilertest.Compile(t, reg,
		compilertest.Node("w1", "warp", map[string]any{"target": "cave"}),
		compilertest.Node("w2", "warp", map[string]any{"target": "moon"}))

	assert.Equal(t, []string{
		"md_switch_scene(SCENE_CAVE); /* true town scene */",
		"md_switch_scene(0); /* false town scene */",
	}, lines)
}

func TestHost_SandboxHidesUnsafeLibraries(t *testing.T) {
	code := `
function emit(kind, args, md)
    md.line("// " .. tostring(io) .. " " .. tostring(os) .. " " .. tostring(dofile))
end
`
	reg := loadRegistry(t, pluginlua.NewHost(), code, plugin.KindSpec{ID: "sandbox-check"})

	lines := compilertest.Compile(t, reg, compilertest.Node("p1", "sandbox-check", nil))
	assert.Equal(t, []string{"// nil nil nil"}, lines)
}

func TestHost_RuntimeErrorIsRecovered(t *testing.T) {
	code := `
function emit(kind, args, md)
    md.line("partial();")
    error("tile out of range")
end
`
	reg := loadRegistry(t, pluginlua.NewHost(), code, plugin.KindSpec{ID: "kaput"})

	lines := compilertest.Compile(t, reg,
		compilertest.Node("k1", "kaput", nil),
		compilertest.Node("s1", "stop-script", nil))

	require.NotEmpty(t, lines)
	assert.True(t, strings.HasPrefix(lines[0], "// event k1 (kaput) failed:"), lines[0])
	assert.Contains(t, lines[0], "tile out of range")
	assert.NotContains(t, compilertest.Text(lines), "partial();")
	assert.Equal(t, []string{"// stop script", "return;"}, lines[len(lines)-2:])
}

func TestHost_EmitTimeout(t *testing.T) {
	code := `
function emit(kind, args, md)
    while true do end
end
`
	host := pluginlua.NewHost(pluginlua.WithEmitTimeout(50 * time.Millisecond))
	reg := loadRegistry(t, host, code, plugin.KindSpec{ID: "spin"})

	lines := compilertest.Compile(t, reg, compilertest.Node("s1", "spin", nil))
	require.NotEmpty(t, lines)
	assert.True(t, strings.HasPrefix(lines[0], "// event s1 (spin) failed:"), lines[0])
}

func TestHost_NestedStructuralViolationAborts(t *testing.T) {
	code := `
function emit(kind, args, md)
    pcall(md.compile, "body")
end
`
	kind := plugin.KindSpec{ID: "wrap", Fields: []event.Field{{Key: "body", Type: event.TypeEvents, SubScript: true}}}
	reg := loadRegistry(t, pluginlua.NewHost(), code, kind)

	bad := script.Node{ID: "g1", Kind: "group", Args: map[string]any{"events": "not a list"}}
	node := compilertest.Branch("w1", "wrap", nil, map[string][]script.Node{"body": {bad}})

	run := compiler.New(reg).NewRun(emitter.New(), compilertest.NewSymbols())
	err := run.Compile(compilertest.SceneScope, []script.Node{node})
	require.ErrorIs(t, err, event.ErrStructuralViolation)
	errutil.AssertEventError(t, err, event.CodeStructuralViolation, "group")
}

func TestHost_EmitAfterClose(t *testing.T) {
	host := pluginlua.NewHost()
	reg := loadRegistry(t, host, blinkLua, blinkKind)
	require.NoError(t, host.Close(context.Background()))

	lines := compilertest.Compile(t, reg, compilertest.Node("b1", "actor-blink", nil))
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "plugin not loaded")
}

func TestShippedPlugins(t *testing.T) {
	mgr := plugin.NewManager(filepath.Join("..", "..", "..", "plugins"), plugin.WithHost(pluginlua.NewHost()))
	reg := builtin.NewRegistry()
	require.NoError(t, mgr.LoadInto(context.Background(), reg))
	reg.Freeze()
	assert.Contains(t, mgr.ListPlugins(), "actor-fx")

	lines := compilertest.Compile(t, reg, compilertest.Branch("b1", "actor-bounce",
		map[string]any{"actor": "hero", "height": 2},
		map[string][]script.Node{"landed": {compilertest.Node("n2", "variable-inc", map[string]any{"variable": "coins"})}}))

	assert.Equal(t, []string{
		"// bounce hero by 2 px",
		"for (s16 bounce_0 = 0; bounce_0 < 4; bounce_0++) {",
		"    actor_y[0] += (bounce_0 < 2) ? -1 : 1;",
		"    md_place_sprite(actor_sprites[0], actor_x[0], actor_y[0]);",
		"    SPR_update();",
		"    SYS_doVBlankProcess();",
		"}",
		"// increment var_coins",
		"var_coins++;",
	}, lines)

	blink := compilertest.Text(compilertest.Compile(t, reg, compilertest.Node("b2", "actor-blink", nil)))
	assert.Contains(t, blink, "// blink player 3 times")
	assert.Contains(t, blink, "md_set_visible(player_sprite, HIDDEN);")
	assert.Contains(t, blink, "fx_wait_0 < 4;")
}
