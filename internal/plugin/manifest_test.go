// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MD Studio Contributors

package plugin_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdstudio/mdstudio/internal/event"
	"github.com/mdstudio/mdstudio/internal/plugin"
	"github.com/mdstudio/mdstudio/pkg/errutil"
)

const blinkManifest = `
name: actor-fx
version: 1.2.0
type: lua
description: Extra actor effects
kinds:
  - id: actor-blink
    description: Blink an actor
    group: actor
    fields:
      - key: actor
        type: ref
        ref: actor
      - key: times
        type: number
        range: {min: 1, max: 10}
        default: 2
      - key: body
        type: events
        subScript: true
  - id: actor-spin
lua-plugin:
  entry: main.lua
`

func TestParseManifest(t *testing.T) {
	m, err := plugin.ParseManifest([]byte(blinkManifest))
	require.NoError(t, err)

	assert.Equal(t, "actor-fx", m.Name)
	assert.Equal(t, "1.2.0", m.Version)
	assert.Equal(t, plugin.TypeLua, m.Type)
	require.NotNil(t, m.LuaPlugin)
	assert.Equal(t, "main.lua", m.LuaPlugin.Entry)

	require.Len(t, m.Kinds, 2)
	blink := m.Kinds[0]
	assert.Equal(t, "actor-blink", blink.ID)
	require.Len(t, blink.Fields, 3)
	assert.Equal(t, event.TypeRef, blink.Fields[0].Type)
	assert.Equal(t, event.RefActor, blink.Fields[0].Ref)
	assert.Equal(t, &event.Range{Min: 1, Max: 10}, blink.Fields[1].Range)
	assert.Equal(t, 2, blink.Fields[1].Default)
	assert.True(t, blink.Fields[2].SubScript)
}

func TestParseManifest_Invalid(t *testing.T) {
	valid := func(replace, with string) string {
		return strings.Replace(blinkManifest, replace, with, 1)
	}

	tests := []struct {
		name string
		yaml string
	}{
		{name: "empty", yaml: ""},
		{name: "uppercase name", yaml: valid("name: actor-fx", "name: Actor_FX")},
		{name: "trailing hyphen", yaml: valid("name: actor-fx", "name: actor-")},
		{name: "name too long", yaml: valid("name: actor-fx", "name: "+strings.Repeat("a", 65))},
		{name: "version not semver", yaml: valid("version: 1.2.0", "version: latest")},
		{name: "binary type", yaml: valid("type: lua", "type: binary")},
		{name: "no kinds", yaml: valid("kinds:", "unused:")},
		{name: "unknown key", yaml: blinkManifest + "capabilities: [world.*]\n"},
		{name: "entry escapes plugin dir", yaml: valid("entry: main.lua", "entry: ../main.lua")},
		{name: "duplicate kind", yaml: valid("id: actor-spin", "id: actor-blink")},
		{name: "missing lua-plugin", yaml: valid("lua-plugin:\n  entry: main.lua\n", "")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := plugin.ParseManifest([]byte(tt.yaml))
			require.Error(t, err)
			errutil.AssertErrorCode(t, err, plugin.CodePluginLoad)
		})
	}
}

func TestManifest_Validate(t *testing.T) {
	base := func() *plugin.Manifest {
		return &plugin.Manifest{
			Name:      "fx",
			Version:   "0.1.0",
			Type:      plugin.TypeLua,
			Kinds:     []plugin.KindSpec{{ID: "fx-flash"}},
			LuaPlugin: &plugin.LuaConfig{Entry: "lib/main.lua"},
		}
	}

	require.NoError(t, base().Validate())

	tests := []struct {
		name    string
		mutate  func(m *plugin.Manifest)
		wantMsg string
	}{
		{name: "single letter name is fine", mutate: func(m *plugin.Manifest) { m.Name = "x" }},
		{name: "empty kind id", mutate: func(m *plugin.Manifest) { m.Kinds[0].ID = "" }, wantMsg: "kind id is required"},
		{name: "absolute entry", mutate: func(m *plugin.Manifest) { m.LuaPlugin.Entry = "/etc/main.lua" }, wantMsg: "inside the plugin directory"},
		{name: "empty entry", mutate: func(m *plugin.Manifest) { m.LuaPlugin.Entry = "" }, wantMsg: "lua-plugin.entry is required"},
		{name: "missing version", mutate: func(m *plugin.Manifest) { m.Version = "" }, wantMsg: "not a semantic version"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := base()
			tt.mutate(m)
			err := m.Validate()
			if tt.wantMsg == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
			errutil.AssertErrorContext(t, err, "plugin", m.Name)
		})
	}
}

func TestManifest_EventKinds(t *testing.T) {
	m, err := plugin.ParseManifest([]byte(blinkManifest))
	require.NoError(t, err)

	var bound []string
	kinds := m.EventKinds(func(id string) event.EmitFunc {
		bound = append(bound, id)
		return func(event.Args, event.Context, event.Writer) error { return nil }
	})

	require.Len(t, kinds, 2)
	assert.Equal(t, []string{"actor-blink", "actor-spin"}, bound)
	assert.Equal(t, "actor", kinds[0].Group)
	assert.Equal(t, plugin.DefaultGroup, kinds[1].Group)

	reg := event.NewRegistry()
	for _, k := range kinds {
		require.NoError(t, reg.Register(k))
	}
}
