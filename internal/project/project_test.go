// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MD Studio Contributors

package project_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdstudio/mdstudio/internal/project"
	"github.com/mdstudio/mdstudio/internal/script"
	"github.com/mdstudio/mdstudio/pkg/errutil"
)

func loadTown(t *testing.T) *project.Project {
	t.Helper()
	p, err := project.Load(filepath.Join("testdata", "town.yaml"))
	require.NoError(t, err)
	return p
}

func TestLoad_YAML(t *testing.T) {
	p := loadTown(t)

	assert.Equal(t, "Town Demo", p.Name)
	require.Len(t, p.Scenes, 2)
	town := p.Scenes[0]
	assert.Equal(t, project.SceneTopDown, town.Type)
	assert.Len(t, town.Collisions, 12)
	require.NotNil(t, town.Start)
	assert.Equal(t, 1, town.Start.X)

	keeper := town.Actors[0]
	require.NotNil(t, keeper.Scripts.OnInteract)
	nodes := *keeper.Scripts.OnInteract
	require.Len(t, nodes, 2)
	assert.Equal(t, "greet", nodes[0].ID)
	assert.Equal(t, "if-variable-value", nodes[1].Kind)
	assert.Len(t, nodes[1].Children["true"], 1)
	assert.True(t, nodes[1].Children["false"][0].Disabled)

	assert.Nil(t, keeper.Scripts.OnInit, "undeclared hook stays nil")
	require.NotNil(t, p.Scenes[1].Scripts.OnInit, "declared empty hook is kept")
	assert.Empty(t, *p.Scenes[1].Scripts.OnInit)
}

func TestLoad_AssignsDeterministicIDs(t *testing.T) {
	first := loadTown(t)
	second := loadTown(t)

	var ids []string
	_ = first.EachHook(func(_ string, h project.NamedHook) error {
		script.Walk(*h.Hook, func(n *script.Node) bool {
			ids = append(ids, n.ID)
			return true
		})
		return nil
	})
	for _, id := range ids {
		assert.NotEmpty(t, id)
		if id == "greet" {
			continue
		}
		_, err := ulid.Parse(id)
		assert.NoError(t, err, id)
	}

	assert.Equal(t, first, second)
}

func TestLoad_JSONRoundTrip(t *testing.T) {
	p := loadTown(t)
	data, err := json.MarshalIndent(p, "", "  ")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "town.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	loaded, err := project.Load(path)
	require.NoError(t, err)
	assert.Equal(t, p.Scenes[0].Actors[0].ID, loaded.Scenes[0].Actors[0].ID)
	assert.Equal(t, p.Nodes(), loaded.Nodes())
}

func TestLoad_UnsupportedExtension(t *testing.T) {
	_, err := project.Load("project.toml")
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, project.CodeInvalidProject)
}

func TestDecode_SchemaViolations(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "missing scenes", doc: "format: 1.0.0\nname: x\n"},
		{name: "unknown top-level key", doc: "format: 1.0.0\nname: x\nscenes: [{id: a, name: A, width: 1, height: 1}]\nextra: 1\n"},
		{name: "zero width", doc: "format: 1.0.0\nname: x\nscenes: [{id: a, name: A, width: 0, height: 1}]\n"},
		{name: "node without kind", doc: "format: 1.0.0\nname: x\nscenes: [{id: a, name: A, width: 1, height: 1, scripts: {onInit: [{id: n}]}}]\n"},
		{name: "bad direction", doc: "format: 1.0.0\nname: x\nscenes: [{id: a, name: A, width: 1, height: 1, start: {x: 0, y: 0, direction: north}}]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := project.Decode([]byte(tt.doc), project.EncodingYAML, "inline")
			require.Error(t, err)
			errutil.AssertErrorCode(t, err, project.CodeSchemaViolation)
		})
	}
}

func TestDecode_EmptyDocument(t *testing.T) {
	_, err := project.Decode([]byte("  \n"), project.EncodingYAML, "inline")
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, project.CodeInvalidProject)
}

func TestCheckFormat(t *testing.T) {
	tests := []struct {
		format string
		ok     bool
	}{
		{"1.0.0", true},
		{"1.9.3", true},
		{"2.0.0", false},
		{"0.9.0", false},
		{"banana", false},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			err := project.CheckFormat(tt.format)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			errutil.AssertErrorCode(t, err, project.CodeUnsupportedFormat)
			errutil.AssertErrorContext(t, err, "format", tt.format)
		})
	}
}

func validProject() *project.Project {
	return &project.Project{
		Format: "1.0.0",
		Name:   "Demo",
		Scenes: []project.Scene{
			{ID: "a", Name: "A", Width: 2, Height: 2},
			{ID: "b", Name: "B", Width: 1, Height: 1},
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *project.Project)
		want   string
	}{
		{name: "valid", mutate: func(*project.Project) {}},
		{name: "duplicate scene id", mutate: func(p *project.Project) { p.Scenes[1].ID = "a" }, want: project.CodeInvalidProject},
		{name: "collision size", mutate: func(p *project.Project) { p.Scenes[0].Collisions = []int{1, 0, 1} }, want: project.CodeInvalidProject},
		{name: "unknown start scene", mutate: func(p *project.Project) { p.Settings.StartScene = "zzz" }, want: project.CodeInvalidProject},
		{name: "duplicate variable", mutate: func(p *project.Project) {
			p.Variables = []project.Variable{{ID: "v"}, {ID: "v"}}
		}, want: project.CodeInvalidProject},
		{name: "actor and trigger share id", mutate: func(p *project.Project) {
			p.Scenes[0].Actors = []project.Actor{{ID: "x"}}
			p.Scenes[0].Triggers = []project.Trigger{{ID: "x", Width: 1, Height: 1}}
		}, want: project.CodeInvalidProject},
		{name: "duplicate node id", mutate: func(p *project.Project) {
			p.Scenes[0].Scripts.OnInit = script.Events(
				script.Node{ID: "n", Kind: "comment"},
				script.Node{ID: "g", Kind: "group", Children: map[string][]script.Node{
					"events": {{ID: "n", Kind: "comment"}},
				}},
			)
		}, want: project.CodeInvalidProject},
		{name: "format out of range", mutate: func(p *project.Project) { p.Format = "3.0.0" }, want: project.CodeUnsupportedFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validProject()
			tt.mutate(p)
			err := p.Validate()
			if tt.want == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			errutil.AssertErrorCode(t, err, tt.want)
		})
	}
}

func TestValidate_DuplicateNodeNamesHook(t *testing.T) {
	p := validProject()
	p.Scenes[1].Scripts.OnPlayerHit = script.Events(
		script.Node{ID: "n", Kind: "comment"},
		script.Node{ID: "n", Kind: "comment"},
	)

	err := p.Validate()
	require.Error(t, err)
	errutil.AssertErrorContext(t, err, "hook", "player_hit")
	errutil.AssertErrorContext(t, err, "node", "n")
}

func TestGenerateSchema(t *testing.T) {
	data, err := project.GenerateSchema()
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, project.SchemaID, doc["$id"])
	defs, ok := doc["$defs"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, defs, "Node")
	assert.Contains(t, defs, "Scene")
}

func TestSceneType_Known(t *testing.T) {
	assert.True(t, project.SceneLogo.Known())
	assert.False(t, project.SceneType("racing").Known())
}

func TestStartIndex(t *testing.T) {
	p := validProject()
	assert.Equal(t, 0, p.StartIndex())
	p.Settings.StartScene = "b"
	assert.Equal(t, 1, p.StartIndex())
}
