// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MD Studio Contributors

package plugin_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdstudio/mdstudio/internal/plugin"
)

func TestGenerateSchema(t *testing.T) {
	data, err := plugin.GenerateSchema()
	require.NoError(t, err)

	var schema map[string]any
	require.NoError(t, json.Unmarshal(data, &schema))

	assert.Equal(t, plugin.SchemaID, schema["$id"])
	assert.Equal(t, "MD Studio Plugin Manifest", schema["title"])

	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	for _, key := range []string{"name", "version", "type", "kinds", "lua-plugin"} {
		assert.Contains(t, props, key)
	}
	assert.NotContains(t, props, "binary-plugin")
}

func TestValidateSchema(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr bool
	}{
		{name: "valid manifest", yaml: blinkManifest},
		{name: "invalid yaml", yaml: "name: [unclosed", wantErr: true},
		{name: "empty", yaml: "", wantErr: true},
		{
			name: "field missing type",
			yaml: `
name: fx
version: 1.0.0
type: lua
kinds:
  - id: fx-flash
    fields:
      - key: color
lua-plugin:
  entry: main.lua
`,
			wantErr: true,
		},
		{
			name: "range needs both bounds",
			yaml: `
name: fx
version: 1.0.0
type: lua
kinds:
  - id: fx-flash
    fields:
      - key: times
        type: number
        range: {min: 1}
lua-plugin:
  entry: main.lua
`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := plugin.ValidateSchema([]byte(tt.yaml))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestFormatSchemaError(t *testing.T) {
	assert.Empty(t, plugin.FormatSchemaError(nil))
	assert.Equal(t, "missing properties: 'kinds'",
		plugin.FormatSchemaError(errors.New("schema validation failed: missing properties: 'kinds'")))
	assert.Equal(t, "other", plugin.FormatSchemaError(errors.New("other")))
}
