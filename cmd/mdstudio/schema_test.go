// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MD Studio Contributors

package main

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaCommand(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		title string
	}{
		{name: "project", args: []string{"schema"}, title: "MD Studio Project"},
		{name: "plugin", args: []string{"schema", "--plugin"}, title: "MD Studio Plugin Manifest"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(t, tt.args...)
			require.NoError(t, err)

			var doc map[string]any
			require.NoError(t, json.Unmarshal([]byte(out), &doc), "schema is JSON")
			assert.Contains(t, doc, "$schema")
			assert.Equal(t, tt.title, doc["title"])
		})
	}
}
