// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MD Studio Contributors

package main

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventsCommand_ListsBuiltins(t *testing.T) {
	isolate(t)

	out, _, err := execute(t, "events")
	require.NoError(t, err)
	assert.Contains(t, out, "variable-inc")
	assert.Contains(t, out, "scene-switch")
	assert.NotContains(t, out, "actor-blink")
}

func TestEventsCommand_Filter(t *testing.T) {
	isolate(t)

	out, _, err := execute(t, "events", "--plugins-dir", shippedPlugins, "--filter", "actor-b*", "--json")
	require.NoError(t, err)

	var kinds []kindView
	require.NoError(t, json.Unmarshal([]byte(out), &kinds))
	ids := make([]string, 0, len(kinds))
	for _, k := range kinds {
		ids = append(ids, k.ID)
	}
	assert.Equal(t, []string{"actor-blink", "actor-bounce"}, ids)
	assert.Equal(t, "actor", kinds[0].Group)
	require.Len(t, kinds[0].Fields, 3)
	assert.Equal(t, "times", kinds[0].Fields[1].Key)
}

func TestEventsCommand_BraceFilter(t *testing.T) {
	isolate(t)

	out, _, err := execute(t, "events", "--filter", "{loop,if}-*")
	require.NoError(t, err)
	assert.Contains(t, out, "loop-forever")
	assert.Contains(t, out, "if-variable-value")
	assert.NotContains(t, out, "variable-inc")
}

func TestEventsCommand_TextShowsFieldDetails(t *testing.T) {
	isolate(t)

	out, _, err := execute(t, "events", "--plugins-dir", shippedPlugins, "--filter", "actor-blink")
	require.NoError(t, err)
	assert.Contains(t, out, "times")
	assert.Contains(t, out, "number [1..20] = 3")
	assert.Contains(t, out, "ref -> actor")
}

func TestEventsCommand_BadFilter(t *testing.T) {
	isolate(t)

	_, _, err := execute(t, "events", "--filter", "[unclosed")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid filter")
}
