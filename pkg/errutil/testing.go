// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MD Studio Contributors

package errutil

import (
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// requireCoded stops the test unless err is a coded oops error.
func requireCoded(t *testing.T, err error) oops.OopsError {
	t.Helper()
	require.Error(t, err)
	oopsErr, ok := oops.AsOops(err)
	require.True(t, ok, "want a coded error, got %T: %v", err, err)
	return oopsErr
}

// AssertErrorCode checks the code of err, such as INVALID_PROJECT or
// STRUCTURAL_VIOLATION.
func AssertErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	requireCoded(t, err)
	assert.Equal(t, code, Code(err), "error: %v", err)
}

// AssertErrorContext checks one key of the context merged along the wrap
// chain, e.g. "scene" added by the assembler over "kind" added by the compiler.
func AssertErrorContext(t *testing.T, err error, key string, value any) {
	t.Helper()
	ctx := requireCoded(t, err).Context()
	if assert.Contains(t, ctx, key, "error: %v", err) {
		assert.Equal(t, value, ctx[key], "context key %q", key)
	}
}

// AssertEventError checks an error raised for one event kind: its code and
// the kind id it names.
func AssertEventError(t *testing.T, err error, code, kind string) {
	t.Helper()
	AssertErrorCode(t, err, code)
	AssertErrorContext(t, err, "kind", kind)
}
