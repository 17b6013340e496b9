// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MD Studio Contributors

package errutil_test

import (
	"testing"

	"github.com/samber/oops"

	"github.com/mdstudio/mdstudio/pkg/errutil"
)

func TestAssertErrorCode_MatchingCode(t *testing.T) {
	errutil.AssertErrorCode(t, oops.Code("INVALID_CONFIG").Errorf("bad jobs"), "INVALID_CONFIG")
}

func TestAssertErrorContext_MatchingKeyValue(t *testing.T) {
	err := oops.With("kind", "wait").Errorf("bad")
	errutil.AssertErrorContext(t, err, "kind", "wait")
}

func TestAssertErrorContext_NestedWrap(t *testing.T) {
	inner := oops.Code("STRUCTURAL_VIOLATION").With("kind", "group").Errorf("bad")
	err := oops.With("scene", "town").Wrap(inner)
	errutil.AssertErrorCode(t, err, "STRUCTURAL_VIOLATION")
	errutil.AssertErrorContext(t, err, "kind", "group")
	errutil.AssertErrorContext(t, err, "scene", "town")
}

func TestAssertEventError(t *testing.T) {
	inner := oops.Code("DUPLICATE_KIND").With("kind", "wait").Errorf("kind wait is already registered")
	err := oops.With("plugin", "fx").Wrap(inner)
	errutil.AssertEventError(t, err, "DUPLICATE_KIND", "wait")
	errutil.AssertErrorContext(t, err, "plugin", "fx")
}
