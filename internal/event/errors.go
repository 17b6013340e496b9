// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MD Studio Contributors

package event

import (
	"errors"
	"strings"

	"github.com/samber/oops"
)

// Error codes for registry and resolution failures.
const (
	CodeDuplicateKind       = "DUPLICATE_KIND"
	CodeInvalidKind         = "INVALID_KIND"
	CodeStructuralViolation = "STRUCTURAL_VIOLATION"
	CodeRegistryFrozen      = "REGISTRY_FROZEN"
	CodeMissingKinds        = "MISSING_KINDS"
)

// ErrDuplicateKind indicates a kind id was registered twice.
var ErrDuplicateKind = errors.New("event kind already registered")

// ErrStructuralViolation indicates a field bound to the wrong shape of value.
var ErrStructuralViolation = errors.New("structural violation")

// ErrRegistryFrozen indicates a registration after the registry was frozen.
var ErrRegistryFrozen = errors.New("event registry is frozen")

// ErrDuplicate creates an error for a second registration of id.
func ErrDuplicate(id string) error {
	return oops.Code(CodeDuplicateKind).
		With("kind", id).
		Wrapf(ErrDuplicateKind, "register %s", id)
}

// ErrInvalid creates an error for a malformed kind definition.
func ErrInvalid(id, reason string) error {
	return oops.Code(CodeInvalidKind).
		With("kind", id).
		Errorf("invalid event kind %q: %s", id, reason)
}

// ErrStructural creates an error for a field whose shape contradicts its schema.
// The kind id is carried in the error context so callers can name the offender.
func ErrStructural(kind, field, reason string) error {
	return oops.Code(CodeStructuralViolation).
		With("kind", kind).
		With("field", field).
		Wrapf(ErrStructuralViolation, "event kind %q field %q: %s", kind, field, reason)
}

// ErrFrozen creates an error for a registration attempt on a frozen registry.
func ErrFrozen(id string) error {
	return oops.Code(CodeRegistryFrozen).
		With("kind", id).
		Wrapf(ErrRegistryFrozen, "register %s", id)
}

// ErrMissing creates an error listing statically known kinds absent from a registry.
func ErrMissing(ids []string) error {
	return oops.Code(CodeMissingKinds).
		With("kinds", ids).
		Errorf("registry is missing kinds: %s", strings.Join(ids, ", "))
}

// KindOf returns the event kind id carried by an oops error, if any.
func KindOf(err error) (string, bool) {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return "", false
	}
	id, ok := oopsErr.Context()["kind"].(string)
	return id, ok
}
