// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MD Studio Contributors

package project

import (
	"github.com/samber/oops"
)

// Error codes for project loading and validation.
const (
	CodeInvalidProject    = "INVALID_PROJECT"
	CodeUnsupportedFormat = "UNSUPPORTED_FORMAT"
	CodeSchemaViolation   = "SCHEMA_VIOLATION"
)

// ErrInvalid creates an error for a project that fails a semantic check.
func ErrInvalid(where, reason string) error {
	return oops.Code(CodeInvalidProject).
		With("where", where).
		Errorf("%s: %s", where, reason)
}

// ErrFormat creates an error for an unsupported format version.
func ErrFormat(format string, cause error) error {
	b := oops.Code(CodeUnsupportedFormat).With("format", format)
	if cause != nil {
		return b.Wrapf(cause, "project format %q", format)
	}
	return b.Errorf("project format %q is not supported (want %s)", format, SupportedFormats)
}

// ErrSchema creates an error for a document rejected by the JSON Schema.
func ErrSchema(source string, cause error) error {
	return oops.Code(CodeSchemaViolation).
		With("source", source).
		Wrapf(cause, "%s does not match the project schema", source)
}
