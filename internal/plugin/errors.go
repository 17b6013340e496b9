// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MD Studio Contributors

package plugin

import (
	"fmt"

	"github.com/samber/oops"
)

// Error codes for plugin failures.
const (
	CodePluginLoad = "PLUGIN_LOAD"
	CodePluginEmit = "PLUGIN_EMIT"
)

// ErrLoad creates an error for a plugin that cannot be loaded.
func ErrLoad(name, format string, args ...any) error {
	return oops.Code(CodePluginLoad).
		With("plugin", name).
		Errorf("%s: %s", subject(name), fmt.Sprintf(format, args...))
}

// WrapLoad wraps a cause as a load failure of plugin name.
func WrapLoad(name string, cause error) error {
	return oops.Code(CodePluginLoad).
		With("plugin", name).
		Wrapf(cause, "%s", subject(name))
}

func subject(name string) string {
	if name == "" {
		return "plugin manifest"
	}
	return "plugin " + name
}
