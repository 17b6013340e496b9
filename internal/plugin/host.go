// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MD Studio Contributors

// Package plugin discovers event-kind plugins and registers their kinds.
package plugin

import (
	"context"

	"github.com/mdstudio/mdstudio/internal/event"
)

// Host runs plugins of one runtime type.
type Host interface {
	// Load prepares a plugin from its manifest and returns the kinds it
	// implements, ready for registration.
	Load(ctx context.Context, manifest *Manifest, dir string) ([]event.Kind, error)

	// Plugins returns names of all loaded plugins.
	Plugins() []string

	// Close shuts down the host and all plugins.
	Close(ctx context.Context) error
}
