// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MD Studio Contributors

package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/samber/oops"

	"github.com/mdstudio/mdstudio/internal/event"
)

// Manager discovers plugins and registers their kinds.
type Manager struct {
	pluginsDir string
	host       Host
	logger     *slog.Logger
	loaded     map[string]*DiscoveredPlugin
	skipped    []SkippedPlugin
	mu         sync.RWMutex
}

// ManagerOption configures the Manager.
type ManagerOption func(*Manager)

// WithHost sets the runtime host for Lua plugins.
func WithHost(h Host) ManagerOption {
	return func(m *Manager) {
		m.host = h
	}
}

// WithLogger sets the manager's logger.
func WithLogger(l *slog.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = l
	}
}

// NewManager creates a plugin manager.
func NewManager(pluginsDir string, opts ...ManagerOption) *Manager {
	m := &Manager{
		pluginsDir: pluginsDir,
		logger:     slog.Default(),
		loaded:     make(map[string]*DiscoveredPlugin),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// DiscoveredPlugin contains a manifest and its directory.
type DiscoveredPlugin struct {
	Manifest *Manifest
	Dir      string
}

// SkippedPlugin is a plugin directory Discover passed over.
type SkippedPlugin struct {
	Dir    string
	Reason error
}

// Discover finds all valid plugins in the plugins directory, in directory
// name order. Invalid plugins are logged and skipped.
func (m *Manager) Discover(_ context.Context) ([]*DiscoveredPlugin, error) {
	if m.pluginsDir == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(m.pluginsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read plugins directory: %w", err)
	}

	var skipped []SkippedPlugin
	defer func() {
		m.mu.Lock()
		m.skipped = skipped
		m.mu.Unlock()
	}()

	names := make(map[string]string)
	var plugins []*DiscoveredPlugin
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		pluginDir := filepath.Join(m.pluginsDir, entry.Name())
		data, err := os.ReadFile(filepath.Join(pluginDir, ManifestFile)) //nolint:gosec // path is built from ReadDir entries
		if err != nil {
			m.logger.Warn("skipping plugin without manifest",
				"dir", entry.Name(),
				"error", err)
			skipped = append(skipped, SkippedPlugin{Dir: pluginDir, Reason: err})
			continue
		}

		manifest, err := ParseManifest(data)
		if err != nil {
			m.logger.Warn("skipping plugin with invalid manifest",
				"dir", entry.Name(),
				"error", err)
			skipped = append(skipped, SkippedPlugin{Dir: pluginDir, Reason: err})
			continue
		}
		if other, dup := names[manifest.Name]; dup {
			m.logger.Warn("skipping plugin with duplicate name",
				"dir", entry.Name(),
				"plugin", manifest.Name,
				"first", other)
			skipped = append(skipped, SkippedPlugin{
				Dir:    pluginDir,
				Reason: ErrLoad(manifest.Name, "duplicate plugin name, first defined in %s", other),
			})
			continue
		}
		names[manifest.Name] = entry.Name()

		plugins = append(plugins, &DiscoveredPlugin{
			Manifest: manifest,
			Dir:      pluginDir,
		})
	}
	return plugins, nil
}

// Register loads dp through the host and adds its kinds to reg. Either every
// kind of the plugin is registered or none is.
func (m *Manager) Register(ctx context.Context, dp *DiscoveredPlugin, reg *event.Registry) error {
	name := dp.Manifest.Name
	if m.host == nil {
		return ErrLoad(name, "no host for plugin type %q", dp.Manifest.Type)
	}

	kinds, err := m.host.Load(ctx, dp.Manifest, dp.Dir)
	if err != nil {
		return err
	}
	for _, k := range kinds {
		if _, exists := reg.Lookup(k.ID); exists {
			return oops.With("plugin", name).Wrap(event.ErrDuplicate(k.ID))
		}
	}
	for _, k := range kinds {
		if err := reg.Register(k); err != nil {
			return oops.With("plugin", name).Wrap(err)
		}
	}

	m.mu.Lock()
	m.loaded[name] = dp
	m.mu.Unlock()

	m.logger.Info("loaded plugin",
		"plugin", name,
		"version", dp.Manifest.Version,
		"kinds", len(kinds))
	return nil
}

// LoadInto discovers plugins and registers their kinds into reg. Registration
// stops at the first plugin that fails.
func (m *Manager) LoadInto(ctx context.Context, reg *event.Registry) error {
	discovered, err := m.Discover(ctx)
	if err != nil {
		return err
	}
	for _, dp := range discovered {
		if err := m.Register(ctx, dp, reg); err != nil {
			return err
		}
	}
	return nil
}

// Skipped returns the directories the last Discover call passed over.
func (m *Manager) Skipped() []SkippedPlugin {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]SkippedPlugin(nil), m.skipped...)
}

// ListPlugins returns names of all loaded plugins.
func (m *Manager) ListPlugins() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.loaded))
	for name := range m.loaded {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Close shuts down the manager and its host.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.loaded = make(map[string]*DiscoveredPlugin)
	if m.host != nil {
		if err := m.host.Close(ctx); err != nil {
			return fmt.Errorf("close plugin host: %w", err)
		}
	}
	return nil
}
