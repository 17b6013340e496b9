// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MD Studio Contributors

package plugin

import (
	"path/filepath"
	"regexp"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"

	"github.com/mdstudio/mdstudio/internal/event"
)

// Type identifies the plugin runtime.
type Type string

// TypeLua marks kinds implemented by a sandboxed Lua script.
const TypeLua Type = "lua"

// ManifestFile is the manifest looked up in each plugin directory.
const ManifestFile = "plugin.yaml"

// DefaultGroup is the palette group of plugin kinds that do not name one.
const DefaultGroup = "plugin"

// Manifest represents a plugin.yaml file.
type Manifest struct {
	Name        string     `yaml:"name" json:"name" jsonschema:"pattern=^[a-z]([a-z0-9-]*[a-z0-9])?$,maxLength=64"`
	Version     string     `yaml:"version" json:"version" jsonschema:"minLength=1"`
	Type        Type       `yaml:"type" json:"type" jsonschema:"enum=lua"`
	Description string     `yaml:"description,omitempty" json:"description,omitempty"`
	Kinds       []KindSpec `yaml:"kinds" json:"kinds" jsonschema:"minItems=1"`
	LuaPlugin   *LuaConfig `yaml:"lua-plugin" json:"lua-plugin"`
}

// LuaConfig holds Lua-specific configuration.
type LuaConfig struct {
	Entry string `yaml:"entry" json:"entry" jsonschema:"minLength=1"`
}

// KindSpec declares one event kind. Fields use the same schema as built-in kinds.
type KindSpec struct {
	ID          string        `yaml:"id" json:"id" jsonschema:"minLength=1"`
	Description string        `yaml:"description,omitempty" json:"description,omitempty"`
	Group       string        `yaml:"group,omitempty" json:"group,omitempty"`
	Fields      []event.Field `yaml:"fields,omitempty" json:"fields,omitempty"`
}

const maxNameLength = 64

// namePattern: a lowercase letter, then lowercase letters, digits or hyphens,
// not ending with a hyphen.
var namePattern = regexp.MustCompile(`^[a-z]([a-z0-9-]*[a-z0-9])?$`)

// ParseManifest validates data against the manifest schema, decodes it and
// checks the remaining constraints.
func ParseManifest(data []byte) (*Manifest, error) {
	if len(data) == 0 {
		return nil, ErrLoad("", "manifest data is empty")
	}
	if err := ValidateSchema(data); err != nil {
		return nil, WrapLoad("", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, WrapLoad("", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks manifest constraints.
func (m *Manifest) Validate() error {
	if m.Name == "" || !namePattern.MatchString(m.Name) {
		return ErrLoad(m.Name, "name %q must start with a-z, contain only a-z, 0-9, hyphens, and not end with a hyphen", m.Name)
	}
	if len(m.Name) > maxNameLength {
		return ErrLoad(m.Name, "name must be %d characters or less, got %d", maxNameLength, len(m.Name))
	}
	if _, err := semver.NewVersion(m.Version); err != nil {
		return ErrLoad(m.Name, "version %q is not a semantic version", m.Version)
	}

	if m.Type != TypeLua {
		return ErrLoad(m.Name, "type must be 'lua', got %q", m.Type)
	}
	if m.LuaPlugin == nil || m.LuaPlugin.Entry == "" {
		return ErrLoad(m.Name, "lua-plugin.entry is required")
	}
	if !filepath.IsLocal(m.LuaPlugin.Entry) {
		return ErrLoad(m.Name, "lua-plugin.entry %q must stay inside the plugin directory", m.LuaPlugin.Entry)
	}

	if len(m.Kinds) == 0 {
		return ErrLoad(m.Name, "at least one kind is required")
	}
	seen := make(map[string]bool, len(m.Kinds))
	for _, k := range m.Kinds {
		if k.ID == "" {
			return ErrLoad(m.Name, "kind id is required")
		}
		if seen[k.ID] {
			return ErrLoad(m.Name, "kind %q declared twice", k.ID)
		}
		seen[k.ID] = true
	}
	return nil
}

// EventKinds converts the declared kinds, binding each to the rule returned by emit.
func (m *Manifest) EventKinds(emit func(kindID string) event.EmitFunc) []event.Kind {
	kinds := make([]event.Kind, 0, len(m.Kinds))
	for _, k := range m.Kinds {
		group := k.Group
		if group == "" {
			group = DefaultGroup
		}
		kinds = append(kinds, event.Kind{
			ID:          k.ID,
			Description: k.Description,
			Group:       group,
			Fields:      append([]event.Field(nil), k.Fields...),
			Emit:        emit(k.ID),
		})
	}
	return kinds
}
