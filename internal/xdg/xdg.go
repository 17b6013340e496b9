// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MD Studio Contributors

// Package xdg resolves XDG Base Directory paths for mdstudio.
package xdg

import (
	"os"
	"path/filepath"
)

const appName = "mdstudio"

// ConfigFileName is the config file looked up in ConfigDir.
const ConfigFileName = "config.yaml"

func base(env string, fallback ...string) string {
	if dir := os.Getenv(env); dir != "" {
		return dir
	}
	return filepath.Join(append([]string{os.Getenv("HOME")}, fallback...)...)
}

// ConfigDir returns $XDG_CONFIG_HOME/mdstudio, falling back to ~/.config/mdstudio.
func ConfigDir() string {
	return filepath.Join(base("XDG_CONFIG_HOME", ".config"), appName)
}

// DataDir returns $XDG_DATA_HOME/mdstudio, falling back to ~/.local/share/mdstudio.
func DataDir() string {
	return filepath.Join(base("XDG_DATA_HOME", ".local", "share"), appName)
}

// ConfigFile returns the default config file path.
func ConfigFile() string {
	return filepath.Join(ConfigDir(), ConfigFileName)
}

// PluginsDir returns the default Lua plugin directory.
func PluginsDir() string {
	return filepath.Join(DataDir(), "plugins")
}
