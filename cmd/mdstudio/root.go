// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MD Studio Contributors

package main

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mdstudio/mdstudio/internal/config"
	"github.com/mdstudio/mdstudio/internal/event"
	"github.com/mdstudio/mdstudio/internal/event/builtin"
	"github.com/mdstudio/mdstudio/internal/logging"
	"github.com/mdstudio/mdstudio/internal/plugin"
	pluginlua "github.com/mdstudio/mdstudio/internal/plugin/lua"
)

// NewRootCmd creates the root command for the mdstudio CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mdstudio",
		Short: "MD Studio - visual script compiler for SGDK",
		Long: `mdstudio compiles MD Studio projects (scenes, actors, triggers and
their event scripts) into C source for the SGDK Mega Drive toolchain.`,
		SilenceUsage: true,
	}

	flags := cmd.PersistentFlags()
	flags.String("config", "", "config file path (default: XDG_CONFIG_HOME/mdstudio/config.yaml)")
	flags.String("log-format", "json", "log format (json or text)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("plugins-dir", "", "Lua plugin directory (default: XDG_DATA_HOME/mdstudio/plugins)")

	cmd.AddCommand(NewGenerateCmd())
	cmd.AddCommand(NewValidateCmd())
	cmd.AddCommand(NewEventsCmd())
	cmd.AddCommand(NewSchemaCmd())
	cmd.AddCommand(NewValidatePluginsCmd())

	return cmd
}

// loadConfig resolves the configuration for cmd and installs the logger.
func loadConfig(cmd *cobra.Command) (config.Config, *slog.Logger, error) {
	file, err := cmd.Flags().GetString("config")
	if err != nil {
		return config.Config{}, nil, err //nolint:wrapcheck // flag lookup on a known flag
	}
	cfg, err := config.Load(config.DefaultLoadOptions(cmd.Flags(), file))
	if err != nil {
		return config.Config{}, nil, err //nolint:wrapcheck // config errors carry their own code
	}

	logger := logging.SetDefault(logging.Options{
		Service: "mdstudio",
		Version: version,
		Format:  cfg.LogFormat,
		Level:   logging.ParseLevel(cfg.LogLevel),
		Writer:  cmd.ErrOrStderr(),
	})
	return cfg, logger, nil
}

// loadRegistry builds the built-in registry, registers every plugin kind and
// freezes it. The caller closes the returned manager.
func loadRegistry(ctx context.Context, cfg config.Config, logger *slog.Logger) (*event.Registry, *plugin.Manager, error) {
	reg := builtin.NewRegistry()
	mgr := newManager(cfg, logger)
	if err := mgr.LoadInto(ctx, reg); err != nil {
		_ = mgr.Close(ctx)
		return nil, nil, err //nolint:wrapcheck // plugin errors carry their own code
	}
	reg.Freeze()
	return reg, mgr, nil
}

func newManager(cfg config.Config, logger *slog.Logger) *plugin.Manager {
	return plugin.NewManager(cfg.PluginsDir,
		plugin.WithHost(pluginlua.NewHost(pluginlua.WithLogger(logger))),
		plugin.WithLogger(logger))
}
