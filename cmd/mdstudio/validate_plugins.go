// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MD Studio Contributors

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mdstudio/mdstudio/internal/event/builtin"
	"github.com/mdstudio/mdstudio/pkg/errutil"
)

// NewValidatePluginsCmd creates the validate-plugins subcommand.
func NewValidatePluginsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate-plugins",
		Short: "Validate every plugin in the plugins directory",
		Long: `Discovers every plugin in the plugins directory, loads its Lua entry
and registers its kinds into a scratch registry holding the built-in set.
Unlike generate, a broken plugin does not stop the check: every plugin is
reported.

Exits with code 0 when every plugin directory is valid. Useful in CI:
  mdstudio validate-plugins --plugins-dir ./plugins`,
		Args: cobra.NoArgs,
		RunE: runValidatePlugins,
	}
}

func runValidatePlugins(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	mgr := newManager(cfg, logger)
	defer func() { _ = mgr.Close(ctx) }()

	discovered, err := mgr.Discover(ctx)
	if err != nil {
		return err //nolint:wrapcheck // directory read errors are self-describing
	}

	out := cmd.OutOrStdout()
	var failures []string
	for _, s := range mgr.Skipped() {
		failures = append(failures, fmt.Sprintf("%s: %v", s.Dir, s.Reason))
	}

	reg := builtin.NewRegistry()
	for _, dp := range discovered {
		if err := mgr.Register(ctx, dp, reg); err != nil {
			errutil.LogError(logger, "plugin validation failed", err)
			failures = append(failures, fmt.Sprintf("%s: %v", dp.Dir, err))
			continue
		}
		fmt.Fprintf(out, "ok   %s %s (%d kinds)\n", dp.Manifest.Name, dp.Manifest.Version, len(dp.Manifest.Kinds))
	}

	for _, f := range failures {
		fmt.Fprintf(out, "FAIL %s\n", f)
	}
	total := len(discovered) + len(mgr.Skipped())
	if len(failures) > 0 {
		return fmt.Errorf("validation failed: %d of %d plugins invalid", len(failures), total)
	}
	logger.Info("all plugins valid", "count", total)
	return nil
}
