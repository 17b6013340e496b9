// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MD Studio Contributors

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mdstudio/mdstudio/internal/event"
	"github.com/mdstudio/mdstudio/internal/project"
	"github.com/mdstudio/mdstudio/internal/script"
	"github.com/mdstudio/mdstudio/pkg/errutil"
)

// NewValidateCmd creates the validate subcommand.
func NewValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <project>...",
		Short: "Validate project files without generating code",
		Long: `Loads each project, checks it against the project JSON Schema and the
model rules (unique ids, collision sizes, supported format) without emitting.
Event kinds not known to the built-in set or any plugin are reported as
warnings, since the compiler annotates and skips them.

Exits with code 0 when every project is valid.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	reg, mgr, err := loadRegistry(ctx, cfg, logger)
	if err != nil {
		errutil.LogError(logger, "plugin load failed", err)
		return err
	}
	defer func() { _ = mgr.Close(ctx) }()

	out := cmd.OutOrStdout()
	invalid := 0
	for _, path := range args {
		p, err := project.Load(path)
		if err != nil {
			invalid++
			errutil.LogError(logger, "project invalid", err)
			fmt.Fprintf(out, "FAIL %s: %v\n", path, err)
			continue
		}
		for _, w := range unknownKinds(p, reg) {
			logger.Warn("unknown event kind", "path", path, "detail", w)
			fmt.Fprintf(out, "WARN %s: %s\n", path, w)
		}
		fmt.Fprintf(out, "ok   %s (%d scenes, %d nodes)\n", path, len(p.Scenes), p.Nodes())
	}

	if invalid > 0 {
		return fmt.Errorf("validation failed: %d of %d projects invalid", invalid, len(args))
	}
	logger.Info("all projects valid", "count", len(args))
	return nil
}

// unknownKinds describes every enabled node whose kind reg does not know.
func unknownKinds(p *project.Project, reg *event.Registry) []string {
	var found []string
	_ = p.EachHook(func(owner string, h project.NamedHook) error {
		script.Walk(*h.Hook, func(n *script.Node) bool {
			if n.Disabled {
				return false
			}
			if _, ok := reg.Lookup(n.Kind); !ok {
				found = append(found, fmt.Sprintf("%s %s: node %s has unknown kind %q", owner, h.Name, n.ID, n.Kind))
			}
			return true
		})
		return nil
	})
	return found
}
