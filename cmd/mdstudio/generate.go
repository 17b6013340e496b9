// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MD Studio Contributors

package main

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/mdstudio/mdstudio/internal/assembler"
	"github.com/mdstudio/mdstudio/internal/compiler"
	"github.com/mdstudio/mdstudio/internal/event"
	"github.com/mdstudio/mdstudio/internal/generator"
	"github.com/mdstudio/mdstudio/internal/observability"
	"github.com/mdstudio/mdstudio/internal/project"
	"github.com/mdstudio/mdstudio/pkg/errutil"
)

// NewGenerateCmd creates the generate subcommand.
func NewGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate <project>...",
		Short: "Compile projects into SGDK C source",
		Long: `Compiles each project file (.yaml, .yml or .json) into a main C unit
and a resource declarations header, written to output-dir/<project-name>/.

Per-event problems are annotated in the generated code; structural errors
abort the project and exit non-zero.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runGenerate,
	}

	flags := cmd.Flags()
	flags.StringP("output-dir", "o", "build", "directory receiving generated files")
	flags.String("main-file", "main.c", "main unit file name")
	flags.String("decl-file", "resources.h", "declarations unit file name")
	flags.Int("indent-width", 4, "spaces per indent level (1-8)")
	flags.IntP("jobs", "j", 0, "parallel project compilations (0 = GOMAXPROCS)")
	flags.String("metrics-file", "", "write Prometheus metrics to this textfile after the run")
	flags.String("timestamp", "", "RFC 3339 generation timestamp (default: SOURCE_DATE_EPOCH or now)")

	return cmd
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	projects := make([]*project.Project, 0, len(args))
	for _, path := range args {
		p, err := project.Load(path)
		if err != nil {
			errutil.LogError(logger, "project load failed", err)
			return fmt.Errorf("load %s: %w", path, err)
		}
		projects = append(projects, p)
	}

	reg, mgr, err := loadRegistry(ctx, cfg, logger)
	if err != nil {
		errutil.LogError(logger, "plugin load failed", err)
		return err
	}
	defer func() { _ = mgr.Close(ctx) }()

	promReg := prometheus.NewRegistry()
	gen := generator.New(compiler.New(reg, compiler.WithLogger(logger)), generator.Options{
		Assembler: assembler.Options{
			Version:     version,
			GeneratedAt: cfg.GeneratedAt(time.Now),
			IndentWidth: cfg.IndentWidth,
		},
		MainFile: cfg.MainFile,
		DeclFile: cfg.DeclFile,
		Jobs:     cfg.Jobs,
	}, generator.WithMetrics(observability.NewMetrics(promReg)), generator.WithLogger(logger))

	all, err := gen.GenerateAll(ctx, projects)
	if err != nil {
		errutil.LogError(logger, "generation failed", err)
		if kind, ok := event.KindOf(err); ok {
			return fmt.Errorf("generation failed in event kind %q: %w", kind, err)
		}
		return err //nolint:wrapcheck // generator errors carry project and scene context
	}

	out := cmd.OutOrStdout()
	for i, dir := range generator.OutputDirs(cfg.OutputDir, projects) {
		written, err := gen.WriteOutput(ctx, dir, all[i])
		if err != nil {
			errutil.LogError(logger, "write failed", err)
			return err //nolint:wrapcheck // write errors carry the path
		}
		s := all[i].Stats
		fmt.Fprintf(out, "%s: %d nodes, %d unknown, %d defaulted, %d failed -> %s\n",
			projects[i].Name, s.Nodes, s.Unknown, s.Defaults, s.Failures, written.Main)
	}

	if cfg.MetricsFile != "" {
		gatherers := prometheus.Gatherers{prometheus.DefaultGatherer, promReg}
		if err := observability.WriteTextfile(cfg.MetricsFile, gatherers); err != nil {
			errutil.LogError(logger, "metrics dump failed", err)
			return err //nolint:wrapcheck // carries the path
		}
	}
	return nil
}
