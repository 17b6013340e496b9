// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MD Studio Contributors

// Package generator runs the assembler for whole projects: it traces and
// measures each run, compiles many projects in parallel and writes the
// resulting units to disk.
package generator

import (
	"context"
	"log/slog"
	"path/filepath"
	"runtime"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/mdstudio/mdstudio/internal/assembler"
	"github.com/mdstudio/mdstudio/internal/compiler"
	"github.com/mdstudio/mdstudio/internal/naming"
	"github.com/mdstudio/mdstudio/internal/observability"
	"github.com/mdstudio/mdstudio/internal/project"
)

var tracer = otel.Tracer("mdstudio/generator")

// Options configures a Generator.
type Options struct {
	Assembler assembler.Options
	// MainFile and DeclFile name the written units.
	MainFile string
	DeclFile string
	// Jobs caps GenerateAll parallelism. Zero or less means GOMAXPROCS.
	Jobs int
}

// Generator turns projects into C units.
type Generator struct {
	assembler *assembler.Assembler
	metrics   *observability.Metrics
	logger    *slog.Logger
	mainFile  string
	declFile  string
	jobs      int
}

// Option configures a Generator.
type Option func(*Generator)

// WithMetrics records every generation in m.
func WithMetrics(m *observability.Metrics) Option {
	return func(g *Generator) {
		g.metrics = m
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) {
		g.logger = l
	}
}

// New creates a generator over c. It freezes c's registry so that
// concurrent runs share it read-only.
func New(c *compiler.Compiler, opts Options, options ...Option) *Generator {
	c.Registry().Freeze()

	g := &Generator{logger: slog.Default(), mainFile: opts.MainFile, declFile: opts.DeclFile, jobs: opts.Jobs}
	for _, opt := range options {
		opt(g)
	}
	if g.mainFile == "" {
		g.mainFile = "main.c"
	}
	if g.declFile == "" {
		g.declFile = assembler.DefaultDeclFile
	}
	if g.jobs <= 0 {
		g.jobs = runtime.GOMAXPROCS(0)
	}

	asmOpts := opts.Assembler
	asmOpts.DeclFile = g.declFile
	g.assembler = assembler.New(c, asmOpts, g.logger)
	return g
}

// Generate assembles both units for p.
func (g *Generator) Generate(ctx context.Context, p *project.Project) (units *assembler.Units, err error) {
	ctx, span := tracer.Start(ctx, "mdstudio.generate",
		trace.WithAttributes(
			attribute.String("project.name", p.Name),
			attribute.Int("project.scenes", len(p.Scenes)),
		),
	)
	start := time.Now()
	defer func() {
		if g.metrics != nil {
			g.metrics.RecordGenerate(err, len(p.Scenes), time.Since(start))
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if err = ctx.Err(); err != nil {
		return nil, err
	}

	units, err = g.assembler.Assemble(p)
	if err != nil {
		g.logger.ErrorContext(ctx, "generation failed", "project", p.Name, "error", err)
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("compile.nodes", units.Stats.Nodes),
		attribute.Int("compile.failures", units.Stats.Failures),
	)
	g.logger.InfoContext(ctx, "generated project",
		"project", p.Name,
		"scenes", len(p.Scenes),
		"nodes", units.Stats.Nodes,
		"unknown", units.Stats.Unknown,
		"defaults", units.Stats.Defaults,
		"failures", units.Stats.Failures,
		"duration", time.Since(start))
	return units, nil
}

// GenerateAll generates every project, at most Jobs at a time. Results are
// in input order. The first failure cancels the projects not yet started.
func (g *Generator) GenerateAll(ctx context.Context, projects []*project.Project) ([]*assembler.Units, error) {
	results := make([]*assembler.Units, len(projects))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.jobs)
	for i, p := range projects {
		eg.Go(func() error {
			units, err := g.Generate(ctx, p)
			if err != nil {
				return err
			}
			results[i] = units
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// OutputDirs returns one directory under base per project, named after the
// project and made unique across the slice.
func OutputDirs(base string, projects []*project.Project) []string {
	namer := naming.New()
	dirs := make([]string, len(projects))
	for i, p := range projects {
		dirs[i] = filepath.Join(base, namer.Unique(naming.Projects, p.Name))
	}
	return dirs
}
