// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MD Studio Contributors

// Package assembler stitches compiled scripts, per-scene data and runtime
// boilerplate into the main C unit and its declarations header.
package assembler

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/samber/oops"

	"github.com/mdstudio/mdstudio/internal/compiler"
	"github.com/mdstudio/mdstudio/internal/emitter"
	"github.com/mdstudio/mdstudio/internal/naming"
	"github.com/mdstudio/mdstudio/internal/project"
)

// Fixed limits of the generated runtime.
const (
	ScreenWidth    = 320
	ScreenHeight   = 224
	TileSize       = 8
	SceneStackSize = 8
)

// DefaultDeclFile is the declarations unit file name included by the main unit.
const DefaultDeclFile = "resources.h"

// Options configures an Assembler.
type Options struct {
	Tool        string
	Version     string
	GeneratedAt time.Time
	IndentWidth int
	// DeclFile is the file name the main unit includes for resource declarations.
	DeclFile string
}

// Units is the result of one assembly.
type Units struct {
	Main      string
	Decl      string
	Stats     compiler.Stats
	Variables []Variable
	Resources []Resource
}

// Assembler turns projects into C units. It is safe for concurrent use as
// long as the compiler's registry is frozen: every Assemble call owns its
// emitters, namer and compile run.
type Assembler struct {
	compiler *compiler.Compiler
	opts     Options
	logger   *slog.Logger
}

// New creates an assembler.
func New(c *compiler.Compiler, opts Options, logger *slog.Logger) *Assembler {
	if opts.Tool == "" {
		opts.Tool = "mdstudio"
	}
	if opts.DeclFile == "" {
		opts.DeclFile = DefaultDeclFile
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Assembler{compiler: c, opts: opts, logger: logger}
}

// Assemble generates both units for p. Per-node problems are annotated in the
// output; a structural violation aborts with an error naming the event kind.
// A project failing Validate is rejected before any code is generated.
func (a *Assembler) Assemble(p *project.Project) (*Units, error) {
	if p == nil {
		return nil, project.ErrInvalid("project", "project is nil")
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	sym := newSymbols(p)
	width := emitter.WithIndentWidth(a.opts.IndentWidth)

	code := emitter.New(width)
	run := a.compiler.NewRun(code, sym)
	maxActors := 1
	for i := range p.Scenes {
		sc := &p.Scenes[i]
		if n := len(sc.Actors); n > maxActors {
			maxActors = n
		}
		sb := sceneBuilder{out: code, run: run, sym: sym, scene: sc, logger: a.logger}
		if err := sb.build(); err != nil {
			return nil, oops.With("project", p.Name).With("scene", sc.ID).Wrap(err)
		}
	}

	main := emitter.New(width, emitter.WithHeader(emitter.Header{
		Tool:        a.opts.Tool,
		Version:     a.opts.Version,
		Project:     oneLine(p.Name),
		GeneratedAt: a.opts.GeneratedAt,
		Includes:    []string{"<genesis.h>", fmt.Sprintf("%q", a.opts.DeclFile)},
	}))
	a.emitDefines(main, p, sym, maxActors)
	a.emitGlobals(main, sym)
	a.emitPrototypes(main, p, sym)
	main.EmitComment("runtime helpers")
	emitSource(main, runtimeHelpers)
	main.EmitBlank()
	main.Append(code)
	a.emitLoader(main, p, sym)
	a.emitEntry(main, p, sym)

	stats := run.Stats()
	a.logger.Debug("assembled project",
		"project", p.Name,
		"scenes", len(p.Scenes),
		"nodes", stats.Nodes,
		"unknown", stats.Unknown,
		"failures", stats.Failures)

	return &Units{
		Main:      main.Build(),
		Decl:      a.declUnit(p, sym),
		Stats:     stats,
		Variables: append([]Variable(nil), sym.vars...),
		Resources: append([]Resource(nil), sym.resources...),
	}, nil
}

func (a *Assembler) emitDefines(e *emitter.Emitter, p *project.Project, sym *symbols, maxActors int) {
	e.EmitLine(fmt.Sprintf("#define SCREEN_WIDTH %d", ScreenWidth))
	e.EmitLine(fmt.Sprintf("#define SCREEN_HEIGHT %d", ScreenHeight))
	e.EmitLine(fmt.Sprintf("#define TILE_SIZE %d", TileSize))
	e.EmitLine(fmt.Sprintf("#define MD_MAX_ACTORS %d", maxActors))
	e.EmitLine(fmt.Sprintf("#define MD_SCENE_STACK_SIZE %d", SceneStackSize))
	e.EmitLine(fmt.Sprintf("#define MD_SCENE_COUNT %d", len(p.Scenes)))
	e.EmitBlank()
	for i, d := range []string{"DOWN", "UP", "LEFT", "RIGHT"} {
		e.EmitLine(fmt.Sprintf("#define DIR_%s %d", d, i))
	}
	e.EmitBlank()
	e.EmitComment("scene dispatch indices, in project order")
	for _, sc := range p.Scenes {
		ref := sym.scenes[sc.ID]
		e.EmitLine(fmt.Sprintf("#define %s %d", ref.Const, ref.Index))
	}
	e.EmitBlank()
}

func (a *Assembler) emitGlobals(e *emitter.Emitter, sym *symbols) {
	emitSource(e, runtimeGlobals)
	e.EmitBlank()
	if len(sym.vars) == 0 {
		return
	}
	e.EmitComment("script variables")
	for _, v := range sym.vars {
		if v.Implicit {
			e.EmitLine(fmt.Sprintf("s16 %s = %d; // not declared in the project", v.Ident, v.Default))
			continue
		}
		e.EmitLine(fmt.Sprintf("s16 %s = %d;", v.Ident, v.Default))
	}
	e.EmitBlank()
}

func (a *Assembler) emitPrototypes(e *emitter.Emitter, p *project.Project, sym *symbols) {
	emitSource(e, runtimePrototypes)
	for _, sc := range p.Scenes {
		id := sym.sceneIdent(sc.ID)
		e.EmitLine(fmt.Sprintf("void scene_%s_init(void);", id))
		e.EmitLine(fmt.Sprintf("void scene_%s_update(void);", id))
	}
	e.EmitBlank()
}

func (a *Assembler) emitLoader(e *emitter.Emitter, p *project.Project, sym *symbols) {
	e.EmitLine("void md_load_scene(u16 scene)")
	e.EmitLine("{")
	e.Indent()
	e.EmitLine("SPR_reset();")
	e.EmitLine("player_sprite = NULL;")
	e.EmitLine("for (u16 i = 0; i < MD_MAX_ACTORS; i++) actor_sprites[i] = NULL;")
	e.EmitLine("actor_count = 0;")
	e.EmitLine("md_collision_map = NULL;")
	e.EmitLine("switch (scene) {")
	e.Indent()
	for _, sc := range p.Scenes {
		ref := sym.scenes[sc.ID]
		e.EmitLine(fmt.Sprintf("case %s:", ref.Const))
		e.Indent()
		e.EmitLine(fmt.Sprintf("scene_%s_init();", ref.Name))
		e.EmitLine("break;")
		e.Dedent()
	}
	e.Dedent()
	e.EmitLine("}")
	e.Dedent()
	e.EmitLine("}")
	e.EmitBlank()
}

func (a *Assembler) emitEntry(e *emitter.Emitter, p *project.Project, sym *symbols) {
	start := sym.scenes[p.Scenes[p.StartIndex()].ID]
	e.EmitLine("int main(bool hardReset)")
	e.EmitLine("{")
	e.Indent()
	e.EmitLine("(void) hardReset;")
	e.EmitLine("JOY_init();")
	e.EmitLine("SPR_init();")
	e.EmitLine(fmt.Sprintf("md_switch_scene(%s);", start.Const))
	e.EmitBlank()
	e.EmitLine("while (TRUE) {")
	e.Indent()
	e.EmitLine("switch (current_scene) {")
	e.Indent()
	for _, sc := range p.Scenes {
		ref := sym.scenes[sc.ID]
		e.EmitLine(fmt.Sprintf("case %s:", ref.Const))
		e.Indent()
		e.EmitLine(fmt.Sprintf("scene_%s_update();", ref.Name))
		e.EmitLine("break;")
		e.Dedent()
	}
	e.Dedent()
	e.EmitLine("}")
	e.EmitLine("SPR_update();")
	e.EmitLine("SYS_doVBlankProcess();")
	e.Dedent()
	e.EmitLine("}")
	e.EmitLine("return 0;")
	e.Dedent()
	e.EmitLine("}")
}

func (a *Assembler) declUnit(p *project.Project, sym *symbols) string {
	guard := strings.ToUpper(naming.Sanitize(a.opts.DeclFile))
	d := emitter.New(emitter.WithIndentWidth(a.opts.IndentWidth), emitter.WithHeader(emitter.Header{
		Tool:        a.opts.Tool,
		Version:     a.opts.Version,
		Project:     oneLine(p.Name),
		GeneratedAt: a.opts.GeneratedAt,
	}))
	d.EmitLine("#ifndef " + guard)
	d.EmitLine("#define " + guard)
	d.EmitBlank()
	d.EmitLine("#include <genesis.h>")
	d.EmitBlank()
	for _, r := range sym.resources {
		d.EmitLine(r.Decl())
	}
	if len(sym.resources) > 0 {
		d.EmitBlank()
	}
	d.EmitLine("#endif // " + guard)
	return d.Build()
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
