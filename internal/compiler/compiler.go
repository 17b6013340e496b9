// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MD Studio Contributors

// Package compiler lowers event trees into C statements using the emission
// rules of an event registry.
package compiler

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/mdstudio/mdstudio/internal/emitter"
	"github.com/mdstudio/mdstudio/internal/event"
	"github.com/mdstudio/mdstudio/internal/script"
)

// Symbols resolves project entities to generated identifiers.
// The assembler provides the implementation for a compile run.
type Symbols interface {
	Variable(ref string) string
	Actor(sceneID, ref string) event.ActorRef
	Scene(ref string) (event.SceneRef, bool)
	Resource(kind event.RefKind, name string) string
}

// Scope names the script being compiled.
type Scope struct {
	SceneID   string
	OwnerKind event.OwnerKind
	OwnerID   string
}

// Stats counts what happened during a run.
type Stats struct {
	Nodes      int
	Unknown    int
	Defaults   int
	Failures   int
	Unbalanced int
}

// Compiler holds the immutable inputs shared by compile runs.
type Compiler struct {
	registry *event.Registry
	logger   *slog.Logger
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithLogger sets the logger used for compile warnings.
func WithLogger(l *slog.Logger) Option {
	return func(c *Compiler) {
		c.logger = l
	}
}

// New creates a compiler over registry.
func New(registry *event.Registry, opts ...Option) *Compiler {
	c := &Compiler{registry: registry, logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Registry returns the registry the compiler dispatches through.
func (c *Compiler) Registry() *event.Registry {
	return c.registry
}

// Run is one compile run. It owns its emitter target and local-name counters
// and must not be shared between goroutines.
type Run struct {
	compiler *Compiler
	out      *emitter.Emitter
	symbols  Symbols
	locals   map[string]int
	stats    Stats
}

// NewRun starts a compile run writing into out.
func (c *Compiler) NewRun(out *emitter.Emitter, symbols Symbols) *Run {
	return &Run{
		compiler: c,
		out:      out,
		symbols:  symbols,
		locals:   make(map[string]int),
	}
}

// Stats returns the counters accumulated so far.
func (r *Run) Stats() Stats {
	return r.stats
}

// Compile lowers nodes at the emitter's current depth.
// Unknown kinds and failing rules are annotated and skipped; a structural
// violation aborts and is returned.
func (r *Run) Compile(scope Scope, nodes []script.Node) error {
	f := &frame{run: r, scope: scope}
	return r.compileEvents(f, nodes)
}

func (r *Run) compileEvents(f *frame, nodes []script.Node) error {
	for _, n := range nodes {
		if n.Disabled {
			continue
		}
		if err := r.compileNode(f, n); err != nil {
			return err
		}
	}
	return nil
}

func (r *Run) compileNode(f *frame, n script.Node) error {
	log := r.compiler.logger
	kind, ok := r.compiler.registry.Lookup(n.Kind)
	if !ok {
		r.out.EmitComment(fmt.Sprintf("unknown event kind %q", n.Kind))
		r.stats.Unknown++
		unknownKinds.Inc()
		log.Warn("unknown event kind",
			"kind", n.Kind,
			"node", n.ID,
			"scene", f.scope.SceneID)
		return nil
	}

	args, adjustments, err := event.Resolve(kind, n)
	if err != nil {
		return err
	}
	for _, adj := range adjustments {
		r.out.EmitComment(fmt.Sprintf("%s %s", kind.ID, adj))
		r.stats.Defaults++
		defaultsApplied.WithLabelValues(kind.ID).Inc()
	}

	cp := r.out.Checkpoint()
	depth := r.out.Depth()
	if err := kind.Emit(args, f, r.out); err != nil {
		if errors.Is(err, event.ErrStructuralViolation) {
			return err
		}
		r.out.Rollback(cp)
		r.out.EmitComment(fmt.Sprintf("event %s (%s) failed: %v", n.ID, kind.ID, err))
		r.stats.Failures++
		ruleFailures.WithLabelValues(kind.ID).Inc()
		log.Warn("emission rule failed",
			"kind", kind.ID,
			"node", n.ID,
			"error", err)
		return nil
	}

	if got := r.out.Depth(); got != depth {
		log.Warn("emission rule left indentation unbalanced",
			"kind", kind.ID,
			"node", n.ID,
			"before", depth,
			"after", got)
		r.out.SetDepth(depth)
		r.stats.Unbalanced++
		unbalancedRules.WithLabelValues(kind.ID).Inc()
	}

	r.stats.Nodes++
	nodesCompiled.Inc()
	return nil
}

// frame is the event.Context handed to emission rules.
type frame struct {
	run   *Run
	scope Scope
}

var _ event.Context = (*frame)(nil)

func (f *frame) SceneID() string { return f.scope.SceneID }

func (f *frame) OwnerKind() event.OwnerKind { return f.scope.OwnerKind }

func (f *frame) OwnerID() string { return f.scope.OwnerID }

func (f *frame) CompileEvents(nodes []script.Node) error {
	return f.run.compileEvents(f, nodes)
}

func (f *frame) Variable(ref string) string {
	return f.run.symbols.Variable(ref)
}

// Actor resolves ref; an empty ref or "self" inside an actor script is the owning actor.
func (f *frame) Actor(ref string) event.ActorRef {
	if (ref == "" || ref == "self") && f.scope.OwnerKind == event.OwnerActor {
		ref = f.scope.OwnerID
	}
	return f.run.symbols.Actor(f.scope.SceneID, ref)
}

func (f *frame) Scene(ref string) (event.SceneRef, bool) {
	return f.run.symbols.Scene(ref)
}

func (f *frame) Resource(kind event.RefKind, name string) string {
	return f.run.symbols.Resource(kind, name)
}

func (f *frame) Local(prefix string) string {
	n := f.run.locals[prefix]
	f.run.locals[prefix] = n + 1
	return prefix + "_" + strconv.Itoa(n)
}
