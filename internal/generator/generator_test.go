// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MD Studio Contributors

package generator_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/mdstudio/mdstudio/internal/assembler"
	"github.com/mdstudio/mdstudio/internal/compiler"
	"github.com/mdstudio/mdstudio/internal/event"
	"github.com/mdstudio/mdstudio/internal/event/builtin"
	"github.com/mdstudio/mdstudio/internal/generator"
	"github.com/mdstudio/mdstudio/internal/observability"
	"github.com/mdstudio/mdstudio/internal/project"
	"github.com/mdstudio/mdstudio/internal/script"
)

var fixedTime = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func village(name string, nodes ...script.Node) *project.Project {
	return &project.Project{
		Format:    "1.0.0",
		Name:      name,
		Settings:  project.Settings{PlayerSprite: "hero"},
		Variables: []project.Variable{{ID: "v1", Name: "coins"}},
		Scenes: []project.Scene{{
			ID: "square", Name: "Square", Width: 2, Height: 1,
			Collisions: []int{0, 0},
			Scripts:    project.SceneScripts{OnInit: script.Events(nodes...)},
		}},
	}
}

func coinNode(id string) script.Node {
	return script.Node{ID: id, Kind: "variable-inc", Args: map[string]any{"variable": "coins"}}
}

var _ = Describe("Generator", func() {
	var (
		ctx     context.Context
		reg     *event.Registry
		metrics *observability.Metrics
		gen     *generator.Generator
	)

	BeforeEach(func() {
		ctx = context.Background()
		reg = builtin.NewRegistry()
		metrics = observability.NewMetrics(prometheus.NewRegistry())
		gen = generator.New(compiler.New(reg), generator.Options{
			Assembler: assembler.Options{Version: "1.2.3", GeneratedAt: fixedTime},
			Jobs:      2,
		}, generator.WithMetrics(metrics), generator.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	})

	It("freezes the registry", func() {
		Expect(reg.Frozen()).To(BeTrue())
	})

	Describe("Generate", func() {
		It("produces both units and records success", func() {
			units, err := gen.Generate(ctx, village("Coin Town", coinNode("a")))
			Expect(err).NotTo(HaveOccurred())

			Expect(units.Main).To(ContainSubstring("// Generated at: 2026-01-02T03:04:05Z"))
			Expect(units.Main).To(ContainSubstring("var_coins++;"))
			Expect(units.Main).To(ContainSubstring(`#include "resources.h"`))
			Expect(units.Decl).NotTo(BeEmpty())
			Expect(units.Stats.Nodes).To(Equal(1))

			Expect(testutil.ToFloat64(metrics.GenerateTotal.WithLabelValues(observability.ResultSuccess))).To(BeNumerically("==", 1))
			Expect(testutil.ToFloat64(metrics.ScenesGenerated)).To(BeNumerically("==", 1))
		})

		It("records a structural violation as an error", func() {
			bad := script.Node{ID: "g", Kind: "group", Args: map[string]any{"events": "oops"}}
			_, err := gen.Generate(ctx, village("Broken", bad))

			Expect(err).To(MatchError(event.ErrStructuralViolation))
			Expect(testutil.ToFloat64(metrics.GenerateTotal.WithLabelValues(observability.ResultError))).To(BeNumerically("==", 1))
			Expect(testutil.CollectAndCount(metrics.GenerateDuration)).To(Equal(1))
		})

		It("refuses a cancelled context", func() {
			cancelled, cancel := context.WithCancel(ctx)
			cancel()

			_, err := gen.Generate(cancelled, village("Late"))
			Expect(err).To(MatchError(context.Canceled))
		})
	})

	Describe("GenerateAll", func() {
		It("keeps input order", func() {
			projects := []*project.Project{
				village("First", coinNode("a")),
				village("Second", coinNode("a"), coinNode("b")),
				village("Third"),
			}

			all, err := gen.GenerateAll(ctx, projects)
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(3))
			Expect(all[0].Main).To(ContainSubstring("// Project: First"))
			Expect(all[1].Stats.Nodes).To(Equal(2))
			Expect(all[2].Stats.Nodes).To(BeZero())
		})

		It("matches sequential output", func() {
			p := village("Same", coinNode("a"), coinNode("b"))
			one, err := gen.Generate(ctx, p)
			Expect(err).NotTo(HaveOccurred())

			all, err := gen.GenerateAll(ctx, []*project.Project{p, p, p, p})
			Expect(err).NotTo(HaveOccurred())
			for _, u := range all {
				Expect(u.Main).To(Equal(one.Main))
				Expect(u.Decl).To(Equal(one.Decl))
			}
		})

		It("fails when any project fails", func() {
			bad := script.Node{ID: "g", Kind: "group", Args: map[string]any{"events": "oops"}}
			_, err := gen.GenerateAll(ctx, []*project.Project{village("Good"), village("Bad", bad)})
			Expect(err).To(MatchError(event.ErrStructuralViolation))
		})

		It("handles no projects", func() {
			all, err := gen.GenerateAll(ctx, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(BeEmpty())
		})
	})

	Describe("WriteOutput", func() {
		var dir string

		BeforeEach(func() {
			dir = filepath.Join(GinkgoT().TempDir(), "out", "coin_town")
		})

		It("writes both units and leaves no temp files", func() {
			units, err := gen.Generate(ctx, village("Coin Town", coinNode("a")))
			Expect(err).NotTo(HaveOccurred())

			written, err := gen.WriteOutput(ctx, dir, units)
			Expect(err).NotTo(HaveOccurred())
			Expect(written.Main).To(Equal(filepath.Join(dir, "main.c")))
			Expect(written.Decl).To(Equal(filepath.Join(dir, "resources.h")))

			main, err := os.ReadFile(written.Main)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(main)).To(Equal(units.Main))

			entries, err := os.ReadDir(dir)
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(HaveLen(2))
			for _, e := range entries {
				Expect(strings.HasPrefix(e.Name(), ".")).To(BeFalse(), e.Name())
			}
		})

		It("replaces existing files", func() {
			Expect(os.MkdirAll(dir, 0o750)).To(Succeed())
			Expect(os.WriteFile(filepath.Join(dir, "main.c"), []byte("stale"), 0o600)).To(Succeed())

			units, err := gen.Generate(ctx, village("Coin Town"))
			Expect(err).NotTo(HaveOccurred())
			_, err = gen.WriteOutput(ctx, dir, units)
			Expect(err).NotTo(HaveOccurred())

			main, err := os.ReadFile(filepath.Join(dir, "main.c"))
			Expect(err).NotTo(HaveOccurred())
			Expect(string(main)).To(Equal(units.Main))
		})

		It("uses the configured file names", func() {
			custom := generator.New(compiler.New(builtin.NewRegistry()), generator.Options{
				MainFile: "game.c",
				DeclFile: "game_res.h",
			})
			units, err := custom.Generate(ctx, village("Coin Town"))
			Expect(err).NotTo(HaveOccurred())
			Expect(units.Main).To(ContainSubstring(`#include "game_res.h"`))

			written, err := custom.WriteOutput(ctx, dir, units)
			Expect(err).NotTo(HaveOccurred())
			Expect(written.Main).To(HaveSuffix("game.c"))
			Expect(written.Decl).To(BeAnExistingFile())
		})

		It("reports an unusable directory", func() {
			blocker := filepath.Join(GinkgoT().TempDir(), "file")
			Expect(os.WriteFile(blocker, nil, 0o600)).To(Succeed())

			_, err := gen.WriteOutput(ctx, filepath.Join(blocker, "sub"), &assembler.Units{})
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("create output directory"))
		})
	})

	Describe("OutputDirs", func() {
		It("names directories after projects and keeps them unique", func() {
			dirs := generator.OutputDirs("build", []*project.Project{
				village("Coin Town"), village("Coin Town"), village("Ação!"),
			})
			Expect(dirs).To(Equal([]string{
				filepath.Join("build", "coin_town"),
				filepath.Join("build", "coin_town_1"),
				filepath.Join("build", "acao_"),
			}))
		})
	})
})
