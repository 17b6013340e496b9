// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MD Studio Contributors

// Command gen-schema writes the project and plugin manifest JSON Schema files
// that editors reference through yaml-language-server comments.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mdstudio/mdstudio/internal/plugin"
	"github.com/mdstudio/mdstudio/internal/project"
)

var schemas = []struct {
	file     string
	generate func() ([]byte, error)
}{
	{"project.schema.json", project.GenerateSchema},
	{"plugin.schema.json", plugin.GenerateSchema},
}

func main() {
	outDir := flag.String("out", "schemas", "output directory")
	flag.Parse()

	if err := run(*outDir); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(outDir string) error {
	if err := os.MkdirAll(outDir, 0o750); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	for _, s := range schemas {
		data, err := s.generate()
		if err != nil {
			return fmt.Errorf("generating %s: %w", s.file, err)
		}
		outPath := filepath.Join(outDir, s.file)
		if err := os.WriteFile(outPath, append(data, '\n'), 0o600); err != nil {
			return fmt.Errorf("writing %s: %w", outPath, err)
		}
		fmt.Printf("Generated %s\n", outPath)
	}
	return nil
}
