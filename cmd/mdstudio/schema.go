// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MD Studio Contributors

package main

import (
	"github.com/spf13/cobra"

	"github.com/mdstudio/mdstudio/internal/plugin"
	"github.com/mdstudio/mdstudio/internal/project"
)

// NewSchemaCmd creates the schema subcommand.
func NewSchemaCmd() *cobra.Command {
	var pluginSchema bool

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the project JSON Schema",
		Long: `Prints the JSON Schema that project files are validated against.
With --plugin, prints the plugin manifest schema instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			generate := project.GenerateSchema
			if pluginSchema {
				generate = plugin.GenerateSchema
			}
			data, err := generate()
			if err != nil {
				return err //nolint:wrapcheck // schema reflection errors are self-describing
			}
			out := cmd.OutOrStdout()
			if _, err := out.Write(data); err != nil {
				return err //nolint:wrapcheck // writing to the command output
			}
			_, err = out.Write([]byte("\n"))
			return err //nolint:wrapcheck // writing to the command output
		},
	}

	cmd.Flags().BoolVar(&pluginSchema, "plugin", false, "print the plugin manifest schema")
	return cmd
}
