// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MD Studio Contributors

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/gobwas/glob"
	"github.com/spf13/cobra"

	"github.com/mdstudio/mdstudio/internal/event"
)

// kindView is the listing shape of a kind; Kind itself holds an emit func.
type kindView struct {
	ID          string        `json:"id"`
	Description string        `json:"description,omitempty"`
	Group       string        `json:"group,omitempty"`
	Fields      []event.Field `json:"fields,omitempty"`
}

// NewEventsCmd creates the events subcommand.
func NewEventsCmd() *cobra.Command {
	var (
		filter string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "events",
		Short: "List the registered event kinds and their fields",
		Long: `Lists every event kind the compiler knows: the built-in set plus the
kinds of every Lua plugin in the plugins directory.

--filter takes a glob matched against kind ids, e.g. 'actor-*' or
'{if,loop}-*'.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runEvents(cmd, filter, asJSON)
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "", "glob over kind ids")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of text")

	return cmd
}

func runEvents(cmd *cobra.Command, filter string, asJSON bool) error {
	var match glob.Glob
	if filter != "" {
		g, err := glob.Compile(filter)
		if err != nil {
			return fmt.Errorf("invalid filter %q: %w", filter, err)
		}
		match = g
	}

	ctx := cmd.Context()
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	reg, mgr, err := loadRegistry(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = mgr.Close(ctx) }()

	views := make([]kindView, 0, reg.Len())
	for _, k := range reg.Kinds() {
		if match != nil && !match.Match(k.ID) {
			continue
		}
		views = append(views, kindView{ID: k.ID, Description: k.Description, Group: k.Group, Fields: k.Fields})
	}

	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(views) //nolint:wrapcheck // writing to the command output
	}
	writeKinds(out, views)
	return nil
}

func writeKinds(out io.Writer, views []kindView) {
	for _, v := range views {
		fmt.Fprintf(out, "%-24s %-10s %s\n", v.ID, v.Group, v.Description)
		for _, f := range v.Fields {
			fmt.Fprintf(out, "    %-16s %s\n", f.Key, describeField(f))
		}
	}
}

func describeField(f event.Field) string {
	var b strings.Builder
	b.WriteString(string(f.Type))
	if f.Ref != "" {
		b.WriteString(" -> " + string(f.Ref))
	}
	if f.Range != nil {
		fmt.Fprintf(&b, " [%d..%d]", f.Range.Min, f.Range.Max)
	}
	if len(f.Options) > 0 {
		b.WriteString(" {" + strings.Join(f.Options, ",") + "}")
	}
	if f.Default != nil {
		fmt.Fprintf(&b, " = %v", f.Default)
	}
	return b.String()
}
