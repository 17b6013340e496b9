// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MD Studio Contributors

// Package script defines the event tree authored in the editor.
package script

import (
	"fmt"
	"sort"
)

// Node is one placed event. Children holds the nested ordered lists bound to
// the kind's event-list fields, keyed by field key.
type Node struct {
	ID       string            `yaml:"id,omitempty" json:"id,omitempty" jsonschema:"description=Unique id within the tree; assigned on load when empty"`
	Kind     string            `yaml:"kind" json:"kind" jsonschema:"minLength=1"`
	Args     map[string]any    `yaml:"args,omitempty" json:"args,omitempty"`
	Children map[string][]Node `yaml:"children,omitempty" json:"children,omitempty"`
	Disabled bool              `yaml:"disabled,omitempty" json:"disabled,omitempty"`
}

// Hook is a script slot. A nil Hook means the slot is not declared; an empty
// non-nil Hook compiles to an empty function body.
type Hook = *[]Node

// Events returns a declared hook holding nodes.
func Events(nodes ...Node) Hook {
	if nodes == nil {
		nodes = []Node{}
	}
	return &nodes
}

// SlotKeys returns the node's child slot keys in sorted order.
func (n Node) SlotKeys() []string {
	keys := make([]string, 0, len(n.Children))
	for k := range n.Children {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Enabled reports whether nodes holds at least one node that is not disabled.
func Enabled(nodes []Node) bool {
	for _, n := range nodes {
		if !n.Disabled {
			return true
		}
	}
	return false
}

// Walk visits every node depth-first in authored order. Returning false from fn
// skips the node's children.
func Walk(nodes []Node, fn func(n *Node) bool) {
	for i := range nodes {
		n := &nodes[i]
		if !fn(n) {
			continue
		}
		for _, key := range n.SlotKeys() {
			Walk(n.Children[key], fn)
		}
	}
}

// DuplicateIDError reports a node id used twice in one tree.
type DuplicateIDError struct {
	ID string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("duplicate event id %q", e.ID)
}

// CheckIDs verifies that every non-empty node id in the tree is unique.
func CheckIDs(nodes []Node) error {
	seen := make(map[string]bool)
	var dup error
	Walk(nodes, func(n *Node) bool {
		if dup != nil {
			return false
		}
		if n.ID == "" {
			return true
		}
		if seen[n.ID] {
			dup = &DuplicateIDError{ID: n.ID}
			return false
		}
		seen[n.ID] = true
		return true
	})
	return dup
}

// Count returns the number of nodes in the tree, disabled ones included.
func Count(nodes []Node) int {
	total := 0
	Walk(nodes, func(*Node) bool {
		total++
		return true
	})
	return total
}
