// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MD Studio Contributors

// Package naming turns free-text editor names into unique C identifiers.
package naming

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Namespace separates identifier pools. The same raw name may appear once per namespace.
type Namespace string

// Namespaces used by the assembler.
const (
	Scenes    Namespace = "scene"
	Actors    Namespace = "actor"
	Triggers  Namespace = "trigger"
	Variables Namespace = "variable"
	Resources Namespace = "resource"
)

// Projects names per-project output directories.
const Projects Namespace = "project"

const fallbackName = "unnamed"

// reserved are C keywords and SGDK macros a generated name must not shadow.
var reserved = map[string]bool{
	"auto": true, "break": true, "case": true, "char": true, "const": true,
	"continue": true, "default": true, "do": true, "double": true, "else": true,
	"enum": true, "extern": true, "float": true, "for": true, "goto": true,
	"if": true, "int": true, "long": true, "register": true, "return": true,
	"short": true, "signed": true, "sizeof": true, "static": true, "struct": true,
	"switch": true, "typedef": true, "union": true, "unsigned": true, "void": true,
	"volatile": true, "while": true, "main": true, "true": true, "false": true,
	"null": true, "u8": true, "u16": true, "u32": true, "s8": true, "s16": true,
	"s32": true, "bool": true,
}

// Fold strips diacritics so "Ação" becomes "Acao". Runes with no ASCII base are kept.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Sanitize maps raw to a valid lower-case identifier without checking uniqueness.
func Sanitize(raw string) string {
	folded := Fold(strings.TrimSpace(raw))

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		switch {
		case r >= 'A' && r <= 'Z':
			b.WriteRune(unicode.ToLower(r))
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}

	id := b.String()
	if id == "" {
		return fallbackName
	}
	if id[0] >= '0' && id[0] <= '9' {
		id = "_" + id
	}
	if reserved[id] {
		id += "_"
	}
	return id
}

type space struct {
	issued map[string]bool
	bound  map[string]string
}

// Namer issues identifiers that are unique per namespace.
// Given the same sequence of calls it returns the same identifiers.
// A Namer is not safe for concurrent use.
type Namer struct {
	spaces map[Namespace]*space
}

// New creates an empty namer.
func New() *Namer {
	return &Namer{spaces: make(map[Namespace]*space)}
}

func (n *Namer) space(ns Namespace) *space {
	s, ok := n.spaces[ns]
	if !ok {
		s = &space{issued: make(map[string]bool), bound: make(map[string]string)}
		n.spaces[ns] = s
	}
	return s
}

// Unique sanitizes raw and appends _1, _2, ... until the result is unused in ns.
func (n *Namer) Unique(ns Namespace, raw string) string {
	s := n.space(ns)
	base := Sanitize(raw)
	id := base
	for i := 1; s.issued[id]; i++ {
		id = base + "_" + strconv.Itoa(i)
	}
	s.issued[id] = true
	return id
}

// Bind returns the identifier for entity key in ns, issuing one from raw on first use.
func (n *Namer) Bind(ns Namespace, key, raw string) string {
	s := n.space(ns)
	if id, ok := s.bound[key]; ok {
		return id
	}
	id := n.Unique(ns, raw)
	s.bound[key] = id
	return id
}

// Lookup returns the identifier previously bound to key in ns.
func (n *Namer) Lookup(ns Namespace, key string) (string, bool) {
	s, ok := n.spaces[ns]
	if !ok {
		return "", false
	}
	id, ok := s.bound[key]
	return id, ok
}
