// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MD Studio Contributors

package project

import (
	"errors"
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/samber/oops"

	"github.com/mdstudio/mdstudio/internal/script"
)

// SupportedFormats is the range of project format versions this build reads.
const SupportedFormats = ">= 1.0.0, < 2.0.0"

var formatRange = func() *semver.Constraints {
	c, err := semver.NewConstraint(SupportedFormats)
	if err != nil {
		panic(err)
	}
	return c
}()

// CheckFormat reports whether format is a semver version inside SupportedFormats.
func CheckFormat(format string) error {
	v, err := semver.NewVersion(format)
	if err != nil {
		return ErrFormat(format, err)
	}
	if !formatRange.Check(v) {
		return ErrFormat(format, nil)
	}
	return nil
}

// Validate checks the invariants the schema cannot express: format range,
// id uniqueness, collision array size and per-tree node id uniqueness.
func (p *Project) Validate() error {
	if err := CheckFormat(p.Format); err != nil {
		return err
	}
	if p.Name == "" {
		return ErrInvalid("project", "name is required")
	}
	if len(p.Scenes) == 0 {
		return ErrInvalid("project", "at least one scene is required")
	}

	vars := make(map[string]bool, len(p.Variables))
	for _, v := range p.Variables {
		if v.ID == "" {
			return ErrInvalid("variables", "variable id is required")
		}
		if vars[v.ID] {
			return ErrInvalid("variables", fmt.Sprintf("duplicate variable id %q", v.ID))
		}
		vars[v.ID] = true
	}

	scenes := make(map[string]bool, len(p.Scenes))
	for i := range p.Scenes {
		s := &p.Scenes[i]
		where := fmt.Sprintf("scenes[%d]", i)
		if s.ID == "" {
			return ErrInvalid(where, "scene id is required")
		}
		if scenes[s.ID] {
			return ErrInvalid(where, fmt.Sprintf("duplicate scene id %q", s.ID))
		}
		scenes[s.ID] = true
		if err := s.validate(where); err != nil {
			return err
		}
	}

	if start := p.Settings.StartScene; start != "" && !scenes[start] {
		return ErrInvalid("settings.startScene", fmt.Sprintf("unknown scene %q", start))
	}

	return p.EachHook(func(owner string, h NamedHook) error {
		if err := script.CheckIDs(*h.Hook); err != nil {
			var dup *script.DuplicateIDError
			if errors.As(err, &dup) {
				return oops.Code(CodeInvalidProject).
					With("where", owner).
					With("hook", h.Name).
					With("node", dup.ID).
					Wrapf(err, "%s %s", owner, h.Name)
			}
			return err
		}
		return nil
	})
}

func (s *Scene) validate(where string) error {
	if s.Width <= 0 || s.Height <= 0 {
		return ErrInvalid(where, fmt.Sprintf("scene size %dx%d must be positive", s.Width, s.Height))
	}
	if n := len(s.Collisions); n != 0 && n != s.Width*s.Height {
		return ErrInvalid(where, fmt.Sprintf("collisions has %d cells, want %d (%dx%d)", n, s.Width*s.Height, s.Width, s.Height))
	}

	owners := make(map[string]string)
	claim := func(id, what string) error {
		if id == "" {
			return ErrInvalid(where, what+" id is required")
		}
		if prev, dup := owners[id]; dup {
			return ErrInvalid(where, fmt.Sprintf("%s id %q is already used by a %s", what, id, prev))
		}
		owners[id] = what
		return nil
	}
	for _, a := range s.Actors {
		if err := claim(a.ID, "actor"); err != nil {
			return err
		}
	}
	for _, t := range s.Triggers {
		if err := claim(t.ID, "trigger"); err != nil {
			return err
		}
	}
	return nil
}
